package moderation

import (
	"os"
	"strings"

	"github.com/samber/lo"
)

// LoadWords reads a censored-words file, one word per line. Blank lines and
// lines starting with '#' are skipped.
func LoadWords(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	lines := strings.Split(string(data), "\n")
	words := lo.FilterMap(lines, func(line string, _ int) (string, bool) {
		word := strings.TrimSpace(line)
		if word == "" || strings.HasPrefix(word, "#") {
			return "", false
		}
		return word, true
	})
	return words, nil
}
