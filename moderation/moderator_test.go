package moderation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestModerator(t *testing.T, words ...string) *Moderator {
	t.Helper()
	m, err := NewModerator(words, '*')
	require.NoError(t, err)
	return m
}

func TestCensor(t *testing.T) {
	m := newTestModerator(t, "badword", "worse")

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"clean text untouched", "hello there", "hello there"},
		{"simple match", "this is a badword here", "this is a ******* here"},
		{"case insensitive", "BadWord", "*******"},
		{"leet speak variant", "b4dw0rd", "*******"},
		{"separator evasion", "b.a.d.w.o.r.d", "*************"},
		{"multiple matches", "badword and worse", "******* and *****"},
		{"match inside a sentence keeps spacing", "say badword!", "say *******!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, m.Censor(tt.input))
		})
	}
}

func TestCensor_EmptyInput(t *testing.T) {
	m := newTestModerator(t, "badword")
	require.Equal(t, "", m.Censor(""))
}

func TestLoadWords(t *testing.T) {
	req := require.New(t)

	path := filepath.Join(t.TempDir(), "words.txt")
	content := "badword\n\n# a comment\n  worse  \n"
	req.NoError(os.WriteFile(path, []byte(content), 0o600))

	words, err := LoadWords(path)
	req.NoError(err)
	req.Equal([]string{"badword", "worse"}, words)
}

func TestLoadWords_MissingFile(t *testing.T) {
	_, err := LoadWords(filepath.Join(t.TempDir(), "absent.txt"))
	require.Error(t, err)
}
