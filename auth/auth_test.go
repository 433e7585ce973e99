package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashAndCompare(t *testing.T) {
	req := require.New(t)
	password := "MySuperSecurePassw0rd!"

	hash, err := HashPassword(password)
	req.NoError(err)
	req.True(strings.HasPrefix(hash, "$argon2id$"))

	match, err := ComparePassword(password, hash)
	req.NoError(err)
	req.True(match)

	match, err = ComparePassword("WrongPassword", hash)
	req.NoError(err)
	req.False(match)
}

func TestComparePassword_BadFormat(t *testing.T) {
	req := require.New(t)
	_, err := ComparePassword("whatever", "$bcrypt$not$argon2id")
	req.Error(err)
}

func TestRegistrationValidation(t *testing.T) {
	req := require.New(t)
	tests := []struct {
		name    string
		req     RegisterRequest
		wantErr bool
	}{
		{"Valid request", RegisterRequest{"alice", "test@example.com", "ComplexPass123!"}, false},
		{"Invalid email", RegisterRequest{"alice", "notanemail", "ComplexPass123!"}, true},
		{"Username too short", RegisterRequest{"al", "test@example.com", "ComplexPass123!"}, true},
		{"Password too short", RegisterRequest{"alice", "test@example.com", "Short1!"}, true},
		{"Missing digit", RegisterRequest{"alice", "test@example.com", "NoDigitPassword!"}, true},
		{"Missing special char", RegisterRequest{"alice", "test@example.com", "NoSpecialChar123"}, true},
		{"Missing uppercase", RegisterRequest{"alice", "test@example.com", "nouppercase123!"}, true},
		{"Password too long (edge case)", RegisterRequest{"alice", "test@example.com", strings.Repeat("a", 73)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRegister(tt.req)
			if tt.wantErr {
				req.Error(err)
			} else {
				req.NoError(err)
			}
		})
	}
}

func TestLoginValidation(t *testing.T) {
	req := require.New(t)

	req.NoError(ValidateLogin(LoginRequest{Username: "alice", Password: "x"}))
	req.Error(ValidateLogin(LoginRequest{Username: "", Password: "x"}))
	req.Error(ValidateLogin(LoginRequest{Username: "alice", Password: ""}))
}

// BenchmarkHashPassword measures the CPU/RAM impact of the Argon2id settings.
func BenchmarkHashPassword(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_, _ = HashPassword("A-very-long-and-complex-password-for-bench-123!")
	}
}
