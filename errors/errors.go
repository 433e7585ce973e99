package errors

import "fmt"

var (
	ErrAccountExists      = fmt.Errorf("account already exists")
	ErrAccountNotFound    = fmt.Errorf("account not found")
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")
	ErrInvalidPassword    = fmt.Errorf("password does not meet complexity rules")
	ErrTokenGeneration    = fmt.Errorf("token generation failed")

	ErrMissingSigningKey = fmt.Errorf("missing token signing key")
	ErrTokenMalformed    = fmt.Errorf("token is malformed")
	ErrTokenSignature    = fmt.Errorf("token signature is invalid")
	ErrTokenExpired      = fmt.Errorf("token is expired")
	ErrTokenRevoked      = fmt.Errorf("token has been revoked")
)
