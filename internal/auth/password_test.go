package auth

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword(t *testing.T) {
	tests := []struct {
		name        string
		password    string
		expectError bool
		errorType   error
	}{
		{
			name:        "Valid password",
			password:    "validPassword123",
			expectError: false,
		},
		{
			name:        "Minimum length password",
			password:    "12345678",
			expectError: false,
		},
		{
			name:        "Too short password",
			password:    "1234567",
			expectError: true,
			errorType:   ErrWeakPassword,
		},
		{
			name:        "Empty password",
			password:    "",
			expectError: true,
			errorType:   ErrWeakPassword,
		},
		{
			name:        "Complex password with special characters",
			password:    "P@ssw0rd!2023#$%",
			expectError: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := HashPassword(tt.password)

			if tt.expectError {
				if err == nil {
					t.Errorf("Expected error but got none")
				}
				if tt.errorType != nil && err != tt.errorType {
					t.Errorf("Expected error %v, got %v", tt.errorType, err)
				}
				return
			}

			if err != nil {
				t.Errorf("Unexpected error: %v", err)
				return
			}

			if hash == "" {
				t.Error("Expected non-empty hash")
			}

			// Verify the hash uses bcrypt
			if !strings.HasPrefix(hash, "$2a$") && !strings.HasPrefix(hash, "$2b$") {
				t.Error("Hash doesn't appear to be bcrypt format")
			}

			// Verify we can validate the password with the hash
			if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(tt.password)); err != nil {
				t.Errorf("Generated hash doesn't validate against original password: %v", err)
			}
		})
	}
}

func TestVerifyPassword(t *testing.T) {
	password := "testPassword123"
	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	tests := []struct {
		name        string
		hash        string
		password    string
		expectError bool
	}{
		{
			name:        "Correct password",
			hash:        hash,
			password:    password,
			expectError: false,
		},
		{
			name:        "Wrong password",
			hash:        hash,
			password:    "wrongPassword",
			expectError: true,
		},
		{
			name:        "Empty password",
			hash:        hash,
			password:    "",
			expectError: true,
		},
		{
			name:        "Case sensitive - different case",
			hash:        hash,
			password:    "TESTPASSWORD123",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := VerifyPassword(tt.hash, tt.password)

			if tt.expectError && err == nil {
				t.Error("Expected error but got none")
			}

			if !tt.expectError && err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
		})
	}
}

func TestValidatePasswordStrength(t *testing.T) {
	tests := []struct {
		name        string
		password    string
		expectError bool
	}{
		{
			name:        "Valid 8 character password",
			password:    "12345678",
			expectError: false,
		},
		{
			name:        "Valid long password",
			password:    "thisIsAVeryLongPasswordWithManyCharacters123!@#",
			expectError: false,
		},
		{
			name:        "7 characters - too short",
			password:    "1234567",
			expectError: true,
		},
		{
			name:        "Empty password",
			password:    "",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePasswordStrength(tt.password)

			if tt.expectError && err != ErrWeakPassword {
				t.Errorf("Expected ErrWeakPassword, got %v", err)
			}

			if !tt.expectError && err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
		})
	}
}
