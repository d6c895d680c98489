package security_test

import (
	"testing"

	"github.com/roadcheck/inspecthub/internal/security"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := security.HashPassword("newpassword123")

	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	if hash == "newpassword123" {
		t.Fatalf("hash must not equal the plaintext")
	}

	if err := security.CheckPassword(hash, "newpassword123"); err != nil {
		t.Fatalf("correct password rejected: %v", err)
	}

	if err := security.CheckPassword(hash, "wrong-password"); err == nil {
		t.Fatalf("wrong password accepted")
	}
}
