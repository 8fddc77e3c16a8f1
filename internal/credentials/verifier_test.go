package credentials

import (
	"errors"
	"testing"
)

func TestHashAndVerify(t *testing.T) {
	hash, err := Hash("supersafe")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "supersafe" {
		t.Fatal("credential stored in plaintext")
	}

	if err := Verify(hash, "supersafe"); err != nil {
		t.Fatalf("verify: %v", err)
	}
}

func TestVerifyMismatch(t *testing.T) {
	hash, err := Hash("supersafe")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	if err := Verify(hash, "wrong"); !errors.Is(err, ErrMismatch) {
		t.Fatalf("expected ErrMismatch got %v", err)
	}
}

func TestHashRejectsShortCredential(t *testing.T) {
	if _, err := Hash("short"); err == nil {
		t.Fatal("expected error for short credential")
	}
}
