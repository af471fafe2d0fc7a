package application

import (
	"errors"
	"strings"
	"testing"
)

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := CreatePasswordHash("correct horse", DefaultArgon2idParams)
	if err != nil {
		t.Fatalf("CreatePasswordHash: %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$v=") {
		t.Fatalf("hash = %q, want argon2id notation", hash)
	}

	if err := VerifyPassword(hash, "correct horse"); err != nil {
		t.Errorf("VerifyPassword with the right password: %v", err)
	}
	if err := VerifyPassword(hash, "wrong horse"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("error = %v, want ErrInvalidCredentials", err)
	}
}

func TestVerifyPasswordRejectsMalformedHashes(t *testing.T) {
	for _, hash := range []string{
		"",
		"plaintext",
		"$bcrypt$v=19$m=65536,t=3,p=2$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=65536,t=3,p=2$not base64!$aGFzaA",
	} {
		if err := VerifyPassword(hash, "whatever"); !errors.Is(err, ErrInvalidPasswordHash) {
			t.Errorf("VerifyPassword(%q) = %v, want ErrInvalidPasswordHash", hash, err)
		}
	}
}

func TestVerifyPasswordRejectsUnknownVersions(t *testing.T) {
	hash := "$argon2id$v=18$m=65536,t=3,p=2$c2FsdHNhbHRzYWx0c2FsdA$aGFzaGhhc2hoYXNoaGFzaA"
	if err := VerifyPassword(hash, "whatever"); !errors.Is(err, ErrIncompatiblePasswordVersion) {
		t.Errorf("error = %v, want ErrIncompatiblePasswordVersion", err)
	}
}
