package security

import (
	"testing"
)

func TestHashPassword(t *testing.T) {
	password := "correct horse battery staple"

	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if hash == password {
		t.Error("hash should not equal the plaintext password")
	}

	// bcrypt salts, so hashing twice gives different hashes
	other, err := HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if hash == other {
		t.Error("two hashes of the same password should differ")
	}
}

func TestCheckPassword(t *testing.T) {
	password := "correct horse battery staple"

	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}

	if !CheckPassword(hash, password) {
		t.Error("correct password should verify")
	}
	if CheckPassword(hash, "wrong password") {
		t.Error("wrong password should not verify")
	}
	if CheckPassword("not a bcrypt hash", password) {
		t.Error("malformed hash should not verify")
	}
}
