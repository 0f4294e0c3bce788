package secrets

import (
	"strings"
	"testing"
)

func newTestEncryptor(t *testing.T) *Encryptor {
	t.Helper()
	key, err := GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	e, err := New(key)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return e
}

func TestRoundTrip(t *testing.T) {
	e := newTestEncryptor(t)

	ct, err := e.Encrypt("hunter2")
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if ct == "hunter2" || strings.Contains(ct, "hunter2") {
		t.Fatalf("ciphertext must not contain plaintext")
	}
	pt, err := e.Decrypt(ct)
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if pt != "hunter2" {
		t.Fatalf("round trip: got %q", pt)
	}
}

func TestNonceVariesPerEncryption(t *testing.T) {
	e := newTestEncryptor(t)
	a, _ := e.Encrypt("same")
	b, _ := e.Encrypt("same")
	if a == b {
		t.Fatalf("two encryptions of the same plaintext must differ")
	}
}

func TestDecryptCorruptedCiphertext(t *testing.T) {
	e := newTestEncryptor(t)

	ct, err := e.Encrypt("hunter2")
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	// Flip a hex digit near the end of the ciphertext.
	corrupted := []byte(ct)
	if corrupted[len(corrupted)-1] == 'a' {
		corrupted[len(corrupted)-1] = 'b'
	} else {
		corrupted[len(corrupted)-1] = 'a'
	}
	if _, err := e.Decrypt(string(corrupted)); err == nil {
		t.Fatalf("corrupted ciphertext must fail to decrypt")
	}

	for _, bad := range []string{"", "zz", "00"} {
		if _, err := e.Decrypt(bad); err == nil {
			t.Fatalf("Decrypt(%q) should fail", bad)
		}
	}
}

func TestWrongKeyFailsDecryption(t *testing.T) {
	a := newTestEncryptor(t)
	b := newTestEncryptor(t)
	ct, _ := a.Encrypt("hunter2")
	if _, err := b.Decrypt(ct); err == nil {
		t.Fatalf("decryption under a different key must fail")
	}
}

func TestNewRejectsBadKeys(t *testing.T) {
	for _, key := range []string{"", "abcd", "zz", strings.Repeat("ab", 16)} {
		if _, err := New(key); err == nil {
			t.Fatalf("New(%q) should fail", key)
		}
	}
	if _, err := New(strings.Repeat("ab", 32)); err != nil {
		t.Fatalf("valid 32-byte key rejected: %v", err)
	}
}
