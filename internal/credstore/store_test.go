package credstore

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
)

func tempStore(t *testing.T, password string) *Store {
	t.Helper()
	return New(filepath.Join(t.TempDir(), "credentials"), password, zap.NewNop())
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	t.Parallel()
	s := tempStore(t, "secret")
	want := Credentials{ClientID: "c1", AccessToken: "a1", RefreshToken: "r1"}
	s.Save(want)

	got, ok := s.Load()
	if !ok {
		t.Fatalf("Load reported no credentials")
	}
	if got != want {
		t.Fatalf("round trip mismatch: got %+v want %+v", got, want)
	}
}

func TestEncrypt_FreshIVPerWrite(t *testing.T) {
	t.Parallel()
	s := tempStore(t, "secret")
	c := Credentials{ClientID: "c1", AccessToken: "a1", RefreshToken: "r1"}

	first, err := s.encrypt(c)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	second, err := s.encrypt(c)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if bytes.Equal(first, second) {
		t.Fatalf("two encryptions of identical plaintext must differ")
	}

	a, err := s.decrypt(first)
	if err != nil {
		t.Fatalf("decrypt first: %v", err)
	}
	b, err := s.decrypt(second)
	if err != nil {
		t.Fatalf("decrypt second: %v", err)
	}
	if a != b || a != c {
		t.Fatalf("both ciphertexts must decrypt to the original")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()
	s := New(filepath.Join(t.TempDir(), "nope"), "secret", zap.NewNop())
	if _, ok := s.Load(); ok {
		t.Fatalf("missing file should report absent credentials")
	}
}

func TestLoad_CorruptFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "credentials")
	if err := os.WriteFile(path, []byte("not json at all"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	s := New(path, "secret", zap.NewNop())
	if _, ok := s.Load(); ok {
		t.Fatalf("corrupt file should report absent credentials")
	}
}

func TestLoad_WrongPassword(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "credentials")
	New(path, "right", zap.NewNop()).Save(Credentials{ClientID: "c1"})

	if got, ok := New(path, "wrong", zap.NewNop()).Load(); ok {
		t.Fatalf("wrong password should not decrypt, got %+v", got)
	}
}

func TestEmptyPath_NoOp(t *testing.T) {
	t.Parallel()
	s := New("", "secret", nil)
	s.Save(Credentials{ClientID: "c1"})
	if _, ok := s.Load(); ok {
		t.Fatalf("pathless store should never load credentials")
	}
}
