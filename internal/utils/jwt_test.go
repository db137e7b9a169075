package utils

import (
	"errors"
	"testing"
	"time"
)

func TestSelectionTokenRoundTrip(t *testing.T) {
	tok, err := NewSelectionToken("secret", "sess-1", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	id, err := ParseSelectionToken("secret", tok.Token)
	if err != nil || id != "sess-1" {
		t.Fatalf("Parse = %q %v", id, err)
	}
	if !tok.Exp.After(time.Now()) {
		t.Fatal("expiry in the past")
	}
}

func TestSelectionTokenRejects(t *testing.T) {
	tok, _ := NewSelectionToken("secret", "sess-1", time.Hour)
	if _, err := ParseSelectionToken("other", tok.Token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("wrong secret err = %v", err)
	}
	expired, _ := NewSelectionToken("secret", "sess-1", -time.Minute)
	if _, err := ParseSelectionToken("secret", expired.Token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expired err = %v", err)
	}
	if _, err := ParseSelectionToken("secret", "garbage"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("garbage err = %v", err)
	}
}
