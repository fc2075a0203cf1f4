package encoding

import (
	"errors"
	"strings"
	"testing"
)

type testProps struct {
	FormID string `msgpack:"id"`
	Step   int    `msgpack:"s,omitempty"`
	Hidden string `msgpack:"-"`
}

func TestNewEncoder(t *testing.T) {
	if _, err := NewEncoder([]byte("short")); err != nil {
		t.Fatalf("NewEncoder with short key failed: %v", err)
	}
	if _, err := NewEncoder([]byte(strings.Repeat("k", 48))); err != nil {
		t.Fatalf("NewEncoder with long key failed: %v", err)
	}
}

func TestRoundTrip(t *testing.T) {
	enc, err := NewEncoder([]byte("test-key"))
	if err != nil {
		t.Fatalf("NewEncoder failed: %v", err)
	}

	for _, sealed := range []bool{false, true} {
		original := testProps{FormID: "9b2f", Step: 3, Hidden: "not sent"}

		token, err := enc.Encode(original, sealed)
		if err != nil {
			t.Fatalf("Encode(sealed=%v) failed: %v", sealed, err)
		}
		if strings.ContainsAny(token, "+/=") {
			t.Errorf("token %q is not URL safe", token)
		}

		var decoded testProps
		if err := enc.Decode(token, sealed, &decoded); err != nil {
			t.Fatalf("Decode(sealed=%v) failed: %v", sealed, err)
		}
		if decoded.FormID != "9b2f" || decoded.Step != 3 {
			t.Errorf("decoded = %+v, want FormID=9b2f Step=3", decoded)
		}
		if decoded.Hidden != "" {
			t.Errorf("Hidden = %q, want empty (field is skipped)", decoded.Hidden)
		}
	}
}

func TestSignedTokenIsReadable(t *testing.T) {
	enc, _ := NewEncoder([]byte("test-key"))
	token, err := enc.Encode(testProps{FormID: "abc"}, false)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if !strings.Contains(token, ".") {
		t.Errorf("signed token %q has no signature separator", token)
	}
}

func TestTamperedSignature(t *testing.T) {
	enc, _ := NewEncoder([]byte("test-key"))
	token, _ := enc.Encode(testProps{FormID: "abc"}, false)

	payload, _, _ := strings.Cut(token, ".")
	forged, _ := enc.Encode(testProps{FormID: "xyz"}, false)
	_, forgedSig, _ := strings.Cut(forged, ".")

	var decoded testProps
	err := enc.Decode(payload+"."+forgedSig, false, &decoded)
	if !errors.Is(err, ErrSignatureInvalid) {
		t.Errorf("Decode(tampered) error = %v, want ErrSignatureInvalid", err)
	}
}

func TestTamperedCiphertext(t *testing.T) {
	enc, _ := NewEncoder([]byte("test-key"))
	token, _ := enc.Encode(testProps{FormID: "abc"}, true)

	mid := len(token) / 2
	flip := byte('A')
	if token[mid] == 'A' {
		flip = 'B'
	}
	tampered := token[:mid] + string(flip) + token[mid+1:]

	var decoded testProps
	err := enc.Decode(tampered, true, &decoded)
	if err == nil {
		t.Fatal("expected error for tampered ciphertext")
	}
	if !errors.Is(err, ErrDecryptFailed) && !errors.Is(err, ErrInvalidFormat) {
		t.Errorf("Decode(tampered) error = %v, want ErrDecryptFailed", err)
	}
}

func TestInvalidFormat(t *testing.T) {
	enc, _ := NewEncoder([]byte("test-key"))

	var decoded testProps
	if err := enc.Decode("no-separator", false, &decoded); !errors.Is(err, ErrInvalidFormat) {
		t.Errorf("Decode(no separator) error = %v, want ErrInvalidFormat", err)
	}
	if err := enc.Decode("!!!", true, &decoded); !errors.Is(err, ErrInvalidFormat) {
		t.Errorf("Decode(bad base64) error = %v, want ErrInvalidFormat", err)
	}
}

func TestDifferentKeysCannotDecode(t *testing.T) {
	enc1, _ := NewEncoder([]byte("key-one"))
	enc2, _ := NewEncoder([]byte("key-two"))

	token, err := enc1.Encode(testProps{FormID: "abc"}, false)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	var decoded testProps
	if err := enc2.Decode(token, false, &decoded); !errors.Is(err, ErrSignatureInvalid) {
		t.Errorf("Decode with other key error = %v, want ErrSignatureInvalid", err)
	}
}
