package crypto

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"
)

func testKey(b byte) []byte {
	key := make([]byte, KeySize)
	for i := range key {
		key[i] = b
	}
	return key
}

func strPtr(s string) *string { return &s }

func TestEncryptFieldRoundTrip(t *testing.T) {
	key := testKey(1)
	tests := []struct {
		name      string
		plaintext string
	}{
		{name: "short", plaintext: "a"},
		{name: "block aligned", plaintext: "0123456789abcdef"},
		{name: "password", plaintext: "FoRtNiTeFoRlIfe_reeeeeeeeee"},
		{name: "unicode", plaintext: "pässwört ✓ 密码"},
		{name: "long", plaintext: strings.Repeat("x", 1000)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blob, err := EncryptField(strPtr(tt.plaintext), key)
			if err != nil {
				t.Fatalf("EncryptField() unexpected error: %v", err)
			}
			if blob == nil {
				t.Fatal("EncryptField() returned nil blob for non-empty plaintext")
			}

			got, err := DecryptField(blob, key)
			if err != nil {
				t.Fatalf("DecryptField() unexpected error: %v", err)
			}
			if got == nil || *got != tt.plaintext {
				t.Errorf("DecryptField() = %v, want %q", got, tt.plaintext)
			}
		})
	}
}

func TestEncryptFieldAbsentPlaintext(t *testing.T) {
	key := testKey(1)

	blob, err := EncryptField(nil, key)
	if err != nil || blob != nil {
		t.Errorf("EncryptField(nil) = %v, %v; want nil, nil", blob, err)
	}

	blob, err = EncryptField(strPtr(""), key)
	if err != nil || blob != nil {
		t.Errorf("EncryptField(\"\") = %v, %v; want nil, nil", blob, err)
	}

	plain, err := DecryptField(nil, key)
	if err != nil || plain != nil {
		t.Errorf("DecryptField(nil) = %v, %v; want nil, nil", plain, err)
	}
}

func TestEncryptFieldRandomIV(t *testing.T) {
	key := testKey(2)

	b1, err := EncryptField(strPtr("same-plaintext"), key)
	if err != nil {
		t.Fatalf("EncryptField() unexpected error: %v", err)
	}
	b2, err := EncryptField(strPtr("same-plaintext"), key)
	if err != nil {
		t.Fatalf("EncryptField() unexpected error: %v", err)
	}

	if *b1 == *b2 {
		t.Error("EncryptField() produced identical blobs (IV should differ)")
	}
	for _, b := range []*EncryptedField{b1, b2} {
		got, err := DecryptField(b, key)
		if err != nil || *got != "same-plaintext" {
			t.Errorf("DecryptField() = %v, %v", got, err)
		}
	}
}

func TestDecryptFieldWrongKey(t *testing.T) {
	for i := 0; i < 50; i++ {
		blob, err := EncryptField(strPtr("top secret"), testKey(3))
		if err != nil {
			t.Fatalf("EncryptField() unexpected error: %v", err)
		}

		_, err = DecryptField(blob, testKey(4))
		if !errors.Is(err, ErrDecryption) {
			t.Fatalf("DecryptField() error = %v, want ErrDecryption", err)
		}
		var de *DecryptionError
		if !errors.As(err, &de) {
			t.Fatalf("DecryptField() error type = %T, want *DecryptionError", err)
		}
	}
}

func TestDecryptFieldCorrupted(t *testing.T) {
	key := testKey(5)
	blob, err := EncryptField(strPtr("top secret"), key)
	if err != nil {
		t.Fatalf("EncryptField() unexpected error: %v", err)
	}

	raw, _ := base64.StdEncoding.DecodeString(string(*blob))
	raw[IVSize] ^= 0x01
	tampered := EncryptedField(base64.StdEncoding.EncodeToString(raw))

	tests := []struct {
		name string
		blob EncryptedField
	}{
		{name: "tampered ciphertext", blob: tampered},
		{name: "not base64", blob: "%%%not-base64%%%"},
		{name: "too short", blob: EncryptedField(base64.StdEncoding.EncodeToString([]byte("short")))},
		{name: "truncated", blob: EncryptedField(base64.StdEncoding.EncodeToString(raw[:len(raw)-1]))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecryptField(&tt.blob, key)
			if !errors.Is(err, ErrDecryption) {
				t.Errorf("DecryptField() error = %v, want ErrDecryption", err)
			}
		})
	}
}

func TestEncryptFieldInvalidKey(t *testing.T) {
	if _, err := EncryptField(strPtr("x"), []byte("short")); !errors.Is(err, ErrInvalidKeySize) {
		t.Errorf("EncryptField() error = %v, want ErrInvalidKeySize", err)
	}
	blob := EncryptedField("AAAA")
	_, err := DecryptField(&blob, []byte("short"))
	var decErr *DecryptionError
	if !errors.As(err, &decErr) {
		t.Fatalf("DecryptField() error = %v, want *DecryptionError", err)
	}
	if !errors.Is(err, ErrDecryption) || !errors.Is(err, ErrInvalidKeySize) {
		t.Errorf("DecryptField() error = %v, want both ErrDecryption and ErrInvalidKeySize", err)
	}
}

func TestFieldRoundTripWithDerivedKeys(t *testing.T) {
	k1 := DeriveKey("old master")
	k2 := DeriveKey("new master")

	blob, err := EncryptField(strPtr("roblox11!!!111"), k1)
	if err != nil {
		t.Fatalf("EncryptField() unexpected error: %v", err)
	}
	if _, err := DecryptField(blob, k2); !errors.Is(err, ErrDecryption) {
		t.Errorf("DecryptField() with other derived key error = %v, want ErrDecryption", err)
	}
	got, err := DecryptField(blob, k1)
	if err != nil || *got != "roblox11!!!111" {
		t.Errorf("DecryptField() = %v, %v", got, err)
	}
}
