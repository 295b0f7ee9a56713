package obj

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewStringFromBytesEncodingSelection(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want Encoding
	}{
		{"integer", "12345", EncInt},
		{"negative integer", "-42", EncInt},
		{"leading zero stays string", "0123", EncEmbstr},
		{"short string", strings.Repeat("a", 44), EncEmbstr},
		{"long string", strings.Repeat("a", 45), EncRaw},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v := NewStringFromBytes([]byte(tc.in), lruModeTimestamp, 0)
			if got := v.Encoding(); got != tc.want {
				t.Fatalf("encoding = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestDecodeRoundTrip(t *testing.T) {
	for _, s := range []string{"0", "-17", "hello world", strings.Repeat("x", 100)} {
		v := NewStringFromBytes([]byte(s), lruModeTimestamp, 0)
		if got := Decode(v); string(got) != s {
			t.Fatalf("Decode(%q) = %q", s, got)
		}
	}
}

func TestEnsureRawPromotesAndIsMonotonic(t *testing.T) {
	v := NewStringFromBytes([]byte("42"), lruModeTimestamp, 0)
	if v.Encoding() != EncInt {
		t.Fatalf("expected int encoding")
	}
	EnsureRaw(v)
	if v.Encoding() != EncRaw {
		t.Fatalf("expected raw after EnsureRaw, got %v", v.Encoding())
	}
	SetRawBytes(v, append(RawBytes(v), []byte(" world")...))
	if !bytes.Equal(Decode(v), []byte("42 world")) {
		t.Fatalf("unexpected bytes: %q", Decode(v))
	}
	// Promotion never demotes even if the new content would parse as int.
	EnsureRaw(v)
	if v.Encoding() != EncRaw {
		t.Fatalf("raw should not demote")
	}
}

func TestTryEncodeSharesSmallIntegers(t *testing.T) {
	InitShared(100)
	defer InitShared(SharedIntegersCount)

	v := NewRawString([]byte("42"), lruModeTimestamp, 0)
	out := TryEncode(v, 100, LookupShared)
	if !out.IsImmortal() {
		t.Fatalf("expected shared immortal value for small int")
	}
	if got, _ := IntValue(out); got != 42 {
		t.Fatalf("IntValue = %d", got)
	}
}

func TestTryEncodeEmbstrForShortRaw(t *testing.T) {
	v := NewRawString([]byte("hello"), lruModeTimestamp, 0)
	out := TryEncode(v, 0, nil)
	if out.Encoding() != EncEmbstr {
		t.Fatalf("expected embstr, got %v", out.Encoding())
	}
}

func TestIntOverflowRejected(t *testing.T) {
	// 20-digit number overflows int64; must not be accepted as INT.
	huge := "99999999999999999999"
	v := NewStringFromBytes([]byte(huge), lruModeTimestamp, 0)
	if v.Encoding() == EncInt {
		t.Fatalf("overflowing literal must not encode as int")
	}
}
