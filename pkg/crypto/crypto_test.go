package crypto

import (
	"bytes"
	"encoding/hex"
	"errors"
	"testing"
)

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	if err != nil {
		t.Fatalf("bad hex fixture %q: %v", s, err)
	}
	return b
}

func sequentialKey() []byte {
	key := make([]byte, SessionKeySize)
	for i := range key {
		key[i] = byte(i)
	}
	return key
}

func TestXORBytes(t *testing.T) {
	tests := []struct {
		name string
		a, b []byte
		want []byte
	}{
		{
			name: "equal length",
			a:    []byte{0x01, 0x02},
			b:    []byte{0xff, 0x0f},
			want: []byte{0xfe, 0x0d},
		},
		{
			name: "short second operand is zero padded",
			a:    []byte{0x10, 0x20, 0x30},
			b:    []byte{0x01},
			want: []byte{0x11, 0x20, 0x30},
		},
		{
			name: "short first operand is zero padded",
			a:    []byte{0x01},
			b:    []byte{0x10, 0x20, 0x30},
			want: []byte{0x11, 0x20, 0x30},
		},
		{
			name: "empty operands",
			a:    nil,
			b:    nil,
			want: []byte{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := XORBytes(tt.a, tt.b)
			if !bytes.Equal(got, tt.want) {
				t.Errorf("XORBytes() = %x, want %x", got, tt.want)
			}
		})
	}
}

func TestXORBytesSelfInverse(t *testing.T) {
	a := []byte{0xde, 0xad, 0xbe, 0xef}
	b := sequentialKey() // longer than a

	once := XORBytes(a, b)
	twice := XORBytes(once, b)

	// Recovering a requires looking only at the first len(a) bytes; the
	// tail is b XOR b = 0.
	if !bytes.Equal(twice[:len(a)], a) {
		t.Errorf("double XOR = %x, want prefix %x", twice, a)
	}
	for _, v := range twice[len(a):] {
		if v != 0 {
			t.Errorf("double XOR tail not zero: %x", twice)
			break
		}
	}
}

func TestDeriveAuthTokenGolden(t *testing.T) {
	// Captured from a reference exchange: session key 000102..0f with
	// access code "1234".
	token, err := DeriveAuthToken(sequentialKey(), []byte("1234"))
	if err != nil {
		t.Fatalf("DeriveAuthToken() error = %v", err)
	}
	want := mustHex(t, "b94f6c239b404d503de47b86b574546a")
	if !bytes.Equal(token, want) {
		t.Errorf("DeriveAuthToken() = %x, want %x", token, want)
	}
}

func TestEncryptCharacteristicGolden(t *testing.T) {
	key := sequentialKey()
	tests := []struct {
		name  string
		plain string
		want  string
	}{
		{
			name:  "catch all request 107",
			plain: "026b000000000000000000000000000000000000",
			want:  "c95be9a45451eaf53dfcfd04ae394cf7dea8bb4b",
		},
		{
			name:  "auto action",
			plain: "0200000000000000000000000000000000000000",
			want:  "83c8737e381cbd25159e2babaa26dc4b9bfb71f8",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EncryptCharacteristic(mustHex(t, tt.plain), key)
			if err != nil {
				t.Fatalf("EncryptCharacteristic() error = %v", err)
			}
			if !bytes.Equal(got, mustHex(t, tt.want)) {
				t.Errorf("EncryptCharacteristic() = %x, want %s", got, tt.want)
			}
		})
	}
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	key := sequentialKey()

	for _, n := range []int{20, 36, 52} {
		plain := make([]byte, n)
		for i := range plain {
			plain[i] = byte(i * 7)
		}

		enc, err := EncryptCharacteristic(plain, key)
		if err != nil {
			t.Fatalf("len %d: encrypt error = %v", n, err)
		}
		if bytes.Equal(enc, plain) {
			t.Errorf("len %d: ciphertext equals plaintext", n)
		}
		dec, err := DecryptCharacteristic(enc, key)
		if err != nil {
			t.Fatalf("len %d: decrypt error = %v", n, err)
		}
		if !bytes.Equal(dec, plain) {
			t.Errorf("len %d: round trip = %x, want %x", n, dec, plain)
		}
	}
}

func TestInvalidPayloadLength(t *testing.T) {
	key := sequentialKey()

	for _, n := range []int{0, 3, 16, 17, 21} {
		buf := make([]byte, n)
		var lenErr *ErrInvalidPayloadLength

		if _, err := EncryptCharacteristic(buf, key); !errors.As(err, &lenErr) {
			t.Errorf("encrypt len %d: error = %v, want ErrInvalidPayloadLength", n, err)
		}
		if _, err := DecryptCharacteristic(buf, key); !errors.As(err, &lenErr) {
			t.Errorf("decrypt len %d: error = %v, want ErrInvalidPayloadLength", n, err)
		}
	}
}
