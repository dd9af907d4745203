// Package crypto implements the symmetric transform applied to every GATT
// characteristic payload exchanged with Astral Pool chlorinators.
//
// Every payload is XORed with the per-connection session key and then
// AES-128-ECB encrypted in two overlapping passes keyed by a secret that is
// shared across the whole product family. The two-pass offset scheme
// (first 16 bytes, then bytes [4:]) is deliberate protocol behaviour and has
// to be reproduced byte for byte.
package crypto

import (
	"crypto/aes"
	"fmt"
)

// BlockSize is the AES block size the transform operates on.
const BlockSize = 16

// SessionKeySize is the length of the session key nonce issued by the device.
const SessionKeySize = 16

// secretKey is the fixed AES-128 key compiled into every device of the
// product family. Identical for eQuilibrium and Halo units.
var secretKey = []byte{
	0x2b, 0x7e, 0x15, 0x16, 0x28, 0xae, 0xd2, 0xa6,
	0xab, 0xf7, 0x15, 0x88, 0x09, 0xcf, 0x4f, 0x3c,
}

// ErrInvalidPayloadLength reports a payload whose length does not line up
// with the cipher block ranges of the double-pass transform.
type ErrInvalidPayloadLength struct {
	Length int
}

func (e *ErrInvalidPayloadLength) Error() string {
	return fmt.Sprintf("payload length %d does not fit the block transform (need len >= 20 and (len-4) %% 16 == 0)", e.Length)
}

// XORBytes XORs two byte slices left-aligned, zero-padding the shorter
// operand on the right. The result has the length of the longer operand.
func XORBytes(a, b []byte) []byte {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	out := make([]byte, n)
	copy(out, a)
	for i := range b {
		out[i] ^= b[i]
	}
	return out
}

// ecb applies the AES-ECB block operation op to every 16-byte block of src.
func ecb(src []byte, op func(dst, src []byte)) []byte {
	out := make([]byte, len(src))
	for i := 0; i < len(src); i += BlockSize {
		op(out[i:i+BlockSize], src[i:i+BlockSize])
	}
	return out
}

// DeriveAuthToken computes the authentication token written to the master
// authentication characteristic: AES-ECB(secret, sessionKey XOR accessCode),
// truncated to exactly one cipher block.
func DeriveAuthToken(sessionKey, accessCode []byte) ([]byte, error) {
	block, err := aes.NewCipher(secretKey)
	if err != nil {
		return nil, err
	}
	xored := XORBytes(sessionKey, accessCode)
	// The token is always a single block; pad or truncate the XOR result
	// to the fixed width the device expects.
	buf := make([]byte, BlockSize)
	copy(buf, xored)
	token := make([]byte, BlockSize)
	block.Encrypt(token, buf)
	return token, nil
}

// EncryptCharacteristic encrypts a characteristic payload for transmission.
// The plaintext is XORed with the session key, the first 16 bytes of the
// result are ECB-encrypted, then bytes [4:] of that intermediate buffer are
// ECB-encrypted again, leaving the first 4 bytes of the second pass alone.
func EncryptCharacteristic(data, sessionKey []byte) ([]byte, error) {
	block, err := aes.NewCipher(secretKey)
	if err != nil {
		return nil, err
	}
	xored := XORBytes(data, sessionKey)
	if err := checkLength(len(xored)); err != nil {
		return nil, err
	}
	out := append(ecb(xored[:BlockSize], block.Encrypt), xored[BlockSize:]...)
	return append(out[:4:4], ecb(out[4:], block.Encrypt)...), nil
}

// DecryptCharacteristic is the exact inverse of EncryptCharacteristic:
// ECB-decrypt bytes [4:], ECB-decrypt the first 16 bytes of the result,
// then XOR the whole buffer with the session key.
func DecryptCharacteristic(data, sessionKey []byte) ([]byte, error) {
	block, err := aes.NewCipher(secretKey)
	if err != nil {
		return nil, err
	}
	if err := checkLength(len(data)); err != nil {
		return nil, err
	}
	buf := append(data[:4:4], ecb(data[4:], block.Decrypt)...)
	buf = append(ecb(buf[:BlockSize], block.Decrypt), buf[BlockSize:]...)
	return XORBytes(buf, sessionKey), nil
}

func checkLength(n int) error {
	if n < BlockSize+4 || (n-4)%BlockSize != 0 {
		return &ErrInvalidPayloadLength{Length: n}
	}
	return nil
}
