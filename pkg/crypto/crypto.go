package crypto

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"hash"
)

// HMAC is used to sign the payload forwarded to the remote recorder.
func HMAC(hashFunc func() hash.Hash, data []byte, secret []byte) string {
	h := hmac.New(hashFunc, secret)
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

func HMACSHA256(data []byte, secret []byte) string {
	return HMAC(sha256.New, data, secret)
}

// RandFloat64 returns a uniform random value in [0, 1) with 53 bits of
// precision.
func RandFloat64() float64 {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic(err)
	}

	return float64(binary.BigEndian.Uint64(b[:])>>11) / (1 << 53)
}

// Source is a random source backed by crypto/rand.
type Source struct{}

func (Source) Float64() float64 {
	return RandFloat64()
}
