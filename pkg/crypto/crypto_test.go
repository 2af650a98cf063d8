package crypto

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHMACSHA256(t *testing.T) {
	// RFC 4231 test case 2.
	require.Equal(t,
		"5bdcc146bf60754e6a042426089575c75a003f089d2739839dec58b964ec3843",
		HMACSHA256([]byte("what do ya want for nothing?"), []byte("Jefe")),
	)
}

func TestRandFloat64(t *testing.T) {
	var s Source
	for i := 0; i < 1000; i++ {
		v := s.Float64()
		require.GreaterOrEqual(t, v, 0.0)
		require.Less(t, v, 1.0)
	}
}
