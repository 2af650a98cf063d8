package enum

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type testKind string

type testTier int

var (
	kindCoin   = New(testKind("coin"))
	kindTicket = New(testKind("ticket"))

	tierBasic = New(testTier(1), "basic")
	tierGold  = New(testTier(3), "gold", "vip", "premium")
)

func TestToEnum(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    testTier
		wantErr bool
	}{
		{name: "canonical name", input: "basic", want: tierBasic},
		{name: "alias", input: "vip", want: tierGold},
		{name: "second alias", input: "premium", want: tierGold},
		{name: "case sensitive", input: "Gold", wantErr: true},
		{name: "unknown", input: "platinum", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToEnum[testTier](tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestToEnum_DefaultName(t *testing.T) {
	v, err := ToEnum[testKind]("ticket")
	require.NoError(t, err)
	require.Equal(t, kindTicket, v)
	require.Equal(t, "coin", ToString(kindCoin))

	type unregistered string
	_, err = ToEnum[unregistered]("x")
	require.Error(t, err)
}

func TestToString(t *testing.T) {
	require.Equal(t, "gold", ToString(tierGold))
	require.Equal(t, "basic", ToString(tierBasic))
	require.Equal(t, "", ToString(testTier(2)))
}
