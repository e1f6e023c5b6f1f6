package entity

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_UserLevel_Eligible(t *testing.T) {
	// A higher level is always eligible for everything a lower level is.
	require.True(t, LevelHobbyist.Eligible(LevelHobbyist))
	require.False(t, LevelHobbyist.Eligible(LevelEnthusiast))
	require.False(t, LevelHobbyist.Eligible(LevelSneakerhead))

	require.True(t, LevelEnthusiast.Eligible(LevelHobbyist))
	require.True(t, LevelEnthusiast.Eligible(LevelEnthusiast))
	require.False(t, LevelEnthusiast.Eligible(LevelSneakerhead))

	require.True(t, LevelSneakerhead.Eligible(LevelHobbyist))
	require.True(t, LevelSneakerhead.Eligible(LevelEnthusiast))
	require.True(t, LevelSneakerhead.Eligible(LevelSneakerhead))
}

func Test_UserLevel_Lower(t *testing.T) {
	lower, ok := LevelSneakerhead.Lower()
	require.True(t, ok)
	require.Equal(t, LevelEnthusiast, lower)

	lower, ok = LevelEnthusiast.Lower()
	require.True(t, ok)
	require.Equal(t, LevelHobbyist, lower)

	_, ok = LevelHobbyist.Lower()
	require.False(t, ok)
}

func Test_LevelForXP(t *testing.T) {
	require.Equal(t, LevelHobbyist, LevelForXP(0, 1000, 5000))
	require.Equal(t, LevelHobbyist, LevelForXP(999, 1000, 5000))
	require.Equal(t, LevelEnthusiast, LevelForXP(1000, 1000, 5000))
	require.Equal(t, LevelEnthusiast, LevelForXP(4999, 1000, 5000))
	require.Equal(t, LevelSneakerhead, LevelForXP(5000, 1000, 5000))
}
