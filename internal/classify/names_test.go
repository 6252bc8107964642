package classify

import (
	"testing"

	"github.com/stretchr/testify/require"
)

var testNames = []string{"low", "medium", "high"}

func TestName(t *testing.T) {
	require.Equal(t, "medium", Name("level", testNames, 1))
	require.Equal(t, "level(7)", Name("level", testNames, 7))
	require.Equal(t, "level(-1)", Name("level", testNames, -1))
}

func TestMarshalName(t *testing.T) {
	b, err := MarshalName("level", testNames, 2)
	require.NoError(t, err)
	require.Equal(t, "high", string(b))

	_, err = MarshalName("level", testNames, 3)
	require.ErrorIs(t, err, ErrUnknownValue)
}

func TestParseName(t *testing.T) {
	v, err := ParseName("level", testNames, []byte("low"))
	require.NoError(t, err)
	require.Equal(t, 0, v)

	_, err = ParseName("level", testNames, []byte("LOW"))
	require.ErrorIs(t, err, ErrUnknownValue)
}
