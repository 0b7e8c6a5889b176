package ctlerr_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sarchlab/enbstack/ctlerr"
)

func TestWrapNilCauseReturnsNil(t *testing.T) {
	t.Parallel()
	require.NoError(t, ctlerr.Wrap(ctlerr.ResourceExhausted, nil))
}

func TestIsMatchesWrappedKind(t *testing.T) {
	t.Parallel()

	cause := errors.New("no pucch capacity")
	err := ctlerr.Wrap(ctlerr.ResourceExhausted, cause)

	require.True(t, ctlerr.Is(err, ctlerr.ResourceExhausted))
	require.False(t, ctlerr.Is(err, ctlerr.ProtocolViolation))
	require.ErrorIs(t, err, cause)
}

func TestIsFalseForPlainError(t *testing.T) {
	t.Parallel()
	require.False(t, ctlerr.Is(errors.New("plain"), ctlerr.TimerExpiry))
}
