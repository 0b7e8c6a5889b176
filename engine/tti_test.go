package engine_test

import (
	"testing"

	"github.com/sarchlab/enbstack/engine"
	"github.com/stretchr/testify/require"
)

func TestTTIAddWrapsAtHyperframe(t *testing.T) {
	t.Parallel()

	var tti engine.TTI = engine.Hyperframe - 1
	require.Equal(t, engine.TTI(0), tti.Add(1))
	require.Equal(t, engine.TTI(4), tti.Add(5))
}

func TestTTISubHandlesWraparound(t *testing.T) {
	t.Parallel()

	before := engine.TTI(engine.Hyperframe - 2)
	after := engine.TTI(2)

	require.Equal(t, 4, after.Sub(before))
	require.True(t, before.Before(after))
	require.True(t, after.After(before))
}

func TestTTISubNeverUsesRawOrdering(t *testing.T) {
	t.Parallel()

	// A naive `after < before` check would say 2 < 10238 is false, wrongly
	// concluding `after` comes first. The modular Sub must disagree.
	before := engine.TTI(10238)
	after := engine.TTI(2)

	require.True(t, before.Before(after))
	require.False(t, after.Before(before))
}
