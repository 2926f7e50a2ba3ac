package visibility

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestFinders_AgreeOnPassCountAndTiming is the testable property
// requires of the two pass-finding strategies: over the same horizon, for
// the same (satellite, target), they must find the same number of passes,
// with AOS/LOS within 1s and peak elevation within 0.1deg of each other.
func TestFinders_AgreeOnPassCountAndTiming(t *testing.T) {
	p := issPropagator(t)
	tgt := equatorialTarget()

	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	t1 := t0.Add(12 * time.Hour)

	fixed := NewFixedStepFinder()
	adaptive := NewAdaptiveFinder()

	fixedPasses, err := fixed.FindPasses(context.Background(), p, "iss", tgt, t0, t1)
	require.NoError(t, err)
	adaptivePasses, err := adaptive.FindPasses(context.Background(), p, "iss", tgt, t0, t1)
	require.NoError(t, err)

	require.Equal(t, len(fixedPasses), len(adaptivePasses), "pass count must agree")

	for i := range fixedPasses {
		a, b := fixedPasses[i], adaptivePasses[i]
		assert.InDelta(t, a.AOS.Unix(), b.AOS.Unix(), 1, "AOS[%d] mismatch", i)
		assert.InDelta(t, a.LOS.Unix(), b.LOS.Unix(), 1, "LOS[%d] mismatch", i)
		assert.InDelta(t, a.PeakElevationDeg, b.PeakElevationDeg, 0.1, "peak elevation[%d] mismatch", i)
	}
}

func TestAdaptiveFinder_RespectsContextCancellation(t *testing.T) {
	p := issPropagator(t)
	tgt := equatorialTarget()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewAdaptiveFinder().FindPasses(ctx, p, "iss", tgt, time.Now(), time.Now().Add(time.Hour))
	require.Error(t, err)
}
