// Package quality scores opportunities: an incidence-angle-to-quality
// mapping plus the composite value function that combines priority,
// geometry, and timing terms for the scheduler's selection rules.
package quality

import (
	"math"

	"github.com/orbitalcue/mission-planner/internal/domain"
)

// Model maps an absolute incidence angle (degrees) to a quality score in
// [0,1]; higher is better.
type Model interface {
	Quality(incidenceDeg float64) float64
}

// OffModel is the neutral model: every incidence angle scores 1.
type OffModel struct{}

func (OffModel) Quality(float64) float64 { return 1 }

// MonotonicModel peaks at nadir and decays monotonically with |incidence|,
// the default for OPTICAL targets.
type MonotonicModel struct{}

func (MonotonicModel) Quality(incidenceDeg float64) float64 {
	return math.Exp(-0.02 * math.Abs(incidenceDeg))
}

// BandModel peaks at Ideal with full-width Width, the default for SAR
// targets (ideal=35deg, width=7.5deg unless overridden).
type BandModel struct {
	IdealDeg float64
	WidthDeg float64
}

func (b BandModel) Quality(incidenceDeg float64) float64 {
	width := b.WidthDeg
	if width <= 0 {
		width = 7.5
	}
	ratio := (math.Abs(incidenceDeg) - b.IdealDeg) / width
	return math.Exp(-(ratio * ratio))
}

// NewModel builds the Model a SchedulerConfig selects, falling back to
// MonotonicModel for an unrecognised kind (never zero quality by
// surprise).
func NewModel(kind domain.QualityModelKind, idealDeg, widthDeg float64) Model {
	switch kind {
	case domain.QualityOff:
		return OffModel{}
	case domain.QualityBand:
		return BandModel{IdealDeg: idealDeg, WidthDeg: widthDeg}
	case domain.QualityMonotonic:
		return MonotonicModel{}
	default:
		return MonotonicModel{}
	}
}

// Normalize clamps negative weights to zero and rescales to sum to 1.
// An all-zero input yields equal thirds.
func Normalize(w domain.Weights) domain.Weights {
	if w.Priority < 0 {
		w.Priority = 0
	}
	if w.Geometry < 0 {
		w.Geometry = 0
	}
	if w.Timing < 0 {
		w.Timing = 0
	}
	sum := w.Priority + w.Geometry + w.Timing
	if sum <= 0 {
		return domain.Weights{Priority: 1.0 / 3, Geometry: 1.0 / 3, Timing: 1.0 / 3}
	}
	return domain.Weights{
		Priority: w.Priority / sum,
		Geometry: w.Geometry / sum,
		Timing:   w.Timing / sum,
	}
}

// PriorityTerm maps priority 1..5 (1 = best) to a normalised [0,1] score,
// clamping out-of-range input rather than erroring since callers already
// validate GroundTarget.Priority.
func PriorityTerm(priority int) float64 {
	if priority < 1 {
		priority = 1
	}
	if priority > 5 {
		priority = 5
	}
	return float64(5-priority) / 4
}

// TimingTerm scores an opportunity's rank k (0-indexed, earliest first)
// within a chronological group of size groupSize: earlier is better, and a
// singleton group scores 1.0 rather than dividing by zero.
func TimingTerm(rank, groupSize int) float64 {
	if groupSize <= 1 {
		return 1.0
	}
	return float64(groupSize-1-rank) / float64(groupSize-1)
}

// CompositeValue combines the three normalised terms into the scheduler's
// objective contribution for one opportunity.
func CompositeValue(priority int, incidenceDeg float64, model Model, rank, groupSize int, w domain.Weights) (base, q, composite float64) {
	base = PriorityTerm(priority)
	q = model.Quality(incidenceDeg)
	tim := TimingTerm(rank, groupSize)
	wn := Normalize(w)
	composite = wn.Priority*base + wn.Geometry*q + wn.Timing*tim
	return base, q, composite
}
