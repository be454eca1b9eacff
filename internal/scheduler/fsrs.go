package scheduler

import (
	"fmt"
	"math"

	"github.com/verte-zerg/tuica/internal/model"
)

// Memory is the pair of variables the curve evolves per card: stability
// in days and difficulty on a 1..10 scale.
type Memory struct {
	Stability  float64
	Difficulty float64
}

// Curve models how memory strength changes with each graded review and
// how recall probability decays over time. Implementations must keep
// stability positive, must not lower it on Good or Easy, and must lower
// it on Again after a cross-day gap.
type Curve interface {
	// InitialMemory returns the memory created by a card's first review.
	InitialMemory(g model.Grade) Memory

	// NextMemory evolves memory after a review elapsedDays after the
	// previous one. Same-day reviews (elapsedDays < 1) take a short-term
	// path that does not consult retrievability.
	NextMemory(m Memory, elapsedDays float64, g model.Grade) Memory

	// Retrievability is the modeled recall probability elapsedDays after
	// the last review, given the stability at that review.
	Retrievability(elapsedDays, stability float64) float64

	// IntervalDays converts stability into the next review interval at
	// the desired retention, clamped to [1, maxDays].
	IntervalDays(stability, retention float64, maxDays int) int
}

// DefaultWeights are the FSRS-6 default parameters published by the
// open-spaced-repetition project.
var DefaultWeights = [21]float64{
	0.212, 1.2931, 2.3065, 8.2956, // w[0..3]  initial stability per grade
	6.4133, 0.8334, 3.0194, 0.001, // w[4..7]  difficulty
	1.8722, 0.1666, 0.796, 1.4835, // w[8..11] recall stability
	0.0614, 0.2629, 1.6483, 0.6014, // w[12..15] forget stability
	1.8729, 0.5425, 0.0912, 0.0658, // w[16..19] easy bonus, short-term
	0.1542, // w[20] decay exponent
}

var weightLowerBounds = [21]float64{
	0.001, 0.001, 0.001, 0.001,
	1.0, 0.001, 0.001, 0.001,
	0.0, 0.0, 0.001, 0.001,
	0.001, 0.001, 0.0, 0.0,
	1.0, 0.0, 0.0, 0.0,
	0.1,
}

var weightUpperBounds = [21]float64{
	100.0, 100.0, 100.0, 100.0,
	10.0, 4.0, 4.0, 0.75,
	4.5, 0.8, 3.5, 5.0,
	0.25, 0.9, 4.0, 1.0,
	6.0, 2.0, 2.0, 0.8,
	0.8,
}

func validateWeights(w [21]float64) error {
	for i := range w {
		if w[i] < weightLowerBounds[i] || w[i] > weightUpperBounds[i] {
			return fmt.Errorf("%w: w[%d] = %v, bounds [%v, %v]",
				ErrInvalidWeights, i, w[i], weightLowerBounds[i], weightUpperBounds[i])
		}
	}
	return nil
}

// FSRS implements Curve with the FSRS v6 formulas.
type FSRS struct {
	w      [21]float64
	decay  float64 // -w[20]
	factor float64 // 0.9^(1/decay) - 1
}

// NewFSRS builds the curve from 21 weights, checking each against the
// published bounds.
func NewFSRS(weights [21]float64) (*FSRS, error) {
	if err := validateWeights(weights); err != nil {
		return nil, err
	}
	decay := -weights[20]
	return &FSRS{
		w:      weights,
		decay:  decay,
		factor: math.Pow(0.9, 1.0/decay) - 1.0,
	}, nil
}

func (f *FSRS) InitialMemory(g model.Grade) Memory {
	return Memory{
		Stability:  clampStability(f.w[g-1]),
		Difficulty: f.initialDifficulty(g, true),
	}
}

func (f *FSRS) NextMemory(m Memory, elapsedDays float64, g model.Grade) Memory {
	var stability float64
	if elapsedDays < 1 {
		stability = f.shortTermStability(m.Stability, g)
	} else {
		r := f.Retrievability(elapsedDays, m.Stability)
		if g == model.GradeAgain {
			stability = f.forgetStability(m.Difficulty, m.Stability, r)
		} else {
			stability = f.recallStability(m.Difficulty, m.Stability, r, g)
		}
	}
	return Memory{
		Stability:  clampStability(stability),
		Difficulty: f.nextDifficulty(m.Difficulty, g),
	}
}

// Retrievability computes R(t, S) = (1 + factor * t / S) ^ decay.
func (f *FSRS) Retrievability(elapsedDays, stability float64) float64 {
	return math.Pow(1+f.factor*elapsedDays/stability, f.decay)
}

// IntervalDays computes I(r, S) = round((S / factor) * (r^(1/decay) - 1)),
// clamped to [1, maxDays].
func (f *FSRS) IntervalDays(stability, retention float64, maxDays int) int {
	ivl := stability / f.factor * (math.Pow(retention, 1.0/f.decay) - 1)
	days := int(math.Round(ivl))
	if days < 1 {
		days = 1
	}
	if days > maxDays {
		days = maxDays
	}
	return days
}

// initialDifficulty computes D0(G) = w[4] - e^(w[5]*(G-1)) + 1. The
// mean-reversion target in nextDifficulty uses the unclamped value.
func (f *FSRS) initialDifficulty(g model.Grade, clamp bool) float64 {
	d := f.w[4] - math.Exp(f.w[5]*float64(g-1)) + 1
	if clamp {
		return clampDifficulty(d)
	}
	return d
}

// nextDifficulty applies linear damping then mean reversion:
// dD = -w[6]*(G-3); D' = D + (10-D)*dD/9; D'' = w[7]*D0(Easy) + (1-w[7])*D'.
func (f *FSRS) nextDifficulty(difficulty float64, g model.Grade) float64 {
	deltaD := -f.w[6] * (float64(g) - 3)
	dPrime := difficulty + (10-difficulty)*deltaD/9
	d0Easy := f.initialDifficulty(model.GradeEasy, false)
	return clampDifficulty(f.w[7]*d0Easy + (1-f.w[7])*dPrime)
}

// shortTermStability handles same-day reviews:
// sInc = e^(w[17]*(G-3+w[18])) * S^(-w[19]), floored at 1 for Good/Easy.
func (f *FSRS) shortTermStability(stability float64, g model.Grade) float64 {
	sInc := math.Exp(f.w[17]*(float64(g)-3+f.w[18])) * math.Pow(stability, -f.w[19])
	if g == model.GradeGood || g == model.GradeEasy {
		sInc = math.Max(sInc, 1.0)
	}
	return stability * sInc
}

// recallStability computes stability after a successful cross-day
// recall. The gain term is nonnegative, so stability never drops here:
// S' = S * (1 + e^w[8] * (11-D) * S^(-w[9]) * (e^((1-R)*w[10]) - 1) * penalty * bonus).
func (f *FSRS) recallStability(d, s, r float64, g model.Grade) float64 {
	hardPenalty := 1.0
	if g == model.GradeHard {
		hardPenalty = f.w[15]
	}
	easyBonus := 1.0
	if g == model.GradeEasy {
		easyBonus = f.w[16]
	}
	return s * (1 + math.Exp(f.w[8])*
		(11-d)*
		math.Pow(s, -f.w[9])*
		(math.Exp((1-r)*f.w[10])-1)*
		hardPenalty*easyBonus)
}

// forgetStability computes stability after a cross-day lapse. The
// second operand of min keeps the result strictly below the prior
// stability:
// S' = min(w[11] * D^(-w[12]) * ((S+1)^w[13] - 1) * e^((1-R)*w[14]), S / e^(w[17]*w[18])).
func (f *FSRS) forgetStability(d, s, r float64) float64 {
	long := f.w[11] *
		math.Pow(d, -f.w[12]) *
		(math.Pow(s+1, f.w[13]) - 1) *
		math.Exp((1-r)*f.w[14])
	short := s / math.Exp(f.w[17]*f.w[18])
	return math.Min(long, short)
}

func clampStability(s float64) float64 {
	return math.Max(s, 0.001)
}

func clampDifficulty(d float64) float64 {
	return math.Min(math.Max(d, 1), 10)
}
