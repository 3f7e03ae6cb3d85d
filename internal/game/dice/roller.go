package dice

import "go.uber.org/zap"

// Roller wraps a Source and logger to provide the loot rolls.
// Every roll is logged at debug level.
type Roller struct {
	src    Source
	logger *zap.Logger
}

// NewRoller creates a Roller that rolls with src and logs each roll to logger.
//
// Precondition: src and logger must be non-nil.
func NewRoller(src Source, logger *zap.Logger) *Roller {
	return &Roller{src: src, logger: logger}
}

// Chance performs one Bernoulli trial with success probability p.
//
// Postcondition: p >= 1 always succeeds; p <= 0 never succeeds.
func (r *Roller) Chance(p float64) bool {
	if p >= 1 {
		return true
	}
	if p <= 0 {
		return false
	}
	roll := r.src.Float64()
	hit := roll < p
	r.logger.Debug("chance roll",
		zap.Float64("probability", p),
		zap.Float64("roll", roll),
		zap.Bool("hit", hit),
	)
	return hit
}

// Percent performs one Bernoulli trial with success probability pct/100.
func (r *Roller) Percent(pct int) bool {
	return r.Chance(float64(pct) / 100)
}

// IntRange returns a uniformly distributed int in [lo, hi].
//
// Postcondition: returns lo when hi <= lo.
func (r *Roller) IntRange(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + r.src.Intn(hi-lo+1)
}

// WeightedIndex picks an index of weights with probability proportional to its weight.
// Non-positive weights are never picked.
//
// Postcondition: Returns -1 iff no weight is positive.
func (r *Roller) WeightedIndex(weights []float64) int {
	var total float64
	last := -1
	for i, w := range weights {
		if w > 0 {
			total += w
			last = i
		}
	}
	if last < 0 {
		return -1
	}

	target := r.src.Float64() * total
	var acc float64
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		acc += w
		if target < acc {
			r.logger.Debug("weighted roll",
				zap.Int("index", i),
				zap.Int("options", len(weights)),
				zap.Float64("total_weight", total),
			)
			return i
		}
	}
	return last
}
