package dice

import "go.uber.org/zap"

// Roller wraps a Source and logger to provide logged rolling.
// Every roll is logged at debug level with its purpose, bounds, and result.
// Roller itself satisfies Source so it can be handed to any consumer.
type Roller struct {
	src    Source
	logger *zap.Logger
}

// NewLoggedRoller creates a Roller that rolls with src and logs each roll to logger.
//
// Precondition: src must be non-nil. A nil logger disables logging.
func NewLoggedRoller(src Source, logger *zap.Logger) *Roller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Roller{src: src, logger: logger}
}

// Intn delegates to the wrapped source without logging.
func (r *Roller) Intn(n int) int { return r.src.Intn(n) }

// Roll evaluates expr and logs the result.
func (r *Roller) Roll(expr Expression) RollResult {
	result := Roll(expr, r.src)
	r.logger.Debug("dice roll",
		zap.String("expression", result.Expression),
		zap.Ints("dice", result.Dice),
		zap.Int("modifier", result.Modifier),
		zap.Int("total", result.Total()),
	)
	return result
}

// Between returns a uniform integer in [lo, hi] and logs it under purpose.
func (r *Roller) Between(purpose string, lo, hi int) int {
	v := Between(r.src, lo, hi)
	r.logger.Debug("range roll",
		zap.String("purpose", purpose),
		zap.Int("min", lo),
		zap.Int("max", hi),
		zap.Int("result", v),
	)
	return v
}

// Percentile returns a uniform integer in [0, 100) and logs it under purpose.
func (r *Roller) Percentile(purpose string) int {
	v := r.src.Intn(100)
	r.logger.Debug("percentile roll",
		zap.String("purpose", purpose),
		zap.Int("result", v),
	)
	return v
}
