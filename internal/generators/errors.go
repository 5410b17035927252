package generators

import "errors"

var (
	ErrTooFewNodes = errors.New("generators: too few nodes")

	// ErrInvalidProbability means a probability outside [0, 1].
	ErrInvalidProbability = errors.New("generators: probability out of range")

	ErrInvalidSize = errors.New("generators: invalid edge size or count")

	ErrNeedRandSource = errors.New("generators: rng is required")

	ErrUnknownModel = errors.New("generators: unknown model")
)
