package domain

// Position is the strategy's market-neutral stance at a point in time.
type Position int

const (
	// Flat holds no exposure.
	Flat Position = iota
	// LongSpread is long Y / short X scaled by the hedge ratio.
	LongSpread
	// ShortSpread is the mirror: short Y / long X.
	ShortSpread
)

func (p Position) String() string {
	switch p {
	case Flat:
		return "flat"
	case LongSpread:
		return "long_spread"
	case ShortSpread:
		return "short_spread"
	default:
		return "unknown"
	}
}

// Sign maps the position to its spread direction: +1 long, -1 short, 0 flat.
func (p Position) Sign() float64 {
	switch p {
	case LongSpread:
		return 1
	case ShortSpread:
		return -1
	default:
		return 0
	}
}
