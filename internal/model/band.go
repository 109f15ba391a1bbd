package model

// Band represents a content-score band.
// Scores live in [0.0, 1.0]; bands bucket them for reporting so a reader
// can see the shape of a crawl (how many rich pages versus thin ones)
// without studying raw floats.
type Band int

// Band constants, ordered from lowest to highest quality.
const (
	// BandPoor is for scores in [0.0, 0.2): boilerplate or near-empty pages.
	BandPoor Band = iota
	// BandFair is for scores in [0.2, 0.4): thin content.
	BandFair
	// BandGood is for scores in [0.4, 0.6): useful content.
	BandGood
	// BandStrong is for scores in [0.6, 0.8): substantial content.
	BandStrong
	// BandExcellent is for scores in [0.8, 1.0]: rich, structured content.
	BandExcellent
)

// BandForScore returns the band a content score falls into.
// Scores outside [0, 1] are clamped first.
func BandForScore(score float64) Band {
	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}

	switch {
	case score < 0.2:
		return BandPoor
	case score < 0.4:
		return BandFair
	case score < 0.6:
		return BandGood
	case score < 0.8:
		return BandStrong
	default:
		return BandExcellent
	}
}

// String returns the string representation of the Band.
func (b Band) String() string {
	switch b {
	case BandPoor:
		return "poor"
	case BandFair:
		return "fair"
	case BandGood:
		return "good"
	case BandStrong:
		return "strong"
	case BandExcellent:
		return "excellent"
	default:
		return "unknown"
	}
}

// AllBands returns every band from lowest to highest.
func AllBands() []Band {
	return []Band{BandPoor, BandFair, BandGood, BandStrong, BandExcellent}
}
