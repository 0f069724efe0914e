package reference

import "math"

// Op is the comparison a Band applies to a measured value.
type Op int

// Comparators.
const (
	Below   Op = iota // v <  limit
	AtMost            // v <= limit
	AtLeast           // v >= limit
	Above             // v >  limit
)

func (o Op) match(v, limit float64) bool {
	switch o {
	case Below:
		return v < limit
	case AtMost:
		return v <= limit
	case AtLeast:
		return v >= limit
	case Above:
		return v > limit
	default:
		return false
	}
}

// Band awards Points when a value satisfies Op against Limit.
type Band struct {
	Op     Op
	Limit  float64
	Points int
}

// Bands is an ordered rule list. Order it worst-first: the first matching
// band wins, so a value inside several bands takes the most severe one.
type Bands []Band

// Points scores v against the bands; no match scores zero.
func (b Bands) Points(v float64) int {
	for _, band := range b {
		if band.Op.match(v, band.Limit) {
			return band.Points
		}
	}
	return 0
}

// Max is the highest award in the list.
func (b Bands) Max() int {
	m := 0
	for _, band := range b {
		if band.Points > m {
			m = band.Points
		}
	}
	return m
}

// Tier labels values strictly below Upper. The last tier of a list should
// use math.Inf(1) as its bound.
type Tier struct {
	Upper float64
	Label string
}

// Tiers is an ordered, ascending label table.
type Tiers []Tier

// Label returns the label of the first tier whose bound exceeds v.
func (t Tiers) Label(v float64) string {
	for _, tier := range t {
		if v < tier.Upper {
			return tier.Label
		}
	}
	if len(t) == 0 {
		return ""
	}
	return t[len(t)-1].Label
}

// Open is the upper bound of a table's final tier.
var Open = math.Inf(1)
