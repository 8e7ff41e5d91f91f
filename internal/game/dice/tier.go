package dice

import "math"

// Tier is the narrative luck classification of a roll.
type Tier string

// The nine luck tiers, from worst to best.
const (
	TierCursed    Tier = "Cursed"
	TierTerrible  Tier = "Terrible"
	TierBad       Tier = "Bad"
	TierUnlucky   Tier = "Unlucky"
	TierNeutral   Tier = "Neutral"
	TierGood      Tier = "Good"
	TierGreat     Tier = "Great"
	TierLegendary Tier = "Legendary"
	TierGodly     Tier = "Godly"
)

// NoDiceNarrative is reported when a request counts no dice at all.
const NoDiceNarrative = "No dice rolled."

// Classification thresholds on the deviation ratio.
const (
	neutralBand    = 0.02
	goodThreshold  = 0.02
	greatThreshold = 0.08
	legendThresh   = 0.16
	godlyThreshold = 0.30
)

var tierOrder = []Tier{
	TierCursed, TierTerrible, TierBad, TierUnlucky,
	TierNeutral,
	TierGood, TierGreat, TierLegendary, TierGodly,
}

var narratives = map[Tier]string{
	TierNeutral:   "Perfectly balanced, as all things should be.",
	TierGodly:     "IMPOSSIBLE LUCK! The universe bends to your will!",
	TierLegendary: "A golden wave of fortune washes over the table.",
	TierGreat:     "The winds of fate are blowing in your favor.",
	TierGood:      "A slight edge in your favor.",
	TierCursed:    "The dice are haunted. Burn them.",
	TierTerrible:  "Dark clouds gather... a disastrous roll.",
	TierBad:       "Luck is not on your side today.",
	TierUnlucky:   "Slightly below average.",
}

// Tiers returns every tier ordered from Cursed to Godly.
func Tiers() []Tier {
	out := make([]Tier, len(tierOrder))
	copy(out, tierOrder)
	return out
}

// Rank returns the signed position of t relative to Neutral: -4 for Cursed up to
// +4 for Godly. Unknown tiers rank 0.
func (t Tier) Rank() int {
	for i, o := range tierOrder {
		if o == t {
			return i - 4
		}
	}
	return 0
}

// Emphasized reports whether t is extreme enough for a presentation layer to
// highlight it.
func (t Tier) Emphasized() bool {
	switch t {
	case TierGodly, TierLegendary, TierCursed, TierTerrible:
		return true
	}
	return false
}

// Narrative returns the fixed sentence for t, or "" for an unknown tier.
func (t Tier) Narrative() string {
	return narratives[t]
}

// Classify maps a deviation ratio to its tier and narrative.
//
// The checks run top to bottom and the first match wins. The Neutral band is tested
// first, which leaves exactly +0.02 and the whole [-0.08, -0.02] range to Unlucky.
func Classify(devRatio float64) (Tier, string) {
	var t Tier
	switch {
	case math.Abs(devRatio) < neutralBand:
		t = TierNeutral
	case devRatio > godlyThreshold:
		t = TierGodly
	case devRatio > legendThresh:
		t = TierLegendary
	case devRatio > greatThreshold:
		t = TierGreat
	case devRatio > goodThreshold:
		t = TierGood
	case devRatio < -godlyThreshold:
		t = TierCursed
	case devRatio < -legendThresh:
		t = TierTerrible
	case devRatio < -greatThreshold:
		t = TierBad
	default:
		t = TierUnlucky
	}
	return t, narratives[t]
}
