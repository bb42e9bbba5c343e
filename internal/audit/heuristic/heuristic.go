// Package heuristic turns spectral measurements into a fraud score and explanatory flags.
//
// Scoring is a declarative table: each Rule selects one metric and lists tiers, most severe first.
// Only the first matching tier of a rule fires; rules are independent and their scores add up.
package heuristic

import "github.com/farcloser/ersatz/internal/types"

// Metric selects the value a rule is evaluated against.
type Metric func(details *types.SpectralDetails) float64

// Direction tells whether larger or smaller values are worse.
type Direction int

const (
	// Above fires when the metric is strictly greater than the tier threshold.
	Above Direction = iota
	// Below fires when the metric is strictly lower than the tier threshold.
	Below
)

// Tier is one threshold of a rule.
type Tier struct {
	Threshold float64
	Score     uint
	Flag      string
}

// Rule is a family of mutually exclusive tiers over one metric.
type Rule struct {
	Name      string
	Metric    Metric
	Direction Direction
	Tiers     []Tier // most severe first
}

// Match returns the first tier whose threshold the metric crosses.
func (r Rule) Match(details *types.SpectralDetails) (Tier, bool) {
	if r.Metric == nil {
		return Tier{}, false
	}

	value := r.Metric(details)

	for _, tier := range r.Tiers {
		switch r.Direction {
		case Above:
			if value > tier.Threshold {
				return tier, true
			}
		case Below:
			if value < tier.Threshold {
				return tier, true
			}
		}
	}

	return Tier{}, false
}

// Evaluate applies every rule to details. Flags are reported in rule order and are never nil.
func Evaluate(details *types.SpectralDetails, rules []Rule) (uint, []string) {
	var score uint

	flags := []string{}

	for _, rule := range rules {
		tier, ok := rule.Match(details)
		if !ok {
			continue
		}

		score += tier.Score
		flags = append(flags, tier.Flag)
	}

	return score, flags
}

// UpperDrop selects the 10-15 kHz to 17-20 kHz drop.
func UpperDrop(d *types.SpectralDetails) float64 { return d.UpperDrop }

// UltrasonicDrop selects the 19-20 kHz to 20-22 kHz drop.
func UltrasonicDrop(d *types.SpectralDetails) float64 { return d.UltrasonicDrop }

// UltrasonicFlatness selects the 19-21 kHz flatness.
func UltrasonicFlatness(d *types.SpectralDetails) float64 { return d.UltrasonicFlatness }

// HighDrop selects the full band to 15-20 kHz drop.
func HighDrop(d *types.SpectralDetails) float64 { return d.HighDrop }

// RmsUpper selects the 17-20 kHz level.
func RmsUpper(d *types.SpectralDetails) float64 { return d.RmsUpper }

// RmsUltrasonic selects the 20-22 kHz level.
func RmsUltrasonic(d *types.SpectralDetails) float64 { return d.RmsUltrasonic }

// DefaultRules returns the stock rule table.
//
// upper_drop is the most diagnostic metric: genuine lossless rolls off by 4-6 dB between 10-15 kHz and
// 17-20 kHz, while 128k MP3 leaves 40-70 dB. The ultrasonic drop and flatness pair targets 320k sources,
// which pass the upper check but leave a cliff and an empty band just above 19-20 kHz.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:      "upper_drop",
			Metric:    UpperDrop,
			Direction: Above,
			Tiers: []Tier{
				{Threshold: 40, Score: 50, Flag: "severe_hf_damage"},
				{Threshold: 15, Score: 35, Flag: "hf_cutoff_detected"},
				{Threshold: 10, Score: 20, Flag: "possible_lossy_origin"},
			},
		},
		{
			Name:      "ultrasonic_drop",
			Metric:    UltrasonicDrop,
			Direction: Above,
			Tiers: []Tier{
				{Threshold: 40, Score: 35, Flag: "cliff_at_20khz"},
				{Threshold: 25, Score: 25, Flag: "steep_20khz_cutoff"},
				{Threshold: 15, Score: 15, Flag: "possible_320k_origin"},
			},
		},
		{
			Name:      "ultrasonic_flatness",
			Metric:    UltrasonicFlatness,
			Direction: Below,
			Tiers: []Tier{
				{Threshold: 0.3, Score: 20, Flag: "dead_ultrasonic_band"},
				{Threshold: 0.5, Score: 10, Flag: "weak_ultrasonic_content"},
			},
		},
		{
			Name:      "high_drop",
			Metric:    HighDrop,
			Direction: Above,
			Tiers:     []Tier{{Threshold: 48, Score: 15, Flag: "steep_hf_rolloff"}},
		},
		{
			Name:      "rms_upper",
			Metric:    RmsUpper,
			Direction: Below,
			Tiers:     []Tier{{Threshold: -50, Score: 15, Flag: "silent_17k+"}},
		},
		{
			Name:      "rms_ultrasonic",
			Metric:    RmsUltrasonic,
			Direction: Below,
			Tiers:     []Tier{{Threshold: -70, Score: 10, Flag: "silent_20k+"}},
		},
	}
}
