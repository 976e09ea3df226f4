package scoring

import (
	"fmt"
	"math"
	"strings"
)

// PreferenceProfile defines the relative importance of the three quality
// metrics when scoring a course. Weights are non-negative and the presets
// sum to 1.0, though callers are not forced to stay on a preset.
type PreferenceProfile struct {
	Liked  float64 `json:"liked"`
	Easy   float64 `json:"easy"`
	Useful float64 `json:"useful"`
}

// PresetBalanced is the default preference preset name.
const PresetBalanced = "balanced"

var presets = map[string]PreferenceProfile{
	PresetBalanced: {Liked: 0.4, Easy: 0.3, Useful: 0.3},
	"liked":        {Liked: 0.7, Easy: 0.15, Useful: 0.15},
	"easy":         {Liked: 0.15, Easy: 0.7, Useful: 0.15},
	"useful":       {Liked: 0.15, Easy: 0.15, Useful: 0.7},
}

// ProfileForPreset resolves a named preset. Unrecognized names fall back
// to the balanced profile rather than erroring.
func ProfileForPreset(name string) PreferenceProfile {
	if p, ok := presets[strings.ToLower(strings.TrimSpace(name))]; ok {
		return p
	}
	return presets[PresetBalanced]
}

// KnownPreset reports whether name resolves to a preset without fallback.
func KnownPreset(name string) bool {
	_, ok := presets[strings.ToLower(strings.TrimSpace(name))]
	return ok
}

// PresetNames returns the closed set of preset names.
func PresetNames() []string {
	return []string{PresetBalanced, "liked", "easy", "useful"}
}

// Sum returns the total of all weights.
func (p PreferenceProfile) Sum() float64 {
	return p.Liked + p.Easy + p.Useful
}

// Validate checks that no weight is negative and the profile is non-zero.
// The sum is not pinned to exactly 1.0.
func (p PreferenceProfile) Validate() error {
	for _, v := range []float64{p.Liked, p.Easy, p.Useful} {
		if v < 0 || math.IsNaN(v) {
			return fmt.Errorf("negative or invalid weight: %f", v)
		}
	}
	if p.Sum() == 0 {
		return fmt.Errorf("all weights are zero")
	}
	return nil
}
