package formulation

import (
	"sort"
	"strings"
)

// MaxSensoryValue is the top of the 0-10 sensory scale.
const MaxSensoryValue = 10

// PresetScore is one descriptor of a sensory preset.
type PresetScore struct {
	Name  string
	Value int
}

// SensoryPreset is a named starting profile.
type SensoryPreset struct {
	Key         string
	Label       string
	Descriptors []PresetScore
}

var sensoryPresets = map[string]SensoryPreset{
	"vanilla": {Key: "vanilla", Label: "Vanilla", Descriptors: []PresetScore{
		{"Sweet", 8}, {"Vanilla", 9}, {"Creamy", 7}, {"Woody", 4}, {"Floral", 3}, {"Spicy", 2},
	}},
	"citrus": {Key: "citrus", Label: "Citrus", Descriptors: []PresetScore{
		{"Sour", 8}, {"Fresh", 9}, {"Sparkling", 7}, {"Citrus", 9}, {"Bitter", 4}, {"Zesty", 6},
	}},
	"fruity": {Key: "fruity", Label: "Fruity", Descriptors: []PresetScore{
		{"Sweet", 7}, {"Fruity", 9}, {"Juicy", 8}, {"Tropical", 6}, {"Sour", 5}, {"Ripe", 7},
	}},
	"floral": {Key: "floral", Label: "Floral", Descriptors: []PresetScore{
		{"Floral", 9}, {"Delicate", 8}, {"Perfumed", 7}, {"Rose", 6}, {"Jasmine", 5}, {"Powdery", 4},
	}},
	"spicy": {Key: "spicy", Label: "Spicy", Descriptors: []PresetScore{
		{"Spicy", 9}, {"Pungent", 7}, {"Warm", 8}, {"Woody", 6}, {"Earthy", 5}, {"Smoky", 4},
	}},
}

// LookupPreset finds a preset by key, ignoring case.
func LookupPreset(key string) (SensoryPreset, bool) {
	p, ok := sensoryPresets[strings.ToLower(strings.TrimSpace(key))]
	if !ok {
		return SensoryPreset{}, false
	}
	p.Descriptors = append([]PresetScore(nil), p.Descriptors...)
	return p, true
}

// PresetKeys lists the available presets in alphabetical order.
func PresetKeys() []string {
	keys := make([]string, 0, len(sensoryPresets))
	for k := range sensoryPresets {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func clampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > MaxSensoryValue {
		return MaxSensoryValue
	}
	return v
}
