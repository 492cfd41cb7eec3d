package drawsheet

import (
	"sort"

	"github.com/pkg/errors"
)

// Cash5 is a 5-of-36 cash game whose bulletins print the regular draw
// beside a parallel double-play drawing for the same date.
func Cash5() GameConfig {
	return GameConfig{
		Name:     "cash5",
		Arity:    5,
		MinValue: 1,
		MaxValue: 36,
		TagPriority: map[string]int{
			"REGULAR": 2, // explicit primary label outranks untagged
		},
		UntaggedPriority: 1,
		VariantTags:      []string{"DOUBLE PLAY"},
	}
}

// Classic6 is a 6-of-53 lotto game: one drawing per date, no variants.
func Classic6() GameConfig {
	return GameConfig{
		Name:             "classic6",
		Arity:            6,
		MinValue:         1,
		MaxValue:         53,
		UntaggedPriority: 1,
	}
}

// Daily3 draws three numbers from 1-15 three times a day; its bulletins
// share one date column across the per-session rows.
func Daily3() GameConfig {
	return GameConfig{
		Name:             "daily3",
		Arity:            3,
		MinValue:         1,
		MaxValue:         15,
		Sessions:         []string{"MORNING", "DAY", "EVENING"},
		UntaggedPriority: 1,
	}
}

var gamePresets = map[string]func() GameConfig{
	"cash5":    Cash5,
	"classic6": Classic6,
	"daily3":   Daily3,
}

// GameByName looks up a built-in game preset.
func GameByName(name string) (GameConfig, error) {
	preset, ok := gamePresets[name]
	if !ok {
		return GameConfig{}, errors.Errorf("unknown game %q (have %v)", name, GameNames())
	}
	return preset(), nil
}

// GameNames lists the built-in presets in stable order.
func GameNames() []string {
	names := make([]string, 0, len(gamePresets))
	for name := range gamePresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
