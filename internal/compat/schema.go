package compat

import "github.com/duetapp/duet-backend/internal/domain"

// Module is one single-choice profile question with its allowed options
// in a stable order.
type Module struct {
	Key     string   `json:"key"`
	Options []string `json:"options"`
}

// Schema fixes the global bit-vector layout: every module/option pair maps
// to the same global index no matter the input ordering. Unknown modules
// and options are ignored during encoding to tolerate schema drift.
type Schema struct {
	modules []Module
	offsets map[string]int
	options map[string]map[string]int
	total   int
}

func NewSchema(modules []Module) *Schema {
	s := &Schema{
		modules: modules,
		offsets: make(map[string]int, len(modules)),
		options: make(map[string]map[string]int, len(modules)),
	}
	offset := 0
	for _, m := range modules {
		s.offsets[m.Key] = offset
		idx := make(map[string]int, len(m.Options))
		for i, opt := range m.Options {
			idx[opt] = i
		}
		s.options[m.Key] = idx
		offset += len(m.Options)
	}
	s.total = offset
	return s
}

// Modules returns the schema's modules in declaration order.
func (s *Schema) Modules() []Module {
	return s.modules
}

// HasOption reports whether option is a valid choice for the module key.
func (s *Schema) HasOption(key, option string) bool {
	idx, ok := s.options[key]
	if !ok {
		return false
	}
	_, ok = idx[option]
	return ok
}

// TotalOptions is the fixed width of every encoded feature vector.
func (s *Schema) TotalOptions() int {
	return s.total
}

// Encode turns a profile's module selections into the feature bit-vector.
// Every filled module sets exactly one bit; unfilled modules contribute
// all-zero bits.
func (s *Schema) Encode(selections domain.ModuleSelections) []float64 {
	vec := make([]float64, s.total)
	for key, option := range selections {
		idx, ok := s.options[key]
		if !ok {
			continue
		}
		i, ok := idx[option]
		if !ok {
			continue
		}
		vec[s.offsets[key]+i] = 1
	}
	return vec
}

// DefaultSchema enumerates the production profile modules. Appending new
// modules or options at the end keeps existing weight vectors meaningful.
func DefaultSchema() *Schema {
	return NewSchema([]Module{
		{Key: "favoriteFood", Options: []string{"pizza", "sushi", "burgers", "pasta", "tacos", "salad"}},
		{Key: "loveLanguage", Options: []string{"words", "acts", "gifts", "time", "touch"}},
		{Key: "morningOrNight", Options: []string{"morning", "night"}},
		{Key: "idealWeekend", Options: []string{"outdoors", "gaming", "reading", "partying", "cooking", "traveling"}},
		{Key: "petPreference", Options: []string{"dogs", "cats", "both", "neither"}},
		{Key: "musicTaste", Options: []string{"pop", "rock", "hiphop", "electronic", "classical", "country", "jazz"}},
		{Key: "communicationStyle", Options: []string{"texter", "caller", "facetimer"}},
		{Key: "humorStyle", Options: []string{"dry", "slapstick", "sarcastic", "wholesome", "dark"}},
	})
}
