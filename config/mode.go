package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Mode selects which texture the drawer visualizes. It never affects what
// the solver computes.
type Mode int

const (
	ModeNormal Mode = iota
	ModeDebugNoise
	ModeDebugFluid
	ModeDebugPressure
	ModeDebugDivergence
)

var modeNames = map[Mode]string{
	ModeNormal:          "normal",
	ModeDebugNoise:      "debug_noise",
	ModeDebugFluid:      "debug_fluid",
	ModeDebugPressure:   "debug_pressure",
	ModeDebugDivergence: "debug_divergence",
}

// String returns the yaml name of the mode.
func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// ParseMode converts a yaml mode name into a Mode.
func ParseMode(s string) (Mode, error) {
	for m, name := range modeNames {
		if name == s {
			return m, nil
		}
	}
	return ModeNormal, fmt.Errorf("unknown mode %q", s)
}

// UnmarshalYAML decodes a mode from its string name.
func (m *Mode) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := ParseMode(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// MarshalYAML encodes a mode as its string name.
func (m Mode) MarshalYAML() (interface{}, error) {
	return m.String(), nil
}
