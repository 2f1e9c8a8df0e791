package seed

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Preset is a named seeding profile. Profiles ship as embedded YAML so they
// can be reviewed and extended without touching Go code.
type Preset struct {
	Name            string `yaml:"name"`
	Users           int    `yaml:"users"`
	Posts           int    `yaml:"posts"`
	CommentsPerPost int    `yaml:"comments_per_post"`
	Clean           bool   `yaml:"clean"`
}

//go:embed presets.yml
var presetsYAML []byte

// LoadPresets parses the embedded preset profiles, keyed by name.
func LoadPresets() (map[string]Preset, error) {
	var file struct {
		Presets []Preset `yaml:"presets"`
	}
	if err := yaml.Unmarshal(presetsYAML, &file); err != nil {
		return nil, fmt.Errorf("parsing presets: %w", err)
	}

	presets := make(map[string]Preset, len(file.Presets))
	for _, p := range file.Presets {
		presets[p.Name] = p
	}
	return presets, nil
}

// ApplyPreset runs the seeder with the named profile.
func (s *Seeder) ApplyPreset(name string) error {
	presets, err := LoadPresets()
	if err != nil {
		return err
	}
	preset, ok := presets[name]
	if !ok {
		return fmt.Errorf("unknown preset %q", name)
	}
	return s.Run(Options{
		NumUsers:        preset.Users,
		NumPosts:        preset.Posts,
		CommentsPerPost: preset.CommentsPerPost,
		ShouldClean:     preset.Clean,
	})
}
