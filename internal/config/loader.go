package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Bundle is everything a battle needs from disk.
type Bundle struct {
	Battle   BattleConfig
	Races    RacesConfig
	Weapons  WeaponsConfig
	Skills   SkillsConfig
	Statuses StatusesConfig
	Squads   SquadsConfig
}

func loadYAML(path string, out any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(b, out)
}

// loadOptional leaves out untouched when the file does not exist.
func loadOptional(path string, out any) error {
	err := loadYAML(path, out)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// LoadAll reads the config directory. squads.yaml is required; the other
// files fall back to built-in tables when absent.
func LoadAll(dir string) (*Bundle, error) {
	var b Bundle
	optional := []struct {
		name string
		out  any
	}{
		{"battle.yaml", &b.Battle},
		{"races.yaml", &b.Races},
		{"weapons.yaml", &b.Weapons},
		{"skills.yaml", &b.Skills},
		{"statuses.yaml", &b.Statuses},
	}
	for _, f := range optional {
		path := filepath.Join(dir, f.name)
		if err := loadOptional(path, f.out); err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
	}
	path := filepath.Join(dir, "squads.yaml")
	if err := loadYAML(path, &b.Squads); err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	if err := b.Battle.Normalize(); err != nil {
		return nil, err
	}
	return &b, nil
}

// Parse decodes a single YAML document, used for inline squad definitions.
func Parse(data []byte, out any) error {
	return yaml.Unmarshal(data, out)
}
