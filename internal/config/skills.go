package config

type SkillsConfig struct {
	Skills []Skill `yaml:"skills"`
}

// Skill is a passive combat skill; only its damage and crit percentages reach the battle.
type Skill struct {
	ID            string   `yaml:"id"`
	Name          string   `yaml:"name"`
	DamageBonus   int      `yaml:"damage_bonus"`
	CriticalBonus int      `yaml:"critical_bonus"`
	Tags          []string `yaml:"tags"`
	Note          string   `yaml:"note"`
}
