package config

type StatusesConfig struct {
	Statuses []StatusDef `yaml:"statuses"`
}

type StatusDef struct {
	ID            string `yaml:"id"`
	Name          string `yaml:"name"`
	DamagePerTurn int    `yaml:"damage_per_turn"`
	HealPerTurn   int    `yaml:"heal_per_turn"`
	Duration      int    `yaml:"duration"`
	Disabling     bool   `yaml:"disabling"`
	Note          string `yaml:"note"`
}
