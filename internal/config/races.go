package config

type RacesConfig struct {
	Races []RaceDef `yaml:"races"`
}

type RaceDef struct {
	ID               string   `yaml:"id"`
	Name             string   `yaml:"name"`
	StatModifiers    StatsDef `yaml:"stat_modifiers"`
	SpecialAbilities []string `yaml:"special_abilities"`
	Resistances      []string `yaml:"resistances"`
	Immunities       []string `yaml:"immunities"`
	SlotCost         int      `yaml:"slot_cost"`
	Note             string   `yaml:"note"`
}

// StatsDef is used both for absolute stats and for percentage modifiers.
type StatsDef struct {
	HP  int `yaml:"hp"`
	Str int `yaml:"str"`
	Mag int `yaml:"mag"`
	Skl int `yaml:"skl"`
	Arm int `yaml:"arm"`
	Ldr int `yaml:"ldr"`
}
