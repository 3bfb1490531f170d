package config

type SquadsConfig struct {
	Squads []SquadDef `yaml:"squads"`
}

type SquadDef struct {
	ID       string    `yaml:"id" json:"id"`
	Name     string    `yaml:"name" json:"name"`
	Cohesion int       `yaml:"cohesion" json:"cohesion,omitempty"`
	Units    []UnitDef `yaml:"units" json:"units"`
	Note     string    `yaml:"note" json:"note,omitempty"`
}

type UnitDef struct {
	ID            string         `yaml:"id" json:"id"`
	Name          string         `yaml:"name" json:"name"`
	Race          string         `yaml:"race" json:"race"`
	Archetype     string         `yaml:"archetype" json:"archetype,omitempty"`
	Level         int            `yaml:"level" json:"level,omitempty"`
	Stats         StatsDef       `yaml:"stats" json:"stats"`
	Bonuses       StatsDef       `yaml:"bonuses" json:"bonuses,omitempty"`
	Weapon        string         `yaml:"weapon" json:"weapon,omitempty"`
	Embers        []string       `yaml:"embers" json:"embers,omitempty"`
	Proficiencies map[string]int `yaml:"proficiencies" json:"proficiencies,omitempty"`
	Skills        []string       `yaml:"skills" json:"skills,omitempty"`
	Statuses      []string       `yaml:"statuses" json:"statuses,omitempty"`
	Slot          string         `yaml:"slot" json:"slot,omitempty"`
}
