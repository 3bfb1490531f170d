package config

type WeaponsConfig struct {
	Weapons []WeaponDef `yaml:"weapons"`
	Embers  []EmberDef  `yaml:"embers"`
}

type WeaponDef struct {
	ID          string   `yaml:"id"`
	Name        string   `yaml:"name"`
	Type        string   `yaml:"type"`
	BaseDamage  int      `yaml:"base_damage"`
	DamageType  string   `yaml:"damage_type"`
	HitBonus    int      `yaml:"hit_bonus"`
	CritBonus   int      `yaml:"crit_bonus"`
	StatBonuses StatsDef `yaml:"stat_bonuses"`
	EmberSlots  int      `yaml:"ember_slots"`
	Note        string   `yaml:"note"`
}

type EmberDef struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	DamageBonus int    `yaml:"damage_bonus"`
	DamageType  string `yaml:"damage_type"`
	Note        string `yaml:"note"`
}
