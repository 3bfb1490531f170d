package combat

import (
	"fmt"
	"math"

	"squadsim/internal/roster"
	"squadsim/internal/util"
)

type ModifierSource string

const (
	SourceWeaponProficiency ModifierSource = "weapon_proficiency"
	SourceEmber             ModifierSource = "ember"
	SourceStatBonus         ModifierSource = "stat_bonus"
	SourceFormationBonus    ModifierSource = "formation_bonus"
	SourceSkillBonus        ModifierSource = "skill_bonus"
	SourceRacialTrait       ModifierSource = "racial_trait"
	SourceArmor             ModifierSource = "armor"
	SourceResistance        ModifierSource = "resistance"
	SourceCriticalHit       ModifierSource = "critical_hit"
)

type DamageModifier struct {
	Source      ModifierSource `json:"source"`
	Value       float64        `json:"value"`
	Description string         `json:"description"`
}

type DamageResult struct {
	BaseDamage        int               `json:"base_damage"`
	PreMitigation     float64           `json:"pre_mitigation"`
	FinalDamage       int               `json:"final_damage"`
	DamageType        roster.DamageType `json:"damage_type"`
	IsCritical        bool              `json:"is_critical"`
	CritChance        int               `json:"crit_chance"`
	ResistanceApplied int               `json:"resistance_applied"`
	Modifiers         []DamageModifier  `json:"modifiers"`
}

// FormationBonuses carries the slot bonuses of both sides of one attack.
type FormationBonuses struct {
	Attacker roster.FormationBonus
	Defender roster.FormationBonus
}

func FormationBonusesFor(attacker, defender roster.Position) FormationBonuses {
	return FormationBonuses{Attacker: roster.FormationBonusFor(attacker), Defender: roster.FormationBonusFor(defender)}
}

const (
	minArmorMultiplier = 0.1
	critMultiplier     = 2.0
	primalFuryCrit     = 20
	resistMultiplier   = 0.5
	floorEpsilon       = 1e-9
)

type DamageCalculator struct {
	races RaceLookup
	rng   util.Source
}

func NewDamageCalculator(races RaceLookup, rng util.Source) *DamageCalculator {
	if races == nil {
		races = roster.DefaultRaces()
	}
	return &DamageCalculator{races: races, rng: rng}
}

// Calculate resolves one hit. It never mutates either unit; the only side
// effect is one crit roll drawn from the calculator's source.
func (c *DamageCalculator) Calculate(att, def Combatant, fb FormationBonuses) (res DamageResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			res = DamageResult{}
			err = &DamageCalculationError{AttackerID: idOf(att), DefenderID: idOf(def), Err: fmt.Errorf("panic: %v", r)}
		}
	}()
	if att == nil || def == nil {
		return DamageResult{}, &DamageCalculationError{AttackerID: idOf(att), DefenderID: idOf(def), Err: fmt.Errorf("missing combatant")}
	}
	fail := func(err error) (DamageResult, error) {
		return DamageResult{}, &DamageCalculationError{AttackerID: att.ID(), DefenderID: def.ID(), Err: err}
	}

	as, ds := att.Stats(), def.Stats()
	res.DamageType = roster.Physical
	mod := func(src ModifierSource, v float64, format string, args ...any) {
		res.Modifiers = append(res.Modifiers, DamageModifier{Source: src, Value: v, Description: fmt.Sprintf(format, args...)})
	}

	weapon := att.EquippedWeapon()
	if weapon != nil {
		base, err := att.WeaponDamage()
		if err != nil {
			return fail(err)
		}
		res.BaseDamage = base
		res.DamageType = weapon.EffectiveDamageType()
		if prof := att.Proficiency(weapon.Type); prof > 0 {
			mod(SourceWeaponProficiency, float64(prof), "%s proficiency %d included in weapon damage", weapon.Type, prof)
		}
		if ed := weapon.EmberDamage(); ed > 0 {
			mod(SourceEmber, float64(ed), "+%d ember damage (%s)", ed, res.DamageType)
		}
	} else {
		res.BaseDamage = max(1, as.Str/4)
	}
	dmg := float64(res.BaseDamage)

	statPct := as.Str
	if !res.DamageType.IsPhysical() {
		statPct = as.Mag
	}
	if statPct != 0 {
		dmg *= 1 + float64(statPct)/100
		mod(SourceStatBonus, float64(statPct), "%+d%% from stats", statPct)
	}

	formPct := fb.Attacker.RangedDamageBonus
	if res.DamageType.IsPhysical() {
		formPct = fb.Attacker.PhysicalDamageBonus
	}
	if formPct != 0 {
		dmg *= 1 + float64(formPct)/100
		mod(SourceFormationBonus, float64(formPct), "%+d%% from formation", formPct)
	}

	if sk := att.CombatBonuses().DamageBonus; sk != 0 {
		dmg *= 1 + float64(sk)/100
		mod(SourceSkillBonus, float64(sk), "%+d%% from skills", sk)
	}

	if rb := c.races.Traits(att.Race()).DamageBonus(res.DamageType); rb != 0 {
		dmg *= 1 + float64(rb)/100
		mod(SourceRacialTrait, float64(rb), "%+d%% racial %s bonus", rb, res.DamageType)
	}
	res.PreMitigation = dmg

	var armor float64
	if res.DamageType.IsPhysical() {
		armor = float64(ds.Arm + fb.Defender.ArmorBonus + fb.Defender.PhysicalDamageReduction)
	} else {
		armor = float64(ds.Mag) * 0.5
	}
	if armor != 0 {
		mult := math.Max(minArmorMultiplier, 1-armor/100)
		dmg *= mult
		mod(SourceArmor, -(1-mult)*100, "%.0f%% mitigated by %.1f defence", (1-mult)*100, armor)
	}

	defTraits := c.races.Traits(def.Race())
	switch {
	case defTraits.Immune(res.DamageType):
		dmg = 0
		res.ResistanceApplied = 100
		mod(SourceResistance, -100, "%s is immune to %s", defTraits.Name, res.DamageType)
	case defTraits.Resists(res.DamageType):
		dmg *= resistMultiplier
		res.ResistanceApplied = 50
		mod(SourceResistance, -50, "%s resists %s", defTraits.Name, res.DamageType)
	}

	if res.ResistanceApplied < 100 {
		res.CritChance = c.critChance(att, as, ds, weapon)
		if c.rng.NextFloat()*100 < float64(res.CritChance) {
			dmg *= critMultiplier
			res.IsCritical = true
			mod(SourceCriticalHit, 100, "critical hit (%d%% chance)", res.CritChance)
		}
	}

	res.FinalDamage = int(math.Floor(dmg + floorEpsilon))
	if dmg > 0 && res.FinalDamage < 1 && res.ResistanceApplied < 100 {
		res.FinalDamage = 1
	}
	if res.FinalDamage < 0 {
		res.FinalDamage = 0
	}
	return res, nil
}

func (c *DamageCalculator) critChance(att Combatant, as, ds roster.Stats, weapon *roster.Weapon) int {
	chance := min(max(5+as.Skl-ds.Skl, 5), 25)
	chance += att.CombatBonuses().CriticalBonus
	if weapon != nil {
		chance += weapon.CritBonus
	}
	if c.races.Traits(att.Race()).HasAbility(roster.PrimalFury) && att.CurrentHP()*2 < att.MaxHP() {
		chance += primalFuryCrit
	}
	return chance
}

func idOf(c Combatant) (id string) {
	defer func() {
		if recover() != nil {
			id = ""
		}
	}()
	if c == nil {
		return ""
	}
	return c.ID()
}
