package compiler

// ---------------------------------------------------------------------------
// Values: parameters that occupy a single slot of a code block
// ---------------------------------------------------------------------------

// Value is the interface implemented by every slot value kind.
// The set of implementations is closed.
type Value interface {
	Kind() string
	value() // marker method
}

// Text is a styled text value. The string is written verbatim, so callers
// must not pass unescaped quotes or backslashes.
type Text struct {
	Value string
}

// Number is a numeric value.
type Number struct {
	Value float32
}

// Location is a world position with rotation. Always a non-block location.
type Location struct {
	X, Y, Z    float32
	Pitch, Yaw float32
}

// Vector is a direction with double precision components.
type Vector struct {
	X, Y, Z float64
}

// Sound is a named sound with pitch and volume.
type Sound struct {
	Name   string
	Pitch  float32
	Volume float32
}

// Potion is a potion effect applied for a number of ticks.
type Potion struct {
	Effect    PotionEffect
	Ticks     uint64
	Amplifier int16
}

// Variable references a variable in one of three scopes.
type Variable struct {
	Name  string
	Scope VariableScope
}

// GameValue references a game value, optionally for a target.
// The zero Target is SelectorDefault.
type GameValue struct {
	Name   string
	Target Selector
}

// Tag is a named option of the block it is attached to. Its action and
// block fields are resolved from the enclosing statement at serialization.
type Tag struct {
	Name     string
	Option   string
	Variable *Variable
}

// Particle is a particle effect. It cannot be serialized.
type Particle struct {
	Particle        string
	Amount          uint64
	Color           *[3]uint8
	VariationColor  *float32
	Material        string
	Motion          *Vector
	VariationMotion *float32
	Roll            *float32
	Size            *float32
	VariationSize   *float32
	Spread          [2]float32
}

// Item is an inventory item. It cannot be serialized.
type Item struct {
	Material    string
	Count       int32
	Attributes  []Attribute
	Flags       uint16
	Lore        []string
	ModelData   int64
	Name        string
	Unbreakable bool
	StringTags  map[string]string
	NumTags     map[string]float32
}

// Attribute is an item attribute modifier.
type Attribute struct {
	UUID      string
	Amount    float32
	Operation AttributeOperation
	Name      string
	Slot      string
}

// AttributeOperation selects how an attribute modifier is applied.
type AttributeOperation uint8

const (
	AddModifier AttributeOperation = iota
	MultiplyBase
	MultiplyModifier
)

func (Text) Kind() string      { return "txt" }
func (Number) Kind() string    { return "num" }
func (Location) Kind() string  { return "loc" }
func (Vector) Kind() string    { return "vec" }
func (Sound) Kind() string     { return "snd" }
func (Potion) Kind() string    { return "pot" }
func (Variable) Kind() string  { return "var" }
func (GameValue) Kind() string { return "g_val" }
func (Tag) Kind() string       { return "bl_tag" }
func (Particle) Kind() string  { return "part" }
func (Item) Kind() string      { return "item" }

func (Text) value()      {}
func (Number) value()    {}
func (Location) value()  {}
func (Vector) value()    {}
func (Sound) value()     {}
func (Potion) value()    {}
func (Variable) value()  {}
func (GameValue) value() {}
func (Tag) value()       {}
func (Particle) value()  {}
func (Item) value()      {}

// supported reports whether v has a serialized form.
func supported(v Value) bool {
	switch v.(type) {
	case Text, Number, Location, Vector, Sound, Potion, Variable, GameValue, Tag:
		return true
	}
	return false
}

// ---------------------------------------------------------------------------
// Enumerations
// ---------------------------------------------------------------------------

// VariableScope is the lifetime of a variable.
type VariableScope uint8

const (
	ScopeLocal VariableScope = iota
	ScopeGlobal
	ScopeSaved
)

// String returns the scope name used in serialized output.
func (s VariableScope) String() string {
	switch s {
	case ScopeGlobal:
		return "unsaved"
	case ScopeSaved:
		return "saved"
	default:
		return "local"
	}
}

// ParseVariableScope accepts "local", "global"/"unsaved" and "saved".
func ParseVariableScope(s string) (VariableScope, bool) {
	switch s {
	case "", "local":
		return ScopeLocal, true
	case "global", "unsaved":
		return ScopeGlobal, true
	case "saved":
		return ScopeSaved, true
	}
	return ScopeLocal, false
}

// Selector is the target of an action, condition or game value.
type Selector uint8

const (
	SelectorDefault Selector = iota
	SelectorSelection
	SelectorKiller
	SelectorDamager
	SelectorVictim
	SelectorShooter
	SelectorProjectile
	SelectorLastEntity
	SelectorAllPlayers
	SelectorAllEntities
	SelectorAllMobs
)

var selectorNames = [...]string{
	SelectorDefault:     "Default",
	SelectorSelection:   "Selection",
	SelectorKiller:      "Killer",
	SelectorDamager:     "Damager",
	SelectorVictim:      "Victim",
	SelectorShooter:     "Shooter",
	SelectorProjectile:  "Projectile",
	SelectorLastEntity:  "LastEntity",
	SelectorAllPlayers:  "AllPlayers",
	SelectorAllEntities: "AllEntities",
	SelectorAllMobs:     "AllMobs",
}

func (s Selector) String() string {
	if int(s) < len(selectorNames) {
		return selectorNames[s]
	}
	return selectorNames[SelectorDefault]
}

// ParseSelector looks up a selector by name. The empty string is Default.
func ParseSelector(name string) (Selector, bool) {
	if name == "" {
		return SelectorDefault, true
	}
	for i, n := range selectorNames {
		if n == name {
			return Selector(i), true
		}
	}
	return SelectorDefault, false
}

// PotionEffect is one of the fixed set of potion effects.
type PotionEffect uint8

const (
	Absorption PotionEffect = iota
	ConduitPower
	DolphinGrace
	FireResistance
	Haste
	HealthBoost
	HeroOfTheVillage
	InstantHealth
	Invisibility
	JumpBoost
	Luck
	NightVision
	Regeneration
	Resistance
	Saturation
	SlowFalling
	Speed
	Strength
	WaterBreathing
	BadLuck
	BadOmen
	Blindness
	Darkness
	Glowing
	Hunger
	InstantDamage
	Levitation
	MiningFatigue
	Nausea
	Poison
	Slowness
	Weakness
	Wither
)

var potionNames = [...]string{
	Absorption:       "Absorption",
	ConduitPower:     "Conduit Power",
	DolphinGrace:     "Dolphin's Grace",
	FireResistance:   "Fire Resistance",
	Haste:            "Haste",
	HealthBoost:      "Health Boost",
	HeroOfTheVillage: "Hero of the Village",
	InstantHealth:    "Instant Health",
	Invisibility:     "Invisibility",
	JumpBoost:        "Jump Boost",
	Luck:             "Luck",
	NightVision:      "Night Vision",
	Regeneration:     "Regeneration",
	Resistance:       "Resistance",
	Saturation:       "Saturation",
	SlowFalling:      "Slow Falling",
	Speed:            "Speed",
	Strength:         "Strength",
	WaterBreathing:   "Water Breathing",
	BadLuck:          "Bad Luck",
	BadOmen:          "Bad Omen",
	Blindness:        "Blindness",
	Darkness:         "Darkness",
	Glowing:          "Glowing",
	Hunger:           "Hunger",
	InstantDamage:    "Instant Damage",
	Levitation:       "Levitation",
	MiningFatigue:    "Mining Fatigue",
	Nausea:           "Nausea",
	Poison:           "Poison",
	Slowness:         "Slowness",
	Weakness:         "Weakness",
	Wither:           "Wither",
}

// String returns the in-game effect name.
func (e PotionEffect) String() string {
	if int(e) < len(potionNames) {
		return potionNames[e]
	}
	return "Unknown"
}

// ParsePotionEffect looks up an effect by its in-game name.
func ParsePotionEffect(name string) (PotionEffect, bool) {
	for i, n := range potionNames {
		if n == name {
			return PotionEffect(i), true
		}
	}
	return 0, false
}
