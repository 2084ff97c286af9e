// Package collectable is the static catalog of pickup kinds: health, ammo,
// armor, weapons, and backpacks. Keyed by precached model path (armor is
// special-cased by spawn skin), each kind knows what it gives, which sound
// and print text announce it, its bounding box, and whether a given stat
// line would actually collect or remove it (§4.7, grounded on the original
// stats.py's CollectableXxx classes).
//
// The enum-table idiom (a named struct embedding protocol.Enum, collected
// into a lookup slice) is adapted from the teacher's command-type tables.
package collectable

import (
	"github.com/qdemtools/qdem/protocol"
	"github.com/qdemtools/qdem/qmsg"
)

// CollectSound names the one-shot sound a pickup plays, by precache path.
type CollectSound struct {
	protocol.Enum
	Path []byte
}

var (
	SoundHP15   = &CollectSound{protocol.Enum{Name: "HP15"}, []byte("items/r_item1.wav")}
	SoundHP25   = &CollectSound{protocol.Enum{Name: "HP25"}, []byte("items/health1.wav")}
	SoundHP100  = &CollectSound{protocol.Enum{Name: "HP100"}, []byte("items/r_item2.wav")}
	SoundArmor  = &CollectSound{protocol.Enum{Name: "ARMOR"}, []byte("items/armor1.wav")}
	SoundAmmo   = &CollectSound{protocol.Enum{Name: "AMMO"}, []byte("weapons/lock4.wav")}
	SoundWeapon = &CollectSound{protocol.Enum{Name: "WEAPON"}, []byte("weapons/pkup.wav")}
)

// CollectSounds lists every recognized pickup sound path, in declaration
// order; used to test whether a SoundMessage names one of them.
var CollectSounds = []*CollectSound{SoundHP15, SoundHP25, SoundHP100, SoundArmor, SoundAmmo, SoundWeapon}

// Stat bounds (§4.8), shared with the stats package.
const (
	MinHealth     = 1
	MaxHealth     = 100
	MaxMegaHealth = 250
	MaxShells     = 100
	MaxNails      = 200
	MaxRockets    = 100
	MaxCells      = 100
)

// GiveKind distinguishes what one entry of a Kind's Gives list adds.
type GiveKind int

const (
	GiveHealth GiveKind = iota
	GiveShells
	GiveNails
	GiveRockets
	GiveCells
	GiveArmor
	GiveItem
)

// Give is one effect a pickup applies on collection.
type Give struct {
	Kind   GiveKind
	Amount int32          // meaningful for all kinds but GiveItem
	Item   qmsg.ItemFlags // meaningful only for GiveItem
}

// Stats is the minimal view of a player's stat line a Kind's predicates
// need; it mirrors demo.ClientStats without importing package demo (which
// would create an import cycle, since demo never needs to know about
// collectables).
type Stats struct {
	Items   qmsg.ItemFlags
	Health  int32
	Armor   int32
	Shells  int32
	Nails   int32
	Rockets int32
	Cells   int32
}

// Kind is a static pickup kind's fixed attributes.
type Kind struct {
	protocol.Enum

	Gives        []Give
	CollectSound *CollectSound
	Mins, Maxs   [3]float32
	PrintText    []byte

	WillCollect   func(s Stats, isCoop bool) bool
	WillDisappear func(s Stats, isCoop bool) bool
}

func alwaysTrue(Stats, bool) bool { return true }

var smallMins = [3]float32{0, 0, 0}
var smallMaxs = [3]float32{32, 32, 56}
var weaponMins = [3]float32{-16, -16, 0}
var weaponMaxs = [3]float32{16, 16, 56}

func damageReduction(items qmsg.ItemFlags) float32 {
	switch {
	case items.Has(qmsg.ItemArmor1):
		return 0.3
	case items.Has(qmsg.ItemArmor2):
		return 0.6
	case items.Has(qmsg.ItemArmor3):
		return 0.8
	default:
		return 0
	}
}

var (
	Health15 = &Kind{
		Enum: protocol.Enum{Name: "Health15"}, Gives: []Give{{Kind: GiveHealth, Amount: 15}},
		CollectSound: SoundHP15, Mins: smallMins, Maxs: smallMaxs,
		PrintText:     []byte("You receive 15 health\n"),
		WillCollect:   func(s Stats, _ bool) bool { return s.Health < MaxHealth },
		WillDisappear: alwaysTrue,
	}
	Health25 = &Kind{
		Enum: protocol.Enum{Name: "Health25"}, Gives: []Give{{Kind: GiveHealth, Amount: 25}},
		CollectSound: SoundHP25, Mins: smallMins, Maxs: smallMaxs,
		PrintText:     []byte("You receive 25 health\n"),
		WillCollect:   func(s Stats, _ bool) bool { return s.Health < MaxHealth },
		WillDisappear: alwaysTrue,
	}
	Health100 = &Kind{
		Enum: protocol.Enum{Name: "Health100"},
		Gives: []Give{
			{Kind: GiveItem, Item: qmsg.ItemSuperHealth},
			{Kind: GiveHealth, Amount: 100},
		},
		CollectSound:  SoundHP100,
		Mins:          smallMins,
		Maxs:          smallMaxs,
		PrintText:     []byte("You receive 100 health\n"),
		WillCollect:   alwaysTrue,
		WillDisappear: alwaysTrue,
	}

	Shells20 = &Kind{
		Enum: protocol.Enum{Name: "Shells20"}, Gives: []Give{{Kind: GiveShells, Amount: 20}},
		CollectSound: SoundAmmo, Mins: smallMins, Maxs: smallMaxs,
		PrintText:     []byte("You got the shells\n"),
		WillCollect:   func(s Stats, _ bool) bool { return s.Shells < MaxShells },
		WillDisappear: alwaysTrue,
	}
	Shells40 = &Kind{
		Enum: protocol.Enum{Name: "Shells40"}, Gives: []Give{{Kind: GiveShells, Amount: 40}},
		CollectSound: SoundAmmo, Mins: smallMins, Maxs: smallMaxs,
		PrintText:     []byte("You got the shells\n"),
		WillCollect:   func(s Stats, _ bool) bool { return s.Shells < MaxShells },
		WillDisappear: alwaysTrue,
	}
	Nails25 = &Kind{
		Enum: protocol.Enum{Name: "Nails25"}, Gives: []Give{{Kind: GiveNails, Amount: 25}},
		CollectSound: SoundAmmo, Mins: smallMins, Maxs: smallMaxs,
		PrintText:     []byte("You got the nails\n"),
		WillCollect:   func(s Stats, _ bool) bool { return s.Nails < MaxNails },
		WillDisappear: alwaysTrue,
	}
	Nails50 = &Kind{
		Enum: protocol.Enum{Name: "Nails50"}, Gives: []Give{{Kind: GiveNails, Amount: 50}},
		CollectSound: SoundAmmo, Mins: smallMins, Maxs: smallMaxs,
		PrintText:     []byte("You got the nails\n"),
		WillCollect:   func(s Stats, _ bool) bool { return s.Nails < MaxNails },
		WillDisappear: alwaysTrue,
	}
	Rockets5 = &Kind{
		Enum: protocol.Enum{Name: "Rockets5"}, Gives: []Give{{Kind: GiveRockets, Amount: 5}},
		CollectSound: SoundAmmo, Mins: smallMins, Maxs: smallMaxs,
		PrintText:     []byte("You got the rockets\n"),
		WillCollect:   func(s Stats, _ bool) bool { return s.Rockets < MaxRockets },
		WillDisappear: alwaysTrue,
	}
	Rockets10 = &Kind{
		Enum: protocol.Enum{Name: "Rockets10"}, Gives: []Give{{Kind: GiveRockets, Amount: 10}},
		CollectSound: SoundAmmo, Mins: smallMins, Maxs: smallMaxs,
		PrintText:     []byte("You got the rockets\n"),
		WillCollect:   func(s Stats, _ bool) bool { return s.Rockets < MaxRockets },
		WillDisappear: alwaysTrue,
	}
	Cells6 = &Kind{
		Enum: protocol.Enum{Name: "Cells6"}, Gives: []Give{{Kind: GiveCells, Amount: 6}},
		CollectSound: SoundAmmo, Mins: smallMins, Maxs: smallMaxs,
		PrintText:     []byte("You got the cells\n"),
		WillCollect:   func(s Stats, _ bool) bool { return s.Cells < MaxCells },
		WillDisappear: alwaysTrue,
	}
	Cells12 = &Kind{
		Enum: protocol.Enum{Name: "Cells12"}, Gives: []Give{{Kind: GiveCells, Amount: 12}},
		CollectSound: SoundAmmo, Mins: smallMins, Maxs: smallMaxs,
		PrintText:     []byte("You got the cells\n"),
		WillCollect:   func(s Stats, _ bool) bool { return s.Cells < MaxCells },
		WillDisappear: alwaysTrue,
	}

	GreenArmor = &Kind{
		Enum: protocol.Enum{Name: "GreenArmor"},
		Gives: []Give{
			{Kind: GiveItem, Item: qmsg.ItemArmor1},
			{Kind: GiveArmor, Amount: 100},
		},
		CollectSound: SoundArmor, Mins: weaponMins, Maxs: weaponMaxs,
		PrintText: []byte("You got armor\n"),
		WillCollect: func(s Stats, _ bool) bool {
			return damageReduction(qmsg.ItemArmor1)*100 > damageReduction(s.Items)*float32(s.Armor)
		},
		WillDisappear: alwaysTrue,
	}
	YellowArmor = &Kind{
		Enum: protocol.Enum{Name: "YellowArmor"},
		Gives: []Give{
			{Kind: GiveItem, Item: qmsg.ItemArmor2},
			{Kind: GiveArmor, Amount: 150},
		},
		CollectSound: SoundArmor, Mins: weaponMins, Maxs: weaponMaxs,
		PrintText: []byte("You got armor\n"),
		WillCollect: func(s Stats, _ bool) bool {
			return damageReduction(qmsg.ItemArmor2)*150 > damageReduction(s.Items)*float32(s.Armor)
		},
		WillDisappear: alwaysTrue,
	}
	RedArmor = &Kind{
		Enum: protocol.Enum{Name: "RedArmor"},
		Gives: []Give{
			{Kind: GiveItem, Item: qmsg.ItemArmor3},
			{Kind: GiveArmor, Amount: 200},
		},
		CollectSound: SoundArmor, Mins: weaponMins, Maxs: weaponMaxs,
		PrintText: []byte("You got armor\n"),
		WillCollect: func(s Stats, _ bool) bool {
			return damageReduction(qmsg.ItemArmor3)*200 > damageReduction(s.Items)*float32(s.Armor)
		},
		WillDisappear: alwaysTrue,
	}

	SuperShotgun = &Kind{
		Enum: protocol.Enum{Name: "SuperShotgun"},
		Gives: []Give{
			{Kind: GiveItem, Item: qmsg.ItemSuperShotgun},
			{Kind: GiveShells, Amount: 5},
		},
		CollectSound: SoundWeapon, Mins: weaponMins, Maxs: weaponMaxs,
		PrintText:     []byte("You got the Double-barrelled Shotgun\n"),
		WillCollect:   weaponWillCollect(qmsg.ItemSuperShotgun),
		WillDisappear: weaponWillDisappear,
	}
	Nailgun = &Kind{
		Enum: protocol.Enum{Name: "Nailgun"},
		Gives: []Give{
			{Kind: GiveItem, Item: qmsg.ItemNailgun},
			{Kind: GiveNails, Amount: 30},
		},
		CollectSound: SoundWeapon, Mins: weaponMins, Maxs: weaponMaxs,
		PrintText:     []byte("You got the nailgun\n"),
		WillCollect:   weaponWillCollect(qmsg.ItemNailgun),
		WillDisappear: weaponWillDisappear,
	}
	SuperNailgun = &Kind{
		Enum: protocol.Enum{Name: "SuperNailgun"},
		Gives: []Give{
			{Kind: GiveItem, Item: qmsg.ItemSuperNailgun},
			{Kind: GiveNails, Amount: 30},
		},
		CollectSound: SoundWeapon, Mins: weaponMins, Maxs: weaponMaxs,
		PrintText:     []byte("You got the Super Nailgun\n"),
		WillCollect:   weaponWillCollect(qmsg.ItemSuperNailgun),
		WillDisappear: weaponWillDisappear,
	}
	GrenadeLauncher = &Kind{
		Enum: protocol.Enum{Name: "GrenadeLauncher"},
		Gives: []Give{
			{Kind: GiveItem, Item: qmsg.ItemGrenadeLauncher},
			{Kind: GiveRockets, Amount: 5},
		},
		CollectSound: SoundWeapon, Mins: weaponMins, Maxs: weaponMaxs,
		PrintText:     []byte("You got the Grenade Launcher\n"),
		WillCollect:   weaponWillCollect(qmsg.ItemGrenadeLauncher),
		WillDisappear: weaponWillDisappear,
	}
	RocketLauncher = &Kind{
		Enum: protocol.Enum{Name: "RocketLauncher"},
		Gives: []Give{
			{Kind: GiveItem, Item: qmsg.ItemRocketLauncher},
			{Kind: GiveRockets, Amount: 5},
		},
		CollectSound: SoundWeapon, Mins: weaponMins, Maxs: weaponMaxs,
		PrintText:     []byte("You got the Rocket Launcher\n"),
		WillCollect:   weaponWillCollect(qmsg.ItemRocketLauncher),
		WillDisappear: weaponWillDisappear,
	}
	LightningGun = &Kind{
		Enum: protocol.Enum{Name: "LightningGun"},
		Gives: []Give{
			{Kind: GiveItem, Item: qmsg.ItemLightning},
			{Kind: GiveCells, Amount: 15},
		},
		CollectSound: SoundWeapon, Mins: weaponMins, Maxs: weaponMaxs,
		PrintText:     []byte("You got the Thunderbolt\n"),
		WillCollect:   weaponWillCollect(qmsg.ItemLightning),
		WillDisappear: weaponWillDisappear,
	}

	// Backpack is the dynamic ammo pile dropped by a dead player; its Gives
	// are filled in per-instance from the pickup print text (§4.7), not
	// from this static entry.
	Backpack = &Kind{
		Enum: protocol.Enum{Name: "Backpack"},
		Gives: nil, CollectSound: SoundAmmo, Mins: weaponMins, Maxs: weaponMaxs,
		WillCollect:   alwaysTrue,
		WillDisappear: alwaysTrue,
	}
)

func weaponWillCollect(item qmsg.ItemFlags) func(Stats, bool) bool {
	return func(s Stats, isCoop bool) bool {
		return !isCoop || !s.Items.Has(item)
	}
}

func weaponWillDisappear(_ Stats, isCoop bool) bool {
	return !isCoop
}

// ModelKinds maps a precached model/bsp path to its static pickup kind.
// "progs/armor.mdl" is intentionally absent: its kind depends on spawn
// skin and is resolved by ArmorBySkin.
var ModelKinds = map[string]*Kind{
	"maps/b_bh10.bsp":    Health15,
	"maps/b_bh25.bsp":    Health25,
	"maps/b_bh100.bsp":   Health100,
	"maps/b_shell0.bsp":  Shells20,
	"maps/b_shell1.bsp":  Shells40,
	"maps/b_nail0.bsp":   Nails25,
	"maps/b_nail1.bsp":   Nails50,
	"maps/b_rock0.bsp":   Rockets5,
	"maps/b_rock1.bsp":   Rockets10,
	"maps/b_batt0.bsp":   Cells6,
	"maps/b_batt1.bsp":   Cells12,
	"progs/g_shot.mdl":   SuperShotgun,
	"progs/g_nail.mdl":   Nailgun,
	"progs/g_nail2.mdl":  SuperNailgun,
	"progs/g_rock.mdl":   GrenadeLauncher,
	"progs/g_rock2.mdl":  RocketLauncher,
	"progs/g_light.mdl":  LightningGun,
}

// ArmorModelPath is the special-cased armor model, dispatched by skin
// rather than being a fixed 1:1 entry in ModelKinds.
const ArmorModelPath = "progs/armor.mdl"

// ArmorBySkin resolves the armor.mdl spawn skin to its kind: 0=green,
// 1=yellow, 2=red.
func ArmorBySkin(skin uint8) *Kind {
	switch skin {
	case 0:
		return GreenArmor
	case 1:
		return YellowArmor
	default:
		return RedArmor
	}
}

// WeaponModelPath returns the first-person view-model precache path for a
// given weapon (the v_*.mdl models, not the g_*.mdl pickups in ModelKinds) -
// used by stats reconstruction to set ClientStats.WeaponModel.
var WeaponModelPath = map[qmsg.ItemFlags]string{
	qmsg.ItemSuperShotgun:    "progs/v_shot2.mdl",
	qmsg.ItemNailgun:         "progs/v_nail.mdl",
	qmsg.ItemSuperNailgun:    "progs/v_nail2.mdl",
	qmsg.ItemGrenadeLauncher: "progs/v_rock.mdl",
	qmsg.ItemRocketLauncher:  "progs/v_rock2.mdl",
	qmsg.ItemLightning:       "progs/v_light.mdl",
	qmsg.ItemShotgun:         "progs/v_shot.mdl",
	qmsg.ItemAxe:             "progs/v_axe.mdl",
}

// BackpackModelPath is the model a dropped ammo pile spawns as.
const BackpackModelPath = "progs/backpack.mdl"
