package stats

import (
	"fmt"

	"github.com/qdemtools/qdem/collectable"
	"github.com/qdemtools/qdem/demo"
	"github.com/qdemtools/qdem/qmsg"
)

// weaponCooldowns is the engine's per-weapon attack interval, used to decide
// how long to wait after running out of ammo before forcing a weapon switch
// (§4.8.3).
var weaponCooldowns = map[qmsg.ItemFlags]float32{
	0:                          0.5, // the axe, which carries no item bit of its own
	qmsg.ItemShotgun:           0.5,
	qmsg.ItemSuperShotgun:      0.7,
	qmsg.ItemNailgun:           0.2,
	qmsg.ItemSuperNailgun:      0.2,
	qmsg.ItemGrenadeLauncher:   0.6,
	qmsg.ItemRocketLauncher:    0.8,
	qmsg.ItemLightning:         0.1,
}

// AmmoForActiveWeapon returns which ammo pool a weapon draws from and the
// player's current count in it; the axe draws from no pool.
func AmmoForActiveWeapon(s *demo.ClientStats) (qmsg.ItemFlags, int32, error) {
	if s.ActiveWeapon == 0 {
		return 0, 0, nil
	}
	switch qmsg.ItemFlags(s.ActiveWeapon) {
	case qmsg.ItemShotgun:
		return qmsg.ItemShells, s.Shells, nil
	case qmsg.ItemSuperShotgun:
		return qmsg.ItemShells, s.Shells, nil
	case qmsg.ItemNailgun:
		return qmsg.ItemNails, s.Nails, nil
	case qmsg.ItemSuperNailgun:
		return qmsg.ItemNails, s.Nails, nil
	case qmsg.ItemGrenadeLauncher:
		return qmsg.ItemRockets, s.Rockets, nil
	case qmsg.ItemRocketLauncher:
		return qmsg.ItemRockets, s.Rockets, nil
	case qmsg.ItemLightning:
		return qmsg.ItemCells, s.Cells, nil
	default:
		return 0, 0, fmt.Errorf("stats: unknown activeweapon %#x", s.ActiveWeapon)
	}
}

// WeaponCooldownForActiveWeapon returns the attack interval used to delay a
// forced weapon switch after running dry.
func WeaponCooldownForActiveWeapon(s *demo.ClientStats) (float32, error) {
	cd, ok := weaponCooldowns[qmsg.ItemFlags(s.ActiveWeapon)]
	if !ok {
		return 0, fmt.Errorf("stats: unknown activeweapon %#x", s.ActiveWeapon)
	}
	return cd, nil
}

// WeaponModelForActiveWeapon returns the view-model precache path for the
// player's current weapon.
func WeaponModelForActiveWeapon(s *demo.ClientStats) (string, error) {
	if s.ActiveWeapon == 0 {
		return "progs/v_axe.mdl", nil
	}
	path, ok := collectable.WeaponModelPath[qmsg.ItemFlags(s.ActiveWeapon)]
	if !ok {
		return "", fmt.Errorf("stats: unknown activeweapon %#x", s.ActiveWeapon)
	}
	return path, nil
}

// BestActiveWeapon picks the highest-tier weapon the player both owns and
// has ammo for, falling back to the axe (§4.8.3).
func BestActiveWeapon(s *demo.ClientStats) qmsg.ItemFlags {
	switch {
	case s.Cells >= 1 && s.Items.Has(qmsg.ItemLightning):
		return qmsg.ItemLightning
	case s.Nails >= 2 && s.Items.Has(qmsg.ItemSuperNailgun):
		return qmsg.ItemSuperNailgun
	case s.Shells >= 2 && s.Items.Has(qmsg.ItemSuperShotgun):
		return qmsg.ItemSuperShotgun
	case s.Nails >= 1 && s.Items.Has(qmsg.ItemNailgun):
		return qmsg.ItemNailgun
	case s.Shells >= 1 && s.Items.Has(qmsg.ItemShotgun):
		return qmsg.ItemShotgun
	default:
		return 0
	}
}

// ActiveWeaponManager decides, per player, when a dry weapon must be
// auto-switched away from: the engine delays the switch by one attack
// cooldown after the player first runs out of ammo, so the switch lands on
// the same block a freshly-reconstructed demo's ammo count would (§4.8.3).
type ActiveWeaponManager struct {
	timeSwitchRequired []float32
	printed            []bool
}

// switchOffset is the small epsilate the original reconstruction adds on
// top of a weapon's cooldown before forcing the switch; its exact origin is
// unclear, inherited verbatim from the reference implementation.
const switchOffset = 0.1 + 1.0/72.0

// NewActiveWeaponManager allocates per-player switch-timer state.
func NewActiveWeaponManager(numPlayers int) *ActiveWeaponManager {
	timers := make([]float32, numPlayers)
	for i := range timers {
		timers[i] = float32(1e30)
	}
	return &ActiveWeaponManager{timeSwitchRequired: timers, printed: make([]bool, numPlayers)}
}

func (a *ActiveWeaponManager) disableSwitchRequired(player int) {
	a.printed[player] = false
	a.timeSwitchRequired[player] = float32(1e30)
}

func (a *ActiveWeaponManager) enableSwitchRequired(player int, s *demo.ClientStats, time float32) error {
	cooldown, err := WeaponCooldownForActiveWeapon(s)
	if err != nil {
		return err
	}
	required := time + cooldown + switchOffset
	if required < a.timeSwitchRequired[player] {
		a.timeSwitchRequired[player] = required
	}
	return nil
}

// FirstActiveWeapon picks a player's starting weapon: if the stats line we
// were handed names an unarmed-for weapon, switch immediately to the best
// one actually usable.
func (a *ActiveWeaponManager) FirstActiveWeapon(s *demo.ClientStats) (uint8, error) {
	ammoItem, ammo, err := AmmoForActiveWeapon(s)
	if err != nil {
		return 0, err
	}
	if ammoItem != 0 && ammo <= 0 {
		return uint8(BestActiveWeapon(s)), nil
	}
	return s.ActiveWeapon, nil
}

// GetActiveWeapon returns the weapon that should be active for a player on
// this block, switching away from a dry weapon once its cooldown has
// elapsed since it first ran out. The engine only ever forces a weapon
// switch on a frame where the old weapon's fire animation has returned to
// rest (weaponframe 0); forcing it mid-animation would desync the view
// model from what the original recording shows (§4.8.3/§4.8.7).
func (a *ActiveWeaponManager) GetActiveWeapon(player int, s, oldStats *demo.ClientStats, time float32) (uint8, error) {
	ammoItem, ammo, err := AmmoForActiveWeapon(s)
	if err != nil {
		return 0, err
	}
	if ammoItem != 0 && ammo <= 0 {
		if err := a.enableSwitchRequired(player, s, time); err != nil {
			return 0, err
		}
		if time >= a.timeSwitchRequired[player] && s.WeaponFrame == 0 {
			next := BestActiveWeapon(s)
			a.printed[player] = true
			return uint8(next), nil
		}
	} else {
		a.disableSwitchRequired(player)
	}
	return s.ActiveWeapon, nil
}
