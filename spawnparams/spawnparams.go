// Package spawnparams renders a demo's final client stats as the
// setspawnparam console commands an engine reads back in on the next map
// (§4.13, grounded on pydem/spawnparams.py).
package spawnparams

import (
	"fmt"

	"github.com/qdemtools/qdem/demo"
	"github.com/qdemtools/qdem/qmsg"
	"github.com/qdemtools/qdem/stats"
)

// keptAcrossMaps are the items a spawn shouldn't carry forward: powerups and
// keys are map-local, not persistent player progress.
const keptAcrossMaps = qmsg.ItemSuperHealth | qmsg.ItemKey1 | qmsg.ItemKey2 |
	qmsg.ItemInvisibility | qmsg.ItemInvulnerability | qmsg.ItemSuit | qmsg.ItemQuad

// NextMap derives the stats a player should spawn with on the next map from
// their final stats on this one: map-local items are stripped and health and
// shells are floored/ceilinged to a fair minimum starting kit.
func NextMap(s *demo.ClientStats) *demo.ClientStats {
	next := *s
	next.Items &^= keptAcrossMaps

	next.Health = s.Health
	if next.Health < 50 {
		next.Health = 50
	}
	if next.Health > 100 {
		next.Health = 100
	}
	if next.Shells < 25 {
		next.Shells = 25
	}
	return &next
}

func activeWeaponParam(activeWeapon uint8) (float64, error) {
	switch qmsg.ItemFlags(activeWeapon) {
	case qmsg.ItemAxe:
		return 0, nil
	case qmsg.ItemShotgun:
		return 1, nil
	case qmsg.ItemSuperShotgun:
		return 2, nil
	case qmsg.ItemNailgun:
		return 3, nil
	case qmsg.ItemSuperNailgun:
		return 4, nil
	case qmsg.ItemGrenadeLauncher:
		return 5, nil
	case qmsg.ItemRocketLauncher:
		return 6, nil
	case qmsg.ItemLightning:
		return 7, nil
	default:
		return 0, fmt.Errorf("spawnparams: unknown active weapon %d", activeWeapon)
	}
}

// Render lays out NextMap(s) as the nine setspawnparam lines an engine
// expects for player index player, in slot order: items, health, armor,
// shells, nails, rockets, cells, active weapon, armor class.
func Render(s *demo.ClientStats, player int) ([]string, error) {
	next := NextMap(s)
	weapon, err := activeWeaponParam(next.ActiveWeapon)
	if err != nil {
		return nil, err
	}
	reduction := stats.DamageReduction(next.Items)

	return []string{
		fmt.Sprintf("setspawnparam 0 %v %d", float64(next.Items), player),
		fmt.Sprintf("setspawnparam 1 %v %d", float64(next.Health), player),
		fmt.Sprintf("setspawnparam 2 %v %d", float64(next.Armor), player),
		fmt.Sprintf("setspawnparam 3 %v %d", float64(next.Shells), player),
		fmt.Sprintf("setspawnparam 4 %v %d", float64(next.Nails), player),
		fmt.Sprintf("setspawnparam 5 %v %d", float64(next.Rockets), player),
		fmt.Sprintf("setspawnparam 6 %v %d", float64(next.Cells), player),
		fmt.Sprintf("setspawnparam 7 %v %d", weapon, player),
		fmt.Sprintf("setspawnparam 8 %v %d", reduction, player),
	}, nil
}

// RenderAll concatenates Render across every player's final client stats, in
// player order, the full contents of a spawnparams .cfg file.
func RenderAll(finalStats []*demo.ClientStats) ([]string, error) {
	var lines []string
	for i, s := range finalStats {
		rendered, err := Render(s, i)
		if err != nil {
			return nil, err
		}
		lines = append(lines, rendered...)
	}
	return lines, nil
}
