package stats

import (
	"fmt"
	"math"

	"github.com/icza/gox/mathx"

	"github.com/qdemtools/qdem/collect"
	"github.com/qdemtools/qdem/collectable"
	"github.com/qdemtools/qdem/demo"
	"github.com/qdemtools/qdem/qmsg"
)

// PlayerDemo bundles one player's own-viewpoint demo with the collection
// history already inferred from it (§4.8), the unit RebuildStats operates
// on.
type PlayerDemo struct {
	Demo                *demo.Demo
	StartStats          *demo.ClientStats
	StaticCollections   [][]*collect.Collectable
	BackpackCollections [][]*collect.Collectable
}

func cloneStats(s *demo.ClientStats) *demo.ClientStats {
	c := *s
	return &c
}

func statsOf(s *demo.ClientStats) collectable.Stats {
	return collectable.Stats{Items: s.Items, Health: s.Health, Armor: s.Armor, Shells: s.Shells, Nails: s.Nails, Rockets: s.Rockets, Cells: s.Cells}
}

func boundStat(value int32, max int32) int32 {
	return mathx.Clamp(value, math.MinInt32, max)
}

func boundHealth(value int32, items qmsg.ItemFlags) int32 {
	if items.Has(qmsg.ItemSuperHealth) {
		return boundStat(value, collectable.MaxMegaHealth)
	}
	return boundStat(value, collectable.MaxHealth)
}

func boundAmmo(kind collectable.GiveKind, value int32) int32 {
	switch kind {
	case collectable.GiveShells:
		return boundStat(value, collectable.MaxShells)
	case collectable.GiveNails:
		return boundStat(value, collectable.MaxNails)
	case collectable.GiveRockets:
		return boundStat(value, collectable.MaxRockets)
	case collectable.GiveCells:
		return boundStat(value, collectable.MaxCells)
	default:
		return value
	}
}

func ammoField(s *demo.ClientStats, kind collectable.GiveKind) *int32 {
	switch kind {
	case collectable.GiveShells:
		return &s.Shells
	case collectable.GiveNails:
		return &s.Nails
	case collectable.GiveRockets:
		return &s.Rockets
	case collectable.GiveCells:
		return &s.Cells
	default:
		return nil
	}
}

// RebuildStats replays every player's damage, collection, and weapon-switch
// history in global time order, producing the corrected per-block
// ClientStats for each player's own demo (written back via SetClientStats)
// and returning the pickups actually applied, for use by the fixup package
// to reconcile the sound/print events every player's demo shows for the
// same collections (§4.8).
func RebuildStats(players []PlayerDemo, isCoop bool) ([][][]*collect.Collectable, error) {
	n := len(players)
	if n == 0 {
		return nil, nil
	}

	models, err := players[0].Demo.GetPrecaches()
	if err != nil {
		return nil, err
	}
	statics, err := collect.StaticCollectables(players[0].Demo, models.Models)
	if err != nil {
		return nil, err
	}

	times := make([][]float32, n)
	damage := make([][]*qmsg.DamageMessage, n)
	possible := make([][][]*collect.Collectable, n)
	oldStatsList := make([][]*demo.ClientStats, n)
	numBlocks := make([]int, n)

	for p, pl := range players {
		times[p] = append(append([]float32(nil), pl.Demo.GetTime()...), float32(math.Inf(1)))
		damage[p], err = GetDamage(pl.Demo)
		if err != nil {
			return nil, err
		}
		possible[p], err = GetPossibleCollections(pl.Demo, statics, pl.StaticCollections)
		if err != nil {
			return nil, err
		}
		oldStatsList[p] = pl.Demo.GetClientStats()
		numBlocks[p] = len(pl.Demo.Blocks)
	}

	iPerPlayer := make([]int, n)
	oldStatsPrevious := make([]*demo.ClientStats, n)
	statsPerPlayer := make([]*demo.ClientStats, n)
	for p := range statsPerPlayer {
		statsPerPlayer[p] = cloneStats(players[p].StartStats)
	}
	statsListPerPlayer := make([][]*demo.ClientStats, n)
	actualCollectionsPerPlayer := make([][][]*collect.Collectable, n)
	for p := range actualCollectionsPerPlayer {
		actualCollectionsPerPlayer[p] = make([][]*collect.Collectable, numBlocks[p])
	}
	consumedInOriginal := make(map[int32]bool)
	weaponMgr := NewActiveWeaponManager(n)
	anyStatsYet := false

	for {
		player := -1
		best := float32(math.Inf(1))
		for p := 0; p < n; p++ {
			if iPerPlayer[p] < numBlocks[p] && times[p][iPerPlayer[p]] < best {
				best, player = times[p][iPerPlayer[p]], p
			}
		}
		if player < 0 {
			break
		}

		i := iPerPlayer[player]
		time := times[player][i]
		iPerPlayer[player]++

		oldStatsData := oldStatsList[player][i]
		if oldStatsData == nil {
			statsListPerPlayer[player] = append(statsListPerPlayer[player], nil)
			continue
		}
		oldStats := &demo.ClientStats{Items: oldStatsData.Items, Health: oldStatsData.Health, Armor: oldStatsData.Armor,
			Shells: oldStatsData.Shells, Nails: oldStatsData.Nails, Rockets: oldStatsData.Rockets, Cells: oldStatsData.Cells,
			ActiveWeapon: oldStatsData.ActiveWeapon, Ammo: oldStatsData.Ammo, WeaponModel: oldStatsData.WeaponModel, WeaponFrame: oldStatsData.WeaponFrame}
		prevOld := oldStatsPrevious[player]
		if prevOld == nil {
			prevOld = oldStats
		}

		stats := statsPerPlayer[player]
		oldStaticCollections := players[player].StaticCollections[i]
		backpackCollections := players[player].BackpackCollections[i]
		possibleHere := possible[player][i]

		dmg := damage[player][i]
		oldLostArmor := int32(dmg.Armor)
		allArmorZero := true
		for _, c := range oldStaticCollections {
			if c.PickupAmount(collectable.GiveArmor) != 0 {
				allArmorZero = false
				break
			}
		}
		if allArmorZero && (prevOld.Armor-oldStats.Armor) != oldLostArmor {
			return nil, fmt.Errorf("stats: player %d block %d armor delta mismatch", player, i)
		}

		oldReduction := DamageReduction(prevOld.Items)
		oldDamageCeiled, err := VerifyDamageMessage(dmg, prevOld.Armor, oldReduction)
		if err != nil {
			return nil, fmt.Errorf("stats: player %d block %d: %w", player, i, err)
		}

		var oldCollectedHealth int32
		for _, c := range oldStaticCollections {
			oldCollectedHealth += c.PickupAmount(collectable.GiveHealth)
		}
		oldHealthBeforeLoss := boundHealth(prevOld.Health+oldCollectedHealth, oldStats.Items)
		oldLostHealth := oldHealthBeforeLoss - oldStats.Health
		if oldLostHealth < 0 {
			return nil, fmt.Errorf("stats: player %d block %d negative health loss", player, i)
		}

		newReduction := DamageReduction(stats.Items)
		if oldDamageCeiled == 0 || (oldReduction == newReduction && (oldLostArmor == 0 || (oldLostArmor != prevOld.Armor && oldLostArmor <= stats.Armor))) {
			stats.Armor -= oldLostArmor
			stats.Health -= oldLostHealth
		} else {
			_, upper := LostArmorBounds(oldDamageCeiled, stats.Armor, newReduction)
			lostArmor := upper
			stats.Armor -= lostArmor
			oldBlood := int32(oldDamageCeiled) - int32(dmg.Armor)
			if oldLostHealth != 0 && oldLostHealth != oldBlood {
				return nil, fmt.Errorf("stats: player %d block %d: partial damage application unsupported", player, i)
			}
			if oldLostHealth != 0 {
				stats.Health -= int32(oldDamageCeiled) - lostArmor
			}
		}
		if stats.Armor == 0 {
			stats.Items &^= qmsg.ArmorMask
		}
		if stats.Armor < 0 {
			return nil, fmt.Errorf("stats: player %d block %d negative armor", player, i)
		}

		for _, kind := range []collectable.GiveKind{collectable.GiveShells, collectable.GiveNails, collectable.GiveRockets, collectable.GiveCells} {
			var collected int32
			for _, c := range append(append([]*collect.Collectable(nil), oldStaticCollections...), backpackCollections...) {
				collected += c.PickupAmount(kind)
			}
			oldField := ammoField(oldStats, kind)
			prevField := ammoField(prevOld, kind)
			beforeLoss := boundAmmo(kind, *prevField+collected)
			lost := beforeLoss - *oldField
			if lost < 0 {
				return nil, fmt.Errorf("stats: player %d block %d negative ammo loss", player, i)
			}
			field := ammoField(stats, kind)
			*field -= lost
			if *field < 0 {
				return nil, fmt.Errorf("stats: player %d block %d ammo underflow", player, i)
			}
			if lost > 0 {
				activeItem, _, aerr := AmmoForActiveWeapon(prevOld)
				if aerr != nil {
					return nil, aerr
				}
				wantItem := map[collectable.GiveKind]qmsg.ItemFlags{
					collectable.GiveShells: qmsg.ItemShells, collectable.GiveNails: qmsg.ItemNails,
					collectable.GiveRockets: qmsg.ItemRockets, collectable.GiveCells: qmsg.ItemCells,
				}[kind]
				if activeItem != wantItem {
					return nil, fmt.Errorf("stats: player %d block %d ammo lost from a pool that was not active", player, i)
				}
			}
		}

		for _, c := range possibleHere {
			pickedUpInOriginal := false
			for _, orig := range oldStaticCollections {
				if orig.EntityNum == c.EntityNum {
					pickedUpInOriginal = true
					break
				}
			}
			if pickedUpInOriginal && c.WillDisappear(statsOf(stats), isCoop) {
				consumedInOriginal[c.EntityNum] = true
			}
			if c.WillCollect(statsOf(stats), isCoop) && c.TimeConsumed > time {
				alreadyConsumed := consumedInOriginal[c.EntityNum]
				if c.WillCollect(statsOf(prevOld), isCoop) && !pickedUpInOriginal && !alreadyConsumed {
					continue
				}

				actualCollectionsPerPlayer[player][i] = append(actualCollectionsPerPlayer[player][i], c)
				if c.WillDisappear(statsOf(stats), isCoop) {
					c.TimeConsumed = time
				}

				if c.PickupItems()&qmsg.ArmorMask != 0 {
					stats.Items &^= qmsg.ArmorMask
				}
				stats.Items |= c.PickupItems()
				stats.Health = boundHealth(stats.Health+c.PickupAmount(collectable.GiveHealth), stats.Items)
				for _, kind := range []collectable.GiveKind{collectable.GiveShells, collectable.GiveNails, collectable.GiveRockets, collectable.GiveCells} {
					field := ammoField(stats, kind)
					*field = boundAmmo(kind, *field+c.PickupAmount(kind))
				}
				if armor := c.PickupAmount(collectable.GiveArmor); armor > 0 {
					stats.Armor = armor
				}
			}
		}

		for _, kind := range []collectable.GiveKind{collectable.GiveShells, collectable.GiveNails, collectable.GiveRockets, collectable.GiveCells} {
			var backpackValue int32
			for _, c := range backpackCollections {
				backpackValue += c.PickupAmount(kind)
			}
			field := ammoField(stats, kind)
			*field = boundAmmo(kind, *field+backpackValue)
		}

		addedItems := oldStats.Items &^ prevOld.Items
		removedItems := prevOld.Items &^ oldStats.Items
		stats.Items |= addedItems
		stats.Items &^= removedItems

		stats.WeaponFrame = oldStats.WeaponFrame
		stats.ActiveWeapon = oldStats.ActiveWeapon
		if !anyStatsYet {
			stats.ActiveWeapon, err = weaponMgr.FirstActiveWeapon(stats)
		} else {
			stats.ActiveWeapon, err = weaponMgr.GetActiveWeapon(player, stats, oldStats, time)
		}
		if err != nil {
			return nil, err
		}
		anyStatsYet = true

		weaponModelPath, err := WeaponModelForActiveWeapon(stats)
		if err != nil {
			return nil, err
		}
		modelIdx := indexOf(models.Models, weaponModelPath)
		if modelIdx < 0 {
			return nil, fmt.Errorf("stats: weapon model %q not in precache", weaponModelPath)
		}
		stats.WeaponModel = uint16(modelIdx)

		ammoItem, ammo, err := AmmoForActiveWeapon(stats)
		if err != nil {
			return nil, err
		}
		stats.Items &^= qmsg.AmmoMask
		stats.Items |= ammoItem
		stats.Ammo = ammo

		statsListPerPlayer[player] = append(statsListPerPlayer[player], cloneStats(stats))
		oldStatsPrevious[player] = oldStats
	}

	for p, pl := range players {
		for i, s := range statsListPerPlayer[p] {
			if s == nil {
				continue
			}
			pl.Demo.SetClientStats(i, s)
		}
	}

	return actualCollectionsPerPlayer, nil
}

func indexOf(list [][]byte, path string) int {
	for i, m := range list {
		if string(m) == path {
			return i
		}
	}
	return -1
}
