// Package stats reconstructs per-player health/armor/ammo/weapon state from
// a set of demos recorded from different viewpoints of the same game,
// cross-checking the original (already-collected) ClientData values against
// damage messages and inferred pickups (§4.8).
package stats

import (
	"fmt"
	"math"

	"github.com/icza/gox/mathx"

	"github.com/qdemtools/qdem/demo"
	"github.com/qdemtools/qdem/qmsg"
)

// DamageReduction returns the fraction of damage a player's current armor
// tier absorbs: 0.3/0.6/0.8 for ARMOR1/2/3, 0 with no armor (§4.8.2).
func DamageReduction(items qmsg.ItemFlags) float32 {
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

// LostArmorBounds brackets how much armor a hit of damageCeiled (the
// DamageMessage's blood+armor byte sum, always a whole number) could have
// removed, given the reduction in effect at the moment of the hit. The
// exact value is unrecoverable because the engine floors/ceils armor loss
// to a byte before transmitting it (§4.8.2).
func LostArmorBounds(damageCeiled float32, armor int32, reduction float32) (lower, upper int32) {
	damageFloored := damageCeiled - 1.0
	lo := mathx.Clamp(int32(math.Ceil(float64(reduction*damageFloored))), math.MinInt32, armor)
	hi := mathx.Clamp(int32(math.Ceil(float64(reduction*damageCeiled))), math.MinInt32, armor)
	return lo, hi
}

// GetDamage returns each block's DamageMessage, or a zero-value one if the
// block carries none. §3 invariant: at most one per block.
func GetDamage(d *demo.Demo) ([]*qmsg.DamageMessage, error) {
	out := make([]*qmsg.DamageMessage, len(d.Blocks))
	for i, block := range d.Blocks {
		var found *qmsg.DamageMessage
		for _, msg := range block.Messages {
			if dm, ok := msg.(*qmsg.DamageMessage); ok {
				if found != nil {
					return nil, fmt.Errorf("stats: block %d has more than one damage message", i)
				}
				found = dm
			}
		}
		if found == nil {
			found = &qmsg.DamageMessage{}
		}
		out[i] = found
	}
	return out, nil
}

// VerifyDamageMessage checks that a DamageMessage's transmitted blood/armor
// split is consistent with the armor and reduction in effect when it was
// applied, within the byte-rounding slop LostArmorBounds captures. It
// returns the logical (unwrapped) blood+armor total: a DamageMessage only
// carries byte-sized fields, so a single hit dealing more than ~255 damage
// wraps its blood byte past 256, and the caller needs the unwrapped ceiling
// to reconstruct health correctly (§4.8.2).
func VerifyDamageMessage(damage *qmsg.DamageMessage, armor int32, reduction float32) (damageCeiled float32, err error) {
	damageCeiled = float32(damage.Armor) + float32(damage.Blood)
	if reduction == 0 {
		if int32(damage.Blood) != int32(damageCeiled) {
			return 0, fmt.Errorf("stats: zero-reduction damage message splits blood/armor unexpectedly")
		}
		return damageCeiled, nil
	}
	lower, upper := LostArmorBounds(damageCeiled, armor, reduction)
	blood := float32(damage.Blood)
	if int32(damage.Armor) > upper {
		damageCeiled += 256
		blood += 256
		lower, upper = LostArmorBounds(damageCeiled, armor, reduction)
	}
	if int32(damage.Armor) < lower || int32(damage.Armor) > upper {
		return 0, fmt.Errorf("stats: damage message armor loss %d outside bounds [%d, %d]", damage.Armor, lower, upper)
	}
	bloodLower, bloodUpper := damageCeiled-float32(upper), damageCeiled-float32(lower)
	if blood < bloodLower || blood > bloodUpper {
		return 0, fmt.Errorf("stats: damage message blood %f outside bounds [%f, %f]", blood, bloodLower, bloodUpper)
	}
	return damageCeiled, nil
}
