package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/qdemtools/qdem/demo"
	"github.com/qdemtools/qdem/qmsg"
)

func TestDamageReductionByArmorTier(t *testing.T) {
	assert.Equal(t, float32(0), DamageReduction(0))
	assert.Equal(t, float32(0.3), DamageReduction(qmsg.ItemArmor1))
	assert.Equal(t, float32(0.6), DamageReduction(qmsg.ItemArmor2))
	assert.Equal(t, float32(0.8), DamageReduction(qmsg.ItemArmor3))
}

func TestLostArmorBounds(t *testing.T) {
	lower, upper := LostArmorBounds(10, 100, 0.3)
	assert.Equal(t, int32(3), lower)
	assert.Equal(t, int32(3), upper)
}

func TestLostArmorBoundsClampedToArmor(t *testing.T) {
	lower, upper := LostArmorBounds(100, 5, 0.8)
	assert.Equal(t, int32(5), lower)
	assert.Equal(t, int32(5), upper)
}

func TestBestActiveWeaponPrefersHighestTierWithAmmo(t *testing.T) {
	s := &demo.ClientStats{Items: qmsg.ItemShotgun | qmsg.ItemLightning, Shells: 5, Cells: 0}
	assert.Equal(t, qmsg.ItemShotgun, BestActiveWeapon(s))

	s.Cells = 5
	assert.Equal(t, qmsg.ItemLightning, BestActiveWeapon(s))
}

func TestBestActiveWeaponFallsBackToAxe(t *testing.T) {
	s := &demo.ClientStats{}
	assert.Equal(t, qmsg.ItemFlags(0), BestActiveWeapon(s))
}

func TestActiveWeaponManagerSwitchesOnceCooldownAndFrameAllow(t *testing.T) {
	mgr := NewActiveWeaponManager(1)
	oldStats := &demo.ClientStats{ActiveWeapon: uint8(qmsg.ItemNailgun), Nails: 5}
	s := &demo.ClientStats{ActiveWeapon: uint8(qmsg.ItemNailgun), Nails: 0, Items: qmsg.ItemShotgun, Shells: 10, WeaponFrame: 0}

	weapon, err := mgr.GetActiveWeapon(0, s, oldStats, 0)
	assert.NoError(t, err)
	assert.Equal(t, uint8(qmsg.ItemNailgun), weapon, "cooldown has not elapsed yet")

	weapon, err = mgr.GetActiveWeapon(0, s, oldStats, 10)
	assert.NoError(t, err)
	assert.Equal(t, uint8(qmsg.ItemShotgun), weapon, "cooldown elapsed and weaponframe is 0")
}

func TestActiveWeaponManagerWaitsForWeaponFrameZero(t *testing.T) {
	mgr := NewActiveWeaponManager(1)
	oldStats := &demo.ClientStats{ActiveWeapon: uint8(qmsg.ItemNailgun), Nails: 5}
	s := &demo.ClientStats{ActiveWeapon: uint8(qmsg.ItemNailgun), Nails: 0, Items: qmsg.ItemShotgun, Shells: 10, WeaponFrame: 3}

	_, err := mgr.GetActiveWeapon(0, s, oldStats, 0)
	assert.NoError(t, err)

	weapon, err := mgr.GetActiveWeapon(0, s, oldStats, 10)
	assert.NoError(t, err)
	assert.Equal(t, uint8(qmsg.ItemNailgun), weapon, "must not switch mid fire-animation even once the cooldown has elapsed")
}

func TestAmmoForActiveWeaponAxe(t *testing.T) {
	item, ammo, err := AmmoForActiveWeapon(&demo.ClientStats{ActiveWeapon: 0})
	assert.NoError(t, err)
	assert.Equal(t, qmsg.ItemFlags(0), item)
	assert.EqualValues(t, 0, ammo)
}

func TestAmmoForActiveWeaponNailgun(t *testing.T) {
	item, ammo, err := AmmoForActiveWeapon(&demo.ClientStats{ActiveWeapon: uint8(qmsg.ItemNailgun), Nails: 30})
	assert.NoError(t, err)
	assert.Equal(t, qmsg.ItemNails, item)
	assert.EqualValues(t, 30, ammo)
}

func TestVerifyDamageMessageNoArmor(t *testing.T) {
	dm := &qmsg.DamageMessage{Blood: 10, Armor: 0}
	total, err := VerifyDamageMessage(dm, 0, 0)
	assert.NoError(t, err)
	assert.Equal(t, float32(10), total)
}

func TestVerifyDamageMessageWithArmor(t *testing.T) {
	dm := &qmsg.DamageMessage{Blood: 7, Armor: 3}
	total, err := VerifyDamageMessage(dm, 100, 0.3)
	assert.NoError(t, err)
	assert.Equal(t, float32(10), total)
}
