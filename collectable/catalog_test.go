package collectable

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/qdemtools/qdem/qmsg"
)

func TestHealthWillCollectRespectsCap(t *testing.T) {
	assert.True(t, Health15.WillCollect(Stats{Health: 50}, false))
	assert.False(t, Health15.WillCollect(Stats{Health: MaxHealth}, false))
}

func TestHealth100AlwaysCollects(t *testing.T) {
	assert.True(t, Health100.WillCollect(Stats{Health: MaxHealth}, false))
}

func TestArmorWillCollectOnlyUpgrades(t *testing.T) {
	assert.True(t, GreenArmor.WillCollect(Stats{}, false))
	assert.False(t, RedArmor.WillCollect(Stats{Items: qmsg.ItemArmor3, Armor: 200}, false))
	assert.True(t, RedArmor.WillCollect(Stats{Items: qmsg.ItemArmor1, Armor: 30}, false))
}

func TestWeaponWillCollectCoopVsDeathmatch(t *testing.T) {
	assert.True(t, Nailgun.WillCollect(Stats{Items: qmsg.ItemNailgun}, false))
	assert.False(t, Nailgun.WillCollect(Stats{Items: qmsg.ItemNailgun}, true))
	assert.True(t, Nailgun.WillCollect(Stats{}, true))
}

func TestWeaponWillDisappearOnlyInDeathmatch(t *testing.T) {
	assert.True(t, RocketLauncher.WillDisappear(Stats{}, false))
	assert.False(t, RocketLauncher.WillDisappear(Stats{}, true))
}

func TestModelKindsLookup(t *testing.T) {
	k, ok := ModelKinds["maps/b_bh100.bsp"]
	assert.True(t, ok)
	assert.Equal(t, Health100, k)
}

func TestArmorBySkin(t *testing.T) {
	assert.Equal(t, GreenArmor, ArmorBySkin(0))
	assert.Equal(t, YellowArmor, ArmorBySkin(1))
	assert.Equal(t, RedArmor, ArmorBySkin(2))
}
