package spawnparams

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qdemtools/qdem/demo"
	"github.com/qdemtools/qdem/qmsg"
)

func TestNextMapStripsMapLocalItemsAndFloorsHealthAndShells(t *testing.T) {
	s := &demo.ClientStats{
		Items:  qmsg.ItemShotgun | qmsg.ItemQuad | qmsg.ItemKey1,
		Health: 10,
		Shells: 5,
	}
	next := NextMap(s)
	assert.Equal(t, qmsg.ItemShotgun, next.Items)
	assert.EqualValues(t, 50, next.Health)
	assert.EqualValues(t, 25, next.Shells)
}

func TestNextMapCapsHealthAt100(t *testing.T) {
	next := NextMap(&demo.ClientStats{Health: 250})
	assert.EqualValues(t, 100, next.Health)
}

func TestRenderProducesNineLinesWithArmorClass(t *testing.T) {
	s := &demo.ClientStats{
		Items:        qmsg.ItemRocketLauncher | qmsg.ItemArmor2,
		Health:       80,
		Armor:        60,
		ActiveWeapon: uint8(qmsg.ItemRocketLauncher),
	}
	lines, err := Render(s, 2)
	require.NoError(t, err)
	require.Len(t, lines, 9)
	assert.Equal(t, "setspawnparam 7 6 2", lines[7])
	assert.Equal(t, "setspawnparam 8 0.6 2", lines[8])
}

func TestRenderErrorsOnUnknownActiveWeapon(t *testing.T) {
	_, err := Render(&demo.ClientStats{ActiveWeapon: 255}, 0)
	assert.Error(t, err)
}
