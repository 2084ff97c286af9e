package cleanup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qdemtools/qdem/demo"
	"github.com/qdemtools/qdem/qmsg"
)

func TestInstantSkinColorAppendsSignalUpdate(t *testing.T) {
	d := &demo.Demo{Blocks: []*demo.Block{
		{Messages: []qmsg.Message{&qmsg.UpdateColorsMessage{PlayerID: 2}}},
	}}
	InstantSkinColor(d)
	require.Len(t, d.Blocks[0].Messages, 2)
	eu := d.Blocks[0].Messages[1].(*qmsg.EntityUpdateMessage)
	assert.EqualValues(t, 3, eu.EntityNum)
	assert.Equal(t, qmsg.UFSignal, eu.Present)
}

func TestRemoveGrenadeCounterDropsMatchingPrefixOnly(t *testing.T) {
	d := &demo.Demo{Blocks: []*demo.Block{{Messages: []qmsg.Message{
		&qmsg.CenterPrintMessage{Text: []byte("Grenades: 3")},
		&qmsg.CenterPrintMessage{Text: []byte("Welcome")},
	}}}}
	RemoveGrenadeCounter(d)
	require.Len(t, d.Blocks[0].Messages, 1)
	assert.Equal(t, "Welcome", string(d.Blocks[0].Messages[0].(*qmsg.CenterPrintMessage).Text))
}

func TestRemovePausesStripsSetPauseAndFreezesEntities(t *testing.T) {
	afterAngles := [3]float32{1, 2, 3}
	d := &demo.Demo{Blocks: []*demo.Block{
		{ViewAngles: [3]float32{0, 0, 0}, Messages: []qmsg.Message{
			&qmsg.EntityUpdateMessage{EntityNum: 1},
		}},
		{Messages: []qmsg.Message{&qmsg.SetPauseMessage{Paused: true}}},
		{ViewAngles: afterAngles, Messages: []qmsg.Message{
			&qmsg.SetPauseMessage{Paused: false},
			&qmsg.EntityUpdateMessage{EntityNum: 9},
		}},
	}}
	RemovePauses(d)

	for _, b := range d.Blocks {
		for _, m := range b.Messages {
			_, ok := m.(*qmsg.SetPauseMessage)
			assert.False(t, ok)
		}
	}
	require.Len(t, d.Blocks[1].Messages, 1)
	assert.EqualValues(t, 9, d.Blocks[1].Messages[0].(*qmsg.EntityUpdateMessage).EntityNum)
	assert.Equal(t, afterAngles, d.Blocks[1].ViewAngles)
}

func TestRemovePrintsFiltersByPattern(t *testing.T) {
	d := &demo.Demo{Blocks: []*demo.Block{{Messages: []qmsg.Message{
		&qmsg.PrintMessage{Text: []byte("player1 joined the game\n")},
		&qmsg.PrintMessage{Text: []byte("fragged player2\n")},
	}}}}
	RemovePrints(d, []string{"joined the game"})
	require.Len(t, d.Blocks[0].Messages, 1)
	assert.Equal(t, "fragged player2\n", string(d.Blocks[0].Messages[0].(*qmsg.PrintMessage).Text))
}

func TestCutEndAfterKeepsDurationPastIntermissionAndFinalBlock(t *testing.T) {
	d := &demo.Demo{Blocks: []*demo.Block{
		{Messages: []qmsg.Message{&qmsg.TimeMessage{Time: 0}}},
		{Messages: []qmsg.Message{&qmsg.TimeMessage{Time: 5}, &qmsg.IntermissionMessage{}}},
		{Messages: []qmsg.Message{&qmsg.TimeMessage{Time: 6}}},
		{Messages: []qmsg.Message{&qmsg.TimeMessage{Time: 10}}},
		{Messages: []qmsg.Message{&qmsg.DisconnectMessage{}}},
	}}
	require.NoError(t, CutEndAfter(d, 2, EndIntermission))
	assert.Len(t, d.Blocks, 4)
	_, ok := d.Blocks[len(d.Blocks)-1].Messages[0].(*qmsg.DisconnectMessage)
	assert.True(t, ok)
}

func TestCutEndAfterNoOpWhenEndKindAbsent(t *testing.T) {
	d := &demo.Demo{Blocks: []*demo.Block{
		{Messages: []qmsg.Message{&qmsg.TimeMessage{Time: 0}}},
		{Messages: []qmsg.Message{&qmsg.DisconnectMessage{}}},
	}}
	require.NoError(t, CutEndAfter(d, 2, EndIntermission))
	assert.Len(t, d.Blocks, 2)
}
