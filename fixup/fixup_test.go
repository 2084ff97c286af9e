package fixup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qdemtools/qdem/collect"
	"github.com/qdemtools/qdem/collectable"
	"github.com/qdemtools/qdem/demo"
	"github.com/qdemtools/qdem/qmsg"
)

func TestRemoveCollectionSoundDeletesExactMatch(t *testing.T) {
	block := &demo.Block{Messages: []qmsg.Message{
		&qmsg.SoundMessage{SoundNum: 5, Entity: 1},
		&qmsg.SoundMessage{SoundNum: 9, Entity: 1},
	}}
	require.NoError(t, RemoveCollectionSound(5, 1, block))
	assert.Len(t, block.Messages, 1)
	assert.Equal(t, uint16(9), block.Messages[0].(*qmsg.SoundMessage).SoundNum)
}

func TestRemoveCollectionSoundErrorsWhenMissing(t *testing.T) {
	block := &demo.Block{Messages: []qmsg.Message{&qmsg.SoundMessage{SoundNum: 5, Entity: 1}}}
	assert.Error(t, RemoveCollectionSound(9, 1, block))
}

func TestRemoveCollectionPrintStripsFlashExactly(t *testing.T) {
	d := &demo.Demo{Blocks: []*demo.Block{{Messages: []qmsg.Message{
		&qmsg.PrintMessage{Text: []byte("You got the ")},
		&qmsg.PrintMessage{Text: []byte("Rocket Launcher\n")},
		&qmsg.StuffTextMessage{Text: []byte("bf\n")},
		&qmsg.TimeMessage{Time: 1},
	}}}}
	err := RemoveCollectionPrint(collect.PrintEvent{BlockIndex: 0, Text: []byte("You got the Rocket Launcher\n")}, d)
	require.NoError(t, err)
	assert.Len(t, d.Blocks[0].Messages, 1)
	_, ok := d.Blocks[0].Messages[0].(*qmsg.TimeMessage)
	assert.True(t, ok)
}

func TestRemoveCollectionPrintErrorsOnLeftoverText(t *testing.T) {
	d := &demo.Demo{Blocks: []*demo.Block{{Messages: []qmsg.Message{
		&qmsg.PrintMessage{Text: []byte("You got the Rocket Launcher\n")},
		&qmsg.StuffTextMessage{Text: []byte("bf\n")},
	}}}}
	err := RemoveCollectionPrint(collect.PrintEvent{BlockIndex: 0, Text: []byte("something else\n")}, d)
	assert.Error(t, err)
}

func TestAddCollectionSoundLooksUpPrecacheIndex(t *testing.T) {
	sounds := [][]byte{[]byte(""), []byte("items/health1.wav")}
	block := &demo.Block{}
	err := AddCollectionSound(collectable.SoundHP25, [3]float32{0, 0, 0}, 2, sounds, block)
	require.NoError(t, err)
	require.Len(t, block.Messages, 1)
	sm := block.Messages[0].(*qmsg.SoundMessage)
	assert.EqualValues(t, 1, sm.SoundNum)
	assert.EqualValues(t, 2, sm.Entity)
}

func TestAddCollectionSoundErrorsWhenSoundNotPrecached(t *testing.T) {
	block := &demo.Block{}
	err := AddCollectionSound(collectable.SoundHP25, [3]float32{0, 0, 0}, 2, [][]byte{[]byte("")}, block)
	assert.Error(t, err)
}

func TestKeepEntityAfterAppendsToEveryTimeBlock(t *testing.T) {
	d := &demo.Demo{Blocks: []*demo.Block{
		{Messages: []qmsg.Message{&qmsg.TimeMessage{Time: 0}}},
		{Messages: []qmsg.Message{&qmsg.TimeMessage{Time: 1}}},
		{Messages: nil},
	}}
	origin := [3]float32{1, 2, 3}
	KeepEntityAfter(0, 42, &origin, d)
	assert.Len(t, d.Blocks[0].Messages, 2)
	assert.Len(t, d.Blocks[1].Messages, 2)
	assert.Len(t, d.Blocks[2].Messages, 0)
	eu := d.Blocks[0].Messages[1].(*qmsg.EntityUpdateMessage)
	assert.Equal(t, int32(42), eu.EntityNum)
	assert.Equal(t, origin, eu.State.Origin)
}

func TestRemoveEntityAfterDeletesMatchingUpdates(t *testing.T) {
	d := &demo.Demo{Blocks: []*demo.Block{
		{Messages: []qmsg.Message{
			&qmsg.EntityUpdateMessage{EntityNum: 42},
			&qmsg.EntityUpdateMessage{EntityNum: 7},
		}},
	}}
	RemoveEntityAfter(0, 42, d)
	require.Len(t, d.Blocks[0].Messages, 1)
	assert.EqualValues(t, 7, d.Blocks[0].Messages[0].(*qmsg.EntityUpdateMessage).EntityNum)
}

func TestIndexOfFloat32(t *testing.T) {
	assert.Equal(t, 2, indexOfFloat32([]float32{0, 0.5, 1.25, 2}, 1.25))
	assert.Equal(t, -1, indexOfFloat32([]float32{0, 0.5}, 9))
}

func TestAddRunesSetsFlagsOnEveryClientData(t *testing.T) {
	d := &demo.Demo{Blocks: []*demo.Block{
		{Messages: []qmsg.Message{&qmsg.ClientDataMessage{}}},
		{Messages: []qmsg.Message{&qmsg.ClientDataMessage{}}},
	}}
	require.NoError(t, AddRunes(d, []int{1, 3}))
	for _, b := range d.Blocks {
		cd := b.Messages[0].(*qmsg.ClientDataMessage)
		assert.True(t, cd.Items.Has(qmsg.ItemSigil1))
		assert.True(t, cd.Items.Has(qmsg.ItemSigil3))
		assert.False(t, cd.Items.Has(qmsg.ItemSigil2))
	}
}

func TestAddRunesRejectsInvalidNumber(t *testing.T) {
	d := &demo.Demo{Blocks: []*demo.Block{{}}}
	assert.Error(t, AddRunes(d, []int{5}))
}
