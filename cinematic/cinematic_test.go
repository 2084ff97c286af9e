package cinematic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qdemtools/qdem/demo"
	"github.com/qdemtools/qdem/qmsg"
)

func lastStuffText(block *demo.Block) *qmsg.StuffTextMessage {
	for i := len(block.Messages) - 1; i >= 0; i-- {
		if st, ok := block.Messages[i].(*qmsg.StuffTextMessage); ok {
			return st
		}
	}
	return nil
}

func TestFadeRampsOpacityToZero(t *testing.T) {
	d := &demo.Demo{Blocks: []*demo.Block{
		{Messages: []qmsg.Message{&qmsg.TimeMessage{Time: 0}}},
		{Messages: []qmsg.Message{&qmsg.TimeMessage{Time: 1}}},
		{Messages: []qmsg.Message{&qmsg.TimeMessage{Time: 2}}},
	}}
	Fade(d, 0, 2, false)
	st0 := lastStuffText(d.Blocks[0])
	require.NotNil(t, st0)
	assert.Equal(t, "v_cshift 0 0 0 255\n", string(st0.Text))
	st2 := lastStuffText(d.Blocks[2])
	require.NotNil(t, st2)
	assert.Equal(t, "v_cshift 0 0 0 0\n", string(st2.Text))
}

func TestFadeInUsesSecondSmallestTime(t *testing.T) {
	d := &demo.Demo{Blocks: []*demo.Block{
		{Messages: []qmsg.Message{&qmsg.TimeMessage{Time: 0}}},
		{Messages: []qmsg.Message{&qmsg.TimeMessage{Time: 0.1}}},
		{Messages: []qmsg.Message{&qmsg.TimeMessage{Time: 2}}},
	}}
	require.NoError(t, FadeIn(d, 1))
	assert.NotNil(t, lastStuffText(d.Blocks[0]))
}

func TestMergePairAddsMissingEntityUpdates(t *testing.T) {
	base := &demo.Demo{Blocks: []*demo.Block{
		{Messages: []qmsg.Message{&qmsg.TimeMessage{Time: 1}, &qmsg.EntityUpdateMessage{EntityNum: 1}}},
	}}
	other := &demo.Demo{Blocks: []*demo.Block{
		{Messages: []qmsg.Message{&qmsg.TimeMessage{Time: 1}, &qmsg.EntityUpdateMessage{EntityNum: 2}}},
	}}
	require.NoError(t, MergePair(base, other))
	require.Len(t, base.Blocks[0].Messages, 3)
}

func TestMergePairErrorsOnDisagreement(t *testing.T) {
	base := &demo.Demo{Blocks: []*demo.Block{
		{Messages: []qmsg.Message{&qmsg.TimeMessage{Time: 1}, &qmsg.EntityUpdateMessage{EntityNum: 1, State: qmsg.EntityState{Origin: [3]float32{0, 0, 0}}}}},
	}}
	other := &demo.Demo{Blocks: []*demo.Block{
		{Messages: []qmsg.Message{&qmsg.TimeMessage{Time: 1}, &qmsg.EntityUpdateMessage{EntityNum: 1, State: qmsg.EntityState{Origin: [3]float32{9, 9, 9}}}}},
	}}
	assert.Error(t, MergePair(base, other))
}
