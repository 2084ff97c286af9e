package demo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qdemtools/qdem/protocol"
	"github.com/qdemtools/qdem/qmsg"
)

func newDemo(blocks ...*Block) *Demo {
	return &Demo{CdTrack: "1", Blocks: blocks}
}

func block(angles [3]float32, msgs ...qmsg.Message) *Block {
	return &Block{ViewAngles: angles, Messages: msgs}
}

func TestParseWriteRoundTrip(t *testing.T) {
	d := newDemo(
		block([3]float32{0, 10, 0}, &qmsg.TimeMessage{Time: 1.5}),
		block([3]float32{0, 20, 0}, &qmsg.SetViewMessage{Viewentity: 1}),
	)

	state := protocol.Default()
	data := Write(d, &state)

	state2 := protocol.Default()
	got, err := Parse(data, &state2)
	require.NoError(t, err)
	assert.Equal(t, d.CdTrack, got.CdTrack)
	assert.Len(t, got.Blocks, 2)
	assert.Equal(t, float32(1.5), got.Blocks[0].Messages[0].(*qmsg.TimeMessage).Time)
}

func TestEmptyBlockWritesAsNop(t *testing.T) {
	d := newDemo(block([3]float32{0, 0, 0}))

	state := protocol.Default()
	data := Write(d, &state)

	state2 := protocol.Default()
	got, err := Parse(data, &state2)
	require.NoError(t, err)
	require.Len(t, got.Blocks[0].Messages, 1)
	_, ok := got.Blocks[0].Messages[0].(*qmsg.NopMessage)
	assert.True(t, ok)
}

func TestGetTimeCarriesForward(t *testing.T) {
	d := newDemo(
		block([3]float32{}, &qmsg.NopMessage{}),
		block([3]float32{}, &qmsg.TimeMessage{Time: 2.0}),
		block([3]float32{}, &qmsg.NopMessage{}),
	)
	assert.Equal(t, []float32{0, 2.0, 2.0}, d.GetTime())
}

func TestGetYawUnwraps(t *testing.T) {
	d := newDemo(
		block([3]float32{0, 359.5, 0}),
		block([3]float32{0, 0.5, 0}),
	)
	yaws := d.GetYaw()
	assert.InDelta(t, 359.5, yaws[0], 0.001)
	assert.InDelta(t, 360.5, yaws[1], 0.001)
}

func TestGetFixangleIndices(t *testing.T) {
	d := newDemo(
		block([3]float32{}, &qmsg.NopMessage{}),
		block([3]float32{}, &qmsg.SetAngleMessage{}),
		block([3]float32{}, &qmsg.NopMessage{}),
	)
	assert.Equal(t, []int{1}, d.GetFixangleIndices())
}

func TestGetClientStatsAndSetClientStats(t *testing.T) {
	d := newDemo(
		block([3]float32{}, &qmsg.NopMessage{}),
		block([3]float32{}, &qmsg.ClientDataMessage{Present: qmsg.SUFItems, Health: 100, WeaponAlpha: 1}),
	)

	stats := d.GetClientStats()
	assert.Nil(t, stats[0])
	require.NotNil(t, stats[1])
	assert.EqualValues(t, 100, stats[1].Health)

	stats[1].Health = 50
	d.SetClientStats(1, stats[1])

	again := d.GetClientStats()
	assert.EqualValues(t, 50, again[1].Health)
}

func TestGetPreviousBlockIndexWithTimeMessage(t *testing.T) {
	d := newDemo(
		block([3]float32{}, &qmsg.TimeMessage{Time: 1}),
		block([3]float32{}, &qmsg.NopMessage{}),
		block([3]float32{}, &qmsg.NopMessage{}),
	)
	assert.Equal(t, 0, d.GetPreviousBlockIndexWithTimeMessage(2))
	assert.Equal(t, -1, d.GetPreviousBlockIndexWithTimeMessage(0))
}

func TestGetPrecachesRequiresExactlyOneServerInfo(t *testing.T) {
	d := newDemo(block([3]float32{}, &qmsg.ServerInfoMessage{
		ModelPrecache: [][]byte{{}, []byte("progs/player.mdl")},
		SoundPrecache: [][]byte{{}},
	}))

	p, err := d.GetPrecaches()
	require.NoError(t, err)
	assert.Equal(t, [][]byte{{}, []byte("progs/player.mdl")}, p.Models)

	d.Blocks = append(d.Blocks, block([3]float32{}, &qmsg.ServerInfoMessage{}))
	_, err = d.GetPrecaches()
	assert.Error(t, err)
}

func TestGetViewentity(t *testing.T) {
	d := newDemo(block([3]float32{}, &qmsg.SetViewMessage{Viewentity: 3}))
	v, err := d.GetViewentity()
	require.NoError(t, err)
	assert.EqualValues(t, 3, v)
}
