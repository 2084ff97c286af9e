package smoothing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/qdemtools/qdem/demo"
	"github.com/qdemtools/qdem/qmsg"
)

func TestSmoothViewAnglesReducesNoiseWithoutCrossingFixangle(t *testing.T) {
	var blocks []*demo.Block
	for i := 0; i < 10; i++ {
		noise := float32(0)
		if i%2 == 0 {
			noise = 2
		}
		blocks = append(blocks, &demo.Block{
			ViewAngles: [3]float32{0, 10 + noise, 0},
			Messages:   []qmsg.Message{&qmsg.TimeMessage{Time: float32(i)}},
		})
	}
	d := &demo.Demo{Blocks: blocks}

	before := d.GetYaw()
	SmoothViewAngles(d)
	after := d.GetYaw()

	var varBefore, varAfter float32
	for i := 1; i < len(before); i++ {
		varBefore += abs(before[i] - before[i-1])
		varAfter += abs(after[i] - after[i-1])
	}
	assert.Less(t, varAfter, varBefore)
}

func abs(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

func TestSmoothViewAnglesSkipsShortSegments(t *testing.T) {
	d := &demo.Demo{Blocks: []*demo.Block{
		{ViewAngles: [3]float32{0, 5, 0}, Messages: []qmsg.Message{&qmsg.TimeMessage{Time: 0}}},
		{ViewAngles: [3]float32{0, 7, 0}, Messages: []qmsg.Message{&qmsg.TimeMessage{Time: 1}}},
	}}
	SmoothViewAngles(d)
	assert.Equal(t, float32(5), d.Blocks[0].ViewAngles[1])
	assert.Equal(t, float32(7), d.Blocks[1].ViewAngles[1])
}
