// Package cinematic implements screen-fade and multi-viewpoint merge
// transforms used to stitch several players' demos of the same game into one
// cinematic recording (§4.11).
package cinematic

import (
	"fmt"
	"math"
	"reflect"

	"github.com/qdemtools/qdem/demo"
	"github.com/qdemtools/qdem/qmsg"
)

func blockTime(block *demo.Block) (float32, bool) {
	var sum float32
	var n int
	for _, m := range block.Messages {
		if tm, ok := m.(*qmsg.TimeMessage); ok {
			sum += tm.Time
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float32(n), true
}

func clip01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Fade appends a "v_cshift" StuffText ramping the screen to black (or from
// it) across duration seconds starting at timeStart, walking the block list
// backwards when backwards is true (for a fade-out, where timeStart is the
// moment full black should be reached). It skips re-issuing the command on a
// block whose averaged TimeMessage matches the previous one, and stops once
// the computed opacity first reaches zero (§4.11.1).
func Fade(d *demo.Demo, timeStart, duration float32, backwards bool) {
	order := make([]*demo.Block, len(d.Blocks))
	copy(order, d.Blocks)
	if backwards {
		for i, j := 0, len(order)-1; i < j; i, j = i+1, j-1 {
			order[i], order[j] = order[j], order[i]
		}
	}

	timePrevious := float32(math.NaN())
	havePrevious := false
	for _, block := range order {
		timeCurrent, ok := blockTime(block)
		if !ok {
			continue
		}
		if havePrevious && timeCurrent == timePrevious {
			continue
		}

		var timeElapsed float32
		if backwards {
			timeElapsed = timeStart - timeCurrent
		} else {
			timeElapsed = timeCurrent - timeStart
		}
		opacity := clip01(1.0 - timeElapsed/duration)
		opacityByte := int(math.Round(float64(255 * opacity)))

		block.Messages = append(block.Messages, &qmsg.StuffTextMessage{
			Text: []byte(fmt.Sprintf("v_cshift 0 0 0 %d\n", opacityByte)),
		})
		if opacityByte <= 0 {
			break
		}
		timePrevious, havePrevious = timeCurrent, true
	}
}

func allBlockTimes(d *demo.Demo) ([]float32, error) {
	var times []float32
	for _, block := range d.Blocks {
		for _, m := range block.Messages {
			if tm, ok := m.(*qmsg.TimeMessage); ok {
				times = append(times, tm.Time)
			}
		}
	}
	if len(times) == 0 {
		return nil, fmt.Errorf("cinematic: demo has no time messages")
	}
	return times, nil
}

// FadeIn fades from black over duration seconds, starting at the demo's
// second-smallest recorded time (its very first TimeMessage is the pre-spawn
// instant and has nothing to fade from) (§4.11.1).
func FadeIn(d *demo.Demo, duration float32) error {
	times, err := allBlockTimes(d)
	if err != nil {
		return err
	}
	smallest := times[0]
	for _, t := range times {
		if t < smallest {
			smallest = t
		}
	}
	secondSmallest := float32(math.Inf(1))
	found := false
	for _, t := range times {
		if t > smallest && t < secondSmallest {
			secondSmallest, found = t, true
		}
	}
	if !found {
		return fmt.Errorf("cinematic: demo does not have two distinct recorded times")
	}
	Fade(d, secondSmallest, duration, false)
	return nil
}

// FadeOut fades to black over duration seconds, reaching full black at the
// demo's second-largest recorded time (its very last TimeMessage is usually
// the disconnect instant) (§4.11.1).
func FadeOut(d *demo.Demo, duration float32) error {
	times, err := allBlockTimes(d)
	if err != nil {
		return err
	}
	largest := times[0]
	for _, t := range times {
		if t > largest {
			largest = t
		}
	}
	secondLargest := float32(math.Inf(-1))
	found := false
	for _, t := range times {
		if t < largest && t > secondLargest {
			secondLargest, found = t, true
		}
	}
	if !found {
		return fmt.Errorf("cinematic: demo does not have two distinct recorded times")
	}
	Fade(d, secondLargest, duration, true)
	return nil
}

// MergePair folds demoOther's EntityUpdate messages into base, block by
// block matched on game time: base gains whichever entity updates it was
// missing (e.g. entities demoOther's recording client could see but base's
// couldn't), and any entity both demos report in the same block must agree
// byte-for-byte, since they describe the same simulation frame from two
// recording clients' differing areas-of-interest (§4.11.2).
func MergePair(base, other *demo.Demo) error {
	times := base.GetTime()
	otherTimes := other.GetTime()

	i := 0
	for iOther := range other.Blocks {
		for times[i] < otherTimes[iOther] {
			i++
			if i >= len(base.Blocks) {
				return nil
			}
		}
		if times[i] != otherTimes[iOther] {
			continue
		}

		var entities []*qmsg.EntityUpdateMessage
		for _, m := range base.Blocks[i].Messages {
			if eu, ok := m.(*qmsg.EntityUpdateMessage); ok {
				entities = append(entities, eu)
			}
		}

		for _, msgOther := range other.Blocks[iOther].Messages {
			euOther, ok := msgOther.(*qmsg.EntityUpdateMessage)
			if !ok {
				continue
			}
			var match *qmsg.EntityUpdateMessage
			for _, eu := range entities {
				if eu.EntityNum == euOther.EntityNum {
					match = eu
					break
				}
			}
			if match != nil {
				if !reflect.DeepEqual(match, euOther) {
					return fmt.Errorf("cinematic: demos to merge disagree on entity %d at time %f", euOther.EntityNum, times[i])
				}
				continue
			}
			base.Blocks[i].Messages = append(base.Blocks[i].Messages, euOther)
		}
	}
	return nil
}

// Merge folds every demo after the first into demos[0] via MergePair, in
// order, returning the merged result (§4.11.2).
func Merge(demos []*demo.Demo) (*demo.Demo, error) {
	if len(demos) == 0 {
		return nil, fmt.Errorf("cinematic: need at least one demo to merge")
	}
	base := demos[0]
	for _, other := range demos[1:] {
		if err := MergePair(base, other); err != nil {
			return nil, err
		}
	}
	return base, nil
}
