package stats

import (
	"fmt"
	"math"

	"github.com/qdemtools/qdem/collect"
	"github.com/qdemtools/qdem/collision"
	"github.com/qdemtools/qdem/demo"
	"github.com/qdemtools/qdem/qmsg"
)

// FirstActiveBlockIndex finds the first block from which game time is
// strictly monotonically increasing and the demo is not paused: the point
// reconstruction can start trusting the player's own position for collision
// checks (§4.8.1, distinguishing sign-on/loading frames from real play).
func FirstActiveBlockIndex(d *demo.Demo) (int, error) {
	times := append([]float32{0}, d.GetTime()...)
	isPaused := isPausedPerBlock(d)
	for i := 0; i+2 < len(times); i++ {
		if times[i+2] > times[i+1] && times[i+1] > times[i] {
			blockIndex := i // times[i+1] is block i's time in the 0-padded series
			if blockIndex >= 0 && blockIndex < len(isPaused) && !isPaused[blockIndex] {
				return blockIndex, nil
			}
		}
	}
	return 0, fmt.Errorf("stats: no strictly-increasing, unpaused block found")
}

func isPausedPerBlock(d *demo.Demo) []bool {
	out := make([]bool, len(d.Blocks))
	var paused bool
	for i, block := range d.Blocks {
		for _, msg := range block.Messages {
			if sp, ok := msg.(*qmsg.SetPauseMessage); ok {
				paused = sp.Paused
			}
		}
		out[i] = paused
	}
	return out
}

// PossibleCollection is one block's set of static collectables whose
// bounding box was reachable by the player at that moment, regardless of
// whether they were actually picked up there.
type PossibleCollection struct {
	EntityNum int32
}

// GetPossibleCollections computes, for each block, every static collectable
// whose box the recording player's box overlapped on the previous block
// (or merely touched, if the original capture shows it was in fact
// collected there) - the candidate set stats reconstruction draws pickups
// from (§4.8.4).
func GetPossibleCollections(d *demo.Demo, statics map[int32]*collect.Collectable, originalCollections [][]*collect.Collectable) ([][]*collect.Collectable, error) {
	origins := collect.StaticOrigins(d, statics)
	viewent, err := d.GetViewentity()
	if err != nil {
		return nil, err
	}
	clientPositions := collect.ClientPositions(d, int32(viewent))
	firstActive, err := FirstActiveBlockIndex(d)
	if err != nil {
		return nil, err
	}

	out := make([][]*collect.Collectable, len(d.Blocks))
	for i, pos := range clientPositions {
		playerBounds := collision.Player(pos)
		for entityNum, c := range statics {
			track := origins[entityNum]
			prevIdx := i - 1
			if prevIdx < 0 {
				prevIdx = 0
			}
			bounds := collision.Collectable(track[prevIdx], c.Type.Mins, c.Type.Maxs)
			distance := collision.Distance(playerBounds, bounds)

			isCollectedInOriginal := false
			for _, orig := range originalCollections[i] {
				if orig.EntityNum == entityNum {
					isCollectedInOriginal = true
					break
				}
			}

			if isCollectedInOriginal {
				tolerance := float32(0)
				if i <= firstActive {
					tolerance = 0.5
				}
				if distance > tolerance {
					return nil, fmt.Errorf("stats: block %d: collected entity %d is %f away, tolerance %f", i, entityNum, distance, tolerance)
				}
			}

			tolerance := float32(0)
			if i < firstActive {
				tolerance = float32(math.Inf(-1))
			}
			if distance < tolerance || isCollectedInOriginal {
				out[i] = append(out[i], c)
			}
		}
	}
	return out, nil
}
