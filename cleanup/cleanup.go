// Package cleanup implements the small, independent post-processing
// transforms applied to a parsed demo before it is written back out: pause
// removal, intermission timing/transition fixups, instant skin-color
// rendering, grenade-counter suppression, print/sound filtering, tail
// trimming, and precache-indexed sound/weapon-model substitution (§4.10).
package cleanup

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/qdemtools/qdem/demo"
	"github.com/qdemtools/qdem/internal/qlog"
	"github.com/qdemtools/qdem/qmsg"
)

var recordedTimePattern = regexp.MustCompile(`The recorded time was (?:(\d+):)?([0-5]?\d\.\d{5})`)

// FixIntermissionLag moves a misplaced Intermission/CdTrack pair back to the
// block whose own recorded time matches the final "recorded time was ..."
// message printed once the intermission actually starts: the server can emit
// the intermission a frame or more before the block whose TimeMessage the
// scoreboard text itself claims, so duplicating them forward one frame
// produces visible stutter on playback (§4.10.1).
func FixIntermissionLag(d *demo.Demo) error {
	for i, block := range d.Blocks {
		hasIntermission := false
		for _, m := range block.Messages {
			if _, ok := m.(*qmsg.IntermissionMessage); ok {
				hasIntermission = true
				break
			}
		}
		if !hasIntermission {
			continue
		}

		var correctTime float32
		found := false
		for _, following := range d.Blocks[i:] {
			var text []byte
			for _, m := range following.Messages {
				if pm, ok := m.(*qmsg.PrintMessage); ok {
					text = append(text, pm.Text...)
				}
			}
			match := recordedTimePattern.FindSubmatch(text)
			if match == nil {
				continue
			}
			var minutes int
			if len(match[1]) > 0 {
				minutes, _ = strconv.Atoi(string(match[1]))
			}
			seconds, err := strconv.ParseFloat(string(match[2]), 32)
			if err != nil {
				return fmt.Errorf("cleanup: intermission time %q: %w", match[2], err)
			}
			correctTime = float32(minutes*60) + float32(seconds)
			found = true
			break
		}
		if !found {
			return fmt.Errorf("cleanup: block %d has an intermission but no recorded-time print anywhere after it", i)
		}

		for j := i - 1; j >= 0; j-- {
			var currentTime float32
			hasTime := false
			for _, m := range d.Blocks[j].Messages {
				if tm, ok := m.(*qmsg.TimeMessage); ok {
					if hasTime {
						return fmt.Errorf("cleanup: block %d has more than one time message", j)
					}
					currentTime, hasTime = tm.Time, true
				}
			}
			if !hasTime {
				continue
			}
			if abs32(currentTime-correctTime) < 1e-5 {
				if j != i-1 {
					var toShift []qmsg.Message
					var kept []qmsg.Message
					for _, m := range block.Messages {
						switch m.(type) {
						case *qmsg.IntermissionMessage, *qmsg.CdTrackMessage:
							toShift = append(toShift, m)
						default:
							kept = append(kept, m)
						}
					}
					block.Messages = kept
					d.Blocks[j].Messages = append(d.Blocks[j].Messages, toShift...)
				}
				break
			}
			if currentTime < correctTime {
				return fmt.Errorf("cleanup: could not find block with recorded intermission time %f", correctTime)
			}
		}
	}
	return nil
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

// FixIntermissionTransition moves the Intermission message(s) of each block
// back into the preceding time-bearing block, splitting that block in two so
// the view-angle snap the intermission triggers (via that block's
// SetAngleMessage) lands on the correct frame instead of one frame early
// (§4.10.2). A block missing the expected SetAngleMessage is left alone.
func FixIntermissionTransition(d *demo.Demo) {
	type reinsert struct {
		at       int
		messages []qmsg.Message
	}
	var pending []reinsert

	for i, block := range d.Blocks {
		var intermissions []qmsg.Message
		var kept []qmsg.Message
		for _, m := range block.Messages {
			if _, ok := m.(*qmsg.IntermissionMessage); ok {
				intermissions = append(intermissions, m)
			} else {
				kept = append(kept, m)
			}
		}
		if len(intermissions) == 0 {
			continue
		}

		prev := d.GetPreviousBlockIndexWithTimeMessage(i)
		hasSetAngle := false
		if prev >= 0 {
			for _, m := range d.Blocks[prev].Messages {
				if _, ok := m.(*qmsg.SetAngleMessage); ok {
					hasSetAngle = true
					break
				}
			}
		}
		if !hasSetAngle {
			qlog.Warn("intermission block has no preceding SetAngle, leaving transition as recorded", qlog.F("block", i))
			continue
		}

		block.Messages = kept
		pending = append(pending, reinsert{at: prev, messages: intermissions})
	}

	for j := len(pending) - 1; j >= 0; j-- {
		r := pending[j]
		newBlock := &demo.Block{ViewAngles: d.Blocks[r.at].ViewAngles, Messages: r.messages}
		d.Blocks = append(d.Blocks, nil)
		copy(d.Blocks[r.at+1:], d.Blocks[r.at:])
		d.Blocks[r.at] = newBlock
	}
}

// InstantSkinColor appends a signal-only EntityUpdate for the player whose
// colors just changed right after the UpdateColors message, forcing an
// immediate re-render instead of waiting for that entity's next naturally
// scheduled update (§4.10.3).
func InstantSkinColor(d *demo.Demo) {
	for _, block := range d.Blocks {
		var toAppend []qmsg.Message
		for _, m := range block.Messages {
			if uc, ok := m.(*qmsg.UpdateColorsMessage); ok {
				toAppend = append(toAppend, &qmsg.EntityUpdateMessage{
					EntityNum: int32(uc.PlayerID) + 1,
					Present:   qmsg.UFSignal,
				})
			}
		}
		block.Messages = append(block.Messages, toAppend...)
	}
}

// RemoveGrenadeCounter strips the "Grenade..." CenterPrintMessage some mods
// emit as an ammo-count HUD overlay, which is meaningless outside the mod
// that produced it (§4.10.4).
func RemoveGrenadeCounter(d *demo.Demo) {
	for _, block := range d.Blocks {
		var kept []qmsg.Message
		for _, m := range block.Messages {
			if cp, ok := m.(*qmsg.CenterPrintMessage); ok && strings.HasPrefix(string(cp.Text), "Grenade") {
				continue
			}
			kept = append(kept, m)
		}
		block.Messages = kept
	}
}

// viewAnglesAfterUnpause and entityUpdatesAfterUnpause hold the values
// RemovePauses carries backward from the first unpaused block following a
// paused run, so every paused block can be stamped with what the client
// would actually have displayed at the instant it un-paused.

// RemovePauses strips every SetPause message (a demo records them purely as
// a recording-time annotation; replaying one would itself pause playback)
// and replaces each paused block's own EntityUpdates and view angles with
// the ones from the block where the pause actually lifted, so scrubbing
// through a paused stretch doesn't show stale interpolation targets
// (§4.10.5).
func RemovePauses(d *demo.Demo) {
	isPaused := make([]bool, len(d.Blocks))
	paused := false
	for i, block := range d.Blocks {
		var kept []qmsg.Message
		for _, m := range block.Messages {
			if sp, ok := m.(*qmsg.SetPauseMessage); ok {
				paused = sp.Paused
				continue
			}
			kept = append(kept, m)
		}
		block.Messages = kept
		isPaused[i] = paused
	}

	var viewAnglesAfterUnpause [3]float32
	var entityUpdatesAfterUnpause []qmsg.Message
	for i := len(d.Blocks) - 1; i >= 0; i-- {
		block := d.Blocks[i]
		if isPaused[i] {
			block.ViewAngles = viewAnglesAfterUnpause
			var kept []qmsg.Message
			for _, m := range block.Messages {
				if _, ok := m.(*qmsg.EntityUpdateMessage); !ok {
					kept = append(kept, m)
				}
			}
			block.Messages = append(kept, entityUpdatesAfterUnpause...)
		} else {
			viewAnglesAfterUnpause = block.ViewAngles
			var entityUpdates []qmsg.Message
			for _, m := range block.Messages {
				if _, ok := m.(*qmsg.EntityUpdateMessage); ok {
					entityUpdates = append(entityUpdates, m)
				}
			}
			if len(entityUpdates) > 0 {
				entityUpdatesAfterUnpause = entityUpdates
			}
		}
	}
}

// RemovePrints deletes every PrintMessage whose text contains any of
// excludePatterns, e.g. to silence a mod's chat spam (§4.10.6).
func RemovePrints(d *demo.Demo, excludePatterns []string) {
	for _, block := range d.Blocks {
		var kept []qmsg.Message
		for _, m := range block.Messages {
			if pm, ok := m.(*qmsg.PrintMessage); ok && containsAny(string(pm.Text), excludePatterns) {
				continue
			}
			kept = append(kept, m)
		}
		block.Messages = kept
	}
}

// RemoveSounds deletes every SoundMessage whose precached name contains any
// of excludePatterns, e.g. to silence an announcer pack's voice lines
// (§4.10.7).
func RemoveSounds(d *demo.Demo, excludePatterns []string) error {
	precaches, err := d.GetPrecaches()
	if err != nil {
		return err
	}
	for _, block := range d.Blocks {
		var kept []qmsg.Message
		for _, m := range block.Messages {
			if sm, ok := m.(*qmsg.SoundMessage); ok {
				if int(sm.SoundNum) >= len(precaches.Sounds) {
					kept = append(kept, m)
					continue
				}
				if containsAny(string(precaches.Sounds[sm.SoundNum]), excludePatterns) {
					continue
				}
			}
			kept = append(kept, m)
		}
		block.Messages = kept
	}
	return nil
}

func containsAny(s string, patterns []string) bool {
	for _, p := range patterns {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}

// EndKind selects which end-of-game message CutEndAfter looks for.
type EndKind int

const (
	EndIntermission EndKind = iota
	EndFinale
)

// CutEndAfter deletes every block more than duration seconds past the first
// Intermission/Finale message, keeping the final block (conventionally a
// Disconnect) so the truncated file still ends cleanly (§4.10.8). Demos
// without the requested end kind, or whose tail is already shorter than
// duration, are left untouched.
func CutEndAfter(d *demo.Demo, duration float32, end EndKind) error {
	if end != EndIntermission && end != EndFinale {
		return fmt.Errorf("cleanup: unsupported end kind %d", end)
	}
	times := d.GetTime()
	var timeEnd float32
	found := false
	for i, block := range d.Blocks {
		for _, m := range block.Messages {
			switch end {
			case EndIntermission:
				if _, ok := m.(*qmsg.IntermissionMessage); ok {
					timeEnd, found = times[i], true
				}
			case EndFinale:
				if _, ok := m.(*qmsg.FinaleMessage); ok {
					timeEnd, found = times[i], true
				}
			}
			if found {
				break
			}
		}
		if found {
			break
		}
	}
	if !found {
		qlog.Warn("no matching end-of-game message found, leaving demo untouched", qlog.F("endKind", int(end)))
		return nil
	}

	firstToRemove := len(d.Blocks)
	for i, t := range times {
		if t > timeEnd+duration {
			firstToRemove = i
			break
		}
	}
	if firstToRemove >= len(d.Blocks)-1 {
		qlog.Warn("demo tail is already shorter than the requested cut duration", qlog.F("endKind", int(end)), qlog.F("duration", duration))
		return nil
	}
	d.Blocks = append(d.Blocks[:firstToRemove], d.Blocks[len(d.Blocks)-1])
	return nil
}

// ReplacementPair names one precache path to substitute for another.
type ReplacementPair struct {
	Old, New string
}

// ReplaceSound rewrites every SoundMessage naming one of pairs' Old paths to
// point at its New path's precache index instead, e.g. to swap a mod's
// custom sound for the stock one a player's client has cached (§4.10.9).
func ReplaceSound(d *demo.Demo, pairs []ReplacementPair) error {
	precaches, err := d.GetPrecaches()
	if err != nil {
		return err
	}
	for _, block := range d.Blocks {
		for _, msg := range block.Messages {
			sm, ok := msg.(*qmsg.SoundMessage)
			if !ok || int(sm.SoundNum) >= len(precaches.Sounds) {
				continue
			}
			for _, pair := range pairs {
				if string(precaches.Sounds[sm.SoundNum]) != pair.Old {
					continue
				}
				idx := indexOfPath(precaches.Sounds, pair.New)
				if idx < 0 {
					return fmt.Errorf("cleanup: replacement sound %q not in precache", pair.New)
				}
				sm.SoundNum = uint16(idx)
			}
		}
	}
	return nil
}

// ReplaceWeaponModel rewrites every ClientDataMessage's view-weapon model
// index naming one of pairs' Old paths to point at its New path's precache
// index instead (§4.10.10).
func ReplaceWeaponModel(d *demo.Demo, pairs []ReplacementPair) error {
	precaches, err := d.GetPrecaches()
	if err != nil {
		return err
	}
	for _, block := range d.Blocks {
		for _, msg := range block.Messages {
			cd, ok := msg.(*qmsg.ClientDataMessage)
			if !ok || int(cd.Weapon) >= len(precaches.Models) {
				continue
			}
			for _, pair := range pairs {
				if string(precaches.Models[cd.Weapon]) != pair.Old {
					continue
				}
				idx := indexOfPath(precaches.Models, pair.New)
				if idx < 0 {
					return fmt.Errorf("cleanup: replacement weapon model %q not in precache", pair.New)
				}
				cd.Weapon = uint16(idx)
			}
		}
	}
	return nil
}

func indexOfPath(precache [][]byte, path string) int {
	for i, p := range precache {
		if string(p) == path {
			return i
		}
	}
	return -1
}
