// Package fixup reconciles the sound/print/entity-update messages each
// player's own demo carries for a collection once stats reconstruction
// (package stats) has decided which collections actually happened: events
// the original capture shows but reconstruction rejects are stripped, and
// events reconstruction newly attributes are synthesized, across every
// player's demo so they all still agree (§4.8.5, grounded on the original
// remove_collection_*/add_collection_*/fix_collection_events functions).
package fixup

import (
	"fmt"

	"github.com/qdemtools/qdem/collect"
	"github.com/qdemtools/qdem/collectable"
	"github.com/qdemtools/qdem/collision"
	"github.com/qdemtools/qdem/demo"
	"github.com/qdemtools/qdem/internal/qlog"
	"github.com/qdemtools/qdem/qmsg"
	"github.com/qdemtools/qdem/stats"
)

// RemoveCollectionSound deletes the one SoundMessage on viewent naming
// soundNum from block, erroring if it isn't present exactly once.
func RemoveCollectionSound(soundNum uint16, viewent int32, block *demo.Block) error {
	idx := -1
	for i, msg := range block.Messages {
		sm, ok := msg.(*qmsg.SoundMessage)
		if ok && sm.SoundNum == soundNum && int32(sm.Entity) == viewent {
			if idx >= 0 {
				return fmt.Errorf("fixup: more than one matching collection sound in block")
			}
			idx = i
		}
	}
	if idx < 0 {
		return fmt.Errorf("fixup: no matching collection sound in block")
	}
	block.Messages = append(block.Messages[:idx], block.Messages[idx+1:]...)
	return nil
}

// RemoveCollectionPrint deletes every message forming a pickup flash - the
// PrintMessage(s) that accumulated to printEvent.Text, plus the trailing
// "bf\n" StuffTextMessage - from the block it occurred in, verifying the
// block holds nothing else unaccounted for in the process.
func RemoveCollectionPrint(printEvent collect.PrintEvent, d *demo.Demo) error {
	block := d.Blocks[printEvent.BlockIndex]
	remaining := append([]byte(nil), printEvent.Text...)

	var stuffIdx = -1
	for i, msg := range block.Messages {
		if st, ok := msg.(*qmsg.StuffTextMessage); ok {
			if string(st.Text) != "bf\n" {
				continue
			}
			if stuffIdx >= 0 {
				return fmt.Errorf("fixup: more than one pickup flash StuffText in block %d", printEvent.BlockIndex)
			}
			stuffIdx = i
		}
	}
	if stuffIdx < 0 {
		return fmt.Errorf("fixup: no pickup flash StuffText in block %d", printEvent.BlockIndex)
	}

	var kept []qmsg.Message
	for i, msg := range block.Messages {
		if i == stuffIdx {
			continue
		}
		pm, ok := msg.(*qmsg.PrintMessage)
		if !ok {
			kept = append(kept, msg)
			continue
		}
		remaining = eraseOnce(remaining, pm.Text)
	}
	if len(remaining) != 0 {
		return fmt.Errorf("fixup: block %d print text left %q unaccounted for", printEvent.BlockIndex, remaining)
	}
	block.Messages = kept
	return nil
}

func eraseOnce(haystack, needle []byte) []byte {
	hs, ns := string(haystack), string(needle)
	idx := indexOfString(hs, ns)
	if idx < 0 {
		return haystack
	}
	return []byte(hs[:idx] + hs[idx+len(ns):])
}

func indexOfString(haystack, needle string) int {
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			return i
		}
	}
	return -1
}

// AddCollectionSound appends a pickup SoundMessage on viewent at the
// player's bounding-box center, the position SV_StartSound uses.
func AddCollectionSound(sound *collectable.CollectSound, clientPos [3]float32, viewent int32, sounds [][]byte, block *demo.Block) error {
	soundNum := indexOfBytes(sounds, sound.Path)
	if soundNum < 0 {
		return fmt.Errorf("fixup: sound %q not in precache", sound.Path)
	}
	block.Messages = append(block.Messages, &qmsg.SoundMessage{
		Flags: qmsg.SoundVolume | qmsg.SoundAttenuation,
		Volume: 255, Attenuation: 64,
		Entity: uint16(viewent), Channel: 3,
		SoundNum: uint16(soundNum),
		Origin:   collision.PlayerCenter(clientPos),
	})
	return nil
}

func indexOfBytes(list [][]byte, target []byte) int {
	for i, m := range list {
		if string(m) == string(target) {
			return i
		}
	}
	return -1
}

// KeepEntityAfter appends an EntityUpdate re-asserting entity_num's origin
// on every subsequent time-bearing block, so a pickup that reconstruction
// decided not to collect keeps rendering instead of vanishing the moment
// its original collection event is stripped.
func KeepEntityAfter(startBlockIndex int, entityNum int32, lastOrigin *[3]float32, d *demo.Demo) {
	flags := qmsg.UFSignal
	if entityNum > 255 {
		flags |= qmsg.UFMoreBits | qmsg.UFLongEntity
	}
	var origin [3]float32
	if lastOrigin != nil {
		flags |= qmsg.UFOrigin1 | qmsg.UFOrigin2 | qmsg.UFOrigin3
		origin = *lastOrigin
	}
	msg := &qmsg.EntityUpdateMessage{EntityNum: entityNum, Present: flags, State: qmsg.EntityState{Origin: origin}}

	for i := startBlockIndex; i < len(d.Blocks); i++ {
		block := d.Blocks[i]
		hasTime := false
		for _, m := range block.Messages {
			if _, ok := m.(*qmsg.TimeMessage); ok {
				hasTime = true
				break
			}
		}
		if hasTime {
			block.Messages = append(block.Messages, msg)
		}
	}
}

// RemoveEntityAfter deletes every EntityUpdate for entityNum from
// startBlockIndex onward, e.g. once a collectable has been newly picked up
// and must stop being kept alive by KeepEntityAfter.
func RemoveEntityAfter(startBlockIndex int, entityNum int32, d *demo.Demo) {
	for i := startBlockIndex; i < len(d.Blocks); i++ {
		block := d.Blocks[i]
		var kept []qmsg.Message
		for _, m := range block.Messages {
			if eu, ok := m.(*qmsg.EntityUpdateMessage); ok && eu.EntityNum == entityNum {
				continue
			}
			kept = append(kept, m)
		}
		block.Messages = kept
	}
}

func indexOfFloat32(values []float32, target float32) int {
	for i, v := range values {
		if v == target {
			return i
		}
	}
	return -1
}

// RemoveObsoleteCollectionEvents strips, from demos[player]'s own capture,
// every collection event present in oldCollections but missing from
// newCollections - meaning reconstruction decided the pickup never actually
// happened - removing its sound and print from that player's demo and its
// sound from every other player's demo at the block matching the same game
// time, and re-asserting the entity's position (or its spawn origin, if it
// never moved) so the pickup keeps rendering once its vanish-on-collect
// EntityUpdates are gone (§4.8.5, grounded on remove_obsolete_collection_events).
func RemoveObsoleteCollectionEvents(oldCollections, newCollections [][]*collect.Collectable, player int, demos []*demo.Demo) error {
	d := demos[player]
	precaches, err := d.GetPrecaches()
	if err != nil {
		return err
	}
	viewent, err := d.GetViewentity()
	if err != nil {
		return err
	}
	statics, err := collect.StaticCollectables(d, precaches.Models)
	if err != nil {
		return err
	}
	origins := collect.StaticOrigins(d, statics)

	timesPerPlayer := make([][]float32, len(demos))
	for i, other := range demos {
		timesPerPlayer[i] = other.GetTime()
	}

	for i, block := range d.Blocks {
		var toRemove []*collect.Collectable
		for _, old := range oldCollections[i] {
			stillPresent := false
			for _, nw := range newCollections[i] {
				if nw.EntityNum == old.EntityNum {
					stillPresent = true
					break
				}
			}
			if !stillPresent {
				toRemove = append(toRemove, old)
			}
		}

		for _, c := range toRemove {
			if c.Event == nil {
				return fmt.Errorf("fixup: removed collectable %d has no originating event", c.EntityNum)
			}
			if c.Event.Sound.BlockIndex != i {
				return fmt.Errorf("fixup: removed collectable %d's event is at block %d, not %d", c.EntityNum, c.Event.Sound.BlockIndex, i)
			}
			if err := RemoveCollectionSound(c.Event.Sound.SoundNum, int32(viewent), block); err != nil {
				return err
			}
			if err := RemoveCollectionPrint(c.Event.Print, d); err != nil {
				return err
			}

			var lastOrigin *[3]float32
			if track, ok := origins[c.EntityNum]; ok && i > 0 && track[i-1] != track[0] {
				o := track[i-1]
				lastOrigin = &o
			}
			KeepEntityAfter(i, c.EntityNum, lastOrigin, d)

			for j, other := range demos {
				if j == player {
					continue
				}
				otherI := indexOfFloat32(timesPerPlayer[j], c.TimeConsumed)
				if otherI < 0 {
					return fmt.Errorf("fixup: collectable %d consumed at time %f not found in player %d's demo", c.EntityNum, c.TimeConsumed, j)
				}
				if err := RemoveCollectionSound(c.Event.Sound.SoundNum, int32(viewent), other.Blocks[otherI]); err != nil {
					return err
				}
				KeepEntityAfter(otherI, c.EntityNum, lastOrigin, other)
			}

			qlog.Info("removed collection",
				qlog.F("kind", c.Type.Name),
				qlog.F("entity", c.EntityNum),
				qlog.F("time", c.TimeConsumed))
		}
	}
	return nil
}

// AddNewCollectionEvents synthesizes, in demos[player]'s own capture, a
// sound/print pickup flash for every collection present in newCollections but
// missing from oldCollections - a pickup reconstruction now attributes that
// the original recording never showed - at the player's own position, and
// adds the matching sound (but no HUD print, which is player-specific) to
// every other player's demo at the block matching the same game time. The
// entity then stops rendering in every demo from that point on, since it has
// genuinely been collected (§4.8.5, grounded on add_new_collection_events).
func AddNewCollectionEvents(oldCollections, newCollections [][]*collect.Collectable, player int, demos []*demo.Demo) error {
	d := demos[player]
	precaches, err := d.GetPrecaches()
	if err != nil {
		return err
	}
	viewent, err := d.GetViewentity()
	if err != nil {
		return err
	}
	clientPositions := collect.ClientPositions(d, int32(viewent))

	timesPerPlayer := make([][]float32, len(demos))
	for i, other := range demos {
		timesPerPlayer[i] = other.GetTime()
	}

	for i, block := range d.Blocks {
		var toAdd []*collect.Collectable
		for _, nw := range newCollections[i] {
			wasPresent := false
			for _, old := range oldCollections[i] {
				if old.EntityNum == nw.EntityNum {
					wasPresent = true
					break
				}
			}
			if !wasPresent {
				toAdd = append(toAdd, nw)
			}
		}

		for _, c := range toAdd {
			if err := AddCollectionSound(c.Type.CollectSound, clientPositions[i], int32(viewent), precaches.Sounds, block); err != nil {
				return err
			}
			block.Messages = append(block.Messages,
				&qmsg.PrintMessage{Text: c.Type.PrintText},
				&qmsg.StuffTextMessage{Text: []byte("bf\n")})
			RemoveEntityAfter(i, c.EntityNum, d)

			for j, other := range demos {
				if j == player {
					continue
				}
				otherI := indexOfFloat32(timesPerPlayer[j], c.TimeConsumed)
				if otherI < 0 {
					return fmt.Errorf("fixup: collectable %d consumed at time %f not found in player %d's demo", c.EntityNum, c.TimeConsumed, j)
				}
				otherPrecaches, err := other.GetPrecaches()
				if err != nil {
					return err
				}
				if err := AddCollectionSound(c.Type.CollectSound, clientPositions[i], int32(viewent), otherPrecaches.Sounds, other.Blocks[otherI]); err != nil {
					return err
				}
				RemoveEntityAfter(otherI, c.EntityNum, other)
			}

			qlog.Info("added collection",
				qlog.F("kind", c.Type.Name),
				qlog.F("entity", c.EntityNum),
				qlog.F("time", c.TimeConsumed))
		}
	}
	return nil
}

// FixCollectionEvents reconciles every player's demo against the collections
// stats reconstruction actually decided on, removing every player's obsolete
// events before adding any new one so an entity list never briefly shows a
// pickup as both collected and not (§4.8.5, grounded on fix_collection_events).
func FixCollectionEvents(oldCollectionsPerPlayer, newCollectionsPerPlayer [][][]*collect.Collectable, demos []*demo.Demo) error {
	if len(newCollectionsPerPlayer) != len(demos) || len(oldCollectionsPerPlayer) != len(demos) {
		return fmt.Errorf("fixup: collection lists must have one entry per player demo")
	}
	for player := range demos {
		if err := RemoveObsoleteCollectionEvents(oldCollectionsPerPlayer[player], newCollectionsPerPlayer[player], player, demos); err != nil {
			return err
		}
	}
	for player := range demos {
		if err := AddNewCollectionEvents(oldCollectionsPerPlayer[player], newCollectionsPerPlayer[player], player, demos); err != nil {
			return err
		}
	}
	return nil
}

// ApplyNewStartStats is the top-level entry point for stats reconstruction:
// given each player's intended starting stats, it infers what each demo's own
// capture originally showed being collected, rebuilds what was actually
// collectible given cross-player consistency, and reconciles every demo's
// events to match (§4.8, grounded on apply_new_start_stats).
func ApplyNewStartStats(startStats []*demo.ClientStats, demos []*demo.Demo, isCoop bool) error {
	if len(startStats) != len(demos) {
		return fmt.Errorf("fixup: need one start-stats value per player demo")
	}
	players := make([]stats.PlayerDemo, len(demos))
	oldStaticCollections := make([][][]*collect.Collectable, len(demos))
	for i, d := range demos {
		static, backpack, err := collect.Collections(d)
		if err != nil {
			return err
		}
		players[i] = stats.PlayerDemo{
			Demo:                d,
			StartStats:          startStats[i],
			StaticCollections:   static,
			BackpackCollections: backpack,
		}
		oldStaticCollections[i] = static
	}

	newCollections, err := stats.RebuildStats(players, isCoop)
	if err != nil {
		return err
	}
	return FixCollectionEvents(oldStaticCollections, newCollections, demos)
}

// AddRunes ORs the rune item flags for runeNums (1-4, corresponding to
// SIGIL1-4) into every ClientDataMessage across demo, for a map config where
// all four runes are granted up front rather than found in the level
// (§4.8.6, grounded on add_runes).
func AddRunes(d *demo.Demo, runeNums []int) error {
	var flags qmsg.ItemFlags
	for _, n := range runeNums {
		switch n {
		case 1:
			flags |= qmsg.ItemSigil1
		case 2:
			flags |= qmsg.ItemSigil2
		case 3:
			flags |= qmsg.ItemSigil3
		case 4:
			flags |= qmsg.ItemSigil4
		default:
			return fmt.Errorf("fixup: invalid rune number %d", n)
		}
	}
	for _, block := range d.Blocks {
		for _, m := range block.Messages {
			if cd, ok := m.(*qmsg.ClientDataMessage); ok {
				cd.Items |= flags
			}
		}
	}
	return nil
}
