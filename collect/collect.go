// Package collect infers which static pickups and dropped backpacks a
// recording player actually collected, by pairing each collection sound with
// its flavor-text print and matching both against whichever collectable's
// bounding box the player was closest to at that moment (§4.7).
package collect

import (
	"fmt"
	"math"
	"regexp"
	"strconv"

	"github.com/qdemtools/qdem/collectable"
	"github.com/qdemtools/qdem/collision"
	"github.com/qdemtools/qdem/demo"
	"github.com/qdemtools/qdem/qmsg"
)

// Collectable is one static pickup entity's fixed identity: which entity
// slot it occupies and which Kind it is. Backpacks additionally carry a
// per-instance Gives list, parsed from their pickup print text rather than
// fixed at compile time (§4.7).
type Collectable struct {
	EntityNum    int32
	Type         *collectable.Kind
	Gives        []collectable.Give
	TimeConsumed float32

	// Event is the sound/print pair whose presence in the demo first
	// established this collection; nil for a collectable that reconstruction
	// only decided should exist (package fixup uses this to tell which
	// collections need their original messages removed rather than added).
	Event *Event
}

func (c *Collectable) gives() []collectable.Give {
	if c.Gives != nil {
		return c.Gives
	}
	return c.Type.Gives
}

// WillCollect reports whether a pickup with these stats would actually be
// collected, per its Kind's rule (caps, armor-upgrade-only, coop ownership).
func (c *Collectable) WillCollect(s collectable.Stats, isCoop bool) bool {
	return c.Type.WillCollect(s, isCoop)
}

// WillDisappear reports whether collecting this pickup removes it from the
// world (always true for consumables; weapons only in deathmatch).
func (c *Collectable) WillDisappear(s collectable.Stats, isCoop bool) bool {
	return c.Type.WillDisappear(s, isCoop)
}

// PickupAmount sums however many of one ammo/health/armor resource this
// collectable's Gives list grants.
func (c *Collectable) PickupAmount(kind collectable.GiveKind) int32 {
	var total int32
	for _, g := range c.gives() {
		if g.Kind == kind {
			total += g.Amount
		}
	}
	return total
}

// PickupItems ORs together every item-flag bit this collectable's Gives
// list grants.
func (c *Collectable) PickupItems() qmsg.ItemFlags {
	var flags qmsg.ItemFlags
	for _, g := range c.gives() {
		if g.Kind == collectable.GiveItem {
			flags |= g.Item
		}
	}
	return flags
}

func (c *Collectable) bounds(origin [3]float32) collision.Bounds {
	return collision.Collectable(origin, c.Type.Mins, c.Type.Maxs)
}

// ActiveFrame pairs a Collectable with its position in one specific block.
type ActiveFrame struct {
	Collectable *Collectable
	Origin      [3]float32
}

func (a ActiveFrame) bounds() collision.Bounds { return a.Collectable.bounds(a.Origin) }

var nanOrigin = [3]float32{float32(math.NaN()), float32(math.NaN()), float32(math.NaN())}

// StaticCollectables finds every SpawnBaseline entity whose precached model
// names a recognized collectable kind. An EntityUpdate that gives any entity
// a collectable model is rejected as unsupported (§4.7: the code never
// expects a non-collectable to turn into one mid-demo); an update that moves
// a collectable to some other model is accepted here and handled by
// StaticOrigins.
func StaticCollectables(d *demo.Demo, models [][]byte) (map[int32]*Collectable, error) {
	out := make(map[int32]*Collectable)
	for _, block := range d.Blocks {
		for _, msg := range block.Messages {
			switch m := msg.(type) {
			case *qmsg.SpawnBaselineMessage:
				kind, ok := kindOf(models, m.State.ModelIndex, m.State.Skin)
				if !ok {
					continue
				}
				if _, dup := out[m.EntityNum]; dup {
					return nil, fmt.Errorf("collect: entity %d spawned as a collectable twice", m.EntityNum)
				}
				out[m.EntityNum] = &Collectable{EntityNum: m.EntityNum, Type: kind, TimeConsumed: float32(math.Inf(1))}
			case *qmsg.EntityUpdateMessage:
				if m.Present.Has(qmsg.UFModel) {
					if _, ok := kindOf(models, m.State.ModelIndex, m.State.Skin); ok {
						return nil, fmt.Errorf("collect: entity %d became a collectable via EntityUpdate", m.EntityNum)
					}
				}
			}
		}
	}
	return out, nil
}

func kindOf(models [][]byte, modelIndex int32, skin uint8) (*collectable.Kind, bool) {
	if modelIndex <= 0 || int(modelIndex) >= len(models) {
		return nil, false
	}
	path := string(models[modelIndex])
	if path == collectable.ArmorModelPath {
		return collectable.ArmorBySkin(skin), true
	}
	kind, ok := collectable.ModelKinds[path]
	return kind, ok
}

// StaticOrigins tracks each static collectable's origin across every block:
// it starts at the SpawnBaseline origin and is updated by each subsequent
// EntityUpdate's ORIGIN bits. A MODEL-changing update sends the entity into
// the "NaN void": an unreachable position, since the entity is no longer the
// pickup it once was (§4.7).
func StaticOrigins(d *demo.Demo, statics map[int32]*Collectable) map[int32][][3]float32 {
	origins := make(map[int32][][3]float32, len(statics))
	for _, block := range d.Blocks {
		for _, msg := range block.Messages {
			m, ok := msg.(*qmsg.SpawnBaselineMessage)
			if !ok {
				continue
			}
			if _, ok := statics[m.EntityNum]; !ok {
				continue
			}
			if _, seeded := origins[m.EntityNum]; seeded {
				continue
			}
			track := make([][3]float32, len(d.Blocks))
			for i := range track {
				track[i] = m.State.Origin
			}
			origins[m.EntityNum] = track
		}
	}

	for i, block := range d.Blocks {
		for _, msg := range block.Messages {
			m, ok := msg.(*qmsg.EntityUpdateMessage)
			if !ok {
				continue
			}
			track, ok := origins[m.EntityNum]
			if !ok || i == 0 {
				continue
			}
			next := track[i-1]
			if m.Present.Has(qmsg.UFOrigin1) {
				next[0] = m.State.Origin[0]
			}
			if m.Present.Has(qmsg.UFOrigin2) {
				next[1] = m.State.Origin[1]
			}
			if m.Present.Has(qmsg.UFOrigin3) {
				next[2] = m.State.Origin[2]
			}
			if m.Present.Has(qmsg.UFModel) {
				next = nanOrigin
			}
			track[i] = next
		}
	}
	return origins
}

// ActiveFramesByBlock is StaticOrigins projected into a per-block list of
// ActiveFrame, one per collectable reported that block by a SpawnBaseline
// (frame 1 only, to make unpause-instant pickups possible) or EntityUpdate.
// Blocks with neither a TimeMessage nor a SpawnBaseline inherit the previous
// block's list verbatim (§4.7).
func ActiveFramesByBlock(d *demo.Demo, statics map[int32]*Collectable, origins map[int32][][3]float32) [][]ActiveFrame {
	out := make([][]ActiveFrame, len(d.Blocks))
	for i, block := range d.Blocks {
		var hasTimeOrBaseline bool
		for _, msg := range block.Messages {
			switch m := msg.(type) {
			case *qmsg.TimeMessage:
				hasTimeOrBaseline = true
			case *qmsg.SpawnBaselineMessage:
				hasTimeOrBaseline = true
				if c, ok := statics[m.EntityNum]; ok {
					out[i] = append(out[i], ActiveFrame{Collectable: c, Origin: origins[m.EntityNum][i]})
				}
			case *qmsg.EntityUpdateMessage:
				if c, ok := statics[m.EntityNum]; ok {
					out[i] = append(out[i], ActiveFrame{Collectable: c, Origin: origins[m.EntityNum][i]})
				}
			}
		}
		if !hasTimeOrBaseline && i > 0 {
			out[i] = out[i-1]
		}
	}
	return out
}

// BackpacksByBlock locates every entity whose model is the dropped-backpack
// model in each block, tracking origin the same way as static collectables
// (§4.7). Unlike statics, backpacks are not known ahead of time from
// SpawnBaseline: they come into being via an EntityUpdate that assigns the
// backpack model to a previously ordinary entity.
func BackpacksByBlock(d *demo.Demo, models [][]byte) [][]ActiveFrame {
	out := make([][]ActiveFrame, len(d.Blocks))
	baseline := make(map[int32][3]float32)
	for i, block := range d.Blocks {
		for _, msg := range block.Messages {
			switch m := msg.(type) {
			case *qmsg.SpawnBaselineMessage:
				baseline[m.EntityNum] = m.State.Origin
			case *qmsg.EntityUpdateMessage:
				if m.State.ModelIndex == 0 || int(m.State.ModelIndex) >= len(models) {
					continue
				}
				if string(models[m.State.ModelIndex]) != collectable.BackpackModelPath {
					continue
				}
				origin := baseline[m.EntityNum]
				if m.Present.Has(qmsg.UFOrigin1) {
					origin[0] = m.State.Origin[0]
				}
				if m.Present.Has(qmsg.UFOrigin2) {
					origin[1] = m.State.Origin[1]
				}
				if m.Present.Has(qmsg.UFOrigin3) {
					origin[2] = m.State.Origin[2]
				}
				c := &Collectable{EntityNum: m.EntityNum, Type: collectable.Backpack, TimeConsumed: float32(math.Inf(1))}
				out[i] = append(out[i], ActiveFrame{Collectable: c, Origin: origin})
			}
		}
	}
	return out
}

// SoundEvent is a single collection sound: a SoundMessage on the recording
// client's own entity whose precached name matches a known CollectSound.
type SoundEvent struct {
	BlockIndex int
	SoundNum   uint16
	Sound      *collectable.CollectSound
	Origin     [3]float32
}

// PrintEvent is the flavor-text print associated with one pickup, bounded by
// a "bf\n" StuffText (the classic item-pickup HUD flash).
type PrintEvent struct {
	BlockIndex int
	Text       []byte
}

// Event pairs one collection's sound and print, in emission order.
type Event struct {
	Sound SoundEvent
	Print PrintEvent
}

func soundPath(path []byte) (*collectable.CollectSound, bool) {
	for _, s := range collectable.CollectSounds {
		if string(s.Path) == string(path) {
			return s, true
		}
	}
	return nil, false
}

// CollectionSounds scans for SoundMessages on viewent that name a known
// pickup sound.
func CollectionSounds(d *demo.Demo, sounds [][]byte, viewent int32) []SoundEvent {
	var out []SoundEvent
	for i, block := range d.Blocks {
		for _, msg := range block.Messages {
			sm, ok := msg.(*qmsg.SoundMessage)
			if !ok || int32(sm.Entity) != viewent {
				continue
			}
			if int(sm.SoundNum) >= len(sounds) {
				continue
			}
			if sound, ok := soundPath(sounds[sm.SoundNum]); ok {
				out = append(out, SoundEvent{BlockIndex: i, SoundNum: sm.SoundNum, Sound: sound, Origin: sm.Origin})
			}
		}
	}
	return out
}

// ignoredPrintTexts are pickups that never play a sound, so never form a
// collection Event even though their print text matches the pickup pattern
// (§4.7): keys, runekeys, and the three powerups.
var ignoredPrintTexts = [][]byte{
	[]byte("You got the silver key\n"),
	[]byte("You got the gold key\n"),
	[]byte("You got the silver keycard\n"),
	[]byte("You got the gold keycard\n"),
	[]byte("You got the silver runekey\n"),
	[]byte("You got the gold runekey\n"),
	[]byte("You got the Quad Damage\n"),
	[]byte("You got the Biosuit\n"),
	[]byte("You got the Ring of Shadows\n"),
	[]byte("You got the Pentagram of Protection\n"),
}

func isIgnoredPrintText(text []byte) bool {
	for _, ig := range ignoredPrintTexts {
		if string(ig) == string(text) {
			return true
		}
	}
	return false
}

func hasPickupPrefix(text []byte) bool {
	for _, prefix := range [][]byte{[]byte("You get"), []byte("You got"), []byte("You receive")} {
		if len(text) >= len(prefix) && string(text[:len(prefix)]) == string(prefix) {
			return true
		}
	}
	return false
}

// CollectionPrints accumulates PrintMessage text between pickup-prefixed
// lines and the "bf\n" StuffText that always follows a pickup flash,
// skipping the accumulated text entirely when it matches an ignored kind.
func CollectionPrints(d *demo.Demo) []PrintEvent {
	var out []PrintEvent
	var text []byte
	for i, block := range d.Blocks {
		for _, msg := range block.Messages {
			switch m := msg.(type) {
			case *qmsg.PrintMessage:
				if hasPickupPrefix(m.Text) || len(text) > 0 {
					text = append(text, m.Text...)
				}
			case *qmsg.StuffTextMessage:
				if string(m.Text) == "bf\n" {
					if len(text) > 0 && !isIgnoredPrintText(text) {
						out = append(out, PrintEvent{BlockIndex: i, Text: text})
					}
					text = nil
				}
			}
		}
	}
	return out
}

// CollectionEvents pairs CollectionSounds and CollectionPrints index for
// index, asserting they occur in the same count (§4.7: every pickup fires
// exactly one sound and one print).
func CollectionEvents(d *demo.Demo, sounds [][]byte) ([]Event, error) {
	viewent, err := d.GetViewentity()
	if err != nil {
		return nil, err
	}
	soundEvents := CollectionSounds(d, sounds, int32(viewent))
	printEvents := CollectionPrints(d)
	if len(soundEvents) != len(printEvents) {
		return nil, fmt.Errorf("collect: %d collection sounds but %d collection prints", len(soundEvents), len(printEvents))
	}
	out := make([]Event, len(soundEvents))
	for i := range soundEvents {
		out[i] = Event{Sound: soundEvents[i], Print: printEvents[i]}
	}
	return out, nil
}

// ClientPositions returns the recording client's own entity origin at each
// block that carries an EntityUpdate for it, and +Inf on every axis for each
// block that carries none (positions are not carried forward).
func ClientPositions(d *demo.Demo, clientNum int32) [][3]float32 {
	inf := [3]float32{float32(math.Inf(1)), float32(math.Inf(1)), float32(math.Inf(1))}
	out := make([][3]float32, len(d.Blocks))
	for i := range out {
		out[i] = inf
	}
	for i, block := range d.Blocks {
		for _, msg := range block.Messages {
			m, ok := msg.(*qmsg.EntityUpdateMessage)
			if ok && m.EntityNum == clientNum {
				out[i] = m.State.Origin
			}
		}
	}
	return out
}

// IsSoundFromClientPosition reports whether a sound's recorded origin is
// consistent with having been emitted at the client's own position, per
// SV_StartSound placing sounds at the entity's bounding-box center rather
// than its raw origin. Demo captures appear to carry slight inaccuracy here,
// hence the 2.25-unit tolerance rather than exact equality (§4.7).
func IsSoundFromClientPosition(clientOrigin, soundOrigin [3]float32) bool {
	center := collision.PlayerCenter(clientOrigin)
	for i := 0; i < 3; i++ {
		if float32(math.Abs(float64(center[i]-soundOrigin[i]))) >= 2.25 {
			return false
		}
	}
	return true
}

// FindClosestActiveFrame returns whichever frame's bounding box is nearest
// the player (by signed interval distance) and that distance, or nil if
// frames is empty.
func FindClosestActiveFrame(clientOrigin [3]float32, frames []ActiveFrame) (*ActiveFrame, float32) {
	playerBounds := collision.Player(clientOrigin)
	best := float32(math.Inf(1))
	var closest *ActiveFrame
	for i := range frames {
		d := collision.Distance(playerBounds, frames[i].bounds())
		if d < best {
			best = d
			closest = &frames[i]
		}
	}
	return closest, best
}

var backpackContentsPattern = regexp.MustCompile(
	`^You get (?:([1-9]\d*) shells)?(?:, )?(?:([1-9]\d*) nails)?(?:, )?` +
		`(?:([1-9]\d*) rockets)?(?:, )?(?:([1-9]\d*) cells)?\n$`)

// BackpackContents parses a backpack's "You get N shells, N nails, ..."
// pickup text into the Gives list that instance's Collectable carries,
// since a backpack's contents vary per drop rather than being fixed (§4.7).
func BackpackContents(text []byte) ([]collectable.Give, error) {
	match := backpackContentsPattern.FindSubmatch(text)
	if match == nil {
		return nil, fmt.Errorf("collect: %q is not a backpack pickup text", text)
	}
	kinds := []collectable.GiveKind{collectable.GiveShells, collectable.GiveNails, collectable.GiveRockets, collectable.GiveCells}
	var gives []collectable.Give
	for i, kind := range kinds {
		group := match[i+1]
		if len(group) == 0 {
			continue
		}
		amount, err := strconv.Atoi(string(group))
		if err != nil {
			return nil, fmt.Errorf("collect: backpack contents: %w", err)
		}
		gives = append(gives, collectable.Give{Kind: kind, Amount: int32(amount)})
	}
	return gives, nil
}

// Collections replays a demo's collection events against its static and
// backpack activity, matching each event's sound kind and print text to the
// nearest candidate pickup and returning, per block, which static and
// backpack collectables were consumed there (§4.7).
func Collections(d *demo.Demo) (static, backpack [][]*Collectable, err error) {
	precaches, err := d.GetPrecaches()
	if err != nil {
		return nil, nil, err
	}
	viewent, err := d.GetViewentity()
	if err != nil {
		return nil, nil, err
	}
	statics, err := StaticCollectables(d, precaches.Models)
	if err != nil {
		return nil, nil, err
	}
	origins := StaticOrigins(d, statics)
	staticFrames := ActiveFramesByBlock(d, statics, origins)
	backpackFrames := BackpacksByBlock(d, precaches.Models)
	clientPositions := ClientPositions(d, viewent)
	events, err := CollectionEvents(d, precaches.Sounds)
	if err != nil {
		return nil, nil, err
	}
	times := d.GetTime()

	static = make([][]*Collectable, len(d.Blocks))
	backpack = make([][]*Collectable, len(d.Blocks))

	for eventIdx := range events {
		event := events[eventIdx]
		i := event.Sound.BlockIndex
		clientOrigin := clientPositions[i]
		if !IsSoundFromClientPosition(clientOrigin, event.Sound.Origin) {
			return nil, nil, fmt.Errorf("collect: collection sound at block %d did not originate from the client", i)
		}

		prev := d.GetPreviousBlockIndexWithTimeMessage(i)
		var staticCandidates []ActiveFrame
		for _, f := range staticFrames[prev] {
			if f.Collectable.Type.CollectSound == event.Sound.Sound {
				staticCandidates = append(staticCandidates, f)
			}
		}
		closestStatic, distStatic := FindClosestActiveFrame(clientOrigin, staticCandidates)

		var closestBackpack *ActiveFrame
		distBackpack := float32(math.Inf(1))
		if event.Sound.Sound == collectable.SoundAmmo {
			closestBackpack, distBackpack = FindClosestActiveFrame(clientOrigin, backpackFrames[prev])
		}

		var chosen *Collectable
		var dist float32
		if closestStatic != nil && distStatic < distBackpack {
			if string(event.Print.Text) != string(closestStatic.Collectable.Type.PrintText) {
				return nil, nil, fmt.Errorf("collect: block %d print text %q does not match the closest static pickup", i, event.Print.Text)
			}
			removeFrame(staticFrames, prev, closestStatic.Collectable)
			chosen, dist = closestStatic.Collectable, distStatic
			static[i] = append(static[i], chosen)
		} else if closestBackpack != nil {
			if len(event.Print.Text) < len("You get ") || string(event.Print.Text[:8]) != "You get " {
				return nil, nil, fmt.Errorf("collect: block %d backpack print text %q is malformed", i, event.Print.Text)
			}
			gives, err := BackpackContents(event.Print.Text)
			if err != nil {
				return nil, nil, err
			}
			closestBackpack.Collectable.Gives = gives
			removeFrame(backpackFrames, prev, closestBackpack.Collectable)
			chosen, dist = closestBackpack.Collectable, distBackpack
			backpack[i] = append(backpack[i], chosen)
		} else {
			return nil, nil, fmt.Errorf("collect: block %d has no static or backpack candidate for a %v collection", i, event.Sound.Sound)
		}
		if dist >= 0.5 {
			return nil, nil, fmt.Errorf("collect: block %d matched collectable %f units away, expected < 0.5", i, dist)
		}
		chosen.TimeConsumed = times[i]
		chosen.Event = &events[eventIdx]
	}

	return static, backpack, nil
}

func removeFrame(frames [][]ActiveFrame, block int, c *Collectable) {
	list := frames[block]
	for i, f := range list {
		if f.Collectable == c {
			frames[block] = append(list[:i], list[i+1:]...)
			return
		}
	}
}
