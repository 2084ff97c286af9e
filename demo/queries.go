package demo

import (
	"fmt"
	"math"

	"github.com/qdemtools/qdem/qmsg"
)

// ClientStats is the per-block projection of a ClientDataMessage, expanded
// to full-width integer fields for arithmetic in stats reconstruction (§3).
type ClientStats struct {
	Items        qmsg.ItemFlags
	Health       int32
	Armor        int32
	Shells       int32
	Nails        int32
	Rockets      int32
	Cells        int32
	ActiveWeapon uint8 // byte-truncated ItemFlags; 0 means the axe
	Ammo         int32
	WeaponModel  uint16
	WeaponFrame  uint16
}

func clientStatsOf(m *qmsg.ClientDataMessage) *ClientStats {
	return &ClientStats{
		Items:        m.Items,
		Health:       int32(m.Health),
		Armor:        m.Armor,
		Shells:       int32(m.Shells),
		Nails:        int32(m.Nails),
		Rockets:      int32(m.Rockets),
		Cells:        int32(m.Cells),
		ActiveWeapon: m.ActiveWeapon,
		Ammo:         int32(m.Ammo),
		WeaponModel:  m.Weapon,
		WeaponFrame:  m.WeaponFrame,
	}
}

// GetTime assigns every block the value of the most recent TimeMessage seen
// at or before it, carrying forward from 0.0 (§4.5).
func (d *Demo) GetTime() []float32 {
	times := make([]float32, len(d.Blocks))
	var current float32
	for i, block := range d.Blocks {
		for _, m := range block.Messages {
			if tm, ok := m.(*qmsg.TimeMessage); ok {
				current = tm.Time
			}
		}
		times[i] = current
	}
	return times
}

// GetYaw returns the per-block yaw (view angle component 1) with 360°
// unwrapping applied: for each i>0, whichever of {yaw[i], yaw[i]±360} lands
// closest to yaw[i-1] is chosen, and the resulting shift carries forward
// through the rest of the series (§4.5, §9 example: 359.5° then 0.5°
// becomes 359.5° then 360.5°).
func (d *Demo) GetYaw() []float32 {
	yaws := make([]float32, len(d.Blocks))
	for i, block := range d.Blocks {
		yaws[i] = block.ViewAngles[1]
	}

	for i := 1; i < len(yaws); i++ {
		candidates := [3]float32{yaws[i] - 360, yaws[i], yaws[i] + 360}
		best := candidates[0]
		bestDist := float32(math.Abs(float64(candidates[0] - yaws[i-1])))
		for _, c := range candidates[1:] {
			dist := float32(math.Abs(float64(c - yaws[i-1])))
			if dist < bestDist {
				best, bestDist = c, dist
			}
		}
		shift := best - yaws[i]
		if shift != 0 {
			for j := i; j < len(yaws); j++ {
				yaws[j] += shift
			}
		}
	}

	return yaws
}

// GetPitch returns the per-block pitch (view angle component 0), unwrapped
// the same way GetYaw is (§4.5).
func (d *Demo) GetPitch() []float32 {
	pitches := make([]float32, len(d.Blocks))
	for i, block := range d.Blocks {
		pitches[i] = block.ViewAngles[0]
	}

	for i := 1; i < len(pitches); i++ {
		candidates := [3]float32{pitches[i] - 360, pitches[i], pitches[i] + 360}
		best := candidates[0]
		bestDist := float32(math.Abs(float64(candidates[0] - pitches[i-1])))
		for _, c := range candidates[1:] {
			dist := float32(math.Abs(float64(c - pitches[i-1])))
			if dist < bestDist {
				best, bestDist = c, dist
			}
		}
		shift := best - pitches[i]
		if shift != 0 {
			for j := i; j < len(pitches); j++ {
				pitches[j] += shift
			}
		}
	}

	return pitches
}

// SetYaw writes back a (possibly unwrapped) yaw series, wrapping each value
// into [0, 360) before storing it in its block's ViewAngles.
func (d *Demo) SetYaw(yaws []float32) {
	for i, block := range d.Blocks {
		block.ViewAngles[1] = wrap360(yaws[i])
	}
}

// SetPitch writes back a (possibly unwrapped) pitch series, wrapping each
// value into [0, 360) before storing it in its block's ViewAngles.
func (d *Demo) SetPitch(pitches []float32) {
	for i, block := range d.Blocks {
		block.ViewAngles[0] = wrap360(pitches[i])
	}
}

func wrap360(v float32) float32 {
	m := float32(math.Mod(float64(v), 360))
	if m < 0 {
		m += 360
	}
	return m
}

// GetFixangleIndices returns the block indices at which any SetAngle
// message occurs (§4.5).
func (d *Demo) GetFixangleIndices() []int {
	var indices []int
	for i, block := range d.Blocks {
		for _, m := range block.Messages {
			if _, ok := m.(*qmsg.SetAngleMessage); ok {
				indices = append(indices, i)
				break
			}
		}
	}
	return indices
}

// GetClientStats projects each block's ClientData message (if any) to a
// ClientStats. Blocks without one produce a nil entry (§4.5).
func (d *Demo) GetClientStats() []*ClientStats {
	stats := make([]*ClientStats, len(d.Blocks))
	for i, block := range d.Blocks {
		for _, m := range block.Messages {
			if cd, ok := m.(*qmsg.ClientDataMessage); ok {
				stats[i] = clientStatsOf(cd)
			}
		}
	}
	return stats
}

// GetFinalClientStats returns the last non-nil entry of GetClientStats, the
// stats a player ended the demo with, or nil if the demo never carried one.
func (d *Demo) GetFinalClientStats() *ClientStats {
	all := d.GetClientStats()
	for i := len(all) - 1; i >= 0; i-- {
		if all[i] != nil {
			return all[i]
		}
	}
	return nil
}

// SetClientStats rewrites block i's ClientData message in place from s,
// preserving the original message's Present flags (stats reconstruction
// only ever changes values, never which fields are transmitted). Panics if
// the block has no ClientData message, matching GetClientStats's contract
// that reconstruction never targets a stat-less block.
func (d *Demo) SetClientStats(i int, s *ClientStats) {
	for _, m := range d.Blocks[i].Messages {
		if cd, ok := m.(*qmsg.ClientDataMessage); ok {
			cd.Items = s.Items
			cd.Health = int16(s.Health)
			cd.Armor = s.Armor
			cd.Shells = uint16(s.Shells)
			cd.Nails = uint16(s.Nails)
			cd.Rockets = uint16(s.Rockets)
			cd.Cells = uint16(s.Cells)
			cd.ActiveWeapon = s.ActiveWeapon
			cd.Ammo = uint16(s.Ammo)
			cd.Weapon = s.WeaponModel
			cd.WeaponFrame = s.WeaponFrame
			return
		}
	}
	panic(fmt.Sprintf("demo: SetClientStats: block %d has no ClientData message", i))
}

// GetPreviousBlockIndexWithTimeMessage returns the greatest j < i carrying a
// TimeMessage, or i-1 if none exists (§4.5).
func (d *Demo) GetPreviousBlockIndexWithTimeMessage(i int) int {
	for j := i - 1; j >= 0; j-- {
		for _, m := range d.Blocks[j].Messages {
			if _, ok := m.(*qmsg.TimeMessage); ok {
				return j
			}
		}
	}
	return i - 1
}

// Precaches is the pair of model/sound precache lists a demo's single
// ServerInfo message declares, both 1-based (index 0 is the empty
// sentinel).
type Precaches struct {
	Models [][]byte
	Sounds [][]byte
}

// GetPrecaches asserts the demo carries exactly one ServerInfo message and
// returns its precache lists (§4.5).
func (d *Demo) GetPrecaches() (Precaches, error) {
	var found *qmsg.ServerInfoMessage
	for _, block := range d.Blocks {
		for _, m := range block.Messages {
			if si, ok := m.(*qmsg.ServerInfoMessage); ok {
				if found != nil {
					return Precaches{}, fmt.Errorf("demo: GetPrecaches: more than one ServerInfo message")
				}
				found = si
			}
		}
	}
	if found == nil {
		return Precaches{}, fmt.Errorf("demo: GetPrecaches: no ServerInfo message")
	}
	return Precaches{Models: found.ModelPrecache, Sounds: found.SoundPrecache}, nil
}

// GetViewentity returns the viewentity declared by the demo's SetView
// message(s). §3 requires exactly one SetView per demo, or several with an
// identical viewentity id; this returns that shared id and an error if the
// invariant is violated or no SetView was ever seen.
func (d *Demo) GetViewentity() (int16, error) {
	var found *int16
	for _, block := range d.Blocks {
		for _, m := range block.Messages {
			if sv, ok := m.(*qmsg.SetViewMessage); ok {
				if found != nil && *found != sv.Viewentity {
					return 0, fmt.Errorf("demo: GetViewentity: conflicting SetView values %d and %d", *found, sv.Viewentity)
				}
				v := sv.Viewentity
				found = &v
			}
		}
	}
	if found == nil {
		return 0, fmt.Errorf("demo: GetViewentity: no SetView message")
	}
	return *found, nil
}
