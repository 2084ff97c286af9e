package qmsg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qdemtools/qdem/bindata"
	"github.com/qdemtools/qdem/protocol"
)

func roundTrip(t *testing.T, state *protocol.State, baselines Baselines, m Message) Message {
	t.Helper()
	w := bindata.NewWriter()
	WriteMessage(w, m, state)

	r := bindata.NewReader(w.Bytes())
	got, err := ParseMessage(r, state, baselines)
	require.NoError(t, err)
	assert.Equal(t, 0, r.Len(), "message should consume exactly its own bytes")
	return got
}

func TestServerInfoRoundTripMutatesState(t *testing.T) {
	state := protocol.Default()
	m := &ServerInfoMessage{
		Version:       uint32(protocol.VersionFitzQuake.ID),
		MaxClients:    4,
		GameType:      0,
		LevelName:     []byte("dm3"),
		ModelPrecache: [][]byte{{}, []byte("progs/player.mdl")},
		SoundPrecache: [][]byte{{}, []byte("weapons/rocket1.wav")},
	}

	got := roundTrip(t, &state, Baselines{}, m)
	gotInfo, ok := got.(*ServerInfoMessage)
	require.True(t, ok)
	assert.Equal(t, m.LevelName, gotInfo.LevelName)
	assert.Equal(t, m.ModelPrecache, gotInfo.ModelPrecache)
	assert.Equal(t, protocol.VersionFitzQuake, state.Version)
}

func TestSoundRoundTrip(t *testing.T) {
	state := protocol.Default()
	m := &SoundMessage{
		Flags:       SoundVolume | SoundAttenuation,
		Volume:      200,
		Attenuation: 64,
		Entity:      12,
		Channel:     3,
		SoundNum:    45,
		Origin:      [3]float32{100, -50.5, 0},
	}

	got := roundTrip(t, &state, Baselines{}, m)
	assert.Equal(t, m, got)
}

func TestSoundLargeEntityAndSound(t *testing.T) {
	state := protocol.Default()
	m := &SoundMessage{
		Flags:    SoundLargeEntity | SoundLargeSound,
		Entity:   900,
		Channel:  5,
		SoundNum: 8000,
		Origin:   [3]float32{1, 2, 3},
	}
	got := roundTrip(t, &state, Baselines{}, m)
	assert.Equal(t, m, got)
}

func TestClientDataRoundTripBaseFieldsOnly(t *testing.T) {
	state := protocol.Default()
	m := &ClientDataMessage{
		Present:     SUFItems,
		ViewHeight:  DefaultViewHeight,
		WeaponAlpha: 1,
		Items:       ItemShotgun | ItemShells,
		Health:      100,
		Ammo:        25,
		Shells:      25,
	}
	got := roundTrip(t, &state, Baselines{}, m)
	assert.Equal(t, m, got)
}

func TestClientDataRoundTripExtendedFields(t *testing.T) {
	state := protocol.Default()
	m := &ClientDataMessage{
		Present: SUFViewHeight | SUFPunch1 | SUFItems | SUFWeapon | SUFExtend1 |
			SUFWeapon2 | SUFAmmo2 | SUFExtend2 | SUFShells2 | SUFWeaponAlpha,
		ViewHeight:  10,
		Punch:       [3]float32{4, 0, 0},
		Items:       ItemRocketLauncher,
		Weapon:      300,
		Ammo:        600,
		Shells:      280,
		WeaponAlpha: 0.2, // 51/255, exactly representable in the alpha byte
	}
	got := roundTrip(t, &state, Baselines{}, m)
	assert.Equal(t, m, got)
}

func TestClientDataForcesArmorFlag(t *testing.T) {
	state := protocol.Default()
	m := &ClientDataMessage{
		Present:     SUFItems, // ARMOR bit deliberately absent
		WeaponAlpha: 1,
		Armor:       50,
	}
	got := roundTrip(t, &state, Baselines{}, m).(*ClientDataMessage)
	assert.True(t, got.Present.Has(SUFArmor))
	assert.EqualValues(t, 50, got.Armor)
}

func TestSpawnBaselinePopulatesBaselines(t *testing.T) {
	state := protocol.Default()
	baselines := Baselines{}

	m := &SpawnBaselineMessage{
		EntityNum: 7,
		State: EntityState{
			ModelIndex: 3,
			Frame:      1,
			Origin:     [3]float32{64, 0, 16},
			Angles:     [3]float32{0, 90, 0},
		},
	}
	roundTrip(t, &state, baselines, m)

	base := baselines.Get(7)
	assert.EqualValues(t, 3, base.ModelIndex)
	assert.Equal(t, [3]float32{64, 0, 16}, base.Origin)
}

func TestEntityUpdateInheritsAbsentFieldsFromBaseline(t *testing.T) {
	state := protocol.Default()
	baselines := Baselines{
		5: {ModelIndex: 9, Frame: 2, Origin: [3]float32{1, 2, 3}, Angles: [3]float32{0, 45, 0}},
	}

	m := &EntityUpdateMessage{
		EntityNum: 5,
		Present:   UFOrigin2,
		State:     EntityState{Origin: [3]float32{1, 99, 3}},
	}

	w := bindata.NewWriter()
	WriteMessage(w, m, &state)
	r := bindata.NewReader(w.Bytes())
	got, err := ParseMessage(r, &state, baselines)
	require.NoError(t, err)

	eu, ok := got.(*EntityUpdateMessage)
	require.True(t, ok)
	assert.EqualValues(t, 9, eu.State.ModelIndex, "absent MODEL field should inherit from baseline")
	assert.EqualValues(t, 2, eu.State.Frame, "absent FRAME field should inherit from baseline")
	assert.InDelta(t, 99, eu.State.Origin[1], 0.01, "transmitted ORIGIN2 field should be the wire value")
}

func TestEntityUpdateLongEntityAndExtend(t *testing.T) {
	state := protocol.State{Version: protocol.VersionFitzQuake}
	baselines := Baselines{}

	m := &EntityUpdateMessage{
		EntityNum: 1000,
		Present:   UFLongEntity | UFMoreBits | UFModel | UFExtend1 | UFModel2 | UFAlpha,
		State:     EntityState{ModelIndex: 500},
		Alpha:     0.25,
	}

	got := roundTrip(t, &state, baselines, m).(*EntityUpdateMessage)
	assert.EqualValues(t, 1000, got.EntityNum)
	assert.EqualValues(t, 500, got.State.ModelIndex)
	assert.InDelta(t, 0.25, got.Alpha, 0.01)
}

func TestEntityUpdateExtend2Scale(t *testing.T) {
	state := protocol.State{Version: protocol.VersionFitzQuake}
	baselines := Baselines{}

	m := &EntityUpdateMessage{
		EntityNum: 42,
		Present:   UFMoreBits | UFExtend1 | UFExtend2 | UFAlpha | UFScale,
		Alpha:     0.5,
		Scale:     2,
	}

	got := roundTrip(t, &state, baselines, m).(*EntityUpdateMessage)
	assert.EqualValues(t, 42, got.EntityNum)
	assert.InDelta(t, 0.5, got.Alpha, 0.01)
	assert.InDelta(t, 2, got.Scale, 0.1)
}

func TestTempEntityPositionVariant(t *testing.T) {
	state := protocol.Default()
	m := &TempEntityMessage{
		Type:     TETGunshot,
		Position: TempEntityPosition{Origin: [3]float32{10, 20, 30}},
	}
	got := roundTrip(t, &state, Baselines{}, m).(*TempEntityMessage)
	assert.Equal(t, m.Type, got.Type)
	assert.Equal(t, m.Position, got.Position)
}

func TestTempEntityBeamNamedVariant(t *testing.T) {
	state := protocol.Default()
	m := &TempEntityMessage{
		Type: TETBeam,
		BeamNamed: TempEntityBeamNamed{
			Entity:     4,
			ModelIndex: 12,
			Start:      [3]float32{0, 0, 0},
			End:        [3]float32{100, 0, 0},
		},
	}
	got := roundTrip(t, &state, Baselines{}, m).(*TempEntityMessage)
	assert.Equal(t, m.BeamNamed, got.BeamNamed)
}
