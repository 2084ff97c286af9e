package qmsg

import (
	"github.com/qdemtools/qdem/bindata"
	"github.com/qdemtools/qdem/protocol"
)

// BadMessage marks a zero-length placeholder tag. It never legitimately
// appears on the wire from a real server, but demo.Write emits a NopMessage
// (not this) for an empty block; BadMessage exists so id 0 round-trips if
// ever encountered in a malformed capture.
type BadMessage struct{}

func (*BadMessage) MessageID() ID { return IDBad }

// NopMessage is a zero-length no-op, used by demo.Write to materialize an
// otherwise-empty message list (§3 Block invariant).
type NopMessage struct{}

func (*NopMessage) MessageID() ID { return IDNop }

// DisconnectMessage tells the client the connection is ending.
type DisconnectMessage struct{}

func (*DisconnectMessage) MessageID() ID { return IDDisconnect }

// UpdateStatMessage sets one named stat slot to a value.
type UpdateStatMessage struct {
	Stat  uint8
	Value int32
}

func (*UpdateStatMessage) MessageID() ID { return IDUpdateStat }

func parseUpdateStat(r *bindata.Reader) (*UpdateStatMessage, error) {
	stat, err := r.U8()
	if err != nil {
		return nil, err
	}
	value, err := r.I32()
	if err != nil {
		return nil, err
	}
	return &UpdateStatMessage{Stat: stat, Value: value}, nil
}

func writeUpdateStat(w *bindata.Writer, m *UpdateStatMessage) {
	w.U8(m.Stat)
	w.I32(m.Value)
}

// VersionMessage announces the protocol version the server will use; the
// demo's own Protocol state is updated from ServerInfo, not this message.
type VersionMessage struct {
	Version int32
}

func (*VersionMessage) MessageID() ID { return IDVersion }

func parseVersion(r *bindata.Reader) (*VersionMessage, error) {
	v, err := r.I32()
	if err != nil {
		return nil, err
	}
	return &VersionMessage{Version: v}, nil
}

func writeVersion(w *bindata.Writer, m *VersionMessage) {
	w.I32(m.Version)
}

// SetViewMessage names the entity the recording client's camera follows.
// §3 invariant: exactly one per demo, or several with identical Viewentity.
type SetViewMessage struct {
	Viewentity int16
}

func (*SetViewMessage) MessageID() ID { return IDSetView }

func parseSetView(r *bindata.Reader) (*SetViewMessage, error) {
	v, err := r.I16()
	if err != nil {
		return nil, err
	}
	return &SetViewMessage{Viewentity: v}, nil
}

func writeSetView(w *bindata.Writer, m *SetViewMessage) {
	w.I16(m.Viewentity)
}

// TimeMessage carries the server's current game time. §3 invariant: at most
// one per block.
type TimeMessage struct {
	Time float32
}

func (*TimeMessage) MessageID() ID { return IDTime }

func parseTime(r *bindata.Reader) (*TimeMessage, error) {
	t, err := r.F32()
	if err != nil {
		return nil, err
	}
	return &TimeMessage{Time: t}, nil
}

func writeTime(w *bindata.Writer, m *TimeMessage) {
	w.F32(m.Time)
}

// PrintMessage is a console text line, e.g. pickup flavor text.
type PrintMessage struct {
	Text []byte
}

func (*PrintMessage) MessageID() ID { return IDPrint }

func parsePrint(r *bindata.Reader) (*PrintMessage, error) {
	s, err := r.CString()
	if err != nil {
		return nil, err
	}
	return &PrintMessage{Text: append([]byte(nil), s...)}, nil
}

func writePrint(w *bindata.Writer, m *PrintMessage) {
	w.CString(m.Text)
}

// StuffTextMessage injects a console command string into the client, e.g.
// the "bf\n" pickup flash or a v_cshift fade command.
type StuffTextMessage struct {
	Text []byte
}

func (*StuffTextMessage) MessageID() ID { return IDStuffText }

func parseStuffText(r *bindata.Reader) (*StuffTextMessage, error) {
	s, err := r.CString()
	if err != nil {
		return nil, err
	}
	return &StuffTextMessage{Text: append([]byte(nil), s...)}, nil
}

func writeStuffText(w *bindata.Writer, m *StuffTextMessage) {
	w.CString(m.Text)
}

// SetAngleMessage forces the client's view angles, e.g. on teleport
// (Glossary: "fixangle").
type SetAngleMessage struct {
	Angles [3]float32
}

func (*SetAngleMessage) MessageID() ID { return IDSetAngle }

func parseSetAngle(r *bindata.Reader, state *protocol.State) (*SetAngleMessage, error) {
	var angles [3]float32
	for i := range angles {
		a, err := protocol.ReadAngle(r, state.Flags)
		if err != nil {
			return nil, err
		}
		angles[i] = a
	}
	return &SetAngleMessage{Angles: angles}, nil
}

func writeSetAngle(w *bindata.Writer, m *SetAngleMessage, state *protocol.State) {
	for _, a := range m.Angles {
		protocol.WriteAngle(w, state.Flags, a)
	}
}

// LightstyleMessage sets an animated light style string.
type LightstyleMessage struct {
	Style uint8
	Map   []byte
}

func (*LightstyleMessage) MessageID() ID { return IDLightStyle }

func parseLightstyle(r *bindata.Reader) (*LightstyleMessage, error) {
	style, err := r.U8()
	if err != nil {
		return nil, err
	}
	m, err := r.CString()
	if err != nil {
		return nil, err
	}
	return &LightstyleMessage{Style: style, Map: append([]byte(nil), m...)}, nil
}

func writeLightstyle(w *bindata.Writer, m *LightstyleMessage) {
	w.U8(m.Style)
	w.CString(m.Map)
}

// UpdateNameMessage renames a player slot.
type UpdateNameMessage struct {
	PlayerID uint8
	Name     []byte
}

func (*UpdateNameMessage) MessageID() ID { return IDUpdateName }

func parseUpdateName(r *bindata.Reader) (*UpdateNameMessage, error) {
	id, err := r.U8()
	if err != nil {
		return nil, err
	}
	name, err := r.CString()
	if err != nil {
		return nil, err
	}
	return &UpdateNameMessage{PlayerID: id, Name: append([]byte(nil), name...)}, nil
}

func writeUpdateName(w *bindata.Writer, m *UpdateNameMessage) {
	w.U8(m.PlayerID)
	w.CString(m.Name)
}

// UpdateFragsMessage sets a player slot's frag count.
type UpdateFragsMessage struct {
	PlayerID uint8
	Frags    int16
}

func (*UpdateFragsMessage) MessageID() ID { return IDUpdateFrags }

func parseUpdateFrags(r *bindata.Reader) (*UpdateFragsMessage, error) {
	id, err := r.U8()
	if err != nil {
		return nil, err
	}
	frags, err := r.I16()
	if err != nil {
		return nil, err
	}
	return &UpdateFragsMessage{PlayerID: id, Frags: frags}, nil
}

func writeUpdateFrags(w *bindata.Writer, m *UpdateFragsMessage) {
	w.U8(m.PlayerID)
	w.I16(m.Frags)
}

// StopSoundMessage silences a currently-playing sound on an entity/channel.
type StopSoundMessage struct {
	Entity  uint16
	Channel uint8
}

func (*StopSoundMessage) MessageID() ID { return IDStopSound }

func parseStopSound(r *bindata.Reader) (*StopSoundMessage, error) {
	packed, err := r.U16()
	if err != nil {
		return nil, err
	}
	return &StopSoundMessage{Entity: packed >> 3, Channel: uint8(packed & 0x7)}, nil
}

func writeStopSound(w *bindata.Writer, m *StopSoundMessage) {
	w.U16(m.Entity<<3 | uint16(m.Channel&0x7))
}

// UpdateColorsMessage sets a player slot's top/bottom colormap colors.
type UpdateColorsMessage struct {
	PlayerID uint8
	Colors   uint8
}

func (*UpdateColorsMessage) MessageID() ID { return IDUpdateColors }

func parseUpdateColors(r *bindata.Reader) (*UpdateColorsMessage, error) {
	id, err := r.U8()
	if err != nil {
		return nil, err
	}
	colors, err := r.U8()
	if err != nil {
		return nil, err
	}
	return &UpdateColorsMessage{PlayerID: id, Colors: colors}, nil
}

func writeUpdateColors(w *bindata.Writer, m *UpdateColorsMessage) {
	w.U8(m.PlayerID)
	w.U8(m.Colors)
}

// ParticleMessage spawns a one-shot particle burst.
type ParticleMessage struct {
	Origin [3]float32
	Dir    [3]int8
	Count  uint8
	Color  uint8
}

func (*ParticleMessage) MessageID() ID { return IDParticle }

func parseParticle(r *bindata.Reader, state *protocol.State) (*ParticleMessage, error) {
	m := &ParticleMessage{}
	for i := range m.Origin {
		v, err := protocol.ReadCoord(r, state.Flags)
		if err != nil {
			return nil, err
		}
		m.Origin[i] = v
	}
	for i := range m.Dir {
		v, err := r.I8()
		if err != nil {
			return nil, err
		}
		m.Dir[i] = v
	}
	count, err := r.U8()
	if err != nil {
		return nil, err
	}
	color, err := r.U8()
	if err != nil {
		return nil, err
	}
	m.Count, m.Color = count, color
	return m, nil
}

func writeParticle(w *bindata.Writer, m *ParticleMessage, state *protocol.State) {
	for _, v := range m.Origin {
		protocol.WriteCoord(w, state.Flags, v)
	}
	for _, v := range m.Dir {
		w.I8(v)
	}
	w.U8(m.Count)
	w.U8(m.Color)
}

// DamageMessage reports armor/health loss and the damage source's position,
// consumed by stats reconstruction's damage-application step (§4.8.2).
type DamageMessage struct {
	Armor  uint8
	Blood  uint8
	From   [3]float32
}

func (*DamageMessage) MessageID() ID { return IDDamage }

func parseDamage(r *bindata.Reader, state *protocol.State) (*DamageMessage, error) {
	armor, err := r.U8()
	if err != nil {
		return nil, err
	}
	blood, err := r.U8()
	if err != nil {
		return nil, err
	}
	m := &DamageMessage{Armor: armor, Blood: blood}
	for i := range m.From {
		v, err := protocol.ReadCoord(r, state.Flags)
		if err != nil {
			return nil, err
		}
		m.From[i] = v
	}
	return m, nil
}

func writeDamage(w *bindata.Writer, m *DamageMessage, state *protocol.State) {
	w.U8(m.Armor)
	w.U8(m.Blood)
	for _, v := range m.From {
		protocol.WriteCoord(w, state.Flags, v)
	}
}

// SetPauseMessage toggles the server's paused state.
type SetPauseMessage struct {
	Paused bool
}

func (*SetPauseMessage) MessageID() ID { return IDSetPause }

func parseSetPause(r *bindata.Reader) (*SetPauseMessage, error) {
	v, err := r.U8()
	if err != nil {
		return nil, err
	}
	return &SetPauseMessage{Paused: v != 0}, nil
}

func writeSetPause(w *bindata.Writer, m *SetPauseMessage) {
	if m.Paused {
		w.U8(1)
	} else {
		w.U8(0)
	}
}

// SignOnNumMessage advances the client's sign-on handshake stage.
type SignOnNumMessage struct {
	Num uint8
}

func (*SignOnNumMessage) MessageID() ID { return IDSignOnNum }

func parseSignOnNum(r *bindata.Reader) (*SignOnNumMessage, error) {
	v, err := r.U8()
	if err != nil {
		return nil, err
	}
	return &SignOnNumMessage{Num: v}, nil
}

func writeSignOnNum(w *bindata.Writer, m *SignOnNumMessage) {
	w.U8(m.Num)
}

// CenterPrintMessage shows centered HUD text, e.g. the grenade counter
// (§4.10's sibling cleanup transform filters these by prefix).
type CenterPrintMessage struct {
	Text []byte
}

func (*CenterPrintMessage) MessageID() ID { return IDCenterPrint }

func parseCenterPrint(r *bindata.Reader) (*CenterPrintMessage, error) {
	s, err := r.CString()
	if err != nil {
		return nil, err
	}
	return &CenterPrintMessage{Text: append([]byte(nil), s...)}, nil
}

func writeCenterPrint(w *bindata.Writer, m *CenterPrintMessage) {
	w.CString(m.Text)
}

// KilledMonsterMessage increments the monster-kill counter.
type KilledMonsterMessage struct{}

func (*KilledMonsterMessage) MessageID() ID { return IDKilledMonster }

// FoundSecretMessage increments the secrets-found counter.
type FoundSecretMessage struct{}

func (*FoundSecretMessage) MessageID() ID { return IDFoundSecret }

// SpawnStaticSoundMessage starts an ambient/looping sound at a fixed point.
type SpawnStaticSoundMessage struct {
	Origin      [3]float32
	SoundNum    uint8
	Volume      uint8
	Attenuation uint8
}

func (*SpawnStaticSoundMessage) MessageID() ID { return IDSpawnStaticSound }

func parseSpawnStaticSound(r *bindata.Reader, state *protocol.State) (*SpawnStaticSoundMessage, error) {
	m := &SpawnStaticSoundMessage{}
	for i := range m.Origin {
		v, err := protocol.ReadCoord(r, state.Flags)
		if err != nil {
			return nil, err
		}
		m.Origin[i] = v
	}
	var err error
	if m.SoundNum, err = r.U8(); err != nil {
		return nil, err
	}
	if m.Volume, err = r.U8(); err != nil {
		return nil, err
	}
	if m.Attenuation, err = r.U8(); err != nil {
		return nil, err
	}
	return m, nil
}

func writeSpawnStaticSound(w *bindata.Writer, m *SpawnStaticSoundMessage, state *protocol.State) {
	for _, v := range m.Origin {
		protocol.WriteCoord(w, state.Flags, v)
	}
	w.U8(m.SoundNum)
	w.U8(m.Volume)
	w.U8(m.Attenuation)
}

// IntermissionMessage marks the start of the end-of-map cinematic state.
type IntermissionMessage struct{}

func (*IntermissionMessage) MessageID() ID { return IDIntermission }

// FinaleMessage shows the end-of-episode text crawl.
type FinaleMessage struct {
	Text []byte
}

func (*FinaleMessage) MessageID() ID { return IDFinale }

func parseFinale(r *bindata.Reader) (*FinaleMessage, error) {
	s, err := r.CString()
	if err != nil {
		return nil, err
	}
	return &FinaleMessage{Text: append([]byte(nil), s...)}, nil
}

func writeFinale(w *bindata.Writer, m *FinaleMessage) {
	w.CString(m.Text)
}

// CdTrackMessage tells the client which CD audio track to loop.
type CdTrackMessage struct {
	Track uint8
	Loop  uint8
}

func (*CdTrackMessage) MessageID() ID { return IDCdTrack }

func parseCdTrack(r *bindata.Reader) (*CdTrackMessage, error) {
	track, err := r.U8()
	if err != nil {
		return nil, err
	}
	loop, err := r.U8()
	if err != nil {
		return nil, err
	}
	return &CdTrackMessage{Track: track, Loop: loop}, nil
}

func writeCdTrack(w *bindata.Writer, m *CdTrackMessage) {
	w.U8(m.Track)
	w.U8(m.Loop)
}

// SellscreenMessage shows the shareware sell screen.
type SellscreenMessage struct{}

func (*SellscreenMessage) MessageID() ID { return IDSellscreen }

// CutsceneMessage shows cutscene text.
type CutsceneMessage struct {
	Text []byte
}

func (*CutsceneMessage) MessageID() ID { return IDCutscene }

func parseCutscene(r *bindata.Reader) (*CutsceneMessage, error) {
	s, err := r.CString()
	if err != nil {
		return nil, err
	}
	return &CutsceneMessage{Text: append([]byte(nil), s...)}, nil
}

func writeCutscene(w *bindata.Writer, m *CutsceneMessage) {
	w.CString(m.Text)
}
