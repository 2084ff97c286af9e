// Package qmsg implements the ~34 server-to-client message variants plus the
// EntityUpdate family: binary parse/write over bindata, selected by a
// one-byte tag per §4.3 of SPEC_FULL.md.
package qmsg

import (
	"fmt"

	"github.com/qdemtools/qdem/bindata"
	"github.com/qdemtools/qdem/protocol"
)

// ID is the one-byte wire tag of a container message. Values with the high
// bit set are never container IDs; they dispatch to EntityUpdate instead
// (see ParseMessage).
type ID byte

const (
	IDBad              ID = 0
	IDNop              ID = 1
	IDDisconnect       ID = 2
	IDUpdateStat       ID = 3
	IDVersion          ID = 4
	IDSetView          ID = 5
	IDSound            ID = 6
	IDTime             ID = 7
	IDPrint            ID = 8
	IDStuffText        ID = 9
	IDSetAngle         ID = 10
	IDServerInfo       ID = 11
	IDLightStyle       ID = 12
	IDUpdateName       ID = 13
	IDUpdateFrags      ID = 14
	IDClientData       ID = 15
	IDStopSound        ID = 16
	IDUpdateColors     ID = 17
	IDParticle         ID = 18
	IDDamage           ID = 19
	IDSpawnStatic      ID = 20
	IDSpawnBaseline    ID = 22 // 21 is unused
	IDTempEntity       ID = 23
	IDSetPause         ID = 24
	IDSignOnNum        ID = 25
	IDCenterPrint      ID = 26
	IDKilledMonster    ID = 27
	IDFoundSecret      ID = 28
	IDSpawnStaticSound ID = 29
	IDIntermission     ID = 30
	IDFinale           ID = 31
	IDCdTrack          ID = 32
	IDSellscreen       ID = 33
	IDCutscene         ID = 34
)

// Message is the tagged-union interface every container and EntityUpdate
// message implements.
type Message interface {
	// MessageID returns the one-byte wire tag (for EntityUpdate, the SIGNAL
	// bit alone; the low 7 bits of the real first flags byte are carried in
	// the message itself).
	MessageID() ID
}

// Baselines is the per-entity spawn-baseline table consulted by
// EntityUpdate parse/replay to resolve fields absent from a wire update
// (§4.3, §9 "Back-references in EntityUpdate").
type Baselines map[int32]*EntityState

// Get returns the baseline for an entity, or a zeroed one if never spawned.
func (b Baselines) Get(entityNum int32) *EntityState {
	if s, ok := b[entityNum]; ok {
		return s
	}
	return &EntityState{}
}

// ParseMessage reads one message from r under the given protocol state,
// dispatching on the leading tag byte per §4.3. baselines supplies
// EntityUpdate's inherited defaults and is mutated by SpawnBaseline as it is
// encountered.
func ParseMessage(r *bindata.Reader, state *protocol.State, baselines Baselines) (Message, error) {
	tag, err := r.U8()
	if err != nil {
		return nil, err
	}

	if tag&byte(UFSignal) != 0 {
		return parseEntityUpdate(r, UpdateFlags(tag&0x7f), state, baselines)
	}

	switch ID(tag) {
	case IDBad:
		return &BadMessage{}, nil
	case IDNop:
		return &NopMessage{}, nil
	case IDDisconnect:
		return &DisconnectMessage{}, nil
	case IDUpdateStat:
		return parseUpdateStat(r)
	case IDVersion:
		return parseVersion(r)
	case IDSetView:
		return parseSetView(r)
	case IDSound:
		return parseSound(r, state)
	case IDTime:
		return parseTime(r)
	case IDPrint:
		return parsePrint(r)
	case IDStuffText:
		return parseStuffText(r)
	case IDSetAngle:
		return parseSetAngle(r, state)
	case IDServerInfo:
		return parseServerInfo(r, state)
	case IDLightStyle:
		return parseLightstyle(r)
	case IDUpdateName:
		return parseUpdateName(r)
	case IDUpdateFrags:
		return parseUpdateFrags(r)
	case IDClientData:
		return parseClientData(r)
	case IDStopSound:
		return parseStopSound(r)
	case IDUpdateColors:
		return parseUpdateColors(r)
	case IDParticle:
		return parseParticle(r, state)
	case IDDamage:
		return parseDamage(r, state)
	case IDSpawnStatic:
		return parseSpawnStatic(r, state)
	case IDSpawnBaseline:
		return parseSpawnBaseline(r, state, baselines)
	case IDTempEntity:
		return parseTempEntity(r, state)
	case IDSetPause:
		return parseSetPause(r)
	case IDSignOnNum:
		return parseSignOnNum(r)
	case IDCenterPrint:
		return parseCenterPrint(r)
	case IDKilledMonster:
		return &KilledMonsterMessage{}, nil
	case IDFoundSecret:
		return &FoundSecretMessage{}, nil
	case IDSpawnStaticSound:
		return parseSpawnStaticSound(r, state)
	case IDIntermission:
		return &IntermissionMessage{}, nil
	case IDFinale:
		return parseFinale(r)
	case IDCdTrack:
		return parseCdTrack(r)
	case IDSellscreen:
		return &SellscreenMessage{}, nil
	case IDCutscene:
		return parseCutscene(r)
	default:
		return nil, fmt.Errorf("qmsg: unknown message id 0x%02x", tag)
	}
}

// WriteMessage serializes m under the given protocol state, mirroring
// ParseMessage's dispatch.
func WriteMessage(w *bindata.Writer, m Message, state *protocol.State) {
	if eu, ok := m.(*EntityUpdateMessage); ok {
		writeEntityUpdate(w, eu, state)
		return
	}

	w.U8(byte(m.MessageID()))

	switch msg := m.(type) {
	case *BadMessage, *NopMessage, *DisconnectMessage, *KilledMonsterMessage,
		*FoundSecretMessage, *IntermissionMessage, *SellscreenMessage:
		// no payload

	case *UpdateStatMessage:
		writeUpdateStat(w, msg)
	case *VersionMessage:
		writeVersion(w, msg)
	case *SetViewMessage:
		writeSetView(w, msg)
	case *SoundMessage:
		writeSound(w, msg, state)
	case *TimeMessage:
		writeTime(w, msg)
	case *PrintMessage:
		writePrint(w, msg)
	case *StuffTextMessage:
		writeStuffText(w, msg)
	case *SetAngleMessage:
		writeSetAngle(w, msg, state)
	case *ServerInfoMessage:
		writeServerInfo(w, msg, state)
	case *LightstyleMessage:
		writeLightstyle(w, msg)
	case *UpdateNameMessage:
		writeUpdateName(w, msg)
	case *UpdateFragsMessage:
		writeUpdateFrags(w, msg)
	case *ClientDataMessage:
		writeClientData(w, msg)
	case *StopSoundMessage:
		writeStopSound(w, msg)
	case *UpdateColorsMessage:
		writeUpdateColors(w, msg)
	case *ParticleMessage:
		writeParticle(w, msg, state)
	case *DamageMessage:
		writeDamage(w, msg, state)
	case *SpawnStaticMessage:
		writeSpawnStatic(w, msg, state)
	case *SpawnBaselineMessage:
		writeSpawnBaseline(w, msg, state)
	case *TempEntityMessage:
		writeTempEntity(w, msg, state)
	case *SetPauseMessage:
		writeSetPause(w, msg)
	case *SignOnNumMessage:
		writeSignOnNum(w, msg)
	case *CenterPrintMessage:
		writeCenterPrint(w, msg)
	case *SpawnStaticSoundMessage:
		writeSpawnStaticSound(w, msg, state)
	case *FinaleMessage:
		writeFinale(w, msg)
	case *CdTrackMessage:
		writeCdTrack(w, msg)
	case *CutsceneMessage:
		writeCutscene(w, msg)
	default:
		panic(fmt.Sprintf("qmsg: unwritable message type %T", msg))
	}
}
