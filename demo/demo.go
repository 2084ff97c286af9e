// Package demo models a parsed .dem/.qwd file: a short CD-track header
// followed by an ordered sequence of Blocks, plus the derived queries used
// by cleanup and stats reconstruction (§4.4, §4.5 of SPEC_FULL.md).
package demo

import (
	"errors"
	"fmt"

	"github.com/qdemtools/qdem/bindata"
	"github.com/qdemtools/qdem/protocol"
	"github.com/qdemtools/qdem/qmsg"
)

// maxCdTrackLen is the header's hard limit, newline included.
const maxCdTrackLen = 12

// ErrCdTrackTooLong is returned when the leading CD-track line exceeds
// maxCdTrackLen bytes without finding its terminating newline.
var ErrCdTrackTooLong = errors.New("demo: cd track header exceeds 12 bytes")

// Block is one server-frame record: the view angles the local player had at
// that frame plus the messages the server sent for it. Every Block must
// serialize to at least one message; Write materializes an empty one as
// a single NopMessage (§3 invariant).
type Block struct {
	ViewAngles [3]float32 // pitch, yaw, roll, degrees
	Messages   []qmsg.Message
}

// Demo is a complete parsed recording: the header plus its block list.
// Mutated in place by the cleanup and stats-reconstruction transforms.
type Demo struct {
	CdTrack string
	Blocks  []*Block
}

// Parse reads a whole demo file. state is the protocol state to start from
// (normally protocol.Default()); it is mutated in place as ServerInfo
// messages are encountered, and its final value is the caller's if they want
// to chain a second parse (e.g. a co-op demo sharing one state machine).
func Parse(data []byte, state *protocol.State) (*Demo, error) {
	r := bindata.NewReader(data)

	track, err := readCdTrack(r)
	if err != nil {
		return nil, err
	}

	d := &Demo{CdTrack: track}
	baselines := qmsg.Baselines{}

	for r.Len() > 0 {
		block, err := parseBlock(r, state, baselines)
		if err != nil {
			return nil, fmt.Errorf("demo: block %d: %w", len(d.Blocks), err)
		}
		d.Blocks = append(d.Blocks, block)
	}

	return d, nil
}

func readCdTrack(r *bindata.Reader) (string, error) {
	var line []byte
	for i := 0; i < maxCdTrackLen; i++ {
		b, err := r.U8()
		if err != nil {
			return "", err
		}
		if b == '\n' {
			return string(line), nil
		}
		line = append(line, b)
	}
	return "", ErrCdTrackTooLong
}

func parseBlock(r *bindata.Reader, state *protocol.State, baselines qmsg.Baselines) (*Block, error) {
	blockLen, err := r.I32()
	if err != nil {
		return nil, err
	}

	pitch, err := r.F32()
	if err != nil {
		return nil, err
	}
	yaw, err := r.F32()
	if err != nil {
		return nil, err
	}
	roll, err := r.F32()
	if err != nil {
		return nil, err
	}

	raw, err := r.Bytes(int(blockLen))
	if err != nil {
		return nil, err
	}
	br := bindata.NewReader(raw)

	block := &Block{ViewAngles: [3]float32{pitch, yaw, roll}}
	for br.Len() > 0 {
		m, err := qmsg.ParseMessage(br, state, baselines)
		if err != nil {
			return nil, err
		}
		block.Messages = append(block.Messages, m)
	}

	return block, nil
}

// Write serializes a demo back to bytes. state is the protocol state to
// start writing under; it is mutated as ServerInfo messages are encountered,
// mirroring Parse.
func Write(d *Demo, state *protocol.State) []byte {
	w := bindata.NewWriter()
	w.RawBytes([]byte(d.CdTrack))
	w.U8('\n')

	for _, block := range d.Blocks {
		bw := bindata.NewWriter()
		msgs := block.Messages
		if len(msgs) == 0 {
			msgs = []qmsg.Message{&qmsg.NopMessage{}}
		}
		for _, m := range msgs {
			qmsg.WriteMessage(bw, m, state)
		}

		w.I32(int32(bw.Len()))
		w.F32(block.ViewAngles[0])
		w.F32(block.ViewAngles[1])
		w.F32(block.ViewAngles[2])
		w.RawBytes(bw.Bytes())
	}

	return w.Bytes()
}
