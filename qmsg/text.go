package qmsg

import (
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// DecodeText renders a PrintMessage/CenterPrintMessage/StuffText payload for
// display, treating it as Latin-1 (ISO-8859-1) when it isn't valid UTF-8 -
// some non-English clients' chat and player-name text arrives this way. The
// wire format itself is untouched by this: the raw bytes are still what gets
// written back out, this is a display-only convenience.
func DecodeText(raw []byte) (string, error) {
	if utf8.Valid(raw) {
		return string(raw), nil
	}
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(raw)
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}
