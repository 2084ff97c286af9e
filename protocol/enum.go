// Package protocol describes the demo wire protocol: the protocol version
// enum, the protocol-flags bitset, and the variable-width coordinate and
// angle codecs they select between.
package protocol

import "fmt"

// Enum is the base / common part of the small enum types used across the
// protocol and message packages (protocol versions, collect sounds,
// collectable kinds, ...).
type Enum struct {
	// Name of the entity.
	Name string
}

// String returns the name of the enum value.
func (e Enum) String() string {
	return e.Name
}

// UnknownEnum constructs an Enum for an unrecognized ID, preserving it in the
// name so it still round-trips through logs and JSON.
func UnknownEnum(id any) Enum {
	return Enum{fmt.Sprintf("Unknown 0x%x", id)}
}
