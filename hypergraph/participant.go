// Package hypergraph implements the core payment-channel data model shared
// by both network variants: participants, multi-party channels, the fee
// model, feasibility checking, and atomic settlement. It has no notion of
// a network graph or route search — that lives one layer up, in package
// routing — mirroring the way the teacher codebase kept ledger state
// (channeldb) separate from path-finding (routing).
package hypergraph

import (
	"github.com/tv42/zbase32"
)

// ParticipantID is an opaque arena handle for a participant. Handles are
// assigned by whoever constructs the participant (typically package
// netgen, in deterministic insertion order) and are never reused.
//
// Adjacency (which channels a participant belongs to) is deliberately not
// stored on Participant itself: a participant may be registered in more
// than one network (the classic network and its derived hyper network),
// and those memberships are independent. Keeping adjacency in the owning
// network's arena, keyed by ParticipantID, avoids the cyclic
// participant-knows-channel / channel-knows-participant ownership that
// reference-counted or GC'd implementations resolve with shared pointers.
type ParticipantID uint64

// Participant is an opaque identity. It carries no intrinsic attributes;
// all state (balances, memberships, wealth) is reachable only through the
// network(s) it is registered in.
type Participant struct {
	ID ParticipantID
}

// DisplayID renders a short, human-readable label for p, used in logs and
// error messages where a raw integer handle is less useful than a stable
// short token. zbase32 is the same human-oriented base32 variant the
// teacher uses for encoding node signatures and aliases.
func (p Participant) DisplayID() string {
	var buf [8]byte
	id := uint64(p.ID)
	for i := 0; i < 8; i++ {
		buf[i] = byte(id >> (8 * uint(7-i)))
	}
	return zbase32.EncodeToString(buf[:])
}
