package ident

import (
	"encoding/binary"
	"fmt"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// Id is the derived identity of a node.
type Id uint64

// Root is the reserved identity of the tree root.
const Root Id = 0

// Domain separators so that the same two inputs mixed for different
// purposes never produce the same Id.
const (
	tagSibling byte = 's'
	tagScope   byte = 'c'
	tagTwin    byte = 't'
	tagChild   byte = 'h'
)

// String returns the id as fixed-width hex.
func (id Id) String() string {
	return fmt.Sprintf("%016x", uint64(id))
}

// MarshalText encodes the id as hex so that JSON consumers keep all 64 bits.
func (id Id) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText parses the hex form produced by MarshalText.
func (id *Id) UnmarshalText(b []byte) error {
	v, err := ParseId(string(b))
	if err != nil {
		return err
	}
	*id = v
	return nil
}

// ParseId parses a hex id as printed by String.
func ParseId(s string) (Id, error) {
	v, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return Root, fmt.Errorf("ident: parse id %q: %w", s, err)
	}
	return Id(v), nil
}

// Scoped mixes a subtree scope into id. The root scope (0) leaves id as is.
func (id Id) Scoped(scope Id) Id {
	if scope == Root {
		return id
	}
	return mix(tagScope, uint64(scope), uint64(id))
}

// TwinOf derives the id of the index-th duplicate of id declared in one frame.
func TwinOf(id Id, index uint32) Id {
	return mix(tagTwin, uint64(id), uint64(index))
}

// MixChild folds a child id into a running children hash.
func MixChild(acc uint64, child Id) uint64 {
	return uint64(mix(tagChild, acc, uint64(child)))
}

// ChildrenSeed is the initial value of a children hash; a node without
// children keeps this value.
const ChildrenSeed uint64 = 0x9e3779b97f4a7c15

func mix(tag byte, a, b uint64) Id {
	var buf [17]byte
	buf[0] = tag
	binary.LittleEndian.PutUint64(buf[1:9], a)
	binary.LittleEndian.PutUint64(buf[9:], b)
	out := Id(xxhash.Sum64(buf[:]))
	if out == Root {
		// Root is reserved.
		out = 1
	}
	return out
}
