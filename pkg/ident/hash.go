package ident

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/cespare/xxhash/v2"
)

// Hasher is implemented by values that provide their own sibling hash.
type Hasher interface {
	HashKey() uint64
}

// HashValue hashes a sibling value. Values of different dynamic types hash
// differently even when their textual form matches.
func HashValue(v any) uint64 {
	d := xxhash.New()
	var buf [8]byte
	putU64 := func(tag byte, u uint64) {
		d.Write([]byte{tag})
		binary.LittleEndian.PutUint64(buf[:], u)
		d.Write(buf[:])
	}

	switch x := v.(type) {
	case nil:
		d.Write([]byte{'n'})
	case Hasher:
		putU64('H', x.HashKey())
	case Id:
		putU64('I', uint64(x))
	case Key:
		putU64('K', uint64(x.id))
	case string:
		d.Write([]byte{'S'})
		d.WriteString(x)
	case []byte:
		d.Write([]byte{'B'})
		d.Write(x)
	case bool:
		if x {
			putU64('b', 1)
		} else {
			putU64('b', 0)
		}
	case int:
		putU64('i', uint64(x))
	case int8:
		putU64('i', uint64(x))
	case int16:
		putU64('i', uint64(x))
	case int32:
		putU64('i', uint64(x))
	case int64:
		putU64('i', uint64(x))
	case uint:
		putU64('u', uint64(x))
	case uint8:
		putU64('u', uint64(x))
	case uint16:
		putU64('u', uint64(x))
	case uint32:
		putU64('u', uint64(x))
	case uint64:
		putU64('u', x)
	case uintptr:
		putU64('u', uint64(x))
	case float32:
		putU64('f', math.Float64bits(float64(x)))
	case float64:
		putU64('f', math.Float64bits(x))
	case fmt.Stringer:
		d.Write([]byte{'T'})
		d.WriteString(fmt.Sprintf("%T", v))
		d.WriteString(x.String())
	default:
		d.Write([]byte{'V'})
		d.WriteString(fmt.Sprintf("%T%#v", v, v))
	}
	return d.Sum64()
}
