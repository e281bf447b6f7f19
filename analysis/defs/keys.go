package defs

import (
	"fmt"
	"hash/fnv"

	"github.com/benbjohnson/immutable"
)

// Key is an abstract key: a statically tracked approximation of a runtime
// dictionary key. It is one of ConstString, ConstInt or Unknown.
type Key interface {
	// Literal is true for keys whose runtime value is statically known.
	Literal() bool
	// Hash encodes the key for use in immutable map structures.
	Hash() uint32

	String() string
}

type (
	// ConstString is a statically known string literal key.
	ConstString string
	// ConstInt is a statically known integer literal key.
	ConstInt int64
	// Unknown is any key whose value is not resolved at analysis time,
	// e.g. one derived from a parameter, a call result or a loop variable.
	// It is never provably equal or unequal to any other key.
	Unknown struct{}
)

func (ConstString) Literal() bool { return true }
func (ConstInt) Literal() bool    { return true }
func (Unknown) Literal() bool     { return false }

func (k ConstString) Hash() uint32 {
	h := fnv.New32a()
	h.Write([]byte{0x1})
	h.Write([]byte(k))
	return h.Sum32()
}

func (k ConstInt) Hash() uint32 {
	h := fnv.New32a()
	h.Write([]byte{0x2})
	v := uint64(k)
	h.Write([]byte{
		byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24),
		byte(v >> 32), byte(v >> 40), byte(v >> 48), byte(v >> 56),
	})
	return h.Sum32()
}

func (Unknown) Hash() uint32 {
	return 0x55555555
}

func (k ConstString) String() string {
	return fmt.Sprintf("%q", string(k))
}

func (k ConstInt) String() string {
	return fmt.Sprintf("%d", int64(k))
}

func (Unknown) String() string {
	return "?"
}

// keyHasher makes Key usable as the key type of immutable maps.
// Key equality coincides with Go interface equality: literal keys of the
// same kind are equal exactly when their underlying literals are, and
// keys of different kinds are never equal.
type keyHasher struct{}

func (keyHasher) Hash(k Key) uint32   { return k.Hash() }
func (keyHasher) Equal(a, b Key) bool { return a == b }

// KeyHasher yields a hasher for abstract keys.
func KeyHasher() immutable.Hasher[Key] {
	return keyHasher{}
}
