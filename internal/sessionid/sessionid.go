// Package sessionid generates and validates session identifiers: UUIDv7
// values encoded as 26 characters of Crockford base32, so IDs sort by
// creation time.
package sessionid

import (
	"crypto/rand"
	"fmt"
	"strings"

	"github.com/coder/quartz"
)

const (
	alphabet = "0123456789abcdefghjkmnpqrstvwxyz"

	// Length is the number of characters in an encoded ID.
	Length = 26
)

// RandSource supplies random bytes for deterministic tests.
type RandSource interface {
	IntN(n int) int
}

// Generator creates session IDs.
type Generator struct {
	rand  RandSource
	clock quartz.Clock
}

// NewGenerator returns a Generator. A nil RandSource uses crypto/rand and a
// nil clock uses the real clock.
func NewGenerator(rand RandSource, clock quartz.Clock) *Generator {
	if clock == nil {
		clock = quartz.NewReal()
	}
	return &Generator{rand: rand, clock: clock}
}

// New returns a fresh ID from crypto/rand and the real clock.
func New() string {
	return NewGenerator(nil, nil).Generate()
}

// Generate creates a new ID.
func (g *Generator) Generate() string {
	return encode(g.uuidV7())
}

func (g *Generator) uuidV7() [16]byte {
	var id [16]byte

	// 48-bit millisecond timestamp, then random bits with version and variant set
	ms := g.clock.Now().UnixMilli()
	for i := range 6 {
		id[i] = byte(ms >> (40 - 8*i))
	}

	if g.rand != nil {
		for i := 6; i < 16; i++ {
			id[i] = byte(g.rand.IntN(256))
		}
	} else if _, err := rand.Read(id[6:]); err != nil {
		panic("sessionid: reading random bytes: " + err.Error())
	}

	id[6] = (id[6] & 0x0f) | 0x70
	id[8] = (id[8] & 0x3f) | 0x80
	return id
}

// encode writes the 128 bits as 26 five-bit groups, the last group padded
// with two zero bits.
func encode(data [16]byte) string {
	var b strings.Builder
	b.Grow(Length)
	for i := range Length {
		bit := i * 5
		idx, off := bit/8, bit%8

		var v byte
		if off <= 3 {
			v = (data[idx] >> (3 - off)) & 0x1f
		} else {
			v = (data[idx] << (off - 3)) & 0x1f
			if idx+1 < len(data) {
				v |= data[idx+1] >> (11 - off)
			}
		}
		b.WriteByte(alphabet[v])
	}
	return b.String()
}

// Validate checks that id has the shape of a generated ID.
func Validate(id string) error {
	if len(id) != Length {
		return fmt.Errorf("session ID must be exactly %d characters, got %d", Length, len(id))
	}
	if id[0] > '7' {
		return fmt.Errorf("session ID first character must be 0-7, got %c", id[0])
	}
	for i, c := range id {
		if !strings.ContainsRune(alphabet, c) {
			return fmt.Errorf("invalid character %c at position %d", c, i)
		}
	}
	return nil
}
