// Package ordernum mints short, human-readable public order numbers.
package ordernum

import (
	"math/rand"
	"time"

	"github.com/speps/go-hashids/v2"
)

// Alphabet excludes ambiguous characters (0/O, 1/I/L) so numbers can be
// read over the phone.
const alphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

type Generator struct {
	h *hashids.HashID
}

func NewGenerator(salt string) (*Generator, error) {
	data := hashids.NewData()
	data.Salt = salt
	data.MinLength = 8
	data.Alphabet = alphabet

	h, err := hashids.NewWithData(data)
	if err != nil {
		return nil, err
	}
	return &Generator{h: h}, nil
}

// Next returns a fresh order number such as "VF-Q4ZP7KMA". Uniqueness comes
// from the nanosecond timestamp plus a random disambiguator; the database's
// unique constraint on the column is the final arbiter.
func (g *Generator) Next() (string, error) {
	id, err := g.h.EncodeInt64([]int64{time.Now().UnixNano(), int64(rand.Intn(1 << 16))})
	if err != nil {
		return "", err
	}
	return "VF-" + id, nil
}
