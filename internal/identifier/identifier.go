// Package identifier produces payment identifiers. They must be globally
// unique and unguessable: ULIDs with crypto/rand entropy give both, plus a
// sortable creation timestamp for free.
package identifier

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

type Generator struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

func NewGenerator() *Generator {
	return &Generator{entropy: ulid.Monotonic(rand.Reader, 0)}
}

// NewPaymentID returns a fresh 26-char identifier.
func (g *Generator) NewPaymentID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), g.entropy).String()
}
