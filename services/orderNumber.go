package services

import (
	"math/rand/v2"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	orderNumberPrefix = "ORD-"
	suffixLength      = 5
	base36Digits      = "0123456789abcdefghijklmnopqrstuvwxyz"
)

// OrderNumberGenerator produces ORD-<base36 millis>-<5 random base36 chars>.
// The timestamp part never repeats within a process: a burst inside one
// millisecond borrows the following milliseconds.
type OrderNumberGenerator struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

func NewOrderNumberGenerator() *OrderNumberGenerator {
	return &OrderNumberGenerator{now: time.Now}
}

func (g *OrderNumberGenerator) Next() string {
	g.mu.Lock()
	ts := g.now().UnixMilli()
	if ts <= g.last {
		ts = g.last + 1
	}
	g.last = ts
	g.mu.Unlock()

	var suffix [suffixLength]byte
	for i := range suffix {
		suffix[i] = base36Digits[rand.IntN(len(base36Digits))]
	}
	return strings.ToUpper(orderNumberPrefix + strconv.FormatInt(ts, 36) + "-" + string(suffix[:]))
}
