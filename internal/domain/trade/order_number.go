package trade

import (
	"crypto/rand"
	"math/big"
	"strconv"
	"strings"
	"time"
)

const base36 = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// OrderNumberGenerator produces human readable order numbers
type OrderNumberGenerator interface {
	Next() string
}

// TimestampOrderNumberGenerator builds "ORD-<base36 unix millis>-<4 random base36>".
// Numbers are only probabilistically unique; the orders table enforces uniqueness.
type TimestampOrderNumberGenerator struct {
	now func() time.Time
}

// NewTimestampOrderNumberGenerator creates a generator using the wall clock
func NewTimestampOrderNumberGenerator() *TimestampOrderNumberGenerator {
	return &TimestampOrderNumberGenerator{now: time.Now}
}

// Next returns a new order number
func (g *TimestampOrderNumberGenerator) Next() string {
	ts := strings.ToUpper(strconv.FormatInt(g.now().UnixMilli(), 36))
	return "ORD-" + ts + "-" + randomBase36(4)
}

func randomBase36(n int) string {
	var b strings.Builder
	max := big.NewInt(int64(len(base36)))
	for i := 0; i < n; i++ {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			b.WriteByte(base36[time.Now().UnixNano()%36])
			continue
		}
		b.WriteByte(base36[idx.Int64()])
	}
	return b.String()
}
