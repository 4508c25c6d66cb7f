package domain

import (
	"fmt"
	"math/rand"
	"time"
)

const orderNumberAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// NewOrderNumber returns ORD-<unix millis>-<6 uppercase base36 chars>.
// Not globally unique; the unique index on orders.order_number catches collisions.
func NewOrderNumber(now time.Time) string {
	suffix := make([]byte, 6)
	for i := range suffix {
		suffix[i] = orderNumberAlphabet[rand.Intn(len(orderNumberAlphabet))]
	}
	return fmt.Sprintf("ORD-%d-%s", now.UnixMilli(), suffix)
}
