package usecase

import (
	"math/rand/v2"
	"strconv"
	"strings"
	"sync/atomic"
	"time"
)

const (
	orderNumberAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	orderSuffixLen      = 5
	// orderSuffixSpace is 36^5.
	orderSuffixSpace = 60466176
	// orderSuffixStride is coprime with orderSuffixSpace, so consecutive
	// sequence values map to distinct, scattered suffixes.
	orderSuffixStride = 15485863
)

var orderSequence atomic.Uint64

func init() {
	orderSequence.Store(rand.Uint64N(orderSuffixSpace))
}

// NewOrderNumber formats ORD-<base36 unix millis>-<5 chars>, upper case.
// Suffixes cycle through all of 36^5 values before repeating within a process.
func NewOrderNumber(now time.Time) string {
	n := (orderSequence.Add(1) % orderSuffixSpace) * orderSuffixStride % orderSuffixSpace

	var suffix [orderSuffixLen]byte
	for i := orderSuffixLen - 1; i >= 0; i-- {
		suffix[i] = orderNumberAlphabet[n%36]
		n /= 36
	}
	return "ORD-" + strings.ToUpper(strconv.FormatInt(now.UnixMilli(), 36)) + "-" + string(suffix[:])
}
