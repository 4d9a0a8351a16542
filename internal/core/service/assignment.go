package service

import (
	"math/rand/v2"

	"github.com/chaeso/delivery-api/internal/core/domain"
)

// IntN returns a uniform random integer in [0, n). Injected so tests can fix
// the draw.
type IntN func(n int) int

func defaultIntN(f IntN) IntN {
	if f == nil {
		return rand.IntN
	}
	return f
}

// drawTransporter picks one transporter uniformly at random. An empty pool is
// reported as ErrNoTransporterAvailable before any draw is attempted.
func drawTransporter(ids []uint, intn IntN) (uint, error) {
	if len(ids) == 0 {
		return 0, domain.ErrNoTransporterAvailable
	}
	return ids[intn(len(ids))], nil
}

func without(ids []uint, drop uint) []uint {
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id != drop {
			out = append(out, id)
		}
	}
	return out
}
