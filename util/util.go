package util

import (
	"math/rand"
	"time"

	"github.com/google/uuid"
)

func RandomGuid() string {
	return uuid.NewString()
}

// RandomIntIn returns an int in [min, max].
func RandomIntIn(r *rand.Rand, min, max int) int {
	if max <= min {
		return min
	}
	return min + r.Intn(max-min+1)
}

// Flake reports true with probability p.
func Flake(r *rand.Rand, p float64) bool {
	return r.Float64() < p
}

// RandomSleep sleeps for a random duration in [min, max). It gives up after
// timeout and reports whether it slept the whole way.
func RandomSleep(r *rand.Rand, min, max, timeout time.Duration) bool {
	d := min
	if max > min {
		d += time.Duration(r.Int63n(int64(max - min)))
	}
	if timeout > 0 && d > timeout {
		time.Sleep(timeout)
		return false
	}
	time.Sleep(d)
	return true
}
