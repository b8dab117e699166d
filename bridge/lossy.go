package bridge

import (
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/Sokpao/Agent-TAC/util"
)

var LostMessage = errors.New("message lost")

// Lossy wraps a transport with latency and message loss, for exercising the
// agent against an unreliable link. The zero settings pass everything
// through untouched.
type Lossy struct {
	Transport

	LatencyMin time.Duration
	LatencyMax time.Duration
	Timeout    time.Duration
	Flakiness  float64

	lock *sync.Mutex
	r    *rand.Rand
}

func NewLossy(transport Transport, seed int64) *Lossy {
	return &Lossy{
		Transport: transport,
		lock:      &sync.Mutex{},
		r:         rand.New(rand.NewSource(seed)),
	}
}

func (l *Lossy) Publish(payload []byte) error {
	if l.beSlowAndFlakey() {
		return LostMessage
	}
	return l.Transport.Publish(payload)
}

func (l *Lossy) beSlowAndFlakey() bool {
	l.lock.Lock()
	flaked := util.Flake(l.r, l.Flakiness)
	r := rand.New(rand.NewSource(l.r.Int63()))
	l.lock.Unlock()

	if flaked {
		time.Sleep(l.Timeout)
		return true
	}
	if l.LatencyMax == 0 {
		return false
	}
	return !util.RandomSleep(r, l.LatencyMin, l.LatencyMax, l.Timeout)
}
