package agent

import "github.com/Sokpao/Agent-TAC/types"

// Observer sees what the agent did. It must not block: observers run on the
// callback path.
type Observer interface {
	Observe(event types.AgentEvent)
}

type ObserverFunc func(event types.AgentEvent)

func (f ObserverFunc) Observe(event types.AgentEvent) {
	f(event)
}

// Observers fans every event out, in order.
type Observers []Observer

func (o Observers) Observe(event types.AgentEvent) {
	for _, observer := range o {
		if observer != nil {
			observer.Observe(event)
		}
	}
}

type nopObserver struct{}

func (nopObserver) Observe(types.AgentEvent) {}
