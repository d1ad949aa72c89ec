package tracker

import "fmt"

// Event is the closed set of inputs a Tracker reacts to: SamplingEvent and
// NewIterationEvent. Producers that emit events instead of calling the
// methods directly pass them to Handle.
type Event interface {
	isEvent()
}

// SamplingEvent carries one node's decision for the current iteration.
type SamplingEvent struct {
	Node  string
	Value Decision
}

// NewIterationEvent ends the current iteration and starts the next one.
type NewIterationEvent struct{}

func (SamplingEvent) isEvent()     {}
func (NewIterationEvent) isEvent() {}

// Handle dispatches e to RecordDecision or StartIteration.
func (t *Tracker) Handle(e Event) error {
	switch ev := e.(type) {
	case SamplingEvent:
		return t.RecordDecision(ev.Node, ev.Value)
	case *SamplingEvent:
		if ev == nil {
			return fmt.Errorf("%w: nil *SamplingEvent", ErrUnknownEvent)
		}
		return t.RecordDecision(ev.Node, ev.Value)
	case NewIterationEvent, *NewIterationEvent:
		return t.StartIteration()
	default:
		return fmt.Errorf("%w: %T", ErrUnknownEvent, e)
	}
}
