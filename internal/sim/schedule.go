package sim

import "time"

// eventKind enumerates the timer events the engine evaluates each tick.
// Timers live here, not as host timers, so they advance with the injected
// clock and cannot fire against a since-deleted ship.
type eventKind int

const (
	eventReloadReady eventKind = iota
	eventGraceExpired
	eventRemovalDue
	eventMarketPulse
)

type scheduledEvent struct {
	due    time.Time
	kind   eventKind
	shipID string
	seq    uint64
}

// schedule is a time-ordered pending-event list. The engine lock guards it;
// no internal synchronization is needed.
type schedule struct {
	pending []scheduledEvent
	nextSeq uint64
}

// push inserts an event keeping the list sorted by due time, insertion order
// breaking ties.
func (s *schedule) push(due time.Time, kind eventKind, shipID string) {
	s.nextSeq++
	event := scheduledEvent{due: due, kind: kind, shipID: shipID, seq: s.nextSeq}
	idx := len(s.pending)
	for i, existing := range s.pending {
		if due.Before(existing.due) {
			idx = i
			break
		}
	}
	s.pending = append(s.pending, scheduledEvent{})
	copy(s.pending[idx+1:], s.pending[idx:])
	s.pending[idx] = event
}

// popDue removes and returns every event whose due time has passed, in order.
func (s *schedule) popDue(now time.Time) []scheduledEvent {
	cut := 0
	for cut < len(s.pending) && !s.pending[cut].due.After(now) {
		cut++
	}
	if cut == 0 {
		return nil
	}
	due := make([]scheduledEvent, cut)
	copy(due, s.pending[:cut])
	s.pending = append(s.pending[:0], s.pending[cut:]...)
	return due
}

// cancelShip drops every pending event referencing the given ship.
func (s *schedule) cancelShip(shipID string) {
	if shipID == "" {
		return
	}
	kept := s.pending[:0]
	for _, event := range s.pending {
		if event.shipID != shipID {
			kept = append(kept, event)
		}
	}
	s.pending = kept
}

// cancelShipKind drops pending events of one kind for the given ship.
func (s *schedule) cancelShipKind(shipID string, kind eventKind) {
	kept := s.pending[:0]
	for _, event := range s.pending {
		if event.shipID == shipID && event.kind == kind {
			continue
		}
		kept = append(kept, event)
	}
	s.pending = kept
}

func (s *schedule) len() int { return len(s.pending) }
