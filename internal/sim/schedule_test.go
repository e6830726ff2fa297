package sim

import (
	"testing"
	"time"
)

func TestSchedulePopsInTimeOrder(t *testing.T) {
	var s schedule
	base := time.Unix(1000, 0)
	s.push(base.Add(3*time.Second), eventReloadReady, "a")
	s.push(base.Add(1*time.Second), eventGraceExpired, "b")
	s.push(base.Add(2*time.Second), eventRemovalDue, "c")

	due := s.popDue(base.Add(2 * time.Second))
	if len(due) != 2 {
		t.Fatalf("expected 2 due events, got %d", len(due))
	}
	if due[0].shipID != "b" || due[1].shipID != "c" {
		t.Fatalf("unexpected due order: %+v", due)
	}
	if s.len() != 1 {
		t.Fatalf("expected 1 pending event, got %d", s.len())
	}
}

func TestScheduleTieBreaksByInsertion(t *testing.T) {
	var s schedule
	due := time.Unix(1000, 0)
	s.push(due, eventReloadReady, "first")
	s.push(due, eventReloadReady, "second")

	popped := s.popDue(due)
	if len(popped) != 2 || popped[0].shipID != "first" || popped[1].shipID != "second" {
		t.Fatalf("expected insertion order on equal due times, got %+v", popped)
	}
}

func TestScheduleCancelShip(t *testing.T) {
	var s schedule
	base := time.Unix(1000, 0)
	s.push(base.Add(time.Second), eventReloadReady, "gone")
	s.push(base.Add(time.Second), eventGraceExpired, "gone")
	s.push(base.Add(time.Second), eventReloadReady, "kept")

	s.cancelShip("gone")
	due := s.popDue(base.Add(time.Second))
	if len(due) != 1 || due[0].shipID != "kept" {
		t.Fatalf("expected only the surviving ship's event, got %+v", due)
	}
}

func TestScheduleCancelShipKind(t *testing.T) {
	var s schedule
	base := time.Unix(1000, 0)
	s.push(base.Add(time.Second), eventReloadReady, "p1")
	s.push(base.Add(2*time.Second), eventGraceExpired, "p1")

	s.cancelShipKind("p1", eventGraceExpired)
	due := s.popDue(base.Add(2 * time.Second))
	if len(due) != 1 || due[0].kind != eventReloadReady {
		t.Fatalf("expected reload event to survive, got %+v", due)
	}
}
