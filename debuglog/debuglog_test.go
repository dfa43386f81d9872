package debuglog

import (
	"sync"
	"testing"
)

func TestSink_AppendOrder(t *testing.T) {
	s := NewSink()
	s.Append(KindLLM, PhaseRequest, "first", "p", "m")
	s.Append(KindImage, PhaseResponse, "second", "p", "")
	s.Append(KindSystem, PhaseInfo, "third", "", "")

	events := s.List()
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	if events[0].Content != "first" || events[2].Content != "third" {
		t.Error("events must be listed oldest-first in insertion order")
	}
	if events[0].ID == "" || events[0].Timestamp.IsZero() {
		t.Error("append must fill in id and timestamp")
	}
}

func TestSink_Clear(t *testing.T) {
	s := NewSink()
	s.Append(KindSystem, PhaseInfo, "x", "", "")
	s.Clear()
	if s.Len() != 0 {
		t.Errorf("expected empty sink after clear, got %d", s.Len())
	}
}

func TestSink_ConcurrentAppend(t *testing.T) {
	s := NewSink()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Append(KindLLM, PhaseRequest, "c", "p", "m")
		}()
	}
	wg.Wait()
	if s.Len() != 50 {
		t.Errorf("lost events under concurrent append: %d", s.Len())
	}
}
