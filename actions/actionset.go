package actions

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"alphatron/models"
	"alphatron/utils"
)

type State string

const (
	// StateCollecting means at least one participant has not called Ready yet.
	StateCollecting State = "COLLECTING"
	// StateFlushed means every participant called Ready and the response was written.
	StateFlushed State = "FLUSHED"
	// StateExpired means the response was written early by Expire.
	StateExpired State = "EXPIRED"
)

// ActionSet collects the actions of every feature handling a single event
// and writes them as one JSON response once all of them called Ready.
//
// Each participant must call Ready exactly once, whether or not it added
// anything. Add and Ready are safe to call from any goroutine.
type ActionSet struct {
	mu        sync.Mutex
	sink      http.ResponseWriter
	expected  int
	remaining int
	actions   []models.Action
	state     State
	done      chan struct{}
}

// NewActionSet creates an empty set of actions that is flushed to sink after
// expectedSignals calls to Ready. With zero expected signals the empty set is
// flushed right away.
func NewActionSet(sink http.ResponseWriter, expectedSignals int) *ActionSet {
	utils.AssertInvariant(sink != nil, "action set requires a response sink")
	utils.AssertInvariant(expectedSignals >= 0, "expected signals must not be negative")

	s := &ActionSet{
		sink:      sink,
		expected:  expectedSignals,
		remaining: expectedSignals,
		actions:   []models.Action{},
		state:     StateCollecting,
		done:      make(chan struct{}),
	}

	if expectedSignals == 0 {
		s.mu.Lock()
		s.flushLocked(StateFlushed)
		s.mu.Unlock()
	}

	return s
}

// Add appends an action, e.g. Add("chat.postMessage", body). Actions added
// after the response was written are dropped.
func (s *ActionSet) Add(method string, body any) *ActionSet {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateCollecting {
		log.Printf("⚠️ Dropping %s action added after the response was written (state: %s)", method, s.state)
		return s
	}

	s.actions = append(s.actions, models.Action{Method: method, Body: body})
	return s
}

// Ready signals that one participant has finished adding actions. The call
// that brings the remaining count to zero writes the response. Extra calls
// are ignored.
func (s *ActionSet) Ready() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateCollecting {
		log.Printf("⚠️ Ignoring ready signal received after the response was written (state: %s)", s.state)
		return
	}

	s.remaining--
	if s.remaining == 0 {
		s.flushLocked(StateFlushed)
	}
}

// Expire writes whatever was collected so far if the set is still
// collecting. It returns true if this call wrote the response.
func (s *ActionSet) Expire() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateCollecting {
		return false
	}

	log.Printf("⚠️ Flushing %d action(s) with %d of %d ready signal(s) missing", len(s.actions), s.remaining, s.expected)
	s.flushLocked(StateExpired)
	return true
}

// Done is closed once the response has been written.
func (s *ActionSet) Done() <-chan struct{} {
	return s.done
}

func (s *ActionSet) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *ActionSet) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remaining
}

func (s *ActionSet) Expected() int {
	return s.expected
}

// Actions returns a copy of the actions collected so far.
func (s *ActionSet) Actions() []models.Action {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Action, len(s.actions))
	copy(out, s.actions)
	return out
}

// flushLocked must be called with mu held and state COLLECTING.
func (s *ActionSet) flushLocked(final State) {
	s.state = final
	defer close(s.done)

	payload, err := json.Marshal(models.ActionsResponse{Actions: s.actions})
	if err != nil {
		log.Printf("❌ Failed to encode %d action(s): %v", len(s.actions), err)
		http.Error(s.sink, "failed to encode actions", http.StatusInternalServerError)
		return
	}

	s.sink.Header().Set("Content-Type", "application/json")
	s.sink.WriteHeader(http.StatusOK)
	if _, err := s.sink.Write(payload); err != nil {
		log.Printf("❌ Failed to write actions response: %v", err)
		return
	}

	log.Printf("✅ Flushed %d action(s) (state: %s)", len(s.actions), final)
}
