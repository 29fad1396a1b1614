// ABOUTME: Observable restore state with synchronous change subscribers.
// ABOUTME: Safe to poll from other goroutines while a restore runs.
package restore

// Phases reported in State.Phase besides the graph step names.
const (
	PhaseIdle   = "idle"
	PhaseAuth   = "auth"
	PhaseFetch  = "fetch"
	PhaseCommit = "commit"
	PhaseDone   = "done"
	PhaseFailed = "failed"
)

// State is a snapshot of the restore progress.
type State struct {
	Restoring bool    `json:"restoring"`
	Progress  float64 `json:"progress"`
	LastError string  `json:"last_error,omitempty"`
	Phase     string  `json:"phase"`
	RunID     string  `json:"run_id,omitempty"`
}

type subscriber struct {
	id int
	fn func(State)
}

// State returns the current restore state.
func (s *Service) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// OnChange registers fn to receive every state change, in the order changes
// are made. It returns a function that removes the subscription.
func (s *Service) OnChange(fn func(State)) (cancel func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSub++
	id := s.nextSub
	s.subs = append(s.subs, subscriber{id: id, fn: fn})
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

// update applies change under the lock, then notifies subscribers on the
// calling goroutine.
func (s *Service) update(change func(*State)) {
	s.mu.Lock()
	change(&s.state)
	st := s.state
	subs := make([]subscriber, len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	for _, sub := range subs {
		sub.fn(st)
	}
}

func (s *Service) begin(runID string) {
	s.update(func(st *State) {
		*st = State{Restoring: true, Progress: 0, Phase: PhaseFetch, RunID: runID}
	})
}

func (s *Service) advance(progress float64, phase string) {
	s.update(func(st *State) {
		if progress > st.Progress {
			st.Progress = progress
		}
		st.Phase = phase
	})
}

func (s *Service) finish() {
	s.update(func(st *State) {
		st.Restoring = false
		st.Progress = 1.0
		st.Phase = PhaseDone
	})
}

func (s *Service) fail(err error) {
	s.update(func(st *State) {
		st.Restoring = false
		st.LastError = err.Error()
		st.Phase = PhaseFailed
	})
}
