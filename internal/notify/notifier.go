package notify

import (
	"log"
	"sync"
	"time"

	"taskcompass/internal/model"
)

// Notifier runs the differ for every known user on each refresh cycle and
// hands the decided events to the dispatcher. Tracking state is cached in
// memory and written through to the StateStore after every evaluation.
type Notifier struct {
	states     *StateStore
	dispatcher *Dispatcher

	mu    sync.Mutex
	cache map[string]*TrackingState
	now   func() time.Time
}

func NewNotifier(states *StateStore, dispatcher *Dispatcher) *Notifier {
	return &Notifier{
		states:     states,
		dispatcher: dispatcher,
		cache:      make(map[string]*TrackingState),
		now:        time.Now,
	}
}

// Evaluate inspects the full task list once per user. Evaluation order
// across users carries no meaning; each user's state is independent.
func (n *Notifier) Evaluate(all []model.Task, users []model.UserAccount) {
	n.mu.Lock()
	defer n.mu.Unlock()

	now := n.now()
	for i := range users {
		u := &users[i]
		st, ok := n.cache[u.UID]
		if !ok {
			st = n.states.Load(u.UID)
			n.cache[u.UID] = st
		}

		for _, event := range st.Diff(all, u, now) {
			n.dispatcher.Dispatch(event)
		}

		if err := n.states.Save(u.UID, st); err != nil {
			log.Printf("notify state for %s not persisted: %v", u.UID, err)
		}
	}
}
