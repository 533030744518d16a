package notify

import (
	"log"
	"sync"

	"taskcompass/internal/model"
)

// Channel delivers one notification over some transport (email, telegram,
// OS push). Implementations are free to skip recipients they cannot reach.
type Channel interface {
	Name() string
	Send(n model.Notification) error
}

// Dispatcher fans decided notifications out to the delivery channels and
// keeps an in-app queue per recipient for polling clients. Dispatch is
// fire-and-forget: channel failures are logged and swallowed, never
// propagated back into task mutation.
type Dispatcher struct {
	mu       sync.Mutex
	channels []Channel
	pending  map[string][]model.Notification
}

func NewDispatcher(channels ...Channel) *Dispatcher {
	return &Dispatcher{
		channels: channels,
		pending:  make(map[string][]model.Notification),
	}
}

// Dispatch queues the notification for in-app delivery and pushes it to
// every channel. A pending notification with the same tag is replaced
// rather than stacked, mirroring OS-level tag deduplication. Channel
// delivery happens on its own goroutine so a slow SMTP or Telegram
// endpoint never stalls the mutation that produced the event.
func (d *Dispatcher) Dispatch(n model.Notification) {
	d.mu.Lock()
	queue := d.pending[n.Recipient]
	replaced := false
	for i := range queue {
		if queue[i].Tag() == n.Tag() {
			queue[i] = n
			replaced = true
			break
		}
	}
	if !replaced {
		queue = append(queue, n)
	}
	d.pending[n.Recipient] = queue
	d.mu.Unlock()

	go func() {
		for _, ch := range d.channels {
			if err := ch.Send(n); err != nil {
				log.Printf("notify: %s delivery failed for task %s: %v", ch.Name(), n.TaskID, err)
			}
		}
	}()
}

// Drain returns and clears the recipient's pending in-app notifications.
func (d *Dispatcher) Drain(recipient string) []model.Notification {
	d.mu.Lock()
	defer d.mu.Unlock()
	queue := d.pending[recipient]
	delete(d.pending, recipient)
	if queue == nil {
		queue = []model.Notification{}
	}
	return queue
}
