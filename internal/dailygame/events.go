// internal/dailygame/events.go
//
// Observer channel for score-submission outcomes. Unrelated UI (a
// daily-progress widget, the websocket hub) subscribes here instead of
// polling; exactly one notification is delivered per terminal
// submission attempt.

package dailygame

import "sync"

// Notification is broadcast after each terminal submission attempt.
type Notification struct {
	GameID  string `json:"gameId"`
	Score   int    `json:"score"`
	Success bool   `json:"success"`
	Err     error  `json:"-"`
}

// Observer receives submission notifications. Observers run on the
// submitting goroutine and must not block.
type Observer func(Notification)

// broadcaster is a minimal fan-out registry.
type broadcaster struct {
	mu        sync.Mutex
	observers []Observer
}

func (b *broadcaster) subscribe(o Observer) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.observers = append(b.observers, o)
}

func (b *broadcaster) emit(n Notification) {
	b.mu.Lock()
	obs := make([]Observer, len(b.observers))
	copy(obs, b.observers)
	b.mu.Unlock()
	for _, o := range obs {
		o(n)
	}
}
