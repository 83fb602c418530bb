package dailygame

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func eligibleContext(gameID string) Resolved {
	return Resolved{IsDaily: true, GameID: gameID, IsPlayed: boolPtr(false)}
}

func TestSubmitOnceWhenEligible(t *testing.T) {
	fc := &fakeClient{}
	c := NewCoordinator(fc, 200)

	var notes []Notification
	c.Subscribe(func(n Notification) { notes = append(notes, n) })

	c.SubmitIfNeeded(context.Background(), eligibleContext("g1"), 150)

	calls := fc.submitCalls()
	if len(calls) != 1 || calls[0] != (scoreCall{gameID: "g1", score: 150}) {
		t.Fatalf("calls = %+v, want one (g1,150)", calls)
	}
	if !c.Done() {
		t.Fatal("coordinator not settled after success")
	}
	if len(notes) != 1 || !notes[0].Success || notes[0].GameID != "g1" || notes[0].Score != 150 {
		t.Fatalf("notifications = %+v", notes)
	}
}

func TestSubmitIdempotentAfterSuccess(t *testing.T) {
	fc := &fakeClient{}
	c := NewCoordinator(fc, 200)
	ctx := context.Background()

	c.SubmitIfNeeded(ctx, eligibleContext("g1"), 150)
	c.SubmitIfNeeded(ctx, eligibleContext("g1"), 150)
	c.SubmitIfNeeded(ctx, eligibleContext("other"), 999)

	if calls := fc.submitCalls(); len(calls) != 1 {
		t.Fatalf("calls = %+v, want exactly one", calls)
	}
}

func TestConcurrentCallsCoalesce(t *testing.T) {
	fc := &fakeClient{block: make(chan struct{})}
	c := NewCoordinator(fc, 200)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.SubmitIfNeeded(ctx, eligibleContext("g1"), 150)
		}()
	}
	// Give every goroutine a chance to reach the coordinator, then
	// release the single in-flight network call.
	for len(fc.submitCalls()) == 0 {
		time.Sleep(time.Millisecond)
	}
	close(fc.block)
	wg.Wait()

	if calls := fc.submitCalls(); len(calls) != 1 {
		t.Fatalf("calls = %+v, want exactly one network call", calls)
	}
	if !c.Done() {
		t.Fatal("coordinator not settled")
	}
}

func TestIneligibleShortCircuits(t *testing.T) {
	cases := []struct {
		name string
		res  Resolved
	}{
		{"no match", Resolved{}},
		{"already played", Resolved{GameID: "g1", IsPlayed: boolPtr(true)}},
		{"unknown played state", Resolved{GameID: "g1"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fc := &fakeClient{}
			c := NewCoordinator(fc, 200)
			c.SubmitIfNeeded(context.Background(), tc.res, 150)
			if len(fc.submitCalls()) != 0 {
				t.Fatal("network call issued for ineligible context")
			}
			if !c.Done() {
				t.Fatal("ineligible context must settle the coordinator")
			}
		})
	}
}

func TestRetryAfterFailure(t *testing.T) {
	fc := &fakeClient{submitErr: errors.New("server down")}
	c := NewCoordinator(fc, 200)
	ctx := context.Background()

	var notes []Notification
	c.Subscribe(func(n Notification) { notes = append(notes, n) })

	c.SubmitIfNeeded(ctx, eligibleContext("g1"), 150)
	if c.Done() {
		t.Fatal("failure must leave the coordinator retryable")
	}
	if len(notes) != 1 || notes[0].Success || notes[0].Err == nil {
		t.Fatalf("notifications = %+v, want one failure", notes)
	}

	fc.mu.Lock()
	fc.submitErr = nil
	fc.mu.Unlock()

	c.SubmitIfNeeded(ctx, eligibleContext("g1"), 150)
	if calls := fc.submitCalls(); len(calls) != 2 {
		t.Fatalf("calls = %+v, want a fresh attempt after failure", calls)
	}
	if !c.Done() {
		t.Fatal("retry success must settle the coordinator")
	}
	if len(notes) != 2 || !notes[1].Success {
		t.Fatalf("notifications = %+v, want failure then success", notes)
	}
}

func TestScoreClampedBeforeSubmit(t *testing.T) {
	fc := &fakeClient{}
	c := NewCoordinator(fc, 200)
	c.SubmitIfNeeded(context.Background(), eligibleContext("g1"), 512)
	if calls := fc.submitCalls(); len(calls) != 1 || calls[0].score != 200 {
		t.Fatalf("calls = %+v, want score clamped to 200", calls)
	}
}

func TestResetDiscardsStaleInFlightResult(t *testing.T) {
	fc := &fakeClient{block: make(chan struct{})}
	c := NewCoordinator(fc, 200)
	ctx := context.Background()

	done := make(chan struct{})
	go func() {
		c.SubmitIfNeeded(ctx, eligibleContext("g1"), 100)
		close(done)
	}()
	for len(fc.submitCalls()) == 0 {
		time.Sleep(time.Millisecond)
	}
	c.Reset()
	close(fc.block)
	<-done

	if c.Done() {
		t.Fatal("stale attempt from before Reset must not settle the new session")
	}
}
