package realtime

import (
	"context"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/socialfeed/gateway/internal/core/domain"
	"github.com/socialfeed/gateway/internal/infrastructure/queue"
)

type stubEnqueuer struct {
	accept bool
	jobs   []queue.Job
}

func (s *stubEnqueuer) Enqueue(job queue.Job) bool {
	if !s.accept {
		return false
	}
	s.jobs = append(s.jobs, job)
	return true
}

type recordingBroadcaster struct {
	mu     sync.Mutex
	events []domain.Event
}

func (r *recordingBroadcaster) Broadcast(event domain.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func TestPublisher_DefersDeliveryToWorker(t *testing.T) {
	jobs := &stubEnqueuer{accept: true}
	out := &recordingBroadcaster{}
	p := NewPublisher(jobs, out, zerolog.Nop())

	p.Publish(context.Background(), domain.Event{Kind: domain.EventPostCreated})
	p.Publish(context.Background(), domain.Event{Kind: domain.EventPostDeleted})

	if len(out.events) != 0 {
		t.Fatal("Publish delivered synchronously")
	}
	if len(jobs.jobs) != 2 {
		t.Fatalf("jobs = %d, want 2", len(jobs.jobs))
	}
	if jobs.jobs[0].Key != jobs.jobs[1].Key {
		t.Error("events must share a dispatcher key")
	}

	for _, j := range jobs.jobs {
		if err := j.Run(context.Background()); err != nil {
			t.Fatal(err)
		}
	}
	if len(out.events) != 2 || out.events[0].Kind != domain.EventPostCreated {
		t.Errorf("events = %+v", out.events)
	}
}

func TestPublisher_FullQueueDropsSilently(t *testing.T) {
	out := &recordingBroadcaster{}
	p := NewPublisher(&stubEnqueuer{accept: false}, out, zerolog.Nop())

	p.Publish(context.Background(), domain.Event{Kind: domain.EventPostUpdated})

	if len(out.events) != 0 {
		t.Errorf("events = %+v", out.events)
	}
}
