package usecases_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/samirrijal/zonemap/internal/core/domain"
	"github.com/samirrijal/zonemap/internal/core/usecases"
)

type blockingPublisher struct {
	mu      sync.Mutex
	release chan struct{}
	got     []domain.SessionState
}

func (p *blockingPublisher) PublishSessionState(_ context.Context, st domain.SessionState) error {
	<-p.release
	p.mu.Lock()
	defer p.mu.Unlock()
	p.got = append(p.got, st)
	return nil
}

func (p *blockingPublisher) states() []domain.SessionState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]domain.SessionState(nil), p.got...)
}

func TestSessionRelay_MutationsDoNotWaitOnPublisher(t *testing.T) {
	pub := &blockingPublisher{release: make(chan struct{})}
	relay := usecases.NewSessionRelay(pub)
	session := usecases.NewEditSession(newStore(), blue)
	session.OnChange(relay.Notify)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		relay.Run(ctx)
		close(done)
	}()

	mutated := make(chan struct{})
	go func() {
		_ = session.StartDraw()
		_ = session.CancelDraw()
		session.SetPenColor(red)
		close(mutated)
	}()
	select {
	case <-mutated:
	case <-time.After(2 * time.Second):
		t.Fatal("session mutations blocked on the publisher")
	}

	close(pub.release)
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("relay did not stop")
	}

	got := pub.states()
	if len(got) == 0 {
		t.Fatal("expected at least one published state")
	}
	if last := got[len(got)-1]; last.PenColor != red || last.Mode != domain.ModeIdle {
		t.Errorf("expected latest state to be published last, got %+v", last)
	}
}
