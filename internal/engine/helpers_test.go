package engine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/lhwinter/frostwalk/internal/events"
)

// stubGenerator returns configured canned responses, optionally blocking
// until released so tests can observe the pending state.
type stubGenerator struct {
	mu      sync.Mutex
	reply   string
	err     error
	image   string
	release chan struct{}
}

func (g *stubGenerator) set(reply string, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.reply = reply
	g.err = err
}

func (g *stubGenerator) GenerateReply(ctx context.Context, prompt, instructions string, temperature float64) (string, error) {
	g.mu.Lock()
	release := g.release
	g.mu.Unlock()
	if release != nil {
		select {
		case <-release:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.reply, g.err
}

func (g *stubGenerator) GenerateImage(ctx context.Context, prompt string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.image == "" {
		return "", errors.New("no image configured")
	}
	return g.image, nil
}

// countingPlayer records Play/Stop calls.
type countingPlayer struct {
	mu    sync.Mutex
	plays int
	stops int
}

func (p *countingPlayer) Play() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.plays++
}

func (p *countingPlayer) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stops++
}

func (p *countingPlayer) playCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.plays
}

func newTestEngine(t *testing.T, gen Generator, audio AudioPlayer) (*Engine, *fakeClock) {
	t.Helper()
	events.Clear()
	clk := newFakeClock()
	eng, err := New(DefaultSettings(), clk, gen, audio)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return eng, clk
}

// forceScene jumps straight to a scene without running transition side
// effects. Only for tests that exercise a single scene's machinery.
func forceScene(e *Engine, id SceneID) {
	e.mu.Lock()
	e.session.Scene = id
	e.mu.Unlock()
}

// waitFor polls until cond holds, failing the test after two seconds.
// Needed wherever a goroutine resolves a generation request.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func hasEvent(name string) bool {
	for _, e := range events.Snapshot() {
		if e.Name == name {
			return true
		}
	}
	return false
}

func countEvents(name string) int {
	n := 0
	for _, e := range events.Snapshot() {
		if e.Name == name {
			n++
		}
	}
	return n
}
