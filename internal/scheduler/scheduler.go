// Package scheduler drives time-window playback on a fixed interval.
package scheduler

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/i474232898/weather-dashboard/internal/timewindow"
)

// DefaultInterval is the playback tick period.
const DefaultInterval = time.Second

// Advancer moves the selection one playback step forward.
type Advancer interface {
	Advance(ctx context.Context) timewindow.Selection
}

// Player advances the time selection by an hour on every tick while
// playing. A tick that is still refetching when the next one is due is
// not overlapped.
type Player struct {
	target   Advancer
	interval time.Duration
	timeout  time.Duration

	mu        sync.Mutex
	scheduler *gocron.Scheduler
}

// New creates a stopped Player.
func New(target Advancer, interval time.Duration) *Player {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Player{
		target:   target,
		interval: interval,
		timeout:  30 * time.Second,
	}
}

// Start begins playback. Starting a running Player is a no-op.
func (p *Player) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.scheduler != nil {
		return nil
	}

	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	_, err := s.Every(p.interval).WaitForSchedule().Do(p.tick)
	if err != nil {
		return err
	}

	s.StartAsync()
	p.scheduler = s
	log.Printf("INFO: playback started, stepping every %s", p.interval)
	return nil
}

// Stop halts playback. In-flight ticks finish first.
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.scheduler == nil {
		return
	}
	p.scheduler.Stop()
	p.scheduler = nil
	log.Printf("INFO: playback stopped")
}

// Running reports whether playback is active.
func (p *Player) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.scheduler != nil
}

func (p *Player) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	sel := p.target.Advance(ctx)
	log.Printf("DEBUG: playback step to %s", sel)
}
