package store

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"tee-chat/services/chat-gateway/internal/domain/session"
)

// Reaper periodically sweeps the session registry:
// - sessions whose manager has moved to the error state are stopped and removed
// - sessions stuck connecting beyond staleTTL are stopped and removed
type Reaper struct {
	store     session.Store
	staleTTL  time.Duration
	interval  time.Duration
	log       zerolog.Logger
	done      chan struct{}
	wg        sync.WaitGroup
	startOnce sync.Once
	stopOnce  sync.Once
}

// NewReaper creates a session reaper.
func NewReaper(store session.Store, staleTTL, interval time.Duration, log zerolog.Logger) *Reaper {
	return &Reaper{
		store:    store,
		staleTTL: staleTTL,
		interval: interval,
		log:      log.With().Str("component", "session-reaper").Logger(),
		done:     make(chan struct{}),
	}
}

// Start begins the sweep loop in background.
// Safe to call multiple times - only the first call starts the reaper.
func (r *Reaper) Start(ctx context.Context) {
	r.startOnce.Do(func() {
		r.wg.Add(1)
		go r.run(ctx)
		r.log.Info().Dur("interval", r.interval).Msg("session reaper started")
	})
}

// Stop gracefully shuts down the reaper.
// Safe to call multiple times - only the first call stops the reaper.
func (r *Reaper) Stop() {
	r.stopOnce.Do(func() {
		close(r.done)
		r.wg.Wait()
		r.log.Info().Msg("session reaper stopped")
	})
}

func (r *Reaper) run(ctx context.Context) {
	defer r.wg.Done()

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.log.Debug().Msg("context cancelled, shutting down reaper")
			return
		case <-r.done:
			r.log.Debug().Msg("done signal received, shutting down reaper")
			return
		case <-ticker.C:
			r.sweep(ctx)
		}
	}
}

func (r *Reaper) sweep(ctx context.Context) {
	sessions, err := r.store.List(ctx)
	if err != nil {
		r.log.Error().Err(err).Msg("failed to list sessions for sweep")
		return
	}

	now := time.Now()
	for _, sess := range sessions {
		state := sess.Manager.State()
		switch {
		case state == session.StateError:
			r.remove(ctx, sess, "failed")
		case state == session.StateConnecting && now.Sub(sess.CreatedAt) > r.staleTTL:
			r.remove(ctx, sess, "stale_connecting")
		case state == session.StateIdle && now.Sub(sess.CreatedAt) > r.staleTTL:
			// Stopped by the peer but never deleted by the client.
			r.remove(ctx, sess, "idle")
		}
	}
}

func (r *Reaper) remove(ctx context.Context, sess *session.Session, reason string) {
	sess.Manager.Stop()
	if err := r.store.Delete(ctx, sess.ID); err != nil {
		return
	}
	r.log.Info().
		Str("action", "deleted").
		Str("session_id", sess.ID).
		Str("reason", reason).
		Dur("age", time.Since(sess.CreatedAt)).
		Msg("session cleanup")
}
