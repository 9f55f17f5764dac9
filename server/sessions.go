package server

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"ai_content_optimizer/shell"
)

const sessionCookie = "aco_session"

// sessionStore 按浏览器会话保存各自的 shell，仅存在内存中。
type sessionStore struct {
	mu       sync.Mutex
	sessions map[string]*shell.Shell
	newShell func() *shell.Shell
	ttl      time.Duration
}

func newStore(ttl time.Duration, newShell func() *shell.Shell) *sessionStore {
	return &sessionStore{
		sessions: make(map[string]*shell.Shell),
		newShell: newShell,
		ttl:      ttl,
	}
}

func (s *sessionStore) get(id string) (*shell.Shell, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

// create registers a fresh shell under a new random id.
func (s *sessionStore) create() (string, *shell.Shell) {
	id := uuid.NewString()
	sess := s.newShell()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = sess
	return id, sess
}

func (s *sessionStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// sweep drops sessions idle for longer than the ttl. Sessions with a request in
// flight are kept.
func (s *sessionStore) sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, sess := range s.sessions {
		if sess.Loading() || now.Sub(sess.LastUsed()) < s.ttl {
			continue
		}
		delete(s.sessions, id)
		removed++
	}
	return removed
}

// run sweeps periodically until ctx is done.
func (s *sessionStore) run(ctx context.Context, log *slog.Logger) {
	interval := s.ttl / 4
	if interval < time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := s.sweep(now); n > 0 {
				log.InfoContext(ctx, "Expired idle sessions",
					"removed", n,
					"remaining", s.len())
			}
		}
	}
}

// session returns the caller's shell, creating one and setting the cookie when the
// request carries no known id.
func (s *Server) session(w http.ResponseWriter, r *http.Request) *shell.Shell {
	if c, err := r.Cookie(sessionCookie); err == nil {
		if _, parseErr := uuid.Parse(c.Value); parseErr == nil {
			if sess, ok := s.store.get(c.Value); ok {
				return sess
			}
		}
	}

	id, sess := s.store.create()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(s.opts.SessionTTL.Seconds()),
	})
	return sess
}
