// Package clientsession keeps the small amount of per-browser state the UI
// needs in a signed cookie: a stable client id (used to sequence list
// fetches) and one-shot flash messages.
package clientsession

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

const (
	clientIDKey = "client_id"
	flashKey    = "flash"
	errorKey    = "flash_error"
)

type ctxKey string

const clientIDCtxKey ctxKey = "clientID"

// Flash is a one-shot message shown on the next rendered page.
type Flash struct {
	Message string
	IsError bool
}

// Manager wraps a gorilla cookie store.
type Manager struct {
	store *sessions.CookieStore
	name  string
	log   *zap.Logger
}

// NewManager creates a Manager. An empty key is replaced with a random one,
// which invalidates cookies on every restart; fine for development only.
func NewManager(key, name, domain string, secure bool, logger *zap.Logger) (*Manager, error) {
	if name == "" {
		return nil, fmt.Errorf("session name is empty")
	}
	keyBytes := []byte(key)
	if key == "" {
		keyBytes = securecookie.GenerateRandomKey(32)
		if keyBytes == nil {
			return nil, fmt.Errorf("generate session key: random source unavailable")
		}
		logger.Warn("session_key not set; using a random key (sessions reset on restart)")
	} else if len(key) < 32 {
		logger.Warn("session key is short; 32+ chars recommended",
			zap.Int("length", len(key)))
	}

	store := sessions.NewCookieStore(keyBytes)
	store.Options = &sessions.Options{
		Domain:   domain,
		Path:     "/",
		MaxAge:   86400 * 30,
		Secure:   secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	logger.Info("session store initialized",
		zap.Bool("secure", secure),
		zap.String("domain", domain))

	return &Manager{store: store, name: name, log: logger}, nil
}

// Load ensures every request carries a client id, issuing one (and the
// cookie) on first visit, and injects it into the request context.
func (m *Manager) Load(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := m.store.Get(r, m.name)
		if err != nil {
			// Bad signature or stale key: continue with the fresh session
			// gorilla returned.
			m.log.Debug("session decode failed; starting new session", zap.Error(err))
		}

		id, _ := sess.Values[clientIDKey].(string)
		if id == "" {
			id = uuid.NewString()
			sess.Values[clientIDKey] = id
			if err := sess.Save(r, w); err != nil {
				m.log.Warn("session save failed", zap.Error(err))
			}
		}

		next.ServeHTTP(w, WithClientID(r, id))
	})
}

// AddFlash queues a message for the next page render. Must be called
// before anything is written to w.
func (m *Manager) AddFlash(w http.ResponseWriter, r *http.Request, msg string, isError bool) {
	sess, _ := m.store.Get(r, m.name)
	key := flashKey
	if isError {
		key = errorKey
	}
	sess.AddFlash(msg, key)
	if err := sess.Save(r, w); err != nil {
		m.log.Warn("session save failed", zap.Error(err))
	}
}

// Flashes pops all queued messages. Errors come first.
func (m *Manager) Flashes(w http.ResponseWriter, r *http.Request) []Flash {
	sess, _ := m.store.Get(r, m.name)

	var out []Flash
	for _, v := range sess.Flashes(errorKey) {
		if s, ok := v.(string); ok {
			out = append(out, Flash{Message: s, IsError: true})
		}
	}
	for _, v := range sess.Flashes(flashKey) {
		if s, ok := v.(string); ok {
			out = append(out, Flash{Message: s})
		}
	}
	if len(out) > 0 {
		if err := sess.Save(r, w); err != nil {
			m.log.Warn("session save failed", zap.Error(err))
		}
	}
	return out
}

// ClientID returns the id injected by Load, or "" outside of it.
func ClientID(r *http.Request) string {
	id, _ := r.Context().Value(clientIDCtxKey).(string)
	return id
}

// WithClientID returns r carrying id. Tests use it to bypass Load.
func WithClientID(r *http.Request, id string) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), clientIDCtxKey, id))
}
