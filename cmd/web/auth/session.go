package auth

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
)

const (
	SessionName       = "cutroom_session"
	EditorIDKey       = "editor_id"
	SessionCreatedKey = "created_at"
)

var (
	ErrNoSession = errors.New("no editor session")
)

// SessionManager ties a browser to an editor session through a signed
// cookie. The cookie only carries the editor id; all state lives server side.
type SessionManager struct {
	store  *sessions.CookieStore
	maxAge int
}

func NewSessionManager(secret string, maxAge time.Duration) *SessionManager {
	if secret == "" {
		secret = generateSecret()
	}
	if maxAge <= 0 {
		maxAge = 24 * time.Hour
	}
	return &SessionManager{
		store:  sessions.NewCookieStore([]byte(secret)),
		maxAge: int(maxAge.Seconds()),
	}
}

func generateSecret() string {
	b := make([]byte, 32)
	rand.Read(b)
	return base64.StdEncoding.EncodeToString(b)
}

func (sm *SessionManager) SaveSession(w http.ResponseWriter, r *http.Request, editorID string) error {
	session, _ := sm.store.Get(r, SessionName)
	session.Values[EditorIDKey] = editorID
	session.Values[SessionCreatedKey] = time.Now().Unix()

	// Determine if we're on HTTPS
	isHTTPS := r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https"

	session.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   sm.maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   isHTTPS,
	}

	return session.Save(r, w)
}

// GetSession returns the editor id stored in the cookie.
func (sm *SessionManager) GetSession(r *http.Request) (string, error) {
	session, err := sm.store.Get(r, SessionName)
	if err != nil {
		_, cookieErr := r.Cookie(SessionName)
		slog.Warn("failed to decode session", "error", err, "host", r.Host, "has_cookie", cookieErr == nil)
		return "", err
	}

	val, ok := session.Values[EditorIDKey]
	if !ok {
		return "", ErrNoSession
	}
	id, ok := val.(string)
	if !ok {
		return "", ErrNoSession
	}
	if _, err := uuid.Parse(id); err != nil {
		return "", ErrNoSession
	}
	return id, nil
}

// EnsureSession returns the editor id from the cookie, issuing a new one
// when the request has none or it cannot be decoded. created reports
// whether a new id was issued.
func (sm *SessionManager) EnsureSession(w http.ResponseWriter, r *http.Request) (id string, created bool, err error) {
	if id, err := sm.GetSession(r); err == nil {
		return id, false, nil
	}
	id = uuid.NewString()
	if err := sm.SaveSession(w, r, id); err != nil {
		return "", false, err
	}
	return id, true, nil
}

// GetSessionCreatedAt returns the time the session was created.
// Returns zero time if the session is missing or invalid.
func (sm *SessionManager) GetSessionCreatedAt(r *http.Request) time.Time {
	session, err := sm.store.Get(r, SessionName)
	if err != nil {
		return time.Time{}
	}

	val, ok := session.Values[SessionCreatedKey]
	if !ok {
		return time.Time{}
	}

	unix, ok := val.(int64)
	if !ok {
		return time.Time{}
	}

	return time.Unix(unix, 0)
}

func (sm *SessionManager) ClearSession(w http.ResponseWriter, r *http.Request) error {
	session, _ := sm.store.Get(r, SessionName)
	session.Options.MaxAge = -1
	return session.Save(r, w)
}
