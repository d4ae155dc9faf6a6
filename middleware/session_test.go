package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"main/config"
	"main/model"
	"main/usecase"

	"github.com/gin-gonic/gin"
)

type memSessionStore struct {
	sessions map[string]*model.Session
}

func (s *memSessionStore) CreateSession(_ context.Context, session *model.Session) error {
	s.sessions[session.SessionID] = session
	return nil
}

func (s *memSessionStore) GetSession(_ context.Context, sessionID string) (*model.Session, error) {
	return s.sessions[sessionID], nil
}

func (s *memSessionStore) UpdateSession(_ context.Context, session *model.Session) error {
	s.sessions[session.SessionID] = session
	return nil
}

func (s *memSessionStore) CountActiveSessions(_ context.Context, userID string) (int, error) {
	count := 0
	now := time.Now()
	for _, session := range s.sessions {
		if session.UserID == userID && session.IsActive && session.ExpiresAt.After(now) {
			count++
		}
	}
	return count, nil
}

func (s *memSessionStore) GetUserActiveSessions(_ context.Context, userID string) ([]*model.Session, error) {
	var out []*model.Session
	for _, session := range s.sessions {
		if session.UserID == userID && session.IsActive {
			out = append(out, session)
		}
	}
	return out, nil
}

func (s *memSessionStore) GetAllActiveSessions(_ context.Context) ([]*model.Session, error) {
	var out []*model.Session
	for _, session := range s.sessions {
		if session.IsActive {
			out = append(out, session)
		}
	}
	return out, nil
}

func newGateFixture() (*usecase.SessionManager, *memSessionStore) {
	store := &memSessionStore{sessions: make(map[string]*model.Session)}
	cfg := config.SessionConfig{
		IdleTimeout:           30 * time.Minute,
		AbsoluteTimeout:       12 * time.Hour,
		MaxConcurrentSessions: 3,
		TokenRotationInterval: 15 * time.Minute,
	}
	return usecase.NewSessionManager(store, &captureAudit{}, cfg), store
}

func seedSession(store *memSessionStore, id, userID string, lastActivity time.Time) *model.Session {
	now := time.Now()
	session := &model.Session{
		SessionID:      id,
		UserID:         userID,
		UserRole:       model.RolePatient,
		CreatedAt:      now.Add(-time.Hour),
		LastActivityAt: lastActivity,
		ExpiresAt:      now.Add(11 * time.Hour),
		IsActive:       true,
	}
	store.sessions[id] = session
	return session
}

func gateRouter(manager *usecase.SessionManager) *gin.Engine {
	router := gin.New()
	router.GET("/r", identityStub("user-1", "patient"), RequireSession(manager), func(c *gin.Context) {
		session := c.MustGet("session").(*model.Session)
		c.JSON(http.StatusOK, gin.H{"session_id": session.SessionID})
	})
	return router
}

func TestRequireSession(t *testing.T) {
	manager, store := newGateFixture()
	seedSession(store, "live-session", "user-1", time.Now())
	seedSession(store, "stale-session", "user-1", time.Now().Add(-45*time.Minute))
	seedSession(store, "other-session", "user-2", time.Now())

	tests := []struct {
		name       string
		header     string
		cookie     string
		wantStatus int
		wantReason string
	}{
		{"valid via header", "live-session", "", http.StatusOK, ""},
		{"valid via cookie", "", "live-session", http.StatusOK, ""},
		{"missing session id", "", "", http.StatusUnauthorized, "no_session_id"},
		{"unknown session", "nope", "", http.StatusUnauthorized, "session_not_found"},
		{"idle timeout", "stale-session", "", http.StatusUnauthorized, "idle_timeout"},
		{"someone else's session", "other-session", "", http.StatusUnauthorized, "user_mismatch"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// idle_timeout materializes on first validation, reseed per run
			if tt.header == "stale-session" {
				seedSession(store, "stale-session", "user-1", time.Now().Add(-45*time.Minute))
			}

			router := gateRouter(manager)
			req := httptest.NewRequest(http.MethodGet, "/r", nil)
			if tt.header != "" {
				req.Header.Set(SessionIDHeader, tt.header)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: tt.cookie})
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d: %s", w.Code, tt.wantStatus, w.Body.String())
			}
			if tt.wantReason != "" {
				var body map[string]any
				if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
					t.Fatalf("response not JSON: %v", err)
				}
				if body["reason"] != tt.wantReason {
					t.Errorf("reason = %v, want %q", body["reason"], tt.wantReason)
				}
				if body["requiresLogin"] != true {
					t.Errorf("body = %v, want requiresLogin", body)
				}
			}
		})
	}
}

func TestCheckTokenRotation(t *testing.T) {
	manager, store := newGateFixture()
	seedSession(store, "fresh", "user-1", time.Now())
	seedSession(store, "due", "user-1", time.Now().Add(-20*time.Minute))

	router := gin.New()
	router.GET("/r", CheckTokenRotation(manager), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	tests := []struct {
		name       string
		sessionID  string
		wantHeader string
	}{
		{"fresh session", "fresh", ""},
		{"rotation due", "due", "true"},
		{"no session", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/r", nil)
			if tt.sessionID != "" {
				req.Header.Set(SessionIDHeader, tt.sessionID)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if got := w.Header().Get("X-Token-Rotation-Required"); got != tt.wantHeader {
				t.Errorf("X-Token-Rotation-Required = %q, want %q", got, tt.wantHeader)
			}
		})
	}
}
