package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-courier-dashboard/components/shipments"
	"github.com/goliatone/go-courier-dashboard/pkg/identity"
)

type boardRenderer interface {
	RenderTemplate(ctx context.Context, viewer shipments.ViewerContext, query shipments.ViewQuery, out io.Writer) error
}

// SessionStore issues, ends and resolves session tokens.
type SessionStore interface {
	SignIn(ctx context.Context, creds identity.Credentials) (identity.Session, error)
	SignOut(ctx context.Context, token string) error
	Resolve(token string) (identity.Identity, bool)
}

// MuxConfig wires the net/http transport.
type MuxConfig struct {
	Handlers     *Handlers
	Controller   boardRenderer
	Broadcast    *shipments.BroadcastHook
	Sessions     SessionStore
	BasePath     string
	SecureCookie bool
	Logger       *zap.Logger
}

// SessionViewer resolves the viewer from the request's session token.
// Requests without a valid token get an empty viewer.
func SessionViewer(sessions SessionStore) ViewerFunc {
	return func(r *http.Request) shipments.ViewerContext {
		if sessions == nil {
			return shipments.ViewerContext{}
		}
		id, ok := sessions.Resolve(identity.TokenFromRequest(r))
		if !ok {
			return shipments.ViewerContext{}
		}
		return ViewerFromIdentity(id)
	}
}

// ViewerFromIdentity maps a session identity onto the board viewer.
func ViewerFromIdentity(id identity.Identity) shipments.ViewerContext {
	return shipments.ViewerContext{
		SessionID: id.SessionID,
		Role:      id.Role,
		Name:      id.Name,
		Expires:   id.ExpiresAt,
	}
}

// NewMux mounts the board endpoints on a standard library mux.
func NewMux(cfg MuxConfig) (http.Handler, error) {
	if cfg.Handlers == nil {
		return nil, errors.New("httpapi: handlers are required")
	}
	base := strings.TrimRight(cfg.BasePath, "/")
	if base == "" {
		base = "/admin"
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	h := cfg.Handlers
	if h.Viewer == nil {
		h.Viewer = SessionViewer(cfg.Sessions)
	}

	mux := http.NewServeMux()
	if cfg.Controller != nil {
		mux.HandleFunc("GET "+base+"/shipments", func(w http.ResponseWriter, r *http.Request) {
			page, _ := strconv.Atoi(r.URL.Query().Get("page"))
			query := shipments.ViewQuery{Tab: r.URL.Query().Get("tab"), Page: page}
			var buf bytes.Buffer
			if err := cfg.Controller.RenderTemplate(r.Context(), h.viewer(r), query, &buf); err != nil {
				logger.Error("render board failed", zap.Error(err))
				writeError(w, err)
				return
			}
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = w.Write(buf.Bytes())
		})
	}
	if h.View != nil {
		mux.HandleFunc("GET "+base+"/shipments/_view", h.HandleView)
	}
	if h.Refresh != nil {
		mux.HandleFunc("POST "+base+"/shipments/refresh", h.HandleRefresh)
	}
	if h.Assign != nil {
		mux.HandleFunc("POST "+base+"/shipments/{awb}/assignment", func(w http.ResponseWriter, r *http.Request) {
			h.HandleAssign(w, r, r.PathValue("awb"))
		})
	}
	if h.Dismiss != nil {
		mux.HandleFunc("DELETE "+base+"/shipments/{awb}/failure", func(w http.ResponseWriter, r *http.Request) {
			h.HandleDismissFailure(w, r, r.PathValue("awb"))
		})
	}
	if cfg.Broadcast != nil {
		mux.HandleFunc("GET "+base+"/shipments/ws", func(w http.ResponseWriter, r *http.Request) {
			if session, ok := streamSession(w, h.viewer(r)); ok {
				cfg.Broadcast.ServeWebSocket(w, r, session)
			}
		})
		mux.HandleFunc("GET "+base+"/shipments/events", func(w http.ResponseWriter, r *http.Request) {
			if session, ok := streamSession(w, h.viewer(r)); ok {
				cfg.Broadcast.ServeSSE(w, r, session)
			}
		})
	}
	if cfg.Sessions != nil {
		mux.HandleFunc("POST "+base+"/signin", func(w http.ResponseWriter, r *http.Request) {
			creds, err := readCredentials(r)
			if err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
				return
			}
			session, err := cfg.Sessions.SignIn(r.Context(), creds)
			if err != nil {
				if errors.Is(err, identity.ErrInvalidCredentials) {
					writeJSON(w, http.StatusUnauthorized, map[string]string{"error": err.Error()})
					return
				}
				writeError(w, err)
				return
			}
			http.SetCookie(w, identity.SessionCookie(session.Token, session.Expires, cfg.SecureCookie))
			writeJSON(w, http.StatusOK, map[string]string{
				"role": session.Identity.Role,
				"name": session.Identity.Name,
			})
		})
		mux.HandleFunc("POST "+base+"/signout", func(w http.ResponseWriter, r *http.Request) {
			if err := cfg.Sessions.SignOut(r.Context(), identity.TokenFromRequest(r)); err != nil {
				writeError(w, err)
				return
			}
			http.SetCookie(w, identity.ClearCookie(cfg.SecureCookie))
			writeJSON(w, http.StatusOK, map[string]string{"status": "signed_out"})
		})
	}
	return mux, nil
}

// readCredentials accepts a JSON body or a form post.
// streamSession answers 401 for viewers without a session; event streams
// never fall back to the every-session subscription.
func streamSession(w http.ResponseWriter, viewer shipments.ViewerContext) (string, bool) {
	if viewer.SessionID == "" || viewer.Role == "" {
		writeError(w, shipments.ErrNoIdentity)
		return "", false
	}
	return viewer.SessionID, true
}

func readCredentials(r *http.Request) (identity.Credentials, error) {
	var creds identity.Credentials
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
			return identity.Credentials{}, err
		}
		return creds, nil
	}
	if err := r.ParseForm(); err != nil {
		return identity.Credentials{}, err
	}
	creds.Email = r.PostFormValue("email")
	creds.Password = r.PostFormValue("password")
	return creds, nil
}
