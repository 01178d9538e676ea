package gorouter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	router "github.com/goliatone/go-router"

	"github.com/goliatone/go-courier-dashboard/components/shipments"
	"github.com/goliatone/go-courier-dashboard/components/shipments/commands"
	"github.com/goliatone/go-courier-dashboard/components/shipments/httpapi"
	"github.com/goliatone/go-courier-dashboard/pkg/identity"
)

// ViewerResolver converts a router.Context into a shipments.ViewerContext.
type ViewerResolver func(router.Context) shipments.ViewerContext

// Config wires go-router with the board controller, commands and hooks.
type Config[T any] struct {
	Router         router.Router[T]
	Controller     *shipments.Controller
	API            httpapi.Executor
	Broadcast      *shipments.BroadcastHook
	Sessions       httpapi.SessionStore
	ViewerResolver ViewerResolver
	SecureCookie   bool
	BasePath       string
	Routes         RouteConfig
}

// RouteConfig customizes the relative paths used for board endpoints.
type RouteConfig struct {
	HTML       string
	View       string
	Refresh    string
	Assignment string
	Failure    string
	SignIn     string
	SignOut    string
	WebSocket  string
}

// Register mounts board routes (HTML, JSON, REST, sessions, WebSocket) on a go-router router.
func Register[T any](cfg Config[T]) error {
	if cfg.Router == nil {
		return errors.New("gorouter: router is required")
	}
	if cfg.Controller == nil {
		return errors.New("gorouter: controller is required")
	}
	routes := defaultRouteConfig(cfg.Routes)
	base := cfg.BasePath
	if base == "" {
		base = "/admin"
	}
	viewerResolver := cfg.ViewerResolver
	if viewerResolver == nil {
		viewerResolver = sessionViewerResolver(cfg.Sessions)
	}

	group := cfg.Router.Group(base)

	group.Get(routes.HTML, router.WrapHandler(func(ctx router.Context) error {
		var buf bytes.Buffer
		if err := cfg.Controller.RenderTemplate(ctx.Context(), viewerResolver(ctx), viewQuery(ctx), &buf); err != nil {
			return respondError(ctx, err)
		}
		ctx.SetHeader("Content-Type", "text/html; charset=utf-8")
		return ctx.Send(buf.Bytes())
	}))

	group.Get(routes.View, router.WrapHandler(func(ctx router.Context) error {
		payload, err := cfg.Controller.ViewPayload(ctx.Context(), viewerResolver(ctx), viewQuery(ctx))
		if err != nil {
			return respondError(ctx, err)
		}
		return ctx.JSON(http.StatusOK, payload)
	}))

	if cfg.API != nil {
		registerAPI(group, cfg.API, viewerResolver, routes)
	}
	if cfg.Sessions != nil {
		registerSessions(group, cfg.Sessions, cfg.SecureCookie, routes)
	}
	if cfg.Broadcast != nil {
		registerWebSocket(group, cfg.Broadcast, viewerResolver, routes.WebSocket)
	}
	return nil
}

func registerAPI[T any](r router.Router[T], api httpapi.Executor, resolver ViewerResolver, routes RouteConfig) {
	r.Post(routes.Refresh, router.WrapHandler(func(ctx router.Context) error {
		if err := api.Refresh(ctx.Context(), commands.RefreshBoardInput{Viewer: resolver(ctx)}); err != nil {
			return respondError(ctx, err)
		}
		return ctx.JSON(http.StatusOK, map[string]string{"status": "refreshed"})
	}))

	r.Post(routes.Assignment, router.WrapHandler(func(ctx router.Context) error {
		awb := ctx.Param("awb")
		if awb == "" {
			return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "awb number is required"})
		}
		var payload httpapi.AssignPayload
		if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
			return ctx.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		var result shipments.AssignResult
		err := api.Assign(ctx.Context(), commands.AssignPickupInput{
			Viewer:    resolver(ctx),
			AWBNumber: awb,
			Person:    payload.Person,
			Result:    &result,
		})
		if err != nil {
			status, message := httpapi.ErrorStatus(err)
			body := map[string]any{"error": message}
			var failed *shipments.AssignmentFailedError
			if errors.As(err, &failed) {
				body["result"] = failed.Result
			}
			return ctx.JSON(status, body)
		}
		return ctx.JSON(http.StatusOK, map[string]any{"result": result})
	}))

	r.Delete(routes.Failure, router.WrapHandler(func(ctx router.Context) error {
		input := commands.DismissFailureInput{Viewer: resolver(ctx), AWBNumber: ctx.Param("awb")}
		if err := api.Dismiss(ctx.Context(), input); err != nil {
			return respondError(ctx, err)
		}
		return ctx.JSON(http.StatusOK, map[string]string{"status": "dismissed"})
	}))
}

func registerSessions[T any](r router.Router[T], sessions httpapi.SessionStore, secure bool, routes RouteConfig) {
	r.Post(routes.SignIn, router.WrapHandler(func(ctx router.Context) error {
		var creds identity.Credentials
		if err := json.Unmarshal(ctx.Body(), &creds); err != nil {
			return ctx.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		session, err := sessions.SignIn(ctx.Context(), creds)
		if err != nil {
			if errors.Is(err, identity.ErrInvalidCredentials) {
				return ctx.JSON(http.StatusUnauthorized, map[string]string{"error": err.Error()})
			}
			return respondError(ctx, err)
		}
		ctx.SetHeader("Set-Cookie", identity.SessionCookie(session.Token, session.Expires, secure).String())
		return ctx.JSON(http.StatusOK, map[string]string{
			"role": session.Identity.Role,
			"name": session.Identity.Name,
		})
	}))

	r.Post(routes.SignOut, router.WrapHandler(func(ctx router.Context) error {
		token := identity.TokenFromHeaders(ctx.Header("Cookie"), ctx.Header("Authorization"))
		if err := sessions.SignOut(ctx.Context(), token); err != nil {
			return respondError(ctx, err)
		}
		ctx.SetHeader("Set-Cookie", identity.ClearCookie(secure).String())
		return ctx.JSON(http.StatusOK, map[string]string{"status": "signed_out"})
	}))
}

// errNoSession refuses event streams to connections without a signed-in session.
var errNoSession = errors.New("gorouter: event stream requires a signed-in session")

// registerWebSocket streams the connecting session's board events. The
// session is resolved from the upgrade request's cookie or bearer header.
func registerWebSocket[T any](r router.Router[T], hook *shipments.BroadcastHook, resolver ViewerResolver, path string) {
	cfg := router.DefaultWebSocketConfig()
	r.WebSocket(path, cfg, func(ws router.WebSocketContext) error {
		viewer := resolver(ws)
		err := streamBoardEvents(ws.Context(), hook, viewer, ws.WriteJSON)
		if errors.Is(err, errNoSession) {
			_ = ws.WriteJSON(map[string]string{"error": err.Error()})
		}
		if closeErr := ws.Close(); err == nil {
			err = closeErr
		}
		return err
	})
}

// streamBoardEvents forwards viewer's session events to write until ctx is
// done or the subscription closes.
func streamBoardEvents(ctx context.Context, hook *shipments.BroadcastHook, viewer shipments.ViewerContext, write func(any) error) error {
	if viewer.SessionID == "" || viewer.Role == "" {
		return errNoSession
	}
	events, cancel := hook.Subscribe(viewer.SessionID)
	defer cancel()
	for {
		select {
		case event, ok := <-events:
			if !ok {
				return nil
			}
			if event.SessionID != viewer.SessionID {
				continue
			}
			if err := write(event); err != nil {
				return err
			}
		case <-ctx.Done():
			return nil
		}
	}
}

func sessionViewerResolver(sessions httpapi.SessionStore) ViewerResolver {
	return func(ctx router.Context) shipments.ViewerContext {
		if viewer, ok := ctx.Locals("viewer").(shipments.ViewerContext); ok {
			return viewer
		}
		return viewerFromHeaders(sessions, ctx.Header("Cookie"), ctx.Header("Authorization"))
	}
}

func viewerFromHeaders(sessions httpapi.SessionStore, cookie, authorization string) shipments.ViewerContext {
	if sessions == nil {
		return shipments.ViewerContext{}
	}
	id, ok := sessions.Resolve(identity.TokenFromHeaders(cookie, authorization))
	if !ok {
		return shipments.ViewerContext{}
	}
	return httpapi.ViewerFromIdentity(id)
}

func viewQuery(ctx router.Context) shipments.ViewQuery {
	page, _ := strconv.Atoi(strings.TrimSpace(ctx.Query("page")))
	return shipments.ViewQuery{Tab: ctx.Query("tab"), Page: page}
}

func respondError(ctx router.Context, err error) error {
	status, message := httpapi.ErrorStatus(err)
	return ctx.JSON(status, map[string]string{"error": message})
}

func defaultRouteConfig(routes RouteConfig) RouteConfig {
	if routes.HTML == "" {
		routes.HTML = "/shipments"
	}
	if routes.View == "" {
		routes.View = "/shipments/_view"
	}
	if routes.Refresh == "" {
		routes.Refresh = "/shipments/refresh"
	}
	if routes.Assignment == "" {
		routes.Assignment = "/shipments/:awb/assignment"
	}
	if routes.Failure == "" {
		routes.Failure = "/shipments/:awb/failure"
	}
	if routes.SignIn == "" {
		routes.SignIn = "/signin"
	}
	if routes.SignOut == "" {
		routes.SignOut = "/signout"
	}
	if routes.WebSocket == "" {
		routes.WebSocket = "/shipments/ws"
	}
	return routes
}
