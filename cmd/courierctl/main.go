package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/alecthomas/kong"
	"github.com/gofiber/fiber/v2"
	router "github.com/goliatone/go-router"
	"go.uber.org/zap"

	"github.com/goliatone/go-courier-dashboard/components/shipments"
	"github.com/goliatone/go-courier-dashboard/components/shipments/gorouter"
	"github.com/goliatone/go-courier-dashboard/components/shipments/httpapi"
	"github.com/goliatone/go-courier-dashboard/pkg/identity"
)

type cli struct {
	Config string `short:"c" type:"path" env:"COURIER_CONFIG" help:"Path to the YAML configuration file."`

	Serve        serveCmd        `cmd:"" help:"Serve the shipments board over HTTP."`
	View         viewCmd         `cmd:"" help:"Print one page of a role's board."`
	Assign       assignCmd       `cmd:"" help:"Assign a pickup person to a shipment."`
	Token        tokenCmd        `cmd:"" help:"Issue a session token for a role."`
	HashPassword hashPasswordCmd `cmd:"" name:"hash-password" help:"Print a bcrypt hash for a users entry."`
}

type serveCmd struct {
	Addr      string `help:"Listen address (overrides config)."`
	Transport string `default:"fiber" enum:"fiber,http" help:"HTTP transport (fiber,http)."`
}

type viewCmd struct {
	Role string `required:"" help:"Viewer role (admin or pickup person name)."`
	Tab  string `default:"pickup" help:"Tab to show (pickup, connections, paymentDone)."`
	Page int    `default:"1" help:"Page number."`
	JSON bool   `name:"json" help:"Print the board view as JSON."`
}

type assignCmd struct {
	Role   string `default:"admin" help:"Viewer role performing the assignment."`
	AWB    string `name:"awb" required:"" help:"AWB number of the shipment."`
	Person string `required:"" help:"Pickup person to assign."`
}

type tokenCmd struct {
	Role    string `required:"" help:"Role recorded in the token."`
	Name    string `help:"Display name recorded in the token."`
	Subject string `help:"Token subject (defaults to the role)."`
}

type hashPasswordCmd struct {
	Password string `arg:"" help:"Plain text password."`
}

func main() {
	var app cli
	ctx := kong.Parse(&app,
		kong.Description("Courier shipments dashboard."),
		kong.UsageOnError(),
	)
	err := ctx.Run(&app)
	ctx.FatalIfErrorf(err)
}

func (cmd *serveCmd) Run(root *cli) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := newApp(root.Config)
	if err != nil {
		return err
	}
	defer app.logger.Sync() //nolint:errcheck

	addr := app.cfg.Addr
	if cmd.Addr != "" {
		addr = cmd.Addr
	}
	sessions, err := app.sessions()
	if err != nil {
		return err
	}
	defer sessions.Close()
	go app.service.RunJanitor(ctx, time.Minute)
	executor := app.executor()

	switch cmd.Transport {
	case "http":
		return app.serveHTTP(ctx, addr, sessions, executor)
	default:
		server := router.NewFiberAdapter()
		if err := gorouter.Register(gorouter.Config[*fiber.App]{
			Router:       server.Router(),
			Controller:   app.controller,
			API:          executor,
			Broadcast:    app.hook,
			Sessions:     sessions,
			SecureCookie: app.cfg.Session.SecureCookie,
			BasePath:     app.cfg.BasePath,
		}); err != nil {
			return fmt.Errorf("courierctl: register routes: %w", err)
		}
		app.logger.Info("shipments board ready",
			zap.String("addr", addr),
			zap.String("transport", "fiber"),
			zap.String("board", app.cfg.BasePath+"/shipments"),
		)
		return server.Serve(addr)
	}
}

func (a *app) serveHTTP(ctx context.Context, addr string, sessions *identity.Sessions, executor *httpapi.CommandExecutor) error {
	handler, err := httpapi.NewMux(httpapi.MuxConfig{
		Handlers: &httpapi.Handlers{
			Assign:  executor.AssignCommander,
			Refresh: executor.RefreshCommander,
			Dismiss: executor.DismissCommander,
			View:    a.viewQuery(),
			Viewer:  httpapi.SessionViewer(sessions),
		},
		Controller:   a.controller,
		Broadcast:    a.hook,
		Sessions:     sessions,
		BasePath:     a.cfg.BasePath,
		SecureCookie: a.cfg.Session.SecureCookie,
		Logger:       a.logger.Named("http"),
	})
	if err != nil {
		return fmt.Errorf("courierctl: build mux: %w", err)
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	a.logger.Info("shipments board ready",
		zap.String("addr", addr),
		zap.String("transport", "http"),
		zap.String("board", a.cfg.BasePath+"/shipments"),
	)
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (cmd *viewCmd) Run(root *cli) error {
	app, err := newApp(root.Config)
	if err != nil {
		return err
	}
	defer app.logger.Sync() //nolint:errcheck

	viewer := cliViewer(cmd.Role)
	view, err := app.service.View(context.Background(), viewer, shipments.ViewQuery{Tab: cmd.Tab, Page: cmd.Page})
	if err != nil {
		return err
	}
	if view.UI.ErrorMessage != "" {
		return errors.New(view.UI.ErrorMessage)
	}
	if cmd.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(view)
	}
	return printBoard(os.Stdout, view)
}

func printBoard(out io.Writer, view shipments.BoardView) error {
	layout := shipments.LayoutFor(view.UI.ActiveTab)
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	headers := []string{"AWB", "STATUS", "ASSIGNEE"}
	for _, col := range layout.Columns {
		headers = append(headers, strings.ToUpper(col.Label))
	}
	fmt.Fprintln(tw, strings.Join(headers, "\t"))
	for _, record := range view.Page.Items {
		cells := []string{record.AWBNumber, string(record.Status), record.PickUpPersonName}
		for _, col := range layout.Columns {
			cells = append(cells, col.Value(record))
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(out, "%s: page %d of %d (%d shipments)\n",
		view.UI.ActiveTab.Label(), view.Page.Number, view.Page.TotalPages, view.Page.Total)
	return err
}

func (cmd *assignCmd) Run(root *cli) error {
	app, err := newApp(root.Config)
	if err != nil {
		return err
	}
	defer app.logger.Sync() //nolint:errcheck

	ctx := context.Background()
	viewer := cliViewer(cmd.Role)
	if _, err := app.service.View(ctx, viewer, shipments.ViewQuery{}); err != nil {
		return err
	}
	result, err := app.service.Assign(ctx, viewer, shipments.AssignRequest{AWBNumber: cmd.AWB, Person: cmd.Person})
	if err != nil {
		return err
	}
	if !result.OK {
		return fmt.Errorf("courierctl: assign %s: %s", cmd.AWB, result.Message())
	}
	fmt.Fprintf(os.Stdout, "✓ Assigned %s to %s after %d attempt(s)\n", cmd.AWB, cmd.Person, result.Attempts)
	return nil
}

func (cmd *tokenCmd) Run(root *cli) error {
	app, err := newApp(root.Config)
	if err != nil {
		return err
	}
	tokens, err := app.tokens()
	if err != nil {
		return err
	}
	subject := cmd.Subject
	if subject == "" {
		subject = cmd.Role
	}
	token, expires, err := tokens.Issue(identity.Identity{
		Subject:   subject,
		Role:      cmd.Role,
		Name:      cmd.Name,
		SessionID: newSessionID(),
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, token)
	fmt.Fprintf(os.Stderr, "expires %s\n", expires.Format(time.RFC3339))
	return nil
}

func (cmd *hashPasswordCmd) Run() error {
	hash, err := identity.HashPassword(cmd.Password)
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, hash)
	return nil
}

func cliViewer(role string) shipments.ViewerContext {
	return shipments.ViewerContext{SessionID: "cli", Role: role, Name: role}
}
