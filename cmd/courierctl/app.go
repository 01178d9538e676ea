package main

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/goliatone/go-courier-dashboard/components/shipments"
	"github.com/goliatone/go-courier-dashboard/components/shipments/commands"
	"github.com/goliatone/go-courier-dashboard/components/shipments/httpapi"
	"github.com/goliatone/go-courier-dashboard/components/shipments/queries"
	"github.com/goliatone/go-courier-dashboard/pkg/config"
	"github.com/goliatone/go-courier-dashboard/pkg/identity"
	"github.com/goliatone/go-courier-dashboard/pkg/sheets"
)

// app holds the collaborators shared by every subcommand.
type app struct {
	cfg        config.Config
	logger     *zap.Logger
	service    *shipments.Service
	controller *shipments.Controller
	hook       *shipments.BroadcastHook
	telemetry  shipments.Telemetry
}

func newApp(configPath string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	logger, err := config.NewLogger(cfg.Log)
	if err != nil {
		return nil, err
	}

	clientCfg := cfg.SheetsClientConfig()
	clientCfg.Logger = logger.Named("sheets")
	client, err := sheets.New(clientCfg)
	if err != nil {
		return nil, fmt.Errorf("courierctl: sheets client: %w", err)
	}

	hook := shipments.NewBroadcastHook()
	telemetry := shipments.NewZapTelemetry(logger)
	service := shipments.NewService(shipments.Options{
		Client:      client,
		Roles:       cfg.RoleDirectory(),
		PageSize:    cfg.Board.PageSize,
		MaxAttempts: cfg.Retry.MaxAttempts,
		Backoff:     cfg.Retry.Backoff.Std(),
		RefreshHook: hook,
		Telemetry:   telemetry,
		Logger:      logger.Named("shipments"),
	})

	renderer, err := shipments.NewTemplateRenderer()
	if err != nil {
		return nil, fmt.Errorf("courierctl: templates: %w", err)
	}
	var chart *shipments.StatusChart
	if !cfg.Chart.Disabled {
		options := []shipments.StatusChartOption{}
		if cfg.Chart.Theme != "" {
			options = append(options, shipments.WithChartTheme(cfg.Chart.Theme))
		}
		if cfg.Chart.AssetsHost != "" {
			options = append(options, shipments.WithChartAssetsHost(cfg.Chart.AssetsHost))
		}
		chart = shipments.NewStatusChart(options...)
	}
	controller := shipments.NewController(shipments.ControllerOptions{
		Service:  service,
		Renderer: renderer,
		Chart:    chart,
		Maps:     shipments.MapLinker{BaseURL: cfg.Maps.BaseURL},
	})

	return &app{
		cfg:        cfg,
		logger:     logger,
		service:    service,
		controller: controller,
		hook:       hook,
		telemetry:  telemetry,
	}, nil
}

func (a *app) executor() *httpapi.CommandExecutor {
	return &httpapi.CommandExecutor{
		AssignCommander:  commands.NewAssignPickupCommand(a.service, a.telemetry),
		RefreshCommander: commands.NewRefreshBoardCommand(a.service, a.telemetry),
		DismissCommander: commands.NewDismissFailureCommand(a.service, a.telemetry),
	}
}

func (a *app) viewQuery() *queries.BoardViewQuery {
	return queries.NewBoardViewQuery(a.service)
}

func (a *app) tokens() (*identity.Tokens, error) {
	if a.cfg.Session.Secret == "" {
		return nil, errors.New("courierctl: session.secret (or COURIER_SESSION_SECRET) is required")
	}
	return identity.NewTokens(a.cfg.Session.Secret, identity.WithTTL(a.cfg.Session.TTL.Std()))
}

func (a *app) sessions() (*identity.Sessions, error) {
	tokens, err := a.tokens()
	if err != nil {
		return nil, err
	}
	return identity.NewSessions(identity.SessionsOptions{
		Provider: identity.NewStaticProvider(a.cfg.Users),
		Tokens:   tokens,
		OnEnd:    a.service.EndSession,
		Logger:   a.logger.Named("sessions"),
	})
}

func newSessionID() string {
	return uuid.NewString()
}
