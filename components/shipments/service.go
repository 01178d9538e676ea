package shipments

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Options configures the shipments Service. Collaborators are provided via
// interfaces so applications can swap the sheet client, hooks and telemetry.
type Options struct {
	Client      SheetClient
	Roles       RoleDirectory
	PageSize    int
	MaxAttempts int
	Backoff     time.Duration
	Sleep       SleepFunc
	RefreshHook RefreshHook
	Telemetry   Telemetry
	Logger      *zap.Logger
	Now         func() time.Time
}

// Service owns one Board per session and routes viewer operations to it.
type Service struct {
	opts    Options
	fetcher *Fetcher
	updater *Updater

	mu     sync.Mutex
	boards map[string]*Board
}

// NewService builds a Service with safe defaults.
func NewService(opts Options) *Service {
	opts.Roles = opts.Roles.normalized()
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	if opts.RefreshHook == nil {
		opts.RefreshHook = noopRefreshHook{}
	}
	opts.Telemetry = normalizeTelemetry(opts.Telemetry)
	opts.Logger = normalizeLogger(opts.Logger)
	if opts.Now == nil {
		opts.Now = time.Now
	}
	var (
		source RecordSource
		writer AssignmentWriter
	)
	if opts.Client != nil {
		source, writer = opts.Client, opts.Client
	}
	return &Service{
		opts:    opts,
		fetcher: NewFetcher(source),
		updater: NewUpdater(UpdaterOptions{
			Writer:      writer,
			MaxAttempts: opts.MaxAttempts,
			Backoff:     opts.Backoff,
			Sleep:       opts.Sleep,
			Logger:      opts.Logger.Named("updater"),
			Telemetry:   opts.Telemetry,
		}),
		boards: map[string]*Board{},
	}
}

// Roles returns the role directory in use.
func (s *Service) Roles() RoleDirectory { return s.opts.Roles }

// Board returns the board of the viewer's session, creating it on first use.
// Boards of lapsed sessions are dropped on the way.
func (s *Service) Board(viewer ViewerContext) *Board {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pruneLocked(s.opts.Now())
	if board, ok := s.boards[viewer.SessionID]; ok {
		board.extend(viewer.Expires)
		return board
	}
	board := NewBoard(BoardOptions{
		ID:        viewer.SessionID,
		Fetcher:   s.fetcher,
		Updater:   s.updater,
		Roles:     s.opts.Roles,
		PageSize:  s.opts.PageSize,
		Hook:      s.opts.RefreshHook,
		Telemetry: s.opts.Telemetry,
		Logger:    s.opts.Logger.Named("board"),
		Now:       s.opts.Now,
	})
	board.extend(viewer.Expires)
	s.boards[viewer.SessionID] = board
	return board
}

// PruneExpired drops the boards of sessions whose token lapsed and returns
// how many were dropped.
func (s *Service) PruneExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pruneLocked(s.opts.Now())
}

func (s *Service) pruneLocked(now time.Time) int {
	dropped := 0
	for id, board := range s.boards {
		if board.Expired(now) {
			delete(s.boards, id)
			dropped++
		}
	}
	if dropped > 0 {
		s.opts.Logger.Debug("dropped expired boards", zap.Int("count", dropped))
	}
	return dropped
}

// RunJanitor prunes expired boards every interval until ctx is done.
func (s *Service) RunJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.PruneExpired()
		}
	}
}

// View identifies the viewer on its board (loading on first sight or role
// change) and returns the derived view. Load failures surface in UI.ErrorMessage.
func (s *Service) View(ctx context.Context, viewer ViewerContext, query ViewQuery) (BoardView, error) {
	board := s.Board(viewer)
	if err := board.Identify(ctx, viewer); err != nil {
		s.opts.Logger.Debug("board load failed", zap.String("session", viewer.SessionID), zap.Error(err))
	}
	view := board.View(query)
	s.recordTelemetry(ctx, "shipments.view", map[string]any{
		"role": viewer.Role,
		"tab":  string(view.UI.ActiveTab),
		"page": view.UI.CurrentPage,
	})
	return view, nil
}

// Refresh reloads the viewer's board and returns the classified load error.
func (s *Service) Refresh(ctx context.Context, viewer ViewerContext) error {
	board := s.Board(viewer)
	board.mu.Lock()
	first := !board.identified || board.loadedRole != viewer.Role
	board.mu.Unlock()
	if first {
		return board.Identify(ctx, viewer)
	}
	return board.Load(ctx)
}

// AssignRequest names the row by its AWB number, captured when the user acted.
type AssignRequest struct {
	AWBNumber string `json:"awb_number"`
	Person    string `json:"person"`
}

// Assign updates a pickup assignment from the viewer's board. Viewers
// without a recognised role are refused, and so are shipments the viewer
// cannot see.
func (s *Service) Assign(ctx context.Context, viewer ViewerContext, req AssignRequest) (AssignResult, error) {
	if s.opts.Roles.Classify(viewer.Role) == RoleNone {
		return AssignResult{}, ErrNoIdentity
	}
	board := s.Board(viewer)
	if err := board.Identify(ctx, viewer); err != nil {
		s.opts.Logger.Debug("board load failed", zap.String("session", viewer.SessionID), zap.Error(err))
	}
	result, err := board.Assign(ctx, viewer.Role, req.AWBNumber, req.Person)
	if err != nil {
		return result, err
	}
	s.recordTelemetry(ctx, "shipments.assign", map[string]any{
		"role":     viewer.Role,
		"awb":      req.AWBNumber,
		"person":   req.Person,
		"ok":       result.OK,
		"attempts": result.Attempts,
	})
	return result, nil
}

// DismissFailure clears an assignment failure indicator on the viewer's board.
func (s *Service) DismissFailure(ctx context.Context, viewer ViewerContext, awb string) bool {
	return s.Board(viewer).DismissFailure(ctx, awb)
}

// EndSession drops the board of a signed-out session.
func (s *Service) EndSession(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.boards, sessionID)
}

func (s *Service) recordTelemetry(ctx context.Context, event string, payload map[string]any) {
	s.opts.Telemetry.Record(ctx, event, payload)
}
