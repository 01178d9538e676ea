package shipments

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Board holds one session's view of the sheets: the last fetched records, the
// assignment index, the UI state and pending assignment failures.
type Board struct {
	id        string
	fetcher   *Fetcher
	updater   *Updater
	roles     RoleDirectory
	pageSize  int
	hook      RefreshHook
	telemetry Telemetry
	logger    *zap.Logger
	now       func() time.Time

	mu          sync.Mutex
	viewer      ViewerContext
	expires     time.Time
	identified  bool
	loadedRole  string
	loadGen     uint64
	assignGen   uint64
	records     []ShipmentRecord
	assignments AssignmentIndex
	merged      []ShipmentRecord
	ui          UIState
	failures    map[string]AssignmentFailure
}

// BoardOptions configures a Board.
type BoardOptions struct {
	ID        string
	Fetcher   *Fetcher
	Updater   *Updater
	Roles     RoleDirectory
	PageSize  int
	Hook      RefreshHook
	Telemetry Telemetry
	Logger    *zap.Logger
	Now       func() time.Time
}

// NewBoard builds a board with the pickup tab on page one selected.
func NewBoard(opts BoardOptions) *Board {
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	if opts.Hook == nil {
		opts.Hook = noopRefreshHook{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Board{
		id:          opts.ID,
		fetcher:     opts.Fetcher,
		updater:     opts.Updater,
		roles:       opts.Roles.normalized(),
		pageSize:    opts.PageSize,
		hook:        opts.Hook,
		telemetry:   normalizeTelemetry(opts.Telemetry),
		logger:      normalizeLogger(opts.Logger).With(zap.String("board", opts.ID)),
		now:         opts.Now,
		assignments: AssignmentIndex{},
		ui:          UIState{ActiveTab: TabPickup, CurrentPage: 1},
		failures:    map[string]AssignmentFailure{},
	}
}

// ID returns the session id the board belongs to.
func (b *Board) ID() string { return b.id }

// Identify publishes the viewer identity. The first known identity, and every
// role change after it, triggers a load. A viewer without a recognised role
// loads nothing.
func (b *Board) Identify(ctx context.Context, viewer ViewerContext) error {
	b.mu.Lock()
	b.viewer = viewer
	if b.roles.Classify(viewer.Role) == RoleNone {
		b.mu.Unlock()
		return nil
	}
	changed := !b.identified || b.loadedRole != viewer.Role
	b.identified = true
	if changed {
		b.loadedRole = viewer.Role
	}
	b.mu.Unlock()
	if !changed {
		return nil
	}
	return b.Load(ctx)
}

// Load fetches the shipment list, replaces the records wholesale, then fetches
// the assignment index. Overlapping loads are tagged with a generation and only
// the latest one is applied. The returned error is the classified failure of
// this load, if any.
func (b *Board) Load(ctx context.Context) error {
	gen := b.beginLoad()

	records, err := b.fetcher.Shipments(ctx)
	if err != nil {
		b.failLoad(gen, err)
		return err
	}
	if !b.commitRecords(gen, records) {
		b.telemetry.Record(ctx, "shipments.load.discarded", map[string]any{"board": b.id, "generation": gen})
		return nil
	}

	if err := b.RefreshAssignments(ctx); err != nil {
		b.logger.Error("fetching assignments failed", zap.Error(err))
	}

	b.mu.Lock()
	latest := gen == b.loadGen
	if latest {
		b.ui.Loading = false
	}
	count := len(b.records)
	b.mu.Unlock()
	if !latest {
		return nil
	}

	b.notify(ctx, BoardEvent{Type: EventBoardLoaded})
	b.telemetry.Record(ctx, "shipments.load", map[string]any{"board": b.id, "records": count})
	return nil
}

// RefreshAssignments re-fetches the assignment index and merges it into the
// records. A failure leaves the previous index in place.
func (b *Board) RefreshAssignments(ctx context.Context) error {
	b.mu.Lock()
	b.assignGen++
	gen := b.assignGen
	b.mu.Unlock()

	index, err := b.fetcher.Assignments(ctx)
	if err != nil {
		return err
	}

	b.mu.Lock()
	if gen != b.assignGen {
		b.mu.Unlock()
		return nil
	}
	b.assignments = index
	b.merged = mergeAssignments(b.records, b.assignments)
	b.mu.Unlock()
	b.notify(ctx, BoardEvent{Type: EventAssignmentsRefresh})
	return nil
}

func (b *Board) beginLoad() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.loadGen++
	b.ui.Loading = true
	b.ui.ErrorMessage = ""
	return b.loadGen
}

func (b *Board) commitRecords(gen uint64, records []ShipmentRecord) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if gen != b.loadGen {
		return false
	}
	b.records = records
	b.merged = mergeAssignments(b.records, b.assignments)
	return true
}

func (b *Board) failLoad(gen uint64, err error) {
	message := err.Error()
	var fe *FetchError
	if errors.As(err, &fe) {
		message = fe.Display()
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if gen != b.loadGen {
		return
	}
	b.ui.ErrorMessage = message
	b.ui.Loading = false
	b.logger.Warn("loading shipments failed", zap.String("message", message), zap.Error(err))
}

// View derives the visible page. A non-empty query tab or positive page
// updates the board's selection first; changing tab resets to page one.
func (b *Board) View(query ViewQuery) BoardView {
	b.mu.Lock()
	defer b.mu.Unlock()
	if tab := ParseTab(query.Tab); tab != "" && tab != b.ui.ActiveTab {
		b.ui.ActiveTab = tab
		b.ui.CurrentPage = 1
	}
	if query.Page > 0 {
		b.ui.CurrentPage = query.Page
	}
	failures := make([]AssignmentFailure, 0, len(b.failures))
	for _, f := range b.failures {
		failures = append(failures, f)
	}
	sort.Slice(failures, func(i, j int) bool {
		return failures[i].At.Before(failures[j].At)
	})
	return BoardView{
		Viewer:        b.viewer,
		UI:            b.ui,
		Page:          BuildPage(b.merged, b.viewer.Role, b.roles, b.ui.ActiveTab, b.ui.CurrentPage, b.pageSize),
		Counts:        CountByTab(b.merged, b.viewer.Role, b.roles),
		Failures:      failures,
		AssigneeNames: b.roles.AssigneeOptions(),
	}
}

// Assign updates the pickup person of awb on behalf of role. The shipment must
// be one role can see on this board. On success the assignment list is
// re-fetched once and any failure indicator for awb is cleared; on failure a
// dismissible indicator is recorded.
func (b *Board) Assign(ctx context.Context, role, awb, person string) (AssignResult, error) {
	if awb == "" {
		return AssignResult{}, errMissingAWB
	}
	if !b.roles.ValidAssignee(person) {
		return AssignResult{}, ErrUnknownAssignee
	}
	if !b.Visible(role, awb) {
		return AssignResult{}, ErrNotVisible
	}
	if b.updater == nil {
		return AssignResult{}, errMissingWriter
	}
	result := b.updater.Assign(ctx, awb, person)
	if !result.OK {
		b.mu.Lock()
		b.failures[awb] = AssignmentFailure{
			AWBNumber: awb,
			Person:    person,
			Message:   result.Message(),
			Attempts:  result.Attempts,
			At:        b.now(),
		}
		b.mu.Unlock()
		b.notify(ctx, BoardEvent{Type: EventAssignmentFailed, AWBNumber: awb, Person: person, Message: result.Message()})
		return result, nil
	}

	b.mu.Lock()
	delete(b.failures, awb)
	b.mu.Unlock()
	if err := b.RefreshAssignments(ctx); err != nil {
		b.logger.Error("refreshing assignments after update failed", zap.String("awb", awb), zap.Error(err))
	}
	b.notify(ctx, BoardEvent{Type: EventAssignmentUpdated, AWBNumber: awb, Person: person})
	return result, nil
}

// Visible reports whether awb is among the loaded records role may see.
func (b *Board) Visible(role, awb string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, r := range FilterByRole(b.merged, role, b.roles) {
		if r.AWBNumber == awb {
			return true
		}
	}
	return false
}

// extend moves the board expiry to the later of its current value and
// expires. A zero expiry on either side pins the board.
func (b *Board) extend(expires time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if expires.IsZero() {
		return
	}
	if b.expires.IsZero() || expires.After(b.expires) {
		b.expires = expires
	}
}

// Expired reports whether the session behind the board lapsed before now.
func (b *Board) Expired(now time.Time) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return !b.expires.IsZero() && !now.Before(b.expires)
}

// DismissFailure clears the failure indicator of awb.
func (b *Board) DismissFailure(ctx context.Context, awb string) bool {
	b.mu.Lock()
	_, ok := b.failures[awb]
	delete(b.failures, awb)
	b.mu.Unlock()
	if ok {
		b.notify(ctx, BoardEvent{Type: EventFailureDismissed, AWBNumber: awb})
	}
	return ok
}

func (b *Board) notify(ctx context.Context, event BoardEvent) {
	event.SessionID = b.id
	if event.At.IsZero() {
		event.At = b.now()
	}
	if err := b.hook.BoardUpdated(ctx, event); err != nil {
		b.logger.Warn("refresh hook failed", zap.String("event", event.Type), zap.Error(err))
	}
}

type noopRefreshHook struct{}

func (noopRefreshHook) BoardUpdated(context.Context, BoardEvent) error { return nil }
