package httpapi

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"

	"github.com/goliatone/go-courier-dashboard/components/shipments/commands"
)

// Executor is the command surface transports call into.
type Executor interface {
	Assign(ctx context.Context, input commands.AssignPickupInput) error
	Refresh(ctx context.Context, input commands.RefreshBoardInput) error
	Dismiss(ctx context.Context, input commands.DismissFailureInput) error
}

// CommandExecutor adapts go-command commanders to Executor.
type CommandExecutor struct {
	AssignCommander  gocommand.Commander[commands.AssignPickupInput]
	RefreshCommander gocommand.Commander[commands.RefreshBoardInput]
	DismissCommander gocommand.Commander[commands.DismissFailureInput]
}

var _ Executor = (*CommandExecutor)(nil)

func (e *CommandExecutor) Assign(ctx context.Context, input commands.AssignPickupInput) error {
	if e.AssignCommander == nil {
		return errors.New("httpapi: assign commander not configured")
	}
	return e.AssignCommander.Execute(ctx, input)
}

func (e *CommandExecutor) Refresh(ctx context.Context, input commands.RefreshBoardInput) error {
	if e.RefreshCommander == nil {
		return errors.New("httpapi: refresh commander not configured")
	}
	return e.RefreshCommander.Execute(ctx, input)
}

func (e *CommandExecutor) Dismiss(ctx context.Context, input commands.DismissFailureInput) error {
	if e.DismissCommander == nil {
		return errors.New("httpapi: dismiss commander not configured")
	}
	return e.DismissCommander.Execute(ctx, input)
}
