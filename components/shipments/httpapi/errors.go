package httpapi

import (
	"errors"
	"net/http"

	"github.com/goliatone/go-courier-dashboard/components/shipments"
)

// ErrorStatus maps a command error onto an HTTP status and the text shown to
// the user.
func ErrorStatus(err error) (int, string) {
	var (
		failed *shipments.AssignmentFailedError
		fetch  *shipments.FetchError
	)
	switch {
	case errors.Is(err, shipments.ErrNoIdentity):
		return http.StatusUnauthorized, err.Error()
	case errors.Is(err, shipments.ErrNotVisible):
		return http.StatusForbidden, err.Error()
	case errors.Is(err, shipments.ErrUnknownAssignee):
		return http.StatusBadRequest, err.Error()
	case errors.As(err, &failed):
		return http.StatusBadGateway, failed.Result.Message()
	case errors.As(err, &fetch):
		return http.StatusBadGateway, fetch.Display()
	default:
		return http.StatusInternalServerError, err.Error()
	}
}
