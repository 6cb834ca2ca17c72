// Package handler contains the HTTP handlers of the explorer.
//
// Handlers parse the request, call the service, and write the response.
// They hold no business logic: all session state lives in service.ExplorerService.
package handler

import (
	"context"

	"github.com/sakif/repo-explorer/internal/model"
)

// ExplorerService is the part of service.ExplorerService the handlers use.
type ExplorerService interface {
	SubmitSearch(ctx context.Context, id, username string) (model.Snapshot, error)
	ChangeSortOrder(ctx context.Context, id, order string) (model.Snapshot, error)
	ChangePage(ctx context.Context, id string, page int) (model.Snapshot, error)
	Snapshot(ctx context.Context, id string) (model.Snapshot, error)
	Lookup(ctx context.Context, username string, page int, sort model.SortOrder) model.Snapshot
	Forget(ctx context.Context, id string) error
}
