package reports

import "context"

// Repository describes the report operations of one account.
type Repository interface {
	// List returns every report in stored order.
	List(ctx context.Context) ([]Report, error)

	// Get returns a report by id or common.ErrorNotFound.
	Get(ctx context.Context, id string) (Report, error)

	// Save inserts r, or replaces the report with the same id, and returns
	// what was stored. An empty id creates a new report.
	Save(ctx context.Context, r Report) (Report, error)

	// Delete removes a report and its document.
	Delete(ctx context.Context, id string) error

	TripTypes(ctx context.Context) ([]string, error)
	SetTripTypes(ctx context.Context, types []string) error
}
