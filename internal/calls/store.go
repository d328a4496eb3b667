package calls

import "context"

// Store persists CallState rows. Every method is one short transaction and
// none of them holds a transaction across external I/O.
type Store interface {
	Exists(ctx context.Context, uuid string) (bool, error)

	// Create inserts an active row unless one already exists for uuid.
	// It reports whether this call inserted the row.
	Create(ctx context.Context, uuid string, status ProviderStatus) (bool, error)

	Get(ctx context.Context, uuid string) (CallState, bool, error)

	// UpdateResults applies u to the active row. A missing row is not an
	// error; the bool reports whether a row was changed.
	UpdateResults(ctx context.Context, uuid string, u ResultUpdate) (bool, error)

	// Delete removes the active row for uuid and reports whether this caller
	// removed it. Concurrent deleters observe exactly one true.
	Delete(ctx context.Context, uuid string) (bool, error)

	List(ctx context.Context) ([]CallState, error)
	Search(ctx context.Context, substring string, page, limit int) ([]CallState, int, error)
}
