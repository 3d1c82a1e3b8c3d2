package requisition

import "context"

// Repository defines the persistence port for the requisition aggregate.
// Implementations must apply each mutating call as a single transaction so
// that header and item changes commit or roll back together.
type Repository interface {
	// FindByID loads a requisition with its items ordered by row number.
	FindByID(ctx context.Context, id int64) (*Requisition, error)

	// FindAll returns all requisitions with their items.
	FindAll(ctx context.Context) ([]*Requisition, error)

	// Count returns the total number of requisitions in the store.
	Count(ctx context.Context) (int64, error)

	// Save persists the aggregate. On insert it assigns the id and
	// timestamps; on update it writes the header, inserts new items and
	// removes items no longer present. Existing item rows are not
	// rewritten here; field-level item updates go through
	// UpdateItemWithVersion.
	Save(ctx context.Context, r *Requisition) error

	// Delete removes a requisition and cascades item deletion.
	Delete(ctx context.Context, id int64) error

	// UpdateItemWithVersion commits an item patch with a conditional
	// update on the version column: the write succeeds only if the stored
	// version still equals expectedVersion, atomically incrementing it.
	// The requisition's recomputed total is persisted in the same
	// transaction. A failed compare yields an OPTIMISTIC_LOCK_CONFLICT
	// domain error and leaves all state unchanged.
	UpdateItemWithVersion(ctx context.Context, r *Requisition, item *Item, expectedVersion int64) error
}
