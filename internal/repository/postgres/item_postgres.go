package postgres

import (
	"context"

	"itemapi/internal/model"
	"itemapi/internal/repository"
)

// ItemPostgres is the PostgreSQL repository for items. The generic
// implementation covers CRUD and specification queries; item-specific
// lookups are expressed as specifications on top of it.
type ItemPostgres struct {
	*Generic[model.Item]
}

// NewItemPostgres creates an item repository bound to db.
func NewItemPostgres(db DBTX) *ItemPostgres {
	return &ItemPostgres{Generic: NewGeneric(db, itemMapping())}
}

var _ repository.ItemRepository = (*ItemPostgres)(nil)

func itemMapping() Mapping[model.Item] {
	return Mapping[model.Item]{
		Table:   "items",
		Columns: []string{"title", "description", "is_active", "owner_id"},
		ID:      func(i *model.Item) int64 { return i.ID },
		Values: func(i *model.Item) []any {
			return []any{i.Title, i.Description, i.IsActive, i.OwnerID}
		},
		Scan: func(row RowScanner) (*model.Item, error) {
			var i model.Item
			if err := row.Scan(&i.ID, &i.Title, &i.Description, &i.IsActive, &i.OwnerID); err != nil {
				return nil, err
			}
			return &i, nil
		},
	}
}

// GetByTitle returns the item with the exact title, or nil when none exists.
func (r *ItemPostgres) GetByTitle(ctx context.Context, title string) (*model.Item, error) {
	items, err := r.FindBySpecification(ctx, repository.ItemTitleEquals(title), 0, 1)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	return &items[0], nil
}

// GetActive returns active items with pagination.
func (r *ItemPostgres) GetActive(ctx context.Context, skip, limit int) ([]model.Item, error) {
	return r.FindBySpecification(ctx, repository.ItemActive(), skip, limit)
}

// GetByOwner returns items owned by the given user with pagination.
func (r *ItemPostgres) GetByOwner(ctx context.Context, ownerID int64, skip, limit int) ([]model.Item, error) {
	return r.FindBySpecification(ctx, repository.ItemOwnedBy(ownerID), skip, limit)
}
