package repository

// Package repository contains data access layer abstractions. Implementations
// live in subpackages (e.g., postgres) inside this directory. No business
// logic here and no transaction control: repositories stage changes on the
// session they were bound to, and the unit of work decides when to commit.

import (
	"context"

	"itemapi/internal/model"
	"itemapi/internal/specification"
)

// Getter reads single entities by primary identity.
type Getter[T any] interface {
	// GetByID returns the entity or nil when no row matches. Absence is not
	// an error.
	GetByID(ctx context.Context, id int64) (*T, error)

	// Exists reports whether an entity with the given id exists.
	Exists(ctx context.Context, id int64) (bool, error)
}

// Lister reads entity collections with pagination and optional filtering.
type Lister[T any] interface {
	// GetAll returns entities using offset/limit pagination. The caller owns
	// both values; no upper bound is enforced here.
	GetAll(ctx context.Context, skip, limit int) ([]T, error)

	// FindBySpecification applies the specification's filter, then paginates.
	FindBySpecification(ctx context.Context, spec specification.Specification, skip, limit int) ([]T, error)

	// CountBySpecification counts matches ignoring pagination.
	CountBySpecification(ctx context.Context, spec specification.Specification) (int, error)

	// GetPaginatedWithFilters returns one page plus the total match count.
	// Both queries use the identical filter predicate. A nil spec means no
	// filtering.
	GetPaginatedWithFilters(ctx context.Context, spec specification.Specification, skip, limit int) (*PageResult[T], error)
}

// Writer stages entity mutations on the active transaction. None of these
// commit; persistence is finalized by the unit of work.
type Writer[T any] interface {
	// Create stages a new entity and fills in its generated identity.
	Create(ctx context.Context, entity *T) (*T, error)

	// Update writes the entity's current field values. Returns nil when the
	// entity no longer exists.
	Update(ctx context.Context, entity *T) (*T, error)

	// Delete stages removal by id. Returns false when no row matched.
	Delete(ctx context.Context, id int64) (bool, error)
}

// Repository is the full capability set for one entity type.
type Repository[T any] interface {
	Getter[T]
	Lister[T]
	Writer[T]
}

// ItemRepository extends the generic capabilities with item-specific queries.
type ItemRepository interface {
	Repository[model.Item]

	// GetByTitle returns the item with the exact title, or nil.
	GetByTitle(ctx context.Context, title string) (*model.Item, error)

	// GetActive returns active items with pagination.
	GetActive(ctx context.Context, skip, limit int) ([]model.Item, error)

	// GetByOwner returns items owned by the given user with pagination.
	GetByOwner(ctx context.Context, ownerID int64, skip, limit int) ([]model.Item, error)
}

// UserRepository currently uses only the generic capabilities.
type UserRepository interface {
	Repository[model.User]
}

// PageResult is a generic pagination result wrapper: one page of items plus
// the total match count for the same filter.
type PageResult[T any] struct {
	Items []T
	Total int
}

// Item filter predicates shared by repositories and services.

// ItemTitleEquals matches items with the exact title.
func ItemTitleEquals(title string) specification.Specification {
	return specification.Eq("title", title)
}

// ItemActive matches items with is_active = true.
func ItemActive() specification.Specification {
	return specification.Eq("is_active", true)
}

// ItemOwnedBy matches items owned by the given user.
func ItemOwnedBy(ownerID int64) specification.Specification {
	return specification.Eq("owner_id", ownerID)
}
