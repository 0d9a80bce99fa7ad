package service

import (
	"context"

	"itemapi/internal/cache"
	"itemapi/internal/model"
	"itemapi/internal/repository"
	"itemapi/internal/specification"
	"itemapi/internal/uow"
)

// ItemCreate is the validated input for creating an item.
type ItemCreate struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	IsActive    bool    `json:"is_active"`
	OwnerID     *int64  `json:"owner_id"`
}

// ItemUpdate is a partial update: only non-nil fields are applied.
type ItemUpdate struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"is_active"`
}

// applyTo merges the explicitly-set fields onto the loaded item. Identity
// never changes.
func (in ItemUpdate) applyTo(item *model.Item) {
	if in.Title != nil {
		item.Title = *in.Title
	}
	if in.Description != nil {
		item.Description = in.Description
	}
	if in.IsActive != nil {
		item.IsActive = *in.IsActive
	}
}

// ItemListResult is the service-level DTO for paginated items.
type ItemListResult struct {
	Items []model.Item `json:"data"`
	Total int          `json:"total"`
}

// ItemFilter selects items for paginated listing. Zero value means no
// filtering.
type ItemFilter struct {
	ActiveOnly bool
	Title      string
}

func (f ItemFilter) spec() specification.Specification {
	s := specification.All()
	if f.ActiveOnly {
		s = specification.And(s, repository.ItemActive())
	}
	if f.Title != "" {
		s = specification.And(s, repository.ItemTitleEquals(f.Title))
	}
	return s
}

// ItemService defines the business operations on items.
type ItemService interface {
	// GetItem returns the item or a not-found error.
	GetItem(ctx context.Context, id int64) (*model.Item, error)

	// GetItems lists items with pagination; activeOnly restricts to
	// published items.
	GetItems(ctx context.Context, skip, limit int, activeOnly bool) ([]model.Item, error)

	// GetItemsPage returns one page plus the total count for the same
	// filter.
	GetItemsPage(ctx context.Context, filter ItemFilter, skip, limit int) (*ItemListResult, error)

	// CreateItem creates an item; the title must be unique.
	CreateItem(ctx context.Context, in ItemCreate) (*model.Item, error)

	// UpdateItem applies a partial update; a changed title must stay unique.
	UpdateItem(ctx context.Context, id int64, in ItemUpdate) (*model.Item, error)

	// DeleteItem removes an item; items titled "default" are protected.
	DeleteItem(ctx context.Context, id int64) (*model.Item, error)

	// PublishItem marks an inactive item active; publishing twice fails.
	PublishItem(ctx context.Context, id int64) (*model.Item, error)

	// GetItemsByOwner lists a user's items; the user must exist.
	GetItemsByOwner(ctx context.Context, ownerID int64, skip, limit int) ([]model.Item, error)
}

// itemService coordinates item repositories inside one unit of work per
// operation. The cache is optional and best-effort; its unavailability never
// fails a store operation.
type itemService struct {
	uow   *uow.Factory
	cache *cache.Client
}

// NewItemService constructs an ItemService. cache may be nil.
func NewItemService(factory *uow.Factory, c *cache.Client) ItemService {
	return &itemService{uow: factory, cache: c}
}

func (s *itemService) GetItem(ctx context.Context, id int64) (*model.Item, error) {
	if cached, ok := s.cache.GetItem(ctx, id); ok {
		return cached, nil
	}

	var item *model.Item
	err := s.uow.Do(ctx, func(u *uow.UnitOfWork) error {
		var err error
		item, err = u.Items().GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, notFoundf("item with id %d not found", id)
	}

	s.cache.SetItem(ctx, item)
	return item, nil
}

func (s *itemService) GetItems(ctx context.Context, skip, limit int, activeOnly bool) ([]model.Item, error) {
	var items []model.Item
	err := s.uow.Do(ctx, func(u *uow.UnitOfWork) error {
		var err error
		if activeOnly {
			items, err = u.Items().GetActive(ctx, skip, limit)
		} else {
			items, err = u.Items().GetAll(ctx, skip, limit)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *itemService) GetItemsPage(ctx context.Context, filter ItemFilter, skip, limit int) (*ItemListResult, error) {
	var page *repository.PageResult[model.Item]
	err := s.uow.Do(ctx, func(u *uow.UnitOfWork) error {
		var err error
		page, err = u.Items().GetPaginatedWithFilters(ctx, filter.spec(), skip, limit)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &ItemListResult{Items: page.Items, Total: page.Total}, nil
}

func (s *itemService) CreateItem(ctx context.Context, in ItemCreate) (*model.Item, error) {
	var created *model.Item
	err := s.uow.Do(ctx, func(u *uow.UnitOfWork) error {
		existing, err := u.Items().GetByTitle(ctx, in.Title)
		if err != nil {
			return err
		}
		if existing != nil {
			return conflictf("item with title '%s' already exists", in.Title)
		}

		created, err = u.Items().Create(ctx, &model.Item{
			Title:       in.Title,
			Description: in.Description,
			IsActive:    in.IsActive,
			OwnerID:     in.OwnerID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *itemService) UpdateItem(ctx context.Context, id int64, in ItemUpdate) (*model.Item, error) {
	var updated *model.Item
	err := s.uow.Do(ctx, func(u *uow.UnitOfWork) error {
		item, err := u.Items().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if item == nil {
			return notFoundf("item with id %d not found", id)
		}

		if in.Title != nil && *in.Title != item.Title {
			existing, err := u.Items().GetByTitle(ctx, *in.Title)
			if err != nil {
				return err
			}
			if existing != nil {
				return conflictf("item with title '%s' already exists", *in.Title)
			}
		}

		in.applyTo(item)
		updated, err = u.Items().Update(ctx, item)
		if err != nil {
			return err
		}
		if updated == nil {
			return notFoundf("item with id %d not found", id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cache.InvalidateItem(ctx, id)
	return updated, nil
}

func (s *itemService) DeleteItem(ctx context.Context, id int64) (*model.Item, error) {
	var deleted *model.Item
	err := s.uow.Do(ctx, func(u *uow.UnitOfWork) error {
		item, err := u.Items().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if item == nil {
			return notFoundf("item with id %d not found", id)
		}

		if item.Title == "default" {
			return forbiddenf("default items cannot be deleted")
		}

		if _, err := u.Items().Delete(ctx, id); err != nil {
			return err
		}
		deleted = item
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cache.InvalidateItem(ctx, id)
	return deleted, nil
}

func (s *itemService) PublishItem(ctx context.Context, id int64) (*model.Item, error) {
	var published *model.Item
	err := s.uow.Do(ctx, func(u *uow.UnitOfWork) error {
		item, err := u.Items().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if item == nil {
			return notFoundf("item with id %d not found", id)
		}

		if item.IsActive {
			return invalidf("item is already published")
		}

		item.IsActive = true
		published, err = u.Items().Update(ctx, item)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.cache.InvalidateItem(ctx, id)
	return published, nil
}

func (s *itemService) GetItemsByOwner(ctx context.Context, ownerID int64, skip, limit int) ([]model.Item, error) {
	var items []model.Item
	err := s.uow.Do(ctx, func(u *uow.UnitOfWork) error {
		// Validate the referenced user before touching the item collection.
		exists, err := u.Users().Exists(ctx, ownerID)
		if err != nil {
			return err
		}
		if !exists {
			return notFoundf("user with id %d not found", ownerID)
		}

		items, err = u.Items().GetByOwner(ctx, ownerID, skip, limit)
		return err
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}
