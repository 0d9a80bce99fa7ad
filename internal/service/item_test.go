package service

import (
	"context"
	"database/sql"
	"testing"

	"itemapi/internal/uow"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newItemService(t *testing.T) (ItemService, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewItemService(uow.NewFactory(db), nil), mock, db
}

func emptyItemRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "title", "description", "is_active", "owner_id"})
}

func itemRow(id int64, title string, active bool) *sqlmock.Rows {
	return emptyItemRows().AddRow(id, title, nil, active, nil)
}

func assertKind(t *testing.T, err error, want Kind) {
	t.Helper()
	kind, ok := KindOf(err)
	require.True(t, ok, "expected a business error, got %v", err)
	assert.Equal(t, want, kind)
}

func TestItemService_CreateItem(t *testing.T) {
	ctx := context.Background()

	t.Run("creates when title is unused", func(t *testing.T) {
		svc, mock, _ := newItemService(t)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT id, title, description, is_active, owner_id FROM items WHERE title = \$1`).
			WithArgs("Alpha", 1, 0).
			WillReturnRows(emptyItemRows())
		mock.ExpectQuery(`INSERT INTO items`).
			WithArgs("Alpha", nil, false, nil).
			WillReturnRows(itemRow(1, "Alpha", false))
		mock.ExpectCommit()

		item, err := svc.CreateItem(ctx, ItemCreate{Title: "Alpha"})

		assert.NoError(t, err)
		require.NotNil(t, item)
		assert.Equal(t, int64(1), item.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate title conflicts before any insert", func(t *testing.T) {
		svc, mock, _ := newItemService(t)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT id, title, description, is_active, owner_id FROM items WHERE title = \$1`).
			WithArgs("Alpha", 1, 0).
			WillReturnRows(itemRow(1, "Alpha", true))
		mock.ExpectRollback()

		item, err := svc.CreateItem(ctx, ItemCreate{Title: "Alpha"})

		assert.Nil(t, item)
		assertKind(t, err, KindConflict)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestItemService_GetItem(t *testing.T) {
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		svc, mock, _ := newItemService(t)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT id, title, description, is_active, owner_id FROM items WHERE id = \$1`).
			WithArgs(int64(1)).
			WillReturnRows(itemRow(1, "Alpha", true))
		mock.ExpectCommit()

		item, err := svc.GetItem(ctx, 1)

		assert.NoError(t, err)
		require.NotNil(t, item)
		assert.Equal(t, "Alpha", item.Title)
	})

	t.Run("missing id is a not-found business error", func(t *testing.T) {
		svc, mock, _ := newItemService(t)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT id, title, description, is_active, owner_id FROM items WHERE id = \$1`).
			WithArgs(int64(99)).
			WillReturnRows(emptyItemRows())
		mock.ExpectCommit()

		item, err := svc.GetItem(ctx, 99)

		assert.Nil(t, item)
		assertKind(t, err, KindNotFound)
	})
}

func TestItemService_UpdateItem(t *testing.T) {
	ctx := context.Background()

	t.Run("partial update applies only set fields", func(t *testing.T) {
		svc, mock, _ := newItemService(t)

		newTitle := "Renamed"
		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT id, title, description, is_active, owner_id FROM items WHERE id = \$1`).
			WithArgs(int64(1)).
			WillReturnRows(itemRow(1, "Alpha", true))
		mock.ExpectQuery(`SELECT id, title, description, is_active, owner_id FROM items WHERE title = \$1`).
			WithArgs("Renamed", 1, 0).
			WillReturnRows(emptyItemRows())
		// is_active keeps its loaded value because the update left it unset.
		mock.ExpectQuery(`UPDATE items SET title = \$1, description = \$2, is_active = \$3, owner_id = \$4 WHERE id = \$5`).
			WithArgs("Renamed", nil, true, nil, int64(1)).
			WillReturnRows(itemRow(1, "Renamed", true))
		mock.ExpectCommit()

		item, err := svc.UpdateItem(ctx, 1, ItemUpdate{Title: &newTitle})

		assert.NoError(t, err)
		require.NotNil(t, item)
		assert.Equal(t, "Renamed", item.Title)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("changing to a taken title conflicts", func(t *testing.T) {
		svc, mock, _ := newItemService(t)

		newTitle := "Beta"
		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT id, title, description, is_active, owner_id FROM items WHERE id = \$1`).
			WithArgs(int64(1)).
			WillReturnRows(itemRow(1, "Alpha", true))
		mock.ExpectQuery(`SELECT id, title, description, is_active, owner_id FROM items WHERE title = \$1`).
			WithArgs("Beta", 1, 0).
			WillReturnRows(itemRow(2, "Beta", true))
		mock.ExpectRollback()

		item, err := svc.UpdateItem(ctx, 1, ItemUpdate{Title: &newTitle})

		assert.Nil(t, item)
		assertKind(t, err, KindConflict)
	})

	t.Run("unchanged title skips the uniqueness lookup", func(t *testing.T) {
		svc, mock, _ := newItemService(t)

		sameTitle := "Alpha"
		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT id, title, description, is_active, owner_id FROM items WHERE id = \$1`).
			WithArgs(int64(1)).
			WillReturnRows(itemRow(1, "Alpha", true))
		mock.ExpectQuery(`UPDATE items SET`).
			WithArgs("Alpha", nil, true, nil, int64(1)).
			WillReturnRows(itemRow(1, "Alpha", true))
		mock.ExpectCommit()

		_, err := svc.UpdateItem(ctx, 1, ItemUpdate{Title: &sameTitle})

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestItemService_DeleteItem(t *testing.T) {
	ctx := context.Background()

	t.Run("deletes an ordinary item", func(t *testing.T) {
		svc, mock, _ := newItemService(t)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT id, title, description, is_active, owner_id FROM items WHERE id = \$1`).
			WithArgs(int64(2)).
			WillReturnRows(itemRow(2, "Beta", true))
		mock.ExpectExec(`DELETE FROM items WHERE id = \$1`).
			WithArgs(int64(2)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		item, err := svc.DeleteItem(ctx, 2)

		assert.NoError(t, err)
		require.NotNil(t, item)
		assert.Equal(t, "Beta", item.Title)
	})

	t.Run("default item is protected, record persists", func(t *testing.T) {
		svc, mock, _ := newItemService(t)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT id, title, description, is_active, owner_id FROM items WHERE id = \$1`).
			WithArgs(int64(1)).
			WillReturnRows(itemRow(1, "default", true))
		mock.ExpectRollback()

		item, err := svc.DeleteItem(ctx, 1)

		assert.Nil(t, item)
		assertKind(t, err, KindForbidden)
		// No DELETE was issued; the rollback expectation closes the tx.
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing item is not found", func(t *testing.T) {
		svc, mock, _ := newItemService(t)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT id, title, description, is_active, owner_id FROM items WHERE id = \$1`).
			WithArgs(int64(9)).
			WillReturnRows(emptyItemRows())
		mock.ExpectRollback()

		_, err := svc.DeleteItem(ctx, 9)

		assertKind(t, err, KindNotFound)
	})
}

func TestItemService_PublishItem(t *testing.T) {
	ctx := context.Background()

	t.Run("publishes an inactive item", func(t *testing.T) {
		svc, mock, _ := newItemService(t)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT id, title, description, is_active, owner_id FROM items WHERE id = \$1`).
			WithArgs(int64(1)).
			WillReturnRows(itemRow(1, "Alpha", false))
		mock.ExpectQuery(`UPDATE items SET`).
			WithArgs("Alpha", nil, true, nil, int64(1)).
			WillReturnRows(itemRow(1, "Alpha", true))
		mock.ExpectCommit()

		item, err := svc.PublishItem(ctx, 1)

		assert.NoError(t, err)
		require.NotNil(t, item)
		assert.True(t, item.IsActive)
	})

	t.Run("publishing twice is rejected", func(t *testing.T) {
		svc, mock, _ := newItemService(t)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT id, title, description, is_active, owner_id FROM items WHERE id = \$1`).
			WithArgs(int64(1)).
			WillReturnRows(itemRow(1, "Alpha", true))
		mock.ExpectRollback()

		item, err := svc.PublishItem(ctx, 1)

		assert.Nil(t, item)
		assertKind(t, err, KindInvalid)
	})
}

func TestItemService_GetItemsByOwner(t *testing.T) {
	ctx := context.Background()

	t.Run("missing owner short-circuits before any item query", func(t *testing.T) {
		svc, mock, _ := newItemService(t)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT EXISTS \(SELECT 1 FROM users WHERE id = \$1\)`).
			WithArgs(int64(42)).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		mock.ExpectRollback()

		items, err := svc.GetItemsByOwner(ctx, 42, 0, 10)

		assert.Nil(t, items)
		assertKind(t, err, KindNotFound)
		// Ordered expectations prove no items query ran.
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("lists the owner's items", func(t *testing.T) {
		svc, mock, _ := newItemService(t)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT EXISTS \(SELECT 1 FROM users WHERE id = \$1\)`).
			WithArgs(int64(7)).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
		mock.ExpectQuery(`SELECT id, title, description, is_active, owner_id FROM items WHERE owner_id = \$1`).
			WithArgs(int64(7), 10, 0).
			WillReturnRows(itemRow(1, "Alpha", true))
		mock.ExpectCommit()

		items, err := svc.GetItemsByOwner(ctx, 7, 0, 10)

		assert.NoError(t, err)
		assert.Len(t, items, 1)
	})
}

func TestItemService_GetItemsPage(t *testing.T) {
	svc, mock, _ := newItemService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id, title, description, is_active, owner_id FROM items WHERE is_active = \$1 ORDER BY id LIMIT \$2 OFFSET \$3`).
		WithArgs(true, 2, 0).
		WillReturnRows(itemRow(1, "Alpha", true))
	mock.ExpectQuery(`SELECT COUNT\(id\) FROM items WHERE is_active = \$1`).
		WithArgs(true).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectCommit()

	res, err := svc.GetItemsPage(context.Background(), ItemFilter{ActiveOnly: true}, 0, 2)

	assert.NoError(t, err)
	require.NotNil(t, res)
	assert.Len(t, res.Items, 1)
	assert.Equal(t, 3, res.Total)
	assert.GreaterOrEqual(t, res.Total, len(res.Items))
}
