package dberr

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"deadline exceeded", context.DeadlineExceeded, KindTimeout},
		{"cancelled", context.Canceled, KindTimeout},
		{"unique violation", &pgconn.PgError{Code: "23505"}, KindUniqueViolation},
		{"foreign key violation", &pgconn.PgError{Code: "23503"}, KindForeignKeyViolation},
		{"not null violation", &pgconn.PgError{Code: "23502"}, KindNotNullViolation},
		{"check violation", &pgconn.PgError{Code: "23514"}, KindCheckViolation},
		{"query cancelled", &pgconn.PgError{Code: "57014"}, KindTimeout},
		{"connection exception", &pgconn.PgError{Code: "08006"}, KindConnection},
		{"data exception", &pgconn.PgError{Code: "22P02"}, KindData},
		{"unknown sqlstate", &pgconn.PgError{Code: "42601"}, KindOperation},
		{"empty sqlstate", &pgconn.PgError{}, KindOperation},
		{"truncated sqlstate", &pgconn.PgError{Code: "2"}, KindOperation},
		{"plain error", errors.New("boom"), KindOperation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}

func TestWrap(t *testing.T) {
	t.Run("nil stays nil", func(t *testing.T) {
		assert.NoError(t, Wrap(nil, "get"))
	})

	t.Run("classifies and preserves cause", func(t *testing.T) {
		cause := &pgconn.PgError{Code: "23505", ConstraintName: "items_title_key"}
		err := Wrap(fmt.Errorf("insert: %w", cause), "create")

		assert.True(t, IsKind(err, KindUniqueViolation))
		var pgErr *pgconn.PgError
		assert.True(t, errors.As(err, &pgErr))
	})

	t.Run("does not rewrap classified errors", func(t *testing.T) {
		inner := Wrap(&pgconn.PgError{Code: "23503"}, "delete")
		outer := Wrap(inner, "outer")

		assert.Equal(t, inner, outer)
	})

	t.Run("passes deletion blocked through", func(t *testing.T) {
		blocked := &DeletionBlockedError{EntityType: "user", EntityID: 7, Reason: "items attached"}
		err := Wrap(blocked, "delete")

		var got *DeletionBlockedError
		assert.True(t, errors.As(err, &got))
		assert.Equal(t, int64(7), got.EntityID)
	})
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindTimeout, KindOf(Wrap(context.DeadlineExceeded, "query")))
	assert.Equal(t, KindOperation, KindOf(errors.New("unclassified")))
}
