package postgres

import (
	"itemapi/internal/model"
	"itemapi/internal/repository"
)

// UserPostgres is the PostgreSQL repository for users. It currently needs
// only the generic capabilities.
type UserPostgres struct {
	*Generic[model.User]
}

// NewUserPostgres creates a user repository bound to db.
func NewUserPostgres(db DBTX) *UserPostgres {
	return &UserPostgres{Generic: NewGeneric(db, userMapping())}
}

var _ repository.UserRepository = (*UserPostgres)(nil)

func userMapping() Mapping[model.User] {
	return Mapping[model.User]{
		Table:   "users",
		Columns: []string{"name", "email"},
		ID:      func(u *model.User) int64 { return u.ID },
		Values: func(u *model.User) []any {
			return []any{u.Name, u.Email}
		},
		Scan: func(row RowScanner) (*model.User, error) {
			var u model.User
			if err := row.Scan(&u.ID, &u.Name, &u.Email); err != nil {
				return nil, err
			}
			return &u, nil
		},
	}
}
