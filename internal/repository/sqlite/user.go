package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/mesto/internal/apperror"
	"github.com/sakif/mesto/internal/model"
	"github.com/sakif/mesto/internal/repository"
)

// compile-time check that *UserDB implements repository.UserRepository
var _ repository.UserRepository = (*UserDB)(nil)

// UserDB stores accounts. Get one from DB.Users.
type UserDB struct {
	conn *sql.DB
}

const userColumns = `id, email, password_hash, name, about, avatar, created_at`

// Create inserts a new user. ID and CreatedAt are generated here.
// A duplicate email returns apperror.ErrConflict.
func (u *UserDB) Create(ctx context.Context, user *model.User) error {
	user.ID = xid.New().String()
	user.CreatedAt = time.Now().UTC()

	_, err := u.conn.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.Name,
		user.About,
		user.Avatar,
		user.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("user", user.Email)
		}
		return fmt.Errorf("sqlite: inserting user %s: %w", user.Email, err)
	}

	return nil
}

// GetByID retrieves a user by id. Returns apperror.ErrNotFound if missing.
func (u *UserDB) GetByID(ctx context.Context, id string) (*model.User, error) {
	row := u.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user", id)
		}
		return nil, fmt.Errorf("sqlite: getting user %s: %w", id, err)
	}
	return user, nil
}

// GetByEmail retrieves a user by email. Emails are compared case-insensitively.
func (u *UserDB) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	row := u.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ? COLLATE NOCASE`, email)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user", email)
		}
		return nil, fmt.Errorf("sqlite: getting user by email: %w", err)
	}
	return user, nil
}

// UpdateProfile sets name and about and returns the stored user.
func (u *UserDB) UpdateProfile(ctx context.Context, id, name, about string) (*model.User, error) {
	result, err := u.conn.ExecContext(ctx,
		`UPDATE users SET name = ?, about = ? WHERE id = ?`, name, about, id)
	if err != nil {
		return nil, fmt.Errorf("sqlite: updating profile of %s: %w", id, err)
	}
	if err := requireOneRow(result, "user", id); err != nil {
		return nil, err
	}
	return u.GetByID(ctx, id)
}

// UpdateAvatar sets the avatar link and returns the stored user.
func (u *UserDB) UpdateAvatar(ctx context.Context, id, avatar string) (*model.User, error) {
	result, err := u.conn.ExecContext(ctx,
		`UPDATE users SET avatar = ? WHERE id = ?`, avatar, id)
	if err != nil {
		return nil, fmt.Errorf("sqlite: updating avatar of %s: %w", id, err)
	}
	if err := requireOneRow(result, "user", id); err != nil {
		return nil, err
	}
	return u.GetByID(ctx, id)
}

func scanUser(row *sql.Row) (*model.User, error) {
	var user model.User
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.Name,
		&user.About,
		&user.Avatar,
		&user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// requireOneRow turns "0 rows affected" into a NotFound error.
func requireOneRow(result sql.Result, resource, id string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound(resource, id)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
