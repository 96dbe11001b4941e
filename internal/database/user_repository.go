package database

import (
	"fmt"
	"strings"
	"time"

	"github.com/tripslot/attractions-backend/internal/models"
)

// UserRepository handles user database operations
type UserRepository struct {
	db DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db DB) *UserRepository {
	return &UserRepository{
		db: db,
	}
}

const userColumns = `id, name, email, phone, password, is_admin, is_locked,
	       booking_attempts, created_at, updated_at`

// CreateUser creates a new user. The password must already be hashed.
func (r *UserRepository) CreateUser(name, email, phone, hashedPassword string) (*models.User, error) {
	user := &models.User{
		Name:      name,
		Email:     email,
		Phone:     phone,
		Password:  hashedPassword,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	query := `
		INSERT INTO users (name, email, phone, password, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	err := r.db.QueryRow(
		query,
		user.Name,
		user.Email,
		user.Phone,
		user.Password,
		user.CreatedAt,
		user.UpdatedAt,
	).Scan(&user.ID)
	if err != nil {
		if IsUniqueViolation(err) {
			return nil, fmt.Errorf("failed to create user: %w", ErrUniqueViolation)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// GetUserByID retrieves a user by ID. Returns nil without error when the
// user does not exist.
func (r *UserRepository) GetUserByID(id int64) (*models.User, error) {
	var user models.User

	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE id = $1
	`

	err := r.db.Get(&user, query, id)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}

	return &user, nil
}

// GetUserByEmail retrieves a user by email. Returns nil without error when
// the user does not exist.
func (r *UserRepository) GetUserByEmail(email string) (*models.User, error) {
	var user models.User

	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE email = $1
	`

	err := r.db.Get(&user, query, email)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return &user, nil
}

// ListUsers retrieves all users ordered by creation time
func (r *UserRepository) ListUsers() ([]*models.User, error) {
	var users []*models.User

	query := `
		SELECT ` + userColumns + `
		FROM users
		ORDER BY created_at DESC
	`

	err := r.db.Select(&users, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	return users, nil
}

// UpdateUser applies a partial update. Nil fields are left unchanged; a
// non-nil Password must already be hashed.
func (r *UserRepository) UpdateUser(id int64, req *models.UpdateAccountRequest) error {
	setClauses := []string{}
	args := []interface{}{}
	argPos := 1

	if req.Name != nil {
		setClauses = append(setClauses, fmt.Sprintf("name = $%d", argPos))
		args = append(args, *req.Name)
		argPos++
	}
	if req.Email != nil {
		setClauses = append(setClauses, fmt.Sprintf("email = $%d", argPos))
		args = append(args, *req.Email)
		argPos++
	}
	if req.Phone != nil {
		setClauses = append(setClauses, fmt.Sprintf("phone = $%d", argPos))
		args = append(args, *req.Phone)
		argPos++
	}
	if req.Password != nil {
		setClauses = append(setClauses, fmt.Sprintf("password = $%d", argPos))
		args = append(args, *req.Password)
		argPos++
	}

	if len(setClauses) == 0 {
		return nil
	}

	setClauses = append(setClauses, fmt.Sprintf("updated_at = $%d", argPos))
	args = append(args, time.Now())
	argPos++

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE users SET %s WHERE id = $%d`, strings.Join(setClauses, ", "), argPos)

	result, err := r.db.Exec(query, args...)
	if err != nil {
		if IsUniqueViolation(err) {
			return fmt.Errorf("failed to update user: %w", ErrUniqueViolation)
		}
		return fmt.Errorf("failed to update user: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("user not found")
	}

	return nil
}

// DeleteUser removes a user. Bookings, reviews and audit entries cascade
// at the schema level.
func (r *UserRepository) DeleteUser(id int64) error {
	result, err := r.db.Exec(`DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("user not found")
	}

	return nil
}

// LockUser marks the account locked. Locking is sticky until an admin
// clears it.
func (r *UserRepository) LockUser(id int64) error {
	query := `
		UPDATE users
		SET is_locked = TRUE,
		    updated_at = $1
		WHERE id = $2
	`

	_, err := r.db.Exec(query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to lock user: %w", err)
	}

	return nil
}

// UnlockUser clears the lock and resets the attempt counter
func (r *UserRepository) UnlockUser(id int64) error {
	query := `
		UPDATE users
		SET is_locked = FALSE,
		    booking_attempts = 0,
		    updated_at = $1
		WHERE id = $2
	`

	result, err := r.db.Exec(query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to unlock user: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("user not found")
	}

	return nil
}

// IncrementBookingAttempts bumps the attempt counter used by the fraud
// guard and returns the new value.
func (r *UserRepository) IncrementBookingAttempts(id int64) (int, error) {
	var attempts int

	query := `
		UPDATE users
		SET booking_attempts = booking_attempts + 1,
		    updated_at = $1
		WHERE id = $2
		RETURNING booking_attempts
	`

	err := r.db.QueryRow(query, time.Now(), id).Scan(&attempts)
	if err != nil {
		return 0, fmt.Errorf("failed to increment booking attempts: %w", err)
	}

	return attempts, nil
}
