package repository

import (
	"database/sql"
	"errors"

	"taskpro/internal/models"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

var ErrUserNotFound = errors.New("user not found")

// OAuthProfile is what the identity provider hands back after a
// successful handshake.
type OAuthProfile struct {
	Provider          string
	ProviderAccountID string
	Name              string
	Email             string
	Image             string
}

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = "id, name, email, email_verified, image, created_at, updated_at"

func scanUser(row interface{ Scan(...interface{}) error }) (models.User, error) {
	var user models.User
	err := row.Scan(&user.ID, &user.Name, &user.Email, &user.EmailVerified, &user.Image, &user.CreatedAt, &user.UpdatedAt)
	return user, err
}

// UpsertFromOAuth resolves the user for a provider identity, creating the
// user row and the account link on first login. A second login with the
// same provider account returns the existing user untouched.
func (r *UserRepository) UpsertFromOAuth(p OAuthProfile) (models.User, error) {
	row := r.db.QueryRow(`
		SELECT u.id, u.name, u.email, u.email_verified, u.image, u.created_at, u.updated_at
		FROM users u
		JOIN accounts a ON a.user_id = u.id
		WHERE a.provider = $1 AND a.provider_account_id = $2`,
		p.Provider, p.ProviderAccountID,
	)
	user, err := scanUser(row)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return models.User{}, err
	}

	// First login with this provider account
	id := uuid.NewString()
	row = r.db.QueryRow(
		"INSERT INTO users (id, name, email, image) VALUES ($1, $2, $3, NULLIF($4, '')) RETURNING "+userColumns,
		id, p.Name, p.Email, p.Image,
	)
	user, err = scanUser(row)
	if err != nil {
		// The email may already belong to a user who signed in through
		// another provider; link the new account to that user instead.
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			row = r.db.QueryRow("SELECT "+userColumns+" FROM users WHERE email = $1", p.Email)
			user, err = scanUser(row)
		}
		if err != nil {
			return models.User{}, err
		}
	}

	_, err = r.db.Exec(
		"INSERT INTO accounts (user_id, provider, provider_account_id) VALUES ($1, $2, $3)",
		user.ID, p.Provider, p.ProviderAccountID,
	)
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (r *UserRepository) GetByID(id string) (models.User, error) {
	row := r.db.QueryRow("SELECT "+userColumns+" FROM users WHERE id = $1", id)
	user, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrUserNotFound
	}
	return user, err
}
