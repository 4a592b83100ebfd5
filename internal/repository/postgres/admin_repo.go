package postgres

import (
	"context"
	"errors"

	"iisa-recruitment-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type adminRepo struct {
	db *pgxpool.Pool
}

func NewAdminRepository(db *pgxpool.Pool) domain.AdminRepository {
	return &adminRepo{db: db}
}

const adminColumns = `id::text, email, password_hash, totp_secret, totp_enabled, created_at`

func (r *adminRepo) scan(row pgx.Row) (*domain.Admin, error) {
	var a domain.Admin
	err := row.Scan(&a.ID, &a.Email, &a.PasswordHash, &a.TOTPSecret, &a.TOTPEnabled, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *adminRepo) GetByID(ctx context.Context, id string) (*domain.Admin, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	return r.scan(r.db.QueryRow(ctx, `SELECT `+adminColumns+` FROM admins WHERE id = $1`, id))
}

func (r *adminRepo) GetByEmail(ctx context.Context, email string) (*domain.Admin, error) {
	return r.scan(r.db.QueryRow(ctx, `SELECT `+adminColumns+` FROM admins WHERE email = $1`, email))
}

func (r *adminRepo) Create(ctx context.Context, admin *domain.Admin) error {
	query := `
		INSERT INTO admins (id, email, password_hash, totp_secret, totp_enabled, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.db.Exec(ctx, query,
		admin.ID, admin.Email, admin.PasswordHash, admin.TOTPSecret, admin.TOTPEnabled, admin.CreatedAt)
	return err
}
