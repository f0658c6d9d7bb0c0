package account

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-shop/meridian/internal/platform/db"
	"github.com/meridian-shop/meridian/internal/shared"
)

// Repository defines persistence operations for accounts. The store owns
// email uniqueness and the pairing invariant of the OTP columns.
type Repository interface {
	Create(ctx context.Context, name, email, passwordHash string) (*Account, error)
	FindByEmail(ctx context.Context, email string) (*Account, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Account, error)
	SetVerified(ctx context.Context, id uuid.UUID) error
	SetOTP(ctx context.Context, id uuid.UUID, kind OTPKind, code string, expiresAt time.Time) error
	ResetCredentials(ctx context.Context, id uuid.UUID, hash string) error
	UpdateName(ctx context.Context, id uuid.UUID, name string) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// PGRepository implements Repository on PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const accountColumns = `id, name, email, password_hash, is_verified,
	verify_otp, verify_otp_expires_at, reset_otp, reset_otp_expires_at,
	created_at, updated_at`

// Create inserts a new unverified account. A duplicate normalized email
// surfaces as shared.ErrDuplicate, never as a second row.
func (r *PGRepository) Create(ctx context.Context, name, email, passwordHash string) (*Account, error) {
	query := `
		INSERT INTO accounts (id, name, email, password_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + accountColumns

	row := r.pool.QueryRow(ctx, query, uuid.New(), name, NormalizeEmail(email), passwordHash)
	acct, err := scanAccount(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, fmt.Errorf("account: email taken: %w", shared.ErrDuplicate)
		}
		return nil, fmt.Errorf("account: create: %w", err)
	}
	return acct, nil
}

// FindByEmail fetches an account by normalized email.
func (r *PGRepository) FindByEmail(ctx context.Context, email string) (*Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE email = $1`
	row := r.pool.QueryRow(ctx, query, NormalizeEmail(email))
	acct, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("account: find by email: %w", err)
	}
	return acct, nil
}

// FindByID fetches an account by ID.
func (r *PGRepository) FindByID(ctx context.Context, id uuid.UUID) (*Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	row := r.pool.QueryRow(ctx, query, id)
	acct, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("account: find by id: %w", err)
	}
	return acct, nil
}

// SetVerified flips the verified flag and clears the verify OTP pair in
// one statement. Idempotent: verifying a verified account is a no-op.
func (r *PGRepository) SetVerified(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE accounts
		SET is_verified = TRUE,
		    verify_otp = '',
		    verify_otp_expires_at = NULL,
		    updated_at = NOW()
		WHERE id = $1`
	return r.exec(ctx, query, id)
}

// SetOTP overwrites the code/expiry pair for the given kind.
func (r *PGRepository) SetOTP(ctx context.Context, id uuid.UUID, kind OTPKind, code string, expiresAt time.Time) error {
	column := otpColumn(kind)
	query := fmt.Sprintf(`
		UPDATE accounts
		SET %s = $2, %s_expires_at = $3, updated_at = NOW()
		WHERE id = $1`, column, column)
	return r.exec(ctx, query, id, code, expiresAt)
}

// ResetCredentials overwrites the password hash and clears the reset OTP
// pair in one transaction, so a consumed code never survives a partial
// write.
func (r *PGRepository) ResetCredentials(ctx context.Context, id uuid.UUID, hash string) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE accounts SET password_hash = $2, updated_at = NOW() WHERE id = $1`, id, hash)
		if err != nil {
			return fmt.Errorf("account: reset credentials: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return shared.ErrNotFound
		}
		_, err = tx.Exec(ctx,
			`UPDATE accounts SET reset_otp = '', reset_otp_expires_at = NULL, updated_at = NOW() WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("account: clear reset otp: %w", err)
		}
		return nil
	})
}

// UpdateName changes the display name.
func (r *PGRepository) UpdateName(ctx context.Context, id uuid.UUID, name string) error {
	query := `UPDATE accounts SET name = $2, updated_at = NOW() WHERE id = $1`
	return r.exec(ctx, query, id, name)
}

// Delete removes the account record.
func (r *PGRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM accounts WHERE id = $1`
	return r.exec(ctx, query, id)
}

func (r *PGRepository) exec(ctx context.Context, query string, args ...any) error {
	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("account: exec: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func otpColumn(kind OTPKind) string {
	if kind == KindReset {
		return "reset_otp"
	}
	return "verify_otp"
}

func scanAccount(row pgx.Row) (*Account, error) {
	var (
		acct                 Account
		verifyExp, resetExp  pgtype.Timestamptz
		createdAt, updatedAt pgtype.Timestamptz
	)
	err := row.Scan(
		&acct.ID, &acct.Name, &acct.Email, &acct.PasswordHash, &acct.IsVerified,
		&acct.VerifyOTP, &verifyExp, &acct.ResetOTP, &resetExp,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}
	if verifyExp.Valid {
		acct.VerifyOTPExpiresAt = verifyExp.Time
	}
	if resetExp.Valid {
		acct.ResetOTPExpiresAt = resetExp.Time
	}
	acct.CreatedAt = createdAt.Time
	acct.UpdatedAt = updatedAt.Time
	return &acct, nil
}

var _ Repository = (*PGRepository)(nil)
