package dberrors

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	pkgerrors "github.com/yungbote/greenscape-backend/internal/pkg/errors"
)

// Map translates storage failures into the package sentinels so callers can branch with
// errors.Is. The original error stays wrapped.
func Map(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pkgerrors.ErrNotFound) || errors.Is(err, pkgerrors.ErrConflict) {
		return fmt.Errorf("%s: %w", op, err)
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", op, errors.Join(pkgerrors.ErrNotFound, err))
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%s: %w", op, errors.Join(pkgerrors.ErrConflict, err))
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && strings.TrimSpace(pgErr.Code) == "23505" {
		return fmt.Errorf("%s: %w", op, errors.Join(pkgerrors.ErrConflict, err)) // unique_violation
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint failed") {
		return fmt.Errorf("%s: %w", op, errors.Join(pkgerrors.ErrConflict, err))
	}
	return fmt.Errorf("%s: %w", op, err)
}
