package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"net"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/qrave1/RoomBook/internal/domain/errs"
)

// classify приводит ошибку драйвера к одному из видов errs. op попадает в текст ошибки.
func classify(err error, op string) error {
	if err == nil {
		return nil
	}

	if errs.KindOf(err) != nil {
		return errs.Wrap(errs.KindOf(err), err, op)
	}

	switch {
	case errors.Is(err, sql.ErrNoRows):
		return errs.Wrap(errs.ErrNotFound, err, op)
	case errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled),
		errors.Is(err, driver.ErrBadConn),
		errors.Is(err, sql.ErrConnDone):
		return errs.Wrap(errs.ErrTransient, err, op)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return errs.Wrap(kindForCode(pgErr.Code), err, op)
	}

	if pgconn.Timeout(err) || pgconn.SafeToRetry(err) {
		return errs.Wrap(errs.ErrTransient, err, op)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return errs.Wrap(errs.ErrTransient, err, op)
	}

	return errs.Wrap(errs.ErrFatal, err, op)
}

// kindForCode - SQLSTATE -> вид ошибки
func kindForCode(code string) error {
	switch code {
	case "23P01", "23505": // exclusion_violation, unique_violation
		return errs.ErrConflict
	case "23503": // foreign_key_violation
		return errs.ErrNotFound
	case "23514", "23502": // check_violation, not_null_violation
		return errs.ErrValidation
	case "40001", "40P01", "57P01", "57P02", "57P03":
		return errs.ErrTransient
	}

	switch {
	case strings.HasPrefix(code, "22"):
		return errs.ErrValidation
	case strings.HasPrefix(code, "08"), strings.HasPrefix(code, "53"):
		return errs.ErrTransient
	}

	return errs.ErrFatal
}
