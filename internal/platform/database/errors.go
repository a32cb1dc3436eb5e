package database

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/taskflow-api/internal/store"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// PostgreSQL error codes
const (
	uniqueViolationCode     = "23505"
	foreignKeyViolationCode = "23503"
	checkViolationCode      = "23514"
	notNullViolationCode    = "23502"
)

type violation int

const (
	violationNone violation = iota
	violationUnique
	violationForeignKey
	violationCheck
	violationNotNull
)

// MapError maps a driver error to the matching store sentinel, wrapping the
// original error so the detail is preserved for logs.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %v", store.ErrNotFound, err)
	}

	switch kind, constraint := classify(err); kind {
	case violationUnique:
		return fmt.Errorf("%w: %v", store.ErrDuplicate, err)
	case violationForeignKey:
		return fmt.Errorf("%w: foreign key violation (%s): %v", store.ErrInvalidEntity, constraint, err)
	case violationCheck:
		return fmt.Errorf("%w: check constraint violation (%s): %v", store.ErrInvalidEntity, constraint, err)
	case violationNotNull:
		return fmt.Errorf("%w: not null violation (%s): %v", store.ErrInvalidEntity, constraint, err)
	}

	return err
}

// IsUniqueViolation reports whether err is a unique constraint violation on
// either supported driver.
func IsUniqueViolation(err error) bool {
	kind, _ := classify(err)
	return kind == violationUnique
}

// IsForeignKeyViolation reports whether err is a foreign key violation on
// either supported driver.
func IsForeignKeyViolation(err error) bool {
	kind, _ := classify(err)
	return kind == violationForeignKey
}

func classify(err error) (violation, string) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolationCode:
			return violationUnique, pgErr.ConstraintName
		case foreignKeyViolationCode:
			return violationForeignKey, pgErr.ConstraintName
		case checkViolationCode:
			return violationCheck, pgErr.ConstraintName
		case notNullViolationCode:
			return violationNotNull, pgErr.ColumnName
		}
		return violationNone, ""
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return violationUnique, ""
		case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
			return violationForeignKey, ""
		case sqlite3.SQLITE_CONSTRAINT_CHECK:
			return violationCheck, ""
		case sqlite3.SQLITE_CONSTRAINT_NOTNULL:
			return violationNotNull, ""
		}
		if liteErr.Code()&0xff == sqlite3.SQLITE_CONSTRAINT {
			return classifySQLiteMessage(liteErr.Error())
		}
	}

	return violationNone, ""
}

// classifySQLiteMessage handles builds that report only the primary
// SQLITE_CONSTRAINT code.
func classifySQLiteMessage(msg string) (violation, string) {
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed"),
		strings.Contains(msg, "PRIMARY KEY constraint failed"):
		return violationUnique, ""
	case strings.Contains(msg, "FOREIGN KEY constraint failed"):
		return violationForeignKey, ""
	case strings.Contains(msg, "CHECK constraint failed"):
		return violationCheck, ""
	case strings.Contains(msg, "NOT NULL constraint failed"):
		return violationNotNull, ""
	}
	return violationNone, ""
}

// CheckRowsAffected returns notFound when result reports zero affected rows.
func CheckRowsAffected(result sql.Result, notFound error) error {
	if result == nil {
		return fmt.Errorf("nil result provided to CheckRowsAffected")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		if notFound == nil {
			return store.ErrNotFound
		}
		return notFound
	}

	return nil
}
