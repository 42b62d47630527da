package errors

import (
	stderrors "errors"
	"io/fs"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Ledger errors surfaced by database access
var (
	ErrRecordNotFound  = &AppError{ExitCode: 12, Code: "RECORD_NOT_FOUND", Message: "Record not found"}
	ErrDuplicateRecord = &AppError{ExitCode: 13, Code: "DUPLICATE_RECORD", Message: "Record already exists"}
)

// ParseDBError converts a database error into a typed AppError.
// Returns nil when err is nil.
func ParseDBError(err error) *AppError {
	if err == nil {
		return nil
	}

	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return ErrRecordNotFound
	}

	var pgErr *pgconn.PgError
	if stderrors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicateRecord
	}

	var mysqlErr *mysql.MySQLError
	if stderrors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
		return ErrDuplicateRecord
	}

	// glebarez/sqlite reports constraint violations as plain strings
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return ErrDuplicateRecord
	}

	return NewAppError(ErrDatabase, err.Error())
}

// ParseFSError converts a filesystem error into a typed AppError.
// Returns nil when err is nil.
func ParseFSError(err error) *AppError {
	if err == nil {
		return nil
	}

	switch {
	case stderrors.Is(err, fs.ErrNotExist):
		return NewAppError(ErrConfigNotFound, err.Error())
	case stderrors.Is(err, fs.ErrPermission):
		return NewAppError(ErrPermissionDenied, err.Error())
	default:
		return NewAppError(ErrIO, err.Error())
	}
}
