package errors

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// TestParseDBError tests database error parsing
func TestParseDBError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected *AppError
	}{
		{
			name:     "nil error",
			err:      nil,
			expected: nil,
		},
		{
			name:     "record not found",
			err:      gorm.ErrRecordNotFound,
			expected: ErrRecordNotFound,
		},
		{
			name:     "postgres unique violation",
			err:      &pgconn.PgError{Code: "23505"},
			expected: ErrDuplicateRecord,
		},
		{
			name:     "mysql duplicate entry",
			err:      &mysql.MySQLError{Number: 1062},
			expected: ErrDuplicateRecord,
		},
		{
			name:     "sqlite unique constraint",
			err:      errors.New("UNIQUE constraint failed: apply_records.id"),
			expected: ErrDuplicateRecord,
		},
		{
			name:     "generic database error",
			err:      errors.New("database connection failed"),
			expected: ErrDatabase,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ParseDBError(tt.err)
			if tt.expected == nil {
				assert.Nil(t, result)
				return
			}
			require.NotNil(t, result)
			assert.Equal(t, tt.expected.Code, result.Code)
		})
	}
}

// TestParseFSError tests filesystem error parsing
func TestParseFSError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected *AppError
	}{
		{
			name:     "nil error",
			err:      nil,
			expected: nil,
		},
		{
			name:     "not exist",
			err:      fs.ErrNotExist,
			expected: ErrConfigNotFound,
		},
		{
			name:     "permission",
			err:      fs.ErrPermission,
			expected: ErrPermissionDenied,
		},
		{
			name:     "other",
			err:      errors.New("device busy"),
			expected: ErrIO,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ParseFSError(tt.err)
			if tt.expected == nil {
				assert.Nil(t, result)
				return
			}
			require.NotNil(t, result)
			assert.Equal(t, tt.expected.Code, result.Code)
		})
	}
}

// TestParseFSError_RealOSErrors tests parsing of errors returned by the os package
func TestParseFSError_RealOSErrors(t *testing.T) {
	_, err := os.ReadFile(filepath.Join(t.TempDir(), "does-not-exist"))
	require.Error(t, err)

	parsed := ParseFSError(err)
	require.NotNil(t, parsed)
	assert.Equal(t, ErrConfigNotFound.Code, parsed.Code)
	assert.True(t, errors.Is(parsed, ErrConfigNotFound))
}
