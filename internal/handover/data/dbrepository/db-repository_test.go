package dbrepository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"go-handover/internal/handover/data"
)

func TestHandleSQLError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		isUnique bool
	}{
		{
			name:     "unique violation",
			err:      &pgconn.PgError{Code: "23505", ConstraintName: "scan_events_dataset_id_tracking_number_key"},
			isUnique: true,
		},
		{
			name:     "wrapped unique violation",
			err:      fmt.Errorf("exec: %w", &pgconn.PgError{Code: "23505"}),
			isUnique: true,
		},
		{
			name:     "foreign key violation",
			err:      &pgconn.PgError{Code: "23503"},
			isUnique: false,
		},
		{
			name:     "plain error",
			err:      errors.New("connection refused"),
			isUnique: false,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := handleSQLError(test.err)
			assert.Equal(t, test.isUnique, errors.Is(err, data.ErrUniqueConstraintViolation))
		})
	}
}
