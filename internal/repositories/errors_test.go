package repositories

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"net"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind error
	}{
		{"unique violation", &pgconn.PgError{Code: "23505"}, ErrDuplicate},
		{"syntax error", &pgconn.PgError{Code: "42601"}, ErrQuery},
		{"connection failure", &pgconn.PgError{Code: "08006"}, ErrConnection},
		{"bad conn", driver.ErrBadConn, ErrConnection},
		{"conn done", sql.ErrConnDone, ErrConnection},
		{"net error", &net.OpError{Op: "dial", Err: errors.New("connection refused")}, ErrConnection},
		{"closed pool", errors.New("sql: database is closed"), ErrQuery},
		{"other", errors.New("boom"), ErrQuery},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classify(tt.err)
			assert.ErrorIs(t, got, tt.kind)
			assert.ErrorIs(t, got, tt.err)
		})
	}
}

func TestClassify_Passthrough(t *testing.T) {
	assert.NoError(t, classify(nil))
	assert.Equal(t, context.Canceled, classify(context.Canceled))
	assert.Equal(t, context.DeadlineExceeded, classify(context.DeadlineExceeded))
}
