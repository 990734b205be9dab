package booking

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestReferenceError(t *testing.T) {
	fk := func(constraint string) error {
		return fmt.Errorf("insert: %w", &pgconn.PgError{Code: pgerrcode.ForeignKeyViolation, ConstraintName: constraint})
	}

	assert.ErrorIs(t, referenceError(fk(userForeignKey)), ErrUserNotFound)
	assert.ErrorIs(t, referenceError(fk(carForeignKey)), ErrCarNotFound)
	assert.ErrorIs(t, referenceError(fk(providerForeignKey)), ErrProviderNotFound)

	// Anything else is left for the caller to report as an internal error.
	assert.NoError(t, referenceError(fk("reviews_car_id_fkey")))
	assert.NoError(t, referenceError(&pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: carForeignKey}))
	assert.NoError(t, referenceError(errors.New("connection reset")))
}
