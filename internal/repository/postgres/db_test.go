package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

func TestIsUniqueViolation(t *testing.T) {
	dup := &pgconn.PgError{Code: "23505", ConstraintName: "auth_identities_phone_key"}
	require.True(t, isUniqueViolation(dup))
	require.True(t, isUniqueViolation(fmt.Errorf("insert: %w", dup)))
	require.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}))
	require.False(t, isUniqueViolation(errors.New("boom")))
	require.False(t, isUniqueViolation(nil))
}

func TestMarshalSettings(t *testing.T) {
	b, err := marshalSettings(nil)
	require.NoError(t, err)
	require.JSONEq(t, `{}`, string(b))

	b, err = marshalSettings(map[string]interface{}{"notifications": true})
	require.NoError(t, err)
	require.JSONEq(t, `{"notifications":true}`, string(b))

	_, err = marshalSettings(map[string]interface{}{"bad": make(chan int)})
	require.Error(t, err)
}

func TestSchema_CreatesAuthTables(t *testing.T) {
	joined := fmt.Sprint(schema)
	for _, table := range []string{"auth_identities", "auth_credentials", "user_profiles", "auth_sessions"} {
		require.Contains(t, joined, "CREATE TABLE IF NOT EXISTS "+table)
	}
}
