package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	spec, err := Lookup(Deposits)
	require.NoError(t, err)
	assert.Equal(t, "id", spec.Key)
	assert.Equal(t, "id", spec.Generated)

	_, err = Lookup("accounts; DROP TABLE users")
	assert.Error(t, err)
}

func TestSpecChecks(t *testing.T) {
	spec := Schema[Balances]

	assert.NoError(t, spec.CheckField("wallet_balance_usd"))
	assert.Error(t, spec.CheckField("note"))
	assert.Error(t, spec.CheckField("balance_usd = 0; --"))

	assert.NoError(t, spec.CheckFields(Fields{"balance_usd": 1, "updated_at": nil}))
	assert.Error(t, spec.CheckFields(Fields{"password_hash": "x"}))

	deposits := Schema[Deposits]
	assert.NoError(t, deposits.CheckOptions(QueryOptions{OrderBy: "created_at", Descending: true, Limit: 20,
		ExcludeField: "note", ExcludePrefixes: []string{"deposit_attempt_"}}))
	assert.Error(t, deposits.CheckOptions(QueryOptions{OrderBy: "email"}))
	assert.Error(t, deposits.CheckOptions(QueryOptions{ExcludePrefixes: []string{"x"}}))
	assert.Error(t, deposits.CheckOptions(QueryOptions{Limit: -1}))
}
