package surreal

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"balance-ledger/internal/domain"
	"balance-ledger/internal/store"
)

func TestSelectList(t *testing.T) {
	assert.Equal(t,
		"record_key AS id, uid, <string> amount_usd AS amount_usd, note, created_at",
		selectList(store.Schema[store.Deposits]))
	assert.Equal(t, "uid, email, name, created_at", selectList(store.Schema[store.Users]))
}

func TestAssignments(t *testing.T) {
	at := time.Date(2024, 3, 1, 10, 0, 0, 5, time.FixedZone("CET", 3600))
	sets, vars := assignments(store.Schema[store.Stocks], store.Fields{
		"company":           "Acme",
		"current_price":     decimal.RequireFromString("110.5"),
		"percentage_change": 10,
		"direction":         domain.DirectionUp,
		"updated_at":        at,
	})

	assert.Equal(t, []string{
		"current_price = <decimal> $f_current_price",
		"percentage_change = <decimal> $f_percentage_change",
		"direction = $f_direction",
		"updated_at = $f_updated_at",
	}, sets)
	assert.Equal(t, "110.5", vars["f_current_price"])
	assert.Equal(t, "10", vars["f_percentage_change"])
	assert.Equal(t, "up", vars["f_direction"])
	assert.Equal(t, "2024-03-01T09:00:00.000000005Z", vars["f_updated_at"])
	assert.NotContains(t, vars, "f_company")
}

func TestBuildQuery(t *testing.T) {
	sql, vars := buildQuery(store.Deposits, store.Schema[store.Deposits],
		[]string{"uid = $value"}, map[string]any{"value": "u1"},
		store.QueryOptions{
			OrderBy:         "created_at",
			Descending:      true,
			Limit:           20,
			ExcludeField:    "note",
			ExcludePrefixes: domain.AttemptPrefixes(),
		})

	assert.Equal(t, "SELECT record_key AS id, uid, <string> amount_usd AS amount_usd, note, created_at FROM deposits "+
		"WHERE uid = $value AND !string::starts_with(note, $exclude0) AND !string::starts_with(note, $exclude1) "+
		"ORDER BY created_at DESC, record_key DESC LIMIT 20", sql)
	assert.Equal(t, "deposit_attempt_", vars["exclude0"])
	assert.Equal(t, "gas_fee_attempt_", vars["exclude1"])

	sql, _ = buildQuery(store.Stocks, store.Schema[store.Stocks], nil, map[string]any{}, store.QueryOptions{OrderBy: "company"})
	assert.Equal(t, "SELECT company, <string> current_price AS current_price, <string> percentage_change AS percentage_change, "+
		"direction, updated_at FROM stock_quotes ORDER BY company ASC", sql)

	sql, _ = buildQuery(store.Users, store.Schema[store.Users], nil, map[string]any{}, store.QueryOptions{OrderBy: "created_at", Descending: true})
	assert.Equal(t, "SELECT uid, email, name, created_at FROM users ORDER BY created_at DESC, uid DESC", sql)
}

func TestTimeLayoutSortsLexically(t *testing.T) {
	earlier := formatTime(time.Date(2024, 1, 1, 0, 0, 0, 900000000, time.UTC))
	later := formatTime(time.Date(2024, 1, 1, 0, 0, 1, 0, time.UTC))
	assert.Less(t, earlier, later)
	assert.Len(t, earlier, len(later))

	parsed, err := time.Parse(time.RFC3339Nano, earlier)
	assert.NoError(t, err)
	assert.Equal(t, 900000000, parsed.Nanosecond())
}
