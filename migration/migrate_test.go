package migration

import (
	"fmt"
	"testing"

	"intake-app/database/dbtest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrate_CreatesEveryTable(t *testing.T) {
	db := dbtest.Open(t)
	require.NoError(t, Migrate(db))
	// idempotent
	require.NoError(t, Migrate(db))

	for _, m := range Models() {
		assert.True(t, db.Migrator().HasTable(m), fmt.Sprintf("%T", m))
	}
	assert.True(t, db.Migrator().HasTable("stock_take_records"))
}
