package migrate

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/pos-backend/pkg/config"
	"github.com/angelmondragon/pos-backend/pkg/db/dbtest"
	"github.com/angelmondragon/pos-backend/pkg/logger"
)

func TestMigrationsDirIsValid(t *testing.T) {
	require.NoError(t, ValidateDir("migrations"))
}

func TestSalesMigrationContainsSchema(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_sales_tables.sql"))
	require.NoError(t, err)
	require.Len(t, matches, 1)

	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	content := string(data)

	for _, sub := range []string{
		"CREATE TABLE IF NOT EXISTS sales",
		"CREATE TABLE IF NOT EXISTS sale_items",
		"REFERENCES sales(id) ON DELETE CASCADE",
		"REFERENCES products(id) ON DELETE RESTRICT",
		"CHECK (quantity > 0)",
		"CHECK (total_amount >= 0)",
		"user_id uuid NULL",
	} {
		assert.Contains(t, content, sub)
	}
}

func TestProductsMigrationGuardsStock(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_products_table.sql"))
	require.NoError(t, err)
	require.Len(t, matches, 1)

	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), "CHECK (stock_quantity >= 0)")
	assert.Contains(t, string(data), "numeric(10,2)")
}

func TestCreateAndValidateMigration(t *testing.T) {
	dir := t.TempDir()
	path, err := CreateSQLMigration(dir, "Add Sale Notes!")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, "_add_sale_notes.sql"))
	require.NoError(t, ValidateDir(dir))

	_, err = CreateSQLMigration(dir, "!!!")
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.sql"), []byte("-- +goose Up"), 0o644))
	assert.Error(t, ValidateDir(dir))
}

func TestValidateDirRejectsUnbalancedStatements(t *testing.T) {
	dir := t.TempDir()
	body := "-- +goose Up\n-- +goose StatementBegin\nSELECT 1;\n-- +goose Down\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "20260101000000_broken.sql"), []byte(body), 0o644))
	assert.Error(t, ValidateDir(dir))
}

func TestMaybeRunDevSkipsOutsideDev(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Env: config.AppEnvProd}}
	require.NoError(t, MaybeRunDev(context.Background(), cfg, logger.Nop(), nil))
}

func TestMaybeRunDevAutoMigratesSQLite(t *testing.T) {
	client := dbtest.Open(t)
	cfg := &config.Config{
		App:          config.AppConfig{Env: config.AppEnvDev},
		DB:           config.DBConfig{Driver: config.DriverSQLite},
		FeatureFlags: config.FeatureFlagsConfig{AutoMigrate: true},
	}
	require.NoError(t, MaybeRunDev(context.Background(), cfg, logger.Nop(), client))

	for _, table := range []string{"users", "products", "sales", "sale_items", "outbox_events", "outbox_dlq"} {
		assert.True(t, client.DB().Migrator().HasTable(table), table)
	}
}
