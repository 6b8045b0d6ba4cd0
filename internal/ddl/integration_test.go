//go:build integration

package ddl

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"notation-mapper/internal/config"
)

func TestApply_Postgres(t *testing.T) {
	ctx := context.Background()

	container, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("notation"),
		postgres.WithUsername("notation"),
		postgres.WithPassword("notation"),
		postgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err)

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	cfg := config.Default().Database
	cfg.DSN = dsn

	db, err := Open(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	script, err := Generate(buildModel(t, Product{}, User{}), "shop")
	require.NoError(t, err)

	applied, err := Apply(ctx, db, script.Statements(), nil)
	require.NoError(t, err)
	assert.Equal(t, len(script.Statements()), applied)

	// Second run only meets existing objects.
	_, err = Apply(ctx, db, script.Statements(), nil)
	require.NoError(t, err)

	var indexes int
	require.NoError(t, db.QueryRowContext(ctx,
		`select count(*) from pg_indexes where schemaname = 'shop' and tablename = 'product'`).Scan(&indexes))
	assert.Equal(t, 3, indexes)

	var name string
	require.NoError(t, db.QueryRowContext(ctx,
		`select indexname from pg_indexes where schemaname = 'shop' and indexdef like '%(vendor, title)%'`).Scan(&name))
	assert.Equal(t, "product_IX_PRODUCT_TITLE", name)
}
