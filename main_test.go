package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"catalog/internal/repositories"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedProducts(t *testing.T) {
	repo := repositories.NewMemoryProductRepository()
	seedProducts(context.Background(), repo, zerolog.Nop())

	products, err := repo.FindAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, products, 3)
	for _, p := range products {
		assert.NotEmpty(t, p.ID)
	}
}

func TestImportCommand(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "products.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("name,price\nWidget,9.99\nGadget,19.99\n"), 0o600))

	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DATABASE_DSN", filepath.Join(dir, "catalog.db"))
	t.Setenv("LOG_LEVEL", "error")

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"import", csvPath})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "imported 2 products")
}

func TestImportCommand_RejectsMemoryStore(t *testing.T) {
	t.Setenv("DB_DRIVER", "memory")
	t.Setenv("LOG_LEVEL", "error")

	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"import", "missing.csv"})
	assert.ErrorContains(t, cmd.Execute(), "persistent DB_DRIVER")
}
