package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithMigrationsTable(t *testing.T) {
	assert.Equal(t,
		"postgres://u:p@db:5432/shop?sslmode=disable&x-migrations-table=migrations",
		withMigrationsTable("postgres://u:p@db:5432/shop?sslmode=disable", "migrations"))
	assert.Equal(t,
		"postgres://u:p@db:5432/shop?x-migrations-table=migrations",
		withMigrationsTable("postgres://u:p@db:5432/shop", "migrations"))
}
