package persistence

import (
	"testing"

	"github.com/storefront/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
)

func TestValidateSortOrder(t *testing.T) {
	assert.Equal(t, "ASC", ValidateSortOrder(" asc "))
	assert.Equal(t, "DESC", ValidateSortOrder("desc"))
	assert.Equal(t, "DESC", ValidateSortOrder("; DROP TABLE products"))
	assert.Equal(t, "DESC", ValidateSortOrder(""))
}

func TestValidateSortField(t *testing.T) {
	assert.Equal(t, "price", ValidateSortField("price", ProductSortFields, "created_at"))
	assert.Equal(t, "created_at", ValidateSortField("password_hash", CustomerSortFields, "created_at"))
	assert.Equal(t, "created_at", ValidateSortField("", OrderSortFields, "created_at"))
}

func TestOrderClause(t *testing.T) {
	assert.Equal(t, "created_at DESC", orderClause(shared.Filter{}, ProductSortFields))
	assert.Equal(t, "total ASC", orderClause(shared.Filter{OrderBy: "total", OrderDir: "asc"}, OrderSortFields))
	assert.Equal(t, "created_at DESC", orderClause(shared.Filter{OrderBy: "1;--"}, OrderSortFields))
}
