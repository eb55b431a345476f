package repository

import (
	"context"
	"strings"

	"github.com/vekst-crm/crm-api/internal/auth"
	"gorm.io/gorm"
)

// MaxPageSize is the maximum allowed page size for paginated queries
const MaxPageSize = 200

// SortOrder represents the sort direction
type SortOrder string

const (
	SortOrderAsc  SortOrder = "asc"
	SortOrderDesc SortOrder = "desc"
)

// SortConfig holds sorting configuration for list queries
type SortConfig struct {
	Field string
	Order SortOrder
}

// DefaultSortConfig returns a default sort configuration (updated_at DESC)
func DefaultSortConfig() SortConfig {
	return SortConfig{
		Field: "updatedAt",
		Order: SortOrderDesc,
	}
}

// ParseSortOrder parses a string into SortOrder, defaulting to desc
func ParseSortOrder(s string) SortOrder {
	if strings.ToLower(s) == "asc" {
		return SortOrderAsc
	}
	return SortOrderDesc
}

// BuildOrderClause builds the ORDER BY clause from a whitelist mapping of
// API field names to database columns. Unknown fields fall back to the
// default column.
func BuildOrderClause(config SortConfig, fieldMap map[string]string, defaultColumn string) string {
	column, ok := fieldMap[config.Field]
	if !ok {
		column = defaultColumn
	}

	order := "DESC"
	if config.Order == SortOrderAsc {
		order = "ASC"
	}

	return column + " " + order
}

// NormalizePaging clamps page and pageSize to sane bounds
func NormalizePaging(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return page, pageSize
}

// ApplyWorkspaceFilter applies the tenant scope to a GORM query.
// When no filter is set on the context the query is returned unchanged.
func ApplyWorkspaceFilter(ctx context.Context, query *gorm.DB) *gorm.DB {
	workspaceID := auth.GetEffectiveWorkspaceFilter(ctx)
	if workspaceID != nil {
		return query.Where("workspace_id = ?", *workspaceID)
	}
	return query
}

// ApplyWorkspaceFilterWithAlias applies the tenant scope using a table
// alias, for queries joining multiple scoped tables
func ApplyWorkspaceFilterWithAlias(ctx context.Context, query *gorm.DB, tableAlias string) *gorm.DB {
	workspaceID := auth.GetEffectiveWorkspaceFilter(ctx)
	if workspaceID != nil {
		return query.Where(tableAlias+".workspace_id = ?", *workspaceID)
	}
	return query
}
