package postgres

import (
	"strings"

	"gorm.io/gorm"
)

// SharedHelpers holds query helpers used by every repository
type SharedHelpers struct {
	db *gorm.DB
}

func NewSharedHelpers(db *gorm.DB) *SharedHelpers {
	return &SharedHelpers{db: db}
}

// getDB returns tx when the caller is inside a transaction, otherwise the root connection
func (h *SharedHelpers) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return h.db
}

// ApplyPaginationAndSort orders by sortBy when it is one of allowed, falling
// back to defaultSort, then applies limit/offset.
func (h *SharedHelpers) ApplyPaginationAndSort(query *gorm.DB, sortBy, sortOrder string, limit, offset int, defaultSort string, allowed ...string) *gorm.DB {
	column := defaultSort
	for _, a := range allowed {
		if sortBy == a {
			column = a
			break
		}
	}

	direction := "DESC"
	if strings.EqualFold(sortOrder, "asc") {
		direction = "ASC"
	}
	query = query.Order(column + " " + direction).Order("id " + direction)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	return query
}

// likePattern builds a case-insensitive LIKE pattern for use with LOWER(column).
func likePattern(search string) string {
	return "%" + strings.ToLower(strings.TrimSpace(search)) + "%"
}

func exists(query *gorm.DB) (bool, error) {
	var count int64
	err := query.Count(&count).Error
	return count > 0, err
}
