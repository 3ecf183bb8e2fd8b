package postgres

import (
	"taskhub/internal/domain/listing"

	"gorm.io/gorm"
)

// Titles compare byte-wise so the database and the in-memory store agree.
var (
	taskOrderColumns = map[string]string{
		"created_at": "created_at",
		"updated_at": "updated_at",
		"title":      `title COLLATE "C"`,
		"priority":   "CASE priority WHEN 'low' THEN 0 WHEN 'medium' THEN 1 ELSE 2 END",
	}
	postOrderColumns = map[string]string{
		"created_at": "created_at",
		"updated_at": "updated_at",
		"title":      `title COLLATE "C"`,
	}
)

// orderAndPage applies the sort with an id tie-break in the same direction,
// then the page window. ok is false when the page cannot hold any row.
func orderAndPage(q *gorm.DB, columns map[string]string, s listing.Sort, page listing.Page) (*gorm.DB, bool) {
	offset, limit, ok := page.Window()
	if !ok {
		return q, false
	}

	column, known := columns[s.Field]
	if !known {
		column = columns[listing.DefaultSortField]
	}
	direction := " ASC"
	if s.Desc {
		direction = " DESC"
	}

	return q.Order(column + direction).Order("id" + direction).Offset(offset).Limit(limit), true
}
