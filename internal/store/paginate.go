package store

import (
	"context"

	"gorm.io/gorm"
)

// Page describes one slice of a listing. Pages are 1-based; a page past the
// end yields an empty list with the same metadata.
type Page struct {
	Total int64 `json:"total"`
	Limit int   `json:"limit"`
	Page  int   `json:"page"`
	Pages int   `json:"pages"`
}

func NewPage(total int64, page, limit int) Page {
	if page < 1 {
		page = 1
	}
	pages := 0
	if limit > 0 {
		pages = int((total + int64(limit) - 1) / int64(limit))
	}
	return Page{Total: total, Limit: limit, Page: page, Pages: pages}
}

// Offset is the number of rows skipped before this page.
func (p Page) Offset() int {
	return (p.Page - 1) * p.Limit
}

// paginate counts the rows matched by q and loads the requested page.
// Ordering and preloads belong in scopes, which apply to the page query only.
// Pages past the end are answered without querying, so the offset never
// has to be computed for them.
func paginate[T any](ctx context.Context, q *gorm.DB, page, limit int, scopes ...func(*gorm.DB) *gorm.DB) ([]T, Page, error) {
	q = q.WithContext(ctx)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, Page{}, err
	}

	p := NewPage(total, page, limit)
	items := []T{}
	if p.Page > p.Pages {
		return items, p, nil
	}
	if err := q.Scopes(scopes...).Offset(p.Offset()).Limit(p.Limit).Find(&items).Error; err != nil {
		return nil, Page{}, err
	}
	return items, p, nil
}

func orderBy(columns ...string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		for _, c := range columns {
			db = db.Order(c)
		}
		return db
	}
}

func preload(associations ...string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		for _, a := range associations {
			db = db.Preload(a)
		}
		return db
	}
}
