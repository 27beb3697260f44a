package database

import "gorm.io/gorm"

// Page is one page of query results plus the total count before paging.
type Page[T any] struct {
	Items      []T
	TotalItems int64
}

// Paginate counts the rows matched by query and fetches one page of them.
// page is 1-based.
func Paginate[T any](query *gorm.DB, page, limit int) (*Page[T], error) {
	var totalItems int64
	if err := query.Session(&gorm.Session{}).Model(new(T)).Count(&totalItems).Error; err != nil {
		return nil, err
	}

	var results []T
	offset := (page - 1) * limit
	if err := query.Session(&gorm.Session{}).Offset(offset).Limit(limit).Find(&results).Error; err != nil {
		return nil, err
	}

	return &Page[T]{Items: results, TotalItems: totalItems}, nil
}
