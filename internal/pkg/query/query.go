package query

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type Scope func(*gorm.DB) *gorm.DB

// Query accumulates filter scopes over a table of row type T.
type Query[T any] struct {
	db      *gorm.DB
	ctx     context.Context
	table   string
	orderBy string
	scopes  []Scope
}

func New[T any](db *gorm.DB, table string) *Query[T] {
	return &Query[T]{
		db:     db,
		ctx:    context.Background(),
		table:  table,
		scopes: make([]Scope, 0),
	}
}

func (q *Query[T]) Context(ctx context.Context) *Query[T] {
	q.ctx = ctx
	return q
}

func (q *Query[T]) Where(cond interface{}, args ...interface{}) *Query[T] {
	q.scopes = append(q.scopes, func(db *gorm.DB) *gorm.DB {
		return db.Where(cond, args...)
	})
	return q
}

// WhereIf applies the condition only when ok holds. Used for optional filter fields.
func (q *Query[T]) WhereIf(ok bool, cond interface{}, args ...interface{}) *Query[T] {
	if !ok {
		return q
	}
	return q.Where(cond, args...)
}

func (q *Query[T]) EqualIf(column string, value *string) *Query[T] {
	if value == nil || *value == "" {
		return q
	}
	return q.Where(column+" = ?", *value)
}

// Between keeps rows with column inside [from, to). Nil bounds are open.
func (q *Query[T]) Between(column string, from, to *time.Time) *Query[T] {
	if from != nil {
		q.Where(column+" >= ?", *from)
	}
	if to != nil {
		q.Where(column+" < ?", *to)
	}
	return q
}

func (q *Query[T]) Order(order string) *Query[T] {
	q.orderBy = order
	return q
}

func (q *Query[T]) build() *gorm.DB {
	db := q.db.WithContext(q.ctx).Table(q.table)
	for _, scope := range q.scopes {
		db = scope(db)
	}
	return db
}

func (q *Query[T]) Count() (int64, error) {
	var count int64
	err := q.build().Count(&count).Error
	return count, err
}

func (q *Query[T]) Find() ([]T, error) {
	var rows []T
	db := q.build()
	if q.orderBy != "" {
		db = db.Order(q.orderBy)
	}
	err := db.Find(&rows).Error
	return rows, err
}

func (q *Query[T]) Exists() (bool, error) {
	count, err := q.Count()
	return count > 0, err
}

// Paginate counts, loads one page and converts each row into its domain form.
func Paginate[T any, D any](q *Query[T], page Page, converter func(*T) (*D, error)) (*Result[*D], error) {
	page.normalize()

	total, err := q.Count()
	if err != nil {
		return nil, err
	}

	db := q.build()
	if q.orderBy != "" {
		db = db.Order(q.orderBy)
	}

	var rows []T
	if err := db.Offset(page.offset()).Limit(page.Size).Find(&rows).Error; err != nil {
		return nil, err
	}

	items, err := convertAll(rows, converter)
	if err != nil {
		return nil, err
	}
	return newResult(items, page, total), nil
}

func All[T any, D any](q *Query[T], converter func(*T) (*D, error)) ([]*D, error) {
	rows, err := q.Find()
	if err != nil {
		return nil, err
	}
	return convertAll(rows, converter)
}

func convertAll[T any, D any](rows []T, converter func(*T) (*D, error)) ([]*D, error) {
	items := make([]*D, 0, len(rows))
	for i := range rows {
		item, err := converter(&rows[i])
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}
