package gateway

import (
	"context"
	"fmt"
	"reflect"

	"gorm.io/gorm"
)

type condition struct {
	clause string
	value  any
}

type ordering struct {
	column     string
	descending bool
}

// Query builds a filtered read over one table. Filters and ordering mirror the
// gateway contract: eq/in/gte/lt, order, limit, then one of Find, Single, or
// Count.
type Query struct {
	gw         *Gateway
	table      string
	columns    []string
	conditions []condition
	orders     []ordering
	limit      int
}

// From starts a query against the named table.
func (g *Gateway) From(table string) *Query {
	return &Query{gw: g, table: table}
}

// Select restricts the returned columns. Defaults to all columns.
func (q *Query) Select(columns ...string) *Query {
	q.columns = columns
	return q
}

// Eq filters on column equality.
func (q *Query) Eq(column string, value any) *Query {
	q.conditions = append(q.conditions, condition{clause: column + " = ?", value: value})
	return q
}

// In filters on column membership in values.
func (q *Query) In(column string, values any) *Query {
	q.conditions = append(q.conditions, condition{clause: column + " IN ?", value: values})
	return q
}

// Gte filters on column >= value.
func (q *Query) Gte(column string, value any) *Query {
	q.conditions = append(q.conditions, condition{clause: column + " >= ?", value: value})
	return q
}

// Lt filters on column < value.
func (q *Query) Lt(column string, value any) *Query {
	q.conditions = append(q.conditions, condition{clause: column + " < ?", value: value})
	return q
}

// Order sorts by the column, descending when desc is true. Repeated calls add
// secondary sort keys.
func (q *Query) Order(column string, desc bool) *Query {
	q.orders = append(q.orders, ordering{column: column, descending: desc})
	return q
}

// Limit caps the number of returned rows.
func (q *Query) Limit(n int) *Query {
	q.limit = n
	return q
}

// Find executes the query into dest, which must be a pointer to a slice of rows.
func (q *Query) Find(ctx context.Context, dest any) error {
	if err := q.apply(ctx).Find(dest).Error; err != nil {
		return fmt.Errorf("gateway: query %s: %w", q.table, err)
	}
	return nil
}

// Single executes the query expecting exactly one matching row. Zero matches
// return ErrRowNotFound, more than one return ErrMultipleRows.
func (q *Query) Single(ctx context.Context, dest any) error {
	destValue := reflect.ValueOf(dest)
	if destValue.Kind() != reflect.Pointer || destValue.IsNil() {
		return fmt.Errorf("gateway: query %s: single destination must be a non-nil pointer", q.table)
	}

	sliceValue := reflect.New(reflect.SliceOf(destValue.Elem().Type()))
	probe := *q
	probe.limit = 2
	if err := probe.apply(ctx).Find(sliceValue.Interface()).Error; err != nil {
		return fmt.Errorf("gateway: query %s: %w", q.table, err)
	}

	switch sliceValue.Elem().Len() {
	case 0:
		return ErrRowNotFound
	case 1:
		destValue.Elem().Set(sliceValue.Elem().Index(0))
		return nil
	default:
		return ErrMultipleRows
	}
}

// Count executes a count-only query; no row payload is transferred.
func (q *Query) Count(ctx context.Context) (int64, error) {
	var count int64
	tx := q.gw.db.WithContext(ctx).Table(q.table)
	for _, cond := range q.conditions {
		tx = tx.Where(cond.clause, cond.value)
	}
	if err := tx.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("gateway: count %s: %w", q.table, err)
	}
	return count, nil
}

func (q *Query) apply(ctx context.Context) *gorm.DB {
	tx := q.gw.db.WithContext(ctx).Table(q.table)
	if len(q.columns) > 0 {
		tx = tx.Select(q.columns)
	}
	for _, cond := range q.conditions {
		tx = tx.Where(cond.clause, cond.value)
	}
	for _, order := range q.orders {
		direction := "ASC"
		if order.descending {
			direction = "DESC"
		}
		tx = tx.Order(order.column + " " + direction)
	}
	if q.limit > 0 {
		tx = tx.Limit(q.limit)
	}
	return tx
}
