// Package incremental turns HWMs into the next extraction step: SQL queries
// reading only rows past a column HWM, and the files of a folder listing not
// yet recorded by a file list HWM.
package incremental

import (
	"time"

	"cloud.google.com/go/civil"
	"github.com/Masterminds/squirrel"

	"github.com/arthur-debert/hwmstore/hwm"
)

// Option configures query building
type Option func(*config)

type config struct {
	sq squirrel.StatementBuilderType
}

// WithPlaceholders selects the bind parameter style, e.g. squirrel.Dollar for PostgreSQL.
// The default is squirrel.Question.
func WithPlaceholders(format squirrel.PlaceholderFormat) Option {
	return func(c *config) {
		c.sq = c.sq.PlaceholderFormat(format)
	}
}

func newConfig(opts []Option) *config {
	c := &config{sq: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Window selects the rows of the HWM source located after the HWM value.
// No columns means "*". An unset HWM selects every row.
// Partitioned columns also filter on their partition values.
func Window[T hwm.ColumnValue](h hwm.ColumnHWM[T], columns []string, opts ...Option) squirrel.SelectBuilder {
	if len(columns) == 0 {
		columns = []string{"*"}
	}
	q := newConfig(opts).sq.Select(columns...).From(h.Source().FullName())
	return filter(q, h)
}

// Bounded is Window limited to rows up to and including upper
func Bounded[T hwm.ColumnValue](h hwm.ColumnHWM[T], upper T, columns []string, opts ...Option) squirrel.SelectBuilder {
	return Window(h, columns, opts...).Where(squirrel.LtOrEq{h.Column().Name: SQLValue(upper)})
}

// MaxQuery selects the greatest column value past the HWM, the value the HWM
// should move to once the window was extracted.
func MaxQuery[T hwm.ColumnValue](h hwm.ColumnHWM[T], opts ...Option) squirrel.SelectBuilder {
	q := newConfig(opts).sq.
		Select("MAX(" + h.Column().Name + ")").
		From(h.Source().FullName())
	return filter(q, h)
}

func filter[T hwm.ColumnValue](q squirrel.SelectBuilder, h hwm.ColumnHWM[T]) squirrel.SelectBuilder {
	if partition := h.Column().PartitionValues(); len(partition) > 0 {
		eq := squirrel.Eq{}
		for _, pv := range partition {
			eq[pv.Key] = pv.Value
		}
		q = q.Where(eq)
	}
	if v, ok := h.Value(); ok {
		q = q.Where(squirrel.Gt{h.Column().Name: SQLValue(v)})
	}
	return q
}

// Advance moves h to the value returned by MaxQuery. A nil latest, meaning no new rows, keeps h.
func Advance[T hwm.ColumnValue](h hwm.ColumnHWM[T], latest any) (hwm.ColumnHWM[T], error) {
	if d, ok := latest.(time.Time); ok {
		var zero T
		if _, isDate := any(zero).(civil.Date); isDate {
			latest = civil.DateOf(d)
		}
	}
	return h.WithValue(latest)
}

// SQLValue converts a column value into a database/sql argument.
// Dates become midnight UTC.
func SQLValue[T hwm.ColumnValue](v T) any {
	if d, ok := any(v).(civil.Date); ok {
		return d.In(time.UTC)
	}
	return v
}
