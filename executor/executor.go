// Package executor runs assembled page statements and shapes the results
// into pages: it detects whether a next page exists via the extra
// lookahead row, trims to the requested size, and mints the next opaque
// cursor from the last delivered row.
//
// Executors are stateless between requests; the only shared resource is
// the database handle they were built with. Cancellation and deadlines are
// whatever the caller's context and connection pool provide.
package executor

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/aarondl/null/v8"
	"github.com/aarondl/sqlboiler/v4/boil"
	"github.com/aarondl/sqlboiler/v4/queries"
	"go.uber.org/zap"

	kpiquery "github.com/edpulse/kpiquery-go"
	"github.com/edpulse/kpiquery-go/cursor"
	"github.com/edpulse/kpiquery-go/query"
)

// Executor paginates one entity kind. T is the row model the statement
// binds into (e.g. *kpiquery.KpiValue).
type Executor[T any] struct {
	db        boil.ContextExecutor
	entity    *query.Entity
	extract   func(T) map[string]any
	log       *zap.Logger
	withTotal bool
}

// Option configures an Executor.
type Option func(*config)

type config struct {
	log       *zap.Logger
	withTotal bool
}

// WithLogger attaches a structured logger. Without it the executor is
// silent.
func WithLogger(log *zap.Logger) Option {
	return func(c *config) {
		if log != nil {
			c.log = log
		}
	}
}

// WithTotalCount makes offset-mode pages carry PageInfo.Total, at the cost
// of one count query per page. Cursor-mode pages never count.
func WithTotalCount() Option {
	return func(c *config) {
		c.withTotal = true
	}
}

// New creates an executor for one entity kind.
//
// extract must return the row's cursor-eligible columns keyed by column
// name, covering "id" and every whitelisted sort column; the row models in
// the root package provide this as CursorValues.
//
// Example:
//
//	exec := executor.New(db, query.KpiValues, (*kpiquery.KpiValue).CursorValues)
//	page, err := exec.Paginate(ctx, filters, opts)
func New[T any](
	db boil.ContextExecutor,
	entity *query.Entity,
	extract func(T) map[string]any,
	opts ...Option,
) *Executor[T] {
	cfg := config{log: zap.NewNop()}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Executor[T]{
		db:        db,
		entity:    entity,
		extract:   extract,
		log:       cfg.log,
		withTotal: cfg.withTotal,
	}
}

// Paginate fetches one page. It executes the assembled statement exactly
// once and performs no retries: a cursor is only valid if the page it
// describes actually reached the client, so a failed fetch must surface
// as a DataAccessError rather than be papered over.
//
// InvalidSortFieldError from statement assembly passes through unchanged.
func (e *Executor[T]) Paginate(
	ctx context.Context,
	filters kpiquery.QueryFilters,
	page kpiquery.PaginationOptions,
) (*kpiquery.Page[T], error) {
	stmt, err := query.Build(e.entity, filters, page)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	var rows []T
	if err := queries.Raw(stmt.SQL, stmt.Args...).Bind(ctx, e.db, &rows); err != nil {
		return nil, &kpiquery.DataAccessError{Entity: e.entity.Kind, Err: err}
	}
	elapsed := time.Since(start)

	result := BuildPage(rows, stmt, e.extract)
	result.Metadata.QueryTimeMs = elapsed.Milliseconds()

	if _, offset := page.Mode().(kpiquery.OffsetMode); offset && e.withTotal {
		total, err := e.Count(ctx, filters)
		if err != nil {
			return nil, err
		}
		result.PageInfo.Total = &total
	}

	e.log.Debug("page fetched",
		zap.String("entity", string(e.entity.Kind)),
		zap.String("strategy", result.Metadata.Strategy),
		zap.Int("rows", len(result.Rows)),
		zap.Bool("has_next_page", result.PageInfo.HasNextPage),
		zap.Duration("query_time", elapsed),
	)

	return result, nil
}

// Count returns the number of rows the entity's filter function yields for
// the given filters, ignoring pagination.
func (e *Executor[T]) Count(ctx context.Context, filters kpiquery.QueryFilters) (int64, error) {
	stmt := query.BuildCount(e.entity, filters)

	var result struct {
		Count int64 `boil:"count"`
	}
	if err := queries.Raw(stmt.SQL, stmt.Args...).Bind(ctx, e.db, &result); err != nil {
		return 0, &kpiquery.DataAccessError{Entity: e.entity.Kind, Err: err}
	}

	return result.Count, nil
}

// BuildPage shapes fetched rows into a page. The statement fetched
// Limit+1 rows; a full lookahead means a next page exists and the extra
// row is trimmed off. The next cursor is minted from the last row the
// client actually receives, so NextCursor is non-nil exactly when
// HasNextPage is true and the page is non-empty.
func BuildPage[T any](rows []T, stmt *query.Statement, extract func(T) map[string]any) *kpiquery.Page[T] {
	hasNextPage := len(rows) > stmt.Limit
	trimmed := rows
	if hasNextPage {
		trimmed = rows[:stmt.Limit]
	}

	info := kpiquery.PageInfo{HasNextPage: hasNextPage}
	if hasNextPage && len(trimmed) > 0 {
		values := extract(trimmed[len(trimmed)-1])
		token := cursor.Encode(
			formatCursorValue(values["id"]),
			formatCursorValue(values[stmt.SortColumn]),
		)
		info.NextCursor = &token
	}

	strategy := "offset"
	if stmt.Keyset {
		strategy = "keyset"
	}

	return &kpiquery.Page[T]{
		Rows:     trimmed,
		PageInfo: info,
		Metadata: kpiquery.Metadata{
			Strategy:     strategy,
			RowsExamined: len(rows),
		},
	}
}

// formatCursorValue renders a cursor tiebreak so that Postgres can parse
// it back through the sort field's cast. Timestamps use RFC 3339, which
// both date and timestamptz casts accept.
func formatCursorValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case time.Time:
		return val.Format(time.RFC3339Nano)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(val, 10)
	case int:
		return strconv.Itoa(val)
	case null.String:
		return val.String
	default:
		return fmt.Sprintf("%v", v)
	}
}
