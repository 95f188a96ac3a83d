// Package kpiquery turns untrusted filter/sort/pagination input into
// parameterized, keyset-paginated queries over the analytics store.
//
// The package is split along the request path:
//
//   - root package: typed filters, pagination options, row models, errors
//   - cursor: opaque pagination cursor codec
//   - query: per-entity metadata (sort whitelists) and statement assembly
//   - executor: statement execution and page assembly
//
// Validation is deliberately asymmetric. Malformed filter and pagination
// values are dropped silently (free-form client input), while a sort field
// outside an entity's whitelist is a hard error: column names cannot be
// bound as parameters, so the whitelist is the only injection defense, and
// silently substituting a different ordering would corrupt pagination.
package kpiquery

import (
	"time"

	"github.com/aarondl/null/v8"
)

// EntityKind identifies one of the three paginated result sets.
// It selects the sort whitelist, the underlying SQL filter function,
// and the row alias used when assembling a statement.
type EntityKind string

const (
	KindKpiValue         EntityKind = "kpi_value"
	KindDailyAggregate   EntityKind = "daily_aggregate"
	KindSchoolComparison EntityKind = "school_comparison"
)

// SortDirection is a normalized sort direction. ValidatePagination only
// ever produces SortAsc or SortDesc.
type SortDirection string

const (
	SortAsc  SortDirection = "ASC"
	SortDesc SortDirection = "DESC"
)

// KpiValue is one periodic measurement of a KPI, as returned by the
// filter_kpi_values function.
type KpiValue struct {
	ID          string      `boil:"id" json:"id"`
	KpiID       string      `boil:"kpi_id" json:"kpi_id"`
	SchoolID    null.String `boil:"school_id" json:"school_id,omitempty"`
	SellerID    null.String `boil:"seller_id" json:"seller_id,omitempty"`
	MetricKey   string      `boil:"metric_key" json:"metric_key"`
	PeriodStart time.Time   `boil:"period_start" json:"period_start"`
	PeriodEnd   time.Time   `boil:"period_end" json:"period_end"`
	Value       float64     `boil:"value" json:"value"`
	CreatedAt   time.Time   `boil:"created_at" json:"created_at"`
}

// CursorValues returns the columns eligible as cursor tie-breaks,
// keyed by column name. It covers the id column and every column in
// the entity's sort whitelist.
func (v *KpiValue) CursorValues() map[string]any {
	return map[string]any{
		"id":           v.ID,
		"metric_key":   v.MetricKey,
		"period_start": v.PeriodStart,
		"period_end":   v.PeriodEnd,
		"value":        v.Value,
		"created_at":   v.CreatedAt,
	}
}

// DailyAggregate is one per-entity daily rollup row, as returned by the
// filter_daily_aggregates function.
type DailyAggregate struct {
	ID         string      `boil:"id" json:"id"`
	SchoolID   null.String `boil:"school_id" json:"school_id,omitempty"`
	SellerID   null.String `boil:"seller_id" json:"seller_id,omitempty"`
	MetricKey  string      `boil:"metric_key" json:"metric_key"`
	MetricDate time.Time   `boil:"metric_date" json:"metric_date"`
	Value      float64     `boil:"value" json:"value"`
	CreatedAt  time.Time   `boil:"created_at" json:"created_at"`
}

// CursorValues returns the columns eligible as cursor tie-breaks.
func (a *DailyAggregate) CursorValues() map[string]any {
	return map[string]any{
		"id":          a.ID,
		"metric_key":  a.MetricKey,
		"metric_date": a.MetricDate,
		"value":       a.Value,
		"created_at":  a.CreatedAt,
	}
}

// SchoolComparison is one cross-school ranked comparison row, as returned
// by the filter_school_comparisons function.
type SchoolComparison struct {
	ID         string    `boil:"id" json:"id"`
	SchoolID   string    `boil:"school_id" json:"school_id"`
	SchoolName string    `boil:"school_name" json:"school_name"`
	MetricKey  string    `boil:"metric_key" json:"metric_key"`
	Rank       int64     `boil:"rank" json:"rank"`
	Value      float64   `boil:"value" json:"value"`
	CreatedAt  time.Time `boil:"created_at" json:"created_at"`
}

// CursorValues returns the columns eligible as cursor tie-breaks.
func (c *SchoolComparison) CursorValues() map[string]any {
	return map[string]any{
		"id":          c.ID,
		"school_name": c.SchoolName,
		"metric_key":  c.MetricKey,
		"rank":        c.Rank,
		"value":       c.Value,
		"created_at":  c.CreatedAt,
	}
}

// PageInfo contains metadata about one paginated result.
//
// NextCursor is non-nil iff HasNextPage is true and at least one row was
// returned. Total is only populated in offset mode when the executor was
// configured with WithTotalCount; cursor mode never counts.
type PageInfo struct {
	HasNextPage bool    `json:"hasNextPage"`
	NextCursor  *string `json:"nextCursor"`
	Total       *int64  `json:"total,omitempty"`
}

// Page is a single page of query results. It is constructed fresh per
// request and never cached.
type Page[T any] struct {
	Rows     []T      `json:"rows"`
	PageInfo PageInfo `json:"pageInfo"`
	Metadata Metadata `json:"-"`
}

// Metadata carries observability data about how a page was produced.
type Metadata struct {
	// Strategy is "keyset" or "offset".
	Strategy string

	// QueryTimeMs is the time spent executing the page statement.
	QueryTimeMs int64

	// RowsExamined is the number of rows fetched from the store,
	// including the extra lookahead row.
	RowsExamined int
}
