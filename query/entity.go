// Package query assembles parameterized page statements for the analytics
// result sets. Each entity kind is described by an Entity record: the SQL
// filter function to call, its positional parameter order, the row alias,
// and the closed whitelist of sortable columns.
//
// Column names cannot be bound as query parameters, so the whitelist is the
// single injection defense for dynamic identifiers. It is an exhaustive
// enumerated mapping from accepted token to column, never an interpolation
// of client input. Adding a sortable column means editing the entity record
// here; that choke point is deliberate and auditable.
package query

import (
	kpiquery "github.com/edpulse/kpiquery-go"
)

// ParamFn extracts one positional argument for the entity's SQL filter
// function. Invalid null.String fields bind as SQL NULL, which the
// function treats as "unconstrained".
type ParamFn func(f kpiquery.QueryFilters) any

// SortField is one whitelisted sort column, with the SQL type to cast the
// bound cursor tiebreak to in keyset predicates. The rows come back from a
// set-returning function, so without the cast Postgres would compare the
// tiebreak as text.
type SortField struct {
	Column string
	Cast   string
}

// Entity is the metadata driving statement assembly for one result kind.
// The three kinds share one assembler; only this record differs.
type Entity struct {
	Kind        kpiquery.EntityKind
	Function    string
	Alias       string
	DefaultSort string
	SortFields  map[string]SortField
	Params      []ParamFn
}

// KpiValues describes the per-KPI periodic measurement rows.
var KpiValues = &Entity{
	Kind:        kpiquery.KindKpiValue,
	Function:    "filter_kpi_values",
	Alias:       "kv",
	DefaultSort: "period_start",
	SortFields: map[string]SortField{
		"period_start": {Column: "period_start", Cast: "date"},
		"period_end":   {Column: "period_end", Cast: "date"},
		"value":        {Column: "value", Cast: "numeric"},
		"metric_key":   {Column: "metric_key", Cast: "text"},
		"created_at":   {Column: "created_at", Cast: "timestamptz"},
	},
	Params: []ParamFn{
		func(f kpiquery.QueryFilters) any { return f.KpiID },
		func(f kpiquery.QueryFilters) any { return f.SchoolID },
		func(f kpiquery.QueryFilters) any { return f.SellerID },
		func(f kpiquery.QueryFilters) any { return f.PeriodStart },
		func(f kpiquery.QueryFilters) any { return f.PeriodEnd },
	},
}

// DailyAggregates describes the per-entity daily rollup rows.
var DailyAggregates = &Entity{
	Kind:        kpiquery.KindDailyAggregate,
	Function:    "filter_daily_aggregates",
	Alias:       "da",
	DefaultSort: "metric_date",
	SortFields: map[string]SortField{
		"metric_date": {Column: "metric_date", Cast: "date"},
		"metric_key":  {Column: "metric_key", Cast: "text"},
		"value":       {Column: "value", Cast: "numeric"},
		"created_at":  {Column: "created_at", Cast: "timestamptz"},
	},
	Params: []ParamFn{
		func(f kpiquery.QueryFilters) any { return f.SchoolID },
		func(f kpiquery.QueryFilters) any { return f.SellerID },
		func(f kpiquery.QueryFilters) any { return f.MetricKey },
		func(f kpiquery.QueryFilters) any { return f.DateFrom },
		func(f kpiquery.QueryFilters) any { return f.DateTo },
	},
}

// SchoolComparisons describes the cross-school ranked comparison rows.
var SchoolComparisons = &Entity{
	Kind:        kpiquery.KindSchoolComparison,
	Function:    "filter_school_comparisons",
	Alias:       "sc",
	DefaultSort: "rank",
	SortFields: map[string]SortField{
		"rank":        {Column: "rank", Cast: "bigint"},
		"school_name": {Column: "school_name", Cast: "text"},
		"metric_key":  {Column: "metric_key", Cast: "text"},
		"value":       {Column: "value", Cast: "numeric"},
		"created_at":  {Column: "created_at", Cast: "timestamptz"},
	},
	Params: []ParamFn{
		func(f kpiquery.QueryFilters) any { return f.MetricKey },
		func(f kpiquery.QueryFilters) any { return f.DateFrom },
		func(f kpiquery.QueryFilters) any { return f.DateTo },
	},
}

var entities = map[kpiquery.EntityKind]*Entity{
	kpiquery.KindKpiValue:         KpiValues,
	kpiquery.KindDailyAggregate:   DailyAggregates,
	kpiquery.KindSchoolComparison: SchoolComparisons,
}

// ForKind returns the entity metadata for a kind.
func ForKind(kind kpiquery.EntityKind) (*Entity, bool) {
	e, ok := entities[kind]
	return e, ok
}
