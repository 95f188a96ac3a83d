package query

import (
	"fmt"
	"math"
	"strings"

	"github.com/aarondl/strmangle"

	kpiquery "github.com/edpulse/kpiquery-go"
	"github.com/edpulse/kpiquery-go/cursor"
)

// Statement is one assembled, parameterized page query plus the resolved
// pagination state the executor needs to interpret its results.
type Statement struct {
	SQL  string
	Args []any

	// SortColumn is the whitelisted column the keyset predicate and the
	// next cursor's tiebreak are built on.
	SortColumn string
	Direction  kpiquery.SortDirection

	// Limit is the page size the client receives. The statement itself
	// fetches Limit+1 rows so the executor can detect a next page
	// without a count query.
	Limit int

	// Keyset is true when a cursor positioned this page.
	Keyset bool
}

// Build assembles the page statement for one entity kind:
//
//	SELECT kv.* FROM filter_kpi_values($1, ..., $5) AS kv
//	WHERE ("kv"."period_start" > $6::date
//	   OR ("kv"."period_start" = $6::date AND "kv"."id" > $7::uuid))
//	ORDER BY "kv"."period_start" ASC, "kv"."id" ASC
//	LIMIT 26
//
// Filter fields bind in the fixed positional order the entity's SQL
// function expects, with absent filters as NULL. A decoded cursor adds the
// strict lexicographic keyset predicate shown above (> for ASC, < for
// DESC), which keeps pagination stable under concurrent inserts. Without a
// cursor, an explicit page adds OFFSET page*limit instead — the documented
// best-effort path. The id column is always the final ORDER BY tie-break,
// so the order is total even when many rows share the sort value.
//
// The only error is InvalidSortFieldError: a sortBy outside the entity's
// whitelist is a contract violation, not tolerable input, because the
// column name is interpolated into the statement.
func Build(e *Entity, filters kpiquery.QueryFilters, page kpiquery.PaginationOptions) (*Statement, error) {
	limit := kpiquery.ClampLimit(page.Limit)

	sortToken := page.SortBy
	if sortToken == "" {
		sortToken = e.DefaultSort
	}
	field, ok := e.SortFields[sortToken]
	if !ok {
		return nil, &kpiquery.InvalidSortFieldError{Entity: e.Kind, Field: sortToken}
	}

	direction := kpiquery.SortAsc
	if page.SortDirection == kpiquery.SortDesc {
		direction = kpiquery.SortDesc
	}

	args := make([]any, 0, len(e.Params)+2)
	for _, param := range e.Params {
		args = append(args, param(filters))
	}

	placeholders := make([]string, len(e.Params))
	for i := range placeholders {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}

	sortIdent := quoteIdent(e.Alias, field.Column)
	idIdent := quoteIdent(e.Alias, "id")

	var b strings.Builder
	fmt.Fprintf(&b, "SELECT %s.* FROM %s(%s) AS %s",
		e.Alias, e.Function, strings.Join(placeholders, ", "), e.Alias)

	var keyset bool
	if mode, ok := page.Mode().(kpiquery.KeysetMode); ok {
		if cur := cursor.Decode(mode.Cursor); cur != nil {
			keyset = true

			op := ">"
			if direction == kpiquery.SortDesc {
				op = "<"
			}

			args = append(args, cur.Tiebreak, cur.ID)
			tiebreakParam := fmt.Sprintf("$%d::%s", len(args)-1, field.Cast)
			idParam := fmt.Sprintf("$%d::uuid", len(args))

			fmt.Fprintf(&b, " WHERE (%s %s %s OR (%s = %s AND %s %s %s))",
				sortIdent, op, tiebreakParam,
				sortIdent, tiebreakParam,
				idIdent, op, idParam)
		}
	}

	fmt.Fprintf(&b, " ORDER BY %s %s, %s %s", sortIdent, direction, idIdent, direction)

	// One extra row tells the executor whether a next page exists.
	fmt.Fprintf(&b, " LIMIT %d", limit+1)

	if mode, ok := page.Mode().(kpiquery.OffsetMode); ok && !keyset && mode.Page > 0 {
		// Saturate rather than wrap: a page number past the end of the
		// set must behave like an empty page, never render OFFSET -N.
		offset := math.MaxInt
		if mode.Page <= math.MaxInt/limit {
			offset = mode.Page * limit
		}
		fmt.Fprintf(&b, " OFFSET %d", offset)
	}

	return &Statement{
		SQL:        b.String(),
		Args:       args,
		SortColumn: field.Column,
		Direction:  direction,
		Limit:      limit,
		Keyset:     keyset,
	}, nil
}

// BuildCount assembles the companion count statement over the same filter
// function, used to fill PageInfo.Total in offset mode.
func BuildCount(e *Entity, filters kpiquery.QueryFilters) *Statement {
	args := make([]any, 0, len(e.Params))
	placeholders := make([]string, len(e.Params))
	for i, param := range e.Params {
		args = append(args, param(filters))
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}

	return &Statement{
		SQL: fmt.Sprintf("SELECT count(*) FROM %s(%s) AS %s",
			e.Function, strings.Join(placeholders, ", "), e.Alias),
		Args: args,
	}
}

// quoteIdent quotes an alias-qualified identifier. Both parts come from
// entity metadata, never from client input; quoting guards against
// reserved words like rank, not against injection.
func quoteIdent(alias, column string) string {
	return strmangle.IdentQuote('"', '"', alias+"."+column)
}
