package kpiquery

import (
	"regexp"
	"strconv"
	"strings"
)

const (
	// DefaultLimit is the page size used when the client does not
	// request one, or requests a non-positive one.
	DefaultLimit = 25

	// MaxLimit caps the page size. Requests above it are clamped,
	// not rejected.
	MaxLimit = 100
)

var sortByPattern = regexp.MustCompile(`^[a-z_]{1,50}$`)

// PaginationOptions is the typed, clamped subset of client pagination
// input. Cursor and Page are mutually exclusive strategies; when both are
// present the cursor wins (see Mode).
//
// SortBy has only passed a lexical check here. Whether it names a real,
// permitted column is decided at statement-assembly time against the
// entity's whitelist, because the same token means nothing without
// knowing which entity it applies to.
type PaginationOptions struct {
	Page          *int
	Limit         int
	Cursor        string
	SortBy        string
	SortDirection SortDirection
}

// PageMode is the resolved pagination strategy for a request.
type PageMode interface {
	isPageMode()
}

// KeysetMode paginates with an opaque cursor. Stable under concurrent
// inserts: each page depends only on the cursor it carries.
type KeysetMode struct {
	Cursor string
}

// OffsetMode paginates with OFFSET page*limit. Best-effort under
// concurrent writes; kept for "jump to page N" UIs.
type OffsetMode struct {
	Page int
}

func (KeysetMode) isPageMode() {}
func (OffsetMode) isPageMode() {}

// Mode resolves the pagination strategy. A non-empty cursor always wins
// over an explicit page; absent both, offset mode at page 0.
func (p PaginationOptions) Mode() PageMode {
	if p.Cursor != "" {
		return KeysetMode{Cursor: p.Cursor}
	}
	if p.Page != nil {
		return OffsetMode{Page: *p.Page}
	}
	return OffsetMode{}
}

// ClampLimit applies the limit rule: default when non-positive, capped at
// MaxLimit. The statement assembler re-applies it as defense in depth.
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// ValidatePagination parses untrusted pagination controls with the same
// permissive-drop discipline as ValidateFilters: malformed values fall
// back to defaults, never to an error.
//
//   - limit: coerced, defaulted, clamped to [1, MaxLimit]
//   - page: kept only if it parses as a non-negative integer
//   - cursor: kept if non-empty; content is judged by cursor.Decode later
//   - sortBy: kept only if it matches ^[a-z_]{1,50}$
//   - sortDirection: normalized to ASC or DESC, ASC by default
func ValidatePagination(raw map[string]string) PaginationOptions {
	opts := PaginationOptions{
		Limit:         DefaultLimit,
		SortDirection: SortAsc,
	}

	if v, ok := raw["limit"]; ok {
		if n, err := strconv.Atoi(v); err == nil {
			opts.Limit = ClampLimit(n)
		}
	}

	if v, ok := raw["page"]; ok {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			opts.Page = &n
		}
	}

	if v, ok := raw["cursor"]; ok && v != "" {
		opts.Cursor = v
	}

	if v, ok := raw["sortBy"]; ok && sortByPattern.MatchString(v) {
		opts.SortBy = v
	}

	if v, ok := raw["sortDirection"]; ok {
		if strings.EqualFold(v, string(SortDesc)) {
			opts.SortDirection = SortDesc
		}
	}

	return opts
}
