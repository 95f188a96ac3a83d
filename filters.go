package kpiquery

import (
	"regexp"

	"github.com/aarondl/null/v8"
	"github.com/google/uuid"
)

// QueryFilters is the typed, validated subset of client filter input.
// Every populated field passed its shape check; absent fields bind as
// SQL NULL, which the underlying filter functions interpret as
// "no constraint on this dimension".
type QueryFilters struct {
	KpiID       null.String
	SchoolID    null.String
	SellerID    null.String
	MetricKey   null.String
	PeriodStart null.String
	PeriodEnd   null.String
	DateFrom    null.String
	DateTo      null.String
}

var (
	metricKeyPattern = regexp.MustCompile(`^[a-z0-9_]{1,100}$`)
	datePattern      = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// filterKeys is the closed set of filter keys accepted from clients,
// mapped to their shape check. Anything else in the raw input is ignored.
var filterKeys = map[string]func(string) bool{
	"kpiId":       isUUID,
	"schoolId":    isUUID,
	"sellerId":    isUUID,
	"metricKey":   metricKeyPattern.MatchString,
	"periodStart": datePattern.MatchString,
	"periodEnd":   datePattern.MatchString,
	"dateFrom":    datePattern.MatchString,
	"dateTo":      datePattern.MatchString,
}

// isUUID accepts only the canonical dashed 36-character form; uuid.Parse
// alone would also admit urn:uuid: prefixes, braces, and bare 32-hex.
func isUUID(s string) bool {
	if len(s) != 36 {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}

// ValidateFilters parses an untrusted key/value mapping (typically query
// string parameters) into QueryFilters. Fields failing their shape check
// and unrecognized keys are dropped silently; validation never fails.
// Callers do not have to pre-screen which subset of filters is valid.
func ValidateFilters(raw map[string]string) QueryFilters {
	var f QueryFilters

	for key, value := range raw {
		check, ok := filterKeys[key]
		if !ok || !check(value) {
			continue
		}

		v := null.StringFrom(value)
		switch key {
		case "kpiId":
			f.KpiID = v
		case "schoolId":
			f.SchoolID = v
		case "sellerId":
			f.SellerID = v
		case "metricKey":
			f.MetricKey = v
		case "periodStart":
			f.PeriodStart = v
		case "periodEnd":
			f.PeriodEnd = v
		case "dateFrom":
			f.DateFrom = v
		case "dateTo":
			f.DateTo = v
		}
	}

	return f
}
