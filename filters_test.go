package kpiquery_test

import (
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	kpiquery "github.com/edpulse/kpiquery-go"
)

var _ = Describe("ValidateFilters", func() {
	const validUUID = "7f2c3a1e-9d4b-4e6f-8a10-5b3c2d1e0f9a"

	It("should keep every field that passes its shape check", func() {
		f := kpiquery.ValidateFilters(map[string]string{
			"kpiId":       validUUID,
			"schoolId":    validUUID,
			"sellerId":    validUUID,
			"metricKey":   "monthly_active_students",
			"periodStart": "2024-01-01",
			"periodEnd":   "2024-12-31",
			"dateFrom":    "2024-06-01",
			"dateTo":      "2024-06-30",
		})

		Expect(f.KpiID.Valid).To(BeTrue())
		Expect(f.KpiID.String).To(Equal(validUUID))
		Expect(f.SchoolID.Valid).To(BeTrue())
		Expect(f.SellerID.Valid).To(BeTrue())
		Expect(f.MetricKey.String).To(Equal("monthly_active_students"))
		Expect(f.PeriodStart.String).To(Equal("2024-01-01"))
		Expect(f.PeriodEnd.String).To(Equal("2024-12-31"))
		Expect(f.DateFrom.String).To(Equal("2024-06-01"))
		Expect(f.DateTo.String).To(Equal("2024-06-30"))
	})

	It("should drop malformed values and keep valid ones", func() {
		f := kpiquery.ValidateFilters(map[string]string{
			"kpiId":    "not-a-uuid",
			"dateFrom": "2024-01-01",
		})

		Expect(f.KpiID.Valid).To(BeFalse())
		Expect(f.DateFrom.Valid).To(BeTrue())
		Expect(f.DateFrom.String).To(Equal("2024-01-01"))
	})

	It("should ignore unrecognized keys", func() {
		f := kpiquery.ValidateFilters(map[string]string{
			"role":     "admin",
			"kpi_id":   validUUID,
			"schoolId": validUUID,
		})

		Expect(f.KpiID.Valid).To(BeFalse())
		Expect(f.SchoolID.Valid).To(BeTrue())
	})

	It("should reject non-canonical UUID forms", func() {
		for _, bad := range []string{
			"urn:uuid:7f2c3a1e-9d4b-4e6f-8a10-5b3c2d1e0f9a",
			"{7f2c3a1e-9d4b-4e6f-8a10-5b3c2d1e0f9a}",
			"7f2c3a1e9d4b4e6f8a105b3c2d1e0f9a",
			"7f2c3a1e-9d4b-4e6f-8a10-5b3c2d1e0f9a ",
		} {
			f := kpiquery.ValidateFilters(map[string]string{"schoolId": bad})
			Expect(f.SchoolID.Valid).To(BeFalse(), "expected %q to be dropped", bad)
		}
	})

	It("should reject dates that do not match YYYY-MM-DD", func() {
		for _, bad := range []string{"2024-1-1", "01-01-2024", "2024-01-01T00:00:00Z", "yesterday", ""} {
			f := kpiquery.ValidateFilters(map[string]string{"periodStart": bad})
			Expect(f.PeriodStart.Valid).To(BeFalse(), "expected %q to be dropped", bad)
		}
	})

	It("should reject metric keys outside the restricted alphabet", func() {
		for _, bad := range []string{"Revenue", "key with spaces", "key;drop", "", strings.Repeat("a", 101)} {
			f := kpiquery.ValidateFilters(map[string]string{"metricKey": bad})
			Expect(f.MetricKey.Valid).To(BeFalse(), "expected %q to be dropped", bad)
		}
	})

	It("should never fail on injection-shaped input", func() {
		f := kpiquery.ValidateFilters(map[string]string{
			"kpiId":     "'; DROP TABLE kpi_values; --",
			"metricKey": "1' OR '1'='1",
			"dateFrom":  "' OR ''='",
		})

		Expect(f).To(Equal(kpiquery.QueryFilters{}))
	})

	It("should return zero-value filters for empty input", func() {
		Expect(kpiquery.ValidateFilters(nil)).To(Equal(kpiquery.QueryFilters{}))
		Expect(kpiquery.ValidateFilters(map[string]string{})).To(Equal(kpiquery.QueryFilters{}))
	})
})
