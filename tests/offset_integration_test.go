package tests_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	kpiquery "github.com/edpulse/kpiquery-go"
	"github.com/edpulse/kpiquery-go/executor"
	"github.com/edpulse/kpiquery-go/query"
)

var _ = Describe("Offset pagination", func() {
	var exec *executor.Executor[*kpiquery.KpiValue]

	BeforeEach(func() {
		err := CleanupTables(ctx, container.DB)
		Expect(err).ToNot(HaveOccurred())

		exec = executor.New(container.DB, query.KpiValues,
			(*kpiquery.KpiValue).CursorValues,
			executor.WithTotalCount())

		for i := 0; i < 7; i++ {
			_, err := SeedKpiValue(ctx, container.DB, kpiValueSpec{Value: float64(i)})
			Expect(err).ToNot(HaveOccurred())
		}
	})

	It("should jump to page N and carry the total", func() {
		page := 2
		result, err := exec.Paginate(ctx, kpiquery.QueryFilters{},
			kpiquery.PaginationOptions{SortBy: "value", Limit: 3, Page: &page})

		Expect(err).ToNot(HaveOccurred())
		Expect(result.Rows).To(HaveLen(1))
		Expect(result.Rows[0].Value).To(Equal(float64(6)))
		Expect(result.PageInfo.HasNextPage).To(BeFalse())
		Expect(result.PageInfo.Total).ToNot(BeNil())
		Expect(*result.PageInfo.Total).To(Equal(int64(7)))
		Expect(result.Metadata.Strategy).To(Equal("offset"))
	})

	It("should still mint a cursor so clients can switch to keyset mode", func() {
		page := 0
		result, err := exec.Paginate(ctx, kpiquery.QueryFilters{},
			kpiquery.PaginationOptions{SortBy: "value", Limit: 3, Page: &page})

		Expect(err).ToNot(HaveOccurred())
		Expect(result.Rows).To(HaveLen(3))
		Expect(result.PageInfo.HasNextPage).To(BeTrue())
		Expect(result.PageInfo.NextCursor).ToNot(BeNil())

		next, err := exec.Paginate(ctx, kpiquery.QueryFilters{},
			kpiquery.PaginationOptions{SortBy: "value", Limit: 3, Cursor: *result.PageInfo.NextCursor})

		Expect(err).ToNot(HaveOccurred())
		Expect(next.Rows).To(HaveLen(3))
		Expect(next.Rows[0].Value).To(Equal(float64(3)))
	})

	It("should not count in keyset mode", func() {
		first, err := exec.Paginate(ctx, kpiquery.QueryFilters{},
			kpiquery.PaginationOptions{SortBy: "value", Limit: 3})
		Expect(err).ToNot(HaveOccurred())

		result, err := exec.Paginate(ctx, kpiquery.QueryFilters{},
			kpiquery.PaginationOptions{SortBy: "value", Limit: 3, Cursor: *first.PageInfo.NextCursor})

		Expect(err).ToNot(HaveOccurred())
		Expect(result.PageInfo.Total).To(BeNil())
	})
})

var _ = Describe("Sort field enforcement", func() {
	var exec *executor.Executor[*kpiquery.KpiValue]

	BeforeEach(func() {
		err := CleanupTables(ctx, container.DB)
		Expect(err).ToNot(HaveOccurred())

		exec = executor.New(container.DB, query.KpiValues, (*kpiquery.KpiValue).CursorValues)

		_, err = SeedKpiValue(ctx, container.DB, kpiValueSpec{Value: 1})
		Expect(err).ToNot(HaveOccurred())
	})

	It("should reject a sort field from another entity's whitelist", func() {
		_, err := exec.Paginate(ctx, kpiquery.QueryFilters{},
			kpiquery.PaginationOptions{SortBy: "rank"})

		Expect(err).To(HaveOccurred())
		Expect(kpiquery.IsInvalidSortField(err)).To(BeTrue())
	})

	It("should reject injection attempts through sortBy before any SQL runs", func() {
		for _, malicious := range []string{
			"period_start; DROP TABLE kpi_values",
			"period_start, (SELECT pg_sleep(10))",
			"value--",
			"1' OR '1'='1",
		} {
			_, err := exec.Paginate(ctx, kpiquery.QueryFilters{},
				kpiquery.PaginationOptions{SortBy: malicious})
			Expect(kpiquery.IsInvalidSortField(err)).To(BeTrue(), "sortBy=%q", malicious)
		}

		// The table is still there.
		var count int
		err := container.DB.QueryRowContext(ctx, "SELECT count(*) FROM kpi_values").Scan(&count)
		Expect(err).ToNot(HaveOccurred())
		Expect(count).To(Equal(1))
	})
})
