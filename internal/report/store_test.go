package report_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"

	"github.com/amanahlabs/amanah-reports/internal/report"
)

var _ = Describe("Store", func() {
	var store *report.Store

	BeforeEach(func() {
		store = report.NewStore()
	})

	Describe("Add and List", func() {
		It("returns reports most recent first", func() {
			store.Add(&report.ImpactReport{ID: "a"})
			store.Add(&report.ImpactReport{ID: "b"})
			store.Add(&report.ImpactReport{ID: "c"})

			reports := store.List()
			Expect(reports).To(HaveLen(3))
			Expect(reports[0].ID).To(Equal("c"))
			Expect(reports[1].ID).To(Equal("b"))
			Expect(reports[2].ID).To(Equal("a"))
		})

		It("lists nothing for an empty store", func() {
			Expect(store.List()).To(BeEmpty())
		})
	})

	Describe("Get", func() {
		It("retrieves a report by ID", func() {
			store.Add(&report.ImpactReport{ID: "a", CampaignName: "Relief"})

			rep, err := store.Get("a")
			Expect(err).NotTo(HaveOccurred())
			Expect(rep.CampaignName).To(Equal("Relief"))
		})

		It("fails for an unknown ID", func() {
			_, err := store.Get("missing")
			Expect(err).To(MatchError(ContainSubstring("not found")))
		})
	})

	Describe("SetStory", func() {
		It("replaces the story and language only", func() {
			store.Add(&report.ImpactReport{
				ID: "a", CampaignName: "Relief", Story: "Original", Language: "English",
			})

			rep, err := store.SetStory("a", "Asli", "Indonesian")
			Expect(err).NotTo(HaveOccurred())
			Expect(rep.Story).To(Equal("Asli"))
			Expect(rep.Language).To(Equal("Indonesian"))
			Expect(rep.CampaignName).To(Equal("Relief"))
		})
	})

	Describe("SetStatus", func() {
		It("publishes a draft", func() {
			store.Add(&report.ImpactReport{ID: "a", Status: report.StatusDraft})

			rep, err := store.SetStatus("a", report.StatusPublished)
			Expect(err).NotTo(HaveOccurred())
			Expect(rep.Status).To(Equal(report.StatusPublished))
		})
	})

	Describe("Stats", func() {
		It("sums counts, beneficiaries and spend", func() {
			store.Add(&report.ImpactReport{
				ID: "a", BeneficiaryCount: 100, TotalSpend: decimal.NewFromInt(500),
			})
			store.Add(&report.ImpactReport{
				ID: "b", BeneficiaryCount: 250, TotalSpend: decimal.NewFromInt(1500),
			})

			stats := store.Stats()
			Expect(stats.ReportCount).To(Equal(2))
			Expect(stats.Beneficiaries).To(Equal(350))
			Expect(stats.FundsDistributed).To(Equal(decimal.NewFromInt(2000)))
		})

		It("is zero for an empty store", func() {
			stats := store.Stats()
			Expect(stats.ReportCount).To(BeZero())
			Expect(stats.Beneficiaries).To(BeZero())
			Expect(stats.FundsDistributed).To(Equal(decimal.Zero))
		})
	})
})
