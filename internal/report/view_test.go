package report_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/amanahlabs/amanah-reports/internal/report"
)

var _ = Describe("Router", func() {
	var router *report.Router

	BeforeEach(func() {
		router = report.NewRouter()
	})

	It("starts on the landing screen", func() {
		Expect(router.Current()).To(Equal(report.ViewLanding))
	})

	It("navigates between known screens", func() {
		Expect(router.Navigate(report.ViewDashboard)).To(Succeed())
		Expect(router.Current()).To(Equal(report.ViewDashboard))

		Expect(router.Navigate(report.ViewCreateReceipts)).To(Succeed())
		Expect(router.Current()).To(Equal(report.ViewCreateReceipts))
	})

	It("rejects unknown view names and keeps the current view", func() {
		Expect(router.Navigate(report.ViewDonors)).To(Succeed())

		err := router.Navigate(report.View("settings"))
		Expect(err).To(MatchError(ContainSubstring("unknown view")))
		Expect(router.Current()).To(Equal(report.ViewDonors))
	})
})

var _ = Describe("StepView", func() {
	It("maps each wizard step onto its screen", func() {
		Expect(report.StepView(report.StepReceipts)).To(Equal(report.ViewCreateReceipts))
		Expect(report.StepView(report.StepPhotos)).To(Equal(report.ViewCreatePhotos))
		Expect(report.StepView(report.StepDetails)).To(Equal(report.ViewCreateSummary))
	})
})
