package report_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"

	"github.com/amanahlabs/amanah-reports/internal/ai"
	"github.com/amanahlabs/amanah-reports/internal/report"
)

func multipartBody(field, filename, contentType string, data []byte) (*bytes.Buffer, string) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	header := make(map[string][]string)
	header["Content-Disposition"] = []string{`form-data; name="` + field + `"; filename="` + filename + `"`}
	header["Content-Type"] = []string{contentType}
	part, err := writer.CreatePart(header)
	Expect(err).NotTo(HaveOccurred())
	_, err = part.Write(data)
	Expect(err).NotTo(HaveOccurred())
	Expect(writer.Close()).To(Succeed())
	return body, writer.FormDataContentType()
}

func jsonBody(v any) *bytes.Buffer {
	data, err := json.Marshal(v)
	Expect(err).NotTo(HaveOccurred())
	return bytes.NewBuffer(data)
}

var _ = Describe("Server", func() {
	var (
		gen    *mockGenerator
		store  *report.Store
		wizard *report.Wizard
		router *report.Router
		server *report.Server
	)

	do := func(method, path string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
		if body == nil {
			body = &bytes.Buffer{}
		}
		req := httptest.NewRequest(method, path, body)
		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}
		rec := httptest.NewRecorder()
		server.ServeHTTP(rec, req)
		return rec
	}

	BeforeEach(func() {
		gen = &mockGenerator{
			receipt: ai.ReceiptData{
				StoreName:   "ACME Mart",
				Date:        "2025-06-01",
				TotalAmount: decimal.NewFromInt(100),
				Currency:    "IDR",
				TrustScore:  95,
			},
			caption:    "A distribution scene.",
			summary:    "Aid was distributed.",
			story:      "A generated impact story.",
			translated: "Cerita dampak.",
		}
		store = report.NewStore()
		wizard = report.NewWizardWithDeps(gen, store, &seqIDGenerator{},
			&fixedClock{t: time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)})
		router = report.NewRouter()
		server = report.NewServer(wizard, store, router, report.BasicAuth{})
	})

	Describe("GET /api/state", func() {
		It("returns the current view and wizard snapshot", func() {
			rec := do("GET", "/api/state", nil, "")
			Expect(rec.Code).To(Equal(http.StatusOK))

			var state struct {
				View   report.View     `json:"view"`
				Wizard report.Snapshot `json:"wizard"`
			}
			Expect(json.Unmarshal(rec.Body.Bytes(), &state)).To(Succeed())
			Expect(state.View).To(Equal(report.ViewLanding))
			Expect(state.Wizard.Step).To(Equal(report.StepReceipts))
			Expect(state.Wizard.Ready).To(BeFalse())
		})
	})

	Describe("POST /api/view", func() {
		It("navigates to a known view", func() {
			rec := do("POST", "/api/view", jsonBody(map[string]string{"view": "dashboard"}), "application/json")
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(router.Current()).To(Equal(report.ViewDashboard))
		})

		It("rejects unknown views", func() {
			rec := do("POST", "/api/view", jsonBody(map[string]string{"view": "settings"}), "application/json")
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
			Expect(router.Current()).To(Equal(report.ViewLanding))
		})
	})

	Describe("GET /api/languages", func() {
		It("returns the fixed language set", func() {
			rec := do("GET", "/api/languages", nil, "")
			Expect(rec.Code).To(Equal(http.StatusOK))

			var languages []string
			Expect(json.Unmarshal(rec.Body.Bytes(), &languages)).To(Succeed())
			Expect(languages).To(HaveLen(15))
			Expect(languages).To(ContainElement("Indonesian"))
		})
	})

	Describe("POST /api/wizard/receipts", func() {
		It("extracts the receipt and returns it", func() {
			body, contentType := multipartBody("file", "receipt.png", "image/png", []byte("image"))
			rec := do("POST", "/api/wizard/receipts", body, contentType)
			Expect(rec.Code).To(Equal(http.StatusCreated))

			var receipt ai.ReceiptData
			Expect(json.Unmarshal(rec.Body.Bytes(), &receipt)).To(Succeed())
			Expect(receipt.StoreName).To(Equal("ACME Mart"))
		})

		It("rejects requests without a file", func() {
			body := &bytes.Buffer{}
			writer := multipart.NewWriter(body)
			Expect(writer.Close()).To(Succeed())

			rec := do("POST", "/api/wizard/receipts", body, writer.FormDataContentType())
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("POST /api/wizard/photos", func() {
		It("captions the photo and returns it", func() {
			body, contentType := multipartBody("file", "photo.jpg", "image/jpeg", []byte("photo"))
			rec := do("POST", "/api/wizard/photos", body, contentType)
			Expect(rec.Code).To(Equal(http.StatusCreated))

			var photo report.DistributionPhoto
			Expect(json.Unmarshal(rec.Body.Bytes(), &photo)).To(Succeed())
			Expect(photo.Caption).To(Equal("A distribution scene."))
		})
	})

	Describe("POST /api/wizard/voice", func() {
		It("returns the voice note summary", func() {
			body, contentType := multipartBody("file", "note.webm", "audio/webm", []byte("audio"))
			rec := do("POST", "/api/wizard/voice", body, contentType)
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Body.String()).To(ContainSubstring("Aid was distributed."))
		})
	})

	Describe("PUT /api/wizard/details", func() {
		It("updates the draft fields", func() {
			rec := do("PUT", "/api/wizard/details", jsonBody(map[string]any{
				"campaignName":     "Flood Relief",
				"location":         "Riverside",
				"beneficiaryCount": 120,
				"language":         "Indonesian",
				"currency":         "IDR",
			}), "application/json")
			Expect(rec.Code).To(Equal(http.StatusOK))

			var snapshot report.Snapshot
			Expect(json.Unmarshal(rec.Body.Bytes(), &snapshot)).To(Succeed())
			Expect(snapshot.Draft.CampaignName).To(Equal("Flood Relief"))
			Expect(snapshot.Ready).To(BeTrue())
		})

		It("rejects unsupported languages", func() {
			rec := do("PUT", "/api/wizard/details", jsonBody(map[string]any{
				"campaignName": "Camp", "location": "Loc", "language": "Klingon",
			}), "application/json")
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("POST /api/wizard/advance", func() {
		It("moves the wizard and the view forward together", func() {
			rec := do("POST", "/api/wizard/advance", nil, "")
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(wizard.Step()).To(Equal(report.StepPhotos))
			Expect(router.Current()).To(Equal(report.ViewCreatePhotos))
		})
	})

	Describe("POST /api/wizard/finalize", func() {
		It("rejects an incomplete draft", func() {
			rec := do("POST", "/api/wizard/finalize", nil, "")
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
			Expect(rec.Body.String()).To(ContainSubstring("required"))
		})

		It("creates the report and shows the viewer", func() {
			Expect(wizard.SetDetails("Flood Relief", "Riverside", 120, "", "")).To(Succeed())

			rec := do("POST", "/api/wizard/finalize", nil, "")
			Expect(rec.Code).To(Equal(http.StatusCreated))
			Expect(router.Current()).To(Equal(report.ViewReport))

			var rep report.ImpactReport
			Expect(json.Unmarshal(rec.Body.Bytes(), &rep)).To(Succeed())
			Expect(rep.ID).To(Equal("report-1"))
			Expect(rep.Story).To(Equal("A generated impact story."))
		})
	})

	Describe("report routes", func() {
		BeforeEach(func() {
			Expect(wizard.SetDetails("Flood Relief", "Riverside", 120, "", "")).To(Succeed())
			_, err := wizard.Finalize(context.Background())
			Expect(err).NotTo(HaveOccurred())
		})

		It("lists reports", func() {
			rec := do("GET", "/api/reports", nil, "")
			Expect(rec.Code).To(Equal(http.StatusOK))

			var reports []report.ImpactReport
			Expect(json.Unmarshal(rec.Body.Bytes(), &reports)).To(Succeed())
			Expect(reports).To(HaveLen(1))
		})

		It("gets a report by ID", func() {
			rec := do("GET", "/api/reports/report-1", nil, "")
			Expect(rec.Code).To(Equal(http.StatusOK))
		})

		It("returns 404 for an unknown report", func() {
			rec := do("GET", "/api/reports/missing", nil, "")
			Expect(rec.Code).To(Equal(http.StatusNotFound))
		})

		It("translates a report", func() {
			rec := do("POST", "/api/reports/report-1/translate",
				jsonBody(map[string]string{"language": "Indonesian"}), "application/json")
			Expect(rec.Code).To(Equal(http.StatusOK))

			var rep report.ImpactReport
			Expect(json.Unmarshal(rec.Body.Bytes(), &rep)).To(Succeed())
			Expect(rep.Story).To(Equal("Cerita dampak."))
			Expect(rep.Language).To(Equal("Indonesian"))
		})

		It("publishes a report", func() {
			rec := do("POST", "/api/reports/report-1/publish", nil, "")
			Expect(rec.Code).To(Equal(http.StatusOK))

			rep, err := store.Get("report-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(rep.Status).To(Equal(report.StatusPublished))
		})
	})

	Describe("basic auth", func() {
		BeforeEach(func() {
			server = report.NewServer(wizard, store, router, report.BasicAuth{
				Username: "admin", Password: "secret",
			})
		})

		It("rejects requests without credentials", func() {
			rec := do("GET", "/api/state", nil, "")
			Expect(rec.Code).To(Equal(http.StatusUnauthorized))
		})

		It("accepts valid credentials", func() {
			req := httptest.NewRequest("GET", "/api/state", nil)
			req.SetBasicAuth("admin", "secret")
			rec := httptest.NewRecorder()
			server.ServeHTTP(rec, req)
			Expect(rec.Code).To(Equal(http.StatusOK))
		})
	})

	Describe("SPA shell", func() {
		It("serves the index for the root path", func() {
			rec := do("GET", "/", nil, "")
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Header().Get("Content-Type")).To(HavePrefix("text/html"))
			Expect(strings.ToLower(rec.Body.String())).To(ContainSubstring("<!doctype html>"))
		})
	})
})
