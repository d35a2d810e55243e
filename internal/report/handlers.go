package report

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
)

// maxUploadSize caps multipart uploads at 50MB to handle high-resolution
// phone photos.
const maxUploadSize = int64(50 << 20)

// setCORSHeaders sets CORS headers on a response.
func setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
	w.Header().Set("Access-Control-Max-Age", "3600")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	setCORSHeaders(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// errorStatus maps wizard errors onto HTTP statuses. A busy wizard is a
// conflict, not a failure.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, ErrBusy):
		return http.StatusConflict
	case errors.Is(err, ErrIncomplete):
		return http.StatusBadRequest
	default:
		return http.StatusBadRequest
	}
}

// readUpload pulls one file out of a multipart form and determines its
// content type. No further validation is applied; extraction quality is
// the model's problem.
func readUpload(r *http.Request, field string) ([]byte, string, error) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		return nil, "", errors.New("error parsing form")
	}

	f, header, err := r.FormFile(field)
	if err != nil {
		return nil, "", errors.New("no file provided")
	}
	defer f.Close()

	if header.Size > maxUploadSize {
		return nil, "", errors.New("file is too large, maximum size is 50MB")
	}

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, "", errors.New("error reading file")
	}

	contentType := strings.ToLower(strings.TrimSpace(header.Header.Get("Content-Type")))
	if contentType == "" {
		contentType = contentTypeForExt(filepath.Ext(header.Filename))
	}

	return data, contentType, nil
}

func contentTypeForExt(ext string) string {
	switch strings.ToLower(ext) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".pdf":
		return "application/pdf"
	case ".heic":
		return "image/heic"
	case ".heif":
		return "image/heif"
	case ".mp3":
		return "audio/mp3"
	case ".m4a":
		return "audio/mp4"
	case ".ogg":
		return "audio/ogg"
	case ".webm":
		return "audio/webm"
	case ".wav":
		return "audio/wav"
	default:
		return "application/octet-stream"
	}
}

// handleIndex serves the SPA shell.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(indexHTML)
}

// handleStaticCSS serves the stylesheet.
func (s *Server) handleStaticCSS(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w)
	w.Header().Set("Content-Type", "text/css")
	w.Write(appCSS)
}

// handleStaticJS serves the application script.
func (s *Server) handleStaticJS(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w)
	w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
	w.Write(appJS)
}

// handleState returns the current view and wizard snapshot.
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"view":   s.router.Current(),
		"wizard": s.wizard.Snapshot(),
	})
}

// handleNavigate assigns the current view.
func (s *Server) handleNavigate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		View View `json:"view"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.router.Navigate(req.View); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"view": req.View})
}

// handleLanguages returns the fixed language set.
func (s *Server) handleLanguages(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, SupportedLanguages)
}

// handleCurrencies returns the fixed currency set.
func (s *Server) handleCurrencies(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, SupportedCurrencies)
}

// handleStats returns the dashboard aggregates.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Stats())
}

// handleAddReceipt processes a receipt image upload.
func (s *Server) handleAddReceipt(w http.ResponseWriter, r *http.Request) {
	data, contentType, err := readUpload(r, "file")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	receipt, err := s.wizard.AddReceipt(r.Context(), data, contentType)
	if err != nil {
		slog.Error("Error adding receipt", "error", err)
		writeError(w, errorStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, receipt)
}

// handleAddPhoto processes a distribution photo upload.
func (s *Server) handleAddPhoto(w http.ResponseWriter, r *http.Request) {
	data, contentType, err := readUpload(r, "file")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	photo, err := s.wizard.AddPhoto(r.Context(), data, contentType)
	if err != nil {
		slog.Error("Error adding photo", "error", err)
		writeError(w, errorStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, photo)
}

// handleVoiceNote processes a recorded voice note.
func (s *Server) handleVoiceNote(w http.ResponseWriter, r *http.Request) {
	data, mimeType, err := readUpload(r, "file")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	summary, err := s.wizard.AddVoiceNote(r.Context(), data, mimeType)
	if err != nil {
		slog.Error("Error summarizing voice note", "error", err)
		writeError(w, errorStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"voiceNote": summary})
}

// handleLocation attaches device coordinates to the draft. Geolocation
// permission failures never reach this handler; the client alerts and
// leaves the draft unchanged.
func (s *Server) handleLocation(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Lat float64 `json:"lat"`
		Lng float64 `json:"lng"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.wizard.AttachCoordinates(req.Lat, req.Lng)
	writeJSON(w, http.StatusOK, s.wizard.Snapshot().Draft)
}

// handleDetails updates the draft's campaign fields.
func (s *Server) handleDetails(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CampaignName     string `json:"campaignName"`
		Location         string `json:"location"`
		BeneficiaryCount int    `json:"beneficiaryCount"`
		Language         string `json:"language"`
		Currency         string `json:"currency"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.wizard.SetDetails(req.CampaignName, req.Location, req.BeneficiaryCount, req.Language, req.Currency); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.wizard.Snapshot())
}

// handleAdvance moves the wizard forward and navigates to the matching view.
func (s *Server) handleAdvance(w http.ResponseWriter, r *http.Request) {
	step := s.wizard.Advance()
	s.router.Navigate(StepView(step))
	writeJSON(w, http.StatusOK, s.wizard.Snapshot())
}

// handleBack moves the wizard backward and navigates to the matching view.
func (s *Server) handleBack(w http.ResponseWriter, r *http.Request) {
	step := s.wizard.Back()
	s.router.Navigate(StepView(step))
	writeJSON(w, http.StatusOK, s.wizard.Snapshot())
}

// handleReset starts a new report.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.wizard.Reset()
	s.router.Navigate(ViewCreateReceipts)
	writeJSON(w, http.StatusOK, s.wizard.Snapshot())
}

// handleFinalize converts the draft into a report and shows the viewer.
func (s *Server) handleFinalize(w http.ResponseWriter, r *http.Request) {
	rep, err := s.wizard.Finalize(r.Context())
	if err != nil {
		slog.Error("Error finalizing report", "error", err)
		writeError(w, errorStatus(err), err.Error())
		return
	}

	s.router.Navigate(ViewReport)
	writeJSON(w, http.StatusCreated, rep)
}

// handleListReports returns all reports, most recent first.
func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.List())
}

// handleGetReport returns a single report and selects it for viewing.
func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	rep, err := s.store.Get(id)
	if err != nil {
		writeError(w, http.StatusNotFound, "report not found")
		return
	}
	s.wizard.Select(id)
	writeJSON(w, http.StatusOK, rep)
}

// handleTranslate re-renders a report's story in another language.
func (s *Server) handleTranslate(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var req struct {
		Language string `json:"language"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rep, err := s.wizard.Translate(r.Context(), id, req.Language)
	if err != nil {
		slog.Error("Error translating report", "id", id, "language", req.Language, "error", err)
		writeError(w, errorStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

// handlePublish flips a report from draft to published.
func (s *Server) handlePublish(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	rep, err := s.store.SetStatus(id, StatusPublished)
	if err != nil {
		writeError(w, http.StatusNotFound, "report not found")
		return
	}
	writeJSON(w, http.StatusOK, rep)
}
