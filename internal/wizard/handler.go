package wizard

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/JaimeStill/cognivex/internal/analysis"
	"github.com/JaimeStill/cognivex/internal/documents"
	"github.com/JaimeStill/cognivex/internal/session"
	"github.com/JaimeStill/cognivex/internal/workflow"
	"github.com/JaimeStill/cognivex/pkg/handlers"
	"github.com/JaimeStill/cognivex/pkg/routes"
)

// multipartOverhead is allowed on top of a file limit for form boundaries
// and headers.
const multipartOverhead = 1 << 20

// RouteRequest reports the client's current location.
type RouteRequest struct {
	Path string `json:"path"`
}

// ConsentRequest records recording consent.
type ConsentRequest struct {
	Granted bool `json:"granted"`
}

// GoalsRequest submits the goals text. Blank text skips the step.
type GoalsRequest struct {
	Text string `json:"text"`
}

// NarrationRequest asks for a risk narrative.
type NarrationRequest struct {
	Language   string `json:"language"`
	Regenerate bool   `json:"regenerate"`
}

// QueryRequest asks a question about the document.
type QueryRequest struct {
	Question string `json:"question"`
}

// DocumentResponse reports the session's document and its key.
type DocumentResponse struct {
	Document    *documents.Document `json:"document"`
	DocumentKey session.DocumentKey `json:"document_key"`
}

// SummaryResponse reports the summary of the current document.
type SummaryResponse struct {
	Summary     string                `json:"summary"`
	Status      session.SummaryStatus `json:"status"`
	Loading     bool                  `json:"loading"`
	DocumentKey session.DocumentKey   `json:"document_key"`
}

// Handler provides HTTP endpoints for wizard sessions.
type Handler struct {
	reg           *Registry
	logger        *slog.Logger
	maxUploadSize int64
	maxAudioSize  int64
	configErr     error
}

// NewHandler creates a Handler. A non-nil configErr makes every endpoint
// answer 503 with that error.
func NewHandler(reg *Registry, logger *slog.Logger, maxUploadSize, maxAudioSize int64, configErr error) *Handler {
	return &Handler{
		reg:           reg,
		logger:        logger.With("handler", "sessions"),
		maxUploadSize: maxUploadSize,
		maxAudioSize:  maxAudioSize,
		configErr:     configErr,
	}
}

type flowHandler func(w http.ResponseWriter, r *http.Request, flow *workflow.Flow)

// withFlow resolves the {id} path value to a live flow.
func (h *Handler) withFlow(fn flowHandler) http.HandlerFunc {
	return h.configured(func(w http.ResponseWriter, r *http.Request) {
		flow, err := h.reg.Get(r.PathValue("id"))
		if err != nil {
			handlers.RespondError(w, h.logger, http.StatusNotFound, err)
			return
		}
		fn(w, r, flow)
	})
}

func (h *Handler) configured(fn http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.configErr != nil {
			handlers.RespondError(w, h.logger, http.StatusServiceUnavailable, h.configErr)
			return
		}
		fn(w, r)
	}
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
}

// Create starts a session.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	flow := h.reg.Create()
	handlers.RespondJSON(w, http.StatusCreated, flow.Session().Snapshot())
}

// Find returns the full session state.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request, flow *workflow.Flow) {
	handlers.RespondJSON(w, http.StatusOK, flow.Session().Snapshot())
}

// Delete ends a session.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.reg.Delete(r.PathValue("id")); err != nil {
		h.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SyncRoute aligns the current step with the client's location.
func (h *Handler) SyncRoute(w http.ResponseWriter, r *http.Request, flow *workflow.Flow) {
	req, err := handlers.DecodeJSON[RouteRequest](r)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, flow.SyncRoute(req.Path))
}

// Next advances when the current step is ready.
func (h *Handler) Next(w http.ResponseWriter, r *http.Request, flow *workflow.Flow) {
	tr, err := flow.Next()
	if err != nil {
		h.fail(w, err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, tr)
}

// Prev moves back one step.
func (h *Handler) Prev(w http.ResponseWriter, r *http.Request, flow *workflow.Flow) {
	handlers.RespondJSON(w, http.StatusOK, flow.Prev())
}

// GoTo jumps to the {step} path value. Out of range steps are ignored.
func (h *Handler) GoTo(w http.ResponseWriter, r *http.Request, flow *workflow.Flow) {
	id, err := strconv.Atoi(r.PathValue("step"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("invalid step: %w", err))
		return
	}
	handlers.RespondJSON(w, http.StatusOK, flow.GoTo(id))
}

// PatchProfile merges a partial profile without validation.
func (h *Handler) PatchProfile(w http.ResponseWriter, r *http.Request, flow *workflow.Flow) {
	patch, err := handlers.DecodeJSON[session.ProfilePatch](r)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, flow.UpdateProfile(patch))
}

// SubmitProfile validates the full profile and advances.
func (h *Handler) SubmitProfile(w http.ResponseWriter, r *http.Request, flow *workflow.Flow) {
	profile, err := handlers.DecodeJSON[analysis.UserProfile](r)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	tr, err := flow.SubmitProfile(profile)
	if err != nil {
		h.fail(w, err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, tr)
}

// UploadDocument accepts a multipart "file" field holding text or PDF.
func (h *Handler) UploadDocument(w http.ResponseWriter, r *http.Request, flow *workflow.Flow) {
	data, header, err := h.readFile(w, r, h.maxUploadSize)
	if err != nil {
		h.fail(w, err)
		return
	}
	if int64(len(data)) > h.maxUploadSize {
		h.fail(w, fmt.Errorf("%w: %d bytes", documents.ErrFileTooLarge, len(data)))
		return
	}

	doc, key, err := flow.UploadDocument(header.Filename, header.Header.Get("Content-Type"), data)
	if err != nil {
		h.fail(w, err)
		return
	}
	handlers.RespondJSON(w, http.StatusCreated, DocumentResponse{Document: doc, DocumentKey: key})
}

// RemoveDocument clears the document and everything derived from it.
func (h *Handler) RemoveDocument(w http.ResponseWriter, r *http.Request, flow *workflow.Flow) {
	key := flow.RemoveDocument()
	handlers.RespondJSON(w, http.StatusOK, DocumentResponse{DocumentKey: key})
}

// Summary reports the background summary of the current document.
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request, flow *workflow.Flow) {
	handlers.RespondJSON(w, http.StatusOK, summaryResponse(flow.Session()))
}

// RetrySummary restarts a failed summarization.
func (h *Handler) RetrySummary(w http.ResponseWriter, r *http.Request, flow *workflow.Flow) {
	if !flow.Session().RetrySummary() {
		h.fail(w, fmt.Errorf("%w: summary is not in a failed state", workflow.ErrNotReady))
		return
	}
	handlers.RespondJSON(w, http.StatusAccepted, summaryResponse(flow.Session()))
}

func summaryResponse(s *session.Store) SummaryResponse {
	doc, key := s.Document()
	summary, status := s.Summary()
	return SummaryResponse{
		Summary:     summary,
		Status:      status,
		Loading:     doc != nil && summary == "",
		DocumentKey: key,
	}
}

// SetConsent records recording consent.
func (h *Handler) SetConsent(w http.ResponseWriter, r *http.Request, flow *workflow.Flow) {
	req, err := handlers.DecodeJSON[ConsentRequest](r)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}
	flow.SetConsent(req.Granted)
	w.WriteHeader(http.StatusNoContent)
}

// UploadAudio accepts a multipart "file" field holding a recording and
// returns the extracted verbal context.
func (h *Handler) UploadAudio(w http.ResponseWriter, r *http.Request, flow *workflow.Flow) {
	data, header, err := h.readFile(w, r, h.maxAudioSize)
	if err != nil {
		if errors.Is(err, documents.ErrFileTooLarge) {
			err = fmt.Errorf("%w: %w", workflow.ErrAudioTooLarge, err)
		}
		h.fail(w, err)
		return
	}

	vc, err := flow.UploadAudio(r.Context(), header.Filename, audioContentType(header), data)
	if err != nil {
		h.fail(w, err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, vc)
}

// ClearAudio removes the recording and its statements.
func (h *Handler) ClearAudio(w http.ResponseWriter, r *http.Request, flow *workflow.Flow) {
	if err := flow.ClearAudio(r.Context()); err != nil {
		h.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SubmitGoals parses goals and advances.
func (h *Handler) SubmitGoals(w http.ResponseWriter, r *http.Request, flow *workflow.Flow) {
	req, err := handlers.DecodeJSON[GoalsRequest](r)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	tr, err := flow.SubmitGoals(r.Context(), req.Text)
	if err != nil {
		h.fail(w, err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, tr)
}

// IdentifyRisks returns the cached or freshly computed risk analysis.
func (h *Handler) IdentifyRisks(w http.ResponseWriter, r *http.Request, flow *workflow.Flow) {
	res, err := flow.IdentifyRisks(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, res)
}

// Narrate returns a narrative for the {index} risk card.
func (h *Handler) Narrate(w http.ResponseWriter, r *http.Request, flow *workflow.Flow) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("invalid index: %w", err))
		return
	}

	req, err := handlers.DecodeJSON[NarrationRequest](r)
	if err != nil && !errors.Is(err, io.EOF) {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	n, err := flow.NarrateRisk(r.Context(), index, req.Language, req.Regenerate)
	if err != nil {
		h.fail(w, err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, n)
}

// Ask answers a question from the document.
func (h *Handler) Ask(w http.ResponseWriter, r *http.Request, flow *workflow.Flow) {
	req, err := handlers.DecodeJSON[QueryRequest](r)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	reply, err := flow.Ask(r.Context(), req.Question)
	if err != nil {
		h.fail(w, err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, reply)
}

// Messages returns the chat transcript.
func (h *Handler) Messages(w http.ResponseWriter, r *http.Request, flow *workflow.Flow) {
	handlers.RespondJSON(w, http.StatusOK, flow.Session().Messages())
}

// Notifications returns pending notifications.
func (h *Handler) Notifications(w http.ResponseWriter, r *http.Request, flow *workflow.Flow) {
	handlers.RespondJSON(w, http.StatusOK, flow.Session().Notifications())
}

// Dismiss removes the {nid} notification.
func (h *Handler) Dismiss(w http.ResponseWriter, r *http.Request, flow *workflow.Flow) {
	id, err := uuid.Parse(r.PathValue("nid"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("invalid notification id: %w", err))
		return
	}
	if !flow.Session().Dismiss(id) {
		handlers.RespondError(w, h.logger, http.StatusNotFound, ErrNotificationNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// audioContentType falls back to the file extension when the part header
// does not name an audio type.
func audioContentType(header *multipart.FileHeader) string {
	ct := header.Header.Get("Content-Type")
	if strings.HasPrefix(ct, "audio/") {
		return ct
	}
	if byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(header.Filename))); byExt != "" {
		return byExt
	}
	return ct
}

// readFile reads the multipart "file" field, rejecting bodies larger than
// limit plus form overhead.
func (h *Handler) readFile(w http.ResponseWriter, r *http.Request, limit int64) ([]byte, *multipart.FileHeader, error) {
	r.Body = http.MaxBytesReader(w, r.Body, limit+multipartOverhead)
	if err := r.ParseMultipartForm(limit + multipartOverhead); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, nil, fmt.Errorf("%w: limit %d bytes", documents.ErrFileTooLarge, limit)
		}
		return nil, nil, fmt.Errorf("%w: %w", documents.ErrInvalidFile, err)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, nil, fmt.Errorf("%w: missing file field", documents.ErrInvalidFile)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", documents.ErrInvalidFile, err)
	}
	return data, header, nil
}

// Routes returns the route group for session endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix:      "/sessions",
		Tags:        []string{"Sessions"},
		Description: "Wizard sessions and their per-step operations",
		Schemas:     Schemas(),
		Routes: []routes.Route{
			{Method: "POST", Pattern: "", Handler: h.configured(h.Create), OpenAPI: docs.Create},
			{Method: "GET", Pattern: "/{id}", Handler: h.withFlow(h.Find), OpenAPI: docs.Find},
			{Method: "DELETE", Pattern: "/{id}", Handler: h.configured(h.Delete), OpenAPI: docs.Delete},
			{Method: "PUT", Pattern: "/{id}/route", Handler: h.withFlow(h.SyncRoute), OpenAPI: docs.SyncRoute},
			{Method: "POST", Pattern: "/{id}/next", Handler: h.withFlow(h.Next), OpenAPI: docs.Next},
			{Method: "POST", Pattern: "/{id}/prev", Handler: h.withFlow(h.Prev), OpenAPI: docs.Prev},
			{Method: "POST", Pattern: "/{id}/steps/{step}", Handler: h.withFlow(h.GoTo), OpenAPI: docs.GoTo},
			{Method: "PATCH", Pattern: "/{id}/profile", Handler: h.withFlow(h.PatchProfile), OpenAPI: docs.PatchProfile},
			{Method: "PUT", Pattern: "/{id}/profile", Handler: h.withFlow(h.SubmitProfile), OpenAPI: docs.SubmitProfile},
			{Method: "POST", Pattern: "/{id}/document", Handler: h.withFlow(h.UploadDocument), OpenAPI: docs.UploadDocument},
			{Method: "DELETE", Pattern: "/{id}/document", Handler: h.withFlow(h.RemoveDocument), OpenAPI: docs.RemoveDocument},
			{Method: "GET", Pattern: "/{id}/summary", Handler: h.withFlow(h.Summary), OpenAPI: docs.Summary},
			{Method: "POST", Pattern: "/{id}/summary/retry", Handler: h.withFlow(h.RetrySummary), OpenAPI: docs.RetrySummary},
			{Method: "PUT", Pattern: "/{id}/consent", Handler: h.withFlow(h.SetConsent), OpenAPI: docs.SetConsent},
			{Method: "POST", Pattern: "/{id}/audio", Handler: h.withFlow(h.UploadAudio), OpenAPI: docs.UploadAudio},
			{Method: "DELETE", Pattern: "/{id}/audio", Handler: h.withFlow(h.ClearAudio), OpenAPI: docs.ClearAudio},
			{Method: "POST", Pattern: "/{id}/goals", Handler: h.withFlow(h.SubmitGoals), OpenAPI: docs.SubmitGoals},
			{Method: "POST", Pattern: "/{id}/risks", Handler: h.withFlow(h.IdentifyRisks), OpenAPI: docs.IdentifyRisks},
			{Method: "POST", Pattern: "/{id}/risks/{index}/narrations", Handler: h.withFlow(h.Narrate), OpenAPI: docs.Narrate},
			{Method: "POST", Pattern: "/{id}/query", Handler: h.withFlow(h.Ask), OpenAPI: docs.Ask},
			{Method: "GET", Pattern: "/{id}/messages", Handler: h.withFlow(h.Messages), OpenAPI: docs.Messages},
			{Method: "GET", Pattern: "/{id}/notifications", Handler: h.withFlow(h.Notifications), OpenAPI: docs.Notifications},
			{Method: "DELETE", Pattern: "/{id}/notifications/{nid}", Handler: h.withFlow(h.Dismiss), OpenAPI: docs.Dismiss},
		},
	}
}
