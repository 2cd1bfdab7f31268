package wizard_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"sync"
	"testing"
	"time"

	"github.com/JaimeStill/cognivex/internal/analysis"
	"github.com/JaimeStill/cognivex/internal/session"
	"github.com/JaimeStill/cognivex/internal/steps"
	"github.com/JaimeStill/cognivex/internal/wizard"
	"github.com/JaimeStill/cognivex/internal/workflow"
	"github.com/JaimeStill/cognivex/pkg/routes"
	"github.com/JaimeStill/cognivex/pkg/storage/storagetest"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeAnalysis struct {
	transcribe func(ctx context.Context, req analysis.TranscribeAudioRequest) (*analysis.Transcription, error)
}

func (f *fakeAnalysis) Summarize(ctx context.Context, req analysis.SummarizeRequest) (*analysis.Summary, error) {
	return &analysis.Summary{Summary: "A monthly rent agreement."}, nil
}

func (f *fakeAnalysis) ParseGoals(ctx context.Context, req analysis.ParseGoalsRequest) (*analysis.ParsedGoals, error) {
	return &analysis.ParsedGoals{UserIntentions: []string{req.Goals}, RisksToAvoid: []string{}}, nil
}

func (f *fakeAnalysis) IdentifyRisks(ctx context.Context, req analysis.IdentifyRisksRequest) (*analysis.RiskAnalysis, error) {
	return &analysis.RiskAnalysis{RiskCards: []analysis.RiskCard{{
		RiskyClauseText:   "Tenant shall pay rent monthly.",
		RiskType:          analysis.RiskFinancial,
		RiskOrigin:        analysis.OriginDocument,
		SimplifiedMeaning: "Rent is due every month.",
	}}}, nil
}

func (f *fakeAnalysis) NarrateRisk(ctx context.Context, req analysis.NarrateRiskRequest) (*analysis.Narrative, error) {
	return &analysis.Narrative{Narrative: fmt.Sprintf("A story in %s.", req.Language)}, nil
}

func (f *fakeAnalysis) TranscribeAudio(ctx context.Context, req analysis.TranscribeAudioRequest) (*analysis.Transcription, error) {
	if f.transcribe != nil {
		return f.transcribe(ctx, req)
	}
	return &analysis.Transcription{Transcript: "t", Statements: []analysis.Statement{}}, nil
}

func (f *fakeAnalysis) AnswerQuery(ctx context.Context, req analysis.AnswerQueryRequest) (*analysis.Answer, error) {
	return &analysis.Answer{Answer: "Rent is due monthly."}, nil
}

func newRegistry(t *testing.T, ai analysis.System, blobs *storagetest.Store, maxAudio int64) *wizard.Registry {
	t.Helper()
	cfg := &wizard.Config{}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	reg := wizard.NewRegistry(cfg, steps.Default(), &workflow.Runtime{
		Analysis:     ai,
		Storage:      blobs,
		Logger:       discard(),
		MaxAudioSize: maxAudio,
	}, nil, discard())
	t.Cleanup(reg.Wait)
	return reg
}

type server struct {
	mux   *http.ServeMux
	reg   *wizard.Registry
	blobs *storagetest.Store
}

func newServer(t *testing.T, configErr error) *server {
	t.Helper()
	blobs := storagetest.New()
	reg := newRegistry(t, &fakeAnalysis{}, blobs, 64)
	h := wizard.NewHandler(reg, discard(), 1<<20, 64, configErr)

	mux := http.NewServeMux()
	routes.Register(mux, h.Routes())
	return &server{mux: mux, reg: reg, blobs: blobs}
}

func (s *server) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.mux.ServeHTTP(rec, req)
	return rec
}

func (s *server) upload(t *testing.T, path, filename, contentType string, data []byte) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	hdr.Set("Content-Type", contentType)
	part, err := mw.CreatePart(hdr)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	part.Write(data)
	mw.Close()

	req := httptest.NewRequest("POST", path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	s.mux.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode: %v (body %s)", err, rec.Body.String())
	}
	return v
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, want, rec.Body.String())
	}
}

func TestRegistryLifecycle(t *testing.T) {
	reg := newRegistry(t, &fakeAnalysis{}, storagetest.New(), 0)

	flow := reg.Create()
	id := flow.Session().ID()

	got, err := reg.Get(id)
	if err != nil || got != flow {
		t.Fatalf("get: %v", err)
	}
	if reg.Count() != 1 {
		t.Errorf("count: %d", reg.Count())
	}

	if err := reg.Delete(id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := reg.Get(id); !errors.Is(err, wizard.ErrSessionNotFound) {
		t.Errorf("get after delete: %v", err)
	}
	if err := reg.Delete(id); !errors.Is(err, wizard.ErrSessionNotFound) {
		t.Errorf("second delete: %v", err)
	}
}

func TestRegistryGetDoesNotRestoreDeletedSession(t *testing.T) {
	reg := newRegistry(t, &fakeAnalysis{}, storagetest.New(), 0)

	for range 50 {
		id := reg.Create().Session().ID()

		var wg sync.WaitGroup
		for range 4 {
			wg.Go(func() {
				for range 100 {
					reg.Get(id)
				}
			})
		}
		if err := reg.Delete(id); err != nil {
			t.Fatalf("delete: %v", err)
		}
		wg.Wait()

		if _, err := reg.Get(id); !errors.Is(err, wizard.ErrSessionNotFound) {
			t.Fatalf("deleted session came back: %v", err)
		}
	}

	if reg.Count() != 0 {
		t.Errorf("count: got %d, want 0", reg.Count())
	}
}

func TestRegistryDeleteReleasesRecording(t *testing.T) {
	blobs := storagetest.New()
	ai := &fakeAnalysis{}
	ai.transcribe = func(ctx context.Context, req analysis.TranscribeAudioRequest) (*analysis.Transcription, error) {
		key := blobs.NewKey(req.FileName)
		if err := blobs.Upload(ctx, key, bytes.NewReader(req.Audio), req.MimeType); err != nil {
			return nil, err
		}
		return &analysis.Transcription{Transcript: "t", Statements: []analysis.Statement{}, StorageKey: key}, nil
	}
	reg := newRegistry(t, ai, blobs, 0)

	flow := reg.Create()
	if _, err := flow.UploadAudio(context.Background(), "talk.mp3", "audio/mpeg", []byte("ID3")); err != nil {
		t.Fatalf("upload: %v", err)
	}
	if len(blobs.Keys()) != 1 {
		t.Fatalf("recording should be stored: %v", blobs.Keys())
	}

	if err := reg.Delete(flow.Session().ID()); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if keys := blobs.Keys(); len(keys) != 0 {
		t.Errorf("recording should be released: %v", keys)
	}
}

func TestRegistryExpiry(t *testing.T) {
	cfg := &wizard.Config{TTL: "20ms", CleanupInterval: "5ms"}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	reg := wizard.NewRegistry(cfg, steps.Default(), &workflow.Runtime{
		Analysis: &fakeAnalysis{},
		Storage:  storagetest.New(),
		Logger:   discard(),
	}, nil, discard())

	id := reg.Create().Session().ID()
	time.Sleep(60 * time.Millisecond)

	if _, err := reg.Get(id); !errors.Is(err, wizard.ErrSessionNotFound) {
		t.Errorf("expired session should be gone: %v", err)
	}
}

func TestConfig(t *testing.T) {
	cfg := &wizard.Config{}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if cfg.TTLDuration() != time.Hour || cfg.CleanupIntervalDuration() != 10*time.Minute {
		t.Errorf("defaults: %+v", cfg)
	}

	t.Setenv("TEST_SESSION_TTL", "15m")
	cfg = &wizard.Config{}
	if err := cfg.Finalize(&wizard.Env{TTL: "TEST_SESSION_TTL"}); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if cfg.TTLDuration() != 15*time.Minute {
		t.Errorf("env override: %s", cfg.TTL)
	}

	for _, bad := range []wizard.Config{{TTL: "soon"}, {TTL: "-1m"}, {CleanupInterval: "often"}} {
		if err := bad.Finalize(nil); err == nil {
			t.Errorf("%+v should be rejected", bad)
		}
	}

	base := wizard.Config{TTL: "1h", CleanupInterval: "1m"}
	base.Merge(&wizard.Config{TTL: "2h"})
	if base.TTL != "2h" || base.CleanupInterval != "1m" {
		t.Errorf("merge: %+v", base)
	}
}

func TestUnconfiguredAnswers503(t *testing.T) {
	s := newServer(t, fmt.Errorf("%w: api_key missing", analysis.ErrConfiguration))

	for _, tc := range []struct{ method, path string }{
		{"POST", "/sessions"},
		{"GET", "/sessions/abc"},
		{"DELETE", "/sessions/abc"},
		{"POST", "/sessions/abc/next"},
	} {
		rec := s.do(t, tc.method, tc.path, nil)
		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("%s %s: status %d", tc.method, tc.path, rec.Code)
		}
	}
}

func TestUnknownSession(t *testing.T) {
	s := newServer(t, nil)
	expectStatus(t, s.do(t, "GET", "/sessions/missing", nil), http.StatusNotFound)
	expectStatus(t, s.do(t, "DELETE", "/sessions/missing", nil), http.StatusNotFound)
}

func TestWizardOverHTTP(t *testing.T) {
	s := newServer(t, nil)

	rec := s.do(t, "POST", "/sessions", nil)
	expectStatus(t, rec, http.StatusCreated)
	snap := decode[session.Snapshot](t, rec)
	base := "/sessions/" + snap.ID
	if snap.CurrentStep != steps.Profile || len(snap.Messages) != 1 {
		t.Fatalf("new session: %+v", snap)
	}

	expectStatus(t, s.do(t, "POST", base+"/next", nil), http.StatusUnprocessableEntity)
	expectStatus(t, s.do(t, "PUT", base+"/profile", map[string]any{"profession": "Farmer"}), http.StatusUnprocessableEntity)

	rec = s.do(t, "PUT", base+"/profile", analysis.UserProfile{
		Profession:     "Farmer",
		Languages:      []string{"Kannada"},
		City:           "Mysuru",
		LegalKnowledge: "basic",
		Education:      "secondary",
	})
	expectStatus(t, rec, http.StatusOK)
	if tr := decode[session.Transition](t, rec); tr.Step != steps.Document {
		t.Errorf("profile transition: %+v", tr)
	}

	rec = s.upload(t, base+"/document", "lease.txt", "text/plain", []byte("Tenant shall pay rent monthly."))
	expectStatus(t, rec, http.StatusCreated)
	doc := decode[wizard.DocumentResponse](t, rec)
	if doc.Document == nil || doc.DocumentKey == 0 {
		t.Fatalf("document: %+v", doc)
	}
	s.reg.Wait()

	rec = s.do(t, "GET", base+"/summary", nil)
	expectStatus(t, rec, http.StatusOK)
	if sum := decode[wizard.SummaryResponse](t, rec); sum.Status != session.SummaryReady || sum.Loading {
		t.Errorf("summary: %+v", sum)
	}

	rec = s.do(t, "PUT", base+"/route", wizard.RouteRequest{Path: "/verbal-context"})
	expectStatus(t, rec, http.StatusOK)
	if tr := decode[session.Transition](t, rec); tr.Step != steps.VerbalContext {
		t.Errorf("route sync: %+v", tr)
	}
	expectStatus(t, s.do(t, "POST", base+"/next", nil), http.StatusUnprocessableEntity)
	expectStatus(t, s.do(t, "PUT", base+"/consent", wizard.ConsentRequest{Granted: true}), http.StatusNoContent)
	expectStatus(t, s.do(t, "POST", base+"/next", nil), http.StatusOK)

	expectStatus(t, s.do(t, "POST", base+"/steps/5", nil), http.StatusOK)
	rec = s.do(t, "POST", base+"/goals", wizard.GoalsRequest{Text: ""})
	expectStatus(t, rec, http.StatusOK)
	if tr := decode[session.Transition](t, rec); tr.Step != steps.Risks {
		t.Errorf("goals transition: %+v", tr)
	}

	rec = s.do(t, "POST", base+"/risks", nil)
	expectStatus(t, rec, http.StatusOK)
	if risks := decode[analysis.RiskAnalysis](t, rec); len(risks.RiskCards) != 1 {
		t.Errorf("risks: %+v", risks)
	}

	rec = s.do(t, "POST", base+"/risks/0/narrations", nil)
	expectStatus(t, rec, http.StatusOK)
	if n := decode[workflow.Narration](t, rec); n.Language != "Kannada" || n.Cached {
		t.Errorf("narration: %+v", n)
	}
	rec = s.do(t, "POST", base+"/risks/0/narrations", wizard.NarrationRequest{Language: "Kannada"})
	expectStatus(t, rec, http.StatusOK)
	if n := decode[workflow.Narration](t, rec); !n.Cached {
		t.Errorf("second narration should be cached: %+v", n)
	}
	expectStatus(t, s.do(t, "POST", base+"/risks/7/narrations", nil), http.StatusNotFound)
	expectStatus(t, s.do(t, "POST", base+"/risks/x/narrations", nil), http.StatusBadRequest)

	rec = s.do(t, "POST", base+"/query", wizard.QueryRequest{Question: "When is rent due?"})
	expectStatus(t, rec, http.StatusOK)
	if msg := decode[session.ChatMessage](t, rec); msg.Sender != session.SenderBot {
		t.Errorf("reply: %+v", msg)
	}
	rec = s.do(t, "GET", base+"/messages", nil)
	expectStatus(t, rec, http.StatusOK)
	if msgs := decode[[]session.ChatMessage](t, rec); len(msgs) != 3 {
		t.Errorf("messages: %d", len(msgs))
	}

	expectStatus(t, s.do(t, "POST", base+"/steps/7", nil), http.StatusOK)
	rec = s.do(t, "POST", base+"/next", nil)
	expectStatus(t, rec, http.StatusOK)
	if tr := decode[session.Transition](t, rec); !tr.Exit || tr.Path != steps.ExitPath {
		t.Errorf("exit: %+v", tr)
	}

	rec = s.do(t, "DELETE", base+"/document", nil)
	expectStatus(t, rec, http.StatusOK)
	rec = s.do(t, "GET", base, nil)
	expectStatus(t, rec, http.StatusOK)
	if snap := decode[session.Snapshot](t, rec); snap.Document != nil || snap.RiskAnalysis != nil || snap.Summary != "" {
		t.Errorf("document removal should clear derived state: %+v", snap)
	}

	expectStatus(t, s.do(t, "DELETE", base, nil), http.StatusNoContent)
}

func TestUploadDocumentErrors(t *testing.T) {
	s := newServer(t, nil)
	snap := decode[session.Snapshot](t, s.do(t, "POST", "/sessions", nil))
	base := "/sessions/" + snap.ID

	expectStatus(t, s.upload(t, base+"/document", "photo.png", "image/png", []byte("\x89PNG\r\n\x1a\n")), http.StatusUnsupportedMediaType)
	expectStatus(t, s.upload(t, base+"/document", "big.txt", "text/plain", bytes.Repeat([]byte("a"), 1<<20+10)), http.StatusRequestEntityTooLarge)
	expectStatus(t, s.upload(t, base+"/document", "blank.txt", "text/plain", []byte("   ")), http.StatusUnprocessableEntity)
	expectStatus(t, s.do(t, "POST", base+"/risks", nil), http.StatusConflict)
}

func TestUploadAudioOverLimitNotifies(t *testing.T) {
	s := newServer(t, nil)
	snap := decode[session.Snapshot](t, s.do(t, "POST", "/sessions", nil))
	base := "/sessions/" + snap.ID

	expectStatus(t, s.upload(t, base+"/audio", "talk.mp3", "audio/mpeg", bytes.Repeat([]byte("a"), 128)), http.StatusRequestEntityTooLarge)

	rec := s.do(t, "GET", base+"/notifications", nil)
	expectStatus(t, rec, http.StatusOK)
	notes := decode[[]session.Notification](t, rec)
	if len(notes) != 1 || notes[0].Title != "File Too Large" {
		t.Fatalf("notifications: %+v", notes)
	}

	expectStatus(t, s.do(t, "DELETE", base+"/notifications/"+notes[0].ID.String(), nil), http.StatusNoContent)
	expectStatus(t, s.do(t, "DELETE", base+"/notifications/"+notes[0].ID.String(), nil), http.StatusNotFound)
	expectStatus(t, s.do(t, "DELETE", base+"/notifications/not-a-uuid", nil), http.StatusBadRequest)
}

func TestUploadAudio(t *testing.T) {
	s := newServer(t, nil)
	snap := decode[session.Snapshot](t, s.do(t, "POST", "/sessions", nil))
	base := "/sessions/" + snap.ID

	rec := s.upload(t, base+"/audio", "talk.mp3", "application/octet-stream", []byte("ID3"))
	expectStatus(t, rec, http.StatusOK)
	if vc := decode[session.VerbalContext](t, rec); vc.Transcript != "t" {
		t.Errorf("verbal context: %+v", vc)
	}
	expectStatus(t, s.do(t, "DELETE", base+"/audio", nil), http.StatusNoContent)
}

func TestRetrySummaryRequiresFailure(t *testing.T) {
	s := newServer(t, nil)
	snap := decode[session.Snapshot](t, s.do(t, "POST", "/sessions", nil))

	expectStatus(t, s.do(t, "POST", "/sessions/"+snap.ID+"/summary/retry", nil), http.StatusUnprocessableEntity)
}

func TestMapHTTPStatus(t *testing.T) {
	if got := wizard.MapHTTPStatus(wizard.ErrSessionNotFound); got != http.StatusNotFound {
		t.Errorf("session not found: %d", got)
	}
	if got := wizard.MapHTTPStatus(workflow.ErrBusy); got != http.StatusConflict {
		t.Errorf("busy: %d", got)
	}
}
