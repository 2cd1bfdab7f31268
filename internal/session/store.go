// Package session holds the state of one wizard session. The Store is the
// single source of truth for profile, document, derived analysis and the
// current step; every mutation goes through its narrow API.
package session

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/cognivex/internal/analysis"
	"github.com/JaimeStill/cognivex/internal/documents"
	"github.com/JaimeStill/cognivex/internal/steps"
)

const (
	summaryFailedTitle   = "Background Summarization Failed"
	summaryFailedMessage = "Could not generate summary in the background. This may be due to an issue with your cloud environment setup."
)

// Summarizer produces the summary of a document's text.
type Summarizer interface {
	Summarize(ctx context.Context, req analysis.SummarizeRequest) (*analysis.Summary, error)
}

// Runner starts background tasks. *lifecycle.Coordinator satisfies it.
type Runner interface {
	Go(fn func(ctx context.Context))
}

type goRunner struct{}

func (goRunner) Go(fn func(ctx context.Context)) {
	go fn(context.Background())
}

// Store is the state of one session. It is safe for concurrent use.
type Store struct {
	id         string
	registry   *steps.Registry
	summarizer Summarizer
	runner     Runner
	logger     *slog.Logger

	tasks sync.WaitGroup

	mu            sync.Mutex
	current       int
	profile       analysis.UserProfile
	document      *documents.Document
	docKey        DocumentKey
	summary       string
	summaryStatus SummaryStatus
	verbal        VerbalContext
	transcribing  bool
	consent       bool
	goals         Goals
	risks         *analysis.RiskAnalysis
	narrations    Narrations
	notifications []Notification
	messages      []ChatMessage
	createdAt     time.Time
	updatedAt     time.Time
}

// New creates a Store positioned on the first step. A nil runner starts
// background tasks on plain goroutines.
func New(id string, registry *steps.Registry, summarizer Summarizer, runner Runner, logger *slog.Logger) *Store {
	if runner == nil {
		runner = goRunner{}
	}
	now := time.Now().UTC()
	return &Store{
		id:            id,
		registry:      registry,
		summarizer:    summarizer,
		runner:        runner,
		logger:        logger.With("system", "session", "session", id),
		current:       registry.First().ID,
		summaryStatus: SummaryEmpty,
		narrations:    make(Narrations),
		createdAt:     now,
		updatedAt:     now,
	}
}

// ID returns the session identifier.
func (s *Store) ID() string {
	return s.id
}

// Registry returns the step table the session navigates.
func (s *Store) Registry() *steps.Registry {
	return s.registry
}

// SetDocument replaces the document and clears everything derived from the
// previous one. A non-nil document starts a background summarization whose
// result is committed only while that document is still current. The
// returned key identifies this assignment.
func (s *Store) SetDocument(doc *documents.Document) DocumentKey {
	s.mu.Lock()
	s.docKey++
	key := s.docKey
	s.document = doc.Clone()
	s.summary = ""
	s.risks = nil
	s.narrations = make(Narrations)
	s.summaryStatus = SummaryEmpty
	if doc != nil {
		s.summaryStatus = SummaryPending
	}
	s.touch()
	s.mu.Unlock()

	if doc == nil {
		s.logger.Info("document cleared", "document_key", key)
		return key
	}

	s.logger.Info("document set", "document_key", key, "name", doc.Name, "size", doc.Size)
	s.summarize(key, doc.Content)
	return key
}

// RetrySummary restarts summarization of the current document after a
// failure. It reports whether a task was started.
func (s *Store) RetrySummary() bool {
	s.mu.Lock()
	if s.document == nil || s.summaryStatus != SummaryFailed {
		s.mu.Unlock()
		return false
	}
	key := s.docKey
	text := s.document.Content
	s.summaryStatus = SummaryPending
	s.touch()
	s.mu.Unlock()

	s.summarize(key, text)
	return true
}

func (s *Store) summarize(key DocumentKey, text string) {
	s.tasks.Add(1)
	s.runner.Go(func(ctx context.Context) {
		defer s.tasks.Done()

		res, err := s.summarizer.Summarize(ctx, analysis.SummarizeRequest{DocumentText: text})
		s.commitSummary(key, res, err)
	})
}

func (s *Store) commitSummary(key DocumentKey, res *analysis.Summary, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if key != s.docKey {
		s.logger.Debug("stale summary dropped", "document_key", key, "current_key", s.docKey)
		return
	}

	if err != nil {
		s.summaryStatus = SummaryFailed
		s.notify(KindError, summaryFailedTitle, summaryFailedMessage)
		s.logger.Error("background summarization failed", "document_key", key, "error", err)
		return
	}

	s.summary = res.Summary
	s.summaryStatus = SummaryReady
	s.touch()
	s.logger.Info("summary committed", "document_key", key)
}

// Document returns a copy of the current document and its key.
func (s *Store) Document() (*documents.Document, DocumentKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.document.Clone(), s.docKey
}

// Summary returns the current summary and its status.
func (s *Store) Summary() (string, SummaryStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.summary, s.summaryStatus
}

// UpdateUserProfile merges the set fields of patch into the profile.
// No validation is applied.
func (s *Store) UpdateUserProfile(patch ProfilePatch) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if patch.Profession != nil {
		s.profile.Profession = *patch.Profession
	}
	if patch.Languages != nil {
		s.profile.Languages = slices.Clone(*patch.Languages)
	}
	if patch.City != nil {
		s.profile.City = *patch.City
	}
	if patch.LegalKnowledge != nil {
		s.profile.LegalKnowledge = *patch.LegalKnowledge
	}
	if patch.Education != nil {
		s.profile.Education = *patch.Education
	}
	s.touch()
}

// Profile returns a copy of the user profile.
func (s *Store) Profile() analysis.UserProfile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile.Clone()
}

// SetGoals replaces the stored goals wholesale.
func (s *Store) SetGoals(raw string, parsed analysis.ParsedGoals) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.goals = Goals{Raw: raw, Parsed: parsed.Clone()}
	s.touch()
}

// Goals returns a copy of the stored goals.
func (s *Store) Goals() Goals {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Goals{Raw: s.goals.Raw, Parsed: s.goals.Parsed.Clone()}
}

// SetVerbalContext replaces the transcript and statements wholesale. The
// stored audio key is left untouched.
func (s *Store) SetVerbalContext(transcript string, statements []analysis.Statement) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.verbal.Transcript = transcript
	s.verbal.Statements = slices.Clone(statements)
	s.touch()
}

// SwapAudioKey records the blob key of the current recording and returns
// the previous one.
func (s *Store) SwapAudioKey(key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.verbal.AudioKey
	s.verbal.AudioKey = key
	s.touch()
	return prev
}

// VerbalContext returns a copy of the verbal context.
func (s *Store) VerbalContext() VerbalContext {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.verbalCopy()
}

func (s *Store) verbalCopy() VerbalContext {
	return VerbalContext{
		Transcript: s.verbal.Transcript,
		Statements: slices.Clone(s.verbal.Statements),
		AudioKey:   s.verbal.AudioKey,
	}
}

// BeginTranscription marks a transcription as running. It returns false if
// one is already in progress.
func (s *Store) BeginTranscription() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.transcribing {
		return false
	}
	s.transcribing = true
	return true
}

// EndTranscription clears the running-transcription mark.
func (s *Store) EndTranscription() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transcribing = false
}

// Transcribing reports whether a transcription is running.
func (s *Store) Transcribing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transcribing
}

// SetConsent records the verbal-context consent.
func (s *Store) SetConsent(granted bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.consent = granted
	s.touch()
}

// Consent reports whether consent was granted.
func (s *Store) Consent() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.consent
}

// SetRiskAnalysis stores result if key still names the current document.
// It reports whether the result was committed.
func (s *Store) SetRiskAnalysis(key DocumentKey, result analysis.RiskAnalysis) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if key != s.docKey || s.document == nil {
		s.logger.Debug("stale risk analysis dropped", "document_key", key, "current_key", s.docKey)
		return false
	}

	s.risks = result.Clone()
	s.narrations = make(Narrations)
	s.touch()
	return true
}

// RiskAnalysis returns a copy of the cached risk analysis, if any, and the
// current document key.
func (s *Store) RiskAnalysis() (*analysis.RiskAnalysis, DocumentKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.risks.Clone(), s.docKey
}

// Narration returns the cached narrative for a risk card in a language.
func (s *Store) Narration(index int, language string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	text, ok := s.narrations[index][language]
	return text, ok
}

// SetNarration caches a narrative if key still names the current document
// and index addresses a card of the cached analysis.
func (s *Store) SetNarration(key DocumentKey, index int, language, text string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if key != s.docKey || s.risks == nil || index < 0 || index >= len(s.risks.RiskCards) {
		s.logger.Debug("stale narration dropped", "document_key", key, "index", index, "language", language)
		return false
	}

	if s.narrations[index] == nil {
		s.narrations[index] = make(map[string]string)
	}
	s.narrations[index][language] = text
	s.touch()
	return true
}

// ClearNarration removes a cached narrative.
func (s *Store) ClearNarration(index int, language string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.narrations[index], language)
}

// Notify appends a notification and returns it.
func (s *Store) Notify(kind NotificationKind, title, message string) Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.notify(kind, title, message)
}

func (s *Store) notify(kind NotificationKind, title, message string) Notification {
	n := Notification{
		ID:        uuid.New(),
		Kind:      kind,
		Title:     title,
		Message:   message,
		CreatedAt: time.Now().UTC(),
	}
	s.notifications = append(s.notifications, n)
	s.touch()
	return n
}

// Dismiss removes a notification. It reports whether one was found.
func (s *Store) Dismiss(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := slices.IndexFunc(s.notifications, func(n Notification) bool { return n.ID == id })
	if i < 0 {
		return false
	}
	s.notifications = slices.Delete(s.notifications, i, i+1)
	s.touch()
	return true
}

// Notifications returns the pending notifications, oldest first.
func (s *Store) Notifications() []Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.notifications)
}

// AppendMessage adds an entry to the chat transcript and returns it.
func (s *Store) AppendMessage(sender Sender, text string) ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := ChatMessage{
		ID:        uuid.New(),
		Sender:    sender,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}
	s.messages = append(s.messages, m)
	s.touch()
	return m
}

// Messages returns the chat transcript.
func (s *Store) Messages() []ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.messages)
}

// Snapshot returns a deep copy of the session state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	step, _ := s.registry.ByID(s.current)
	return Snapshot{
		ID:            s.id,
		CurrentStep:   s.current,
		Path:          step.Path,
		Profile:       s.profile.Clone(),
		Document:      s.document.Clone(),
		DocumentKey:   s.docKey,
		Summary:       s.summary,
		SummaryStatus: s.summaryStatus,
		VerbalContext: s.verbalCopy(),
		Transcribing:  s.transcribing,
		Consent:       s.consent,
		Goals:         Goals{Raw: s.goals.Raw, Parsed: s.goals.Parsed.Clone()},
		RiskAnalysis:  s.risks.Clone(),
		Narrations:    s.narrations.clone(),
		Notifications: slices.Clone(s.notifications),
		Messages:      slices.Clone(s.messages),
		CreatedAt:     s.createdAt,
		UpdatedAt:     s.updatedAt,
	}
}

// Wait blocks until background tasks started by the store have finished.
func (s *Store) Wait() {
	s.tasks.Wait()
}

func (s *Store) touch() {
	s.updatedAt = time.Now().UTC()
}
