package session

import (
	"maps"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/cognivex/internal/analysis"
	"github.com/JaimeStill/cognivex/internal/documents"
)

// DocumentKey identifies one document assignment within a session. Every
// SetDocument call, including clearing, issues a new key; results computed
// for an older key are stale.
type DocumentKey uint64

// SummaryStatus tracks the background summarization of the current document.
type SummaryStatus string

const (
	SummaryEmpty   SummaryStatus = "empty"
	SummaryPending SummaryStatus = "pending"
	SummaryReady   SummaryStatus = "ready"
	SummaryFailed  SummaryStatus = "failed"
)

// NotificationKind distinguishes failures from informational notices.
type NotificationKind string

const (
	KindError NotificationKind = "error"
	KindInfo  NotificationKind = "info"
)

// Notification is a dismissible message surfaced to the user.
type Notification struct {
	ID        uuid.UUID        `json:"id"`
	Kind      NotificationKind `json:"kind"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	CreatedAt time.Time        `json:"created_at"`
}

// Sender identifies who wrote a chat message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// ChatMessage is one entry of the query transcript. The transcript is for
// display only and is never sent back to the backend.
type ChatMessage struct {
	ID        uuid.UUID `json:"id"`
	Sender    Sender    `json:"sender"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// VerbalContext holds statements extracted from an optional recording.
type VerbalContext struct {
	Transcript string               `json:"transcript"`
	Statements []analysis.Statement `json:"statements"`
	AudioKey   string               `json:"audio_key,omitempty"`
}

// Goals holds the user's stated goals, raw and parsed.
type Goals struct {
	Raw    string               `json:"raw"`
	Parsed analysis.ParsedGoals `json:"parsed"`
}

// ProfilePatch carries a partial profile update. Nil fields are left unchanged.
type ProfilePatch struct {
	Profession     *string   `json:"profession,omitempty"`
	Languages      *[]string `json:"languages,omitempty"`
	City           *string   `json:"city,omitempty"`
	LegalKnowledge *string   `json:"legalKnowledge,omitempty"`
	Education      *string   `json:"education,omitempty"`
}

// PatchFrom returns a patch that sets every field of p.
func PatchFrom(p analysis.UserProfile) ProfilePatch {
	langs := slices.Clone(p.Languages)
	return ProfilePatch{
		Profession:     &p.Profession,
		Languages:      &langs,
		City:           &p.City,
		LegalKnowledge: &p.LegalKnowledge,
		Education:      &p.Education,
	}
}

// Narrations caches narratives by risk index, then language.
type Narrations map[int]map[string]string

func (n Narrations) clone() Narrations {
	out := make(Narrations, len(n))
	for idx, langs := range n {
		out[idx] = maps.Clone(langs)
	}
	return out
}

// Snapshot is a deep copy of a session's state for readers.
type Snapshot struct {
	ID            string                 `json:"id"`
	CurrentStep   int                    `json:"current_step"`
	Path          string                 `json:"path"`
	Profile       analysis.UserProfile   `json:"profile"`
	Document      *documents.Document    `json:"document"`
	DocumentKey   DocumentKey            `json:"document_key"`
	Summary       string                 `json:"summary"`
	SummaryStatus SummaryStatus          `json:"summary_status"`
	VerbalContext VerbalContext          `json:"verbal_context"`
	Transcribing  bool                   `json:"transcribing"`
	Consent       bool                   `json:"consent"`
	Goals         Goals                  `json:"goals"`
	RiskAnalysis  *analysis.RiskAnalysis `json:"risk_analysis"`
	Narrations    Narrations             `json:"narrations"`
	Notifications []Notification         `json:"notifications"`
	Messages      []ChatMessage          `json:"messages"`
	CreatedAt     time.Time              `json:"created_at"`
	UpdatedAt     time.Time              `json:"updated_at"`
}
