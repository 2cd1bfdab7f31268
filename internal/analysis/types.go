package analysis

import (
	"fmt"
	"slices"
	"strings"
)

// RiskType classifies what kind of exposure a risk card describes.
type RiskType string

const (
	RiskLegal       RiskType = "Legal"
	RiskFinancial   RiskType = "Financial"
	RiskDiscrepancy RiskType = "Discrepancy"
)

// RiskOrigin names the evidence a risk card was derived from.
type RiskOrigin string

const (
	OriginDocument       RiskOrigin = "document"
	OriginVerbalContext  RiskOrigin = "verbal_context"
	OriginGoalCongruence RiskOrigin = "goal_congruence"
)

// RiskLevel is the severity of a risk card.
type RiskLevel string

const (
	LevelCritical RiskLevel = "critical"
	LevelModerate RiskLevel = "moderate"
	LevelLow      RiskLevel = "low"
)

// UserProfile holds the self-reported attributes used to personalise analysis.
type UserProfile struct {
	Profession     string   `json:"profession" validate:"required"`
	Languages      []string `json:"languages" validate:"min=1,dive,required"`
	City           string   `json:"city" validate:"required"`
	LegalKnowledge string   `json:"legalKnowledge" validate:"required"`
	Education      string   `json:"education" validate:"required"`
}

// Clone returns a copy of p that shares no slices with it.
func (p UserProfile) Clone() UserProfile {
	p.Languages = slices.Clone(p.Languages)
	return p
}

// Statement is one speaker-attributed claim extracted from a recording.
type Statement struct {
	Speaker   string `json:"speaker" jsonschema:"description=Label of the speaker who made the statement"`
	Statement string `json:"statement" jsonschema:"description=A promise or claim or agreement made by the speaker"`
}

// RiskCard is one structured finding produced by risk identification.
type RiskCard struct {
	RiskyClauseText   string     `json:"risky_clause_text" jsonschema:"description=Exact quote of the risky clause from the document"`
	RiskType          RiskType   `json:"risk_type" jsonschema:"enum=Legal,enum=Financial,enum=Discrepancy"`
	RiskOrigin        RiskOrigin `json:"risk_origin" jsonschema:"enum=document,enum=verbal_context,enum=goal_congruence"`
	RiskLevel         RiskLevel  `json:"riskLevel,omitempty" jsonschema:"enum=critical,enum=moderate,enum=low"`
	SimplifiedMeaning string     `json:"simplified_meaning" jsonschema:"description=Plain-language explanation tailored to the user's legal knowledge"`
	SuggestedFix      string     `json:"suggested_fix,omitempty" jsonschema:"description=Optional suggested rewording or negotiation point"`
}

// Validate reports whether the card carries the required fields and known enum values.
func (c RiskCard) Validate() error {
	if strings.TrimSpace(c.RiskyClauseText) == "" {
		return fmt.Errorf("risky_clause_text required")
	}
	if !slices.Contains([]RiskType{RiskLegal, RiskFinancial, RiskDiscrepancy}, c.RiskType) {
		return fmt.Errorf("unknown risk_type %q", c.RiskType)
	}
	if !slices.Contains([]RiskOrigin{OriginDocument, OriginVerbalContext, OriginGoalCongruence}, c.RiskOrigin) {
		return fmt.Errorf("unknown risk_origin %q", c.RiskOrigin)
	}
	if c.RiskLevel != "" && !slices.Contains([]RiskLevel{LevelCritical, LevelModerate, LevelLow}, c.RiskLevel) {
		return fmt.Errorf("unknown riskLevel %q", c.RiskLevel)
	}
	if strings.TrimSpace(c.SimplifiedMeaning) == "" {
		return fmt.Errorf("simplified_meaning required")
	}
	return nil
}

// SummarizeRequest asks for a plain-language summary of a document.
type SummarizeRequest struct {
	DocumentText string
}

// Summary is the response to Summarize.
type Summary struct {
	Summary string `json:"summary" jsonschema:"description=Concise plain-language summary of the document"`
}

// Validate rejects an empty summary.
func (s Summary) Validate() error {
	if strings.TrimSpace(s.Summary) == "" {
		return fmt.Errorf("summary is empty")
	}
	return nil
}

// ParseGoalsRequest carries the user's free-text goals.
type ParseGoalsRequest struct {
	Goals string
}

// ParsedGoals holds the structured form of the user's goals.
type ParsedGoals struct {
	UserIntentions []string `json:"user_intentions" jsonschema:"description=Specific intentions extracted from the user's goals"`
	RisksToAvoid   []string `json:"risks_to_avoid" jsonschema:"description=Specific risks the user wants to avoid"`
}

// Validate requires both lists to be present.
func (g ParsedGoals) Validate() error {
	if g.UserIntentions == nil {
		return fmt.Errorf("user_intentions missing")
	}
	if g.RisksToAvoid == nil {
		return fmt.Errorf("risks_to_avoid missing")
	}
	return nil
}

// Empty reports whether no intentions or risks were recorded.
func (g ParsedGoals) Empty() bool {
	return len(g.UserIntentions) == 0 && len(g.RisksToAvoid) == 0
}

// Clone returns a copy of g that shares no slices with it.
func (g ParsedGoals) Clone() ParsedGoals {
	return ParsedGoals{
		UserIntentions: slices.Clone(g.UserIntentions),
		RisksToAvoid:   slices.Clone(g.RisksToAvoid),
	}
}

// IdentifyRisksRequest carries everything risk identification compares.
type IdentifyRisksRequest struct {
	DocumentText string
	Profile      UserProfile
	Statements   []Statement
	Goals        ParsedGoals
}

// RiskAnalysis is the ordered list of risk cards for one document.
type RiskAnalysis struct {
	RiskCards []RiskCard `json:"riskCards"`
}

// Validate checks every card. An empty list is a valid result.
func (a RiskAnalysis) Validate() error {
	if a.RiskCards == nil {
		return fmt.Errorf("riskCards missing")
	}
	for i, c := range a.RiskCards {
		if err := c.Validate(); err != nil {
			return fmt.Errorf("risk card %d: %w", i, err)
		}
	}
	return nil
}

// Clone returns a copy of a that shares no slices with it.
func (a *RiskAnalysis) Clone() *RiskAnalysis {
	if a == nil {
		return nil
	}
	return &RiskAnalysis{RiskCards: slices.Clone(a.RiskCards)}
}

// NarrateRiskRequest asks for a short scenario illustrating one risk.
type NarrateRiskRequest struct {
	Risk     RiskCard
	Profile  UserProfile
	Language string
}

// Narrative is the response to NarrateRisk.
type Narrative struct {
	Narrative string `json:"narrative" jsonschema:"description=A short plausible story illustrating the risk"`
}

// Validate rejects an empty narrative.
func (n Narrative) Validate() error {
	if strings.TrimSpace(n.Narrative) == "" {
		return fmt.Errorf("narrative is empty")
	}
	return nil
}

// TranscribeAudioRequest carries a recording to transcribe and diarize.
type TranscribeAudioRequest struct {
	Audio    []byte
	MimeType string
	FileName string
}

// Transcription is the transcript of a recording and the statements
// extracted from it. StorageKey names the persisted audio blob.
type Transcription struct {
	Transcript string      `json:"transcript"`
	Statements []Statement `json:"statements"`
	StorageKey string      `json:"storage_key,omitempty"`
}

type statementList struct {
	Statements []Statement `json:"statements" jsonschema:"description=Promises or factual claims or agreements attributed to their speaker"`
}

func (l statementList) Validate() error {
	if l.Statements == nil {
		return fmt.Errorf("statements missing")
	}
	for i, s := range l.Statements {
		if strings.TrimSpace(s.Speaker) == "" || strings.TrimSpace(s.Statement) == "" {
			return fmt.Errorf("statement %d: speaker and statement required", i)
		}
	}
	return nil
}

// AnswerQueryRequest carries one chat turn.
type AnswerQueryRequest struct {
	Question     string
	DocumentText string
}

// Answer is the response to AnswerQuery.
type Answer struct {
	Answer string `json:"answer" jsonschema:"description=The answer to the question based only on the document"`
}

// Validate rejects an empty answer.
func (a Answer) Validate() error {
	if strings.TrimSpace(a.Answer) == "" {
		return fmt.Errorf("answer is empty")
	}
	return nil
}
