package workflow

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/JaimeStill/cognivex/internal/analysis"
	"github.com/JaimeStill/cognivex/internal/session"
)

const (
	risksFailedTitle   = "Risk Analysis Failed"
	risksFailedMessage = "Could not analyze risks in the document. Please try again."
	narrationFailed    = "Narration Failed"
)

// Narration is a risk narrative in one language.
type Narration struct {
	Index     int    `json:"index"`
	Language  string `json:"language"`
	Narrative string `json:"narrative"`
	Cached    bool   `json:"cached"`
}

// IdentifyRisks returns the risk analysis of the current document. A cached
// result is returned as is; otherwise at most one backend call runs per
// document, shared by concurrent callers.
func (f *Flow) IdentifyRisks(ctx context.Context) (*analysis.RiskAnalysis, error) {
	doc, key := f.store.Document()
	if doc == nil {
		return nil, ErrNoDocument
	}
	if cached, current := f.store.RiskAnalysis(); cached != nil && current == key {
		return cached, nil
	}

	v, err, shared := f.risks.Do(strconv.FormatUint(uint64(key), 10), func() (any, error) {
		if cached, current := f.store.RiskAnalysis(); cached != nil && current == key {
			return cached, nil
		}

		f.analyzing.Add(1)
		defer f.analyzing.Add(-1)

		vc := f.store.VerbalContext()
		goals := f.store.Goals()
		res, err := f.rt.Analysis.IdentifyRisks(context.WithoutCancel(ctx), analysis.IdentifyRisksRequest{
			DocumentText: doc.Content,
			Profile:      f.store.Profile(),
			Statements:   vc.Statements,
			Goals:        goals.Parsed,
		})
		if err != nil {
			f.store.Notify(session.KindError, risksFailedTitle, risksFailedMessage)
			f.logger.Error("risk identification failed", "document_key", key, "error", err)
			return nil, err
		}

		if !f.store.SetRiskAnalysis(key, *res) {
			return nil, fmt.Errorf("%w: risk analysis", ErrStale)
		}
		f.logger.Info("risks identified", "document_key", key, "cards", len(res.RiskCards))
		return res.Clone(), nil
	})
	if err != nil {
		return nil, err
	}

	if shared {
		f.logger.Debug("risk identification shared", "document_key", key)
	}
	return v.(*analysis.RiskAnalysis).Clone(), nil
}

// NarrateRisk returns a narrative for one risk card. A blank language
// defaults to the first profile language, then English. Narratives are
// cached per card and language; regenerate discards the cached entry first.
func (f *Flow) NarrateRisk(ctx context.Context, index int, language string, regenerate bool) (*Narration, error) {
	risks, key := f.store.RiskAnalysis()
	if risks == nil {
		return nil, ErrNoRiskAnalysis
	}
	if index < 0 || index >= len(risks.RiskCards) {
		return nil, fmt.Errorf("%w: index %d of %d", ErrRiskNotFound, index, len(risks.RiskCards))
	}

	profile := f.store.Profile()
	language = strings.TrimSpace(language)
	if language == "" {
		language = defaultLanguage(profile)
	}

	if regenerate {
		f.store.ClearNarration(index, language)
	} else if text, ok := f.store.Narration(index, language); ok {
		return &Narration{Index: index, Language: language, Narrative: text, Cached: true}, nil
	}

	res, err := f.rt.Analysis.NarrateRisk(ctx, analysis.NarrateRiskRequest{
		Risk:     risks.RiskCards[index],
		Profile:  profile,
		Language: language,
	})
	if err != nil {
		f.store.Notify(
			session.KindError,
			narrationFailed,
			fmt.Sprintf("Could not generate the narrative in %s. Please try again.", language),
		)
		f.logger.Error("narration failed", "index", index, "language", language, "error", err)
		return nil, err
	}

	if !f.store.SetNarration(key, index, language, res.Narrative) {
		return nil, fmt.Errorf("%w: narration", ErrStale)
	}
	return &Narration{Index: index, Language: language, Narrative: res.Narrative}, nil
}

func defaultLanguage(p analysis.UserProfile) string {
	for _, l := range p.Languages {
		if l = strings.TrimSpace(l); l != "" {
			return l
		}
	}
	return analysis.DefaultLanguage
}
