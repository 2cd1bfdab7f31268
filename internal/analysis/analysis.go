// Package analysis is the typed client for the generative-analysis backend.
//
// Every operation takes a plain request, returns a schema-validated response,
// and fails with an error wrapping one of ErrConfiguration, ErrPermission,
// ErrMalformedOutput, ErrTransport or ErrInvalidInput. Partial results are
// never returned.
package analysis

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"

	"github.com/JaimeStill/cognivex/pkg/formatting"
	"github.com/JaimeStill/cognivex/pkg/storage"
)

// System defines the analysis backend contract.
type System interface {
	Summarize(ctx context.Context, req SummarizeRequest) (*Summary, error)
	ParseGoals(ctx context.Context, req ParseGoalsRequest) (*ParsedGoals, error)
	IdentifyRisks(ctx context.Context, req IdentifyRisksRequest) (*RiskAnalysis, error)
	NarrateRisk(ctx context.Context, req NarrateRiskRequest) (*Narrative, error)
	// TranscribeAudio persists the audio to blob storage, transcribes it, and
	// extracts speaker statements. The blob is deleted if any later stage fails.
	TranscribeAudio(ctx context.Context, req TranscribeAudioRequest) (*Transcription, error)
	AnswerQuery(ctx context.Context, req AnswerQueryRequest) (*Answer, error)
}

type client struct {
	oai        openai.Client
	store      storage.System
	logger     *slog.Logger
	model      string
	transcribe string
	maxTokens  int64
	retries    int
	backoff    time.Duration
}

// New creates an analysis client backed by the OpenAI Responses and Audio APIs.
// It returns ErrConfiguration when cfg fails Check.
func New(cfg *Config, store storage.System, logger *slog.Logger) (System, error) {
	if err := cfg.Check(); err != nil {
		return nil, err
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if d := cfg.TimeoutDuration(); d > 0 {
		opts = append(opts, option.WithRequestTimeout(d))
	}

	return &client{
		oai:        openai.NewClient(opts...),
		store:      store,
		logger:     logger.With("system", "analysis"),
		model:      cfg.Model,
		transcribe: cfg.TranscriptionModel,
		maxTokens:  int64(cfg.MaxOutputTokens),
		retries:    cfg.MaxRetries,
		backoff:    cfg.RetryBackoffDuration(),
	}, nil
}

func (c *client) Summarize(ctx context.Context, req SummarizeRequest) (*Summary, error) {
	if strings.TrimSpace(req.DocumentText) == "" {
		return nil, fmt.Errorf("%w: document text is empty", ErrInvalidInput)
	}

	out, err := structured[Summary](ctx, c, callSpec{
		op:           "summarize",
		name:         "DocumentSummary",
		schema:       summarySchema,
		instructions: summarizeInstructions,
		input:        summarizeInput(req),
	})
	if err != nil {
		return nil, err
	}

	out.Summary = strings.TrimSpace(out.Summary)
	return &out, nil
}

func (c *client) ParseGoals(ctx context.Context, req ParseGoalsRequest) (*ParsedGoals, error) {
	if strings.TrimSpace(req.Goals) == "" {
		return nil, fmt.Errorf("%w: goals text is empty", ErrInvalidInput)
	}

	out, err := structured[ParsedGoals](ctx, c, callSpec{
		op:           "parse_goals",
		name:         "ParsedGoals",
		schema:       goalsSchema,
		instructions: goalsInstructions,
		input:        goalsInput(req),
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *client) IdentifyRisks(ctx context.Context, req IdentifyRisksRequest) (*RiskAnalysis, error) {
	if strings.TrimSpace(req.DocumentText) == "" {
		return nil, fmt.Errorf("%w: document text is empty", ErrInvalidInput)
	}

	out, err := structured[RiskAnalysis](ctx, c, callSpec{
		op:           "identify_risks",
		name:         "RiskAnalysis",
		schema:       risksSchema,
		instructions: risksInstructions,
		input:        risksInput(req),
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *client) NarrateRisk(ctx context.Context, req NarrateRiskRequest) (*Narrative, error) {
	if err := req.Risk.Validate(); err != nil {
		return nil, fmt.Errorf("%w: risk: %w", ErrInvalidInput, err)
	}
	if strings.TrimSpace(req.Language) == "" {
		req.Language = DefaultLanguage
	}

	out, err := structured[Narrative](ctx, c, callSpec{
		op:           "narrate_risk",
		name:         "RiskNarrative",
		schema:       narrativeSchema,
		instructions: narrateInstructions,
		input:        narrateInput(req),
	})
	if err != nil {
		return nil, err
	}

	out.Narrative = strings.TrimSpace(out.Narrative)
	return &out, nil
}

func (c *client) AnswerQuery(ctx context.Context, req AnswerQueryRequest) (*Answer, error) {
	if strings.TrimSpace(req.Question) == "" {
		return nil, fmt.Errorf("%w: question is empty", ErrInvalidInput)
	}
	if strings.TrimSpace(req.DocumentText) == "" {
		return nil, fmt.Errorf("%w: document text is empty", ErrInvalidInput)
	}

	out, err := structured[Answer](ctx, c, callSpec{
		op:           "answer_query",
		name:         "QueryAnswer",
		schema:       answerSchema,
		instructions: answerInstructions,
		input:        answerInput(req),
	})
	if err != nil {
		return nil, err
	}

	out.Answer = strings.TrimSpace(out.Answer)
	return &out, nil
}

func (c *client) TranscribeAudio(ctx context.Context, req TranscribeAudioRequest) (*Transcription, error) {
	if len(req.Audio) == 0 {
		return nil, fmt.Errorf("%w: audio is empty", ErrInvalidInput)
	}
	mediaType, _, err := mime.ParseMediaType(req.MimeType)
	if err != nil || !strings.HasPrefix(mediaType, "audio/") {
		return nil, fmt.Errorf("%w: unsupported audio type %q", ErrInvalidInput, req.MimeType)
	}

	key := c.store.NewKey(req.FileName)
	if err := c.store.Upload(ctx, key, bytes.NewReader(req.Audio), mediaType); err != nil {
		return nil, fmt.Errorf("%w: transcribe: store audio: %w", ErrTransport, err)
	}

	result, err := c.transcribeStored(ctx, key, mediaType)
	if err != nil {
		if delErr := c.store.Delete(context.WithoutCancel(ctx), key); delErr != nil {
			c.logger.Warn("compensating audio delete failed", "key", key, "error", delErr)
		}
		return nil, err
	}

	result.StorageKey = key
	c.logger.Info("audio transcribed", "key", key, "statements", len(result.Statements))
	return result, nil
}

func (c *client) transcribeStored(ctx context.Context, key, mediaType string) (*Transcription, error) {
	tr, err := retry(ctx, c, "transcribe", func(ctx context.Context) (*openai.Transcription, error) {
		rc, err := c.store.Download(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("read stored audio: %w", err)
		}
		defer rc.Close()

		return c.oai.Audio.Transcriptions.New(ctx, openai.AudioTranscriptionNewParams{
			File:  openai.File(rc, path.Base(key), mediaType),
			Model: openai.AudioModel(c.transcribe),
		})
	})
	if err != nil {
		return nil, classify("transcribe", err)
	}

	transcript := strings.TrimSpace(tr.Text)
	if transcript == "" {
		return nil, fmt.Errorf("%w: transcribe: empty transcript", ErrMalformedOutput)
	}

	list, err := structured[statementList](ctx, c, callSpec{
		op:           "extract_statements",
		name:         "SpeakerStatements",
		schema:       statementsSchema,
		instructions: statementsInstructions,
		input:        statementsInput(transcript),
	})
	if err != nil {
		return nil, err
	}

	return &Transcription{Transcript: transcript, Statements: list.Statements}, nil
}

type callSpec struct {
	op           string
	name         string
	schema       map[string]any
	instructions string
	input        string
}

func structured[T interface{ Validate() error }](ctx context.Context, c *client, spec callSpec) (T, error) {
	var zero T
	start := time.Now()

	params := responses.ResponseNewParams{
		Model:           c.model,
		MaxOutputTokens: openai.Int(c.maxTokens),
		Instructions:    openai.String(spec.instructions),
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: []responses.ResponseInputItemUnionParam{
				responses.ResponseInputItemParamOfMessage(spec.input, responses.EasyInputMessageRoleUser),
			},
		},
		Text: responses.ResponseTextConfigParam{
			Format: responses.ResponseFormatTextConfigUnionParam{
				OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
					Name:   spec.name,
					Schema: spec.schema,
					Strict: openai.Bool(true),
					Type:   "json_schema",
				},
			},
		},
	}

	resp, err := retry(ctx, c, spec.op, func(ctx context.Context) (*responses.Response, error) {
		return c.oai.Responses.New(ctx, params)
	})
	if err != nil {
		return zero, classify(spec.op, err)
	}

	out, err := formatting.Parse[T](resp.OutputText())
	if err != nil {
		return zero, fmt.Errorf("%w: %s: %w", ErrMalformedOutput, spec.op, err)
	}
	if err := out.Validate(); err != nil {
		return zero, fmt.Errorf("%w: %s: %w", ErrMalformedOutput, spec.op, err)
	}

	c.logger.Debug("analysis call complete", "op", spec.op, "duration", time.Since(start))
	return out, nil
}

func retry[T any](ctx context.Context, c *client, op string, fn func(context.Context) (T, error)) (T, error) {
	for attempt := 0; ; attempt++ {
		out, err := fn(ctx)
		if err == nil || attempt >= c.retries || !retryable(err) {
			return out, err
		}

		wait := c.backoff * time.Duration(attempt+1)
		c.logger.Warn("analysis call retrying", "op", op, "attempt", attempt+1, "wait", wait, "error", err)

		select {
		case <-ctx.Done():
			return out, errors.Join(err, ctx.Err())
		case <-time.After(wait):
		}
	}
}

func retryable(err error) bool {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusTooManyRequests || apiErr.StatusCode >= http.StatusInternalServerError
	}
	return false
}

func classify(op string, err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode == http.StatusUnauthorized,
			apiErr.StatusCode == http.StatusForbidden,
			strings.Contains(strings.ToLower(apiErr.Message), "permission"):
			return fmt.Errorf("%w: %s: %w", ErrPermission, op, err)
		}
	}
	if strings.Contains(strings.ToLower(err.Error()), "permission") {
		return fmt.Errorf("%w: %s: %w", ErrPermission, op, err)
	}
	return fmt.Errorf("%w: %s: %w", ErrTransport, op, err)
}
