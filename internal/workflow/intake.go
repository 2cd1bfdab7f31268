package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/JaimeStill/cognivex/internal/analysis"
	"github.com/JaimeStill/cognivex/internal/documents"
	"github.com/JaimeStill/cognivex/internal/session"
	"github.com/JaimeStill/cognivex/pkg/formatting"
	"github.com/JaimeStill/cognivex/pkg/storage"
)

const (
	audioTooLargeTitle = "File Too Large"
	audioDoneTitle     = "Analysis Complete"
	audioDoneMessage   = "Verbal context has been extracted from your audio file."
	audioFailedTitle   = "Audio Processing Failed"
)

// UploadDocument parses an uploaded file and makes it the session's
// document. Derived results of the previous document are discarded and a
// background summarization starts.
func (f *Flow) UploadDocument(filename, contentType string, data []byte) (*documents.Document, session.DocumentKey, error) {
	doc, err := documents.Parse(f.logger, filename, contentType, data)
	if err != nil {
		return nil, 0, err
	}

	key := f.store.SetDocument(doc)
	return doc, key, nil
}

// RemoveDocument clears the session's document.
func (f *Flow) RemoveDocument() session.DocumentKey {
	return f.store.SetDocument(nil)
}

// SetConsent records the recording consent of the verbal-context step.
func (f *Flow) SetConsent(granted bool) {
	f.store.SetConsent(granted)
}

// UploadAudio transcribes a recording into the verbal context. The verbal
// context is emptied when processing starts and stays empty on failure.
// Only one transcription runs per session at a time.
func (f *Flow) UploadAudio(ctx context.Context, filename, mimeType string, data []byte) (*session.VerbalContext, error) {
	limit := f.rt.maxAudioSize()
	if int64(len(data)) > limit {
		f.store.Notify(
			session.KindError,
			audioTooLargeTitle,
			fmt.Sprintf("Audio files must be smaller than %s for cloud upload.", formatting.FormatLimit(limit)),
		)
		return nil, fmt.Errorf("%w: %d bytes exceeds %d", ErrAudioTooLarge, len(data), limit)
	}

	if !f.store.BeginTranscription() {
		return nil, fmt.Errorf("%w: audio transcription", ErrBusy)
	}
	defer f.store.EndTranscription()

	f.resetVerbalContext(ctx)

	res, err := f.rt.Analysis.TranscribeAudio(ctx, analysis.TranscribeAudioRequest{
		Audio:    data,
		MimeType: mimeType,
		FileName: filename,
	})
	if err != nil {
		f.store.SetVerbalContext("", nil)
		f.store.Notify(
			session.KindError,
			audioFailedTitle,
			"Could not analyze the audio file: "+failureMessage(err),
		)
		f.logger.Error("audio transcription failed", "file", filename, "error", err)
		return nil, err
	}

	f.store.SetVerbalContext(res.Transcript, res.Statements)
	f.store.SwapAudioKey(res.StorageKey)
	f.store.Notify(session.KindInfo, audioDoneTitle, audioDoneMessage)

	vc := f.store.VerbalContext()
	return &vc, nil
}

// ClearAudio removes the recording and its extracted statements.
func (f *Flow) ClearAudio(ctx context.Context) error {
	if f.store.Transcribing() {
		return fmt.Errorf("%w: audio transcription", ErrBusy)
	}
	f.resetVerbalContext(ctx)
	return nil
}

func (f *Flow) resetVerbalContext(ctx context.Context) {
	f.store.SetVerbalContext("", nil)

	key := f.store.SwapAudioKey("")
	if key == "" {
		return
	}
	err := f.rt.Storage.Delete(context.WithoutCancel(ctx), key)
	switch {
	case err == nil:
	case errors.Is(err, storage.ErrNotFound):
		f.logger.Debug("previous audio already released", "key", key)
	default:
		f.logger.Warn("previous audio delete failed", "key", key, "error", err)
	}
}

// failureMessage returns the first segment of an error chain, which names
// the failure class without transport detail.
func failureMessage(err error) string {
	msg, _, _ := strings.Cut(err.Error(), ":")
	return msg
}

// Close releases the session's stored recording. The flow must not be used
// afterwards.
func (f *Flow) Close(ctx context.Context) {
	f.resetVerbalContext(ctx)
	f.logger.Info("flow closed")
}
