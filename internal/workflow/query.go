package workflow

import (
	"context"
	"strings"

	"github.com/JaimeStill/cognivex/internal/analysis"
	"github.com/JaimeStill/cognivex/internal/session"
)

const (
	queryFailedTitle   = "Query Failed"
	queryFailedMessage = "There was an error getting a response. Please try again."
	queryApology       = "Sorry, I encountered an error. Please try again."
)

// Ask answers a question from the current document's text. The question and
// the reply are appended to the transcript; earlier turns are not sent.
func (f *Flow) Ask(ctx context.Context, question string) (*session.ChatMessage, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, ErrEmptyQuestion
	}

	doc, _ := f.store.Document()
	if doc == nil {
		return nil, ErrNoDocument
	}

	f.store.AppendMessage(session.SenderUser, question)

	res, err := f.rt.Analysis.AnswerQuery(ctx, analysis.AnswerQueryRequest{
		Question:     question,
		DocumentText: doc.Content,
	})
	if err != nil {
		f.store.AppendMessage(session.SenderBot, queryApology)
		f.store.Notify(session.KindError, queryFailedTitle, queryFailedMessage)
		f.logger.Error("query failed", "error", err)
		return nil, err
	}

	reply := f.store.AppendMessage(session.SenderBot, res.Answer)
	return &reply, nil
}
