package analysis

import (
	"encoding/json"
	"fmt"
	"strings"
)

const summarizeInstructions = `You are a legal assistant who explains documents to people without legal training.
Write a concise plain-language summary of the document. Cover the parties' key obligations, any financial terms (amounts, deadlines, penalties), and the main purpose of the agreement.
Use only the document text. Do not add outside information.`

const goalsInstructions = `Analyze the user's stated goals for a legal agreement.
Extract the specific intentions they want the agreement to achieve and the specific risks they want to avoid.
Return empty lists when the text states none.`

const risksInstructions = `You are a hyper-vigilant legal and financial analyst. Perform a risk analysis of a legal document and ground every finding in the provided context.

1. Discrepancies come first. Compare the document against the verbal context and the user goals.
   - A verbal promise that is contradicted by or missing from the document is a risk card with risk_origin "verbal_context", risk_type "Discrepancy" and riskLevel "critical".
   - A user goal that is contradicted by or missing from the document is a risk card with risk_origin "goal_congruence", risk_type "Discrepancy" and riskLevel "critical".
2. Then analyze the document on its own for standard legal or financial risks. These use risk_origin "document" and a riskLevel of critical, moderate or low.
3. Tailor simplified_meaning to the user's legalKnowledge. For "None" or "Basic" use very simple non-legal words; for "Advanced" or "Expert" technical language is fine.
4. Quote the risky clause exactly in risky_clause_text. Use an empty suggested_fix when you have no concrete suggestion.
Return every finding as a single list of risk cards. Return an empty list when there are none.`

const narrateInstructions = `You are a storyteller. Write a short, plausible future scenario, under 150 words, that shows how a specific risk in a legal agreement could realistically affect the user.
The story must follow directly and logically from the risk. Use the user's profession and city so it feels personal and relatable.
Do not restate the risk's explanation; tell what happens.`

const statementsInstructions = `You are an expert in speaker diarization. You are given the transcript of a recorded conversation about an agreement.
Extract the key statements that represent promises, factual claims or agreements, and attribute each to its speaker.
Label speakers consistently (for example "Speaker 1", "Speaker 2") unless the transcript names them.`

const answerInstructions = `You are a helpful legal assistant. Answer the user's question based ONLY on the document provided.
Do not use any outside information. If the answer is not in the document, say clearly that the document does not cover it.`

// DefaultLanguage is used for narration when the profile lists no languages.
const DefaultLanguage = "English"

func summarizeInput(req SummarizeRequest) string {
	return "Document:\n" + req.DocumentText
}

func goalsInput(req ParseGoalsRequest) string {
	return "User Goals:\n" + req.Goals
}

func risksInput(req IdentifyRisksRequest) string {
	var b strings.Builder
	section(&b, "Source Document Text", req.DocumentText)
	section(&b, "User Profile", marshal(req.Profile))
	section(&b, "Verbal Context (statements made during negotiation)", marshal(orEmpty(req.Statements)))
	section(&b, "User Goals", marshal(ParsedGoals{
		UserIntentions: orEmpty(req.Goals.UserIntentions),
		RisksToAvoid:   orEmpty(req.Goals.RisksToAvoid),
	}))
	return b.String()
}

func narrateInput(req NarrateRiskRequest) string {
	var b strings.Builder
	section(&b, "Language", fmt.Sprintf("Write the story in %s.", req.Language))
	section(&b, "Risk", marshal(req.Risk))
	section(&b, "User Profile", marshal(req.Profile))
	return b.String()
}

func statementsInput(transcript string) string {
	return "Transcript:\n" + transcript
}

func answerInput(req AnswerQueryRequest) string {
	var b strings.Builder
	section(&b, "Document", req.DocumentText)
	section(&b, "Question", req.Question)
	return b.String()
}

func section(b *strings.Builder, title, body string) {
	if b.Len() > 0 {
		b.WriteString("\n\n")
	}
	b.WriteString(title)
	b.WriteString(":\n")
	b.WriteString(body)
}

func marshal(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(data)
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
