package wizard

import (
	"net/http"

	"github.com/JaimeStill/cognivex/pkg/openapi"
)

type apiDocs struct {
	Create         *openapi.Operation
	Find           *openapi.Operation
	Delete         *openapi.Operation
	SyncRoute      *openapi.Operation
	Next           *openapi.Operation
	Prev           *openapi.Operation
	GoTo           *openapi.Operation
	PatchProfile   *openapi.Operation
	SubmitProfile  *openapi.Operation
	UploadDocument *openapi.Operation
	RemoveDocument *openapi.Operation
	Summary        *openapi.Operation
	RetrySummary   *openapi.Operation
	SetConsent     *openapi.Operation
	UploadAudio    *openapi.Operation
	ClearAudio     *openapi.Operation
	SubmitGoals    *openapi.Operation
	IdentifyRisks  *openapi.Operation
	Narrate        *openapi.Operation
	Ask            *openapi.Operation
	Messages       *openapi.Operation
	Notifications  *openapi.Operation
	Dismiss        *openapi.Operation
}

var sessionID = openapi.PathParam("id", "Session ID")

func ok(description, schema string) map[int]*openapi.Response {
	return map[int]*openapi.Response{200: openapi.ResponseJSON(description, schema)}
}

func noContent(description string) map[int]*openapi.Response {
	return map[int]*openapi.Response{204: {Description: description}}
}

func arrayOf(description, schema string) map[int]*openapi.Response {
	return map[int]*openapi.Response{
		200: {
			Description: description,
			Content: map[string]*openapi.MediaType{
				"application/json": {Schema: &openapi.Schema{Type: "array", Items: openapi.SchemaRef(schema)}},
			},
		},
	}
}

var docs = apiDocs{
	Create: &openapi.Operation{
		Summary:   "Start a wizard session",
		Responses: openapi.Responses(map[int]*openapi.Response{201: openapi.ResponseJSON("Created session", "Session")}, http.StatusServiceUnavailable),
	},
	Find: &openapi.Operation{
		Summary:    "Get the full session state",
		Parameters: []*openapi.Parameter{sessionID},
		Responses:  openapi.Responses(ok("Session state", "Session"), http.StatusNotFound, http.StatusServiceUnavailable),
	},
	Delete: &openapi.Operation{
		Summary:    "End a session and release its recording",
		Parameters: []*openapi.Parameter{sessionID},
		Responses:  openapi.Responses(noContent("Session ended"), http.StatusNotFound, http.StatusServiceUnavailable),
	},
	SyncRoute: &openapi.Operation{
		Summary:     "Align the current step with the client location",
		Description: "Unknown locations leave the current step unchanged.",
		Parameters:  []*openapi.Parameter{sessionID},
		RequestBody: openapi.RequestBodyJSON("RouteRequest", true),
		Responses:   openapi.Responses(ok("Navigation result", "Transition"), http.StatusBadRequest, http.StatusNotFound),
	},
	Next: &openapi.Operation{
		Summary:     "Advance when the current step is ready",
		Description: "From the last step the response is an exit transition to the landing location.",
		Parameters:  []*openapi.Parameter{sessionID},
		Responses:   openapi.Responses(ok("Navigation result", "Transition"), http.StatusNotFound, http.StatusUnprocessableEntity),
	},
	Prev: &openapi.Operation{
		Summary:    "Move back one step",
		Parameters: []*openapi.Parameter{sessionID},
		Responses:  openapi.Responses(ok("Navigation result", "Transition"), http.StatusNotFound),
	},
	GoTo: &openapi.Operation{
		Summary:    "Jump to a step",
		Parameters: []*openapi.Parameter{sessionID, openapi.IntPathParam("step", "Step ID; out of range values are ignored")},
		Responses:  openapi.Responses(ok("Navigation result", "Transition"), http.StatusBadRequest, http.StatusNotFound),
	},
	PatchProfile: &openapi.Operation{
		Summary:     "Merge a partial profile without validation",
		Parameters:  []*openapi.Parameter{sessionID},
		RequestBody: openapi.RequestBodyJSON("Profile", true),
		Responses:   openapi.Responses(ok("Merged profile", "Profile"), http.StatusBadRequest, http.StatusNotFound),
	},
	SubmitProfile: &openapi.Operation{
		Summary:     "Submit a complete profile and advance",
		Parameters:  []*openapi.Parameter{sessionID},
		RequestBody: openapi.RequestBodyJSON("Profile", true),
		Responses:   openapi.Responses(ok("Navigation result", "Transition"), http.StatusBadRequest, http.StatusNotFound, http.StatusUnprocessableEntity),
	},
	UploadDocument: &openapi.Operation{
		Summary:     "Upload the legal document",
		Description: "Replaces any previous document, clears its summary and risks, and starts a background summarization.",
		Parameters:  []*openapi.Parameter{sessionID},
		RequestBody: openapi.RequestBodyMultipart("file", "Plain text or PDF document"),
		Responses: openapi.Responses(
			map[int]*openapi.Response{201: openapi.ResponseJSON("Document set", "DocumentResponse")},
			http.StatusBadRequest, http.StatusNotFound, http.StatusRequestEntityTooLarge,
			http.StatusUnsupportedMediaType, http.StatusUnprocessableEntity,
		),
	},
	RemoveDocument: &openapi.Operation{
		Summary:    "Clear the document and its derived results",
		Parameters: []*openapi.Parameter{sessionID},
		Responses:  openapi.Responses(ok("Document cleared", "DocumentResponse"), http.StatusNotFound),
	},
	Summary: &openapi.Operation{
		Summary:    "Get the document summary",
		Parameters: []*openapi.Parameter{sessionID},
		Responses:  openapi.Responses(ok("Summary state", "SummaryResponse"), http.StatusNotFound),
	},
	RetrySummary: &openapi.Operation{
		Summary:    "Restart a failed summarization",
		Parameters: []*openapi.Parameter{sessionID},
		Responses: openapi.Responses(
			map[int]*openapi.Response{202: openapi.ResponseJSON("Summarization restarted", "SummaryResponse")},
			http.StatusNotFound, http.StatusUnprocessableEntity,
		),
	},
	SetConsent: &openapi.Operation{
		Summary:     "Record recording consent",
		Parameters:  []*openapi.Parameter{sessionID},
		RequestBody: openapi.RequestBodyJSON("ConsentRequest", true),
		Responses:   openapi.Responses(noContent("Consent recorded"), http.StatusBadRequest, http.StatusNotFound),
	},
	UploadAudio: &openapi.Operation{
		Summary:     "Upload a recording for verbal context",
		Description: "The recording is stored, transcribed and split into speaker statements. The verbal context is empty while processing and after a failure.",
		Parameters:  []*openapi.Parameter{sessionID},
		RequestBody: openapi.RequestBodyMultipart("file", "Compressed audio recording"),
		Responses: openapi.Responses(
			ok("Extracted verbal context", "VerbalContext"),
			http.StatusBadRequest, http.StatusNotFound, http.StatusConflict,
			http.StatusRequestEntityTooLarge, http.StatusUnprocessableEntity, http.StatusBadGateway,
		),
	},
	ClearAudio: &openapi.Operation{
		Summary:    "Remove the recording and its statements",
		Parameters: []*openapi.Parameter{sessionID},
		Responses:  openapi.Responses(noContent("Recording removed"), http.StatusNotFound, http.StatusConflict),
	},
	SubmitGoals: &openapi.Operation{
		Summary:     "Submit goals and advance",
		Description: "Blank text skips parsing.",
		Parameters:  []*openapi.Parameter{sessionID},
		RequestBody: openapi.RequestBodyJSON("GoalsRequest", true),
		Responses:   openapi.Responses(ok("Navigation result", "Transition"), http.StatusBadRequest, http.StatusNotFound, http.StatusConflict, http.StatusBadGateway),
	},
	IdentifyRisks: &openapi.Operation{
		Summary:     "Identify risks in the document",
		Description: "Returns the cached analysis when one exists for the current document.",
		Parameters:  []*openapi.Parameter{sessionID},
		Responses:   openapi.Responses(ok("Risk analysis", "RiskAnalysis"), http.StatusNotFound, http.StatusConflict, http.StatusBadGateway),
	},
	Narrate: &openapi.Operation{
		Summary:     "Narrate a risk card as a short story",
		Description: "Narratives are cached per card and language. A blank language uses the first profile language.",
		Parameters:  []*openapi.Parameter{sessionID, openapi.IntPathParam("index", "Zero-based risk card index")},
		RequestBody: openapi.RequestBodyJSON("NarrationRequest", false),
		Responses:   openapi.Responses(ok("Narrative", "Narration"), http.StatusBadRequest, http.StatusNotFound, http.StatusConflict, http.StatusBadGateway),
	},
	Ask: &openapi.Operation{
		Summary:     "Ask a question about the document",
		Parameters:  []*openapi.Parameter{sessionID},
		RequestBody: openapi.RequestBodyJSON("QueryRequest", true),
		Responses:   openapi.Responses(ok("Bot reply", "ChatMessage"), http.StatusBadRequest, http.StatusNotFound, http.StatusConflict, http.StatusUnprocessableEntity, http.StatusBadGateway),
	},
	Messages: &openapi.Operation{
		Summary:    "Get the chat transcript",
		Parameters: []*openapi.Parameter{sessionID},
		Responses:  openapi.Responses(arrayOf("Chat transcript", "ChatMessage"), http.StatusNotFound),
	},
	Notifications: &openapi.Operation{
		Summary:    "List pending notifications",
		Parameters: []*openapi.Parameter{sessionID},
		Responses:  openapi.Responses(arrayOf("Notifications", "Notification"), http.StatusNotFound),
	},
	Dismiss: &openapi.Operation{
		Summary:    "Dismiss a notification",
		Parameters: []*openapi.Parameter{sessionID, openapi.PathParam("nid", "Notification ID")},
		Responses:  openapi.Responses(noContent("Notification dismissed"), http.StatusBadRequest, http.StatusNotFound),
	},
}

func str(description string) *openapi.Schema {
	return &openapi.Schema{Type: "string", Description: description}
}

func strEnum(values ...any) *openapi.Schema {
	return &openapi.Schema{Type: "string", Enum: values}
}

func strList() *openapi.Schema {
	return &openapi.Schema{Type: "array", Items: &openapi.Schema{Type: "string"}}
}

// Schemas returns the OpenAPI component schemas for this package.
func Schemas() map[string]*openapi.Schema {
	return map[string]*openapi.Schema{
		"Profile": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"profession":     {Type: "string", Example: "Farmer"},
				"languages":      {Type: "array", Items: &openapi.Schema{Type: "string"}, Example: []string{"Kannada", "English"}},
				"city":           {Type: "string", Example: "Mysuru"},
				"legalKnowledge": {Type: "string", Example: "basic"},
				"education":      {Type: "string", Example: "secondary"},
			},
		},
		"Transition": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"step":  {Type: "integer", Description: "Current step after the request"},
				"path":  str("Location to navigate to"),
				"exit":  {Type: "boolean", Description: "Set when advancing past the last step"},
				"moved": {Type: "boolean", Description: "Whether the current step changed"},
			},
		},
		"RouteRequest": {
			Type:       "object",
			Required:   []string{"path"},
			Properties: map[string]*openapi.Schema{"path": {Type: "string", Example: "/summarization"}},
		},
		"ConsentRequest": {
			Type:       "object",
			Required:   []string{"granted"},
			Properties: map[string]*openapi.Schema{"granted": {Type: "boolean"}},
		},
		"GoalsRequest": {
			Type:       "object",
			Properties: map[string]*openapi.Schema{"text": str("Free-text goals; blank skips the step")},
		},
		"NarrationRequest": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"language":   {Type: "string", Example: "Kannada"},
				"regenerate": {Type: "boolean", Description: "Discard the cached narrative first"},
			},
		},
		"QueryRequest": {
			Type:       "object",
			Required:   []string{"question"},
			Properties: map[string]*openapi.Schema{"question": {Type: "string", Example: "When is rent due?"}},
		},
		"Document": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"id":           {Type: "string", Format: "uuid"},
				"name":         str("Sanitized file name"),
				"content":      str("Extracted text"),
				"size":         {Type: "integer", Description: "Upload size in bytes"},
				"content_type": strEnum("text/plain", "application/pdf"),
				"page_count":   {Type: "integer", Description: "PDF only"},
				"sha256":       str("Hex digest of the upload"),
				"uploaded_at":  {Type: "string", Format: "date-time"},
			},
		},
		"DocumentResponse": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"document":     openapi.SchemaRef("Document"),
				"document_key": {Type: "integer", Description: "Revision of the document assignment"},
			},
		},
		"SummaryResponse": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"summary":      {Type: "string"},
				"status":       strEnum("empty", "pending", "ready", "failed"),
				"loading":      {Type: "boolean"},
				"document_key": {Type: "integer"},
			},
		},
		"Statement": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"speaker":   {Type: "string", Example: "Landlord"},
				"statement": {Type: "string"},
			},
		},
		"VerbalContext": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"transcript": {Type: "string"},
				"statements": {Type: "array", Items: openapi.SchemaRef("Statement")},
				"audio_key":  str("Blob key of the stored recording"),
			},
		},
		"RiskCard": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"risky_clause_text":  {Type: "string"},
				"risk_type":          strEnum("Legal", "Financial", "Discrepancy"),
				"risk_origin":        strEnum("document", "verbal_context", "goal_congruence"),
				"riskLevel":          strEnum("critical", "moderate", "low"),
				"simplified_meaning": {Type: "string"},
				"suggested_fix":      {Type: "string"},
			},
		},
		"RiskAnalysis": {
			Type:       "object",
			Properties: map[string]*openapi.Schema{"riskCards": {Type: "array", Items: openapi.SchemaRef("RiskCard")}},
		},
		"Narration": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"index":     {Type: "integer"},
				"language":  {Type: "string"},
				"narrative": {Type: "string"},
				"cached":    {Type: "boolean"},
			},
		},
		"ChatMessage": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"id":         {Type: "string", Format: "uuid"},
				"sender":     strEnum("user", "bot"),
				"text":       {Type: "string"},
				"created_at": {Type: "string", Format: "date-time"},
			},
		},
		"Notification": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"id":         {Type: "string", Format: "uuid"},
				"kind":       strEnum("error", "info"),
				"title":      {Type: "string"},
				"message":    {Type: "string"},
				"created_at": {Type: "string", Format: "date-time"},
			},
		},
		"Session": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"id":             {Type: "string", Format: "uuid"},
				"current_step":   {Type: "integer"},
				"path":           {Type: "string"},
				"profile":        openapi.SchemaRef("Profile"),
				"document":       openapi.SchemaRef("Document"),
				"document_key":   {Type: "integer"},
				"summary":        {Type: "string"},
				"summary_status": strEnum("empty", "pending", "ready", "failed"),
				"verbal_context": openapi.SchemaRef("VerbalContext"),
				"transcribing":   {Type: "boolean"},
				"consent":        {Type: "boolean"},
				"goals": {
					Type: "object",
					Properties: map[string]*openapi.Schema{
						"raw": {Type: "string"},
						"parsed": {
							Type: "object",
							Properties: map[string]*openapi.Schema{
								"user_intentions": strList(),
								"risks_to_avoid":  strList(),
							},
						},
					},
				},
				"risk_analysis": openapi.SchemaRef("RiskAnalysis"),
				"narrations":    {Type: "object", Description: "Narratives by risk index then language"},
				"notifications": {Type: "array", Items: openapi.SchemaRef("Notification")},
				"messages":      {Type: "array", Items: openapi.SchemaRef("ChatMessage")},
				"created_at":    {Type: "string", Format: "date-time"},
				"updated_at":    {Type: "string", Format: "date-time"},
			},
		},
	}
}
