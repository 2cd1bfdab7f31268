package openapi

import (
	"maps"
	"net/http"
)

var errorResponses = map[int]string{
	http.StatusBadRequest:            "BadRequest",
	http.StatusNotFound:              "NotFound",
	http.StatusConflict:              "Conflict",
	http.StatusRequestEntityTooLarge: "PayloadTooLarge",
	http.StatusUnsupportedMediaType:  "UnsupportedMediaType",
	http.StatusUnprocessableEntity:   "UnprocessableEntity",
	http.StatusBadGateway:            "BadGateway",
	http.StatusServiceUnavailable:    "ServiceUnavailable",
}

var errorDescriptions = map[string]string{
	"BadRequest":           "Invalid request",
	"NotFound":             "Resource not found",
	"Conflict":             "Request conflicts with current session state",
	"PayloadTooLarge":      "Upload exceeds the configured size limit",
	"UnsupportedMediaType": "Upload content type is not accepted",
	"UnprocessableEntity":  "Validation failed or the step is not ready",
	"BadGateway":           "Analysis backend call failed",
	"ServiceUnavailable":   "Analysis backend is not configured",
}

// NewComponents creates Components with the shared error schema and error responses.
func NewComponents() *Components {
	c := &Components{
		Schemas: map[string]*Schema{
			"Error": {
				Type:     "object",
				Required: []string{"error"},
				Properties: map[string]*Schema{
					"error": {Type: "string", Description: "Error message"},
				},
			},
		},
		Responses: make(map[string]*Response, len(errorDescriptions)),
	}

	for name, desc := range errorDescriptions {
		c.Responses[name] = &Response{
			Description: desc,
			Content: map[string]*MediaType{
				"application/json": {Schema: SchemaRef("Error")},
			},
		}
	}

	return c
}

// AddSchemas merges the given schemas into the component schemas.
func (c *Components) AddSchemas(schemas map[string]*Schema) {
	maps.Copy(c.Schemas, schemas)
}

// AddResponses merges the given responses into the component responses.
func (c *Components) AddResponses(responses map[string]*Response) {
	maps.Copy(c.Responses, responses)
}

// Responses merges a success response map with shared error responses for codes.
func Responses(success map[int]*Response, codes ...int) map[int]*Response {
	out := Errors(codes...)
	maps.Copy(out, success)
	return out
}
