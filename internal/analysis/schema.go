package analysis

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// Response schemas sent with every structured call.
var (
	summarySchema    = GenerateSchema[Summary]()
	goalsSchema      = GenerateSchema[ParsedGoals]()
	risksSchema      = GenerateSchema[RiskAnalysis]()
	narrativeSchema  = GenerateSchema[Narrative]()
	statementsSchema = GenerateSchema[statementList]()
	answerSchema     = GenerateSchema[Answer]()
)

// GenerateSchema reflects T into a strict JSON schema: every property is
// required and no additional properties are allowed.
func GenerateSchema[T any]() map[string]any {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties:  false,
		DoNotReference:             true,
		RequiredFromJSONSchemaTags: true,
	}

	var v T
	b, err := json.Marshal(reflector.Reflect(v))
	if err != nil {
		panic(err)
	}

	var schema map[string]any
	if err := json.Unmarshal(b, &schema); err != nil {
		panic(err)
	}

	delete(schema, "$schema")
	strict(schema)
	return schema
}

func strict(schema map[string]any) {
	if t, ok := schema["type"].(string); ok && t == "object" {
		schema["additionalProperties"] = false

		if props, ok := schema["properties"].(map[string]any); ok {
			required := make([]string, 0, len(props))
			for name := range props {
				required = append(required, name)
			}
			if len(required) > 0 {
				schema["required"] = required
			}
		}
	}

	if props, ok := schema["properties"].(map[string]any); ok {
		for _, p := range props {
			if pm, ok := p.(map[string]any); ok {
				strict(pm)
			}
		}
	}

	if items, ok := schema["items"].(map[string]any); ok {
		strict(items)
	}
}
