package source

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"trivia-quiz-service/internal/domain"
)

const schemaName = "question-set"

// questionSetSchema describes the payload the generator is asked to return.
// It doubles as the structured-output hint for providers that support one.
func questionSetSchema() map[string]any {
	return map[string]any{
		"type":     "array",
		"minItems": domain.QuestionSetSize,
		"maxItems": domain.QuestionSetSize,
		"items": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"question": map[string]any{
					"type":      "string",
					"minLength": 1,
				},
				"choices": map[string]any{
					"type":        "array",
					"minItems":    domain.ChoiceCount,
					"maxItems":    domain.ChoiceCount,
					"uniqueItems": true,
					"items":       map[string]any{"type": "string", "minLength": 1},
				},
				"correct": map[string]any{
					"type":    "integer",
					"minimum": 0,
					"maximum": domain.ChoiceCount - 1,
				},
			},
			"required": []any{"question", "choices", "correct"},
		},
	}
}

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		// The compiler wants a decoded JSON value, not Go ints.
		raw, err := json.Marshal(questionSetSchema())
		if err != nil {
			compileErr = fmt.Errorf("marshal schema: %w", err)
			return
		}
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
		if err != nil {
			compileErr = fmt.Errorf("parse schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		url := "schema://" + schemaName + ".json"
		if err := c.AddResource(url, doc); err != nil {
			compileErr = fmt.Errorf("add schema resource: %w", err)
			return
		}
		compiled, compileErr = c.Compile(url)
	})
	return compiled, compileErr
}
