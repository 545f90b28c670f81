// internal/server/schema.go
package server

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

const chatRequestSchema = `{
	"type": "object",
	"required": ["sessionId", "query"],
	"additionalProperties": false,
	"properties": {
		"sessionId": {
			"type": "string",
			"minLength": 1,
			"maxLength": 128,
			"pattern": "^[A-Za-z0-9._:-]+$"
		},
		"query": {
			"type": "string",
			"minLength": 1,
			"maxLength": 2000
		},
		"weights": {
			"type": "object",
			"additionalProperties": {
				"type": "number",
				"minimum": 0,
				"maximum": 1
			}
		}
	}
}`

var chatSchemaLoader = gojsonschema.NewStringLoader(chatRequestSchema)

// validateChatRequest checks the raw request body against the chat schema
// and returns a joined description of every violation.
func validateChatRequest(body []byte) error {
	result, err := gojsonschema.Validate(chatSchemaLoader, gojsonschema.NewBytesLoader(body))
	if err != nil {
		return fmt.Errorf("request is not valid JSON: %w", err)
	}
	if result.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("invalid request: %s", strings.Join(msgs, "; "))
}
