package recordstatus

import "maglinc-site/internal/common/validation"

const (
	MaxClientNameLength = 4000

	inputSchema = `{
  "type": "object",
  "properties": {
    "client_name": {"type": "string", "minLength": 1, "maxLength": 4000}
  },
  "required": ["client_name"],
  "additionalProperties": false
}`
)

var statusSchema = validation.MustCompile("status", inputSchema)

// GetInputSchema returns the compiled schema for POST /api/status bodies.
func GetInputSchema() *validation.Schema {
	return statusSchema
}
