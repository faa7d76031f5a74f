package signing

import (
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/brnbtech770/blocktrust/internal/common/apperrors"
	"github.com/brnbtech770/blocktrust/internal/trustsrv/trustcommon"
)

// emailContextSchema constrains the shape of caller-supplied email
// contexts before decoding. Unknown fields are rejected so a client typo
// never silently changes what gets hashed.
const emailContextSchema = `{
	"type": "object",
	"properties": {
		"from":    {"type": "string", "minLength": 1},
		"to":      {"type": "string", "minLength": 1},
		"subject": {"type": "string", "minLength": 1},
		"date":    {"type": "string", "minLength": 1},
		"body":    {"type": "string"}
	},
	"required": ["from", "to", "subject", "date"],
	"additionalProperties": false
}`

var contextSchemas = map[trustcommon.ContextType]*jsonschema.Schema{
	trustcommon.ContextTypeEmail: jsonschema.MustCompileString("email_context.json", emailContextSchema),
}

// ValidateContextShape validates a raw context payload against the schema
// for its context type. Context types without a registered schema are
// free-form and pass.
func ValidateContextShape(ctxType trustcommon.ContextType, payload any) apperrors.Error {
	schema, ok := contextSchemas[ctxType]
	if !ok {
		return nil
	}
	if err := schema.Validate(payload); err != nil {
		msg := err.Error()
		if idx := strings.Index(msg, "\n"); idx > 0 {
			msg = msg[:idx]
		}
		return ErrInvalidContext.Msg(msg)
	}
	return nil
}
