package injected

import "github.com/wiredgraph/injected/pkg/schema"

// AsValidator adapts a schema.Schema into the Validator shape Design
// bindings accept, so schema-built validators (schema.String(),
// schema.Object(...), etc.) can be attached with WithValidator.
func AsValidator(s schema.Schema) Validator {
	return func(value any) error {
		_, err := s.Validate(value)
		return err
	}
}
