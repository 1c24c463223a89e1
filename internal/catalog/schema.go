package catalog

import (
	_ "embed"

	"github.com/exptechtw/tremstore/internal/schema"
)

//go:embed schema/plugins.schema.json
var pluginsSchemaJSON []byte

//nolint:gochecknoglobals // Compiled lazily, shared by every loader.
var pluginsValidator = schema.New("https://tremstore.exptech.dev/schemas/plugins.schema.json", pluginsSchemaJSON)

// ValidatePlugins checks a raw catalog body against the embedded schema.
func ValidatePlugins(raw []byte) error {
	return pluginsValidator.Validate(raw)
}
