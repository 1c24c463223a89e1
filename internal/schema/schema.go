// Package schema validates feed payloads against embedded JSON Schema documents.
package schema

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Validator compiles its schema on first use and validates raw JSON bodies.
type Validator struct {
	url string
	doc []byte

	once   sync.Once
	schema *jsonschema.Schema
	err    error
}

// New returns a Validator for the schema document doc, registered under url.
func New(url string, doc []byte) *Validator {
	return &Validator{url: url, doc: doc}
}

// Validate reports whether raw conforms to the schema.
// The signature matches fetcher.Config.Validate.
func (v *Validator) Validate(raw []byte) error {
	v.once.Do(func() {
		v.schema, v.err = Compile(v.url, v.doc)
	})
	if v.err != nil {
		return v.err
	}

	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("parsing payload: %w", err)
	}
	if err = v.schema.Validate(inst); err != nil {
		return fmt.Errorf("schema validation: %w", err)
	}
	return nil
}

// Compile compiles a JSON Schema document registered under url.
func Compile(url string, doc []byte) (*jsonschema.Schema, error) {
	parsed, err := jsonschema.UnmarshalJSON(bytes.NewReader(doc))
	if err != nil {
		return nil, fmt.Errorf("parsing schema %s: %w", url, err)
	}
	c := jsonschema.NewCompiler()
	if err = c.AddResource(url, parsed); err != nil {
		return nil, fmt.Errorf("adding schema %s: %w", url, err)
	}
	sch, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compiling schema %s: %w", url, err)
	}
	return sch, nil
}
