package jsonschema

import (
	"bytes"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/google/jsonschema-go/jsonschema"
	validator "github.com/santhosh-tekuri/jsonschema/v6"
)

const resourceURL = "mem://config.schema.json"

// Validate checks a json document against a schema and reports every violation
func Validate(schema *jsonschema.Schema, document []byte) error {
	raw, err := json.Marshal(schema)
	if err != nil {
		return fmt.Errorf("failed to marshal schema: %s", err)
	}

	doc, err := validator.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("failed to read schema: %s", err)
	}

	compiler := validator.NewCompiler()
	if err := compiler.AddResource(resourceURL, doc); err != nil {
		return fmt.Errorf("failed to add schema resource: %s", err)
	}

	compiled, err := compiler.Compile(resourceURL)
	if err != nil {
		return fmt.Errorf("invalid schema: %s", err)
	}

	instance, err := validator.UnmarshalJSON(bytes.NewReader(document))
	if err != nil {
		return fmt.Errorf("document is not valid json: %s", err)
	}

	return compiled.Validate(instance)
}
