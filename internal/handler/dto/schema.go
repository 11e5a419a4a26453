package dto

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*.json
var schemaFS embed.FS

const schemaBaseURL = "https://todomanager.local/schemas/"

// Schema names accepted by Decode.
const (
	SchemaTaskPatch = "task.json"
	SchemaTaskFull  = "task_full.json"
	SchemaRegister  = "register.json"
)

// ErrMalformedJSON is returned when the body is not a JSON document.
var ErrMalformedJSON = errors.New("malformed JSON body")

// ValidationError lists schema violations keyed by field name. Violations
// of the whole body are keyed "body".
type ValidationError struct {
	Fields map[string][]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msgs := range e.Fields {
		parts = append(parts, field+": "+strings.Join(msgs, "; "))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

var schemas = mustCompileSchemas()

func mustCompileSchemas() map[string]*jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	compiler.AssertFormat = true

	names, err := fs.Glob(schemaFS, "schemas/*.json")
	if err != nil {
		panic(err)
	}
	for _, name := range names {
		data, err := schemaFS.ReadFile(name)
		if err != nil {
			panic(err)
		}
		if err := compiler.AddResource(schemaBaseURL+path.Base(name), bytes.NewReader(data)); err != nil {
			panic(fmt.Sprintf("schema %s: %v", name, err))
		}
	}

	compiled := make(map[string]*jsonschema.Schema, len(names))
	for _, name := range names {
		base := path.Base(name)
		compiled[base] = compiler.MustCompile(schemaBaseURL + base)
	}
	return compiled
}

// Decode validates body against the named schema and unmarshals it into dst.
func Decode(body []byte, schema string, dst any) error {
	s, ok := schemas[schema]
	if !ok {
		return fmt.Errorf("unknown schema %q", schema)
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return ErrMalformedJSON
	}

	if err := s.Validate(doc); err != nil {
		var ve *jsonschema.ValidationError
		if !errors.As(err, &ve) {
			return err
		}
		result := &ValidationError{Fields: make(map[string][]string)}
		collectSchemaErrors(result, ve)
		return result
	}

	if err := json.Unmarshal(body, dst); err != nil {
		return ErrMalformedJSON
	}
	return nil
}

func collectSchemaErrors(result *ValidationError, err *jsonschema.ValidationError) {
	if len(err.Causes) == 0 {
		field := strings.TrimPrefix(strings.TrimPrefix(err.InstanceLocation, "#"), "/")
		if field == "" {
			field = "body"
		}
		result.Fields[field] = append(result.Fields[field], err.Message)
		return
	}
	for _, cause := range err.Causes {
		collectSchemaErrors(result, cause)
	}
}
