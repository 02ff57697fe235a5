package model

import (
	"embed"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

// Schema names.
const (
	SchemaUpload = "upload"
	SchemaChat   = "chat"
	SchemaStart  = "start"
	SchemaApply  = "apply"
)

//go:embed schemas/*.schema.json
var schemaFS embed.FS

var (
	schemasOnce sync.Once
	schemas     map[string]*gojsonschema.Schema
	schemasErr  error
)

func loadSchemas() (map[string]*gojsonschema.Schema, error) {
	schemasOnce.Do(func() {
		schemas = map[string]*gojsonschema.Schema{}
		for _, name := range []string{SchemaUpload, SchemaChat, SchemaStart, SchemaApply} {
			b, err := schemaFS.ReadFile("schemas/" + name + ".schema.json")
			if err != nil {
				schemasErr = err
				return
			}
			s, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(b))
			if err != nil {
				schemasErr = fmt.Errorf("compile %s schema: %w", name, err)
				return
			}
			schemas[name] = s
		}
	})
	return schemas, schemasErr
}

// ValidationError lists every schema violation of one document.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "schema validation failed: " + strings.Join(e.Problems, "; ")
}

// ValidateJSON validates a raw JSON body against the named schema.
func ValidateJSON(schema string, body []byte) error {
	return validate(schema, gojsonschema.NewBytesLoader(body))
}

// ValidateMap validates a decoded document against the named schema.
func ValidateMap(schema string, m map[string]interface{}) error {
	return validate(schema, gojsonschema.NewGoLoader(m))
}

func validate(schema string, doc gojsonschema.JSONLoader) error {
	all, err := loadSchemas()
	if err != nil {
		return err
	}
	s, ok := all[schema]
	if !ok {
		return fmt.Errorf("unknown schema %q", schema)
	}
	res, err := s.Validate(doc)
	if err != nil {
		return &ValidationError{Problems: []string{err.Error()}}
	}
	if res.Valid() {
		return nil
	}
	problems := make([]string, 0, len(res.Errors()))
	for _, e := range res.Errors() {
		problems = append(problems, e.String())
	}
	return &ValidationError{Problems: problems}
}
