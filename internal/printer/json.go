package printer

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/nibzard/tdtxt/internal/view"
)

//go:embed schema/tasks.schema.json
var defaultSchema []byte

const defaultSchemaURL = "https://github.com/nibzard/tdtxt/schema/tasks.schema.json"

// JSON prints an array of records and checks it against a JSON schema
// before anything is written.
type JSON struct {
	// SchemaFile overrides the embedded schema.
	SchemaFile string
}

// Print implements Printer.
func (p *JSON) Print(w io.Writer, v *view.View) error {
	data, err := json.MarshalIndent(Records(v), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal tasks: %w", err)
	}
	if err := Validate(data, p.SchemaFile); err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

// SchemaProblem is one schema violation, located by a dotted path such as
// "[0].priority".
type SchemaProblem struct {
	Path    string
	Message string
}

// SchemaError lists every violation found in a document.
type SchemaError struct {
	Problems []SchemaProblem
}

func (e *SchemaError) Error() string {
	parts := make([]string, 0, len(e.Problems))
	for _, p := range e.Problems {
		if p.Path == "" {
			parts = append(parts, p.Message)
			continue
		}
		parts = append(parts, p.Path+": "+p.Message)
	}
	return "output does not match schema: " + strings.Join(parts, "; ")
}

// Validate checks a JSON document against schemaFile, or against the
// embedded task schema when schemaFile is empty.
func Validate(data []byte, schemaFile string) error {
	schema, err := compileSchema(schemaFile)
	if err != nil {
		return err
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("decode document for validation: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		verr, ok := err.(*jsonschema.ValidationError)
		if !ok {
			return fmt.Errorf("validate: %w", err)
		}
		result := &SchemaError{}
		collectSchemaErrors(result, verr)
		return result
	}
	return nil
}

func compileSchema(schemaFile string) (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true

	if schemaFile == "" {
		if err := compiler.AddResource(defaultSchemaURL, bytes.NewReader(defaultSchema)); err != nil {
			return nil, fmt.Errorf("load embedded schema: %w", err)
		}
		return compiler.Compile(defaultSchemaURL)
	}

	absPath, err := filepath.Abs(schemaFile)
	if err != nil {
		return nil, fmt.Errorf("invalid schema path: %w", err)
	}
	schema, err := compiler.Compile(absPath)
	if err != nil {
		return nil, fmt.Errorf("invalid schema file %s: %w", absPath, err)
	}
	return schema, nil
}

func collectSchemaErrors(result *SchemaError, err *jsonschema.ValidationError) {
	if err == nil {
		return
	}
	if len(err.Causes) == 0 {
		result.Problems = append(result.Problems, SchemaProblem{
			Path:    recordPath(err.InstanceLocation),
			Message: err.Message,
		})
		return
	}
	for _, cause := range err.Causes {
		collectSchemaErrors(result, cause)
	}
}

// recordPath turns an instance location such as "/0/due_date" into
// "[0].due_date".
func recordPath(ptr string) string {
	var b strings.Builder
	for _, part := range strings.Split(strings.TrimPrefix(ptr, "#"), "/") {
		if part == "" {
			continue
		}
		part = strings.NewReplacer("~1", "/", "~0", "~").Replace(part)
		if _, err := strconv.Atoi(part); err == nil {
			fmt.Fprintf(&b, "[%s]", part)
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(part)
	}
	return b.String()
}
