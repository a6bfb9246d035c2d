package project

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schema.json
var schemaSource string

var projectSchema = jsonschema.MustCompileString("project.schema.json", schemaSource)

// Issue is one problem found in a project file.
type Issue struct {
	Path    string `json:"path"` // JSON pointer style path, e.g. tasks/2/start
	Message string `json:"message"`
}

func (i Issue) String() string {
	if i.Path == "" {
		return i.Message
	}
	return i.Path + ": " + i.Message
}

// SchemaError lists every schema violation of a project file.
type SchemaError struct {
	Issues []Issue
}

func (e *SchemaError) Error() string {
	if len(e.Issues) == 1 {
		return "invalid project: " + e.Issues[0].String()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "invalid project: %d problems", len(e.Issues))
	for _, is := range e.Issues {
		sb.WriteString("\n  ")
		sb.WriteString(is.String())
	}
	return sb.String()
}

func validate(js []byte) error {
	dec := json.NewDecoder(bytes.NewReader(js))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return fmt.Errorf("parse project: %w", err)
	}
	if err := projectSchema.Validate(doc); err != nil {
		ve, ok := err.(*jsonschema.ValidationError)
		if !ok {
			return err
		}
		var issues []Issue
		collectSchemaIssues(&issues, ve)
		return &SchemaError{Issues: issues}
	}
	return nil
}

func collectSchemaIssues(issues *[]Issue, err *jsonschema.ValidationError) {
	if len(err.Causes) == 0 {
		*issues = append(*issues, Issue{
			Path:    strings.TrimPrefix(err.InstanceLocation, "/"),
			Message: err.Message,
		})
		return
	}
	for _, cause := range err.Causes {
		collectSchemaIssues(issues, cause)
	}
}
