// Package schema validates upstream JSON documents against embedded JSON
// schemas before they are decoded into domain types.
package schema

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ErrInvalidDocument is returned when a document does not satisfy its schema.
var ErrInvalidDocument = errors.New("document does not match schema")

var printer = message.NewPrinter(language.English)

// Issue is a single schema violation.
type Issue struct {
	Path    string `json:"path"`
	Message string `json:"message"`
	Keyword string `json:"keyword"`
}

// ValidationError carries every leaf violation found in a document.
type ValidationError struct {
	Schema string
	Issues []Issue
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Issues))
	for _, is := range e.Issues {
		path := is.Path
		if path == "" {
			path = "/"
		}
		msgs = append(msgs, path+": "+is.Message)
	}
	return fmt.Sprintf("%s: %s", e.Schema, strings.Join(msgs, "; "))
}

// Unwrap lets callers match ErrInvalidDocument.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidDocument
}

// Validator compiles a schema lazily, once.
type Validator struct {
	name   string
	source []byte

	once     sync.Once
	compiled *jsonschema.Schema
	err      error
}

// New returns a Validator for the schema document in source.
func New(name string, source []byte) *Validator {
	return &Validator{name: name, source: source}
}

func (v *Validator) schema() (*jsonschema.Schema, error) {
	v.once.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(v.source))
		if err != nil {
			v.err = fmt.Errorf("unmarshaling schema %s: %w", v.name, err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(v.name, doc); err != nil {
			v.err = fmt.Errorf("adding schema resource %s: %w", v.name, err)
			return
		}
		v.compiled, v.err = c.Compile(v.name)
		if v.err != nil {
			v.err = fmt.Errorf("compiling schema %s: %w", v.name, v.err)
		}
	})
	return v.compiled, v.err
}

// Validate checks data against the schema. A malformed document or a schema
// violation returns an error matching ErrInvalidDocument.
func (v *Validator) Validate(data []byte) error {
	s, err := v.schema()
	if err != nil {
		return err
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidDocument, v.name, err)
	}
	err = s.Validate(inst)
	if err == nil {
		return nil
	}
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return fmt.Errorf("validating %s: %w", v.name, err)
	}
	return &ValidationError{Schema: v.name, Issues: collect(ve, nil)}
}

func collect(ve *jsonschema.ValidationError, issues []Issue) []Issue {
	if len(ve.Causes) == 0 {
		path := ""
		if len(ve.InstanceLocation) > 0 {
			path = "/" + strings.Join(ve.InstanceLocation, "/")
		}
		is := Issue{Path: path, Message: ve.Error()}
		if ve.ErrorKind != nil {
			if kw := ve.ErrorKind.KeywordPath(); len(kw) > 0 {
				is.Keyword = kw[len(kw)-1]
			}
			is.Message = ve.ErrorKind.LocalizedString(printer)
		}
		return append(issues, is)
	}
	for _, cause := range ve.Causes {
		issues = collect(cause, issues)
	}
	return issues
}
