package gen

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common failure cases.
var (
	// ErrInvalidSchema indicates an entity definition error.
	ErrInvalidSchema = errors.New("crudgen: invalid schema")
	// ErrMissingConfig indicates a configuration error.
	ErrMissingConfig = errors.New("crudgen: invalid configuration")
	// ErrInvalidRelation indicates a relation definition error.
	ErrInvalidRelation = errors.New("crudgen: invalid relation")
	// ErrGenerationFailed indicates an artifact could not be synthesized.
	ErrGenerationFailed = errors.New("crudgen: generation failed")
	// ErrMissingStub indicates a stub template could not be found.
	ErrMissingStub = errors.New("crudgen: missing stub")
)

// SchemaError represents an entity definition error.
type SchemaError struct {
	Entity  string
	Field   string // Field name (if applicable)
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *SchemaError) Error() string {
	var b strings.Builder
	b.WriteString("crudgen: schema error")
	if e.Entity != "" {
		b.WriteString(" on entity ")
		b.WriteString(e.Entity)
	}
	if e.Field != "" {
		b.WriteString(" field ")
		b.WriteString(e.Field)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *SchemaError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches the sentinel error for SchemaError.
func (e *SchemaError) Is(target error) bool {
	return target == ErrInvalidSchema
}

// NewSchemaError creates a new SchemaError.
func NewSchemaError(entity, fieldName, message string, cause error) *SchemaError {
	return &SchemaError{
		Entity:  entity,
		Field:   fieldName,
		Message: message,
		Cause:   cause,
	}
}

// ConfigError represents a configuration error.
type ConfigError struct {
	Option  string
	Value   any
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("crudgen: config error for %q (value: %v): %s", e.Option, e.Value, e.Message)
	}
	return fmt.Sprintf("crudgen: config error for %q: %s", e.Option, e.Message)
}

// Is reports whether the target matches the sentinel error for ConfigError.
func (e *ConfigError) Is(target error) bool {
	return target == ErrMissingConfig
}

// NewConfigError creates a new ConfigError.
func NewConfigError(option string, value any, message string) *ConfigError {
	return &ConfigError{
		Option:  option,
		Value:   value,
		Message: message,
	}
}

// RelationError represents a relation declaration error.
type RelationError struct {
	From     string
	To       string
	Relation string
	Message  string
	Cause    error
}

// Error implements the error interface.
func (e *RelationError) Error() string {
	var b strings.Builder
	b.WriteString("crudgen: relation error")
	if e.Relation != "" {
		b.WriteString(" on relation ")
		b.WriteString(e.Relation)
	}
	if e.From != "" && e.To != "" {
		fmt.Fprintf(&b, " (%s -> %s)", e.From, e.To)
	} else if e.From != "" {
		b.WriteString(" from ")
		b.WriteString(e.From)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *RelationError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches the sentinel error for RelationError.
func (e *RelationError) Is(target error) bool {
	return target == ErrInvalidRelation
}

// NewRelationError creates a new RelationError.
func NewRelationError(from, to, relation, message string, cause error) *RelationError {
	return &RelationError{
		From:     from,
		To:       to,
		Relation: relation,
		Message:  message,
		Cause:    cause,
	}
}

// GenerationError represents a failure to synthesize one artifact.
type GenerationError struct {
	Entity   string
	Artifact Artifact
	File     string
	Message  string
	Cause    error
}

// Error implements the error interface.
func (e *GenerationError) Error() string {
	var b strings.Builder
	b.WriteString("crudgen: generation error")
	if e.Artifact != "" {
		b.WriteString(" for ")
		b.WriteString(string(e.Artifact))
	}
	if e.Entity != "" {
		b.WriteString(" of ")
		b.WriteString(e.Entity)
	}
	if e.File != "" {
		b.WriteString(" (file: ")
		b.WriteString(e.File)
		b.WriteString(")")
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *GenerationError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches the sentinel error for GenerationError.
func (e *GenerationError) Is(target error) bool {
	return target == ErrGenerationFailed
}

// NewGenerationError creates a new GenerationError.
func NewGenerationError(entity string, artifact Artifact, file, message string, cause error) *GenerationError {
	return &GenerationError{
		Entity:   entity,
		Artifact: artifact,
		File:     file,
		Message:  message,
		Cause:    cause,
	}
}

// StubError reports a stub template that could not be loaded.
type StubError struct {
	Stub  string
	Cause error
}

// Error implements the error interface.
func (e *StubError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("crudgen: stub %q: %v", e.Stub, e.Cause)
	}
	return fmt.Sprintf("crudgen: stub %q not found", e.Stub)
}

// Unwrap returns the underlying error.
func (e *StubError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches the sentinel error for StubError.
func (e *StubError) Is(target error) bool {
	return target == ErrMissingStub
}

// NewStubError creates a new StubError.
func NewStubError(stub string, cause error) *StubError {
	return &StubError{Stub: stub, Cause: cause}
}

// IsSchemaError reports whether the error is a SchemaError.
func IsSchemaError(err error) bool {
	var schemaErr *SchemaError
	return errors.As(err, &schemaErr)
}

// IsConfigError reports whether the error is a ConfigError.
func IsConfigError(err error) bool {
	var configErr *ConfigError
	return errors.As(err, &configErr)
}

// IsRelationError reports whether the error is a RelationError.
func IsRelationError(err error) bool {
	var relErr *RelationError
	return errors.As(err, &relErr)
}

// IsGenerationError reports whether the error is a GenerationError.
func IsGenerationError(err error) bool {
	var genErr *GenerationError
	return errors.As(err, &genErr)
}

// IsStubError reports whether the error is a StubError.
func IsStubError(err error) bool {
	var stubErr *StubError
	return errors.As(err, &stubErr)
}
