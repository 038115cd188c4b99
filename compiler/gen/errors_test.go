package gen

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaError(t *testing.T) {
	t.Run("Error message with all fields", func(t *testing.T) {
		cause := errors.New("underlying error")
		err := NewSchemaError("Author", "email", "invalid spec", cause)

		assert.Contains(t, err.Error(), "crudgen: schema error")
		assert.Contains(t, err.Error(), "entity Author")
		assert.Contains(t, err.Error(), "field email")
		assert.Contains(t, err.Error(), "invalid spec")
		assert.Contains(t, err.Error(), "underlying error")
	})

	t.Run("Error message with entity only", func(t *testing.T) {
		err := &SchemaError{Entity: "Author"}
		assert.Contains(t, err.Error(), "entity Author")
		assert.NotContains(t, err.Error(), "field")
	})

	t.Run("Unwrap returns cause", func(t *testing.T) {
		cause := errors.New("root cause")
		err := NewSchemaError("Author", "", "", cause)

		assert.Equal(t, cause, err.Unwrap())
		assert.True(t, errors.Is(err, cause))
		assert.True(t, errors.Is(err, ErrInvalidSchema))
	})
}

func TestConfigError(t *testing.T) {
	t.Run("Error message with value", func(t *testing.T) {
		err := NewConfigError("Dialect", "oracle", "unsupported dialect")

		assert.Contains(t, err.Error(), "crudgen: config error")
		assert.Contains(t, err.Error(), "Dialect")
		assert.Contains(t, err.Error(), "oracle")
		assert.Contains(t, err.Error(), "unsupported dialect")
	})

	t.Run("Error message without value", func(t *testing.T) {
		err := NewConfigError("Module", nil, "cannot be empty")

		assert.Contains(t, err.Error(), "Module")
		assert.NotContains(t, err.Error(), "value:")
	})

	t.Run("Is matches ErrMissingConfig", func(t *testing.T) {
		assert.True(t, errors.Is(NewConfigError("Root", nil, "missing"), ErrMissingConfig))
	})
}

func TestRelationError(t *testing.T) {
	t.Run("Error message with all fields", func(t *testing.T) {
		err := NewRelationError("Author", "Book", "books", "duplicate", errors.New("boom"))

		assert.Contains(t, err.Error(), "crudgen: relation error")
		assert.Contains(t, err.Error(), "relation books")
		assert.Contains(t, err.Error(), "Author -> Book")
		assert.Contains(t, err.Error(), "duplicate")
		assert.Contains(t, err.Error(), "boom")
	})

	t.Run("Error message with from only", func(t *testing.T) {
		err := &RelationError{From: "Author", Message: "test"}
		assert.Contains(t, err.Error(), "from Author")
		assert.NotContains(t, err.Error(), "->")
	})

	t.Run("Is matches ErrInvalidRelation", func(t *testing.T) {
		assert.True(t, errors.Is(NewRelationError("Author", "", "", "", nil), ErrInvalidRelation))
	})
}

func TestGenerationError(t *testing.T) {
	cause := errors.New("format failed")
	err := NewGenerationError("Author", ArtifactService, "internal/services/author_service.go", "cannot format", cause)

	assert.Contains(t, err.Error(), "generation error for service of Author")
	assert.Contains(t, err.Error(), "file: internal/services/author_service.go")
	assert.Contains(t, err.Error(), "cannot format: format failed")
	assert.True(t, errors.Is(err, ErrGenerationFailed))
	assert.True(t, errors.Is(err, cause))
}

func TestStubError(t *testing.T) {
	err := NewStubError("model.stub", nil)
	assert.Equal(t, `crudgen: stub "model.stub" not found`, err.Error())
	assert.True(t, errors.Is(err, ErrMissingStub))

	wrapped := NewStubError("model.stub", errors.New("permission denied"))
	assert.Contains(t, wrapped.Error(), "permission denied")
}

func TestErrorTypeChecking(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		isSchema bool
		isConfig bool
		isRel    bool
		isGen    bool
		isStub   bool
	}{
		{name: "SchemaError", err: NewSchemaError("Author", "", "", nil), isSchema: true},
		{name: "ConfigError", err: NewConfigError("Module", nil, ""), isConfig: true},
		{name: "RelationError", err: NewRelationError("Author", "Book", "books", "", nil), isRel: true},
		{name: "GenerationError", err: NewGenerationError("Author", ArtifactModel, "", "", nil), isGen: true},
		{name: "StubError", err: NewStubError("x.stub", nil), isStub: true},
		{name: "Other error", err: errors.New("other")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.isSchema, IsSchemaError(tt.err))
			assert.Equal(t, tt.isConfig, IsConfigError(tt.err))
			assert.Equal(t, tt.isRel, IsRelationError(tt.err))
			assert.Equal(t, tt.isGen, IsGenerationError(tt.err))
			assert.Equal(t, tt.isStub, IsStubError(tt.err))
		})
	}
}

func TestErrorsAs(t *testing.T) {
	err := NewRelationError("Author", "Book", "books", "invalid", nil)
	var relErr *RelationError
	require.True(t, errors.As(err, &relErr))
	assert.Equal(t, "Author", relErr.From)
	assert.Equal(t, "Book", relErr.To)
	assert.Equal(t, "books", relErr.Relation)
}
