package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/crudgen"
)

const shopSchema = `
Author:
  fields:
    name: string
    email: email:unique
  relations:
    hasMany: Book
  nested_requests: [books]
Book:
  fields:
    title: string
    author_id: foreignId:authors
  relations:
    belongsTo: Author
`

// project returns a project root holding the shop schema.
func project(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultSchema), []byte(shopSchema), 0o644))
	return dir
}

// execute runs the command tree with args and returns its standard output.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := NewRootCmd(strings.NewReader(stdin), &out, &errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, "crudgen "+crudgen.Version+"\n", out)
}

func TestGenerateCommand(t *testing.T) {
	dir := project(t)
	args := []string{"--root", dir, "generate", "--dialect", "sqlite", "--module", "example.com/shop"}

	out, err := execute(t, "", args...)
	require.NoError(t, err)
	assert.Contains(t, out, "created     model of Author at internal/models/author.go")
	assert.Contains(t, out, "Done: ")
	assert.NotContains(t, out, "backed up", "backup events are hidden without --verbose")
	for _, p := range []string{
		"internal/models/author.go",
		"internal/models/book.go",
		"internal/controllers/book_controller.go",
		"internal/routes/routes.go",
	} {
		assert.FileExists(t, filepath.Join(dir, p))
	}

	t.Run("existing files are skipped", func(t *testing.T) {
		out, err := execute(t, "", args...)
		require.NoError(t, err)
		assert.Contains(t, out, "skipped     model of Author at internal/models/author.go")
		assert.NotContains(t, out, "created")
	})

	t.Run("force declined", func(t *testing.T) {
		_, err := execute(t, "n\n", append(args, "--force")...)
		assert.Error(t, err)
	})

	t.Run("force and interactive", func(t *testing.T) {
		_, err := execute(t, "", append(args, "--force", "--interactive")...)
		assert.Error(t, err)
	})
}

func TestGenerateDryRun(t *testing.T) {
	dir := project(t)
	out, err := execute(t, "", "--root", dir, "generate", "--dry-run", "--module", "example.com/shop", "-e", "Book")
	require.NoError(t, err)
	assert.Contains(t, out, "create      internal/models/book.go")
	assert.NotContains(t, out, "internal/models/author.go")
	assert.Contains(t, out, "nothing written")
	assert.NoDirExists(t, filepath.Join(dir, "internal"))
}

func TestGenerateSettingsFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "api"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "api", "entities.yaml"), []byte(shopSchema), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFile), []byte(`
schema: api/entities.yaml
module: example.com/shop
dialect: sqlite
paths:
  controllers: internal/http/handlers
`), 0o644))

	_, err := execute(t, "", "--root", dir, "generate")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "internal/http/handlers/author_controller.go"))
	assert.NoFileExists(t, filepath.Join(dir, "internal/controllers/author_controller.go"))
}

func TestGenerateMissingSchema(t *testing.T) {
	_, err := execute(t, "", "--root", t.TempDir(), "generate", "--module", "example.com/shop")
	assert.True(t, crudgen.IsInputError(err))
}

func TestRollbackCommand(t *testing.T) {
	dir := project(t)
	out, err := execute(t, "", "--root", dir, "rollback", "--list")
	require.NoError(t, err)
	assert.Contains(t, out, "No backups in")

	_, err = execute(t, "", "--root", dir, "rollback")
	assert.Error(t, err)

	_, err = execute(t, "", "--root", dir, "generate", "--dialect", "sqlite", "--module", "example.com/shop")
	require.NoError(t, err)
	model := filepath.Join(dir, "internal/models/author.go")
	require.FileExists(t, model)

	out, err = execute(t, "", "--root", dir, "rollback", "--list")
	require.NoError(t, err)
	assert.Contains(t, out, "ID")
	assert.Contains(t, out, "Author, Book")

	out, err = execute(t, "", "--root", dir, "rollback")
	require.NoError(t, err)
	assert.Contains(t, out, "Rolled back ")
	assert.Contains(t, out, "0 restored")
	assert.NoFileExists(t, model)

	t.Run("list and cleanup", func(t *testing.T) {
		_, err := execute(t, "", "--root", dir, "rollback", "--list", "--cleanup", "1")
		assert.Error(t, err)
	})
	t.Run("cleanup", func(t *testing.T) {
		out, err := execute(t, "", "--root", dir, "rollback", "--cleanup", "0")
		require.NoError(t, err)
		assert.Contains(t, out, "Removed 1 backups")
	})
}

func TestExampleProject(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{DefaultSchema, ConfigFile} {
		data, err := os.ReadFile(filepath.Join("..", "..", "examples", "shop", name))
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0o644))
	}

	out, err := execute(t, "", "--root", dir, "generate", "--dialect", "sqlite", "--verify")
	require.NoError(t, err, out)
	for _, p := range []string{
		"internal/models/order_item.go",
		"internal/services/customer_service.go",
		"internal/http/handlers/product_controller.go",
		"internal/resources/tag_collection.go",
		"docs/examples/order.json",
		"migrations/atlas.sum",
	} {
		assert.FileExists(t, filepath.Join(dir, p))
	}
	assert.NoFileExists(t, filepath.Join(dir, "internal/http/handlers/order_item_controller.go"))
	assert.NoFileExists(t, filepath.Join(dir, "internal/services/tag_service.go"))

	routes, err := os.ReadFile(filepath.Join(dir, "internal/routes/routes.go"))
	require.NoError(t, err)
	assert.Contains(t, string(routes), `r.Route("/products", handlers.NewProductController(db, files).Routes)`)
}

func TestWatch(t *testing.T) {
	dir := project(t)
	var out bytes.Buffer
	a := &app{
		in:   strings.NewReader(""),
		out:  &out,
		err:  io.Discard,
		env:  func(string) (string, bool) { return "", false },
		root: dir,
	}
	s := &Settings{Module: "example.com/shop", Dialect: "sqlite"}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- a.watch(ctx, s, generateFlags{yes: true}) }()

	exists := func(p string) func() bool {
		return func() bool {
			_, err := os.Stat(filepath.Join(dir, p))
			return err == nil
		}
	}
	require.Eventually(t, exists("internal/models/author.go"), 10*time.Second, 20*time.Millisecond)
	// Let the first run finish before the schema changes.
	time.Sleep(2 * debounce)

	schema := shopSchema + "Tag:\n  fields:\n    label: string\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultSchema), []byte(schema), 0o644))
	require.Eventually(t, exists("internal/models/tag.go"), 10*time.Second, 20*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
	assert.Contains(t, out.String(), "Watching "+filepath.Join(dir, DefaultSchema))
}
