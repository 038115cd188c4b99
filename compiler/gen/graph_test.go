package gen

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/crudgen/compiler/load"
	"github.com/syssam/crudgen/schema/edge"
)

var testTime = time.Date(2024, time.January, 15, 9, 30, 0, 0, time.UTC)

func testConfig(t *testing.T, opts ...Option) *Config {
	t.Helper()
	opts = append([]Option{
		WithRoot(t.TempDir()),
		WithModule("example.com/shop"),
		WithClock(func() time.Time { return testTime }),
	}, opts...)
	c, err := NewConfig(opts...)
	require.NoError(t, err)
	return c
}

func loadGraph(t *testing.T, c *Config, src string) (*Graph, error) {
	t.Helper()
	s, err := load.Parse([]byte(src), "schema.yaml")
	require.NoError(t, err)
	return NewGraph(c, s)
}

func newTestGraph(t *testing.T, src string, opts ...Option) *Graph {
	t.Helper()
	g, err := loadGraph(t, testConfig(t, opts...), src)
	require.NoError(t, err)
	return g
}

func mustType(t *testing.T, g *Graph, name string) *Type {
	t.Helper()
	typ, ok := g.Type(name)
	require.True(t, ok, "type %s", name)
	return typ
}

const blog = `
Book:
  fields:
    title: string
    author_id: foreignId:authors
  relations:
    belongsTo: Author
    hasMany: Chapter
    belongsToMany: Tag
  nested_requests: [chapters, tags]
Author:
  fields:
    name: string
    avatar: image:nullable
  relations:
    hasMany: Book
    hasOne: Profile
  nested_requests: [books, profile]
  with: books.chapters, profile
Chapter:
  fields:
    heading: string
    book_id: foreignId:books
Profile:
  fields:
    bio: text
    author_id: foreignId:authors
Tag:
  fields:
    label: string
`

func TestNewGraph(t *testing.T) {
	g := newTestGraph(t, blog)

	var names []string
	for _, n := range g.Nodes {
		names = append(names, n.Name)
	}
	assert.Equal(t, []string{"Book", "Author", "Chapter", "Profile", "Tag"}, names)
	assert.Empty(t, g.Warnings)

	t.Run("relations", func(t *testing.T) {
		book := mustType(t, g, "Book")
		require.Len(t, book.Relations, 3)
		author, ok := book.Relation("author")
		require.True(t, ok)
		assert.Equal(t, edge.BelongsTo, author.Kind)
		assert.Equal(t, "author_id", author.ForeignKey())
		assert.Equal(t, "AuthorID", author.ForeignKeyField())
		assert.Same(t, mustType(t, g, "Author"), author.Type)

		chapters, ok := book.Relation("chapters")
		require.True(t, ok)
		assert.Equal(t, "book_id", chapters.ForeignKey())
		assert.Equal(t, "[]Chapter", chapters.GoType())

		tags, ok := book.Relation("tags")
		require.True(t, ok)
		assert.Equal(t, "book_tag", tags.JoinTable())
		assert.Equal(t, "book_id", tags.JoinForeignKey())
		assert.Equal(t, "tag_id", tags.JoinReferences())
		assert.Empty(t, tags.ForeignKey())
	})

	t.Run("nested tree", func(t *testing.T) {
		author := mustType(t, g, "Author")
		require.Len(t, author.Nested, 2)
		books := author.Nested[0]
		assert.Equal(t, "books", books.Name)
		require.Len(t, books.Children, 2)
		assert.Equal(t, "chapters", books.Children[0].Name)
		assert.Equal(t, "tags", books.Children[1].Name)
		assert.Equal(t, 2, books.Depth())
		assert.Equal(t, "profile", author.Nested[1].Name)
		assert.Equal(t, 1, author.Nested[1].Depth())

		var payload []string
		for _, f := range books.PayloadFields() {
			payload = append(payload, f.Name)
		}
		assert.Equal(t, []string{"title"}, payload, "back reference and mixin columns are not part of the payload")
	})

	t.Run("eager loading", func(t *testing.T) {
		assert.Equal(t, []string{"books.chapters", "profile"}, mustType(t, g, "Author").With)
	})

	t.Run("migration order", func(t *testing.T) {
		assert.Equal(t, "migrations/20240115093000_create_authors_table.sql", mustType(t, g, "Author").Path(ArtifactMigration))
		assert.Equal(t, "migrations/20240115093001_create_books_table.sql", mustType(t, g, "Book").Path(ArtifactMigration))
		assert.Equal(t, "migrations/20240115093002_create_chapters_table.sql", mustType(t, g, "Chapter").Path(ArtifactMigration))
	})
}

func TestNewGraphNestedCycle(t *testing.T) {
	g := newTestGraph(t, `
Category:
  fields:
    name: string
    category_id: foreignId:categories:nullable
  relations:
    hasMany: Category:children
  nested_requests: [children]
`)
	category := mustType(t, g, "Category")
	require.Len(t, category.Nested, 1)
	assert.Empty(t, category.Nested[0].Children, "recursion stops at an entity already being written")
}

func TestNewGraphWarnings(t *testing.T) {
	g := newTestGraph(t, `
Post:
  fields:
    title: string
    user_id: foreignId:users
  relations:
    belongsTo: User
    hasMany: Comment, Like
  nested_requests: [comments, user, reviews, likes]
  with: [comments, reviews.author]
  colour: red
Comment:
  fields:
    body: text
`)
	assert.ElementsMatch(t, []string{
		`Post: unknown key "colour" ignored (line 11)`,
		`Post: relation "user" targets undeclared entity User`,
		`Post: relation "likes" targets undeclared entity Like`,
		`Post: relation "comments" expects column comments.post_id referencing posts`,
		`Post: nested request "user" is a belongsTo relation and cannot be written inline; skipped`,
		`Post: nested request "reviews" does not match any relation; skipped`,
		`Post: nested request "likes" targets undeclared entity Like; skipped`,
		`Post: eager-load path "reviews.author" does not match a relation; skipped`,
	}, g.Warnings)

	post := mustType(t, g, "Post")
	require.Len(t, post.Nested, 1)
	assert.Equal(t, "comments", post.Nested[0].Name)
	assert.Equal(t, []string{"comments"}, post.With)

	likes, ok := post.Relation("likes")
	require.True(t, ok)
	assert.Nil(t, likes.Type)
	assert.Equal(t, "Like", likes.TargetModel())
	assert.Equal(t, "likes", likes.TargetTable())
}

func TestNewGraphErrors(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		check func(error) bool
	}{
		{
			name:  "implicit id",
			src:   "User:\n  fields:\n    id: integer\n",
			check: IsSchemaError,
		},
		{
			name:  "bad spec",
			src:   "User:\n  fields:\n    name: foreignId\n",
			check: IsSchemaError,
		},
		{
			name:  "shared table",
			src:   "User:\n  fields:\n    name: string\nMember:\n  table: users\n",
			check: IsSchemaError,
		},
		{
			name:  "unknown relation kind",
			src:   "User:\n  relations:\n    ownsMany: Post\n",
			check: IsRelationError,
		},
		{
			name:  "duplicate relation",
			src:   "User:\n  relations:\n    hasMany: Post\n    belongsToMany: Post:posts\n",
			check: IsRelationError,
		},
		{
			name:  "relation collides with column",
			src:   "User:\n  fields:\n    posts: json\n  relations:\n    hasMany: Post\n",
			check: IsRelationError,
		},
		{
			name:  "unknown component",
			src:   "User:\n  generate: [model, views]\n",
			check: IsConfigError,
		},
		{
			name:  "unique on unknown column",
			src:   "User:\n  fields:\n    name: string\n  unique:\n    - [name, email]\n",
			check: IsSchemaError,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadGraph(t, testConfig(t), tt.src)
			require.Error(t, err)
			assert.True(t, tt.check(err), "unexpected error type: %v", err)
		})
	}
}

func TestNewGraphEntities(t *testing.T) {
	g := newTestGraph(t, blog, WithEntities("book", "Tag"))
	var names []string
	for _, n := range g.Selected() {
		names = append(names, n.Name)
	}
	assert.Equal(t, []string{"Book", "Tag"}, names)
	assert.Len(t, g.Nodes, 5, "unselected entities still resolve relations")

	_, err := loadGraph(t, testConfig(t, WithEntities("Review")), blog)
	assert.True(t, IsConfigError(err))
}

func TestNewGraphReusesMigration(t *testing.T) {
	c := testConfig(t)
	require.NoError(t, c.FS.WriteFile("migrations/20230101000000_create_tags_table.sql", []byte("-- old\n"), 0o644))
	require.NoError(t, c.FS.WriteFile("migrations/20230301000000_create_tags_table.sql", []byte("-- newer\n"), 0o644))
	g, err := loadGraph(t, c, blog)
	require.NoError(t, err)
	assert.Equal(t, "migrations/20230301000000_create_tags_table.sql", mustType(t, g, "Tag").Path(ArtifactMigration))
}
