package gen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/crudgen"
	"github.com/syssam/crudgen/schema/field"
)

func TestTypeNames(t *testing.T) {
	g := newTestGraph(t, `
BlogPost:
  fields:
    title: string
Category:
  table: taxonomy
`)
	tests := []struct {
		name string
		got  func(*Type) string
		post string
		cat  string
	}{
		{"label", (*Type).Label, "blog_post", "category"},
		{"plural", (*Type).Plural, "BlogPosts", "Categories"},
		{"camel", (*Type).Camel, "blogPost", "category"},
		{"title", (*Type).Title, "Blog Post", "Category"},
		{"table", (*Type).Table, "blog_posts", "taxonomy"},
		{"route", (*Type).RoutePath, "/blog-posts", "/categories"},
		{"upload folder", (*Type).UploadFolder, "blog_posts", "taxonomy"},
		{"service", (*Type).ServiceName, "BlogPostService", "CategoryService"},
		{"controller", (*Type).ControllerName, "BlogPostController", "CategoryController"},
		{"resource", (*Type).ResourceName, "BlogPostResource", "CategoryResource"},
		{"collection", (*Type).CollectionName, "BlogPostCollection", "CategoryCollection"},
		{"store rules", (*Type).StoreRulesName, "StoreBlogPostRules", "StoreCategoryRules"},
		{"update rules", (*Type).UpdateRulesName, "UpdateBlogPostRules", "UpdateCategoryRules"},
		{"seeder", (*Type).SeederName, "SeedBlogPosts", "SeedCategories"},
	}
	post, category := mustType(t, g, "BlogPost"), mustType(t, g, "Category")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.post, tt.got(post))
			assert.Equal(t, tt.cat, tt.got(category))
		})
	}
}

func TestTypePaths(t *testing.T) {
	g := newTestGraph(t, blog, WithPath(ArtifactController, "web/handlers"))
	book := mustType(t, g, "Book")

	tests := []struct {
		kind Artifact
		path string
		pkg  string
	}{
		{ArtifactModel, "internal/models/book.go", "models"},
		{ArtifactRequest, "internal/requests/book_request.go", "requests"},
		{ArtifactResource, "internal/resources/book_resource.go", "resources"},
		{ArtifactCollection, "internal/resources/book_collection.go", "resources"},
		{ArtifactService, "internal/services/book_service.go", "services"},
		{ArtifactController, "web/handlers/book_controller.go", "handlers"},
		{ArtifactSeeder, "internal/seeders/book_seeder.go", "seeders"},
		{ArtifactExample, "docs/examples/book.json", "examples"},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			assert.Equal(t, tt.path, book.Path(tt.kind))
			assert.Equal(t, tt.pkg, book.Package(tt.kind))
		})
	}
	assert.Equal(t, "migrations/*_create_books_table.sql", book.MigrationGlob())
}

func TestTypeFields(t *testing.T) {
	g := newTestGraph(t, `
Product:
  fields:
    name: string:unique
    price: decimal:default(0)
    manual: file:nullable
    vendor_id: foreignId:vendors
Log:
  timestamps: false
  fields:
    line: text
`)
	product := mustType(t, g, "Product")

	var names []string
	for _, f := range product.Fields {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"name", "price", "manual", "vendor_id", "created_at", "updated_at"}, names)
	assert.Len(t, product.Declared(), 4)

	created, ok := product.Field("created_at")
	require.True(t, ok)
	assert.True(t, created.Mixin)
	assert.NotEmpty(t, created.Tag)

	name, _ := product.Field("name")
	assert.True(t, name.Unique())
	assert.Equal(t, "Name", name.StructField())
	assert.Same(t, product, name.Owner())

	price, _ := product.Field("price")
	def, ok := price.Default()
	assert.True(t, ok)
	assert.Equal(t, "0", def)
	assert.Equal(t, field.TypeDecimal, price.Type())

	manual, _ := product.Field("manual")
	assert.True(t, manual.Nullable())
	assert.True(t, manual.IsAttachment())
	assert.True(t, product.HasAttachments())
	assert.Equal(t, []*Field{manual}, product.Attachments())

	vendor, _ := product.Field("vendor_id")
	assert.True(t, vendor.IsForeignKey())
	assert.Equal(t, "vendors", vendor.Ref())
	assert.Equal(t, "VendorID", vendor.StructField())
	assert.Equal(t, "Vendor Id", vendor.Title())

	log := mustType(t, g, "Log")
	assert.Len(t, log.Fields, 1, "timestamps can be turned off")
	assert.False(t, log.HasAttachments())
}

func TestTypeArtifacts(t *testing.T) {
	src := `
All:
  fields:
    name: string
Only:
  generate: [models, migration]
Except:
  generate_except: controllers, examples
None:
  generate: false
`
	tests := []struct {
		entity string
		opts   []Option
		want   []Artifact
	}{
		{
			entity: "All",
			want:   []Artifact{ArtifactMigration, ArtifactModel, ArtifactRequest, ArtifactResource, ArtifactCollection, ArtifactService, ArtifactController, ArtifactSeeder, ArtifactExample},
		},
		{
			entity: "All",
			opts:   []Option{WithSkipAuxiliary(true)},
			want:   []Artifact{ArtifactMigration, ArtifactModel, ArtifactRequest, ArtifactResource, ArtifactCollection, ArtifactService, ArtifactController, ArtifactSeeder},
		},
		{
			entity: "Only",
			want:   []Artifact{ArtifactMigration, ArtifactModel},
		},
		{
			entity: "Except",
			want:   []Artifact{ArtifactMigration, ArtifactModel, ArtifactRequest, ArtifactResource, ArtifactCollection, ArtifactService, ArtifactSeeder},
		},
		{
			entity: "None",
		},
	}
	for _, tt := range tests {
		name := tt.entity
		if len(tt.opts) > 0 {
			name += " without auxiliary"
		}
		t.Run(name, func(t *testing.T) {
			typ := mustType(t, newTestGraph(t, src, tt.opts...), tt.entity)
			var got []Artifact
			for _, s := range Artifacts {
				if typ.Enabled(s.Kind) {
					got = append(got, s.Kind)
				}
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTypeUnique(t *testing.T) {
	g := newTestGraph(t, `
Enrollment:
  fields:
    student_id: foreignId:students
    course_id: foreignId:courses
  unique:
    - [student_id, course_id]
`)
	e := mustType(t, g, "Enrollment")
	require.Len(t, e.Indexes, 1)
	assert.Equal(t, []string{"student_id", "course_id"}, e.Indexes[0].Fields)
	assert.True(t, e.Indexes[0].Unique)
}

func TestTypePlaceholders(t *testing.T) {
	g := newTestGraph(t, blog, WithDialect("mysql"))
	p := mustType(t, g, "Author").Placeholders()

	want := map[string]string{
		"module":            "example.com/shop",
		"entity":            "Author",
		"entity_camel":      "author",
		"entity_plural":     "Authors",
		"entity_snake":      "author",
		"entity_title":      "Author",
		"table":             "authors",
		"route":             "/authors",
		"service":           "AuthorService",
		"store_rules":       "StoreAuthorRules",
		"seeder":            "SeedAuthors",
		"dialect":           "mysql",
		"generator_version": crudgen.Version,
		"model_pkg":         "models",
		"model_import":      "example.com/shop/internal/models",
		"controller_import": "example.com/shop/internal/controllers",
		"migration_pkg":     "migrations",
	}
	for k, v := range want {
		assert.Equal(t, v, p[k], k)
	}
	assert.NotContains(t, p, "example_pkg", "artifacts without a stub have no package placeholders")
}
