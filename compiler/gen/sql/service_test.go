package sql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService(t *testing.T) {
	g := newGraph(t, shop)
	frags, err := NewDialect(g).Service(typeOf(t, g, "Author"))
	require.NoError(t, err)

	s := frags["service_struct"]
	assert.Contains(t, s, "type AuthorService struct")
	assert.Contains(t, s, "files storage.Store")
	assert.Contains(t, s, "func NewAuthorService(db *gorm.DB, files storage.Store) *AuthorService")

	m := frags["service_methods"]
	tests := []struct {
		name string
		want []string
	}{
		{
			name: "eager loading",
			want: []string{`s.db.WithContext(ctx).Preload("Books")`},
		},
		{
			name: "store",
			want: []string{
				"func (s *AuthorService) Store(ctx context.Context, payload map[string]any) (*models.Author, error)",
				"payload = maps.Clone(payload)",
				`bookPayload := payload["books"]`,
				`delete(payload, "books")`,
				`s.attach(ctx, "authors", payload, "avatar", "", &uploaded, nil)`,
				"s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {",
				"tx.Create(&m)",
				"book.AuthorID = m.ID",
				"tx.Create(&book)",
				`s.attach(ctx, "books", bookValues, "cover", "", &uploaded, nil)`,
				"s.discard(ctx, uploaded)",
			},
		},
		{
			name: "nested levels",
			want: []string{
				`bookChapterPayload := bookValues["chapters"]`,
				"bookChapter.BookID = book.ID",
				"tx.Create(&bookChapter)",
			},
		},
		{
			name: "update",
			want: []string{
				"func (s *AuthorService) Update(ctx context.Context, id uint64, payload map[string]any) (*models.Author, error)",
				`bookPayload, hasBook := payload["books"]`,
				`s.attach(ctx, "authors", payload, "avatar", s.ref(m.Avatar), &uploaded, &stale)`,
				"tx.Save(&m)",
				`tx.Where("author_id = ?", m.ID).First(&book, id)`,
				"bookKeep = append(bookKeep, book.ID)",
				`bookQuery.Where("id NOT IN ?", bookKeep)`,
				"tx.Delete(&bookStale)",
				"stale = append(stale, r.Cover)",
				"s.discard(ctx, stale)",
			},
		},
		{
			name: "belongs to many",
			want: []string{
				"tagIDs, ok := tagPayload.([]any)",
				"tx.Find(&tagList, tagIDs)",
				`tx.Model(&m).Association("Tags").Replace(tagList)`,
			},
		},
		{
			name: "destroy",
			want: []string{
				`s.db.WithContext(ctx).Preload("Books").First(&m, id)`,
				"stale = append(stale, s.ref(m.Avatar))",
				"for _, r1 := range m.Books {",
				"stale = append(stale, r1.Cover)",
				"s.discard(ctx, stale)",
			},
		},
		{
			name: "helpers",
			want: []string{
				"func (s *AuthorService) attach(ctx context.Context, folder string, values map[string]any, key, old string, uploaded, stale *[]string) error",
				"func (s *AuthorService) discard(ctx context.Context, refs []string)",
				"func (*AuthorService) ref(p *string) string",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, w := range tt.want {
				assert.Contains(t, m, w)
			}
		})
	}
}

func TestServiceWithoutAttachments(t *testing.T) {
	g := newGraph(t, shop)
	frags, err := NewDialect(g).Service(typeOf(t, g, "Tag"))
	require.NoError(t, err)
	m := frags["service_methods"]
	assert.NotContains(t, m, "attach")
	assert.NotContains(t, m, "discard")
	assert.NotContains(t, m, "uploaded")
	assert.Contains(t, m, "func (s *TagService) Destroy(ctx context.Context, id uint64) error")
}

func TestServiceHasOne(t *testing.T) {
	g := newGraph(t, `
User:
  fields:
    name: string
  relations:
    hasOne: Profile
  nested_requests: [profile]
Profile:
  fields:
    bio: text
    photo: image:nullable
    user_id: foreignId:users:nullable
`)
	frags, err := NewDialect(g).Service(typeOf(t, g, "User"))
	require.NoError(t, err)
	m := frags["service_methods"]
	for _, w := range []string{
		"if profilePayload != nil {",
		"profile.UserID = &m.ID",
		`tx.Where("user_id = ?", m.ID).First(&profile).Error`,
		"errors.Is(err, gorm.ErrRecordNotFound)",
		"profileFound := err == nil",
		"stale = append(stale, s.ref(profile.Photo))",
		"tx.Delete(&profile)",
		"tx.Save(&profile)",
		`s.attach(ctx, "profiles", profileValues, "photo", s.ref(profile.Photo), &uploaded, &stale)`,
	} {
		assert.Contains(t, m, w)
	}
}

func TestServiceStaleDependents(t *testing.T) {
	g := newGraph(t, library)
	frags, err := NewDialect(g).Service(typeOf(t, g, "Author"))
	require.NoError(t, err)
	m := frags["service_methods"]
	for _, w := range []string{
		// Stale books of an update take their chapters along.
		`bookQuery.Preload("Chapters").Find(&bookStale)`,
		"for _, r := range bookStale {",
		"stale = append(stale, r.Cover)",
		"for _, r1 := range r.Chapters {",
		"stale = append(stale, s.ref(r1.Pdf))",
		// Destroy walks every dependent.
		`s.db.WithContext(ctx).Preload("Books.Chapters").Preload("Profile").First(&m, id)`,
		"for _, r2 := range r1.Chapters {",
		"stale = append(stale, s.ref(r2.Pdf))",
		"if r1 := m.Profile; r1 != nil {",
		"stale = append(stale, s.ref(r1.Photo))",
	} {
		assert.Contains(t, m, w)
	}
}

func TestServiceHasOneDependents(t *testing.T) {
	g := newGraph(t, `
User:
  fields:
    name: string
  relations:
    hasOne: Profile
  nested_requests: [profile]
Profile:
  fields:
    bio: text
    user_id: foreignId:users
  relations:
    hasMany: Photo
Photo:
  fields:
    picture: image
    profile_id: foreignId:profiles
`)
	frags, err := NewDialect(g).Service(typeOf(t, g, "User"))
	require.NoError(t, err)
	m := frags["service_methods"]
	for _, w := range []string{
		`tx.Preload("Photos").First(&profile, profile.ID)`,
		"for _, r1 := range profile.Photos {",
		"stale = append(stale, r1.Picture)",
		`s.db.WithContext(ctx).Preload("Profile.Photos").First(&m, id)`,
		"s.discard(ctx, stale)",
	} {
		assert.Contains(t, m, w)
	}
	assert.NotContains(t, m, "func (*UserService) ref(", "no nullable attachment is read")
}

func TestNestedVar(t *testing.T) {
	g := newGraph(t, `
Order:
  fields:
    number: string
  relations:
    hasMany: Item:items, Payload:payloads
  nested_requests: [items, payloads]
Item:
  fields:
    sku: string
    order_id: foreignId:orders
Payload:
  fields:
    data: json
    order_id: foreignId:orders
`)
	order := typeOf(t, g, "Order")
	require.Len(t, order.Nested, 2)
	assert.Equal(t, "item", nestedVar("", order.Nested[0]))
	assert.Equal(t, "payloadRel", nestedVar("", order.Nested[1]), "reserved names get a suffix")
	assert.Equal(t, "orderItem", nestedVar("order", order.Nested[0]))
	assert.Equal(t, "hasItem", hasVar("item"))

	frags, err := NewDialect(g).Service(order)
	require.NoError(t, err)
	assert.Contains(t, frags["service_methods"], `payloadRelPayload := payload["payloads"]`)
}

func TestPreloads(t *testing.T) {
	g := newGraph(t, `
Author:
  fields:
    name: string
  relations:
    hasMany: Book
  with: [books.publisher]
Book:
  fields:
    title: string
    author_id: foreignId:authors
    publisher_id: foreignId:publishers
  relations:
    belongsTo: Publisher
Publisher:
  fields:
    name: string
`)
	assert.Equal(t, []string{"Books.Publisher"}, preloads(typeOf(t, g, "Author")))
	assert.Empty(t, preloads(typeOf(t, g, "Publisher")))
}
