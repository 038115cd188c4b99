package sql

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/syssam/crudgen/compiler/gen"
)

func TestStoreRules(t *testing.T) {
	g := newGraph(t, shop)
	author := typeOf(t, g, "Author")

	tests := []struct {
		name  string
		depth int
		want  []Rule
	}{
		{
			name:  "top level only",
			depth: 0,
			want: []Rule{
				{"name", "required|string"},
				{"email", "required|string|email|unique:authors,email"},
				{"avatar", "nullable|image"},
			},
		},
		{
			name:  "one level",
			depth: 1,
			want: []Rule{
				{"name", "required|string"},
				{"email", "required|string|email|unique:authors,email"},
				{"avatar", "nullable|image"},
				{"books", "nullable|array"},
				{"books.*", "required|array"},
				{"books.*.title", "required|string"},
				{"books.*.cover", "required|image"},
				{"tags", "nullable|array"},
				{"tags.*", "integer|exists:tags,id"},
			},
		},
		{
			name:  "two levels",
			depth: 2,
			want: []Rule{
				{"name", "required|string"},
				{"email", "required|string|email|unique:authors,email"},
				{"avatar", "nullable|image"},
				{"books", "nullable|array"},
				{"books.*", "required|array"},
				{"books.*.title", "required|string"},
				{"books.*.cover", "required|image"},
				{"books.*.chapters", "nullable|array"},
				{"books.*.chapters.*", "required|array"},
				{"books.*.chapters.*.heading", "required|string"},
				{"tags", "nullable|array"},
				{"tags.*", "integer|exists:tags,id"},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StoreRules(author, tt.depth))
		})
	}
}

func TestUpdateRules(t *testing.T) {
	g := newGraph(t, shop)
	rules := UpdateRules(typeOf(t, g, "Author"), 2)
	assert.Equal(t, []Rule{
		{"name", "sometimes|required|string"},
		{"email", "sometimes|required|string|email|unique:authors,email,{id}"},
		{"avatar", "sometimes|nullable|image"},
		{"books", "nullable|array"},
		{"books.*", "required|array"},
		{"books.*.id", "sometimes|integer|exists:books,id"},
		{"books.*.title", "required_without:books.*.id|string"},
		{"books.*.cover", "required_without:books.*.id|image"},
		{"books.*.chapters", "nullable|array"},
		{"books.*.chapters.*", "required|array"},
		{"books.*.chapters.*.id", "sometimes|integer|exists:chapters,id"},
		{"books.*.chapters.*.heading", "required_without:books.*.chapters.*.id|string"},
		{"tags", "nullable|array"},
		{"tags.*", "integer|exists:tags,id"},
	}, rules)
}

func TestUpdateRulesUnique(t *testing.T) {
	g := newGraph(t, `
User:
  fields:
    email: email:unique
  relations:
    hasOne: Profile
    hasMany: Device
  nested_requests: [profile, devices]
Profile:
  fields:
    handle: string:unique
    bio: text:nullable
    user_id: foreignId:users
Device:
  fields:
    serial: string:unique
    user_id: foreignId:users
  relations:
    hasOne: Key
  nested_requests: [key]
Key:
  fields:
    fingerprint: string:unique
    device_id: foreignId:devices
`)
	got := make(map[string]string)
	for _, r := range UpdateRules(typeOf(t, g, "User"), 2) {
		got[r.Path] = r.Expr
	}
	tests := map[string]string{
		"email":                     "sometimes|required|string|email|unique:users,email,{id}",
		"profile.handle":            "sometimes|required|string|unique:profiles,handle,{id},user_id",
		"profile.bio":               "sometimes|nullable|string",
		"devices.*.serial":          "required_without:devices.*.id|string|unique:devices,serial,{devices.*.id}",
		"devices.*.key.fingerprint": "sometimes|required|string|unique:keys,fingerprint,{devices.*.id},device_id",
	}
	for path, want := range tests {
		assert.Equal(t, want, got[path], path)
	}

	store := make(map[string]string)
	for _, r := range StoreRules(typeOf(t, g, "User"), 2) {
		store[r.Path] = r.Expr
	}
	assert.Equal(t, "required|string|unique:profiles,handle", store["profile.handle"])
	assert.Equal(t, "required|string|unique:keys,fingerprint", store["devices.*.key.fingerprint"])
}

func TestFieldRules(t *testing.T) {
	g := newGraph(t, `
Product:
  fields:
    sku: uuid:unique
    price: decimal
    stock: integer:default(0)
    active: boolean
    released_on: date:nullable
    specs: json:nullable
    manual: file:nullable
    category_id: foreignId:categories
    notes: text:nullable
  relations:
    hasOne: Inventory
  nested_requests: [inventory]
Inventory:
  fields:
    quantity: integer
    product_id: foreignId:products
`)
	rules := StoreRules(typeOf(t, g, "Product"), 1)
	want := map[string]string{
		"sku":                "required|string|unique:products,sku",
		"price":              "required|numeric",
		"stock":              "required|integer",
		"active":             "required|boolean",
		"released_on":        "nullable|date",
		"specs":              "nullable|array",
		"manual":             "nullable|file",
		"category_id":        "required|integer|exists:categories,id",
		"notes":              "nullable|string",
		"inventory":          "nullable|array",
		"inventory.quantity": "required|integer",
	}
	got := make(map[string]string, len(rules))
	for _, r := range rules {
		got[r.Path] = r.Expr
	}
	assert.Equal(t, want, got)
}

func TestRulesVarIsSorted(t *testing.T) {
	f := newFile(typeOf(t, newGraph(t, shop), "Tag"), gen.ArtifactRequest)
	src, err := render(f, rulesVar("Rules", "of tags", []Rule{{"z", "string"}, {"a", "integer"}}))
	assert.NoError(t, err)
	assert.Less(t, strings.Index(src, `"a"`), strings.Index(src, `"z"`))
}
