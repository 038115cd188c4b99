package field

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		spec     string
		typ      Type
		ref      string
		kinds    []ModifierKind
		nullable bool
		unique   bool
		def      string
		hasDef   bool
	}{
		{spec: "string", typ: TypeString},
		{spec: "string:unique", typ: TypeString, kinds: []ModifierKind{ModifierUnique}, unique: true},
		{spec: "text:nullable", typ: TypeText, kinds: []ModifierKind{ModifierNullable}, nullable: true},
		{spec: "integer:default(0)", typ: TypeInteger, kinds: []ModifierKind{ModifierDefault}, def: "0", hasDef: true},
		{spec: "foreignId:categories", typ: TypeForeignID, ref: "categories"},
		{
			spec:     "foreignId:users:nullable:default(1)",
			typ:      TypeForeignID,
			ref:      "users",
			kinds:    []ModifierKind{ModifierNullable, ModifierDefault},
			nullable: true,
			def:      "1",
			hasDef:   true,
		},
		{spec: "dateTime", typ: TypeDateTime},
		{spec: "datetime", typ: TypeDateTime},
		{spec: "image:nullable", typ: TypeImage, kinds: []ModifierKind{ModifierNullable}, nullable: true},
		{spec: "point", typ: Type("point")},
		{spec: "geometry:nullable:srid(4326)", typ: Type("geometry"), kinds: []ModifierKind{ModifierNullable, ModifierOther}, nullable: true},
		{spec: " string : nullable ", typ: TypeString, kinds: []ModifierKind{ModifierNullable}, nullable: true},
	}
	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			d, err := Parse(tt.spec)
			require.NoError(t, err)
			assert.Equal(t, tt.typ, d.Type)
			assert.Equal(t, tt.ref, d.Ref)
			var kinds []ModifierKind
			for _, m := range d.Modifiers {
				kinds = append(kinds, m.Kind)
			}
			assert.Equal(t, tt.kinds, kinds)
			assert.Equal(t, tt.nullable, d.Nullable())
			assert.Equal(t, tt.unique, d.Unique())
			def, ok := d.Default()
			assert.Equal(t, tt.hasDef, ok)
			assert.Equal(t, tt.def, def)
		})
	}
}

func TestParseErrors(t *testing.T) {
	for _, spec := range []string{"", "   ", ":nullable", "foreignId", "foreignId::nullable", "string::unique"} {
		t.Run(spec, func(t *testing.T) {
			_, err := Parse(spec)
			assert.Error(t, err)
		})
	}
}

func TestParseDefault(t *testing.T) {
	t.Run("argument containing colons", func(t *testing.T) {
		d := MustParse("time:default(12:30:00):nullable")
		def, ok := d.Default()
		require.True(t, ok)
		assert.Equal(t, "12:30:00", def)
		assert.True(t, d.Nullable())
		require.Len(t, d.Modifiers, 2)
		assert.Equal(t, ModifierNullable, d.Modifiers[1].Kind)
	})

	t.Run("unclosed argument consumes the rest", func(t *testing.T) {
		d := MustParse("string:default(abc:nullable")
		def, ok := d.Default()
		require.True(t, ok)
		assert.Equal(t, "abc:nullable", def)
		assert.False(t, d.Nullable())
	})

	t.Run("quoted argument", func(t *testing.T) {
		d := MustParse("string:default('draft')")
		def, _ := d.Default()
		assert.Equal(t, "'draft'", def)
		assert.Equal(t, "draft", Unquote(def))
	})
}

func TestModifierOrderRoundTrip(t *testing.T) {
	specs := []string{
		"string:nullable:default(x)",
		"string:default(x):nullable",
		"foreignId:users:default(1):nullable:unique",
		"foreignId:users:unique:nullable",
		"decimal:unique:default(0.00):nullable",
		"custom:first:second:third",
		"time:default(08:00)",
	}
	for _, spec := range specs {
		t.Run(spec, func(t *testing.T) {
			d, err := Parse(spec)
			require.NoError(t, err)
			assert.Equal(t, spec, d.String())

			again, err := Parse(d.String())
			require.NoError(t, err)
			assert.Equal(t, d, again)
		})
	}
}

func TestTypePredicates(t *testing.T) {
	assert.True(t, TypeImage.IsAttachment())
	assert.True(t, TypeFile.IsAttachment())
	assert.False(t, TypeString.IsAttachment())
	assert.True(t, TypeDecimal.IsNumeric())
	assert.True(t, TypeTimestamp.IsTemporal())
	assert.True(t, TypeJSON.Known())
	assert.False(t, Type("point").Known())
	assert.Equal(t, "default", ModifierDefault.String())
	assert.True(t, MustParse("foreignId:users").IsForeignKey())
}

func TestUnquote(t *testing.T) {
	tests := []struct{ in, want string }{
		{`'a'`, "a"},
		{`"a"`, "a"},
		{`'a"`, `'a"`},
		{`a`, "a"},
		{`'`, `'`},
		{``, ``},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Unquote(tt.in))
	}
}
