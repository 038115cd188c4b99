package sql

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/syssam/crudgen/compiler/gen"
	"github.com/syssam/crudgen/schema/edge"
	"github.com/syssam/crudgen/schema/field"
)

// sampleTime is the instant every temporal sample value is derived from.
var sampleTime = time.Date(2024, time.January, 15, 9, 30, 0, 0, time.UTC)

// hints maps column name fragments to sample strings. The first matching
// hint wins.
var hints = []struct {
	match []string
	value string
}{
	{[]string{"email"}, "user@example.com"},
	{[]string{"phone", "mobile"}, "+1-555-0100"},
	{[]string{"url", "link", "website"}, "https://example.com"},
	{[]string{"slug"}, "sample-slug"},
	{[]string{"password", "secret"}, "secret"},
	{[]string{"status", "state"}, "active"},
	{[]string{"color", "colour"}, "#3366ff"},
	{[]string{"country"}, "US"},
	{[]string{"city"}, "Springfield"},
	{[]string{"address", "street"}, "742 Evergreen Terrace"},
	{[]string{"description", "content", "body", "summary", "bio"}, "Lorem ipsum dolor sit amet."},
}

// Sample returns a representative value of a column, chosen from its
// name and type. Values are deterministic.
func Sample(f *gen.Field) any {
	name := strings.ToLower(f.Name)
	switch f.Type() {
	case field.TypeInteger, field.TypeBigInteger:
		switch {
		case strings.Contains(name, "age"):
			return 30
		case strings.Contains(name, "year"):
			return sampleTime.Year()
		case strings.Contains(name, "quantity"), strings.Contains(name, "count"), strings.Contains(name, "stock"):
			return 10
		}
		return 1
	case field.TypeForeignID:
		return 1
	case field.TypeBoolean:
		return true
	case field.TypeDouble, field.TypeFloat, field.TypeDecimal:
		if strings.Contains(name, "price") || strings.Contains(name, "amount") || strings.Contains(name, "cost") {
			return 19.99
		}
		return 9.5
	case field.TypeDate:
		return sampleTime.Format(time.DateOnly)
	case field.TypeDateTime, field.TypeTimestamp:
		return sampleTime.Format(time.RFC3339)
	case field.TypeTime:
		return sampleTime.Format(time.TimeOnly)
	case field.TypeJSON:
		return map[string]any{"key": "value"}
	case field.TypeUUID:
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(f.Owner().Table()+"."+f.Name)).String()
	case field.TypeEmail:
		return "user@example.com"
	case field.TypeImage:
		return f.Owner().UploadFolder() + "/sample.png"
	case field.TypeFile:
		return f.Owner().UploadFolder() + "/sample.pdf"
	}
	for _, h := range hints {
		for _, m := range h.match {
			if strings.Contains(name, m) {
				return h.value
			}
		}
	}
	if f.Type() == field.TypeText {
		return "Lorem ipsum dolor sit amet."
	}
	return "Sample " + f.Title()
}

// object is a JSON object that keeps the order its keys were added in.
type object struct {
	keys   []string
	values map[string]any
}

func (o *object) set(k string, v any) {
	if o.values == nil {
		o.values = make(map[string]any)
	}
	if _, ok := o.values[k]; !ok {
		o.keys = append(o.keys, k)
	}
	o.values[k] = v
}

// MarshalJSON implements json.Marshaler.
func (o *object) MarshalJSON() ([]byte, error) {
	var b bytes.Buffer
	b.WriteByte('{')
	for i, k := range o.keys {
		if i > 0 {
			b.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(o.values[k])
		if err != nil {
			return nil, err
		}
		b.Write(key)
		b.WriteByte(':')
		b.Write(val)
	}
	b.WriteByte('}')
	return b.Bytes(), nil
}

// Example returns an example store payload of t: one sample value per
// declared column, followed by its nested relations.
func Example(t *gen.Type) ([]byte, error) {
	o := &object{}
	for _, f := range t.Declared() {
		o.set(f.Name, Sample(f))
	}
	examples(o, t.Nested)
	out, err := json.MarshalIndent(o, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(out, '\n'), nil
}

func examples(o *object, tree []*gen.Nested) {
	for _, n := range tree {
		switch n.Kind {
		case edge.BelongsToMany:
			o.set(n.Key(), []int{1, 2})
		case edge.HasOne:
			o.set(n.Key(), nestedExample(n))
		case edge.HasMany:
			o.set(n.Key(), []*object{nestedExample(n)})
		}
	}
}

func nestedExample(n *gen.Nested) *object {
	o := &object{}
	for _, f := range n.PayloadFields() {
		o.set(f.Name, Sample(f))
	}
	examples(o, n.Children)
	return o
}
