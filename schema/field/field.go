package field

import (
	"errors"
	"fmt"
	"strings"
)

// Type is the base column type of a field.
type Type string

// Known base types. Any other base type is accepted and passed through as is.
const (
	TypeString     Type = "string"
	TypeText       Type = "text"
	TypeInteger    Type = "integer"
	TypeBigInteger Type = "bigInteger"
	TypeBoolean    Type = "boolean"
	TypeDouble     Type = "double"
	TypeFloat      Type = "float"
	TypeDecimal    Type = "decimal"
	TypeDate       Type = "date"
	TypeDateTime   Type = "dateTime"
	TypeTimestamp  Type = "timestamp"
	TypeTime       Type = "time"
	TypeForeignID  Type = "foreignId"
	TypeImage      Type = "image"
	TypeFile       Type = "file"
	TypeJSON       Type = "json"
	TypeUUID       Type = "uuid"
	TypeEmail      Type = "email"
)

var knownTypes = func() map[string]Type {
	m := make(map[string]Type)
	for _, t := range []Type{
		TypeString, TypeText, TypeInteger, TypeBigInteger, TypeBoolean, TypeDouble,
		TypeFloat, TypeDecimal, TypeDate, TypeDateTime, TypeTimestamp, TypeTime,
		TypeForeignID, TypeImage, TypeFile, TypeJSON, TypeUUID, TypeEmail,
	} {
		m[strings.ToLower(string(t))] = t
	}
	return m
}()

// Known reports whether t is one of the predefined base types.
func (t Type) Known() bool {
	_, ok := knownTypes[strings.ToLower(string(t))]
	return ok
}

// IsAttachment reports whether values of t are uploaded files.
func (t Type) IsAttachment() bool {
	return t == TypeImage || t == TypeFile
}

// IsNumeric reports whether t holds numbers.
func (t Type) IsNumeric() bool {
	switch t {
	case TypeInteger, TypeBigInteger, TypeDouble, TypeFloat, TypeDecimal, TypeForeignID:
		return true
	}
	return false
}

// IsTemporal reports whether t holds dates or times.
func (t Type) IsTemporal() bool {
	switch t {
	case TypeDate, TypeDateTime, TypeTimestamp, TypeTime:
		return true
	}
	return false
}

// ModifierKind classifies a modifier token.
type ModifierKind uint8

// Modifier kinds.
const (
	ModifierOther ModifierKind = iota
	ModifierNullable
	ModifierUnique
	ModifierDefault
)

// String returns the name of the modifier kind.
func (k ModifierKind) String() string {
	switch k {
	case ModifierNullable:
		return "nullable"
	case ModifierUnique:
		return "unique"
	case ModifierDefault:
		return "default"
	default:
		return "other"
	}
}

// Modifier is one modifier token of a field spec.
type Modifier struct {
	Kind ModifierKind
	// Raw is the token as declared, used when re-rendering the spec.
	Raw string
	// Arg holds the argument of default(...).
	Arg string
}

// String returns the declared token.
func (m Modifier) String() string { return m.Raw }

// Descriptor is a parsed field spec such as "foreignId:users:nullable:default(1)".
type Descriptor struct {
	Type Type
	// Ref is the referenced table of a foreignId field.
	Ref string
	// Modifiers in declaration order.
	Modifiers []Modifier
}

// Parse parses a field spec. The first token is the base type; for foreignId the
// second token is the referenced table. Remaining tokens are modifiers, kept in the
// order they were declared.
func Parse(spec string) (*Descriptor, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil, errors.New("field: empty spec")
	}
	tokens := strings.Split(spec, ":")
	base := strings.TrimSpace(tokens[0])
	if base == "" {
		return nil, fmt.Errorf("field: missing base type in %q", spec)
	}
	d := &Descriptor{Type: Type(base)}
	if t, ok := knownTypes[strings.ToLower(base)]; ok {
		d.Type = t
	}
	rest := tokens[1:]
	if d.Type == TypeForeignID {
		if len(rest) == 0 || strings.TrimSpace(rest[0]) == "" {
			return nil, fmt.Errorf("field: foreignId requires a referenced table in %q", spec)
		}
		d.Ref = strings.TrimSpace(rest[0])
		rest = rest[1:]
	}
	for i := 0; i < len(rest); i++ {
		tok := strings.TrimSpace(rest[i])
		switch lower := strings.ToLower(tok); {
		case tok == "":
			return nil, fmt.Errorf("field: empty modifier in %q", spec)
		case lower == "nullable":
			d.Modifiers = append(d.Modifiers, Modifier{Kind: ModifierNullable, Raw: tok})
		case lower == "unique":
			d.Modifiers = append(d.Modifiers, Modifier{Kind: ModifierUnique, Raw: tok})
		case strings.HasPrefix(lower, "default("):
			// The argument may itself contain ':' (e.g. a time of day).
			raw := tok
			for !strings.HasSuffix(raw, ")") && i+1 < len(rest) {
				i++
				raw += ":" + rest[i]
			}
			raw = strings.TrimSpace(raw)
			arg := strings.TrimSuffix(raw[len("default("):], ")")
			d.Modifiers = append(d.Modifiers, Modifier{Kind: ModifierDefault, Raw: raw, Arg: arg})
		default:
			d.Modifiers = append(d.Modifiers, Modifier{Kind: ModifierOther, Raw: tok})
		}
	}
	return d, nil
}

// MustParse is like Parse but panics on error.
func MustParse(spec string) *Descriptor {
	d, err := Parse(spec)
	if err != nil {
		panic(err)
	}
	return d
}

// Nullable reports whether the field was declared nullable.
func (d *Descriptor) Nullable() bool { return d.has(ModifierNullable) }

// Unique reports whether the field was declared unique.
func (d *Descriptor) Unique() bool { return d.has(ModifierUnique) }

// Default returns the default(...) argument, if declared.
func (d *Descriptor) Default() (string, bool) {
	for _, m := range d.Modifiers {
		if m.Kind == ModifierDefault {
			return m.Arg, true
		}
	}
	return "", false
}

// IsAttachment reports whether the field holds an uploaded file.
func (d *Descriptor) IsAttachment() bool { return d.Type.IsAttachment() }

// IsForeignKey reports whether the field references another table.
func (d *Descriptor) IsForeignKey() bool { return d.Type == TypeForeignID }

func (d *Descriptor) has(k ModifierKind) bool {
	for _, m := range d.Modifiers {
		if m.Kind == k {
			return true
		}
	}
	return false
}

// String re-renders the spec with modifiers in declaration order.
func (d *Descriptor) String() string {
	parts := make([]string, 0, len(d.Modifiers)+2)
	parts = append(parts, string(d.Type))
	if d.Ref != "" {
		parts = append(parts, d.Ref)
	}
	for _, m := range d.Modifiers {
		parts = append(parts, m.Raw)
	}
	return strings.Join(parts, ":")
}

// Unquote strips one level of matching single or double quotes from a default argument.
func Unquote(arg string) string {
	if len(arg) >= 2 {
		if q := arg[0]; (q == '\'' || q == '"') && arg[len(arg)-1] == q {
			return arg[1 : len(arg)-1]
		}
	}
	return arg
}
