package gen

import (
	"embed"
	"errors"
	"io/fs"
	"regexp"
	"slices"
)

//go:embed stubs/*.stub
var stubs embed.FS

// DefaultStubs returns the embedded stub templates.
func DefaultStubs() fs.FS {
	sub, err := fs.Sub(stubs, "stubs")
	if err != nil {
		panic(err)
	}
	return sub
}

// Layered returns a file system reading each file from the first layer
// that has it.
func Layered(layers ...fs.FS) fs.FS {
	return layeredFS(layers)
}

type layeredFS []fs.FS

// Open implements fs.FS.
func (l layeredFS) Open(name string) (fs.File, error) {
	for _, layer := range l {
		f, err := layer.Open(name)
		if err == nil {
			return f, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}
	return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
}

// LoadStub reads a stub template.
func LoadStub(fsys fs.FS, name string) (string, error) {
	if fsys == nil {
		return "", NewStubError(name, nil)
	}
	data, err := fs.ReadFile(fsys, name)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return "", NewStubError(name, nil)
	case err != nil:
		return "", NewStubError(name, err)
	}
	return string(data), nil
}

var placeholder = regexp.MustCompile(`\{\{\s*([A-Za-z_][A-Za-z0-9_]*)\s*\}\}`)

// Substitute replaces every {{ name }} in tmpl with values[name]. Placeholders
// without a value are left untouched and returned, sorted and deduplicated.
func Substitute(tmpl string, values map[string]string) (string, []string) {
	var missing []string
	out := placeholder.ReplaceAllStringFunc(tmpl, func(m string) string {
		name := placeholder.FindStringSubmatch(m)[1]
		if v, ok := values[name]; ok {
			return v
		}
		missing = append(missing, name)
		return m
	})
	slices.Sort(missing)
	return out, slices.Compact(missing)
}
