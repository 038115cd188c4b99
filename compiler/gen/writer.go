package gen

import (
	"fmt"
	"log/slog"
	"path"

	"golang.org/x/tools/imports"

	"github.com/syssam/crudgen"
)

// Writer formats and writes artifacts to the project file system.
type Writer struct {
	fs  crudgen.Filesystem
	log *slog.Logger
}

// NewWriter creates a writer on fsys.
func NewWriter(fsys crudgen.Filesystem, log *slog.Logger) *Writer {
	if log == nil {
		log = slog.Default()
	}
	return &Writer{fs: fsys, log: log}
}

// Format runs goimports over Go sources (removes unused imports and adds
// missing ones). Other files are returned as is.
func (w *Writer) Format(name string, src []byte) ([]byte, error) {
	if path.Ext(name) != ".go" {
		return src, nil
	}
	return imports.Process(w.fs.Abs(name), src, nil)
}

// Write formats src and writes it to name. When formatting fails the
// unformatted source is written next to name with an ".error" suffix for
// debugging, and name is left untouched.
func (w *Writer) Write(name string, src []byte) error {
	formatted, err := w.Format(name, src)
	if err != nil {
		// Errors intentionally ignored as we're already in error state.
		debugPath := name + ".error"
		_ = w.fs.WriteFile(debugPath, src, 0o644)
		return fmt.Errorf("format %s: %w (unformatted written to %s)", name, err, debugPath)
	}
	if err := w.fs.WriteFile(name, formatted, 0o644); err != nil {
		return crudgen.NewFileError("write", name, err)
	}
	w.log.Debug("artifact written", "path", name, "bytes", len(formatted))
	return nil
}
