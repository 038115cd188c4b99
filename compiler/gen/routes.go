package gen

import (
	"strings"
)

// RouteMarker is the comment line route registrations are inserted above.
const RouteMarker = "// crudgen:routes"

// InsertRoute adds line to the route registration source src. The line goes
// right above the marker, with the marker's indentation. Without a marker
// it goes above the last closing brace, or at the end of src. A line
// already present is not added again; the second result reports whether
// src changed.
func InsertRoute(src, line string) (string, bool) {
	line = strings.TrimSpace(line)
	lines := strings.Split(src, "\n")
	for _, l := range lines {
		if strings.TrimSpace(l) == line {
			return src, false
		}
	}
	at, indent := -1, "\t"
	for i, l := range lines {
		if strings.TrimSpace(l) == RouteMarker {
			at, indent = i, l[:len(l)-len(strings.TrimLeft(l, " \t"))]
			break
		}
	}
	if at < 0 {
		for i := len(lines) - 1; i >= 0; i-- {
			if strings.TrimSpace(lines[i]) == "}" {
				at = i
				break
			}
		}
	}
	if at < 0 {
		if src != "" && !strings.HasSuffix(src, "\n") {
			src += "\n"
		}
		return src + line + "\n", true
	}
	lines = append(lines[:at], append([]string{indent + line}, lines[at:]...)...)
	return strings.Join(lines, "\n"), true
}
