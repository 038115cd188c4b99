package gen

import (
	"strings"
	"unicode"

	"github.com/go-openapi/inflect"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	rules    = ruleset()
	acronyms = make(map[string]struct{})
	titler   = cases.Title(language.English)
)

func ruleset() *inflect.Ruleset {
	rules := inflect.NewDefaultRuleset()
	// Add common initialisms from golint and more.
	for _, w := range []string{
		"ACL", "API", "ASCII", "AWS", "CPU", "CSS", "DNS", "EOF", "GB", "GUID",
		"HTML", "HTTP", "HTTPS", "ID", "IP", "JSON", "KB", "LHS", "MAC", "MB",
		"QPS", "RAM", "RHS", "RPC", "SKU", "SLA", "SMTP", "SQL", "SSH", "SSO",
		"TCP", "TLS", "TTL", "UDP", "UI", "UID", "URI", "URL", "UTF8", "UUID",
		"VM", "XML", "XMPP", "XSRF", "XSS",
	} {
		acronyms[w] = struct{}{}
		rules.AddAcronym(w)
	}
	return rules
}

// AddAcronym registers an initialism that pascal and camel keep upper case.
func AddAcronym(word string) {
	word = strings.ToUpper(word)
	acronyms[word] = struct{}{}
	rules.AddAcronym(word)
}

// Pascal converts a name to PascalCase ("user_id" => "UserID").
func Pascal(s string) string { return pascal(s) }

// Camel converts a name to camelCase ("user_id" => "userID").
func Camel(s string) string { return camel(s) }

// Snake converts a name to snake_case ("UserID" => "user_id").
func Snake(s string) string { return snake(s) }

// Pluralize returns the plural form of word.
func Pluralize(word string) string { return rules.Pluralize(word) }

// Singularize returns the singular form of word.
func Singularize(word string) string { return rules.Singularize(word) }

// snake converts the given struct or field name into a snake_case.
//
//	Username => username
//	FullName => full_name
//	HTTPCode => http_code
func snake(s string) string {
	var (
		j int
		b strings.Builder
	)
	for i := 0; i < len(s); i++ {
		r := rune(s[i])
		// Put '_' if it is not a start or end of a word, current letter is uppercase,
		// and previous is lowercase (cases like: "UserInfo"), or next letter is also
		// a lowercase and previous letter is not "_".
		if i > 0 && i < len(s)-1 && unicode.IsUpper(r) {
			if unicode.IsLower(rune(s[i-1])) ||
				j != i-1 && unicode.IsLower(rune(s[i+1])) && unicode.IsLetter(rune(s[i-1])) {
				j = i
				b.WriteString("_")
			}
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// kebab converts a name into a lower-case dash separated form used in URLs.
//
//	BlogPost => blog-post
//	blog_posts => blog-posts
func kebab(s string) string {
	return strings.Join(strings.FieldsFunc(snake(s), isSeparator), "-")
}

// pascal converts the given name into a PascalCase.
//
//	user_info => UserInfo
//	full_name => FullName
//	user_id   => UserID
//	full-admin => FullAdmin
func pascal(s string) string {
	words := strings.FieldsFunc(snake(s), isSeparator)
	for i, w := range words {
		words[i] = pascalWord(w)
	}
	return strings.Join(words, "")
}

func pascalWord(w string) string {
	if upper := strings.ToUpper(w); isAcronym(upper) {
		return upper
	}
	return rules.Capitalize(w)
}

// camel converts the given name into a camelCase.
//
//	user_info  => userInfo
//	full_name  => fullName
//	user_id    => userID
//	full-admin => fullAdmin
func camel(s string) string {
	words := strings.FieldsFunc(snake(s), isSeparator)
	for i, w := range words {
		if i == 0 {
			words[i] = strings.ToLower(w)
			continue
		}
		words[i] = pascalWord(w)
	}
	return strings.Join(words, "")
}

// title converts a column name into a human readable label.
//
//	published_at => Published At
func title(s string) string {
	return titler.String(strings.Join(strings.FieldsFunc(snake(s), isSeparator), " "))
}

// receiver returns the receiver name of the given type.
//
//	[]T       => t
//	[1]T      => t
//	User      => u
//	UserQuery => uq
func receiver(s string) string {
	// Trim invalid tokens for identifier prefix.
	s = strings.Trim(s, "[]*&0123456789")
	parts := strings.Split(snake(s), "_")
	shortest := len(parts[0])
	for _, w := range parts[1:] {
		shortest = min(shortest, len(w))
	}
	for i := 1; i < shortest; i++ {
		r := parts[0][:i]
		for _, w := range parts[1:] {
			r += w[:i]
		}
		if _, ok := importPkg[r]; !ok {
			s = r
			break
		}
	}
	name := strings.ToLower(s)
	if isKeyword(name) {
		name = "_" + name
	}
	return name
}

// importPkg holds package names commonly imported by generated files, so
// receivers and locals never shadow them.
var importPkg = map[string]struct{}{
	"chi": {}, "context": {}, "errors": {}, "fmt": {}, "http": {}, "json": {},
	"gorm": {}, "models": {}, "requests": {}, "resources": {}, "services": {},
	"storage": {}, "strconv": {}, "time": {}, "uuid": {},
}

func isKeyword(s string) bool {
	switch s {
	case "break", "case", "chan", "const", "continue", "default", "defer", "else",
		"fallthrough", "for", "func", "go", "goto", "if", "import", "interface",
		"map", "package", "range", "return", "select", "struct", "switch", "type", "var":
		return true
	}
	return false
}

func isAcronym(s string) bool {
	_, ok := acronyms[s]
	return ok
}

func isSeparator(r rune) bool {
	return r == '_' || r == '-' || unicode.IsSpace(r)
}
