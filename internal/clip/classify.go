package clip

import (
	"encoding/json"
	"net/url"
	"os"
	"regexp"
	"strings"
	"unicode"
)

// Classification is an ordered ladder: patterns overlap, so the first
// matching rule wins. Each rule is a standalone predicate so ordering and
// additions stay explicit and testable in isolation.
//
// Callers must not pass empty or all-whitespace strings; the watcher drops
// those before classification.

type classifyRule struct {
	kind  Kind
	match func(string) bool
}

var classifyRules = []classifyRule{
	{KindEmail, isEmail},
	{KindPhone, isPhone},
	{KindURL, isURL},
	{KindFile, isExistingPath},
	{KindColor, isColor},
	{KindJSON, isJSON},
	{KindNumber, isNumber},
	{KindCode, looksLikeCode},
}

// Classify maps captured text to a content kind. Deterministic apart from
// the file-path rule, which checks the path on disk at classification time.
func Classify(text string) Kind {
	s := strings.TrimSpace(text)
	for _, r := range classifyRules {
		if r.match(s) {
			return r.kind
		}
	}
	if isMostlyBinaryish(s) {
		return KindOther
	}
	return KindText
}

var emailRegex = regexp.MustCompile(`^[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}$`)

func isEmail(s string) bool {
	return emailRegex.MatchString(s)
}

// Leading "+" or "(" covers international and US grouped forms; the
// digit-count check below does the real filtering.
var phoneRegex = regexp.MustCompile(`^[+(]?[0-9][0-9 ().\-/]*$`)

func isPhone(s string) bool {
	if !phoneRegex.MatchString(s) {
		return false
	}
	digits := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	return digits >= 7 && digits <= 15
}

var urlSchemes = map[string]bool{"http": true, "https": true, "ftp": true, "file": true}

func isURL(s string) bool {
	if strings.ContainsAny(s, " \t\n") {
		return false
	}
	u, err := url.Parse(s)
	if err != nil || !urlSchemes[u.Scheme] {
		return false
	}
	return u.Host != "" || u.Scheme == "file"
}

// isExistingPath is the one impure rule: something shaped like a path only
// counts as a file if it exists on disk right now.
func isExistingPath(s string) bool {
	if strings.ContainsRune(s, '\n') {
		return false
	}
	path := s
	switch {
	case strings.HasPrefix(s, "file://"):
		path = strings.TrimPrefix(s, "file://")
	case strings.HasPrefix(s, "~"):
		home, err := os.UserHomeDir()
		if err != nil {
			return false
		}
		path = home + strings.TrimPrefix(s, "~")
	case !strings.HasPrefix(s, "/"):
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

var hexColorRegex = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

var colorFuncPrefixes = []string{"rgb(", "rgba(", "hsl(", "hsla("}

func isColor(s string) bool {
	if hexColorRegex.MatchString(s) {
		return true
	}
	low := strings.ToLower(s)
	for _, prefix := range colorFuncPrefixes {
		if strings.HasPrefix(low, prefix) {
			return true
		}
	}
	return false
}

func isJSON(s string) bool {
	if len(s) < 2 {
		return false
	}
	first, last := s[0], s[len(s)-1]
	if !(first == '{' && last == '}') && !(first == '[' && last == ']') {
		return false
	}
	return json.Valid([]byte(s))
}

var numberRegex = regexp.MustCompile(`^[+\-]?[$\x{20AC}\x{00A3}\x{00A5}]?\d{1,3}(?:,\d{3})*(?:\.\d+)?%?$|^[+\-]?[$\x{20AC}\x{00A3}\x{00A5}]?\d+(?:\.\d+)?%?$`)

func isNumber(s string) bool {
	return numberRegex.MatchString(s)
}

// codeTokens match literally anywhere in the text; any single hit tags the
// content as code.
var codeTokens = []string{
	"func ", "function ", "def ", "class ", "#include", "import ",
	"package ", "=>", "->", "&&", "||", "};", ");", "</",
}

// codeIndicators are weaker signals; the content is code once their
// combined count reaches 2.
var codeIndicators = []string{
	"{", "}", ";", "==", "!=", "return ", "if ", "for ", "while ",
	"var ", "const ", "let ", "=",
}

func looksLikeCode(s string) bool {
	for _, tok := range codeTokens {
		if strings.Contains(s, tok) {
			return true
		}
	}
	hits := 0
	for _, ind := range codeIndicators {
		if strings.Contains(s, ind) {
			hits++
			if hits >= 2 {
				return true
			}
		}
	}
	return false
}

// isMostlyBinaryish reports whether less than half the content is letters,
// digits, or whitespace. Short strings always pass as text.
func isMostlyBinaryish(s string) bool {
	runes := []rune(s)
	if len(runes) <= 10 {
		return false
	}
	plain := 0
	for _, r := range runes {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			plain++
		}
	}
	return float64(plain)/float64(len(runes)) < 0.5
}
