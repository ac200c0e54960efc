package markup

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var entityLike = regexp.MustCompile(`^&(#[0-9]{1,7}|#[xX][0-9a-fA-F]{1,6}|[A-Za-z][A-Za-z0-9]{1,31});`)

// escapeText escapes characters of plain text that Markdown would read as
// syntax anywhere in a line.
func escapeText(s string) string {
	var b strings.Builder
	for i, r := range s {
		switch r {
		case '\\', '`', '*', '[', ']', '<', '~':
			b.WriteByte('\\')
		case '_':
			if wordBoundary(s, i) {
				b.WriteByte('\\')
			}
		case '&':
			if entityLike.MatchString(s[i:]) {
				b.WriteByte('\\')
			}
		}
		b.WriteRune(r)
	}
	return b.String()
}

// wordBoundary reports whether the underscore at i touches a non-word
// character or the edge of s, where it could open or close emphasis.
func wordBoundary(s string, i int) bool {
	if i == 0 || i == len(s)-1 {
		return true
	}
	prev, _ := utf8.DecodeLastRuneInString(s[:i])
	next, _ := utf8.DecodeRuneInString(s[i+1:])
	isWord := func(r rune) bool { return unicode.IsLetter(r) || unicode.IsDigit(r) }
	return !isWord(prev) || !isWord(next)
}

// escapeLineStarts escapes characters at the start of each line that would
// open a block: headings, quotes, list items, setext underlines, thematic
// breaks and table rows.
func escapeLineStarts(s string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		body := strings.TrimLeft(l, " \t")
		pad := l[:len(l)-len(body)]
		if body == "" {
			continue
		}
		switch body[0] {
		case '#', '>', '+', '=', '-', '|':
			lines[i] = pad + `\` + body
			continue
		}
		n := 0
		for n < len(body) && n < 10 && body[n] >= '0' && body[n] <= '9' {
			n++
		}
		if n > 0 && n < 10 && n < len(body) && (body[n] == '.' || body[n] == ')') {
			lines[i] = pad + body[:n] + `\` + body[n:]
		}
	}
	return strings.Join(lines, "\n")
}
