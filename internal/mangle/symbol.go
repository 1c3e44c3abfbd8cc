package mangle

import (
	"strconv"
	"strings"

	"golang.org/x/text/unicode/runenames"
)

// symbolToken spells one operator character. ok is false outside the
// fixed punctuation set.
func symbolToken(r rune) (tok string, ok bool) {
	switch r {
	case '+':
		return "plus", true
	case '-':
		return "minus", true
	case '*':
		return "star", true
	case '/':
		return "slash", true
	case '%':
		return "percent", true
	case '<':
		return "lt", true
	case '>':
		return "gt", true
	case '=':
		return "eq", true
	case '!':
		return "bang", true
	case '&':
		return "amp", true
	case '|':
		return "pipe", true
	case '^':
		return "caret", true
	case '~':
		return "tilde", true
	case '?':
		return "quest", true
	case '@':
		return "at", true
	case '#':
		return "hash", true
	case ':':
		return "colon", true
	case '.':
		return "dot", true
	}
	return "", false
}

// EscapeSymbol spells an operator symbol with one token per character,
// joined by '_'. Characters outside the table use their Unicode name.
func EscapeSymbol(sym string) string {
	parts := make([]string, 0, len(sym))
	for _, r := range sym {
		parts = append(parts, runeToken(r))
	}
	return strings.Join(parts, "_")
}

func runeToken(r rune) string {
	if tok, ok := symbolToken(r); ok {
		return tok
	}
	if r < 0x80 {
		return "x" + strconv.FormatInt(int64(r), 16)
	}
	name := runenames.Name(r)
	if name == "" {
		return "x" + strconv.FormatInt(int64(r), 16)
	}
	name = strings.ToLower(name)
	name = strings.ReplaceAll(name, " ", ".")
	return "u" + name
}
