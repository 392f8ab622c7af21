package provider

import (
	"strings"
	"unicode"
)

// Matcher decides whether a piece of text mentions a keyword. Each keyword
// has a list of terms; a term matches when its words appear consecutively
// in the text, ignoring case and punctuation.
type Matcher struct {
	terms map[string][][]string
}

// NewMatcher builds a matcher from per-keyword terms. Keywords without
// configured terms match on the phrase itself.
func NewMatcher(keywords []string, terms map[string][]string) *Matcher {
	m := &Matcher{terms: make(map[string][][]string, len(keywords))}
	for _, kw := range keywords {
		list := terms[kw]
		if len(list) == 0 {
			list = []string{kw}
		}
		for _, term := range list {
			if toks := tokenize(term); len(toks) > 0 {
				m.terms[kw] = append(m.terms[kw], toks)
			}
		}
	}
	return m
}

// Terms returns the terms for keyword, in order.
func (m *Matcher) Terms(keyword string) []string {
	var out []string
	for _, toks := range m.termTokens(keyword) {
		out = append(out, strings.Join(toks, " "))
	}
	return out
}

// termTokens falls back to the keyword phrase for unknown keywords and for
// a nil matcher.
func (m *Matcher) termTokens(keyword string) [][]string {
	if m != nil {
		if terms := m.terms[keyword]; len(terms) > 0 {
			return terms
		}
	}
	if toks := tokenize(keyword); len(toks) > 0 {
		return [][]string{toks}
	}
	return nil
}

// Matches reports whether text mentions keyword.
func (m *Matcher) Matches(keyword, text string) bool {
	return m.matchTokens(keyword, tokenize(text))
}

func (m *Matcher) matchTokens(keyword string, tokens []string) bool {
	for _, term := range m.termTokens(keyword) {
		if containsRun(tokens, term) {
			return true
		}
	}
	return false
}

// tokenize lowercases s and splits it into letter/digit runs. '+' and '#'
// are kept so "c++" and "c#" survive.
func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '+' && r != '#'
	})
}

func containsRun(tokens, run []string) bool {
	if len(run) == 0 || len(run) > len(tokens) {
		return false
	}
outer:
	for i := 0; i+len(run) <= len(tokens); i++ {
		for j := range run {
			if tokens[i+j] != run[j] {
				continue outer
			}
		}
		return true
	}
	return false
}
