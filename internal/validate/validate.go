// Package validate holds input validation shared by the bot flows and the HTTP API.
package validate

import (
	"regexp"
	"strings"
	"time"
)

var snilsRe = regexp.MustCompile(`^\d{3}-\d{3}-\d{3} \d{2}$`)

// SNILS reports whether s matches the canonical SNILS layout "XXX-XXX-XXX XX".
func SNILS(s string) bool {
	return snilsRe.MatchString(s)
}

// Date reports whether s is a calendar date in strict YYYY-MM-DD form.
// Impossible dates such as 2023-02-30 are rejected.
func Date(s string) bool {
	if len(s) != 10 {
		return false
	}
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}

// NormalizeText trims surrounding whitespace from user input.
func NormalizeText(s string) string {
	return strings.TrimSpace(s)
}
