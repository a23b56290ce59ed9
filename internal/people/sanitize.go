package people

import (
	"strings"
	"unicode"

	"github.com/alanhoff/apostrophe-people/internal/model"
)

// Cosmetic name fields fall back to neutral defaults instead of being
// rejected, so a record is always displayable.
const (
	defaultFirstName = "Jane"
	defaultLastName  = "Public"
)

// sanitizePerson normalizes the cosmetic fields of a record before save.
// Idempotent: sanitizing already-sanitized input changes nothing.
func sanitizePerson(p *model.Person) {
	p.FirstName = sanitizeString(p.FirstName, defaultFirstName)
	p.LastName = sanitizeString(p.LastName, defaultLastName)
	p.Title = sanitizeString(p.Title, p.FirstName+" "+p.LastName)
	p.Username = strings.TrimSpace(p.Username)
	p.Email = strings.TrimSpace(p.Email)
	p.Phone = strings.TrimSpace(p.Phone)
	if p.GroupIDs == nil {
		p.GroupIDs = []string{}
	}
}

// sanitizeString trims whitespace and strips control characters, falling back
// to def when nothing printable remains.
func sanitizeString(s, def string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsControl(r) {
			continue
		}
		b.WriteRune(r)
	}
	out := strings.TrimSpace(b.String())
	if out == "" {
		return def
	}
	return out
}

// slugify converts a display title into a URL-safe slug: lowercase letters
// and digits with single hyphens between runs.
func slugify(s string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastHyphen = false
		case !lastHyphen:
			b.WriteByte('-')
			lastHyphen = true
		}
	}
	return strings.Trim(b.String(), "-")
}
