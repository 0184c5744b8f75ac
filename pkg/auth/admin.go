package auth

import "strings"

// AdminSet is the set of administrator identities, keyed by email.
// It is loaded once at start and consulted on every admin request.
type AdminSet struct {
	emails map[string]struct{}
}

// NewAdminSet builds an AdminSet. Blank entries are ignored and matching is case-insensitive.
func NewAdminSet(emails []string) *AdminSet {
	set := &AdminSet{emails: make(map[string]struct{}, len(emails))}
	for _, e := range emails {
		e = normalizeEmail(e)
		if e == "" {
			continue
		}
		set.emails[e] = struct{}{}
	}
	return set
}

// IsAdmin reports whether the claims belong to a configured administrator.
func (s *AdminSet) IsAdmin(claims *Claims) bool {
	if s == nil || claims == nil {
		return false
	}
	_, ok := s.emails[normalizeEmail(claims.Email)]
	return ok
}

// Len returns the number of configured administrators.
func (s *AdminSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.emails)
}

func normalizeEmail(e string) string {
	return strings.ToLower(strings.TrimSpace(e))
}
