package contact

import "regexp"

// emailPattern is deliberately permissive rather than RFC-5322 complete:
// rejecting a real address costs a lead, accepting a junk one does not.
var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// IsValidEmail reports whether s looks like a plausible email address.
func IsValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}
