package identity

const (
	// Username length bounds (inclusive).
	UsernameMinLen = 3
	UsernameMaxLen = 20
)

// ValidUsername reports whether s is 3-20 ASCII alphanumeric characters.
// Usernames are case-sensitive; no normalization is applied.
func ValidUsername(s string) bool {
	if len(s) < UsernameMinLen || len(s) > UsernameMaxLen {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
		default:
			return false
		}
	}
	return true
}
