package posts

// AuthorizeOwner is the ownership decision point for mutating operations.
//
// It is a pure function with no side effects: an empty principal yields
// ErrNotLoggedIn, a principal that is not the owner yields ErrForbidden.
// Callers must load the target post before invoking the guard so that acting
// on a nonexistent post observes not-found, never forbidden.
func AuthorizeOwner(principal, ownerID string) error {
	if principal == "" {
		return ErrNotLoggedIn
	}
	if principal != ownerID {
		return ErrForbidden
	}
	return nil
}
