package model

// Identity is the requesting identity attached to an operation. A nil
// *Identity means the request is anonymous.
type Identity struct {
	Username    string
	Permissions map[string]bool
}

// Admin reports whether the identity carries the administrator capability.
func (id *Identity) Admin() bool {
	return id != nil && id.Permissions["admin"]
}

// Has reports whether the identity holds the named permission. Admins hold
// every permission implicitly.
func (id *Identity) Has(perm string) bool {
	if id == nil {
		return false
	}
	return id.Permissions["admin"] || id.Permissions[perm]
}
