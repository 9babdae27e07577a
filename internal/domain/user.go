package domain

// Role represents the user's permission level.
type Role string

const (
	// RoleAdmin grants full administrative access.
	RoleAdmin Role = "admin"
	// RoleModerator can edit any item and works the review queue.
	RoleModerator Role = "moderator"
	// RoleMember can submit items and manage their own collection.
	RoleMember Role = "member"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleModerator, RoleMember:
		return true
	}
	return false
}

// User is an account on the site.
type User struct {
	Entity
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	DisplayName  string `json:"display_name"`
	Role         Role   `json:"role"`
}

// IsAdmin returns true if the user has administrative privileges.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsModerator returns true for moderators. Admins are moderators too.
func (u *User) IsModerator() bool {
	return u.Role == RoleModerator || u.IsAdmin()
}

// CanModify reports whether the user may edit or delete item.
func (u *User) CanModify(item *Item) bool {
	if u == nil || item == nil {
		return false
	}
	return u.IsModerator() || item.UploaderID == u.ID
}

// CanView reports whether the user may see item. Published items are public;
// drafts and pending submissions are limited to the uploader and moderators.
func (u *User) CanView(item *Item) bool {
	if item == nil {
		return false
	}
	if item.IsPublished() {
		return true
	}
	return u.CanModify(item)
}
