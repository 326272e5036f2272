package users

// Role grants access to workspace features.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// AdminID is the distinguished administrator account.
const AdminID = "admin"

const (
	defaultAdminPosition  = "系统管理员"
	defaultMemberPosition = "未指定"
)

// User is a workspace account. Passwords are stored as entered.
type User struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Password  string `json:"password"`
	Role      Role   `json:"role"`
	Position  string `json:"position"`
	CreatedAt int64  `json:"createdAt"`
}

// Profile is the view of a user served to the workspace.
type Profile struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Role      Role   `json:"role"`
	Position  string `json:"position"`
	CreatedAt int64  `json:"createdAt"`
}

func (u User) Profile() Profile {
	return Profile{ID: u.ID, Username: u.Username, Role: u.Role, Position: u.Position, CreatedAt: u.CreatedAt}
}

// DefaultAdmin is seeded when no accounts exist.
func DefaultAdmin(createdAt int64) User {
	return User{
		ID:        AdminID,
		Username:  "admin",
		Password:  "admin",
		Role:      RoleAdmin,
		Position:  defaultAdminPosition,
		CreatedAt: createdAt,
	}
}
