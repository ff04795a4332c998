package models

// Roles carried in auth tokens, mapped to the minimum access rank the
// caller may read at. Unknown roles fall back to partner.
const (
	RolePartner  = "partner"
	RoleInternal = "internal-employee"
	RoleAdmin    = "admin"
)

var roleRanks = map[string]int{
	RolePartner:  1,
	RoleInternal: 2,
	RoleAdmin:    3,
}

// RoleAccessRank maps a role to its access rank.
func RoleAccessRank(role string) int {
	if rank, ok := roleRanks[role]; ok {
		return rank
	}
	return roleRanks[RolePartner]
}

// User is the identity attached to each request. The service trusts the
// rank supplied by the auth layer and never re-derives it.
type User struct {
	ID         string `json:"id"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	AccessRank int    `json:"access_rank"`
}

// IsAdmin reports whether the user may perform document mutations.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}
