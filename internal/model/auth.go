package model

const (
	RoleUser    = "user"
	RoleService = "service"
)

// AccessToken is the object carried by bearer tokens. Service tokens are
// minted for trusted backends crediting points or changing memberships.
type AccessToken struct {
	ID   string `json:"id"`
	Role string `json:"role"`
}
