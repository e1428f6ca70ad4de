package domain

// Role names come from the identity store; the set is open-ended, these are
// the ones with dedicated dashboards.
type Role string

const (
	RoleSales      Role = "sales"
	RoleTechnician Role = "technician"
	RoleCustomer   Role = "customer"
	RoleDirector   Role = "director"
	RoleAdmin      Role = "admin"
)

// Profile is the application identity resolved for an external email.
type Profile struct {
	ID       string `json:"id"`
	Phone    string `json:"phone"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

// Session pairs a freshly issued session token with the entry route for the
// holder's role.
type Session struct {
	Token   string
	Role    Role
	Landing string
}

var landingRoutes = map[Role]string{
	RoleSales:      "/sales-dashboard",
	RoleTechnician: "/technician-dashboard",
	RoleCustomer:   "/customer-dashboard",
	RoleDirector:   "/admin-dashboard",
	RoleAdmin:      "/admin-dashboard",
}

// LandingRoute returns the dashboard route for a role. Roles without a
// dashboard report ok=false; callers treat that as a login redirect.
func LandingRoute(role Role) (string, bool) {
	route, ok := landingRoutes[role]
	return route, ok
}
