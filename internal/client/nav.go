package client

import (
	"slices"

	"github.com/monitorpelanggan/billing-monitor/internal/core/domain"
)

const (
	PathLogin     = "/login"
	PathDashboard = "/dashboard"
	PathBilling   = "/billing"
	PathContracts = "/kontrak"
	PathAccounts  = "/management-akun"
)

// MenuItem is one navigation entry. Empty Roles means every signed-in user.
type MenuItem struct {
	Path  string
	Label string
	Roles []string
}

func (m MenuItem) allows(role string) bool {
	return len(m.Roles) == 0 || slices.Contains(m.Roles, role)
}

var menu = []MenuItem{
	{Path: PathDashboard, Label: "Dashboard"},
	{Path: PathBilling, Label: "Billing"},
	{Path: PathContracts, Label: "Kontrak"},
	{Path: PathAccounts, Label: "Management Akun", Roles: []string{domain.RoleSuperAdmin}},
}

// Menu lists the entries u may open, in display order.
func Menu(u *domain.User) []MenuItem {
	if u == nil {
		return nil
	}
	var out []MenuItem
	for _, m := range menu {
		if m.allows(u.Role) {
			out = append(out, m)
		}
	}
	return out
}

// Guard returns the path to render when u navigates to path.
func Guard(u *domain.User, path string) string {
	if u == nil {
		return PathLogin
	}
	for _, m := range menu {
		if m.Path == path {
			if m.allows(u.Role) {
				return path
			}
			return PathDashboard
		}
	}
	return PathDashboard
}
