package client

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/monitorpelanggan/billing-monitor/internal/core/domain"
)

func paths(items []MenuItem) []string {
	out := make([]string, 0, len(items))
	for _, m := range items {
		out = append(out, m.Path)
	}
	return out
}

func TestMenu(t *testing.T) {
	assert.Nil(t, Menu(nil))
	assert.Equal(t, []string{PathDashboard, PathBilling, PathContracts}, paths(Menu(&domain.User{Role: domain.RoleAdmin})))
	assert.Equal(t, []string{PathDashboard, PathBilling, PathContracts, PathAccounts}, paths(Menu(&domain.User{Role: domain.RoleSuperAdmin})))
}

func TestGuard(t *testing.T) {
	am := &domain.User{Role: domain.RoleAM}
	root := &domain.User{Role: domain.RoleSuperAdmin}

	cases := []struct {
		name string
		user *domain.User
		path string
		want string
	}{
		{"signed out", nil, PathBilling, PathLogin},
		{"allowed", am, PathContracts, PathContracts},
		{"role not allowed", am, PathAccounts, PathDashboard},
		{"superadmin accounts", root, PathAccounts, PathAccounts},
		{"unknown path", root, "/laporan", PathDashboard},
		{"login while signed in", am, PathLogin, PathDashboard},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Guard(tc.user, tc.path))
		})
	}
}
