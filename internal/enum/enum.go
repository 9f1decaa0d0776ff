package enum

// ── CHECK constrained in DB ──

const (
	UserRoleAdmin  = "admin"
	UserRoleWaiter = "waiter"
	UserRoleCook   = "cook"
)

// IsUserRole reports whether s is a known role.
func IsUserRole(s string) bool {
	switch s {
	case UserRoleAdmin, UserRoleWaiter, UserRoleCook:
		return true
	}
	return false
}

// ── Settings keys (no DB constraint) ──

const (
	SettingRestaurantName = "restaurant_name"
	SettingStaffPhone     = "staff_phone"
)

// IsSettingKey reports whether s is a known settings key.
func IsSettingKey(s string) bool {
	switch s {
	case SettingRestaurantName, SettingStaffPhone:
		return true
	}
	return false
}
