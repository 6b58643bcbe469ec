package config

import "os"

// AdminEmail is the single configured administrator identity.
func AdminEmail() string {
	return os.Getenv("ADMIN_EMAIL")
}

// AdminPasscode is the shared bootstrap passcode checked on admin login.
func AdminPasscode() string {
	if v := os.Getenv("ADMIN_PASSCODE"); v != "" {
		return v
	}
	return "admin123"
}

// DefaultRequireApproval is the moderation policy used until an admin
// persists an explicit setting.
func DefaultRequireApproval() bool {
	return os.Getenv("REQUIRE_LISTING_APPROVAL") == "true"
}
