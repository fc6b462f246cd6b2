package features

import (
	"os"
	"strconv"
	"strings"

	"github.com/freshroots/admin-service/internal/models"
)

// Feature names known to the service
const (
	CustomerBalance = "customer_balance"
	AdminStyleV3    = "admin_style_v3"
)

// Provider answers whether a feature is enabled for a principal
type Provider interface {
	Enabled(name string, principal models.Principal) bool
}

// EnvProvider toggles features through environment variables. A feature
// "customer_balance" is controlled by FEATURE_CUSTOMER_BALANCE; values
// "1", "true" and "on" enable it globally. A comma-separated list of user
// IDs in FEATURE_CUSTOMER_BALANCE_USERS enables it for those users only.
type EnvProvider struct{}

// Enabled implements Provider
func (EnvProvider) Enabled(name string, principal models.Principal) bool {
	key := "FEATURE_" + strings.ToUpper(name)

	switch strings.ToLower(os.Getenv(key)) {
	case "1", "true", "on":
		return true
	}

	users := os.Getenv(key + "_USERS")
	if users == "" {
		return false
	}
	id := strconv.FormatInt(principal.UserID, 10)
	for _, u := range strings.Split(users, ",") {
		if strings.TrimSpace(u) == id {
			return true
		}
	}
	return false
}

// StaticProvider is a fixed feature set, used in tests
type StaticProvider map[string]bool

// Enabled implements Provider
func (s StaticProvider) Enabled(name string, _ models.Principal) bool {
	return s[name]
}
