package features

import (
	"os"
	"testing"

	"github.com/freshroots/admin-service/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestEnvProviderGlobalToggle(t *testing.T) {
	os.Setenv("FEATURE_CUSTOMER_BALANCE", "true")
	defer os.Unsetenv("FEATURE_CUSTOMER_BALANCE")

	p := EnvProvider{}
	assert.True(t, p.Enabled(CustomerBalance, models.Principal{UserID: 1}))
	assert.False(t, p.Enabled(AdminStyleV3, models.Principal{UserID: 1}))
}

func TestEnvProviderOffByDefault(t *testing.T) {
	assert.False(t, EnvProvider{}.Enabled(CustomerBalance, models.Principal{UserID: 1}))
}

func TestEnvProviderPerUserList(t *testing.T) {
	os.Setenv("FEATURE_CUSTOMER_BALANCE_USERS", "3, 7,12")
	defer os.Unsetenv("FEATURE_CUSTOMER_BALANCE_USERS")

	p := EnvProvider{}
	assert.True(t, p.Enabled(CustomerBalance, models.Principal{UserID: 7}))
	assert.False(t, p.Enabled(CustomerBalance, models.Principal{UserID: 8}))
}

func TestStaticProvider(t *testing.T) {
	p := StaticProvider{CustomerBalance: true}
	assert.True(t, p.Enabled(CustomerBalance, models.Principal{}))
	assert.False(t, p.Enabled(AdminStyleV3, models.Principal{}))
}
