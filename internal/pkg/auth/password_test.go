package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/storefront-backend/internal/config"
)

func testPasswordManager() *PasswordManager {
	return NewPasswordManager(&config.Config{
		Security: config.SecurityConfig{BcryptCost: 4},
	})
}

func TestValidatePasswordAcceptsStrongPassword(t *testing.T) {
	pm := testPasswordManager()

	assert.NoError(t, pm.ValidatePassword("Tr0ub4dor&x"))
}

func TestValidatePasswordRejectsWeakInputs(t *testing.T) {
	pm := testPasswordManager()

	cases := map[string]string{
		"too short":          "Ab1!",
		"no uppercase":       "tr0ub4dor&x",
		"no lowercase":       "TR0UB4DOR&X",
		"no number":          "Troubador&xY",
		"no special":         "Tr0ub4dorxY",
		"sequential letters": "Abcdz9!mKw",
		"sequential digits":  "Zx123!mKwQ",
		"repeated runes":     "Zxaaa9!mKw",
		"common word":        "MyPassword9!",
	}

	for name, password := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, pm.ValidatePassword(password))
		})
	}
}

func TestHashAndVerifyPassword(t *testing.T) {
	pm := testPasswordManager()

	hash, err := pm.HashPassword("Tr0ub4dor&x")
	require.NoError(t, err)
	require.NotEqual(t, "Tr0ub4dor&x", hash)

	assert.NoError(t, pm.VerifyPassword("Tr0ub4dor&x", hash))
	assert.Error(t, pm.VerifyPassword("wrong-guess", hash))
}

func TestHashPasswordRejectsWeakPassword(t *testing.T) {
	pm := testPasswordManager()

	_, err := pm.HashPassword("short")
	assert.Error(t, err)
}
