package jwt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/fieldstock-api/pkg/jwt"
)

const secret = "test-secret-key-for-unit-tests"

func TestGenerateAndParse(t *testing.T) {
	tok, err := jwt.Generate(secret, "staff-1", "client-1", "promoter", "fieldstock-api-test", 60)
	require.NoError(t, err)

	userID, clientID, role, err := jwt.Parse(secret, tok)
	require.NoError(t, err)
	assert.Equal(t, "staff-1", userID)
	assert.Equal(t, "client-1", clientID)
	assert.Equal(t, "promoter", role)
}

func TestParse_Rechazos(t *testing.T) {
	valid, err := jwt.Generate(secret, "staff-1", "client-1", "admin", "fieldstock-api-test", 60)
	require.NoError(t, err)
	expired, err := jwt.Generate(secret, "staff-1", "client-1", "admin", "fieldstock-api-test", -1)
	require.NoError(t, err)

	cases := map[string]struct{ secret, token string }{
		"expirado":         {secret, expired},
		"otro secret":      {"otro-secret-completamente-distinto", valid},
		"secret vacío":     {"", valid},
		"token malformado": {secret, "no.es.jwt"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, _, _, err := jwt.Parse(tc.secret, tc.token)
			assert.Error(t, err)
		})
	}

	_, err = jwt.Generate("", "staff-1", "client-1", "admin", "x", 60)
	assert.Error(t, err, "no se firma sin secret")
}
