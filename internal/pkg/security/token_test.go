package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CareNestHQ/CareNest/app/models"
)

func TestIssueAndParseAccessToken(t *testing.T) {
	user := &models.User{
		ID:   7,
		Name: "Carla",
		Role: models.ROLE_GIVER,
	}

	token, err := IssueAccessToken(user, "test-secret")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ParseAccessToken(token, "test-secret")
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "Carla", claims.Name)
	assert.Equal(t, models.ROLE_GIVER, claims.Role)
	assert.Equal(t, "7", claims.Subject)
	require.NotNil(t, claims.ExpiresAt)
	assert.True(t, claims.ExpiresAt.After(claims.IssuedAt.Time))
}

func TestIssueAccessToken_RequiresSecret(t *testing.T) {
	_, err := IssueAccessToken(&models.User{ID: 1}, "")
	assert.Error(t, err)
}

func TestParseAccessToken_WrongSecret(t *testing.T) {
	token, err := IssueAccessToken(&models.User{ID: 1, Name: "x"}, "secret-a")
	require.NoError(t, err)

	_, err = ParseAccessToken(token, "secret-b")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseAccessToken_Garbage(t *testing.T) {
	_, err := ParseAccessToken("not.a.token", "secret")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseAccessToken_ZeroUserID(t *testing.T) {
	token, err := IssueAccessToken(&models.User{ID: 0, Name: "ghost"}, "secret")
	require.NoError(t, err)

	_, err = ParseAccessToken(token, "secret")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
