package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndParse(t *testing.T) {
	pair, err := Issue("FAC01", "faculty", "Prof. Iyer", "campuserp", "test-key", time.Hour, 24*time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)

	claims, err := Parse(pair.AccessToken, "test-key", "campuserp")
	require.NoError(t, err)
	assert.Equal(t, "FAC01", claims.Subject)
	assert.Equal(t, "faculty", claims.Role)
	assert.Equal(t, "Prof. Iyer", claims.Name)
}

func TestParseRejectsWrongKey(t *testing.T) {
	pair, err := Issue("FAC01", "faculty", "", "campuserp", "test-key", time.Hour, 24*time.Hour)
	require.NoError(t, err)

	_, err = Parse(pair.AccessToken, "other-key", "campuserp")
	assert.Error(t, err)
}

func TestParseRejectsIssuerMismatch(t *testing.T) {
	pair, err := Issue("FAC01", "faculty", "", "other-issuer", "test-key", time.Hour, 24*time.Hour)
	require.NoError(t, err)

	_, err = Parse(pair.AccessToken, "test-key", "campuserp")
	assert.Error(t, err)
}

func TestParseRejectsExpiredToken(t *testing.T) {
	pair, err := Issue("FAC01", "faculty", "", "campuserp", "test-key", -time.Minute, time.Hour)
	require.NoError(t, err)

	_, err = Parse(pair.AccessToken, "test-key", "campuserp")
	assert.Error(t, err)
}
