package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEnvOrFallsBackOnEmpty(t *testing.T) {
	t.Setenv("ANTKEEPER_TEST_VAR", "")
	assert.Equal(t, "fallback", EnvOr("ANTKEEPER_TEST_VAR", "fallback"))

	t.Setenv("ANTKEEPER_TEST_VAR", "set")
	assert.Equal(t, "set", EnvOr("ANTKEEPER_TEST_VAR", "fallback"))
}

func TestEnvIntOrParsesOrFallsBack(t *testing.T) {
	t.Setenv("ANTKEEPER_TEST_INT", "42")
	assert.Equal(t, 42, EnvIntOr("ANTKEEPER_TEST_INT", 7))

	t.Setenv("ANTKEEPER_TEST_INT", "not-a-number")
	assert.Equal(t, 7, EnvIntOr("ANTKEEPER_TEST_INT", 7))

	os.Unsetenv("ANTKEEPER_TEST_INT")
	assert.Equal(t, 7, EnvIntOr("ANTKEEPER_TEST_INT", 7))
}

func TestCooldownReadsFreshEachCall(t *testing.T) {
	t.Setenv("COOLDOWN_SECONDS", "5")
	assert.Equal(t, 5*time.Second, Cooldown())

	t.Setenv("COOLDOWN_SECONDS", "1")
	assert.Equal(t, 1*time.Second, Cooldown())
}

func TestBotCredentialsReportsMissing(t *testing.T) {
	t.Setenv("BOT_TOKEN", "")
	t.Setenv("BOT_USER_ID", "")
	_, _, missing := BotCredentials()
	assert.ElementsMatch(t, []string{"BOT_TOKEN", "BOT_USER_ID"}, missing)

	t.Setenv("BOT_TOKEN", "tok")
	t.Setenv("BOT_USER_ID", "U1")
	token, userID, missing := BotCredentials()
	assert.Empty(t, missing)
	assert.Equal(t, "tok", token)
	assert.Equal(t, "U1", userID)
}
