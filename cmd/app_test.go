package cmd

import (
	"github.com/stretchr/testify/assert"
	"os"
	"path/filepath"
	"testing"
)

func TestRunMissingToken(t *testing.T) {
	t.Setenv("WIKIBOT_BOT_TOKEN", "")
	t.Setenv("BOT_API_KEY", "")
	app := New()
	err := app.Run([]string{"wikibot", "--config", writeConfigFile(t, "bot-name: wikibot\n")})
	assert.EqualError(t, err, "missing bot token, pass --bot-token, set WIKIBOT_BOT_TOKEN env variable or bot-token config option")
}

func TestRunConfigFileDoesNotExist(t *testing.T) {
	app := New()
	configFile := filepath.Join(t.TempDir(), "does-not-exist.yml")
	err := app.Run([]string{"wikibot", "--config", configFile})
	assert.EqualError(t, err, "config file "+configFile+" does not exist")
}

func TestRunSendTimeoutTooLow(t *testing.T) {
	app := New()
	err := app.Run([]string{"wikibot", "--bot-token", "mem", "--send-timeout", "100ms"})
	assert.EqualError(t, err, "send timeout has to be at least one second")
}

func TestRunSendTimeoutTooLowFromConfigFile(t *testing.T) {
	app := New()
	configFile := writeConfigFile(t, "bot-token: mem\nsend-timeout: 500ms\n")
	err := app.Run([]string{"wikibot", "--config", configFile})
	assert.EqualError(t, err, "send timeout has to be at least one second")
}

func TestRunEmptyBotName(t *testing.T) {
	app := New()
	err := app.Run([]string{"wikibot", "--bot-token", "mem", "--bot-name", ""})
	assert.EqualError(t, err, "bot name must not be empty, check --bot-name or WIKIBOT_BOT_NAME")
}

func TestRunMaxPendingMessagesInvalid(t *testing.T) {
	app := New()
	err := app.Run([]string{"wikibot", "-t", "mem", "-P", "0"})
	assert.EqualError(t, err, "max pending messages must be at least 1")
}

func writeConfigFile(t *testing.T, contents string) string {
	configFile := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(configFile, []byte(contents), 0600); err != nil {
		t.Fatal(err)
	}
	return configFile
}
