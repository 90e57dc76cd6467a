package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	c := Config{}
	c.Source.BearerToken = "token"
	c.Source.Account = "someaccount"
	c.Telegram.Token = "bot-token"
	c.Telegram.ChatID = -100123
	c.FillDefaults()
	return c
}

func TestFillDefaults(t *testing.T) {
	c := validConfig()
	assert.Equal(t, "info", c.App.LogLevel)
	assert.Equal(t, 5, c.Source.MaxResults)
	assert.Equal(t, "rich", c.Telegram.Format)
	assert.Equal(t, "file", c.Watermark.Backend)
	assert.Equal(t, "./watermark.yaml", c.Watermark.Path)
	assert.Equal(t, "@every 30m", c.Poll.Schedule)
	assert.Equal(t, "2s", c.Delivery.Pace)
}

func TestValidateOK(t *testing.T) {
	c := validConfig()
	require.NoError(t, c.Validate())
}

func TestValidateMissingRequired(t *testing.T) {
	c := validConfig()
	c.Source.BearerToken = ""
	c.Telegram.ChatID = 0
	err := c.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "source.bearer_token")
	assert.Contains(t, err.Error(), "telegram.chat_id")
}

func TestValidateRejectsBadValues(t *testing.T) {
	t.Run("unknown watermark backend", func(t *testing.T) {
		c := validConfig()
		c.Watermark.Backend = "etcd"
		assert.Error(t, c.Validate())
	})
	t.Run("sqlite backend without path", func(t *testing.T) {
		c := validConfig()
		c.Watermark.Backend = "sqlite"
		c.Watermark.Path = ""
		assert.Error(t, c.Validate())
	})
	t.Run("bad format", func(t *testing.T) {
		c := validConfig()
		c.Telegram.Format = "markdown"
		assert.Error(t, c.Validate())
	})
	t.Run("bad duration", func(t *testing.T) {
		c := validConfig()
		c.Delivery.Pace = "soon"
		assert.Error(t, c.Validate())
	})
	t.Run("negative max_results", func(t *testing.T) {
		c := validConfig()
		c.Source.MaxResults = -1
		assert.Error(t, c.Validate())
	})
}
