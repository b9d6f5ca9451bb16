package mailer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/inboxmesh/core"
)

func TestBuildMessage(t *testing.T) {
	draft := core.Draft{
		ID:      "d1",
		To:      "alice@example.com",
		Subject: "Re: Q4 numbers",
		Content: "Looks good, ship it.",
	}

	msg, err := buildMessage("me@example.com", draft)
	require.NoError(t, err)

	body := string(msg)
	assert.Contains(t, body, "From: <me@example.com>")
	assert.Contains(t, body, "To: <alice@example.com>")
	assert.Contains(t, body, "Subject: Re: Q4 numbers")
	assert.Contains(t, body, "Looks good, ship it.")
}

func TestNewSMTPMailerDefaults(t *testing.T) {
	m := NewSMTPMailer("smtp.example.com", 587, "user", "pass")
	assert.True(t, m.opts.StartTLS)
	assert.False(t, m.opts.SSL)

	m = NewSMTPMailer("smtp.example.com", 465, "user", "pass", func(o *Options) {
		o.SSL = true
	})
	assert.True(t, m.opts.SSL)
}
