package email

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

type captureSender struct {
	sent []*gomail.Message
	err  error
}

func (c *captureSender) DialAndSend(m ...*gomail.Message) error {
	c.sent = append(c.sent, m...)
	return c.err
}

func TestSend(t *testing.T) {
	sender := &captureSender{}
	svc := NewSMTPServiceWithSender(sender, "clinic@example.com")

	require.NoError(t, svc.Send(context.Background(), "pat@example.com", "Booked", "See you soon"))
	require.Len(t, sender.sent, 1)

	m := sender.sent[0]
	assert.Equal(t, []string{"clinic@example.com"}, m.GetHeader("From"))
	assert.Equal(t, []string{"pat@example.com"}, m.GetHeader("To"))
	assert.Equal(t, []string{"Booked"}, m.GetHeader("Subject"))

	var buf bytes.Buffer
	_, err := m.WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "See you soon")
}

func TestSendWrapsTransportError(t *testing.T) {
	sender := &captureSender{err: errors.New("connection refused")}
	svc := NewSMTPServiceWithSender(sender, "clinic@example.com")

	err := svc.Send(context.Background(), "pat@example.com", "Booked", "body")
	assert.ErrorContains(t, err, "connection refused")
}

func TestSendHonoursCancelledContext(t *testing.T) {
	sender := &captureSender{}
	svc := NewSMTPServiceWithSender(sender, "clinic@example.com")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, svc.Send(ctx, "pat@example.com", "s", "b"), context.Canceled)
	assert.Empty(t, sender.sent)
}

func TestLogServiceNeverFails(t *testing.T) {
	var svc Service = LogService{}
	assert.NoError(t, svc.Send(context.Background(), "pat@example.com", "Booked", "body"))
}
