package email

import (
	"errors"
	"strings"
	"testing"

	"github.com/cmlabs-hris/workforce-backend-go/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

type fakeSender struct {
	fails    int
	calls    int
	messages []*gomail.Message
}

func (f *fakeSender) DialAndSend(m ...*gomail.Message) error {
	f.calls++
	if f.calls <= f.fails {
		return errors.New("connection refused")
	}
	f.messages = append(f.messages, m...)
	return nil
}

func newTestService(t *testing.T, sender Sender) *emailServiceImpl {
	svc, err := NewEmailServiceWithSender(config.SMTPConfig{From: "hr@example.com", InviteBaseURL: "https://app/login"}, sender)
	require.NoError(t, err)
	impl := svc.(*emailServiceImpl)
	impl.backoff = 0
	return impl
}

func TestSendInvitation_RendersTemplate(t *testing.T) {
	sender := &fakeSender{}
	svc := newTestService(t, sender)

	sent, err := svc.SendInvitation("ana@example.com", InvitationData{
		FullName:          "Ana",
		OrganizationName:  "Acme",
		Email:             "ana@example.com",
		TemporaryPassword: "Xy12-abcd",
	})
	require.NoError(t, err)
	assert.True(t, sent)
	require.Len(t, sender.messages, 1)

	m := sender.messages[0]
	assert.Equal(t, []string{"ana@example.com"}, m.GetHeader("To"))
	assert.Equal(t, []string{"Bienvenido a Acme"}, m.GetHeader("Subject"))

	var buf strings.Builder
	_, err = m.WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Xy12-abcd")
	assert.Contains(t, buf.String(), "https://app/login")
}

func TestSendInvitation_RetriesThenSucceeds(t *testing.T) {
	sender := &fakeSender{fails: 2}
	svc := newTestService(t, sender)

	sent, err := svc.SendInvitation("ana@example.com", InvitationData{FullName: "Ana"})
	require.NoError(t, err)
	assert.True(t, sent)
	assert.Equal(t, 3, sender.calls)
}

func TestSendTemporaryPassword_GivesUpAfterRetries(t *testing.T) {
	sender := &fakeSender{fails: 10}
	svc := newTestService(t, sender)

	sent, err := svc.SendTemporaryPassword("ana@example.com", TemporaryPasswordData{FullName: "Ana"})
	assert.Error(t, err)
	assert.False(t, sent)
	assert.Equal(t, maxRetries, sender.calls)
}

func TestSend_SkippedWithoutSMTP(t *testing.T) {
	svc, err := NewEmailService(config.SMTPConfig{})
	require.NoError(t, err)

	sent, err := svc.SendInvitation("ana@example.com", InvitationData{FullName: "Ana"})
	assert.NoError(t, err)
	assert.False(t, sent)
}
