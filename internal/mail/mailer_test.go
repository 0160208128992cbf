package mail

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomstradingroom/funnel-server/internal/mail/resend"
	"github.com/tomstradingroom/funnel-server/internal/testutil"
)

type fakeResend struct {
	emails   []resend.SendEmailRequest
	contacts []resend.Contact
	audience []string
	conflict bool
}

func (f *fakeResend) handler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/emails":
			var req resend.SendEmailRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			f.emails = append(f.emails, req)
			w.Write([]byte(`{"id":"email_1"}`))
		case r.URL.Path == "/contacts" && r.Method == http.MethodPost:
			if f.conflict {
				w.WriteHeader(http.StatusConflict)
				w.Write([]byte(`{"message":"Contact already exists"}`))
				return
			}
			var contact resend.Contact
			require.NoError(t, json.NewDecoder(r.Body).Decode(&contact))
			f.contacts = append(f.contacts, contact)
			w.Write([]byte(`{"id":"contact_1"}`))
		case r.Method == http.MethodPatch:
			f.audience = append(f.audience, r.URL.Path)
			w.Write([]byte(`{}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
}

func newTestMailer(t *testing.T, f *fakeResend) *Mailer {
	t.Helper()

	srv := httptest.NewServer(f.handler(t))
	t.Cleanup(srv.Close)

	client := resend.NewClient("test-key", testutil.MakeNoopLogger(), resend.WithBaseURL(srv.URL))
	return NewMailer(client, "Tom's Trading Room <onboarding@resend.dev>", "aud_1", "tpl_cancel", "https://tomstradingroom.com", testutil.MakeNoopLogger())
}

func TestMailer_AddContact(t *testing.T) {
	f := &fakeResend{}
	m := newTestMailer(t, f)

	err := m.AddContact(context.Background(), "jane@example.com", "Jane", "Doe", "payment.succeeded")
	require.NoError(t, err)

	require.Len(t, f.contacts, 1)
	assert.Equal(t, "jane@example.com", f.contacts[0].Email)
	assert.Equal(t, "Jane", f.contacts[0].FirstName)
	assert.False(t, f.contacts[0].Unsubscribed)

	require.Len(t, f.audience, 1)
	assert.Equal(t, "/contacts/contact_1", f.audience[0])
}

func TestMailer_AddContact_ExistingIsSuccess(t *testing.T) {
	f := &fakeResend{conflict: true}
	m := newTestMailer(t, f)

	err := m.AddContact(context.Background(), "dup@example.com", "", "", "payment.succeeded")
	require.NoError(t, err)
	assert.Empty(t, f.audience)
}

func TestMailer_AddContact_MissingEmail(t *testing.T) {
	m := newTestMailer(t, &fakeResend{})
	require.Error(t, m.AddContact(context.Background(), "", "", "", "x"))
}

func TestMailer_SendWelcome(t *testing.T) {
	f := &fakeResend{}
	m := newTestMailer(t, f)

	require.NoError(t, m.SendWelcome(context.Background(), "jane@example.com", "Jane Doe"))

	require.Len(t, f.emails, 1)
	email := f.emails[0]
	assert.Equal(t, []string{"jane@example.com"}, email.To)
	assert.Equal(t, "Welcome to Tom's Trading Room!", email.Subject)
	assert.Contains(t, email.HTML, "Jane Doe")
}

func TestMailer_SendWelcome_EmptyNameFallsBack(t *testing.T) {
	f := &fakeResend{}
	m := newTestMailer(t, f)

	require.NoError(t, m.SendWelcome(context.Background(), "jane@example.com", ""))

	require.Len(t, f.emails, 1)
	assert.Contains(t, f.emails[0].HTML, "there")
}

func TestMailer_SendCancellation(t *testing.T) {
	f := &fakeResend{}
	m := newTestMailer(t, f)

	require.NoError(t, m.SendCancellation(context.Background(), "jane+test@example.com", "Jane"))

	require.Len(t, f.emails, 1)
	email := f.emails[0]
	require.NotNil(t, email.Template)
	assert.Equal(t, "tpl_cancel", email.Template.ID)
	assert.Equal(t, "Jane", email.Template.Variables["whopName"])
	assert.Equal(t, "https://tomstradingroom.com/api/unsubscribe?email=jane%2Btest%40example.com", email.Template.Variables["UNSUBSCRIBE_URL"])
}

func TestMailer_SendCancellation_MissingTemplate(t *testing.T) {
	client := resend.NewClient("test-key", testutil.MakeNoopLogger())
	m := NewMailer(client, "from@example.com", "", "", "https://tomstradingroom.com", testutil.MakeNoopLogger())

	require.Error(t, m.SendCancellation(context.Background(), "jane@example.com", "Jane"))
}

func TestMailer_SendRefund(t *testing.T) {
	f := &fakeResend{}
	m := newTestMailer(t, f)

	require.NoError(t, m.SendRefund(context.Background(), "jane@example.com", "Jane", "USD 99.00"))

	require.Len(t, f.emails, 1)
	assert.Equal(t, "Your Refund Has Been Processed", f.emails[0].Subject)
	assert.Contains(t, f.emails[0].HTML, "USD 99.00")
}

func TestMailer_SendMembershipExpired(t *testing.T) {
	f := &fakeResend{}
	m := newTestMailer(t, f)

	require.NoError(t, m.SendMembershipExpired(context.Background(), "jane@example.com", "Jane"))

	require.Len(t, f.emails, 1)
	assert.Equal(t, "Your Membership Has Expired - Reactivate Now", f.emails[0].Subject)
}
