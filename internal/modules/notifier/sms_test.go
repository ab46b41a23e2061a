package notifier

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"newera.app/reentry/pkg/apperror"
)

func TestE164(t *testing.T) {
	assert.Equal(t, "+15551234567", E164("5551234567"))
	assert.Equal(t, "+15551234567", E164("15551234567"))
	assert.Equal(t, "+445551234567", E164("+445551234567"))
}

func TestTwilioGatewaySend(t *testing.T) {
	var gotPath, gotUser, gotPass string
	var form map[string][]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUser, gotPass, _ = r.BasicAuth()
		require.NoError(t, r.ParseForm())
		form = r.PostForm
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"sid":"SM123","status":"queued"}`))
	}))
	defer srv.Close()

	gw := NewTwilioGateway(TwilioConfig{BaseURL: srv.URL, AccountSID: "AC1", AuthToken: "secret"})
	err := gw.Send(context.Background(), "4125550000", "5551234567", "hello there")
	require.NoError(t, err)

	assert.Equal(t, "/2010-04-01/Accounts/AC1/Messages.json", gotPath)
	assert.Equal(t, "AC1", gotUser)
	assert.Equal(t, "secret", gotPass)
	assert.Equal(t, "+14125550000", form["From"][0])
	assert.Equal(t, "+15551234567", form["To"][0])
	assert.Equal(t, "hello there", form["Body"][0])
}

func TestTwilioGatewayRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":21211,"message":"The 'To' number is not a valid phone number.","status":400}`))
	}))
	defer srv.Close()

	gw := NewTwilioGateway(TwilioConfig{BaseURL: srv.URL, AccountSID: "AC1", AuthToken: "secret"})
	err := gw.Send(context.Background(), "4125550000", "123", "hello")

	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrTransport)
	assert.Contains(t, err.Error(), "not a valid phone number")
}
