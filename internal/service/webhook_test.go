package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gptyar/telegram-relay/internal/telegram"
	relayerr "github.com/gptyar/telegram-relay/pkg/errors"
	"github.com/gptyar/telegram-relay/pkg/logger"
)

type registration struct {
	url    string
	secret string
}

type fakeRegistrar struct {
	calls []registration
	resp  *telegram.Response
	err   error
}

func (r *fakeRegistrar) SetWebhook(ctx context.Context, callbackURL, secretToken string) (*telegram.Response, error) {
	r.calls = append(r.calls, registration{url: callbackURL, secret: secretToken})
	if r.err != nil {
		return nil, r.err
	}
	if r.resp != nil {
		return r.resp, nil
	}
	return &telegram.Response{OK: true}, nil
}

func TestRegisterWithoutTokenMakesNoCall(t *testing.T) {
	reg := &fakeRegistrar{}
	svc := NewWebhookService(reg, WebhookConfig{}, logger.NewNop())

	_, err := svc.Register(context.Background(), "https://relay.example.com")
	require.Error(t, err)
	assert.True(t, relayerr.IsConfiguration(err))
	assert.Equal(t, 400, relayerr.HTTPStatus(err))
	assert.Contains(t, err.Error(), "not set")
	assert.Empty(t, reg.calls)
}

func TestRegisterUsesOriginAndSecret(t *testing.T) {
	reg := &fakeRegistrar{}
	svc := NewWebhookService(reg, WebhookConfig{BotToken: "t", Secret: "s3cret"}, logger.NewNop())

	resp, err := svc.Register(context.Background(), "https://relay.example.com")
	require.NoError(t, err)
	assert.True(t, resp.OK)
	assert.Equal(t, []registration{{url: "https://relay.example.com", secret: "s3cret"}}, reg.calls)
}

func TestRegisterPublicURLOverridesOrigin(t *testing.T) {
	reg := &fakeRegistrar{}
	svc := NewWebhookService(reg, WebhookConfig{BotToken: "t", PublicURL: "https://bot.example.org/"}, logger.NewNop())

	_, err := svc.Register(context.Background(), "http://10.0.0.3:8080")
	require.NoError(t, err)
	assert.Equal(t, "https://bot.example.org", reg.calls[0].url)
}

func TestRegisterIsIdempotent(t *testing.T) {
	reg := &fakeRegistrar{}
	svc := NewWebhookService(reg, WebhookConfig{BotToken: "t"}, logger.NewNop())

	for i := 0; i < 2; i++ {
		resp, err := svc.Register(context.Background(), "https://relay.example.com")
		require.NoError(t, err)
		assert.True(t, resp.OK)
	}
	require.Len(t, reg.calls, 2)
	assert.Equal(t, reg.calls[0], reg.calls[1])
}

func TestRegisterRejected(t *testing.T) {
	reg := &fakeRegistrar{resp: &telegram.Response{OK: false, ErrorCode: 400, Description: "Bad Request: bad webhook"}}
	svc := NewWebhookService(reg, WebhookConfig{BotToken: "t"}, logger.NewNop())

	resp, err := svc.Register(context.Background(), "http://insecure")
	require.Error(t, err)
	assert.True(t, relayerr.HasCode(err, relayerr.CodeWebhookRejected))
	assert.Equal(t, 500, relayerr.HTTPStatus(err))
	require.NotNil(t, resp)
	assert.False(t, resp.OK)
}

func TestRegisterNetworkFailure(t *testing.T) {
	reg := &fakeRegistrar{err: errors.New("dial tcp: connection refused")}
	svc := NewWebhookService(reg, WebhookConfig{BotToken: "t"}, logger.NewNop())

	resp, err := svc.Register(context.Background(), "https://relay.example.com")
	require.Error(t, err)
	assert.Nil(t, resp)
	assert.True(t, relayerr.HasCode(err, relayerr.CodeWebhookRegisterFailure))
	assert.Len(t, reg.calls, 1)
}
