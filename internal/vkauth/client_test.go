package vkauth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPrompter struct {
	answers   []string
	questions []string
	err       error
}

func (p *stubPrompter) Prompt(_ context.Context, question string) (string, error) {
	p.questions = append(p.questions, question)
	if p.err != nil {
		return "", p.err
	}
	if len(p.answers) == 0 {
		return "", ErrPromptClosed
	}
	answer := p.answers[0]
	p.answers = p.answers[1:]
	return answer, nil
}

func newTestClient(srv *httptest.Server, opts ...Option) *Client {
	opts = append([]Option{WithBaseURL(srv.URL), WithHTTPClient(srv.Client())}, opts...)
	return NewClient(
		AppCredentials{ClientID: "2274003", ClientSecret: "app-secret"},
		Credentials{Login: "user@example.com", Phone: "+70000000000", Password: "pass"},
		opts...,
	)
}

func TestAuthorizeUserSuccess(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "/token", r.URL.Path)
		assert.Equal(t, "password", q.Get("grant_type"))
		assert.Equal(t, "2274003", q.Get("client_id"))
		assert.Equal(t, "app-secret", q.Get("client_secret"))
		assert.Equal(t, "user@example.com", q.Get("username"))
		assert.Equal(t, "pass", q.Get("password"))
		assert.Contains(t, q.Get("scope"), "offline")
		assert.Equal(t, DefaultAPIVersion, q.Get("v"))
		assert.Equal(t, "1", q.Get("2fa_supported"))
		_, _ = w.Write([]byte(`{"access_token":"T2","expires_in":0,"user_id":42}`))
	}))
	defer srv.Close()

	token, err := newTestClient(srv).AuthorizeUser(context.Background(), "all")
	require.NoError(t, err)
	assert.Equal(t, &Token{AccessToken: "T2", UserID: 42}, token)
}

func TestAuthorizeUserAPIError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"invalid_client","error_description":"Username or password is incorrect"}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv, WithPrompter(&stubPrompter{})).AuthorizeUser(context.Background(), "all")
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, CodeInvalidClient, apiErr.Code)
	assert.Contains(t, err.Error(), "Username or password is incorrect")
}

func TestAuthorizeUserTwoFactor(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.URL.Query().Get("code") != "123456" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"need_validation","validation_type":"2fa_sms","phone_mask":"+7 *** *** ** 00"}`))
			return
		}
		_, _ = w.Write([]byte(`{"access_token":"T3","user_id":7}`))
	}))
	defer srv.Close()

	p := &stubPrompter{answers: []string{"123456"}}
	token, err := newTestClient(srv, WithPrompter(p)).AuthorizeUser(context.Background(), "all")
	require.NoError(t, err)
	assert.Equal(t, "T3", token.AccessToken)
	assert.Equal(t, int32(2), calls.Load())
	require.Len(t, p.questions, 1)
	assert.Contains(t, p.questions[0], "+7 *** *** ** 00")
}

func TestAuthorizeUserCaptcha(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("captcha_sid") != "sid-1" || q.Get("captcha_key") != "abc" {
			_, _ = w.Write([]byte(`{"error":"need_captcha","captcha_sid":"sid-1","captcha_img":"https://vk.com/captcha.php?sid=sid-1"}`))
			return
		}
		_, _ = w.Write([]byte(`{"access_token":"T4"}`))
	}))
	defer srv.Close()

	p := &stubPrompter{answers: []string{"abc"}}
	token, err := newTestClient(srv, WithPrompter(p)).AuthorizeUser(context.Background(), "all")
	require.NoError(t, err)
	assert.Equal(t, "T4", token.AccessToken)
	assert.Contains(t, p.questions[0], "captcha.php")
}

func TestAuthorizeUserWithoutPrompter(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error":"need_validation","validation_type":"2fa_app"}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv).AuthorizeUser(context.Background(), "all")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.True(t, apiErr.NeedsValidation())
}

func TestAuthorizeUserTooManyRounds(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error":"need_validation","validation_type":"2fa_sms"}`))
	}))
	defer srv.Close()

	p := &stubPrompter{answers: []string{"1", "2", "3", "4", "5"}}
	_, err := newTestClient(srv, WithPrompter(p)).AuthorizeUser(context.Background(), "all")
	assert.ErrorIs(t, err, ErrTooManyRounds)
	assert.Len(t, p.questions, maxInteractiveRounds)
}

func TestAuthorizeUserPromptFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error":"need_validation"}`))
	}))
	defer srv.Close()

	boom := errors.New("operator went away")
	_, err := newTestClient(srv, WithPrompter(&stubPrompter{err: boom})).AuthorizeUser(context.Background(), "all")
	assert.ErrorIs(t, err, boom)
}

func TestAuthorizeUserMalformedResponses(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{name: "empty token", status: http.StatusOK, body: `{"user_id":1}`, want: ErrNoAccessToken},
		{name: "not json", status: http.StatusOK, body: `<html>`},
		{name: "server error", status: http.StatusBadGateway, body: `{}`},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := newTestClient(srv).AuthorizeUser(context.Background(), "all")
			require.Error(t, err)
			if tt.want != nil {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
}

func TestRequestErrorDoesNotLeakPassword(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	_, err := newTestClient(srv).AuthorizeUser(context.Background(), "all")
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "pass")
	assert.NotContains(t, err.Error(), "app-secret")
}

func TestExpandScopeAndUsername(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "messages,offline", ExpandScope("messages,offline"))
	assert.True(t, strings.HasPrefix(ExpandScope("ALL"), "notify,"))

	assert.Equal(t, "login", Credentials{Login: "login", Phone: "+7"}.Username())
	assert.Equal(t, "+7", Credentials{Phone: "+7"}.Username())
}
