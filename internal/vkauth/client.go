package vkauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/edgard/vkbot/internal/logger"
)

const (
	// DefaultBaseURL is the VK OAuth host.
	DefaultBaseURL = "https://oauth.vk.com"
	// DefaultAPIVersion is sent as the v parameter.
	DefaultAPIVersion = "5.131"

	maxInteractiveRounds = 3
	maxResponseSize      = 1 << 20
)

// Client performs direct authorization for one user account.
type Client struct {
	app        AppCredentials
	auth       Credentials
	baseURL    string
	apiVersion string
	httpClient *http.Client
	prompter   Prompter
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the OAuth host.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithAPIVersion overrides the API version parameter.
func WithAPIVersion(v string) Option {
	return func(c *Client) { c.apiVersion = v }
}

// WithHTTPClient sets the HTTP client used for token requests.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

// WithTimeout sets the timeout of each token request.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient = &http.Client{Timeout: d} }
}

// WithPrompter enables the interactive exchange.
func WithPrompter(p Prompter) Option {
	return func(c *Client) { c.prompter = p }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient creates a client for the application and user credentials.
func NewClient(app AppCredentials, auth Credentials, opts ...Option) *Client {
	c := &Client{
		app:        app,
		auth:       auth,
		baseURL:    DefaultBaseURL,
		apiVersion: DefaultAPIVersion,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("component", "vk_auth", "username", c.auth.Username())
	return c
}

// AuthorizeUser exchanges the user credentials for an access token with the
// requested scope. When VK asks for a confirmation code or a captcha and a
// prompter is configured, the operator is asked and the request repeated.
func (c *Client) AuthorizeUser(ctx context.Context, scope string) (*Token, error) {
	params := url.Values{}
	params.Set("grant_type", "password")
	params.Set("client_id", c.app.ClientID)
	params.Set("client_secret", c.app.ClientSecret)
	params.Set("username", c.auth.Username())
	params.Set("password", c.auth.Password)
	params.Set("scope", ExpandScope(scope))
	params.Set("v", c.apiVersion)
	params.Set("2fa_supported", "1")

	for round := 0; ; round++ {
		c.logger.DebugContext(ctx, "Requesting access token", "round", round)

		token, err := c.requestToken(ctx, params)
		if err == nil {
			c.logger.InfoContext(ctx, "Access token received", "user_id", token.UserID, "expires_in", token.ExpiresIn)
			return token, nil
		}

		var apiErr *APIError
		if !errors.As(err, &apiErr) || c.prompter == nil {
			return nil, err
		}
		if !apiErr.NeedsValidation() && !apiErr.NeedsCaptcha() {
			return nil, err
		}
		if round >= maxInteractiveRounds {
			return nil, fmt.Errorf("%w: %w", ErrTooManyRounds, err)
		}

		switch {
		case apiErr.NeedsCaptcha():
			c.logger.InfoContext(ctx, "Captcha required", "captcha_img", apiErr.CaptchaImg)
			answer, err := c.prompter.Prompt(ctx, "Enter the text from the captcha "+apiErr.CaptchaImg)
			if err != nil {
				return nil, fmt.Errorf("failed to get captcha answer: %w", err)
			}
			params.Set("captcha_sid", apiErr.CaptchaSID)
			params.Set("captcha_key", answer)
		default:
			c.logger.InfoContext(ctx, "Confirmation code required", "validation_type", apiErr.ValidationType, "phone_mask", apiErr.PhoneMask)
			question := "Enter the confirmation code"
			if apiErr.PhoneMask != "" {
				question += " sent to " + apiErr.PhoneMask
			}
			code, err := c.prompter.Prompt(ctx, question)
			if err != nil {
				return nil, fmt.Errorf("failed to get confirmation code: %w", err)
			}
			params.Set("code", code)
		}
	}
}

type tokenResponse struct {
	Token
	APIError
}

func (c *Client) requestToken(ctx context.Context, params url.Values) (*Token, error) {
	endpoint := c.baseURL + "/token?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build token request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// url.Error would echo the password from the query string
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return nil, fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read token response: %w", err)
	}

	var parsed tokenResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode token response (status %d): %w", resp.StatusCode, err)
	}

	if parsed.Code != "" {
		apiErr := parsed.APIError
		return nil, &apiErr
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected token response status %d", resp.StatusCode)
	}
	if parsed.AccessToken == "" {
		return nil, ErrNoAccessToken
	}

	token := parsed.Token
	return &token, nil
}
