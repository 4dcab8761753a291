// Package vkauth implements VK direct user authorization, including the
// interactive two-factor and captcha exchanges.
package vkauth

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoAccessToken is returned when the token endpoint answers without an access token.
var ErrNoAccessToken = errors.New("response contains no access token")

// ErrTooManyRounds is returned when the interactive exchange does not converge.
var ErrTooManyRounds = errors.New("too many interactive authorization rounds")

// AppCredentials identify the VK application.
type AppCredentials struct {
	ClientID     string
	ClientSecret string
}

// Credentials identify the user account the bot acts for.
type Credentials struct {
	Login    string
	Phone    string
	Password string
}

// Username is the login sent to VK, falling back to the phone number.
func (c Credentials) Username() string {
	if c.Login != "" {
		return c.Login
	}
	return c.Phone
}

// Token is a successful token endpoint response.
type Token struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
	UserID      int64  `json:"user_id"`
}

// APIError is an error response of the token endpoint.
type APIError struct {
	Code           string `json:"error"`
	Description    string `json:"error_description"`
	ValidationType string `json:"validation_type"`
	ValidationSID  string `json:"validation_sid"`
	PhoneMask      string `json:"phone_mask"`
	CaptchaSID     string `json:"captcha_sid"`
	CaptchaImg     string `json:"captcha_img"`
}

func (e *APIError) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("vk auth error %s: %s", e.Code, e.Description)
	}
	return "vk auth error " + e.Code
}

// Error codes the client reacts to.
const (
	CodeNeedValidation = "need_validation"
	CodeNeedCaptcha    = "need_captcha"
	CodeInvalidClient  = "invalid_client"
)

// NeedsValidation reports whether a second factor code is required.
func (e *APIError) NeedsValidation() bool {
	return e.Code == CodeNeedValidation
}

// NeedsCaptcha reports whether a captcha answer is required.
func (e *APIError) NeedsCaptcha() bool {
	return e.Code == CodeNeedCaptcha && e.CaptchaSID != ""
}

// allScopes is the permission list requested for the "all" scope.
var allScopes = []string{
	"notify", "friends", "photos", "audio", "video", "stories", "pages",
	"status", "notes", "messages", "wall", "offline", "docs", "groups",
	"notifications", "stats", "email", "market",
}

// ExpandScope turns "all" into the full permission list and passes other values through.
func ExpandScope(scope string) string {
	if strings.EqualFold(strings.TrimSpace(scope), "all") {
		return strings.Join(allScopes, ",")
	}
	return scope
}
