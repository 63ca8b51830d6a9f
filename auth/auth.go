package auth

import (
	"context"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// HeaderSetter injects credentials into outgoing API requests. Providers
// accept any implementation so long-lived tokens and OAuth2 flows are
// interchangeable.
type HeaderSetter interface {
	SetAuthHeader(r *http.Request) error
}

// StaticToken authorizes requests with a fixed bearer token, such as a
// Home Assistant long-lived access token.
type StaticToken string

// SetAuthHeader sets the Authorization header on the request.
func (t StaticToken) SetAuthHeader(r *http.Request) error {
	if t == "" {
		return fmt.Errorf("auth: empty bearer token")
	}
	r.Header.Set("Authorization", "Bearer "+string(t))
	return nil
}

// ClientCred obtains tokens through the OAuth2 client credentials flow and
// refreshes them when they expire.
type ClientCred struct {
	conf  clientcredentials.Config
	token *oauth2.Token
}

func NewClientCred(conf Conf) *ClientCred {
	return &ClientCred{
		conf: conf.toOauth2Config(),
	}
}

// GetToken retrieves a valid access token. If the current token is valid, it
// returns the existing token. Otherwise it requests a new one using the
// client credentials configuration.
func (c *ClientCred) GetToken() (string, error) {
	if c.token != nil && c.token.Valid() {
		return c.token.AccessToken, nil
	}
	if err := c.getToken(); err != nil {
		return "", err
	}
	return c.token.AccessToken, nil
}

func (c *ClientCred) getToken() error {
	var err error
	c.token, err = c.conf.Token(context.Background())
	if err != nil {
		return fmt.Errorf("failed to get token: %w", err)
	}
	return nil
}

// ForceRefresh discards the cached token and retrieves a new one.
func (c *ClientCred) ForceRefresh() (string, error) {
	var err error
	c.token, err = c.conf.Token(context.Background())
	if err != nil {
		return "", fmt.Errorf("failed to get token: %w", err)
	}

	return c.token.AccessToken, nil
}

// SetAuthHeader sets the Authorization header, fetching a token first when
// the cached one is missing or expired.
func (c *ClientCred) SetAuthHeader(r *http.Request) error {
	if c.token != nil && c.token.Valid() {
		c.token.SetAuthHeader(r)
		return nil
	}

	if err := c.getToken(); err != nil {
		return err
	}
	c.token.SetAuthHeader(r)
	return nil
}
