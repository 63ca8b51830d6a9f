package auth

import "golang.org/x/oauth2/clientcredentials"

// Conf represents the configuration needed for the client credentials flow.
// It includes the client ID, client secret, and the token URL.
type Conf struct {
	ClientID     string `json:"client_id" yaml:"client_id"`
	ClientSecret string `json:"client_secret" yaml:"client_secret"`
	AuthURL      string `json:"auth_url" yaml:"auth_url"`
}

func (c *Conf) toOauth2Config() clientcredentials.Config {
	return clientcredentials.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		TokenURL:     c.AuthURL,
	}
}
