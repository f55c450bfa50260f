package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/idlab-discover/carbonscope-cli/internal/catalog"
)

// Token is the response of POST /auth/login.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Registration is the JSON body of POST /auth/register.
type Registration struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name,omitempty"`
}

// Login exchanges credentials for a bearer token. The token is returned,
// not stored; persisting it is the session's job.
func (c *Client) Login(ctx context.Context, username, password string) (*Token, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)
	var tok Token
	if err := c.sendForm(ctx, "/auth/login", form, &tok); err != nil {
		return nil, err
	}
	return &tok, nil
}

// Me returns the profile of the token holder.
func (c *Client) Me(ctx context.Context) (*catalog.User, error) {
	var u catalog.User
	if err := c.getJSON(ctx, "/auth/me", nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Register creates an account and returns the created user.
func (c *Client) Register(ctx context.Context, r Registration) (*catalog.User, error) {
	var u catalog.User
	if err := c.sendJSON(ctx, http.MethodPost, "/auth/register", r, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Favorites lists the models the user bookmarked.
func (c *Client) Favorites(ctx context.Context) ([]catalog.Model, error) {
	var out []catalog.Model
	if err := c.getJSON(ctx, "/auth/me/favorites", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AddFavorite bookmarks a model.
func (c *Client) AddFavorite(ctx context.Context, modelID string) (*catalog.User, error) {
	var u catalog.User
	if err := c.sendJSON(ctx, http.MethodPost, "/auth/me/favorites/"+url.PathEscape(modelID), nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// RemoveFavorite removes a bookmark.
func (c *Client) RemoveFavorite(ctx context.Context, modelID string) (*catalog.User, error) {
	var u catalog.User
	if err := c.sendJSON(ctx, http.MethodDelete, "/auth/me/favorites/"+url.PathEscape(modelID), nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}
