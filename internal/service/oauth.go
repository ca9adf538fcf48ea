package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	apperrors "github.com/yoyda/auth-service/internal/errors"
	ctxutil "github.com/yoyda/auth-service/pkg/context"
	"github.com/yoyda/auth-service/pkg/logger"
)

// ExternalIdentity is what an OAuth provider asserts about the caller.
type ExternalIdentity struct {
	ExternalID string
	Email      string
	Name       string
}

// IdentityProvider resolves a provider access token into an identity.
type IdentityProvider interface {
	UserFromToken(ctx context.Context, token string) (*ExternalIdentity, error)
}

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v3/userinfo"

// GoogleProvider validates Google OAuth access tokens against the userinfo
// endpoint. An accepted identity implies Google has verified the email.
type GoogleProvider struct {
	client   *http.Client
	endpoint string
}

func NewGoogleProvider() *GoogleProvider {
	return &GoogleProvider{
		client:   &http.Client{Timeout: 10 * time.Second},
		endpoint: googleUserInfoURL,
	}
}

func (p *GoogleProvider) UserFromToken(ctx context.Context, token string) (*ExternalIdentity, error) {
	ctx = ctxutil.NewContext(ctx, "service", "GoogleUserFromToken")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.endpoint, nil)
	if err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	start := time.Now()
	resp, err := p.client.Do(req)
	if err != nil {
		logger.ErrorWithContext(ctx, "Google userinfo request failed").
			Duration(time.Since(start)).
			Err(err).
			Log()
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logger.WarnWithContext(ctx, "Google rejected access token").
			Int("status", resp.StatusCode).
			Duration(time.Since(start)).
			Log()
		return nil, apperrors.ErrInvalidToken
	}

	var payload struct {
		Sub   string `json:"sub"`
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, apperrors.WrapError(apperrors.ErrInternal, err)
	}
	if payload.Sub == "" || payload.Email == "" {
		return nil, apperrors.WrapError(apperrors.ErrInternal, fmt.Errorf("incomplete userinfo response"))
	}

	return &ExternalIdentity{
		ExternalID: payload.Sub,
		Email:      payload.Email,
		Name:       payload.Name,
	}, nil
}
