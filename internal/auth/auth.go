package auth

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/ourdigital/gbp-toolkit/internal/domain"
	"github.com/ourdigital/gbp-toolkit/internal/store"
)

// Scope grants management access to Business Profile data.
const Scope = "https://www.googleapis.com/auth/business.manage"

const (
	DefaultCredentialsFile = "credentials.json"
	DefaultTokenFile       = "token.json"
	DefaultRedirectURL     = "http://localhost:8080/callback"
	DefaultRevokeURL       = "https://oauth2.googleapis.com/revoke"
)

// Options configures an Authenticator. Zero values fall back to the defaults
// above.
type Options struct {
	// CredentialsFile is the OAuth client secrets JSON downloaded from the
	// Google Cloud console.
	CredentialsFile string
	RedirectURL     string
	Scopes          []string
	Store           store.TokenStore
	Codes           CodeSource
	RevokeURL       string
	// HTTPClient is used for token exchange, refresh and revocation.
	HTTPClient *http.Client
	Logger     zerolog.Logger
}

// Authenticator drives the OAuth2 authorization-code flow and owns the
// persisted token.
type Authenticator struct {
	opts   Options
	logger zerolog.Logger
}

// New returns an Authenticator for opts.
func New(opts Options) *Authenticator {
	if opts.CredentialsFile == "" {
		opts.CredentialsFile = DefaultCredentialsFile
	}
	if opts.RedirectURL == "" {
		opts.RedirectURL = DefaultRedirectURL
	}
	if len(opts.Scopes) == 0 {
		opts.Scopes = []string{Scope}
	}
	if opts.Store == nil {
		opts.Store = store.NewFileTokenStore(DefaultTokenFile, opts.Scopes...)
	}
	if opts.Codes == nil {
		opts.Codes = &PromptCodeSource{In: os.Stdin, Out: os.Stdout}
	}
	if opts.RevokeURL == "" {
		opts.RevokeURL = DefaultRevokeURL
	}
	return &Authenticator{
		opts:   opts,
		logger: opts.Logger.With().Str("component", "auth").Logger(),
	}
}

// Authenticate returns credentials for the stored token, refreshing it when
// expired, or runs the interactive flow when there is nothing usable stored.
// A token obtained by refresh or exchange is persisted before returning.
func (a *Authenticator) Authenticate(ctx context.Context) (*Credentials, error) {
	ctx = a.clientContext(ctx)

	tok, err := a.opts.Store.LoadToken()
	if err != nil && !errors.Is(err, store.ErrTokenNotFound) {
		return nil, domain.NewAuthError("failed to load token", err)
	}

	cfg, cfgErr := a.oauthConfig()

	switch {
	case tok != nil && tok.Valid():
		a.logger.Debug().Time("expiry", tok.Expiry).Msg("using stored token")

	case tok != nil && tok.RefreshToken != "":
		if cfgErr != nil {
			return nil, domain.NewAuthError("failed to refresh token", cfgErr)
		}
		fresh, err := cfg.TokenSource(ctx, tok).Token()
		if err != nil {
			return nil, domain.NewAuthError("failed to refresh token", err)
		}
		a.logger.Debug().Time("expiry", fresh.Expiry).Msg("refreshed token")
		tok = fresh
		if err := a.save(tok); err != nil {
			return nil, err
		}

	default:
		if cfgErr != nil {
			return nil, domain.NewAuthError("authentication failed", cfgErr)
		}
		tok, err = a.exchange(ctx, cfg)
		if err != nil {
			return nil, err
		}
		if err := a.save(tok); err != nil {
			return nil, err
		}
	}

	return newCredentials(ctx, cfg, tok, a.opts.Scopes, a.opts.Store, a.logger), nil
}

// AuthCodeURL returns the consent URL for state without starting a flow.
func (a *Authenticator) AuthCodeURL(state string) (string, error) {
	cfg, err := a.oauthConfig()
	if err != nil {
		return "", domain.NewAuthError("failed to build authorization url", err)
	}
	return authCodeURL(cfg, state), nil
}

// Revoke invalidates the stored token at Google and deletes it locally.
// Nothing stored is not an error.
func (a *Authenticator) Revoke(ctx context.Context) error {
	tok, err := a.opts.Store.LoadToken()
	switch {
	case errors.Is(err, store.ErrTokenNotFound):
		a.logger.Debug().Msg("no stored token to revoke")
	case err != nil:
		return domain.NewAuthError("failed to load token", err)
	default:
		value := tok.RefreshToken
		if value == "" {
			value = tok.AccessToken
		}
		if value != "" {
			if err := a.revokeRemote(ctx, value); err != nil {
				return err
			}
		}
	}

	if err := a.opts.Store.DeleteToken(); err != nil && !errors.Is(err, store.ErrTokenNotFound) {
		return domain.NewAuthError("failed to delete token", err)
	}
	a.logger.Info().Msg("credentials revoked")
	return nil
}

// Stored reports the persisted token, if any, without refreshing it.
func (a *Authenticator) Stored() (*oauth2.Token, error) {
	tok, err := a.opts.Store.LoadToken()
	if err != nil {
		if errors.Is(err, store.ErrTokenNotFound) {
			return nil, err
		}
		return nil, domain.NewAuthError("failed to load token", err)
	}
	return tok, nil
}

func (a *Authenticator) exchange(ctx context.Context, cfg *oauth2.Config) (*oauth2.Token, error) {
	state := uuid.NewString()
	code, err := a.opts.Codes.Code(ctx, authCodeURL(cfg, state), state)
	if err != nil {
		return nil, domain.NewAuthError("failed to obtain authorization code", err)
	}
	tok, err := cfg.Exchange(ctx, code)
	if err != nil {
		return nil, domain.NewAuthError("failed to exchange auth code", err)
	}
	a.logger.Info().Msg("authorization complete")
	return tok, nil
}

func (a *Authenticator) save(tok *oauth2.Token) error {
	if err := a.opts.Store.SaveToken(tok); err != nil {
		return domain.NewAuthError("failed to save credentials", err)
	}
	return nil
}

func (a *Authenticator) oauthConfig() (*oauth2.Config, error) {
	data, err := os.ReadFile(a.opts.CredentialsFile)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("credentials file not found: %s", a.opts.CredentialsFile)
		}
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}
	cfg, err := google.ConfigFromJSON(data, a.opts.Scopes...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse credentials file: %w", err)
	}
	cfg.RedirectURL = a.opts.RedirectURL
	return cfg, nil
}

func (a *Authenticator) revokeRemote(ctx context.Context, token string) error {
	form := url.Values{"token": {token}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.opts.RevokeURL, strings.NewReader(form.Encode()))
	if err != nil {
		return domain.NewAuthError("failed to build revoke request", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res, err := a.httpClient().Do(req)
	if err != nil {
		return domain.NewAuthError("failed to revoke token", err)
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return domain.NewAuthError("failed to revoke token", fmt.Errorf("revoke endpoint returned %s", res.Status))
	}
	return nil
}

func (a *Authenticator) httpClient() *http.Client {
	if a.opts.HTTPClient != nil {
		return a.opts.HTTPClient
	}
	return http.DefaultClient
}

func (a *Authenticator) clientContext(ctx context.Context) context.Context {
	if a.opts.HTTPClient != nil {
		return context.WithValue(ctx, oauth2.HTTPClient, a.opts.HTTPClient)
	}
	return ctx
}

func authCodeURL(cfg *oauth2.Config, state string) string {
	return cfg.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.SetAuthURLParam("prompt", "consent"))
}
