package auth

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	"google.golang.org/api/option"

	"github.com/ourdigital/gbp-toolkit/internal/domain"
	"github.com/ourdigital/gbp-toolkit/internal/rest"
	"github.com/ourdigital/gbp-toolkit/internal/store"
)

// Credentials is the result of a successful Authenticate. It does not change
// after construction; refreshed tokens flow through its TokenSource and are
// written back to the token store.
type Credentials struct {
	token  oauth2.Token
	scopes []string
	source oauth2.TokenSource
}

func newCredentials(ctx context.Context, cfg *oauth2.Config, tok *oauth2.Token, scopes []string, ts store.TokenStore, logger zerolog.Logger) *Credentials {
	var src oauth2.TokenSource
	if cfg != nil {
		src = &persistingTokenSource{
			src:    cfg.TokenSource(context.WithoutCancel(ctx), tok),
			store:  ts,
			logger: logger,
			last:   tok.AccessToken,
		}
	} else {
		// Without client secrets the stored token cannot be refreshed.
		src = oauth2.StaticTokenSource(tok)
	}
	return &Credentials{
		token:  *tok,
		scopes: slices.Clone(scopes),
		source: src,
	}
}

// NewStaticCredentials wraps a fixed token, for callers that obtained one
// elsewhere.
func NewStaticCredentials(tok *oauth2.Token, scopes ...string) *Credentials {
	return &Credentials{token: *tok, scopes: scopes, source: oauth2.StaticTokenSource(tok)}
}

// Token returns a copy of the token obtained at authentication time.
func (c *Credentials) Token() *oauth2.Token {
	if c == nil {
		return nil
	}
	t := c.token
	return &t
}

// Scopes returns the OAuth scopes the credentials were granted for.
func (c *Credentials) Scopes() []string {
	if c == nil {
		return nil
	}
	return slices.Clone(c.scopes)
}

// TokenSource returns the refreshing token source bound to these credentials.
func (c *Credentials) TokenSource() oauth2.TokenSource {
	if c == nil {
		return nil
	}
	return c.source
}

// Service returns an authenticated handle on the named API, e.g.
// rest.Config{Name: "mybusiness", Version: "v4"}.
func (c *Credentials) Service(ctx context.Context, cfg rest.Config, opts ...option.ClientOption) (*rest.Service, error) {
	if c == nil || c.source == nil {
		return nil, domain.NewAuthError("not authenticated, call Authenticate first", domain.ErrNotAuthenticated)
	}
	opts = append(c.ClientOptions(), opts...)
	svc, err := rest.NewService(ctx, cfg, opts...)
	if err != nil {
		return nil, domain.NewAuthError(fmt.Sprintf("failed to create %s/%s service", cfg.Name, cfg.Version), err)
	}
	return svc, nil
}

// ClientOptions returns the options that authenticate a generated Google API
// client with these credentials. Nil credentials yield no options.
func (c *Credentials) ClientOptions() []option.ClientOption {
	if c == nil || c.source == nil {
		return nil
	}
	return []option.ClientOption{option.WithTokenSource(c.source)}
}

// persistingTokenSource saves every new access token handed out by src.
type persistingTokenSource struct {
	src    oauth2.TokenSource
	store  store.TokenStore
	logger zerolog.Logger

	mu   sync.Mutex
	last string
}

func (p *persistingTokenSource) Token() (*oauth2.Token, error) {
	tok, err := p.src.Token()
	if err != nil {
		return nil, domain.NewAuthError("failed to refresh token", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if tok.AccessToken != p.last {
		p.last = tok.AccessToken
		if err := p.store.SaveToken(tok); err != nil {
			p.logger.Warn().Err(err).Msg("failed to persist refreshed token")
		} else {
			p.logger.Debug().Time("expiry", tok.Expiry).Msg("persisted refreshed token")
		}
	}
	return tok, nil
}
