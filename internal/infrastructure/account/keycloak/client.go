package keycloak

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/fotisolgr/my-bet-app/internal/domain/user"
	"github.com/fotisolgr/my-bet-app/internal/platform/logging"
	"github.com/fotisolgr/my-bet-app/internal/platform/resilience"
	"github.com/fotisolgr/my-bet-app/internal/usecase"
	"github.com/valyala/bytebufferpool"
	"github.com/valyala/fasthttp"
)

const (
	defaultTimeout         = 5 * time.Second
	defaultCacheTTL        = 30 * time.Second
	defaultCacheMaxEntries = 10000
)

// Config describes the realm and confidential client used for token introspection.
type Config struct {
	BaseURL         string
	Realm           string
	IntrospectPath  string
	ClientID        string
	ClientSecret    string
	Timeout         time.Duration
	CacheTTL        time.Duration
	CacheMaxEntries int
	CircuitBreaker  resilience.CircuitBreakerConfig
}

// Client verifies bearer tokens against Keycloak's OAuth2 introspection endpoint.
type Client struct {
	httpClient    *fasthttp.Client
	introspectURL string
	authorization string
	timeout       time.Duration
	cache         *principalCache
	breaker       *resilience.CircuitBreaker
	flight        resilience.SingleFlight
	logger        *logging.Logger
	now           func() time.Time
}

func NewClient(cfg Config, logger *logging.Logger) *Client {
	if logger == nil {
		logger = logging.Default()
	}
	logger = logger.Named("keycloak")
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.CacheTTL < 0 {
		cfg.CacheTTL = defaultCacheTTL
	}
	if cfg.CacheMaxEntries <= 0 {
		cfg.CacheMaxEntries = defaultCacheMaxEntries
	}

	breaker := resilience.NewCircuitBreakerFromConfig(cfg.CircuitBreaker)
	breaker.OnStateChange(func(from, to resilience.CircuitState) {
		logger.Warn("circuit breaker state changed",
			"from", string(from),
			"to", string(to),
		)
	})

	return &Client{
		httpClient: &fasthttp.Client{
			Name:                "my-bet-app",
			ReadTimeout:         cfg.Timeout,
			WriteTimeout:        cfg.Timeout,
			MaxIdleConnDuration: time.Minute,
		},
		introspectURL: introspectionURL(cfg.BaseURL, cfg.Realm, cfg.IntrospectPath),
		authorization: basicAuth(cfg.ClientID, cfg.ClientSecret),
		timeout:       cfg.Timeout,
		cache:         newPrincipalCache(cfg.CacheTTL, cfg.CacheMaxEntries),
		breaker:       breaker,
		logger:        logger,
		now:           time.Now,
	}
}

func (c *Client) VerifyAccessToken(ctx context.Context, token string) (user.Principal, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return user.Principal{}, fmt.Errorf("%w: token is required", usecase.ErrUnauthorized)
	}

	key := hashToken(token)
	if principal, ok := c.cache.Get(key); ok {
		return principal, nil
	}

	v, err, _ := c.flight.Do(key, func() (any, error) {
		if principal, ok := c.cache.Get(key); ok {
			return principal, nil
		}

		var result introspectResult
		err := c.breaker.Execute(ctx, func(ctx context.Context) error {
			var callErr error
			result, callErr = c.introspect(ctx, token)
			return callErr
		}, isCircuitFailure)
		if err != nil {
			return nil, err
		}

		c.cache.Set(key, result.principal, result.expiresAt)
		return result.principal, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, resilience.ErrCircuitOpen):
			return user.Principal{}, fmt.Errorf("%w: keycloak circuit open", usecase.ErrDependencyUnavailable)
		case errors.Is(err, errKeycloakTransient):
			c.logger.WarnContext(ctx, "introspection unavailable", "error", err)
			return user.Principal{}, fmt.Errorf("%w: %v", usecase.ErrDependencyUnavailable, err)
		}
		return user.Principal{}, err
	}

	principal, _ := v.(user.Principal)
	return principal, nil
}

type introspectResult struct {
	principal user.Principal
	expiresAt time.Time
}

func (c *Client) introspect(ctx context.Context, token string) (introspectResult, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	body := bytebufferpool.Get()
	defer bytebufferpool.Put(body)
	_, _ = body.WriteString("token=")
	_, _ = body.WriteString(url.QueryEscape(token))
	_, _ = body.WriteString("&token_type_hint=access_token")

	req.SetRequestURI(c.introspectURL)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/x-www-form-urlencoded")
	req.Header.Set(fasthttp.HeaderAccept, "application/json")
	req.Header.Set(fasthttp.HeaderAuthorization, c.authorization)
	req.SetBody(body.B)

	deadline := c.now().Add(c.timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}
	if err := ctx.Err(); err != nil {
		return introspectResult{}, crerr.Wrap(err, "introspect token")
	}

	if err := c.httpClient.DoDeadline(req, resp, deadline); err != nil {
		return introspectResult{}, fmt.Errorf("%w: request introspection: %v", errKeycloakTransient, err)
	}

	status := resp.StatusCode()
	switch {
	case status == fasthttp.StatusUnauthorized || status == fasthttp.StatusForbidden:
		return introspectResult{}, fmt.Errorf("%w: introspection denied", usecase.ErrUnauthorized)
	case status >= fasthttp.StatusInternalServerError:
		return introspectResult{}, fmt.Errorf("%w: introspection status %d", errKeycloakTransient, status)
	case status != fasthttp.StatusOK:
		c.logger.WarnContext(ctx, "introspection non-200", "status_code", status)
		return introspectResult{}, crerr.Newf("keycloak introspection failed with status %d", status)
	}

	var decoded introspectResponse
	if err := sonic.Unmarshal(resp.Body(), &decoded); err != nil {
		return introspectResult{}, crerr.Wrap(err, "unmarshal introspect response")
	}
	if !decoded.Active {
		return introspectResult{}, fmt.Errorf("%w: inactive token", usecase.ErrUnauthorized)
	}

	principal := user.Principal{
		UserID:   strings.TrimSpace(decoded.Subject),
		Username: strings.TrimSpace(decoded.PreferredUsername),
		Email:    strings.TrimSpace(decoded.Email),
	}
	if principal.UserID == "" && principal.Username == "" {
		return introspectResult{}, fmt.Errorf("%w: token carries no subject", usecase.ErrUnauthorized)
	}

	var expiresAt time.Time
	if decoded.ExpiresAt > 0 {
		expiresAt = time.Unix(decoded.ExpiresAt, 0)
	}

	return introspectResult{principal: principal, expiresAt: expiresAt}, nil
}

type introspectResponse struct {
	Active            bool   `json:"active"`
	Subject           string `json:"sub"`
	PreferredUsername string `json:"preferred_username"`
	Email             string `json:"email"`
	ExpiresAt         int64  `json:"exp"`
}
