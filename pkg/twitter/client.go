package twitter

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

	"github.com/dghubble/oauth1"
	"golang.org/x/time/rate"

	"twitterconnect/internal/metrics"
)

const (
	endpointRequestToken = "request_token"
	endpointAccessToken  = "access_token"
	endpointUsersShow    = "users_show"
	endpointUserTimeline = "user_timeline"

	outcomeOK        = "ok"
	outcomeTransport = "transport_error"
	outcomeStatus    = "bad_status"

	maxResponseBody = 4 << 20
	maxErrorSnippet = 256
)

type Config struct {
	ConsumerKey    string
	ConsumerSecret string
	CallbackURL    string

	// OAuthBaseURL hosts /oauth/*, RESTBaseURL the v1.1 resources.
	OAuthBaseURL string
	RESTBaseURL  string

	// App signs timeline reads. Empty means consumer-only signing.
	App Credentials

	Timeout    time.Duration
	Rate       float64
	Burst      int
	HTTPClient *http.Client
}

type Client struct {
	oauth   *oauth1.Config
	restURL string
	app     *oauth1.Token
	http    *http.Client
	timeout time.Duration
	limiter *rate.Limiter
	metrics metrics.Recorder
	logger  *slog.Logger
}

func NewClient(cfg Config, rec metrics.Recorder, logger *slog.Logger) *Client {
	oauthURL := strings.TrimRight(cfg.OAuthBaseURL, "/")

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if rec == nil {
		rec = metrics.Nop{}
	}
	limit, burst := rate.Limit(cfg.Rate), cfg.Burst
	if cfg.Rate <= 0 {
		limit = rate.Inf
	}
	if burst <= 0 {
		burst = 1
	}

	return &Client{
		oauth: &oauth1.Config{
			ConsumerKey:    cfg.ConsumerKey,
			ConsumerSecret: cfg.ConsumerSecret,
			CallbackURL:    cfg.CallbackURL,
			Endpoint: oauth1.Endpoint{
				RequestTokenURL: oauthURL + "/oauth/request_token",
				AuthorizeURL:    oauthURL + "/oauth/authenticate",
				AccessTokenURL:  oauthURL + "/oauth/access_token",
			},
		},
		restURL: strings.TrimRight(cfg.RESTBaseURL, "/"),
		app:     oauth1.NewToken(cfg.App.Token, cfg.App.Secret),
		http:    httpClient,
		timeout: cfg.Timeout,
		limiter: rate.NewLimiter(limit, burst),
		metrics: rec,
		logger:  logger,
	}
}

// RequestToken obtains temporary credentials for the configured callback.
func (c *Client) RequestToken(ctx context.Context) (*RequestToken, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%s: rate limit wait: %w", endpointRequestToken, err)
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	// RequestToken takes no context, so bind it through the transport
	cfg := *c.oauth
	cfg.HTTPClient = &http.Client{Transport: contextTransport{ctx: ctx, base: c.http.Transport}}

	start := time.Now()
	token, secret, err := cfg.RequestToken()
	if err != nil {
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			c.observe(endpointRequestToken, outcomeTransport, start)
			return nil, fmt.Errorf("%s: %w", endpointRequestToken, err)
		}
		c.observe(endpointRequestToken, outcomeStatus, start)
		return nil, fmt.Errorf("%w: %s: %v", ErrUpstreamStatus, endpointRequestToken, err)
	}
	c.observe(endpointRequestToken, outcomeOK, start)

	// oauth1 refuses answers without oauth_callback_confirmed=true
	return &RequestToken{
		Credentials:       Credentials{Token: token, Secret: secret},
		CallbackConfirmed: true,
	}, nil
}

// AccessToken exchanges an authorized request token and its verifier for
// the user's access token. The verifier travels in the form body, which is
// part of the signature base.
func (c *Client) AccessToken(ctx context.Context, requestToken, verifier string) (*AccessToken, error) {
	form := url.Values{"oauth_verifier": {verifier}}

	body, err := c.call(ctx, endpointAccessToken, oauth1.NewToken(requestToken, ""),
		http.MethodPost, c.oauth.Endpoint.AccessTokenURL, form)
	if err != nil {
		return nil, err
	}

	values, err := url.ParseQuery(string(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedResponse, endpointAccessToken, err)
	}

	access := &AccessToken{
		Credentials: Credentials{
			Token:  values.Get("oauth_token"),
			Secret: values.Get("oauth_token_secret"),
		},
		UserID:     values.Get("user_id"),
		ScreenName: values.Get("screen_name"),
	}
	if access.UserID == "" || access.Token == "" {
		return nil, fmt.Errorf("%w: %s: missing user_id or oauth_token", ErrMalformedResponse, endpointAccessToken)
	}

	return access, nil
}

// ShowUser looks up a user's public profile signed with creds.
func (c *Client) ShowUser(ctx context.Context, creds Credentials, userID string) (*User, error) {
	endpoint := c.restURL + "/users/show.json?" + url.Values{"user_id": {userID}}.Encode()

	body, err := c.call(ctx, endpointUsersShow, oauth1.NewToken(creds.Token, creds.Secret),
		http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	var u User
	if err := json.Unmarshal(body, &u); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedResponse, endpointUsersShow, err)
	}
	return &u, nil
}

// UserTimeline returns the user's most recent tweets, newest first, signed
// with the application credentials.
func (c *Client) UserTimeline(ctx context.Context, userID string) ([]Tweet, error) {
	endpoint := c.restURL + "/statuses/user_timeline.json?" + url.Values{"user_id": {userID}}.Encode()

	body, err := c.call(ctx, endpointUserTimeline, c.app, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	var tweets []Tweet
	if err := json.Unmarshal(body, &tweets); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedResponse, endpointUserTimeline, err)
	}
	return tweets, nil
}

func (c *Client) call(ctx context.Context, name string, token *oauth1.Token, method, rawURL string, form url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%s: rate limit wait: %w", name, err)
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", name, err)
	}
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	client := c.oauth.Client(context.WithValue(ctx, oauth1.HTTPClient, c.http), token)

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		c.observe(name, outcomeTransport, start)
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		c.observe(name, outcomeTransport, start)
		return nil, fmt.Errorf("%s: read body: %w", name, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.observe(name, outcomeStatus, start)
		return nil, fmt.Errorf("%w: %s returned %d: %s", ErrUpstreamStatus, name, resp.StatusCode, snippet(payload))
	}

	c.observe(name, outcomeOK, start)
	return payload, nil
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

func (c *Client) observe(name, outcome string, start time.Time) {
	elapsed := time.Since(start)
	c.metrics.RecordUpstream(name, outcome, elapsed)
	if c.logger != nil {
		c.logger.Debug("twitter call", "endpoint", name, "outcome", outcome, "duration", elapsed)
	}
}

func snippet(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > maxErrorSnippet {
		return s[:maxErrorSnippet] + "..."
	}
	return s
}

type contextTransport struct {
	ctx  context.Context
	base http.RoundTripper
}

func (t contextTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(req.WithContext(t.ctx))
}
