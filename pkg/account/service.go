package account

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"twitterconnect/pkg/twitter"
)

var ErrMissingParams = errors.New("oauth_token and oauth_verifier are required")

type ServiceInterface interface {
	RequestOAuth(ctx context.Context) (map[string]string, error)
	Authorize(ctx context.Context, requestToken, verifier string) (*twitter.AccessToken, error)
	Profile(ctx context.Context, access *twitter.AccessToken) (*Profile, error)
	Tweets(ctx context.Context, userID string) ([]TweetSummary, error)
}

type Service struct {
	Upstream Upstream
	Now      func() time.Time
}

func NewService(upstream Upstream) *Service {
	return &Service{Upstream: upstream, Now: time.Now}
}

// RequestOAuth starts the handshake and returns the temporary credentials
// keyed the way the provider names them.
func (s *Service) RequestOAuth(ctx context.Context) (map[string]string, error) {
	token, err := s.Upstream.RequestToken(ctx)
	if err != nil {
		return nil, err
	}

	return map[string]string{
		"oauth_token":              token.Token,
		"oauth_token_secret":       token.Secret,
		"oauth_callback_confirmed": strconv.FormatBool(token.CallbackConfirmed),
	}, nil
}

// Authorize is the first step of completing the handshake.
func (s *Service) Authorize(ctx context.Context, requestToken, verifier string) (*twitter.AccessToken, error) {
	if requestToken == "" || verifier == "" {
		return nil, ErrMissingParams
	}

	access, err := s.Upstream.AccessToken(ctx, requestToken, verifier)
	if err != nil {
		return nil, fmt.Errorf("access token exchange: %w", err)
	}
	return access, nil
}

// Profile is the second step: it reads the connected account with the
// access token obtained by Authorize.
func (s *Service) Profile(ctx context.Context, access *twitter.AccessToken) (*Profile, error) {
	u, err := s.Upstream.ShowUser(ctx, access.Credentials, access.UserID)
	if err != nil {
		return nil, fmt.Errorf("profile lookup: %w", err)
	}

	return &Profile{
		Name:       u.Name,
		ProfilePic: OriginalPicture(u.ProfileImageURL),
	}, nil
}

func (s *Service) Tweets(ctx context.Context, userID string) ([]TweetSummary, error) {
	tweets, err := s.Upstream.UserTimeline(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("user timeline: %w", err)
	}

	now := s.Now()
	summaries := make([]TweetSummary, 0, len(tweets))
	for _, tweet := range tweets {
		createdAt, err := tweet.Time()
		if err != nil {
			return nil, fmt.Errorf("user timeline: tweet %s: %w", tweet.ID, err)
		}
		summaries = append(summaries, TweetSummary{
			Text:      tweet.Text,
			TweetedAt: RelativeAge(createdAt, now),
		})
	}

	return summaries, nil
}
