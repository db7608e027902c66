package account

import (
	"context"

	"twitterconnect/pkg/twitter"
)

type Profile struct {
	Name       string `json:"name"`
	ProfilePic string `json:"profilePic"`
}

type TweetSummary struct {
	Text      string `json:"text"`
	TweetedAt string `json:"tweetedAt"`
}

// Upstream is the slice of the Twitter API the service talks to.
type Upstream interface {
	RequestToken(ctx context.Context) (*twitter.RequestToken, error)
	AccessToken(ctx context.Context, requestToken, verifier string) (*twitter.AccessToken, error)
	ShowUser(ctx context.Context, creds twitter.Credentials, userID string) (*twitter.User, error)
	UserTimeline(ctx context.Context, userID string) ([]twitter.Tweet, error)
}
