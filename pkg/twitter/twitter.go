// Package twitter is a small OAuth1 client for the parts of the Twitter API
// the proxy needs: the three-legged handshake, user lookup and timelines.
package twitter

import (
	"errors"
	"time"
)

var (
	// ErrUpstreamStatus wraps any non-2xx answer from the API.
	ErrUpstreamStatus = errors.New("twitter: unexpected response status")
	// ErrMalformedResponse wraps payloads that could not be decoded.
	ErrMalformedResponse = errors.New("twitter: malformed response")
)

// CreatedAtLayout is how the v1.1 API renders timestamps,
// e.g. "Wed Oct 10 20:19:24 +0000 2018".
const CreatedAtLayout = time.RubyDate

// Credentials is an OAuth1 token/secret pair.
type Credentials struct {
	Token  string
	Secret string
}

type RequestToken struct {
	Credentials
	CallbackConfirmed bool
}

type AccessToken struct {
	Credentials
	UserID     string
	ScreenName string
}

type User struct {
	ID              string `json:"id_str"`
	Name            string `json:"name"`
	ScreenName      string `json:"screen_name"`
	ProfileImageURL string `json:"profile_image_url"`
}

type Tweet struct {
	ID        string `json:"id_str"`
	Text      string `json:"text"`
	CreatedAt string `json:"created_at"`
}

// Time parses CreatedAt.
func (t Tweet) Time() (time.Time, error) {
	ts, err := time.Parse(CreatedAtLayout, t.CreatedAt)
	if err != nil {
		return time.Time{}, errors.Join(ErrMalformedResponse, err)
	}
	return ts, nil
}
