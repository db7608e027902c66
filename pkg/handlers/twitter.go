package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"twitterconnect/internal/metrics"
	"twitterconnect/pkg/account"
	"twitterconnect/pkg/claims"
	"twitterconnect/pkg/session"
	"twitterconnect/pkg/twitter"
)

const (
	queryOAuthToken    = "oauth_token"
	queryOAuthVerifier = "oauth_verifier"
)

type TwitterHandler struct {
	Service  account.ServiceInterface
	Sessions session.Issuer
	Metrics  metrics.Recorder
	Logger   *slog.Logger
}

func NewTwitterHandler(service account.ServiceInterface, sessions session.Issuer, rec metrics.Recorder, logger *slog.Logger) *TwitterHandler {
	if rec == nil {
		rec = metrics.Nop{}
	}
	return &TwitterHandler{
		Service:  service,
		Sessions: sessions,
		Metrics:  rec,
		Logger:   logger,
	}
}

func (h *TwitterHandler) RequestOAuth(w http.ResponseWriter, r *http.Request) {
	token, err := h.Service.RequestOAuth(r.Context())
	if err != nil {
		h.upstreamError(w, "request_oauth", err)
		return
	}

	writeJSON(w, h.Logger, token)
}

// Connect completes the handshake. The session token is set as soon as the
// access token exchange succeeds: the request token is spent by then, so a
// failed profile lookup must not cost the caller the session.
func (h *TwitterHandler) Connect(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	access, err := h.Service.Authorize(r.Context(), query.Get(queryOAuthToken), query.Get(queryOAuthVerifier))
	if err != nil {
		if errors.Is(err, account.ErrMissingParams) {
			writeError(w, http.StatusBadRequest, typeMessage, err.Error())
			return
		}
		h.upstreamError(w, "connect", err)
		return
	}

	token, err := h.Sessions.Issue(access.UserID)
	if err != nil {
		h.Logger.Error("token signing", "error", err)
		writeError(w, http.StatusInternalServerError, typeMessage, "failed to issue session token")
		return
	}
	w.Header().Set(session.Header, token)
	w.Header().Set("Access-Control-Expose-Headers", session.Header)
	h.Metrics.RecordSessionIssued()

	profile, err := h.Service.Profile(r.Context(), access)
	if err != nil {
		h.upstreamError(w, "connect", err)
		return
	}

	if ok := writeJSON(w, h.Logger, profile); ok {
		h.Logger.Info("connect", "user", access.UserID, "screen_name", access.ScreenName)
	}
}

func (h *TwitterHandler) Tweets(w http.ResponseWriter, r *http.Request) {
	c, ok := claimsFromRequest(w, r)
	if !ok {
		return
	}

	tweets, err := h.Service.Tweets(r.Context(), c.ID)
	if err != nil {
		h.upstreamError(w, "tweets", err)
		return
	}

	writeJSON(w, h.Logger, tweets)
}

// Disconnect answers with the account id. Tokens are stateless, so there is
// nothing to revoke here; the client drops its copy.
func (h *TwitterHandler) Disconnect(w http.ResponseWriter, r *http.Request) {
	c, ok := claimsFromRequest(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if _, err := w.Write([]byte(c.ID)); err != nil {
		h.Logger.Error("failed to write response to client", "error", err)
		return
	}
	h.Logger.Info("disconnect", "user", c.ID)
}

// upstreamError maps failures of the Twitter API: transport problems are a
// 500, answers we could not use are a 502.
func (h *TwitterHandler) upstreamError(w http.ResponseWriter, action string, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, twitter.ErrUpstreamStatus) || errors.Is(err, twitter.ErrMalformedResponse) {
		status = http.StatusBadGateway
	}

	h.Logger.Error(action, "error", err, "status", status)
	writeError(w, status, typeMessage, err.Error())
}

func claimsFromRequest(w http.ResponseWriter, r *http.Request) (*claims.Claims, bool) {
	c, ok := claims.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, typeMessage, "unauthorized")
		return nil, false
	}
	return c, true
}
