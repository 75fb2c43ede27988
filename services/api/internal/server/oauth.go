package server

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"

	"legalgpt/internal/util"
	"legalgpt/services/api/internal/security"
)

const (
	oauthStateCookie   = "legalgpt_oauth_state"
	oauthStateTTL      = 10 * time.Minute
	googleUserInfoURL  = "https://openidconnect.googleapis.com/v1/userinfo"
	maxUserInfoBytes   = 1 << 16
	oauthExchangeLimit = 15 * time.Second
)

// GoogleOAuth holds the Google sign-in client.
type GoogleOAuth struct {
	Config      *oauth2.Config
	UserInfoURL string
	// HTTPClient is used for the token exchange and profile lookup. Optional.
	HTTPClient *http.Client
}

// NewGoogleOAuth builds a Google sign-in client requesting email and profile.
func NewGoogleOAuth(clientID, clientSecret, redirectURL string) *GoogleOAuth {
	return &GoogleOAuth{
		Config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Endpoint:     endpoints.Google,
			Scopes:       []string{"openid", "email", "profile"},
		},
		UserInfoURL: googleUserInfoURL,
	}
}

type googleProfile struct {
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
}

func (g *GoogleOAuth) context(ctx context.Context) context.Context {
	if g.HTTPClient != nil {
		return context.WithValue(ctx, oauth2.HTTPClient, g.HTTPClient)
	}
	return ctx
}

// profile exchanges the authorization code and fetches the signed-in user.
func (g *GoogleOAuth) profile(ctx context.Context, code string) (googleProfile, error) {
	ctx, cancel := context.WithTimeout(g.context(ctx), oauthExchangeLimit)
	defer cancel()
	tok, err := g.Config.Exchange(ctx, code)
	if err != nil {
		return googleProfile{}, fmt.Errorf("exchange code: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.UserInfoURL, nil)
	if err != nil {
		return googleProfile{}, err
	}
	resp, err := g.Config.Client(ctx, tok).Do(req)
	if err != nil {
		return googleProfile{}, fmt.Errorf("fetch userinfo: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return googleProfile{}, fmt.Errorf("fetch userinfo: status %d", resp.StatusCode)
	}
	var p googleProfile
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxUserInfoBytes)).Decode(&p); err != nil {
		return googleProfile{}, fmt.Errorf("decode userinfo: %w", err)
	}
	if strings.TrimSpace(p.Email) == "" || !p.EmailVerified {
		return googleProfile{}, errors.New("google account has no verified email")
	}
	return p, nil
}

func (s *Server) handleGoogleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	if s.google == nil {
		writeError(w, http.StatusNotFound, "Google sign-in is not enabled")
		return
	}
	state := util.NewID()
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/auth/oauth/google",
		MaxAge:   int(oauthStateTTL.Seconds()),
		HttpOnly: true,
		Secure:   r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https"),
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, s.google.Config.AuthCodeURL(state, oauth2.AccessTypeOnline), http.StatusFound)
}

func (s *Server) handleGoogleCallback(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	if s.google == nil {
		writeError(w, http.StatusNotFound, "Google sign-in is not enabled")
		return
	}
	http.SetCookie(w, &http.Cookie{Name: oauthStateCookie, Path: "/auth/oauth/google", MaxAge: -1})

	cookie, err := r.Cookie(oauthStateCookie)
	state := r.URL.Query().Get("state")
	if err != nil || state == "" || subtle.ConstantTimeCompare([]byte(cookie.Value), []byte(state)) != 1 {
		s.audit(r, "auth.oauth", security.OutcomeFail, "reason", "state_mismatch")
		writeError(w, http.StatusBadRequest, "Invalid sign-in state")
		return
	}
	code := r.URL.Query().Get("code")
	if code == "" {
		s.audit(r, "auth.oauth", security.OutcomeFail, "reason", "missing_code")
		writeError(w, http.StatusBadRequest, "Missing authorization code")
		return
	}
	profile, err := s.google.profile(r.Context(), code)
	if err != nil {
		s.audit(r, "auth.oauth", security.OutcomeFail, "reason", "provider_error")
		util.LoggerFromContext(r.Context()).Warn("google sign-in failed", "err", err)
		writeError(w, http.StatusUnauthorized, "Google sign-in failed")
		return
	}
	user, token, err := s.app.ProvisionOAuthUser(profile.Name, profile.Email)
	if err != nil {
		s.audit(r, "auth.oauth", security.OutcomeFail, "reason", "provisioning_failed")
		s.writeAppError(w, r, err)
		return
	}
	s.audit(r, "auth.oauth", security.OutcomeSuccess, "user_id", user.ID)
	writeJSON(w, http.StatusOK, s.authResponse(token, user))
}
