package admin

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/shopbot/miniapp-shop/app/config"
	"github.com/shopbot/miniapp-shop/app/session"
	"go.uber.org/zap"
)

// CookieName holds the admin session ID.
const CookieName = "admin_session"

type SessionStore interface {
	Redeem(ctx context.Context, token string) (string, int64, error)
	Lookup(ctx context.Context, sessionID string) (int64, error)
	SessionTTL() time.Duration
}

type TokenIssuer interface {
	IssueLoginToken(ctx context.Context, chatID int64) (string, error)
}

type adminKey struct{}

// AdminFromContext returns the chat ID of the admin making the request.
func AdminFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(adminKey{}).(int64)
	return id, ok
}

// Auth gates the admin pages. A request is let through only when its
// session belongs to a chat ID in the admin set.
type Auth struct {
	sessions SessionStore
	admins   config.Admins
	log      *zap.Logger
}

func NewAuth(sessions SessionStore, admins config.Admins, log *zap.Logger) *Auth {
	return &Auth{sessions: sessions, admins: admins, log: log}
}

func (a *Auth) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie(CookieName)
		if err != nil {
			http.Error(w, "unauthorized: open the admin page from the bot with /admin", http.StatusUnauthorized)
			return
		}
		chatID, err := a.sessions.Lookup(r.Context(), c.Value)
		if err != nil {
			if errors.Is(err, session.ErrSessionNotFound) {
				http.Error(w, "unauthorized: session expired, request a new link with /admin", http.StatusUnauthorized)
				return
			}
			a.log.Error("session lookup failed", zap.Error(err))
			http.Error(w, "session error", http.StatusInternalServerError)
			return
		}
		if !a.admins.Contains(chatID) {
			a.log.Warn("non-admin session rejected", zap.Int64("chat_id", chatID))
			http.Error(w, "access denied", http.StatusForbidden)
			return
		}
		ctx := context.WithValue(r.Context(), adminKey{}, chatID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// HandleLogin redeems the one-time token from the bot link and sets the
// session cookie.
func (a *Auth) HandleLogin(w http.ResponseWriter, r *http.Request) {
	sessionID, chatID, err := a.sessions.Redeem(r.Context(), r.URL.Query().Get("token"))
	if err != nil {
		if errors.Is(err, session.ErrTokenNotFound) {
			http.Error(w, "this link has expired or was already used, request a new one with /admin", http.StatusUnauthorized)
			return
		}
		a.log.Error("login token redeem failed", zap.Error(err))
		http.Error(w, "session error", http.StatusInternalServerError)
		return
	}
	if !a.admins.Contains(chatID) {
		a.log.Warn("login link redeemed by non-admin", zap.Int64("chat_id", chatID))
		http.Error(w, "access denied", http.StatusForbidden)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    sessionID,
		Path:     "/",
		MaxAge:   int(a.sessions.SessionTTL().Seconds()),
		HttpOnly: true,
		Secure:   r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https",
		SameSite: http.SameSiteLaxMode,
	})
	a.log.Info("admin logged in", zap.Int64("chat_id", chatID))
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

// LinkIssuer builds one-time admin login URLs for the bot.
type LinkIssuer struct {
	tokens  TokenIssuer
	baseURL string
}

func NewLinkIssuer(tokens TokenIssuer, baseURL string) *LinkIssuer {
	return &LinkIssuer{tokens: tokens, baseURL: baseURL}
}

func (l *LinkIssuer) AdminLoginURL(ctx context.Context, chatID int64) (string, error) {
	token, err := l.tokens.IssueLoginToken(ctx, chatID)
	if err != nil {
		return "", err
	}
	return l.baseURL + "/admin/login?token=" + url.QueryEscape(token), nil
}
