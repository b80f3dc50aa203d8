package www

import (
	"net/http"

	"github.com/gorilla/sessions"
	"golang.org/x/crypto/bcrypt"
)

const sessionName = "warebot-session"

// defaultAdminHash is bcrypt("password"), used when no hash is configured.
const defaultAdminHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

func newSessionStore(secret string) *sessions.CookieStore {
	if secret == "" {
		secret = "warebot-default-secret-change-me"
	}
	s := sessions.NewCookieStore([]byte(secret))
	s.Options.HttpOnly = true
	s.Options.Secure = false // plain HTTP on the lab network
	s.Options.SameSite = http.SameSiteLaxMode
	return s
}

func checkPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func (h *Handlers) isAuthenticated(r *http.Request) bool {
	session, err := h.sessions.Get(r, sessionName)
	if err != nil {
		return false
	}
	auth, ok := session.Values["authenticated"].(bool)
	return ok && auth
}

func (h *Handlers) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !h.isAuthenticated(r) {
			h.jsonError(w, "authentication required", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handlers) adminHash() string {
	if hash := h.engine.AppConfig().Web.AdminPasswordHash; hash != "" {
		return hash
	}
	return defaultAdminHash
}

func (h *Handlers) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	password := r.FormValue("password")
	if !checkPassword(h.adminHash(), password) {
		h.jsonError(w, "invalid password", http.StatusUnauthorized)
		return
	}

	session, _ := h.sessions.Get(r, sessionName)
	session.Values["authenticated"] = true
	if err := session.Save(r, w); err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.jsonOK(w, map[string]bool{"authenticated": true})
}

func (h *Handlers) handleLogout(w http.ResponseWriter, r *http.Request) {
	session, _ := h.sessions.Get(r, sessionName)
	session.Values["authenticated"] = false
	session.Save(r, w)
	h.jsonOK(w, map[string]bool{"authenticated": false})
}
