package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"gamebot-panel/internal/domain"
	"gamebot-panel/internal/domain/model"
	"gamebot-panel/internal/infra/redis"
)

const recentLogLimit = 100

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeDomainError maps the core's sentinel errors onto HTTP statuses.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrUsernameTaken),
		errors.Is(err, domain.ErrSeatLimitExceeded),
		errors.Is(err, domain.ErrAlreadyRedeemed):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrInvalidCode):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// ---- response shapes (never expose password hashes) ----

type userResponse struct {
	ID          string     `json:"id"`
	Username    string     `json:"username"`
	Email       string     `json:"email,omitempty"`
	IsDeveloper bool       `json:"is_developer"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

func toUserResponse(u *model.User) userResponse {
	return userResponse{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		IsDeveloper: u.IsDeveloper,
		Status:      string(u.Status),
		CreatedAt:   u.CreatedAt,
		LastLoginAt: u.LastLoginAt,
	}
}

type activationResponse struct {
	ID          string    `json:"id"`
	CodeID      string    `json:"code_id"`
	UserID      string    `json:"user_id"`
	ActivatedAt time.Time `json:"activated_at"`
	ExpiresAt   time.Time `json:"expires_at"`
	Status      string    `json:"status"`
}

func toActivationResponse(a *model.Activation) activationResponse {
	return activationResponse{
		ID:          a.ID,
		CodeID:      a.CodeID,
		UserID:      a.UserID,
		ActivatedAt: a.ActivatedAt,
		ExpiresAt:   a.ExpiresAt,
		Status:      string(a.Status),
	}
}

type botResponse struct {
	ID        string    `json:"id"`
	UID       string    `json:"uid"`
	Nickname  string    `json:"nickname,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

func toBotResponse(b *model.BotAccount) botResponse {
	return botResponse{
		ID:        b.ID,
		UID:       b.UID,
		Nickname:  b.Nickname,
		Status:    string(b.Status),
		CreatedAt: b.CreatedAt,
	}
}

// ---- auth ----

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	user, err := s.accountUC.Register(r.Context(), req.Username, req.Password, req.Email)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toUserResponse(user))
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ip := remoteIP(r)
	ok, err := s.limiter.Allow(r.Context(), redis.LoginKey(req.Username, ip), s.opts.LoginAttempts, s.opts.LoginWindow)
	if err == nil && !ok {
		writeError(w, http.StatusTooManyRequests, "too many login attempts")
		return
	}

	user, err := s.accountUC.Authenticate(r.Context(), req.Username, req.Password, ip)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	sid, err := s.sessions.Create(r.Context(), user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to open session")
		return
	}
	token, err := s.codec.Issue(sid, user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to open session")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.opts.SessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   s.opts.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, toUserResponse(user))
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sessionCookie); err == nil {
		if sid, _, err := s.codec.Parse(cookie.Value); err == nil {
			_ = s.sessions.Delete(r.Context(), sid)
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.opts.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toUserResponse(currentUser(r)))
}

// ---- activation ----

type activateRequest struct {
	Code string `json:"code"`
}

func (s *Server) handleActivate(w http.ResponseWriter, r *http.Request) {
	var req activateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	grant, err := s.licUC.Redeem(r.Context(), currentUser(r), req.Code, remoteIP(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toActivationResponse(grant))
}

// ---- dashboard ----

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	stats, err := s.statsUC.UserDashboard(r.Context(), user.ID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	logs, err := s.auditUC.RecentByUser(r.Context(), user.ID, 10)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"stats":       stats,
		"recent_logs": logs,
	})
}

// ---- bots ----

func (s *Server) handleListBots(w http.ResponseWriter, r *http.Request) {
	bots, err := s.botUC.List(r.Context(), currentUser(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	out := make([]botResponse, 0, len(bots))
	for _, b := range bots {
		out = append(out, toBotResponse(b))
	}
	writeJSON(w, http.StatusOK, out)
}

type addBotRequest struct {
	UID      string `json:"uid"`
	Password string `json:"password"`
	Nickname string `json:"nickname"`
}

func (s *Server) handleAddBot(w http.ResponseWriter, r *http.Request) {
	var req addBotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	bot, err := s.botUC.Add(r.Context(), currentUser(r), req.UID, req.Password, req.Nickname, remoteIP(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toBotResponse(bot))
}

func (s *Server) handleDeleteBot(w http.ResponseWriter, r *http.Request) {
	botID := chi.URLParam(r, "id")
	if err := s.botUC.Delete(r.Context(), currentUser(r), botID, remoteIP(r)); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ---- developer ----

func (s *Server) handleDevStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.statsUC.DeveloperDashboard(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	activations, err := s.licUC.RecentActivations(r.Context(), 10)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	recent := make([]activationResponse, 0, len(activations))
	for _, a := range activations {
		recent = append(recent, toActivationResponse(a))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"stats":              stats,
		"recent_activations": recent,
	})
}

func (s *Server) handleListCodes(w http.ResponseWriter, r *http.Request) {
	codes, err := s.licUC.ListCodes(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, codes)
}

type issueCodeRequest struct {
	DurationDays int    `json:"duration_days"`
	MaxUsers     int    `json:"max_users"`
	Notes        string `json:"notes"`
}

func (s *Server) handleIssueCode(w http.ResponseWriter, r *http.Request) {
	var req issueCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	code, err := s.licUC.IssueCode(r.Context(), currentUser(r), req.DurationDays, req.MaxUsers, req.Notes)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, code)
}

func (s *Server) handleDeactivateCode(w http.ResponseWriter, r *http.Request) {
	codeID := chi.URLParam(r, "id")
	if err := s.licUC.DeactivateCode(r.Context(), currentUser(r), codeID); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.accountUC.List(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	system, err := s.auditUC.RecentSystem(r.Context(), recentLogLimit)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	connections, err := s.auditUC.RecentConnections(r.Context(), recentLogLimit)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"system_logs":     system,
		"connection_logs": connections,
	})
}
