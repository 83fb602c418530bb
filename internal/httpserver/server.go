// internal/httpserver/server.go
//
// HTTP wiring for the daily-suggestions service.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs).
//   - Public endpoints: "/", "/health".
//   - Daily endpoints (optional auth): GET /daily-game/suggestions,
//     POST /game/score, GET /daily-game/leaderboard.
//   - Event stream: GET /events (websocket).
//   - Auth endpoints: /auth/signup, /auth/login, /auth/logout, /auth/me.
//   - JWT + cookie handling, anonymous guest cookie.
//
// Notes:
//   - CORS is origin-aware and credentials-enabled (so cookies work).
//   - Optional auth decorates requests with user context when a valid
//     token is present; guests fall back to an anonymous cookie so
//     played-state still tracks per browser.

package httpserver

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/harshal-mamo-technolabs/bazzingo-games/internal/catalog"
	"github.com/harshal-mamo-technolabs/bazzingo-games/internal/game"
	"github.com/harshal-mamo-technolabs/bazzingo-games/internal/store"
	"github.com/harshal-mamo-technolabs/bazzingo-games/internal/suggest"
)

// Config carries the server's runtime settings.
type Config struct {
	JWTSecret       string
	JWTExpiresDays  int
	CookieName      string
	ClientOrigin    string
	DailySalt       string
	SuggestionCount int
	Secure          bool // production cookies (Secure + SameSite=None)
}

func (c *Config) defaults() {
	if c.JWTSecret == "" {
		c.JWTSecret = "dev_secret_change_me"
	}
	if c.JWTExpiresDays <= 0 {
		c.JWTExpiresDays = 14
	}
	if c.CookieName == "" {
		c.CookieName = "bazzingo_token"
	}
	if c.ClientOrigin == "" {
		c.ClientOrigin = "http://localhost:5173"
	}
	if c.DailySalt == "" {
		c.DailySalt = "local_dev_salt"
	}
}

// Server bundles router, store, hub, and config.
type Server struct {
	r     *chi.Mux
	store store.Store
	hub   *Hub
	cfg   Config
	now   func() time.Time
}

// New constructs a Server, installs middleware, and registers routes.
func New(cfg Config, st store.Store) *Server {
	cfg.defaults()
	s := &Server{r: chi.NewRouter(), store: st, hub: NewHub(), cfg: cfg, now: time.Now}

	// --- middleware ---
	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.RealIP)
	s.r.Use(chimw.Recoverer)
	s.r.Use(chimw.Timeout(10 * time.Second))
	s.r.Use(jsonContentType)
	s.r.Use(s.cors)

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"service":   "bazzingo-games",
			"endpoints": []string{"/health", "GET /daily-game/suggestions", "POST /game/score", "GET /daily-game/leaderboard", "GET /events", "/auth/*"},
		})
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})

	// Daily endpoints — OPTIONAL AUTH (guests tracked by anon cookie)
	s.r.With(s.withOptionalAuth).Get("/daily-game/suggestions", s.handleSuggestions)
	s.r.With(s.withOptionalAuth).Post("/game/score", s.handleSubmitScore)
	s.r.Get("/daily-game/leaderboard", s.handleLeaderboard)

	// Score event stream
	s.r.Get("/events", s.hub.ServeHTTP)

	// Auth
	s.r.Post("/auth/signup", s.handleSignup)
	s.r.Post("/auth/login", s.handleLogin)
	s.r.Post("/auth/logout", s.handleLogout)
	s.r.With(s.requireAuth).Get("/auth/me", s.handleMe)

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "path": r.URL.Path})
	})

	return s
}

// Start begins serving HTTP on addr.
func (s *Server) Start(addr string) error { return http.ListenAndServe(addr, s.r) }

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// Hub exposes the event hub so the process can bridge other sources
// into it.
func (s *Server) Hub() *Hub { return s.hub }

// ----------------------------- middleware ----------------------------------

// cors enables credentialed CORS for the configured client origin.
func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", s.cfg.ClientOrigin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// jsonContentType sets a default JSON Content-Type header on all
// responses. The websocket upgrade on /events hijacks the connection
// and writes its own handshake, so the default is harmless there.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// ------------------------------ DAILY --------------------------------------

// handleSuggestions returns today's rotation with per-user played
// flags, wrapped in the {data:{suggestion:{games}}} envelope clients
// expect.
func (s *Server) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	uid := s.identity(w, r)
	date := catalog.DateKey(s.now())

	played, err := s.store.PlayedGames(r.Context(), uid, date)
	if err != nil {
		log.Error().Err(err).Msg("load played games")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}

	rotation := catalog.SuggestionsFor(date, s.cfg.DailySalt, s.cfg.SuggestionCount)
	games := make([]suggest.Entry, 0, len(rotation))
	for _, sg := range rotation {
		games = append(games, suggest.Entry{
			GameID: suggest.Identity{
				ID:        sg.Game.ID,
				URL:       sg.Game.URL,
				Thumbnail: sg.Game.Thumbnail,
				Name:      sg.Game.Name,
				Category:  sg.Game.Category,
			},
			URL:        sg.Game.URL,
			Difficulty: sg.Difficulty,
			IsPlayed:   played[sg.Game.ID],
		})
	}

	type suggestion struct {
		Date  string          `json:"date"`
		Games []suggest.Entry `json:"games"`
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"data": map[string]any{
			"suggestion": suggestion{Date: date, Games: games},
		},
	})
}

// submitScoreReq is the payload for POST /game/score.
type submitScoreReq struct {
	GameID string  `json:"gameId"`
	Score  float64 `json:"score"`
}

// handleSubmitScore records a score once per user/game/day and
// broadcasts the terminal event. A duplicate submission is a no-op
// success, keeping the client's retry path idempotent.
func (s *Server) handleSubmitScore(w http.ResponseWriter, r *http.Request) {
	var req submitScoreReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	if _, ok := catalog.ByID(req.GameID); !ok {
		writeError(w, http.StatusBadRequest, "unknown_game")
		return
	}

	uid := s.identity(w, r)
	date := catalog.DateKey(s.now())
	score := game.ClampScore(req.Score, game.DefaultMaxScore)

	recorded, err := s.store.RecordScore(r.Context(), store.ScoreResult{
		ID:        uuid.NewString(),
		UserID:    uid,
		GameID:    req.GameID,
		Date:      date,
		Score:     score,
		CreatedAt: s.now().UTC(),
	})
	if err != nil {
		log.Error().Err(err).Str("gameId", req.GameID).Msg("record score")
		s.hub.Broadcast(ScoreEvent{GameID: req.GameID, Score: score, Success: false, Error: "db_error"})
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	if recorded {
		s.hub.Broadcast(ScoreEvent{GameID: req.GameID, Score: score, Success: true})
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "recorded": recorded, "score": score})
}

// handleLeaderboard returns the top scores for a date (default today).
func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = catalog.DateKey(s.now())
	}
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}
	rows, err := s.store.Leaderboard(r.Context(), date, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"date": date, "top": rows})
}

// ------------------------------- AUTH --------------------------------------

type signupReq struct{ Username, Password string }
type loginReq struct{ Username, Password string }

// authUser is placed into request context by auth middleware.
type authUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

type ctxUserKey struct{}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var body signupReq
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	username := strings.TrimSpace(body.Username)
	if err := validateSignup(username, body.Password); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if _, err := s.store.UserByUsername(r.Context(), username); err == nil {
		writeError(w, http.StatusConflict, "Username taken")
		return
	}
	h, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "hash_failed")
		return
	}
	u := store.User{ID: uuid.NewString(), Username: username, PasswordHash: string(h), CreatedAt: s.now().UTC()}
	if err := s.store.CreateUser(r.Context(), u); err != nil {
		writeError(w, http.StatusInternalServerError, "create_failed")
		return
	}
	tok, exp, err := s.signJWT(u.ID, u.Username)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "sign_failed")
		return
	}
	s.setAuthCookie(w, tok, exp)
	writeJSON(w, http.StatusOK, map[string]any{"id": u.ID, "username": u.Username, "createdAt": u.CreatedAt})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body loginReq
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	u, err := s.store.UserByUsername(r.Context(), strings.TrimSpace(body.Username))
	if err != nil || bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(body.Password)) != nil {
		writeError(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}
	tok, exp, err := s.signJWT(u.ID, u.Username)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "sign_failed")
		return
	}
	s.setAuthCookie(w, tok, exp)
	writeJSON(w, http.StatusOK, map[string]any{"id": u.ID, "username": u.Username})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.clearAuthCookie(w)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	me, _ := r.Context().Value(ctxUserKey{}).(*authUser)
	if me == nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	writeJSON(w, http.StatusOK, me)
}

func validateSignup(u, p string) error {
	if len(u) < 3 || len(u) > 24 {
		return errors.New("username must be 3-24 chars")
	}
	for _, r := range u {
		if !(r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return errors.New("username: letters, numbers, underscore only")
		}
	}
	if len(p) < 8 || len(p) > 100 {
		return errors.New("password must be 8-100 chars")
	}
	return nil
}

// --------------------------- identity --------------------------------------

const anonCookieName = "bazzingo_anon"

// identity returns the authenticated user id, or the anonymous cookie
// id for guests (setting the cookie if absent).
func (s *Server) identity(w http.ResponseWriter, r *http.Request) string {
	if me, _ := r.Context().Value(ctxUserKey{}).(*authUser); me != nil {
		return me.ID
	}
	return s.ensureAnonID(w, r)
}

// ensureAnonID returns an existing anon cookie or sets a new one, so
// guest played-state is stable per browser.
func (s *Server) ensureAnonID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(anonCookieName); err == nil && c.Value != "" {
		return c.Value
	}
	id := genID()
	http.SetCookie(w, &http.Cookie{
		Name:     anonCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.cfg.Secure,
		SameSite: s.sameSite(),
		Expires:  s.now().Add(180 * 24 * time.Hour),
	})
	return id
}

// genID creates a 22-char URL-safe, crypto-random identifier.
func genID() string {
	var b [16]byte
	_, _ = rand.Read(b[:])
	v := base64.URLEncoding.WithPadding(base64.NoPadding).EncodeToString(b[:])
	if len(v) > 22 {
		return v[:22]
	}
	return v
}

// --------------------------- optional auth ---------------------------------

// withOptionalAuth decorates requests with user context if a valid
// JWT is present. It never 401s; guests are allowed everywhere the
// daily routes are mounted.
func (s *Server) withOptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if tok := s.bearerOrCookie(r); tok != "" {
			claims := jwt.MapClaims{}
			if t, err := jwt.ParseWithClaims(tok, claims, func(t *jwt.Token) (interface{}, error) {
				return []byte(s.cfg.JWTSecret), nil
			}); err == nil && t.Valid {
				if id, _ := claims["id"].(string); id != "" {
					if u, err := s.store.UserByID(r.Context(), id); err == nil {
						ctx := context.WithValue(r.Context(), ctxUserKey{}, &authUser{ID: u.ID, Username: u.Username})
						r = r.WithContext(ctx)
					}
				}
			}
		}
		next.ServeHTTP(w, r)
	})
}

// requireAuth enforces a valid JWT and injects authUser into request
// context.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tok := s.bearerOrCookie(r)
		if tok == "" {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		claims := jwt.MapClaims{}
		t, err := jwt.ParseWithClaims(tok, claims, func(t *jwt.Token) (interface{}, error) {
			return []byte(s.cfg.JWTSecret), nil
		})
		if err != nil || !t.Valid {
			writeError(w, http.StatusUnauthorized, "Invalid token")
			return
		}
		id, _ := claims["id"].(string)
		username, _ := claims["username"].(string)
		if id == "" || username == "" {
			writeError(w, http.StatusUnauthorized, "Invalid token")
			return
		}
		if _, err := s.store.UserByID(r.Context(), id); err != nil {
			writeError(w, http.StatusUnauthorized, "Invalid token")
			return
		}
		ctx := context.WithValue(r.Context(), ctxUserKey{}, &authUser{ID: id, Username: username})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ------------------------------ JWT & cookies ------------------------------

// signJWT creates an HS256 JWT with id/username and the configured
// expiry.
func (s *Server) signJWT(id, username string) (string, time.Time, error) {
	exp := s.now().Add(time.Duration(s.cfg.JWTExpiresDays) * 24 * time.Hour)
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":       id,
		"username": username,
		"exp":      exp.Unix(),
		"iat":      s.now().Unix(),
	})
	ss, err := t.SignedString([]byte(s.cfg.JWTSecret))
	return ss, exp, err
}

func (s *Server) sameSite() http.SameSite {
	if s.cfg.Secure {
		return http.SameSiteNoneMode // required for third-party contexts when Secure
	}
	return http.SameSiteLaxMode
}

func (s *Server) setAuthCookie(w http.ResponseWriter, token string, exp time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cfg.CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.cfg.Secure,
		SameSite: s.sameSite(),
		Expires:  exp,
	})
}

func (s *Server) clearAuthCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cfg.CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   s.cfg.Secure,
		SameSite: s.sameSite(),
		MaxAge:   -1,
	})
}

// bearerOrCookie extracts a bearer token from the Authorization
// header or the auth cookie.
func (s *Server) bearerOrCookie(r *http.Request) string {
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	if c, err := r.Cookie(s.cfg.CookieName); err == nil {
		return c.Value
	}
	return ""
}
