package web

import (
	"context"
	"embed"
	"io/fs"
	"net/http"
	"time"

	"meetup/internal/adapters/http/middleware"
	"meetup/internal/adapters/http/perf"
	"meetup/internal/adapters/meetupapi"
	sessionStore "meetup/internal/adapters/storage/session"
	"meetup/internal/application/orchestrators"
	"meetup/internal/domain/group"
	"meetup/internal/domain/member"
	"meetup/internal/domain/team"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// API is the subset of the meetup API client the handlers call.
type API interface {
	Login(ctx context.Context, email, password string) (member.Identity, error)
	ListUsers(ctx context.Context) ([]member.User, error)
	RegisterUser(ctx context.Context, in member.RegisterInput) (meetupapi.Message, error)
	UpdateUser(ctx context.Context, in member.UpdateInput) (meetupapi.Message, error)
	CreateGroup(ctx context.Context, date string) (meetupapi.Message, error)
	ListGroups(ctx context.Context) ([]group.Group, error)
	ListTeams(ctx context.Context, groupID int64) ([]team.Team, error)
	MyTeam(ctx context.Context, groupID, userID int64) (*int64, error)
	GetAttendance(ctx context.Context, groupID, userID int64, part string) (*string, error)
	SetAttendance(ctx context.Context, groupID, userID int64, part, status string) error
	Shuffle(ctx context.Context, groupID int64, part string, teamSize int) (meetupapi.ShuffleResult, error)
}

// App holds everything the handlers need.
type App struct {
	API      API
	Sessions sessionStore.Store
	// Invite is nil when invitation mail is disabled.
	Invite    *orchestrators.InvitationConfig
	Collector *perf.Collector

	// Location is the zone of the clock and of "today".
	Location   *time.Location
	SessionTTL time.Duration
	// Notice is markdown shown above the group list.
	Notice string

	CSRFKey        []byte
	Secure         bool
	TrustedOrigins []string
	RateLimit      int
	SlowRequestMs  int
}

// app is set by NewMux.
var app *App

// timeNow is a variable for testability.
var timeNow = time.Now

// limiter is created by NewMux and stopped by Close.
var limiter *middleware.RateLimiter

// NewMux wires HTTP handlers for the app.
// PRE: a.API, a.Sessions and a.CSRFKey are set
// POST: Returns the handler with the full middleware chain applied
func NewMux(a *App) http.Handler {
	app = a
	if app.Location == nil {
		app.Location = time.UTC
	}

	mux := http.NewServeMux()
	registerRoutes(mux)

	rate := a.RateLimit
	if rate <= 0 {
		rate = 10
	}
	limiter = middleware.NewRateLimiter(rate, time.Second)

	// Timing -> RateLimit -> Auth -> CSRF -> SecurityHeaders -> Mux
	return middleware.Chain(mux,
		middleware.SecurityHeaders,
		middleware.CSRF(a.CSRFKey, a.Secure, a.TrustedOrigins),
		middleware.Auth(a.Sessions),
		middleware.RateLimit(limiter),
		middleware.Timing(a.Collector, a.SlowRequestMs),
	)
}

// Close releases background resources started by NewMux.
func Close() {
	if limiter != nil {
		limiter.Close()
	}
}

func registerRoutes(mux *http.ServeMux) {
	static, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(static)))
	mux.HandleFunc("GET /healthz", handleHealthz)

	mux.HandleFunc("GET /login", handleLoginPage)
	mux.HandleFunc("POST /login", handleLogin)
	mux.HandleFunc("POST /logout", handleLogout)

	authed := middleware.RequireAuth
	mux.Handle("GET /{$}", authed(http.HandlerFunc(handleHome)))
	mux.Handle("POST /attendance", authed(http.HandlerFunc(handleSetAttendance)))
	mux.Handle("GET /groups/{id}/teams", authed(http.HandlerFunc(handleTeams)))

	admin := middleware.RequireRole(member.PrivilegedRoles...)
	mux.Handle("GET /admin", admin(http.HandlerFunc(handleAdmin)))
	mux.Handle("POST /admin/users", admin(http.HandlerFunc(handleRegisterUser)))
	mux.Handle("GET /admin/users/{id}/edit", admin(http.HandlerFunc(handleEditUserPage)))
	mux.Handle("POST /admin/users/{id}/edit", admin(http.HandlerFunc(handleEditUser)))
	mux.Handle("POST /admin/groups", admin(http.HandlerFunc(handleCreateGroup)))
	mux.Handle("POST /admin/groups/{id}/select", admin(http.HandlerFunc(handleSelectGroup)))
	mux.Handle("POST /admin/shuffle", admin(http.HandlerFunc(handleShuffle)))
	mux.Handle("GET /admin/perf", admin(http.HandlerFunc(handlePerf)))
}
