package browser_test

import (
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/playwright-community/playwright-go"

	web "meetup/internal/adapters/http"
	"meetup/internal/adapters/meetupapi"
	"meetup/internal/adapters/storage"
	sessionStore "meetup/internal/adapters/storage/session"
	"meetup/internal/config"
)

const (
	adminEmail    = "admin@test.com"
	adminPassword = "TestPass123!"
	memberEmail   = "member@test.com"
)

// backend is an in-memory meetup REST API.
type backend struct {
	mu         sync.Mutex
	users      []map[string]any
	groups     []map[string]any
	attendance map[string]string
	teams      map[int64][]map[string]any
	shuffles   []string
}

func newBackend() *backend {
	today := time.Now().In(config.FixedZone(9)).Format("2006-01-02")
	return &backend{
		users: []map[string]any{
			{"id": 1, "username": "관리자", "gender": "남", "email": adminEmail, "role": "운영진", "attendance_count": 3, "created_at": "2025-01-01T00:00:00"},
			{"id": 2, "username": "회원1", "gender": "여", "email": memberEmail, "role": "회원", "attendance_count": 1, "created_at": "2025-01-02T00:00:00"},
		},
		groups: []map[string]any{
			{"id": 10, "date": "2099-01-01", "part_counts": map[string]any{"FIRST": map[string]int{"admin": 1, "member": 2}}},
			{"id": 11, "date": today},
		},
		attendance: make(map[string]string),
		teams: map[int64][]map[string]any{
			10: {
				{"id": 100, "part": "FIRST", "members": []map[string]any{{"id": 1, "username": "관리자", "role": "운영진", "is_leader": true}}},
				{"id": 101, "part": "FIRST", "members": []map[string]any{{"id": 2, "username": "회원1", "role": "회원"}}},
			},
		},
	}
}

func (b *backend) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		email := r.FormValue("email")
		if r.FormValue("password") != adminPassword {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Invalid credentials"})
			return
		}
		for _, u := range b.snapshotUsers() {
			if u["email"] == email {
				writeJSON(w, http.StatusOK, u)
				return
			}
		}
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Invalid credentials"})
	})
	mux.HandleFunc("GET /api/v1/users/get_users_detail", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, b.snapshotUsers())
	})
	mux.HandleFunc("POST /api/v1/users/register_user", func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseMultipartForm(1 << 20)
		b.mu.Lock()
		b.users = append(b.users, map[string]any{
			"id": len(b.users) + 1, "username": r.FormValue("username"), "gender": r.FormValue("gender"),
			"email": r.FormValue("email"), "role": r.FormValue("role"), "interests": r.FormValue("interests"),
			"created_at": "2025-02-01T00:00:00",
		})
		b.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]string{"message": "ok"})
	})
	mux.HandleFunc("GET /api/v1/groups/list", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		writeJSON(w, http.StatusOK, b.groups)
	})
	mux.HandleFunc("GET /api/v1/groups/{id}/teams", func(w http.ResponseWriter, r *http.Request) {
		id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
		b.mu.Lock()
		defer b.mu.Unlock()
		teams := b.teams[id]
		if teams == nil {
			teams = []map[string]any{}
		}
		writeJSON(w, http.StatusOK, teams)
	})
	mux.HandleFunc("GET /api/v1/groups/{id}/my_team", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"team_id": nil})
	})
	mux.HandleFunc("POST /api/v1/groups/{id}/shuffle", func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseMultipartForm(1 << 20)
		b.mu.Lock()
		b.shuffles = append(b.shuffles, r.PathValue("id")+"/"+r.FormValue("part"))
		b.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]any{"message": "셔플 완료", "조 수": 1, "총원": 2})
	})
	mux.HandleFunc("GET /api/v1/attendance/get", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		b.mu.Lock()
		s, ok := b.attendance[q.Get("group_id")+"/"+q.Get("user_id")+"/"+q.Get("part")]
		b.mu.Unlock()
		if !ok {
			writeJSON(w, http.StatusOK, map[string]any{"status": nil})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"status": s})
	})
	mux.HandleFunc("POST /api/v1/attendance/set", func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseMultipartForm(1 << 20)
		b.mu.Lock()
		b.attendance[r.FormValue("group_id")+"/"+r.FormValue("user_id")+"/"+r.FormValue("part")] = r.FormValue("status")
		b.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]string{"message": "ok"})
	})
	return mux
}

func (b *backend) snapshotUsers() []map[string]any {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]map[string]any, len(b.users))
	copy(out, b.users)
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// testApp holds the running servers and Playwright handles.
type testApp struct {
	BaseURL string
	Backend *backend
	PW      *playwright.Playwright
	Browser playwright.Browser
}

// newTestApp starts the fake API, the web server on a sqlite session store and a browser.
func newTestApp(t *testing.T) *testApp {
	t.Helper()

	be := newBackend()
	apiSrv := httptest.NewServer(be.handler())

	db, err := storage.Open(filepath.Join(t.TempDir(), "sessions.db"))
	if err != nil {
		t.Fatalf("failed to open session db: %v", err)
	}

	api, err := meetupapi.New(apiSrv.URL)
	if err != nil {
		t.Fatalf("failed to create api client: %v", err)
	}

	// Find a free port
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to find free port: %v", err)
	}
	port := listener.Addr().(*net.TCPAddr).Port
	listener.Close()

	cfg, err := config.FromLookup(func(string) string { return "" })
	if err != nil {
		t.Fatalf("default config: %v", err)
	}
	mux := web.NewMux(&web.App{
		API:            api,
		Sessions:       sessionStore.NewSQLiteStore(db),
		Location:       cfg.Location,
		SessionTTL:     time.Hour,
		Notice:         "**테스트 공지**",
		CSRFKey:        cfg.CSRFKey,
		TrustedOrigins: []string{fmt.Sprintf("127.0.0.1:%d", port), fmt.Sprintf("localhost:%d", port)},
		RateLimit:      1000,
	})
	srv := &http.Server{
		Addr:    fmt.Sprintf("127.0.0.1:%d", port),
		Handler: mux,
	}
	go func() {
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Printf("test server error: %v", err)
		}
	}()

	// Wait for server to be ready
	baseURL := fmt.Sprintf("http://127.0.0.1:%d", port)
	for i := 0; i < 50; i++ {
		resp, err := http.Get(baseURL + "/healthz")
		if err == nil {
			resp.Body.Close()
			break
		}
		time.Sleep(100 * time.Millisecond)
	}

	pw, err := playwright.Run()
	if err != nil {
		t.Fatalf("failed to start Playwright: %v", err)
	}
	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
	})
	if err != nil {
		t.Fatalf("failed to launch browser: %v", err)
	}

	t.Cleanup(func() {
		browser.Close()
		pw.Stop()
		srv.Close()
		web.Close()
		apiSrv.Close()
		db.Close()
	})

	return &testApp{BaseURL: baseURL, Backend: be, PW: pw, Browser: browser}
}

// newPage creates a new browser page (tab).
func (a *testApp) newPage(t *testing.T) playwright.Page {
	t.Helper()
	page, err := a.Browser.NewPage()
	if err != nil {
		t.Fatalf("failed to create page: %v", err)
	}
	t.Cleanup(func() { page.Close() })
	return page
}

// login signs in through the login form and waits for the home page.
func (a *testApp) login(t *testing.T, page playwright.Page, email string) {
	t.Helper()
	if _, err := page.Goto(a.BaseURL + "/login"); err != nil {
		t.Fatalf("failed to navigate to login: %v", err)
	}
	if err := page.Locator("input[name=email]").Fill(email); err != nil {
		t.Fatalf("failed to fill email: %v", err)
	}
	if err := page.Locator("input[name=password]").Fill(adminPassword); err != nil {
		t.Fatalf("failed to fill password: %v", err)
	}
	if err := page.Locator("#login-form button[type=submit]").Click(); err != nil {
		t.Fatalf("failed to click login: %v", err)
	}
	if err := page.WaitForURL(a.BaseURL+"/", playwright.PageWaitForURLOptions{
		Timeout: playwright.Float(10000),
	}); err != nil {
		t.Fatalf("login did not redirect to home: %v", err)
	}
}

// waitText waits until selector shows text.
func waitText(t *testing.T, page playwright.Page, selector, text string) {
	t.Helper()
	err := page.Locator(selector + " >> text=" + text).First().WaitFor(playwright.LocatorWaitForOptions{
		Timeout: playwright.Float(5000),
	})
	if err != nil {
		t.Errorf("%s never showed %q: %v", selector, text, err)
	}
}
