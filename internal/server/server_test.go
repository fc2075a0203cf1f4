package server

import (
	"context"
	"encoding/json"
	"html"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/pthm/shipform/hx"
	"github.com/pthm/shipform/internal/address"
	"github.com/pthm/shipform/internal/config"
	"github.com/pthm/shipform/internal/region"
	"github.com/pthm/shipform/internal/shipping"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := config.Default()
	cfg.PropsKey = "test-props-key"
	cfg.SubmitDelay = 0

	src := func(path string) region.Source { return region.NewFileSource(path) }
	return New(cfg, nil, WithSources(
		src("../region/testdata/provinces.json"),
		src("../region/testdata/wards.json"),
	))
}

func do(s *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

var mountPattern = regexp.MustCompile(`hx-get="([^"]+)"`)

// mountURL returns the deferred form URL embedded in the index page.
func mountURL(t *testing.T, s *Server) string {
	t.Helper()
	rec := do(s, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("GET / status = %d, want 200", rec.Code)
	}
	m := mountPattern.FindStringSubmatch(rec.Body.String())
	if m == nil {
		t.Fatalf("GET / body has no hx-get: %q", rec.Body.String())
	}
	return html.UnescapeString(m[1])
}

func TestIndexCreatesSession(t *testing.T) {
	s := newTestServer(t)

	u := mountURL(t, s)
	if !strings.HasPrefix(u, ComponentPath+"shipping-") {
		t.Errorf("mount URL = %q, want %sshipping- prefix", u, ComponentPath)
	}
	if s.sessions.Len() != 1 {
		t.Errorf("sessions = %d, want 1", s.sessions.Len())
	}
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t)

	rec := do(s, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field = %v, want ok", body["status"])
	}
}

func TestOptionsAPI(t *testing.T) {
	s := newTestServer(t)

	rec := do(s, httptest.NewRequest(http.MethodGet, "/api/regions/01/wards", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"value":"00004"`) || strings.Contains(rec.Body.String(), "26734") {
		t.Errorf("body = %s, want only wards of 01", rec.Body.String())
	}
}

func TestFormFlow(t *testing.T) {
	s := newTestServer(t)
	mount := mountURL(t, s)

	rec := do(s, httptest.NewRequest(http.MethodGet, mount, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("mount status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `<option value="01">`) {
		t.Fatalf("mount body missing city options: %q", rec.Body.String())
	}

	parsed, err := url.Parse(mount)
	if err != nil {
		t.Fatal(err)
	}
	token := parsed.Query().Get(hx.PropsParam)
	prefix := strings.TrimSuffix(parsed.Path, "/")

	post := func(action string, form url.Values) *httptest.ResponseRecorder {
		form.Set(hx.PropsParam, token)
		req := httptest.NewRequest(http.MethodPost, prefix+"/"+action, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("HX-Request", "true")
		return do(s, req)
	}

	rec = post("region", url.Values{address.FieldCity: {"01"}})
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `value="00004"`) {
		t.Fatalf("region: %d %q", rec.Code, rec.Body.String())
	}

	rec = post("submit", url.Values{
		address.FieldHouseNumber: {"12"},
		address.FieldStreet:      {"Main St"},
		address.FieldCity:        {"01"},
		address.FieldWard:        {"00004"},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("submit status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "alert-success") {
		t.Errorf("submit body = %q, want success banner", rec.Body.String())
	}
}

func TestMutationRequiresHTMX(t *testing.T) {
	s := newTestServer(t)
	mount := mountURL(t, s)
	path := strings.SplitN(mount, "?", 2)[0]

	req := httptest.NewRequest(http.MethodPost, path+"submit", nil)
	if rec := do(s, req); rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
}

func TestTamperedPropsRejected(t *testing.T) {
	s := newTestServer(t)
	mount := mountURL(t, s)
	path := strings.SplitN(mount, "?", 2)[0]

	req := httptest.NewRequest(http.MethodGet, path+"?p=bm90LXNpZ25lZA.AAAAAAAAAAAAAAAAAAAAAA", nil)
	if rec := do(s, req); rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestExpiredSessionShowsBanner(t *testing.T) {
	s := newTestServer(t)

	u := s.form.URL("", shipping.FormProps{FormID: "gone"})
	req := httptest.NewRequest(http.MethodGet, u, nil)
	req.Header.Set("HX-Request", "true")
	rec := do(s, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if got := rec.Header().Get("HX-Reswap"); got != hx.SwapNone {
		t.Errorf("HX-Reswap = %q, want %q", got, hx.SwapNone)
	}
	if !strings.Contains(rec.Body.String(), shipping.MsgExpired) {
		t.Errorf("body = %q, want expiry banner", rec.Body.String())
	}
}

func TestRunShutsDownOnCancel(t *testing.T) {
	cfg := config.Default()
	cfg.Addr = "127.0.0.1:0"
	s := New(cfg, nil, WithSources(region.NewFileSource("x"), region.NewFileSource("y")))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() error = %v, want nil", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run() did not return after cancel")
	}
}
