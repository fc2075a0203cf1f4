package hx

import (
	"context"
	"html"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
)

// TestResult is the recorded outcome of a component request.
type TestResult struct {
	HTML            string
	StatusCode      int
	Headers         http.Header
	TriggeredEvents []string
	Flashes         []Flash
	RedirectURL     string
}

// TestAction runs a request through comp and records the response. The
// request carries HX-Request: true, and formData is sent url-encoded.
//
//	res, err := hx.TestAction(form, form.URL("", props), http.MethodGet, nil)
func TestAction(comp HXComponent, actionURL, method string, formData url.Values) (*TestResult, error) {
	return TestActionWithContext(context.Background(), comp, actionURL, method, formData)
}

// TestActionWithContext is TestAction with a caller-supplied context.
func TestActionWithContext(ctx context.Context, comp HXComponent, actionURL, method string, formData url.Values) (*TestResult, error) {
	body := ""
	if len(formData) > 0 {
		body = formData.Encode()
	}

	req := httptest.NewRequest(method, actionURL, strings.NewReader(body)).WithContext(ctx)
	if body != "" {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	req.Header.Set("HX-Request", "true")

	rec := httptest.NewRecorder()
	comp.HXServeHTTP(rec, req)

	res := &TestResult{
		HTML:        rec.Body.String(),
		StatusCode:  rec.Code,
		Headers:     rec.Header(),
		RedirectURL: rec.Header().Get("HX-Redirect"),
	}
	if trigger := rec.Header().Get("HX-Trigger"); trigger != "" {
		res.TriggeredEvents = parseTriggerHeader(trigger)
	}
	res.Flashes = parseFlashesFromHTML(res.HTML)
	return res, nil
}

// TestGet renders comp at url.
func TestGet(comp HXComponent, url string) (*TestResult, error) {
	return TestAction(comp, url, http.MethodGet, nil)
}

// TestPost posts formData to the action at url.
func TestPost(comp HXComponent, url string, formData url.Values) (*TestResult, error) {
	return TestAction(comp, url, http.MethodPost, formData)
}

// HTMLContains reports whether the body contains substr.
func (r *TestResult) HTMLContains(substr string) bool {
	return strings.Contains(r.HTML, substr)
}

// HTMLContainsAll reports whether the body contains every substring.
func (r *TestResult) HTMLContainsAll(substrs ...string) bool {
	for _, s := range substrs {
		if !strings.Contains(r.HTML, s) {
			return false
		}
	}
	return true
}

// HasEvent reports whether event was triggered.
func (r *TestResult) HasEvent(event string) bool {
	for _, e := range r.TriggeredEvents {
		if e == event {
			return true
		}
	}
	return false
}

// HasFlash reports whether a banner message with level and message was sent.
func (r *TestResult) HasFlash(level, message string) bool {
	for _, f := range r.Flashes {
		if f.Level == level && f.Message == message {
			return true
		}
	}
	return false
}

// HasFlashLevel reports whether any banner message with level was sent.
func (r *TestResult) HasFlashLevel(level string) bool {
	for _, f := range r.Flashes {
		if f.Level == level {
			return true
		}
	}
	return false
}

// IsOK reports a 200 response.
func (r *TestResult) IsOK() bool { return r.StatusCode == http.StatusOK }

// HasStatus reports whether the response status is code.
func (r *TestResult) HasStatus(code int) bool { return r.StatusCode == code }

// parseTriggerHeader returns the event names in an HX-Trigger value, which is
// either a comma separated list or a JSON object keyed by event.
func parseTriggerHeader(trigger string) []string {
	trigger = strings.TrimSpace(trigger)
	if trigger == "" {
		return nil
	}

	if strings.HasPrefix(trigger, "{") {
		var events []string
		gjson.Parse(trigger).ForEach(func(key, _ gjson.Result) bool {
			events = append(events, key.String())
			return true
		})
		return events
	}

	var events []string
	for _, p := range strings.Split(trigger, ",") {
		if p = strings.TrimSpace(p); p != "" {
			events = append(events, p)
		}
	}
	return events
}

var flashPattern = regexp.MustCompile(`(?s)<div class="alert alert-([a-z]+)" role="alert">(.*?)</div>`)

// parseFlashesFromHTML extracts the messages written by RenderFlashesOOB.
func parseFlashesFromHTML(body string) []Flash {
	var flashes []Flash
	for _, m := range flashPattern.FindAllStringSubmatch(body, -1) {
		flashes = append(flashes, Flash{Level: m[1], Message: html.UnescapeString(m[2])})
	}
	return flashes
}
