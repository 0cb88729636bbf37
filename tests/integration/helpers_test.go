package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"
)

const apiPort = 5000

const (
	defaultAdminEmail    = "admin@example.com"
	defaultAdminPassword = "password123"
)

// baseURL returns the API root. DIRECTORY_API_URL overrides the local port.
func baseURL() string {
	if u := os.Getenv("DIRECTORY_API_URL"); u != "" {
		return strings.TrimRight(u, "/")
	}
	return fmt.Sprintf("http://localhost:%d", apiPort)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// uniqueEmail generates a unique email address to avoid test collisions.
func uniqueEmail(prefix string) string {
	return fmt.Sprintf("%s-%d-%d@test.example.com", prefix, time.Now().UnixNano(), rand.IntN(100000))
}

// uniqueName generates a unique name to avoid slug collisions.
func uniqueName(prefix string) string {
	return fmt.Sprintf("%s %d-%d", prefix, time.Now().UnixNano(), rand.IntN(100000))
}

// skipIfNotRunning performs a quick health check against the API.
// If it is unreachable, the test is skipped (not failed).
func skipIfNotRunning(t *testing.T) {
	t.Helper()
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(baseURL() + "/health/live")
	if err != nil {
		t.Skipf("API at %s not reachable (Docker not running?): %v", baseURL(), err)
	}
	resp.Body.Close()
}

// adminToken logs in as the seeded admin. Without one the test is skipped,
// since no public endpoint can grant the admin role.
func adminToken(t *testing.T) string {
	t.Helper()
	body := map[string]any{
		"email":    envOr("DIRECTORY_ADMIN_EMAIL", defaultAdminEmail),
		"password": envOr("DIRECTORY_ADMIN_PASSWORD", defaultAdminPassword),
	}
	status, data := httpPost(t, baseURL()+"/api/v1/auth/login", body, "")
	if status != http.StatusOK {
		t.Skipf("admin login failed with status %d (run cmd/seed first?)", status)
	}
	return extractString(t, data, "data.tokens.access_token")
}

// registerUser creates a fresh account and returns its access token.
func registerUser(t *testing.T, prefix string) string {
	t.Helper()
	body := map[string]any{
		"username": fmt.Sprintf("%s%d", prefix, rand.IntN(1000000)),
		"email":    uniqueEmail(prefix),
		"password": "integration-pass",
	}
	status, data := httpPost(t, baseURL()+"/api/v1/auth/register", body, "")
	requireStatus(t, status, http.StatusCreated)
	return extractString(t, data, "data.tokens.access_token")
}

// httpGet performs an HTTP GET request and returns the status code and decoded JSON body.
func httpGet(t *testing.T, url string) (int, map[string]any) {
	t.Helper()
	return doJSONRequest(t, http.MethodGet, url, nil, "")
}

// httpPost performs an HTTP POST request with a JSON body and optional Bearer token.
func httpPost(t *testing.T, url string, body any, token string) (int, map[string]any) {
	t.Helper()
	return doJSONRequest(t, http.MethodPost, url, body, token)
}

// httpPut performs an HTTP PUT request with a JSON body and optional Bearer token.
func httpPut(t *testing.T, url string, body any, token string) (int, map[string]any) {
	t.Helper()
	return doJSONRequest(t, http.MethodPut, url, body, token)
}

func doJSONRequest(t *testing.T, method, url string, body any, token string) (int, map[string]any) {
	t.Helper()
	var bodyReader io.Reader
	if body != nil {
		jsonBytes, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshalling request body failed: %v", err)
		}
		bodyReader = bytes.NewReader(jsonBytes)
	}

	client := &http.Client{Timeout: 10 * time.Second}
	req, err := http.NewRequest(method, url, bodyReader)
	if err != nil {
		t.Fatalf("creating %s request for %s failed: %v", method, url, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, url, err)
	}
	defer resp.Body.Close()
	return resp.StatusCode, decodeBody(t, resp.Body)
}

// decodeBody reads the response body and attempts to decode it as JSON.
// If the body is empty or not JSON, it returns an empty map.
func decodeBody(t *testing.T, body io.Reader) map[string]any {
	t.Helper()
	raw, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("reading response body failed: %v", err)
	}
	if len(raw) == 0 {
		return map[string]any{}
	}
	var result map[string]any
	if err := json.Unmarshal(raw, &result); err != nil {
		return map[string]any{"raw": string(raw)}
	}
	return result
}

// requireStatus asserts that the HTTP status code matches the expected value.
func requireStatus(t *testing.T, got, want int) {
	t.Helper()
	if got != want {
		t.Fatalf("expected status %d, got %d", want, got)
	}
}

// extractField extracts a value from a nested map using a dot-separated path.
func extractField(data map[string]any, path string) any {
	var current any = data
	for _, part := range strings.Split(path, ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return nil
		}
		current, ok = m[part]
		if !ok {
			return nil
		}
	}
	return current
}

func extractString(t *testing.T, data map[string]any, path string) string {
	t.Helper()
	s, ok := extractField(data, path).(string)
	if !ok {
		t.Fatalf("expected string at path %q, got %v", path, extractField(data, path))
	}
	return s
}

func extractFloat(t *testing.T, data map[string]any, path string) float64 {
	t.Helper()
	f, ok := extractField(data, path).(float64)
	if !ok {
		t.Fatalf("expected number at path %q, got %v", path, extractField(data, path))
	}
	return f
}
