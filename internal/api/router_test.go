package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/protectmyphone/pmp/internal/middleware"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	NewRouter(NewMemoryStore()).Register(mux)
	srv := httptest.NewServer(middleware.WithAuth(mux))
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url, token string, body any) (*http.Response, map[string]any) {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("post %s: %v", url, err)
	}
	defer resp.Body.Close()
	out := map[string]any{}
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp, out
}

func getJSON(t *testing.T, url string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("get %s: %v", url, err)
	}
	defer resp.Body.Close()
	out := map[string]any{}
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp, out
}

func victimPayload(session string) map[string]any {
	return map[string]any{
		"had_phone_stolen":   "yes",
		"phone_recovered":    "no",
		"replacement_method": "insurance",
		"theft_location":     "public_transport",
		"security_measures":  []string{"pin", "find_my_device"},
		"reported_to_police": "yes_crime_ref",
		"session_id":         session,
	}
}

func TestSubmitAndDuplicate(t *testing.T) {
	srv := newTestServer(t)

	resp, body := postJSON(t, srv.URL+"/api/community/submit", "", victimPayload("sess-1"))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("submit status = %d, body = %v", resp.StatusCode, body)
	}
	responseID, _ := body["response_id"].(string)
	if body["success"] != true || responseID == "" {
		t.Fatalf("submit body = %v", body)
	}

	resp, body = postJSON(t, srv.URL+"/api/community/submit", "", victimPayload("sess-1"))
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate status = %d, want 409", resp.StatusCode)
	}
	if body["success"] != false {
		t.Fatalf("duplicate body = %v", body)
	}
}

func TestSubmitValidation(t *testing.T) {
	srv := newTestServer(t)

	payload := victimPayload("sess-2")
	payload["security_measures"] = []string{}
	resp, _ := postJSON(t, srv.URL+"/api/community/submit", "", payload)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}

	payload = victimPayload("")
	resp, _ = postJSON(t, srv.URL+"/api/community/submit", "", payload)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("missing session status = %d, want 400", resp.StatusCode)
	}
}

func TestStatsEndpoint(t *testing.T) {
	srv := newTestServer(t)
	postJSON(t, srv.URL+"/api/community/submit", "", victimPayload("sess-3"))

	resp, body := getJSON(t, srv.URL+"/api/community/stats")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("stats status = %d", resp.StatusCode)
	}
	if got := resp.Header.Get("Cache-Control"); got != "public, s-maxage=60, stale-while-revalidate=300" {
		t.Fatalf("cache-control = %q", got)
	}
	if body["totalResponses"] != float64(1) {
		t.Fatalf("totalResponses = %v, want 1", body["totalResponses"])
	}
}

func TestInsightsEndpoint(t *testing.T) {
	srv := newTestServer(t)

	resp, body := postJSON(t, srv.URL+"/api/community/insights", "", victimPayload("sess-4"))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("insights status = %d, body = %v", resp.StatusCode, body)
	}
	insights, ok := body["insights"].([]any)
	if !ok || len(insights) == 0 {
		t.Fatalf("insights = %v", body["insights"])
	}
}

func TestCheckupEndpoints(t *testing.T) {
	srv := newTestServer(t)

	resp, body := getJSON(t, srv.URL+"/api/checkup/questions")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("questions status = %d", resp.StatusCode)
	}
	questions, ok := body["questions"].([]any)
	if !ok || len(questions) != 12 {
		t.Fatalf("questions = %d entries, want 12", len(questions))
	}

	answers := map[string]bool{}
	for _, q := range questions {
		id := q.(map[string]any)["id"].(string)
		answers[id] = true
	}
	resp, body = postJSON(t, srv.URL+"/api/checkup/score", "", map[string]any{"answers": answers})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("score status = %d, body = %v", resp.StatusCode, body)
	}
	if body["percentage"] != float64(100) || body["level"] != "Excellent" {
		t.Fatalf("score body = %v", body)
	}

	resp, _ = postJSON(t, srv.URL+"/api/checkup/score", "", map[string]any{"answers": map[string]bool{"q1": true}})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("incomplete score status = %d, want 400", resp.StatusCode)
	}
}

func TestDirectoryAdminFlow(t *testing.T) {
	srv := newTestServer(t)

	// Anonymous write is rejected.
	provider := map[string]any{
		"name":              "EE",
		"emergency_contact": map[string]any{"uk": "0800 956 6000"},
	}
	resp, _ := postJSON(t, srv.URL+"/api/directory/providers", "", provider)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("anonymous save status = %d, want 401", resp.StatusCode)
	}

	resp, body := postJSON(t, srv.URL+"/api/auth/register", "", map[string]string{
		"email":    "admin@example.com",
		"password": "Secret123!",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("register status = %d, body = %v", resp.StatusCode, body)
	}
	token, _ := body["token"].(string)
	if token == "" {
		t.Fatalf("register returned no token")
	}

	resp, body = postJSON(t, srv.URL+"/api/directory/providers", token, provider)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("save status = %d, body = %v", resp.StatusCode, body)
	}
	id, _ := body["id"].(string)
	if id == "" {
		t.Fatalf("saved provider has no id: %v", body)
	}

	// Public read works without a token.
	resp, body = getJSON(t, srv.URL+"/api/directory/providers/"+id)
	if resp.StatusCode != http.StatusOK || body["name"] != "EE" {
		t.Fatalf("get status = %d, body = %v", resp.StatusCode, body)
	}

	req, _ := http.NewRequest(http.MethodDelete, srv.URL+"/api/directory/providers/"+id, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	delResp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	delResp.Body.Close()
	if delResp.StatusCode != http.StatusOK {
		t.Fatalf("delete status = %d", delResp.StatusCode)
	}
}

func TestTheftPointsRequireAuth(t *testing.T) {
	srv := newTestServer(t)

	points := map[string]any{"points": []map[string]any{
		{"date": "2026-01-01", "location_name": "Camden", "latitude": 51.54, "longitude": -0.14, "theft_count": 7},
	}}
	resp, _ := postJSON(t, srv.URL+"/api/theft/points", "", points)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("anonymous upsert status = %d, want 401", resp.StatusCode)
	}

	_, body := postJSON(t, srv.URL+"/api/auth/register", "", map[string]string{
		"email":    "maps@example.com",
		"password": "Secret123!",
	})
	token, _ := body["token"].(string)

	resp, body = postJSON(t, srv.URL+"/api/theft/points", token, points)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("upsert status = %d, body = %v", resp.StatusCode, body)
	}

	resp, body = getJSON(t, srv.URL+"/api/theft/timeline")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("timeline status = %d", resp.StatusCode)
	}
	frames, ok := body["frames"].([]any)
	if !ok || len(frames) != 1 {
		t.Fatalf("frames = %v", body["frames"])
	}
	frame := frames[0].(map[string]any)
	if frame["month"] != "2026-01" || frame["total"] != float64(7) {
		t.Fatalf("frame = %v", frame)
	}
}
