//go:build integration

package integration_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"
)

func baseURL() string {
	if v := os.Getenv("PMP_TEST_BASE_URL"); strings.TrimSpace(v) != "" {
		return strings.TrimRight(v, "/")
	}
	return "http://127.0.0.1:18080"
}

func TestCommunityFlowIntegration(t *testing.T) {
	client := &http.Client{Timeout: 5 * time.Second}
	base := baseURL()

	sessionID := fmt.Sprintf("integration_%d", time.Now().UnixNano())

	var submitResp struct {
		Success    bool   `json:"success"`
		ResponseID string `json:"response_id"`
	}
	doPost(t, client, base+"/api/community/submit", "", map[string]any{
		"had_phone_stolen":   "yes",
		"phone_recovered":    "no",
		"replacement_method": "insurance",
		"theft_location":     "public_transport",
		"security_measures":  []string{"pin", "find_my_device"},
		"reported_to_police": "yes_crime_ref",
		"session_id":         sessionID,
	}, &submitResp)
	if !submitResp.Success || submitResp.ResponseID == "" {
		t.Fatalf("unexpected submit response: %+v", submitResp)
	}

	// The same session must not be able to vote twice.
	dupStatus := postStatus(t, client, base+"/api/community/submit", "", map[string]any{
		"had_phone_stolen":  "no",
		"security_measures": []string{"pin"},
		"session_id":        sessionID,
	})
	if dupStatus != http.StatusConflict {
		t.Fatalf("duplicate submit status = %d, want 409", dupStatus)
	}

	var stats struct {
		TotalResponses int `json:"totalResponses"`
	}
	doGet(t, client, base+"/api/community/stats", &stats)
	if stats.TotalResponses < 1 {
		t.Fatalf("stats total = %d, want >= 1", stats.TotalResponses)
	}

	var insightsResp struct {
		Insights []string `json:"insights"`
	}
	doPost(t, client, base+"/api/community/insights", "", map[string]any{
		"had_phone_stolen":   "yes",
		"phone_recovered":    "no",
		"replacement_method": "contract",
		"theft_location":     "street",
		"security_measures":  []string{"pin"},
		"reported_to_police": "no",
	}, &insightsResp)
	if len(insightsResp.Insights) == 0 {
		t.Fatalf("expected insights for a victim response")
	}

	var questionsResp struct {
		Questions []struct {
			ID string `json:"id"`
		} `json:"questions"`
	}
	doGet(t, client, base+"/api/checkup/questions", &questionsResp)
	if len(questionsResp.Questions) != 12 {
		t.Fatalf("questions = %d, want 12", len(questionsResp.Questions))
	}

	answers := map[string]bool{}
	for _, q := range questionsResp.Questions {
		answers[q.ID] = true
	}
	var scoreResp struct {
		Percentage int    `json:"percentage"`
		Level      string `json:"level"`
	}
	doPost(t, client, base+"/api/checkup/score", "", map[string]any{"answers": answers}, &scoreResp)
	if scoreResp.Percentage != 100 || scoreResp.Level != "Excellent" {
		t.Fatalf("score = %d/%s, want 100/Excellent", scoreResp.Percentage, scoreResp.Level)
	}

	adminEmail := fmt.Sprintf("integration_%d@example.com", time.Now().UnixNano())
	var registerResp struct {
		Token  string `json:"token"`
		UserID string `json:"user_id"`
	}
	doPost(t, client, base+"/api/auth/register", "", map[string]string{
		"email":    adminEmail,
		"password": "Secret123!",
	}, &registerResp)
	if registerResp.Token == "" {
		t.Fatalf("register did not return a token")
	}

	var providerResp struct {
		ID string `json:"id"`
	}
	doPost(t, client, base+"/api/directory/providers", registerResp.Token, map[string]any{
		"name":              fmt.Sprintf("Integration Mobile %d", time.Now().UnixNano()),
		"emergency_contact": map[string]string{"uk": "0800 000 0000"},
		"steps":             []string{"Call to block SIM"},
	}, &providerResp)
	if providerResp.ID == "" {
		t.Fatalf("provider save did not return an id")
	}

	var directoryResp struct {
		Providers []struct {
			ID string `json:"id"`
		} `json:"providers"`
	}
	doGet(t, client, base+"/api/directory/providers", &directoryResp)
	found := false
	for _, p := range directoryResp.Providers {
		if p.ID == providerResp.ID {
			found = true
		}
	}
	if !found {
		t.Fatalf("saved provider %s not listed", providerResp.ID)
	}
}

func doGet(t *testing.T, client *http.Client, url string, out any) {
	t.Helper()
	resp, err := client.Get(url)
	if err != nil {
		t.Fatalf("http get %s failed: %v", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("unexpected status %d for %s: %s", resp.StatusCode, url, string(body))
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil && err != io.EOF {
			t.Fatalf("decode response from %s: %v", url, err)
		}
	}
}

func doPost(t *testing.T, client *http.Client, url, token string, body any, out any) {
	t.Helper()
	resp := postRaw(t, client, url, token, body)
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		t.Fatalf("unexpected status %d for %s: %s", resp.StatusCode, url, string(bodyBytes))
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil && err != io.EOF {
			t.Fatalf("decode response from %s: %v", url, err)
		}
	}
}

func postStatus(t *testing.T, client *http.Client, url, token string, body any) int {
	t.Helper()
	resp := postRaw(t, client, url, token, body)
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode
}

func postRaw(t *testing.T, client *http.Client, url, token string, body any) *http.Response {
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
	if strings.TrimSpace(token) != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("http post %s failed: %v", url, err)
	}
	return resp
}
