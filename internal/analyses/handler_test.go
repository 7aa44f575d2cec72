package analyses

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"jobtrack-backend/internal/shared/server/middleware"
)

func setupAnalysisRouter(t *testing.T) (*gin.Engine, *fixture) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	f := setupService(t)
	handler := NewHandler(f.svc)

	router := gin.New()
	router.Use(middleware.Auth("dev"))
	api := router.Group("/api/v1")
	handler.RegisterRoutes(api)

	return router, f
}

func addGuestHeader(req *http.Request) {
	req.Header.Set("X-Guest-Id", "test-guest")
}

func postJSON(t *testing.T, router *gin.Engine, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	addGuestHeader(req)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestScoreEndpointReturnsRecord(t *testing.T) {
	router, f := setupAnalysisRouter(t)
	f.seedResume(t, "guest:test-guest", "res-1", longResumeText)

	resp := postJSON(t, router, "/api/v1/analyses/score", map[string]string{"resumeId": "res-1"})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var out struct {
		OK     bool `json:"ok"`
		Record struct {
			ID    string   `json:"id"`
			Kind  string   `json:"kind"`
			Score *float64 `json:"score"`
		} `json:"record"`
		RateLimit struct {
			Count     int `json:"count"`
			Remaining int `json:"remaining"`
		} `json:"rateLimit"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !out.OK || out.Record.Kind != "comprehensive_score" {
		t.Fatalf("unexpected response: %+v", out)
	}
	if out.Record.Score == nil || *out.Record.Score != 82 {
		t.Fatalf("expected score 82, got %v", out.Record.Score)
	}
	if out.RateLimit.Count != 1 || out.RateLimit.Remaining != 2 {
		t.Fatalf("unexpected rate limit: %+v", out.RateLimit)
	}

	if _, err := f.repo.GetByID(context.Background(), out.Record.ID); err != nil {
		t.Fatalf("record not persisted: %v", err)
	}
}

func TestScoreEndpointRateLimitResponse(t *testing.T) {
	router, f := setupAnalysisRouter(t)
	f.seedResume(t, "guest:test-guest", "res-1", longResumeText)

	for i := 0; i < 3; i++ {
		if resp := postJSON(t, router, "/api/v1/analyses/score", map[string]string{"resumeId": "res-1"}); resp.Code != http.StatusOK {
			t.Fatalf("run %d: expected 200, got %d", i+1, resp.Code)
		}
	}

	resp := postJSON(t, router, "/api/v1/analyses/score", map[string]string{"resumeId": "res-1"})
	if resp.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d: %s", resp.Code, resp.Body.String())
	}

	var out struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.Error.Code != CodeRateLimited {
		t.Fatalf("expected %q, got %q", CodeRateLimited, out.Error.Code)
	}
	if !strings.Contains(out.Error.Message, "3/3") {
		t.Fatalf("expected message to mention 3/3, got %q", out.Error.Message)
	}
}

func TestScoreEndpointRequiresIdentity(t *testing.T) {
	router, _ := setupAnalysisRouter(t)

	body := bytes.NewReader([]byte(`{"resumeId": "res-1"}`))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyses/score", body)
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
}

func TestScoreEndpointShortResume(t *testing.T) {
	router, f := setupAnalysisRouter(t)
	f.seedResume(t, "guest:test-guest", "res-1", "too short")

	resp := postJSON(t, router, "/api/v1/analyses/score", map[string]string{"resumeId": "res-1"})
	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "Resume text is too short for meaningful analysis") {
		t.Fatalf("unexpected body: %s", resp.Body.String())
	}
}

func TestMatchEndpointAdHoc(t *testing.T) {
	router, f := setupAnalysisRouter(t)
	f.seedResume(t, "guest:test-guest", "res-1", longResumeText)
	f.llm.response = json.RawMessage(`{"matchScore": 64, "matchedKeywords": [], "missingKeywords": [], "suggestions": []}`)

	resp := postJSON(t, router, "/api/v1/analyses/match", map[string]string{
		"resumeId":       "res-1",
		"jobDescription": "Platform team looking for a distributed-systems engineer.",
		"jobTitle":       "Platform Engineer",
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var out struct {
		Record struct {
			Kind     string `json:"kind"`
			Analysis struct {
				Metadata struct {
					Source   string `json:"source"`
					JobTitle string `json:"jobTitle"`
				} `json:"metadata"`
			} `json:"analysis"`
		} `json:"record"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.Record.Kind != "job_match" {
		t.Fatalf("expected job_match, got %q", out.Record.Kind)
	}
	if out.Record.Analysis.Metadata.Source != MatchSourceAdHoc {
		t.Fatalf("expected ad_hoc source, got %q", out.Record.Analysis.Metadata.Source)
	}
}

func TestRateLimitEndpoint(t *testing.T) {
	router, f := setupAnalysisRouter(t)
	f.seedResume(t, "guest:test-guest", "res-1", longResumeText)

	if resp := postJSON(t, router, "/api/v1/analyses/score", map[string]string{"resumeId": "res-1"}); resp.Code != http.StatusOK {
		t.Fatalf("seed analysis: got %d", resp.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/analyses/rate-limit", nil)
	addGuestHeader(req)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var status struct {
		Allowed   bool      `json:"allowed"`
		Count     int       `json:"count"`
		Limit     int       `json:"limit"`
		Remaining int       `json:"remaining"`
		ResetsAt  time.Time `json:"resetsAt"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if !status.Allowed || status.Count != 1 || status.Limit != 3 || status.Remaining != 2 {
		t.Fatalf("unexpected status: %+v", status)
	}
	if !status.ResetsAt.After(f.now) {
		t.Fatalf("resetsAt should be in the future: %v", status.ResetsAt)
	}
}

func TestListEndpointNewestFirst(t *testing.T) {
	router, f := setupAnalysisRouter(t)
	f.seedResume(t, "guest:test-guest", "res-1", longResumeText)

	if resp := postJSON(t, router, "/api/v1/analyses/score", map[string]string{"resumeId": "res-1"}); resp.Code != http.StatusOK {
		t.Fatalf("first analysis: got %d", resp.Code)
	}
	f.now = f.now.Add(time.Minute)
	if resp := postJSON(t, router, "/api/v1/analyses/score", map[string]string{"resumeId": "res-1"}); resp.Code != http.StatusOK {
		t.Fatalf("second analysis: got %d", resp.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/analyses", nil)
	addGuestHeader(req)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var items []struct {
		CreatedAt time.Time `json:"createdAt"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].CreatedAt.Before(items[1].CreatedAt) {
		t.Fatal("expected newest first")
	}
}
