// internal/api/client_test.go
package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestStartRunRequestShape(t *testing.T) {
	t.Parallel()

	var gotPath, gotQuery, gotAccept string
	var gotBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotAccept = r.Header.Get("Accept")
		gotBody, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"testRun":{"id":"run-1","status":"completed","results":[],"summary":{"total":0,"passed":0,"failed":0}}}`))
	}))
	defer server.Close()

	c := NewClient(server.URL, 5*time.Second)
	req := RunRequest{
		Iterations:    2,
		ModelOverride: &ModelOverride{Provider: ProviderAnthropic, Model: "claude-sonnet"},
	}
	resp, err := c.StartRun(context.Background(), "suite-9", req, true)
	if err != nil {
		t.Fatalf("StartRun: %v", err)
	}
	resp.Body.Close()

	if gotPath != "/api/test-suites/suite-9/run" {
		t.Errorf("unexpected path %q", gotPath)
	}
	if gotQuery != "stream=1" {
		t.Errorf("unexpected query %q", gotQuery)
	}
	if gotAccept != "text/event-stream" {
		t.Errorf("unexpected Accept header %q", gotAccept)
	}

	var decoded RunRequest
	if err := json.Unmarshal(gotBody, &decoded); err != nil {
		t.Fatalf("unmarshal body: %v", err)
	}
	if decoded.Iterations != 2 || decoded.ModelOverride == nil || decoded.ModelOverride.Model != "claude-sonnet" {
		t.Fatalf("unexpected request body: %s", gotBody)
	}
}

func TestStartRunRequiresSuiteID(t *testing.T) {
	t.Parallel()

	c := NewClient("http://localhost:0", time.Second)
	if _, err := c.StartRun(context.Background(), "  ", RunRequest{Iterations: 1}, false); err == nil {
		t.Fatal("expected error for blank suite id")
	}
}

func TestSaveComparisonModels(t *testing.T) {
	t.Parallel()

	var gotMethod, gotPath string
	var gotBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	c := NewClient(server.URL, 5*time.Second)
	models := []ModelSelection{{Provider: ProviderOpenAI, Model: "gpt-4o-mini", IsPrimary: true}}
	if err := c.SaveComparisonModels(context.Background(), "suite-9", models); err != nil {
		t.Fatalf("SaveComparisonModels: %v", err)
	}

	if gotMethod != http.MethodPatch {
		t.Errorf("expected PATCH, got %s", gotMethod)
	}
	if gotPath != "/api/test-suites/suite-9" {
		t.Errorf("unexpected path %q", gotPath)
	}

	var payload struct {
		ComparisonModels []ModelSelection `json:"comparisonModels"`
	}
	if err := json.Unmarshal(gotBody, &payload); err != nil {
		t.Fatalf("unmarshal body: %v", err)
	}
	if len(payload.ComparisonModels) != 1 || !payload.ComparisonModels[0].IsPrimary {
		t.Fatalf("unexpected payload: %s", gotBody)
	}
}

func TestListAndGetSuites(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/test-suites":
			_, _ = w.Write([]byte(`[{"id":"s1","name":"Smoke","caseCount":4}]`))
		case "/api/test-suites/s1":
			_, _ = w.Write([]byte(`{"id":"s1","name":"Smoke","caseCount":4}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	c := NewClient(server.URL, 5*time.Second)
	suites, err := c.ListSuites(context.Background())
	if err != nil {
		t.Fatalf("ListSuites: %v", err)
	}
	if len(suites) != 1 || suites[0].Name != "Smoke" {
		t.Fatalf("unexpected suites: %+v", suites)
	}

	suite, err := c.GetSuite(context.Background(), "s1")
	if err != nil {
		t.Fatalf("GetSuite: %v", err)
	}
	if suite.CaseCount != 4 {
		t.Fatalf("unexpected suite: %+v", suite)
	}

	if _, err := c.GetSuite(context.Background(), "missing"); err == nil {
		t.Fatal("expected error for unknown suite")
	}
}

func TestReadError(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		body   string
		status string
		want   string
	}{
		{name: "json error field", body: `{"error":"boom"}`, status: "500 Internal Server Error", want: "boom"},
		{name: "plain text", body: "not json", status: "500 Internal Server Error", want: "not json"},
		{name: "empty body", body: "", status: "502 Bad Gateway", want: "502 Bad Gateway"},
		{name: "json without error field", body: `{"detail":"x"}`, status: "500 Internal Server Error", want: `{"detail":"x"}`},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if got := ReadError([]byte(tc.body), tc.status); got != tc.want {
				t.Fatalf("ReadError = %q, want %q", got, tc.want)
			}
		})
	}
}
