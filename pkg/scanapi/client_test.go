package scanapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syahmiabbas/scangate/pkg/engine"
)

func TestInitiate(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		wantID  string
		wantErr error
	}{
		{
			name: "success",
			handler: func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
				var body map[string]string
				require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
				assert.Equal(t, "https://github.com/acme/repo", body["url"])
				fmt.Fprint(w, `{"groupId": "grp-42"}`)
			},
			wantID: "grp-42",
		},
		{
			name: "backend error field",
			handler: func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `{"error": "unsupported repository"}`)
			},
			wantErr: ErrInitiation,
		},
		{
			name: "missing group id",
			handler: func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `{}`)
			},
			wantErr: ErrInitiation,
		},
		{
			name: "http error status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "backend down", http.StatusServiceUnavailable)
			},
			wantErr: ErrInitiation,
		},
		{
			name: "undecodable payload",
			handler: func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, "<html>oops</html>")
			},
			wantErr: ErrMalformedResponse,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(tc.handler))
			defer srv.Close()

			id, err := NewClient(srv.URL).Initiate(context.Background(), "https://github.com/acme/repo")
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantID, id)
		})
	}
}

func TestInitiateConnectivity(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	_, err := NewClient(srv.URL).Initiate(context.Background(), "https://github.com/acme/repo")
	assert.ErrorIs(t, err, ErrConnectivity)
}

func TestGroupResultsErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		wantErr error
	}{
		{
			name: "missing summary is malformed",
			handler: func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `{}`)
			},
			wantErr: ErrMalformedResponse,
		},
		{
			name: "undecodable body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, "not json")
			},
			wantErr: ErrMalformedResponse,
		},
		{
			name: "error status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "boom", http.StatusInternalServerError)
			},
			wantErr: ErrConnectivity,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(tc.handler))
			defer srv.Close()

			_, err := NewClient(srv.URL).GroupResults(context.Background(), "grp-1")
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestJobFindingsMapping(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/results/job-9", r.URL.Path)
		fmt.Fprint(w, `{
			"count": 2,
			"findings": [
				{"finding_id": "f-1", "file_path": "pkg/db/query.go", "function_name": "BuildQuery",
				 "start_line": 57, "end_line": 42, "prediction": 1, "score": 0.91,
				 "severity": "high", "vuln_type": "SQL Injection", "cwe_id": "CWE-89",
				 "message": "string concatenation reaches the SQL driver"},
				{"finding_id": "f-2", "file_path": "pkg/api/routes.go", "function_name": "Routes",
				 "start_line": 5, "end_line": 30, "prediction": 0, "score": 0.12,
				 "severity": "low", "message": "no tainted input"}
			]
		}`)
	}))
	defer srv.Close()

	findings, err := NewClient(srv.URL).JobFindings(context.Background(), "job-9")
	require.NoError(t, err)
	require.Len(t, findings, 2)

	first := findings[0]
	assert.Equal(t, "pkg/db/query.go", first.Path)
	assert.Equal(t, "BuildQuery", first.UnitName)
	// Reversed ranges come back normalized.
	assert.Equal(t, 42, first.StartLine)
	assert.Equal(t, 57, first.EndLine)
	assert.True(t, first.IsVulnerable)
	assert.Equal(t, engine.SeverityHigh, first.Severity)
	assert.Equal(t, "SQL Injection", first.VulnType)
	assert.Equal(t, "CWE-89", first.CWE)

	second := findings[1]
	assert.False(t, second.IsVulnerable)
	assert.Equal(t, engine.SeverityLow, second.Severity)
}
