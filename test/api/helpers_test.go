package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// apiURL is the running server under test, e.g. http://localhost:5000.
// The suite is skipped when API_URL is unset.
var apiURL = os.Getenv("API_URL")

type response struct {
	StatusCode int
	Status     string          `json:"status"`
	Code       string          `json:"code"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
}

func (r response) decode(t *testing.T, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(r.Data, v))
}

var client = &http.Client{Timeout: 10 * time.Second}

func requireServer(t *testing.T) {
	t.Helper()
	if apiURL == "" {
		t.Skip("API_URL not set")
	}
	resp, err := client.Get(apiURL + "/health")
	if err != nil {
		t.Skipf("API server not reachable at %s: %v", apiURL, err)
	}
	resp.Body.Close()
}

func makeRequest(t *testing.T, method, path string, body interface{}, token string) response {
	t.Helper()

	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reqBody = bytes.NewBuffer(raw)
	}

	req, err := http.NewRequest(method, apiURL+"/api"+path, reqBody)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	out := response{StatusCode: resp.StatusCode}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out), fmt.Sprintf("%s %s", method, path))
	return out
}

// login signs in one of the seeded accounts.
func login(t *testing.T, email, password string) string {
	t.Helper()
	resp := makeRequest(t, http.MethodPost, "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode, resp.Message)

	var auth struct {
		Token string `json:"token"`
	}
	resp.decode(t, &auth)
	require.NotEmpty(t, auth.Token)
	return auth.Token
}
