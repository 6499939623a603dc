package authapi_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contexmem/console/internal/authapi"
	"github.com/contexmem/console/internal/cookiestore"
	"github.com/contexmem/console/internal/serviceerr"
)

const chromeUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

func TestRequestSignup(t *testing.T) {
	var got map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/signup/request", r.URL.Path)
		require.NotEmpty(t, r.Header.Get("X-Request-Id"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"transaction_id": "t1",
			"otp_expires_at": time.Now().Add(5 * time.Minute).Format(time.RFC3339),
		})
	}))
	defer server.Close()

	client := authapi.NewClient(server.URL, authapi.WithUserAgent(chromeUA))

	txn, err := client.RequestSignup(context.Background(), "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, "t1", txn.TransactionID)
	assert.WithinDuration(t, time.Now().Add(5*time.Minute), txn.OTPExpiresAt, 10*time.Second)

	assert.Equal(t, "a@b.com", got["email"])

	deviceInfo, ok := got["device_info"].(map[string]any)
	require.True(t, ok, "device_info must be attached")
	assert.Equal(t, "desktop", deviceInfo["device_type"])
	assert.Equal(t, "Windows", deviceInfo["operating_system"])
	assert.Equal(t, "Chrome", deviceInfo["browser_name"])
}

func TestRequestLoginBadCredentials(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/login/request", r.URL.Path)
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"detail": "bad credentials"})
	}))
	defer server.Close()

	client := authapi.NewClient(server.URL)

	_, err := client.RequestLogin(context.Background(), "a@b.com", "wrong")
	require.Error(t, err)
	assert.True(t, serviceerr.IsAuthError(err))
}

func TestVerifyOTPWrongCode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/otp/verify", r.URL.Path)

		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "t1", req["transaction_id"])
		assert.Equal(t, "000000", req["code"])

		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"detail": "wrong code"})
	}))
	defer server.Close()

	client := authapi.NewClient(server.URL)

	err := client.VerifyOTP(context.Background(), "t1", "000000")
	require.Error(t, err)
	assert.True(t, serviceerr.IsValidationError(err))
}

func TestCompleteLogin(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/login/complete", r.URL.Path)

		_ = json.NewEncoder(w).Encode(map[string]any{
			"user":    map[string]string{"email": "a@b.com", "first_name": "Ada", "last_name": "B"},
			"session": map[string]string{"user_id": "u1", "session_id": "s1"},
		})
	}))
	defer server.Close()

	client := authapi.NewClient(server.URL)

	result, err := client.CompleteLogin(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", result.User.Email)
	assert.Equal(t, "u1", result.Session.UserID)
	assert.Equal(t, "s1", result.Session.SessionID)
}

func TestSessionBodyAttachment(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/sessions/current", r.URL.Path)

		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		// the auth service takes the identifiers in the body, not headers
		assert.Equal(t, "u1", req["user_id"])
		assert.Equal(t, "s1", req["session_id"])

		_ = json.NewEncoder(w).Encode(map[string]any{
			"user": map[string]string{"email": "a@b.com"},
		})
	}))
	defer server.Close()

	client := authapi.NewClient(server.URL)

	user, err := client.CurrentSession(context.Background(), cookiestore.Session{UserID: "u1", SessionID: "s1"})
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", user.Email)
}

func TestValidateSession(t *testing.T) {
	tests := []struct {
		name        string
		response    string
		wantRotated bool
	}{
		{name: "no rotation", response: `{}`, wantRotated: false},
		{name: "rotated", response: `{"session":{"user_id":"u1","session_id":"s2"}}`, wantRotated: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				require.Equal(t, "/sessions/validate-session", r.URL.Path)
				_, _ = w.Write([]byte(tt.response))
			}))
			defer server.Close()

			client := authapi.NewClient(server.URL)

			rotated, err := client.ValidateSession(context.Background(), cookiestore.Session{UserID: "u1", SessionID: "s1"})
			require.NoError(t, err)

			if tt.wantRotated {
				require.NotNil(t, rotated)
				assert.Equal(t, "s2", rotated.SessionID)
			} else {
				assert.Nil(t, rotated)
			}
		})
	}
}

func TestRevokeSessionPath(t *testing.T) {
	tests := []struct {
		name            string
		targetUserID    string
		targetSessionID string
		wantPath        string
	}{
		{name: "plain identifiers", targetUserID: "u2", targetSessionID: "s9", wantPath: "/sessions/u2/s9/revoke"},
		{name: "identifiers needing escaping", targetUserID: "u/2", targetSessionID: "s%9", wantPath: "/sessions/u%2F2/s%259/revoke"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotPath string

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotPath = r.URL.EscapedPath()
				_ = json.NewEncoder(w).Encode(map[string]string{"detail": "revoked"})
			}))
			defer server.Close()

			client := authapi.NewClient(server.URL)

			err := client.RevokeSession(context.Background(), cookiestore.Session{UserID: "u1", SessionID: "s1"}, tt.targetUserID, tt.targetSessionID)
			require.NoError(t, err)
			assert.Equal(t, tt.wantPath, gotPath)
		})
	}
}

func TestNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	server.Close() // nothing is listening any more

	client := authapi.NewClient(server.URL)

	_, err := client.RequestLogin(context.Background(), "a@b.com", "pw")
	require.Error(t, err)
	assert.True(t, serviceerr.IsNetworkError(err))
	assert.False(t, serviceerr.IsAuthError(err))
}
