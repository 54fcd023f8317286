package oauth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestProvider() *GoogleProvider {
	return NewGoogleProvider(GoogleConfig{
		ClientID:     "client",
		ClientSecret: "secret",
		RedirectURL:  "http://localhost:8080/api/v1/auth/google/callback",
		FrontendURL:  "http://localhost:3000",
		StateSecret:  "state-secret",
	})
}

func TestStateRoundTrip(t *testing.T) {
	p := newTestProvider()
	state, err := p.NewState()
	if err != nil {
		t.Fatal(err)
	}
	if err := p.VerifyState(state); err != nil {
		t.Fatalf("VerifyState: %v", err)
	}
}

func TestStateRejected(t *testing.T) {
	p := newTestProvider()
	state, _ := p.NewState()

	other := NewGoogleProvider(GoogleConfig{StateSecret: "different"})
	expired := newTestProvider()
	expired.now = func() time.Time { return time.Now().Add(-time.Hour) }
	old, _ := expired.NewState()

	tests := map[string]string{
		"garbage":   "not-a-token",
		"empty":     "",
		"expired":   old,
		"wrong key": state,
	}
	for name, s := range tests {
		t.Run(name, func(t *testing.T) {
			verifier := p
			if name == "wrong key" {
				verifier = other
			}
			if err := verifier.VerifyState(s); !errors.Is(err, ErrInvalidState) {
				t.Errorf("err = %v, want ErrInvalidState", err)
			}
		})
	}
}

func TestFetchUserInfo(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr bool
	}{
		{"ok", http.StatusOK, `{"id":"g1","email":"a@b.com","verified_email":true,"name":"A"}`, false},
		{"unauthorized", http.StatusUnauthorized, `{}`, true},
		{"incomplete", http.StatusOK, `{"id":"g1"}`, true},
		{"bad json", http.StatusOK, `{`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			p := newTestProvider()
			p.userInfoURL = srv.URL
			info, err := p.fetchUserInfo(context.Background(), srv.Client())
			if tt.wantErr {
				if !errors.Is(err, ErrFailedToGetUser) {
					t.Fatalf("err = %v, want ErrFailedToGetUser", err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if info.Email != "a@b.com" || !info.VerifiedEmail {
				t.Errorf("info = %+v", info)
			}
		})
	}
}

func TestRedirects(t *testing.T) {
	p := newTestProvider()
	if got := p.SuccessRedirect("a", "r"); got != "http://localhost:3000/auth/callback#access_token=a&refresh_token=r" {
		t.Errorf("SuccessRedirect = %s", got)
	}
	if got := p.ErrorRedirect("auth/invalid-credential"); !strings.HasPrefix(got, "http://localhost:3000/login?error=auth%2Finvalid-credential") {
		t.Errorf("ErrorRedirect = %s", got)
	}
	if !strings.Contains(p.AuthURL("xyz"), "state=xyz") {
		t.Error("AuthURL missing state")
	}
}

func TestAuthenticateNotConfigured(t *testing.T) {
	p := NewGoogleProvider(GoogleConfig{})
	if _, err := p.Authenticate(context.Background(), "code"); !errors.Is(err, ErrOAuthNotConfigured) {
		t.Errorf("err = %v", err)
	}
}
