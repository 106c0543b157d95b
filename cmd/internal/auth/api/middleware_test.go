package authapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"quill/cmd/identity"
	"quill/cmd/internal/auth/session"
)

func TestPrincipalFrom(t *testing.T) {
	t.Parallel()

	if id, ok := PrincipalFrom(context.Background()); ok || id != "" {
		t.Fatalf("PrincipalFrom(empty) = %q, %v", id, ok)
	}

	ctx := ContextWithPrincipal(context.Background(), "01ARZ3NDEKTSV4RRFFQ69G5FAV")
	id, ok := PrincipalFrom(ctx)
	if !ok || id != "01ARZ3NDEKTSV4RRFFQ69G5FAV" {
		t.Fatalf("PrincipalFrom = %q, %v", id, ok)
	}
}

func TestWithPrincipal(t *testing.T) {
	fastArgon(t)

	tokens, err := session.NewManager(session.Config{
		Issuer:    "quill-test",
		TokenTTL:  time.Hour,
		ClockSkew: 0,
	})
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	h, err := NewHandler(nil, DefaultConfig(), identity.NewMemoryStore(), tokens)
	if err != nil {
		t.Fatalf("NewHandler: %v", err)
	}

	now := time.Now().UTC()
	valid, _, err := tokens.Issue("01ARZ3NDEKTSV4RRFFQ69G5FAV", now)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	expired, _, err := tokens.Issue("01ARZ3NDEKTSV4RRFFQ69G5FAV", now.Add(-2*time.Hour))
	if err != nil {
		t.Fatalf("Issue(expired): %v", err)
	}

	cases := []struct {
		name      string
		cookie    *http.Cookie
		principal string
	}{
		{"no cookie", nil, ""},
		{"empty cookie", &http.Cookie{Name: "access_token", Value: ""}, ""},
		{"garbage token", &http.Cookie{Name: "access_token", Value: "not-a-token"}, ""},
		{"expired token", &http.Cookie{Name: "access_token", Value: expired}, ""},
		{"valid token", &http.Cookie{Name: "access_token", Value: valid}, "01ARZ3NDEKTSV4RRFFQ69G5FAV"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var got string
			var had bool
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got, had = PrincipalFrom(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.cookie != nil {
				req.AddCookie(tc.cookie)
			}
			rec := httptest.NewRecorder()
			h.WithPrincipal(next).ServeHTTP(rec, req)

			// Anonymous requests still reach the handler.
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", rec.Code)
			}
			if tc.principal == "" {
				if had {
					t.Fatalf("unexpected principal %q", got)
				}
			} else if got != tc.principal {
				t.Fatalf("principal = %q, want %q", got, tc.principal)
			}
		})
	}
}
