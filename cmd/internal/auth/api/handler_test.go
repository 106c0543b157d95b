package authapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"quill/cmd/identity"
	"quill/cmd/internal/auth/session"
)

func fastArgon(t *testing.T) {
	t.Helper()
	t.Setenv("QUILL_ARGON2_MEMORY_KIB", "8192")
	t.Setenv("QUILL_ARGON2_ITERATIONS", "1")
}

func testServer(t *testing.T) (*httptest.Server, *Handler, identity.Store) {
	t.Helper()

	tokens, err := session.NewManager(session.Config{
		Issuer:    "quill-test",
		TokenTTL:  7 * 24 * time.Hour,
		ClockSkew: 30 * time.Second,
	})
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	accounts := identity.NewMemoryStore()
	h, err := NewHandler(nil, DefaultConfig(), accounts, tokens)
	if err != nil {
		t.Fatalf("NewHandler: %v", err)
	}

	mux := http.NewServeMux()
	h.Register(mux)

	srv := httptest.NewServer(h.WithPrincipal(mux))
	t.Cleanup(srv.Close)
	return srv, h, accounts
}

func postJSON(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func sessionCookie(t *testing.T, resp *http.Response) *http.Cookie {
	t.Helper()
	for _, c := range resp.Cookies() {
		if c.Name == "access_token" {
			return c
		}
	}
	t.Fatalf("no access_token cookie in response")
	return nil
}

func decodeBody(t *testing.T, resp *http.Response, dst any) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		t.Fatalf("decode body: %v", err)
	}
}

func TestRegisterSetsCookieAndHidesHash(t *testing.T) {
	fastArgon(t)
	srv, _, _ := testServer(t)

	resp := postJSON(t, srv.URL+"/accounts", `{"username":"alice","password":"secret"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	c := sessionCookie(t, resp)
	if !c.HttpOnly {
		t.Fatal("session cookie must be HttpOnly")
	}
	if c.Value == "" {
		t.Fatal("session cookie is empty")
	}

	var body map[string]any
	decodeBody(t, resp, &body)
	if body["username"] != "alice" {
		t.Fatalf("username = %v", body["username"])
	}
	if body["id"] == "" || body["id"] == nil {
		t.Fatal("missing account id")
	}
	for k := range body {
		if strings.Contains(strings.ToLower(k), "password") || strings.Contains(strings.ToLower(k), "hash") {
			t.Fatalf("response leaks credential field %q", k)
		}
	}
}

func TestRegisterValidation(t *testing.T) {
	fastArgon(t)
	srv, _, _ := testServer(t)

	cases := []struct {
		name string
		body string
	}{
		{"short username", `{"username":"ab","password":"secret"}`},
		{"long username", `{"username":"` + strings.Repeat("a", 21) + `","password":"secret"}`},
		{"non alnum", `{"username":"ali ce","password":"secret"}`},
		{"missing password", `{"username":"alice"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := postJSON(t, srv.URL+"/accounts", tc.body)
			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", resp.StatusCode)
			}
			var body struct {
				Errors []struct {
					Field   string `json:"field"`
					Message string `json:"message"`
				} `json:"errors"`
			}
			decodeBody(t, resp, &body)
			if len(body.Errors) == 0 {
				t.Fatal("expected field errors")
			}
		})
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	fastArgon(t)
	srv, _, _ := testServer(t)

	if resp := postJSON(t, srv.URL+"/accounts", `{"username":"alice","password":"secret"}`); resp.StatusCode != http.StatusOK {
		t.Fatalf("first register: status = %d", resp.StatusCode)
	}

	resp := postJSON(t, srv.URL+"/accounts", `{"username":"alice","password":"other"}`)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("status = %d, want 409", resp.StatusCode)
	}
	var body struct {
		Code string `json:"code"`
	}
	decodeBody(t, resp, &body)
	if body.Code != "DUPLICATED_USERNAME" {
		t.Fatalf("code = %q, want DUPLICATED_USERNAME", body.Code)
	}
}

func TestLoginFailuresAreUniform(t *testing.T) {
	fastArgon(t)
	srv, _, _ := testServer(t)

	if resp := postJSON(t, srv.URL+"/accounts", `{"username":"alice","password":"secret"}`); resp.StatusCode != http.StatusOK {
		t.Fatalf("register: status = %d", resp.StatusCode)
	}

	cases := []struct {
		name string
		body string
	}{
		{"missing fields", `{}`},
		{"unknown username", `{"username":"nobody","password":"secret"}`},
		{"wrong password", `{"username":"alice","password":"wrong"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := postJSON(t, srv.URL+"/sessions", tc.body)
			if resp.StatusCode != http.StatusUnauthorized {
				t.Fatalf("status = %d, want 401", resp.StatusCode)
			}
			var body struct {
				Code string `json:"code"`
			}
			decodeBody(t, resp, &body)
			if body.Code != "NO_CREDENTIALS" {
				t.Fatalf("code = %q, want NO_CREDENTIALS", body.Code)
			}
		})
	}
}

func TestLoginCheckLogoutFlow(t *testing.T) {
	fastArgon(t)
	srv, _, _ := testServer(t)

	if resp := postJSON(t, srv.URL+"/accounts", `{"username":"alice","password":"secret"}`); resp.StatusCode != http.StatusOK {
		t.Fatalf("register: status = %d", resp.StatusCode)
	}

	login := postJSON(t, srv.URL+"/sessions", `{"username":"alice","password":"secret"}`)
	if login.StatusCode != http.StatusOK {
		t.Fatalf("login: status = %d", login.StatusCode)
	}
	cookie := sessionCookie(t, login)

	// Check with the cookie resolves the account.
	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/sessions/current", nil)
	req.AddCookie(cookie)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("check: status = %d, want 200", resp.StatusCode)
	}
	var acct struct {
		Username string `json:"username"`
	}
	decodeBody(t, resp, &acct)
	if acct.Username != "alice" {
		t.Fatalf("username = %q", acct.Username)
	}

	// Check without the cookie is rejected.
	anon, err := http.Get(srv.URL + "/sessions/current")
	if err != nil {
		t.Fatalf("anon check: %v", err)
	}
	defer anon.Body.Close()
	if anon.StatusCode != http.StatusUnauthorized {
		t.Fatalf("anon check: status = %d, want 401", anon.StatusCode)
	}
	var body struct {
		Code string `json:"code"`
	}
	decodeBody(t, anon, &body)
	if body.Code != "NOT_LOGGED_IN" {
		t.Fatalf("code = %q, want NOT_LOGGED_IN", body.Code)
	}

	// Logout clears the cookie.
	del, _ := http.NewRequest(http.MethodDelete, srv.URL+"/sessions/current", nil)
	del.AddCookie(cookie)
	out, err := http.DefaultClient.Do(del)
	if err != nil {
		t.Fatalf("logout: %v", err)
	}
	defer out.Body.Close()
	if out.StatusCode != http.StatusNoContent {
		t.Fatalf("logout: status = %d, want 204", out.StatusCode)
	}
	cleared := sessionCookie(t, out)
	if cleared.MaxAge >= 0 && !cleared.Expires.Before(time.Now()) {
		t.Fatal("logout did not expire the session cookie")
	}
}

func TestLoginCaseSensitiveUsername(t *testing.T) {
	fastArgon(t)
	srv, _, _ := testServer(t)

	if resp := postJSON(t, srv.URL+"/accounts", `{"username":"Alice","password":"secret"}`); resp.StatusCode != http.StatusOK {
		t.Fatalf("register: status = %d", resp.StatusCode)
	}

	resp := postJSON(t, srv.URL+"/sessions", `{"username":"alice","password":"secret"}`)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
}
