package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"smartdues/internal/auth"
	"smartdues/internal/core"
	"smartdues/internal/services"
	"smartdues/internal/storage/memory"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	store := memory.New()
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)

	n := 0
	bills := services.NewBillService(store, nil).
		WithClock(func() time.Time { return core.NewDate(2024, 3, 10).Time }).
		WithIDGenerator(func() string { n++; return fmt.Sprintf("id-%d", n) })
	users := services.NewUserService(store, jwtManager)

	srv := NewServer(":0", users, bills, jwtManager)
	t.Cleanup(srv.Stop)
	return srv
}

func doJSON(t *testing.T, srv *Server, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)
	return rec
}

func signup(t *testing.T, srv *Server) string {
	t.Helper()
	rec := doJSON(t, srv, http.MethodPost, "/auth/signup", "", map[string]string{
		"email":    "a@example.com",
		"password": "long enough password",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("signup status = %d: %s", rec.Code, rec.Body)
	}
	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil || resp.Token == "" {
		t.Fatalf("signup response: %s (%v)", rec.Body, err)
	}
	return resp.Token
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t)
	for _, path := range []string{"/healthz", "/readyz"} {
		rec := doJSON(t, srv, http.MethodGet, path, "", nil)
		if rec.Code != http.StatusOK {
			t.Errorf("%s status = %d", path, rec.Code)
		}
	}
}

func TestAuthFlow(t *testing.T) {
	srv := newTestServer(t)
	signup(t, srv)

	rec := doJSON(t, srv, http.MethodPost, "/auth/login", "", map[string]string{
		"email": "a@example.com", "password": "long enough password",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d: %s", rec.Code, rec.Body)
	}

	rec = doJSON(t, srv, http.MethodPost, "/auth/login", "", map[string]string{
		"email": "a@example.com", "password": "wrong",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad login status = %d, want 401", rec.Code)
	}

	rec = doJSON(t, srv, http.MethodPost, "/auth/signup", "", map[string]string{
		"email": "a@example.com", "password": "long enough password",
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate signup status = %d, want 409", rec.Code)
	}
}

func TestBillsRequireAuth(t *testing.T) {
	srv := newTestServer(t)
	rec := doJSON(t, srv, http.MethodGet, "/bills", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated status = %d, want 401", rec.Code)
	}
	rec = doJSON(t, srv, http.MethodGet, "/bills", "not-a-token", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("garbage token status = %d, want 401", rec.Code)
	}
}

func TestCreateAndListBills(t *testing.T) {
	srv := newTestServer(t)
	token := signup(t, srv)

	rec := doJSON(t, srv, http.MethodPost, "/bills", token, map[string]any{
		"title":         "Rent",
		"amount":        "1200.50",
		"due_date":      "2024-03-15",
		"repeat":        "monthly",
		"reminder_days": "1,7,3",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", rec.Code, rec.Body)
	}
	var created billResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.Amount != "1200.50" || created.Status != "upcoming" || created.ReminderDays != "7,3,1" {
		t.Fatalf("bad bill response: %+v", created)
	}

	rec = doJSON(t, srv, http.MethodGet, "/bills", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	var list []billResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil || len(list) != 1 {
		t.Fatalf("list response: %s (%v)", rec.Body, err)
	}

	rec = doJSON(t, srv, http.MethodGet, "/bills/"+created.ID, token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}
	rec = doJSON(t, srv, http.MethodGet, "/bills/missing", token, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing bill status = %d, want 404", rec.Code)
	}
}

func TestCreateBillValidationErrors(t *testing.T) {
	srv := newTestServer(t)
	token := signup(t, srv)

	cases := []struct {
		name string
		body map[string]any
	}{
		{"empty title", map[string]any{"title": "", "amount": "10", "due_date": "2024-03-15"}},
		{"negative amount", map[string]any{"title": "x", "amount": "-5", "due_date": "2024-03-15"}},
		{"bad date", map[string]any{"title": "x", "amount": "10", "due_date": "15/03/2024"}},
		{"bad repeat", map[string]any{"title": "x", "amount": "10", "due_date": "2024-03-15", "repeat": "fortnightly"}},
		{"bad reminders", map[string]any{"title": "x", "amount": "10", "due_date": "2024-03-15", "reminder_days": "-1"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doJSON(t, srv, http.MethodPost, "/bills", token, tc.body)
			if rec.Code != http.StatusUnprocessableEntity {
				t.Fatalf("status = %d, want 422: %s", rec.Code, rec.Body)
			}
		})
	}

	rec := doJSON(t, srv, http.MethodPost, "/bills", token, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("empty body status = %d, want 400", rec.Code)
	}
}

func TestMarkPaidFlow(t *testing.T) {
	srv := newTestServer(t)
	token := signup(t, srv)

	rec := doJSON(t, srv, http.MethodPost, "/bills", token, map[string]any{
		"title": "Rent", "amount": "1200.00", "due_date": "2024-03-15", "repeat": "monthly",
	})
	var created billResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}

	rec = doJSON(t, srv, http.MethodPost, "/bills/"+created.ID+"/pay", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("pay status = %d: %s", rec.Code, rec.Body)
	}
	var paid markPaidResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &paid); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !paid.Paid.IsPaid || paid.Paid.Status != "paid" {
		t.Fatalf("paid bill not marked: %+v", paid.Paid)
	}
	if paid.Next == nil || paid.Next.DueDate != "2024-04-15" {
		t.Fatalf("bad successor: %+v", paid.Next)
	}

	// Paying the same occurrence again conflicts.
	rec = doJSON(t, srv, http.MethodPost, "/bills/"+created.ID+"/pay", token, nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("double pay status = %d, want 409: %s", rec.Code, rec.Body)
	}

	rec = doJSON(t, srv, http.MethodGet, "/payments", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("payments status = %d", rec.Code)
	}
	var payments []paymentResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &payments); err != nil || len(payments) != 1 {
		t.Fatalf("payments response: %s (%v)", rec.Body, err)
	}
}

func TestDashboardEndpoint(t *testing.T) {
	srv := newTestServer(t)
	token := signup(t, srv)

	seed := []map[string]any{
		{"title": "electricity", "amount": "100.00", "due_date": "2024-03-20"},
		{"title": "gym", "amount": "20.00", "due_date": "2024-03-03"},
		{"title": "netflix", "amount": "15.00", "due_date": "2024-03-12"},
	}
	for _, b := range seed {
		if rec := doJSON(t, srv, http.MethodPost, "/bills", token, b); rec.Code != http.StatusCreated {
			t.Fatalf("seed %v: %d", b, rec.Code)
		}
	}

	rec := doJSON(t, srv, http.MethodGet, "/dashboard", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("dashboard status = %d: %s", rec.Code, rec.Body)
	}
	var dash dashboardResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &dash); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if dash.TotalMonthUnpaid != "135.00" {
		t.Errorf("total = %q, want 135.00", dash.TotalMonthUnpaid)
	}
	if dash.OverdueCount != 1 {
		t.Errorf("overdue = %d, want 1", dash.OverdueCount)
	}
	if len(dash.UpcomingNext7Days) != 1 || dash.UpcomingNext7Days[0].Title != "netflix" {
		t.Errorf("upcoming = %+v", dash.UpcomingNext7Days)
	}
}
