package integration_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/roadcheck/inspecthub/internal/config"
	apphttp "github.com/roadcheck/inspecthub/internal/http"
)

func testConfig() config.Config {
	return config.Config{
		Env:                 "test",
		Port:                0,
		JWTSecret:           "test-secret-key",
		JWTAccessTTLMinutes: 60,
	}
}

func setupTestRouter(t *testing.T) (*gin.Engine, *pgxpool.Pool) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := os.Getenv("TEST_DB_DSN")

	if dsn == "" {
		t.Skip("TEST_DB_DSN not set; skipping integration tests")
	}

	ctx := context.Background()

	pool, err := pgxpool.New(ctx, dsn)

	if err != nil {
		t.Fatalf("failed to create pgx pool: %v", err)
	}

	t.Cleanup(pool.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))

	router := apphttp.NewRouter(logger, pool, testConfig())

	return router, pool
}

func resetDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	_, err := pool.Exec(context.Background(), `
		TRUNCATE inspections, users
		RESTART IDENTITY CASCADE
	`)
	if err != nil {
		t.Fatalf("failed to truncate tables: %v", err)
	}
}

func doRequest(router http.Handler, method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))

	if method == http.MethodPost || method == http.MethodPatch {
		req.Header.Set("Content-Type", "application/json")
	}

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	return w
}

func mustReadJSON[T any](t *testing.T, w *httptest.ResponseRecorder, out *T) {
	t.Helper()
	err := json.Unmarshal(w.Body.Bytes(), out)
	if err != nil {
		t.Fatalf("failed to unmarshal json: %v, body=%s", err, w.Body.String())
	}
}

type authResponse struct {
	AccessToken string `json:"access_token"`
	User        struct {
		ID       string `json:"id"`
		Username string `json:"username"`
	} `json:"user"`
}

type inspectionResponse struct {
	Inspection struct {
		ID                string `json:"id"`
		VehicleNumber     string `json:"vehicle_number"`
		DamageReport      string `json:"damage_report"`
		ImageURL          string `json:"image_url"`
		InspectedBy       string `json:"inspected_by"`
		InspectorUsername string `json:"inspector_username"`
		Status            string `json:"status"`
	} `json:"inspection"`
}

func signupAndLogin(t *testing.T, router http.Handler, username, password string) authResponse {
	t.Helper()

	w := doRequest(router, http.MethodPost, "/api/signup",
		`{"username":"`+username+`","password":"`+password+`"}`, "")

	if w.Code != http.StatusCreated {
		t.Fatalf("signup got status %d, body=%s", w.Code, w.Body.String())
	}

	w = doRequest(router, http.MethodPost, "/api/login",
		`{"username":"`+username+`","password":"`+password+`"}`, "")

	if w.Code != http.StatusOK {
		t.Fatalf("login got status %d, body=%s", w.Code, w.Body.String())
	}

	var resp authResponse
	mustReadJSON(t, w, &resp)

	if resp.AccessToken == "" {
		t.Fatalf("login returned an empty access token")
	}

	return resp
}

func TestInspectionLifecycle(t *testing.T) {
	router, pool := setupTestRouter(t)
	resetDB(t, pool)

	defer resetDB(t, pool)

	owner := signupAndLogin(t, router, "newuser", "newpassword123")

	// profile resolves the token back to the user
	w := doRequest(router, http.MethodGet, "/api/profile", "", owner.AccessToken)

	if w.Code != http.StatusOK {
		t.Fatalf("profile got status %d, body=%s", w.Code, w.Body.String())
	}

	// create starts in pending
	createBody := `{"vehicle_number":"ABC123","damage_report":"Front bumper has significant scratches and dents from collision","image_url":"https://example.com/damage_image.jpg"}`

	w = doRequest(router, http.MethodPost, "/api/inspection", createBody, owner.AccessToken)

	if w.Code != http.StatusCreated {
		t.Fatalf("create got status %d, body=%s", w.Code, w.Body.String())
	}

	var created inspectionResponse
	mustReadJSON(t, w, &created)

	if created.Inspection.Status != "pending" {
		t.Fatalf("created status = %q, want pending", created.Inspection.Status)
	}

	if created.Inspection.InspectedBy != owner.User.ID {
		t.Fatalf("created inspected_by = %q, want %q", created.Inspection.InspectedBy, owner.User.ID)
	}

	if created.Inspection.InspectorUsername != "newuser" {
		t.Fatalf("created inspector_username = %q, want newuser", created.Inspection.InspectorUsername)
	}

	// immediate fetch round-trips every field
	w = doRequest(router, http.MethodGet, "/api/inspection/"+created.Inspection.ID, "", owner.AccessToken)

	if w.Code != http.StatusOK {
		t.Fatalf("get got status %d, body=%s", w.Code, w.Body.String())
	}

	var fetched inspectionResponse
	mustReadJSON(t, w, &fetched)

	if fetched.Inspection != created.Inspection {
		t.Fatalf("fetched record differs from created:\n%+v\n%+v", fetched.Inspection, created.Inspection)
	}

	// two-step status walk
	w = doRequest(router, http.MethodPatch, "/api/inspection/"+created.Inspection.ID, `{"status":"reviewed"}`, owner.AccessToken)

	if w.Code != http.StatusOK {
		t.Fatalf("patch reviewed got status %d, body=%s", w.Code, w.Body.String())
	}

	var patched inspectionResponse
	mustReadJSON(t, w, &patched)

	if patched.Inspection.Status != "reviewed" {
		t.Fatalf("patched status = %q, want reviewed", patched.Inspection.Status)
	}

	w = doRequest(router, http.MethodPatch, "/api/inspection/"+created.Inspection.ID, `{"status":"completed"}`, owner.AccessToken)

	if w.Code != http.StatusOK {
		t.Fatalf("patch completed got status %d, body=%s", w.Code, w.Body.String())
	}

	mustReadJSON(t, w, &patched)

	if patched.Inspection.Status != "completed" {
		t.Fatalf("patched status = %q, want completed", patched.Inspection.Status)
	}
}

func TestOwnershipScoping(t *testing.T) {
	router, pool := setupTestRouter(t)
	resetDB(t, pool)

	defer resetDB(t, pool)

	alice := signupAndLogin(t, router, "alice_inspector", "password123")
	bob := signupAndLogin(t, router, "bob_inspector", "password456")

	createBody := `{"vehicle_number":"XYZ789","damage_report":"Rear door panel dented badly in parking lot","image_url":"https://example.com/dent.png"}`

	w := doRequest(router, http.MethodPost, "/api/inspection", createBody, alice.AccessToken)

	if w.Code != http.StatusCreated {
		t.Fatalf("create got status %d, body=%s", w.Code, w.Body.String())
	}

	var created inspectionResponse
	mustReadJSON(t, w, &created)

	// bob sees alice's record exactly like a non-existent one
	wForeign := doRequest(router, http.MethodGet, "/api/inspection/"+created.Inspection.ID, "", bob.AccessToken)
	wMissing := doRequest(router, http.MethodGet, "/api/inspection/00000000-0000-0000-0000-000000000000", "", bob.AccessToken)

	if wForeign.Code != http.StatusNotFound || wMissing.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for both foreign and missing, got %d and %d", wForeign.Code, wMissing.Code)
	}

	if wForeign.Body.String() != wMissing.Body.String() {
		t.Fatalf("foreign and missing bodies differ:\n%s\n%s", wForeign.Body.String(), wMissing.Body.String())
	}

	// same for status updates
	w = doRequest(router, http.MethodPatch, "/api/inspection/"+created.Inspection.ID, `{"status":"reviewed"}`, bob.AccessToken)

	if w.Code != http.StatusNotFound {
		t.Fatalf("foreign patch got status %d, want 404", w.Code)
	}

	// and listings never cross owners
	w = doRequest(router, http.MethodGet, "/api/inspection", "", bob.AccessToken)

	if w.Code != http.StatusOK {
		t.Fatalf("list got status %d, body=%s", w.Code, w.Body.String())
	}

	var listing struct {
		Count int `json:"count"`
	}
	mustReadJSON(t, w, &listing)

	if listing.Count != 0 {
		t.Fatalf("bob's listing count = %d, want 0", listing.Count)
	}
}

func TestListOrderingAndFilter(t *testing.T) {
	router, pool := setupTestRouter(t)
	resetDB(t, pool)

	defer resetDB(t, pool)

	owner := signupAndLogin(t, router, "list_owner", "password123")

	vehicles := []string{"CAR01", "CAR02", "CAR03"}
	ids := make([]string, 0, len(vehicles))

	for _, v := range vehicles {
		body := `{"vehicle_number":"` + v + `","damage_report":"Scratches along the driver side door","image_url":"https://example.com/scratch.jpeg"}`

		w := doRequest(router, http.MethodPost, "/api/inspection", body, owner.AccessToken)

		if w.Code != http.StatusCreated {
			t.Fatalf("create %s got status %d, body=%s", v, w.Code, w.Body.String())
		}

		var created inspectionResponse
		mustReadJSON(t, w, &created)
		ids = append(ids, created.Inspection.ID)
	}

	// move one to reviewed, one to completed, leave one pending
	for i, status := range []string{"reviewed", "completed"} {
		w := doRequest(router, http.MethodPatch, "/api/inspection/"+ids[i], `{"status":"`+status+`"}`, owner.AccessToken)

		if w.Code != http.StatusOK {
			t.Fatalf("patch got status %d, body=%s", w.Code, w.Body.String())
		}
	}

	var listing struct {
		Inspections []struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		} `json:"inspections"`
		Count int `json:"count"`
	}

	// unfiltered: all three, newest first
	w := doRequest(router, http.MethodGet, "/api/inspection", "", owner.AccessToken)
	mustReadJSON(t, w, &listing)

	if listing.Count != 3 {
		t.Fatalf("unfiltered count = %d, want 3", listing.Count)
	}

	if listing.Inspections[0].ID != ids[2] {
		t.Fatalf("expected newest record first, got %q", listing.Inspections[0].ID)
	}

	// filtered: exactly the one pending record
	w = doRequest(router, http.MethodGet, "/api/inspection?status=pending", "", owner.AccessToken)
	mustReadJSON(t, w, &listing)

	if listing.Count != 1 || listing.Inspections[0].Status != "pending" {
		t.Fatalf("pending filter returned %d records, body=%s", listing.Count, w.Body.String())
	}
}

func TestDuplicateUsernameRejected(t *testing.T) {
	router, pool := setupTestRouter(t)
	resetDB(t, pool)

	defer resetDB(t, pool)

	body := `{"username":"sameuser","password":"password123"}`

	w := doRequest(router, http.MethodPost, "/api/signup", body, "")

	if w.Code != http.StatusCreated {
		t.Fatalf("first signup got status %d, body=%s", w.Code, w.Body.String())
	}

	w = doRequest(router, http.MethodPost, "/api/signup", body, "")

	if w.Code != http.StatusBadRequest {
		t.Fatalf("second signup got status %d, want 400, body=%s", w.Code, w.Body.String())
	}
}
