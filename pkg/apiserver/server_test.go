package apiserver

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/clientdesk/clientdesk/pkg/auth"
	"github.com/clientdesk/clientdesk/pkg/config"
	"github.com/clientdesk/clientdesk/pkg/model"
	"github.com/clientdesk/clientdesk/pkg/store/postgres"
)

func testConfig() *config.Config {
	return &config.Config{
		Quote: config.QuoteConfig{
			NumberPrefix:        "Q",
			NumberPadding:       4,
			DefaultValidityDays: 30,
		},
	}
}

func newTestServer(t *testing.T, cfg *config.Config) (*Server, *postgres.Store) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	store := postgres.NewStoreWithDB(db)
	if err := store.AutoMigrate(); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return NewServer(store, nil, cfg, zap.NewNop()), store
}

func doRequest(t *testing.T, s *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer local-dev")

	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
		t.Fatalf("failed to decode response %q: %v", w.Body.String(), err)
	}
}

func TestHealthEndpoint(t *testing.T) {
	s, _ := newTestServer(t, testConfig())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestAuthRequired(t *testing.T) {
	s, _ := newTestServer(t, testConfig())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/clients", nil)
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without a token, got %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/clients", nil)
	req.Header.Set("Authorization", "Token abc")
	w = httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for a non-bearer scheme, got %d", w.Code)
	}

	if w := doRequest(t, s, http.MethodGet, "/api/v1/clients", nil); w.Code != http.StatusOK {
		t.Fatalf("expected 200 with a token, got %d", w.Code)
	}
}

func TestAuthValidatesJWT(t *testing.T) {
	cfg := testConfig()
	cfg.Auth = config.AuthConfig{JWTSecret: "test-secret", TokenTTL: time.Hour}
	s, _ := newTestServer(t, cfg)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/clients", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for a garbage token, got %d", w.Code)
	}

	manager := auth.NewAPITokenManager([]byte("test-secret"), time.Hour)
	token, err := manager.Generate(1, "grace")
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/clients", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 with a signed token, got %d: %s", w.Code, w.Body.String())
	}
}

func TestClientAndContactFlow(t *testing.T) {
	s, _ := newTestServer(t, testConfig())

	w := doRequest(t, s, http.MethodPost, "/api/v1/clients", map[string]interface{}{
		"name":           "Acme GmbH",
		"address_line_1": "Main St 1",
		"postal_code":    "10115",
		"city":           "Berlin",
		"country":        "Germany",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var client struct {
		ID          uint   `json:"id"`
		FullAddress string `json:"full_address"`
	}
	decodeBody(t, w, &client)
	if client.FullAddress != "Main St 1\n10115 Berlin\nGermany" {
		t.Fatalf("unexpected full address %q", client.FullAddress)
	}

	base := fmt.Sprintf("/api/v1/clients/%d/contacts", client.ID)
	var contacts [2]struct {
		ID uint `json:"id"`
	}
	for i, name := range []string{"Ada", "Grace"} {
		w = doRequest(t, s, http.MethodPost, base, map[string]interface{}{"name": name})
		if w.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
		}
		decodeBody(t, w, &contacts[i])
	}

	w = doRequest(t, s, http.MethodPost, fmt.Sprintf("/api/v1/contacts/%d/primary", contacts[1].ID), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w = doRequest(t, s, http.MethodGet, fmt.Sprintf("/api/v1/clients/%d", client.ID), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var detail struct {
		PrimaryContact *struct {
			ID uint `json:"id"`
		} `json:"primary_contact"`
	}
	decodeBody(t, w, &detail)
	if detail.PrimaryContact == nil || detail.PrimaryContact.ID != contacts[1].ID {
		t.Fatalf("expected contact %d to be primary, got %+v", contacts[1].ID, detail.PrimaryContact)
	}

	// Promote the other contact; the flag must move, not multiply.
	w = doRequest(t, s, http.MethodPost, fmt.Sprintf("/api/v1/contacts/%d/primary", contacts[0].ID), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	w = doRequest(t, s, http.MethodGet, base, nil)
	var list []struct {
		ID        uint `json:"id"`
		IsPrimary bool `json:"is_primary"`
	}
	decodeBody(t, w, &list)

	primaries := 0
	for _, contact := range list {
		if contact.IsPrimary {
			primaries++
			if contact.ID != contacts[0].ID {
				t.Fatalf("expected contact %d to be primary, got %d", contacts[0].ID, contact.ID)
			}
		}
	}
	if primaries != 1 {
		t.Fatalf("expected exactly one primary contact, got %d", primaries)
	}
}

func TestQuoteLifecycle(t *testing.T) {
	s, store := newTestServer(t, testConfig())

	client := &model.Client{Name: "Acme GmbH"}
	if err := store.DB().Create(client).Error; err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	w := doRequest(t, s, http.MethodPost, "/api/v1/quotes", map[string]interface{}{
		"client_id": client.ID,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var quote struct {
		ID          uint    `json:"id"`
		QuoteNumber string  `json:"quote_number"`
		Status      string  `json:"status"`
		TaxRate     int64   `json:"tax_rate"`
		ValidUntil  *string `json:"valid_until"`
	}
	decodeBody(t, w, &quote)
	if quote.Status != "draft" {
		t.Fatalf("expected draft, got %q", quote.Status)
	}
	if want := fmt.Sprintf("Q-%d-0001", time.Now().Year()); quote.QuoteNumber != want {
		t.Fatalf("expected %q, got %q", want, quote.QuoteNumber)
	}
	if quote.TaxRate != 1900 {
		t.Fatalf("expected default tax rate 1900, got %d", quote.TaxRate)
	}
	if quote.ValidUntil == nil {
		t.Fatal("expected a default validity date")
	}

	itemsPath := fmt.Sprintf("/api/v1/quotes/%d/items", quote.ID)

	w = doRequest(t, s, http.MethodPost, itemsPath, map[string]interface{}{
		"description": "Development",
		"quantity":    "1.5",
		"unit_price":  999,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var item struct {
		ID    uint  `json:"id"`
		Total int64 `json:"total"`
	}
	decodeBody(t, w, &item)
	if item.Total != 1498 {
		t.Fatalf("expected line total 1498, got %d", item.Total)
	}

	w = doRequest(t, s, http.MethodPost, itemsPath, map[string]interface{}{
		"description": "Design",
		"unit_price":  100000,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	quotePath := fmt.Sprintf("/api/v1/quotes/%d", quote.ID)
	w = doRequest(t, s, http.MethodGet, quotePath, nil)
	var detail struct {
		Subtotal  int64 `json:"subtotal"`
		TaxAmount int64 `json:"tax_amount"`
		Total     int64 `json:"total"`
		Items     []struct {
			ID uint `json:"id"`
		} `json:"items"`
	}
	decodeBody(t, w, &detail)
	if detail.Subtotal != 101498 || detail.TaxAmount != 19284 || detail.Total != 120782 {
		t.Fatalf("unexpected totals %d/%d/%d", detail.Subtotal, detail.TaxAmount, detail.Total)
	}
	if len(detail.Items) != 2 {
		t.Fatalf("expected two items, got %d", len(detail.Items))
	}

	// Converting a draft is an invalid transition.
	if w := doRequest(t, s, http.MethodPost, quotePath+"/convert", nil); w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", w.Code)
	}

	if w := doRequest(t, s, http.MethodPost, quotePath+"/send", nil); w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	// Sent quotes are immutable.
	w = doRequest(t, s, http.MethodPost, itemsPath, map[string]interface{}{
		"description": "Extras",
		"unit_price":  5000,
	})
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 adding to a sent quote, got %d", w.Code)
	}

	if w := doRequest(t, s, http.MethodPost, quotePath+"/accept", nil); w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if w := doRequest(t, s, http.MethodPost, quotePath+"/convert", nil); w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w = doRequest(t, s, http.MethodGet, quotePath, nil)
	var converted struct {
		Status string `json:"status"`
	}
	decodeBody(t, w, &converted)
	if converted.Status != "converted" {
		t.Fatalf("expected converted, got %q", converted.Status)
	}

	w = doRequest(t, s, http.MethodGet, fmt.Sprintf("/api/v1/clients/%d/quotes", client.ID), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var byClient struct {
		Total int64 `json:"total"`
	}
	decodeBody(t, w, &byClient)
	if byClient.Total != 1 {
		t.Fatalf("expected one quote for the client, got %d", byClient.Total)
	}
}

func TestProjectStatsEndpoint(t *testing.T) {
	s, store := newTestServer(t, testConfig())

	client := &model.Client{Name: "Acme GmbH"}
	if err := store.DB().Create(client).Error; err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	user := &model.User{Name: "Grace", Email: "grace@example.com"}
	if err := store.DB().Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	w := doRequest(t, s, http.MethodPost, "/api/v1/projects", map[string]interface{}{
		"client_id":   client.ID,
		"name":        "Website relaunch",
		"rate_type":   "hourly",
		"hourly_rate": "100.00",
		"fixed_price": "9999.00", // must be dropped for hourly projects
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var project struct {
		ID         uint    `json:"id"`
		HourlyRate *string `json:"hourly_rate"`
		FixedPrice *string `json:"fixed_price"`
	}
	decodeBody(t, w, &project)
	if project.HourlyRate == nil || *project.HourlyRate != "100.00" {
		t.Fatalf("unexpected hourly rate %v", project.HourlyRate)
	}
	if project.FixedPrice != nil {
		t.Fatalf("expected fixed price to be dropped, got %v", *project.FixedPrice)
	}

	entriesPath := fmt.Sprintf("/api/v1/projects/%d/time-entries", project.ID)
	fixtures := []struct {
		hours    string
		billable bool
	}{
		{"5.0", true},
		{"3.0", true},
		{"2.0", false},
	}
	for _, f := range fixtures {
		w = doRequest(t, s, http.MethodPost, entriesPath, map[string]interface{}{
			"user_id":  user.ID,
			"date":     "2026-08-01",
			"hours":    f.hours,
			"billable": f.billable,
		})
		if w.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
		}
	}

	w = doRequest(t, s, http.MethodGet, fmt.Sprintf("/api/v1/projects/%d/stats", project.ID), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var stats struct {
		BillableHours  string `json:"billable_hours"`
		BillableAmount string `json:"billable_amount"`
		OverBudget     bool   `json:"over_budget"`
	}
	decodeBody(t, w, &stats)

	if hours := decimal.RequireFromString(stats.BillableHours); !hours.Equal(decimal.RequireFromString("8")) {
		t.Fatalf("expected 8 billable hours, got %s", stats.BillableHours)
	}
	if amount := decimal.RequireFromString(stats.BillableAmount); !amount.Equal(decimal.RequireFromString("800")) {
		t.Fatalf("expected billable amount 800, got %s", stats.BillableAmount)
	}
	if stats.OverBudget {
		t.Fatal("expected no budget to mean never over budget")
	}
}

func TestDashboardBillableHours(t *testing.T) {
	s, store := newTestServer(t, testConfig())

	client := &model.Client{Name: "Acme GmbH"}
	if err := store.DB().Create(client).Error; err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	user := &model.User{Name: "Grace", Email: "grace@example.com"}
	if err := store.DB().Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	rate := decimal.RequireFromString("100.00")
	budget := 2
	project := &model.Project{
		ClientID:    client.ID,
		Name:        "Website relaunch",
		Status:      model.ProjectActive,
		RateType:    model.RateHourly,
		HourlyRate:  &rate,
		BudgetHours: &budget,
	}
	if err := store.DB().Create(project).Error; err != nil {
		t.Fatalf("failed to create project: %v", err)
	}
	entry := &model.TimeEntry{
		ProjectID: project.ID,
		UserID:    user.ID,
		Date:      time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		Hours:     decimal.RequireFromString("3.0"),
		Billable:  true,
	}
	if err := store.DB().Create(entry).Error; err != nil {
		t.Fatalf("failed to create time entry: %v", err)
	}

	w := doRequest(t, s, http.MethodGet, "/api/v1/dashboard/billable-hours", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var dashboard struct {
		Projects []struct {
			ProjectID     uint   `json:"project_id"`
			BillableHours string `json:"billable_hours"`
			OverBudget    bool   `json:"over_budget"`
		} `json:"projects"`
	}
	decodeBody(t, w, &dashboard)
	if len(dashboard.Projects) != 1 {
		t.Fatalf("expected one project row, got %d", len(dashboard.Projects))
	}
	row := dashboard.Projects[0]
	if row.ProjectID != project.ID {
		t.Fatalf("expected project %d, got %d", project.ID, row.ProjectID)
	}
	if hours := decimal.RequireFromString(row.BillableHours); !hours.Equal(decimal.RequireFromString("3")) {
		t.Fatalf("expected 3 billable hours, got %s", row.BillableHours)
	}
	if !row.OverBudget {
		t.Fatal("expected the project to be over its 2 hour budget")
	}
}

func TestQuoteNotFound(t *testing.T) {
	s, _ := newTestServer(t, testConfig())

	if w := doRequest(t, s, http.MethodGet, "/api/v1/quotes/9999", nil); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	if w := doRequest(t, s, http.MethodGet, "/api/v1/quotes/abc", nil); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}
