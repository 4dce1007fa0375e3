package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/project-gallery/internal/api/http/handlers"
	"github.com/spec-kit/project-gallery/internal/api/validate"
	"github.com/spec-kit/project-gallery/internal/auth"
	"github.com/spec-kit/project-gallery/internal/domain"
	"github.com/spec-kit/project-gallery/internal/moderation"
	"github.com/spec-kit/project-gallery/internal/query"
	"github.com/spec-kit/project-gallery/internal/service"
	"github.com/spec-kit/project-gallery/internal/shopify"
)

const (
	testShop   = "wool.myshopify.com"
	testKey    = "app-key"
	testSecret = "app-secret"
)

// memoryRepo is an in-memory submission store honouring shop, status and category filters.
type memoryRepo struct {
	mu    sync.Mutex
	seq   int
	items []*domain.Submission
}

func (r *memoryRepo) Create(_ context.Context, sub *domain.Submission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	sub.ID = fmt.Sprintf("00000000-0000-0000-0000-%012d", r.seq)
	sub.SubmittedAt = time.Date(2026, 1, 1, 0, 0, r.seq, 0, time.UTC)
	copied := *sub
	r.items = append(r.items, &copied)
	return nil
}

func (r *memoryRepo) find(id string, shop *string) (*domain.Submission, int) {
	for i, sub := range r.items {
		if sub.ID == id && (shop == nil || sub.Shop == *shop) {
			return sub, i
		}
	}
	return nil, -1
}

func (r *memoryRepo) GetByID(_ context.Context, id string, shop *string) (*domain.Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sub, _ := r.find(id, shop)
	if sub == nil {
		return nil, pgx.ErrNoRows
	}
	copied := *sub
	return &copied, nil
}

func (r *memoryRepo) List(_ context.Context, spec query.Spec) ([]domain.Submission, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	matched := make([]domain.Submission, 0)
	for _, sub := range r.items {
		f := spec.Filter
		if f.Shop != nil && sub.Shop != *f.Shop {
			continue
		}
		if f.Status != nil && sub.Status != *f.Status {
			continue
		}
		if f.Category != "" && !sub.HasCategory(f.Category) {
			continue
		}
		if f.Search != "" && !strings.Contains(strings.ToLower(sub.ProjectName), strings.ToLower(f.Search)) {
			continue
		}
		matched = append(matched, *sub)
	}
	sort.SliceStable(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })

	total := len(matched)
	if spec.Offset >= total {
		return []domain.Submission{}, total, nil
	}
	end := spec.Offset + spec.Limit
	if end > total {
		end = total
	}
	return matched[spec.Offset:end], total, nil
}

func (r *memoryRepo) UpdateStatus(_ context.Context, id string, shop *string, change moderation.Change) (*domain.Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sub, _ := r.find(id, shop)
	if sub == nil {
		return nil, pgx.ErrNoRows
	}
	moderation.Apply(sub, change)
	copied := *sub
	return &copied, nil
}

func (r *memoryRepo) Delete(_ context.Context, id string, shop *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, idx := r.find(id, shop)
	if idx < 0 {
		return pgx.ErrNoRows
	}
	r.items = append(r.items[:idx], r.items[idx+1:]...)
	return nil
}

type memoryUploader struct {
	objects map[string]int
}

func (u *memoryUploader) Upload(_ context.Context, reader io.ReadSeeker, _ int64, key, _ string) error {
	body, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	u.objects[key] = len(body)
	return nil
}

func (u *memoryUploader) Exists(_ context.Context, key string) (bool, error) {
	_, ok := u.objects[key]
	return ok, nil
}

func (u *memoryUploader) PublicURL(key string) string {
	return "https://cdn.example.com/" + key
}

type stubSearcher struct{}

func (stubSearcher) SearchProducts(_ context.Context, term string) ([]shopify.Product, error) {
	return []shopify.Product{{
		ID:    "gid://shopify/Product/1",
		Title: "Merino " + term,
		Variants: []shopify.Variant{{
			ID:              "gid://shopify/ProductVariant/2",
			Price:           "12.50",
			Currency:        "USD",
			SelectedOptions: []domain.SelectedOption{{Name: "Color", Value: "Teal"}},
		}},
	}}, nil
}

type memoryHistory struct {
	mu      sync.Mutex
	entries []domain.SubmissionHistory
}

func (m *memoryHistory) Create(_ context.Context, entry *domain.SubmissionHistory) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry.ID = fmt.Sprintf("h-%d", len(m.entries)+1)
	entry.CreatedAt = time.Now().UTC()
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *memoryHistory) ListBySubmission(_ context.Context, submissionID string, _ int) ([]domain.SubmissionHistory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []domain.SubmissionHistory{}
	for _, entry := range m.entries {
		if entry.SubmissionID == submissionID {
			out = append(out, entry)
		}
	}
	return out, nil
}

type testServer struct {
	app      *fiber.App
	repo     *memoryRepo
	verifier *auth.SessionVerifier
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	repo := &memoryRepo{}
	validator := validate.New()
	submissions := service.NewSubmissionService(service.SubmissionDependencies{
		SubmissionRepo: repo,
		HistoryRepo:    &memoryHistory{},
		AdminPageSize:  10,
	})
	listing := service.NewListingService(service.ListingDependencies{SubmissionRepo: repo, DefaultPerPage: 12, MaxPerPage: 100})
	uploads := service.NewUploadService(&memoryUploader{objects: map[string]int{}}, 1<<20, nil)
	verifier := auth.NewSessionVerifier(testKey, testSecret, 0)

	app := NewApp("test", 0)
	RegisterMiddlewares(app, zap.NewNop(), nil, time.Second)
	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler(handlers.HealthDependencies{ServiceName: "gallery", Version: "test"}),
		Submissions:    handlers.NewSubmissionsHandler(submissions, validator),
		Public:         handlers.NewPublicSubmissionsHandler(listing, submissions, validator),
		Upload:         handlers.NewUploadHandler(uploads),
		Products:       handlers.NewProductsHandler(stubSearcher{}),
		AuthMiddleware: auth.NewAuthMiddleware(verifier),
		PublicMaxAge:   300,
	})
	return &testServer{app: app, repo: repo, verifier: verifier}
}

func (s *testServer) seed(t *testing.T, count int, status domain.SubmissionStatus, categories ...string) {
	t.Helper()
	for i := 0; i < count; i++ {
		require.NoError(t, s.repo.Create(context.Background(), &domain.Submission{
			Shop:              testShop,
			Status:            status,
			FirstName:         "Alice",
			LastName:          "Johnson",
			Email:             "alice@example.com",
			ProjectName:       fmt.Sprintf("Project %02d", i),
			Categories:        categories,
			DisplayPreference: domain.DisplayInitials,
		}))
	}
}

func (s *testServer) do(t *testing.T, req *http.Request) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	body := map[string]any{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &body), string(raw))
	}
	return resp, body
}

func (s *testServer) adminRequest(t *testing.T, method, target string, payload any) *http.Request {
	t.Helper()
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, body)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	token, err := s.verifier.Issue(testShop, "1", time.Minute)
	require.NoError(t, err)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	return req
}

func newSubmissionPayload() map[string]any {
	return map[string]any{
		"firstName":    "Alice",
		"lastName":     "Johnson",
		"email":        "alice@example.com",
		"projectName":  "Cabled Hat",
		"patternName":  "Vanilla Latte",
		"designerName": "Virginia",
		"patternLink":  "https://example.com/p",
		"nameDisplay":  "initials",
		"categories":   []string{"hats"},
		"product":      map[string]any{"shopifyId": "gid://shopify/Product/1", "price": 12.5},
		"images":       []map[string]string{{"url": "https://cdn.example.com/hat.png"}},
	}
}

func TestPublicListingPagination(t *testing.T) {
	s := newTestServer(t)
	s.seed(t, 25, domain.SubmissionStatusApproved)
	s.seed(t, 4, domain.SubmissionStatusPending)

	req := httptest.NewRequest(http.MethodGet, "/api/public/submissions?shop="+testShop+"&page=3&perPage=10&status=pending", nil)
	req.Header.Set(fiber.HeaderOrigin, "https://wool.example")
	resp, body := s.do(t, req)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "public, max-age=300", resp.Header.Get(fiber.HeaderCacheControl))
	assert.Equal(t, "*", resp.Header.Get(fiber.HeaderAccessControlAllowOrigin))

	assert.EqualValues(t, 25, body["total"])
	assert.EqualValues(t, 3, body["page"])
	assert.EqualValues(t, 10, body["perPage"])
	assert.EqualValues(t, 3, body["totalPages"])

	items := body["submissions"].([]any)
	require.Len(t, items, 5)
	for _, item := range items {
		fields := item.(map[string]any)
		assert.NotContains(t, fields, "firstName")
		assert.NotContains(t, fields, "lastName")
		assert.NotContains(t, fields, "email")
		assert.Equal(t, "A.J.", fields["displayName"])
	}
}

func TestPublicListingHugePageIsEmpty(t *testing.T) {
	s := newTestServer(t)
	s.seed(t, 3, domain.SubmissionStatusApproved)

	req := httptest.NewRequest(http.MethodGet, "/api/public/submissions?shop="+testShop+"&page=9223372036854775807&perPage=12", nil)
	resp, body := s.do(t, req)

	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	assert.EqualValues(t, 3, body["total"])
	assert.Empty(t, body["submissions"])
}

func TestPublicListingCategoryFilter(t *testing.T) {
	s := newTestServer(t)
	s.seed(t, 1, domain.SubmissionStatusApproved, "SOCKS", "WRAPS")
	s.seed(t, 1, domain.SubmissionStatusApproved, "MITTENS")

	_, body := s.do(t, httptest.NewRequest(http.MethodGet, "/api/public/submissions?shop="+testShop+"&category=socks", nil))
	assert.EqualValues(t, 1, body["total"])

	_, body = s.do(t, httptest.NewRequest(http.MethodGet, "/api/public/submissions?shop="+testShop+"&category=all", nil))
	assert.EqualValues(t, 2, body["total"])
}

func TestPublicListingErrors(t *testing.T) {
	s := newTestServer(t)

	resp, body := s.do(t, httptest.NewRequest(http.MethodGet, "/api/public/submissions", nil))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Missing required field: shop", body["error"])
	assert.Empty(t, resp.Header.Get(fiber.HeaderCacheControl))

	resp, body = s.do(t, httptest.NewRequest(http.MethodDelete, "/api/public/submissions", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	assert.Equal(t, "Method not allowed", body["error"])
}

func TestPublicPreflight(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/public/submissions", nil)
	req.Header.Set(fiber.HeaderOrigin, "https://wool.example")
	req.Header.Set(fiber.HeaderAccessControlRequestMethod, http.MethodGet)
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get(fiber.HeaderAccessControlAllowOrigin))
	assert.Contains(t, resp.Header.Get(fiber.HeaderAccessControlAllowMethods), "GET")
}

func TestStorefrontSubmitStartsPending(t *testing.T) {
	s := newTestServer(t)

	raw, err := json.Marshal(newSubmissionPayload())
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/public/submissions?shop="+testShop, bytes.NewReader(raw))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, body := s.do(t, req)
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)

	sub := body["submission"].(map[string]any)
	assert.Equal(t, "pending", sub["status"])

	_, listed := s.do(t, httptest.NewRequest(http.MethodGet, "/api/public/submissions?shop="+testShop, nil))
	assert.EqualValues(t, 0, listed["total"])
}

func TestAdminRequiresSession(t *testing.T) {
	s := newTestServer(t)

	resp, body := s.do(t, httptest.NewRequest(http.MethodGet, "/api/submissions", nil))
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.NotEmpty(t, body["error"])
}

func TestAdminModerationFlow(t *testing.T) {
	s := newTestServer(t)

	resp, body := s.do(t, s.adminRequest(t, http.MethodPost, "/api/submissions", newSubmissionPayload()))
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)
	created := body["submission"].(map[string]any)
	id := created["id"].(string)
	assert.Equal(t, "Alice", created["firstName"])
	assert.Equal(t, []any{"HATS"}, created["categories"])
	assert.Equal(t, "12.5", created["product"].(map[string]any)["price"])
	images := created["images"].([]any)
	require.Len(t, images, 1)
	assert.Equal(t, "hat.png", images[0].(map[string]any)["filename"])

	resp, body = s.do(t, s.adminRequest(t, http.MethodPut, "/api/submissions/"+id,
		map[string]any{"status": "rejected", "rejectionReason": "Low image quality"}))
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	updated := body["submission"].(map[string]any)
	assert.Equal(t, "rejected", updated["status"])
	assert.Equal(t, "Low image quality", updated["rejectionReason"])
	assert.NotNil(t, updated["rejectedAt"])
	assert.Nil(t, updated["approvedAt"])

	resp, body = s.do(t, s.adminRequest(t, http.MethodGet, "/api/submissions?status=rejected", nil))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 1, body["total"])
	assert.Equal(t, "rejected", body["status"])
	assert.Equal(t, "submittedAt", body["sortKey"])
	assert.Equal(t, "desc", body["sortDirection"])

	resp, body = s.do(t, s.adminRequest(t, http.MethodGet, "/api/submissions/"+id+"/history", nil))
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	history := body["history"].([]any)
	require.Len(t, history, 1)
	entry := history[0].(map[string]any)
	assert.Equal(t, "pending", entry["oldStatus"])
	assert.Equal(t, "rejected", entry["newStatus"])
	assert.Equal(t, "1", entry["changedBy"])
	assert.Equal(t, "Low image quality", entry["rejectionReason"])

	resp, _ = s.do(t, s.adminRequest(t, http.MethodDelete, "/api/submissions/"+id, nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = s.do(t, s.adminRequest(t, http.MethodGet, "/api/submissions/"+id, nil))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Submission not found", body["error"])
}

func TestAdminValidation(t *testing.T) {
	s := newTestServer(t)

	payload := newSubmissionPayload()
	delete(payload, "email")
	resp, body := s.do(t, s.adminRequest(t, http.MethodPost, "/api/submissions", payload))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Missing required field: email", body["error"])

	payload = newSubmissionPayload()
	payload["email"] = "alice@example"
	_, body = s.do(t, s.adminRequest(t, http.MethodPost, "/api/submissions", payload))
	assert.Equal(t, "Invalid email format", body["error"])

	payload = newSubmissionPayload()
	payload["product"] = map[string]any{"title": "no id"}
	_, body = s.do(t, s.adminRequest(t, http.MethodPost, "/api/submissions", payload))
	assert.Equal(t, "Missing required field: product.shopifyId", body["error"])

	payload = newSubmissionPayload()
	payload["product"] = map[string]any{"shopifyId": "gid://shopify/Product/1", "price": "-12.50"}
	resp, body = s.do(t, s.adminRequest(t, http.MethodPost, "/api/submissions", payload))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, domain.PriceMessage, body["error"])
	assert.Empty(t, s.repo.items)

	s.seed(t, 1, domain.SubmissionStatusPending)
	id := s.repo.items[0].ID
	resp, body = s.do(t, s.adminRequest(t, http.MethodPut, "/api/submissions/"+id, map[string]any{"status": "archived"}))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid status: archived", body["error"])
	assert.Equal(t, domain.SubmissionStatusPending, s.repo.items[0].Status)

	resp, body = s.do(t, s.adminRequest(t, http.MethodPatch, "/api/submissions/"+id, map[string]any{}))
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	assert.Equal(t, "Method not allowed", body["error"])
}

func TestAdminIsShopScoped(t *testing.T) {
	s := newTestServer(t)
	require.NoError(t, s.repo.Create(context.Background(), &domain.Submission{Shop: "other.myshopify.com", Status: domain.SubmissionStatusPending}))
	id := s.repo.items[0].ID

	resp, _ := s.do(t, s.adminRequest(t, http.MethodGet, "/api/submissions/"+id, nil))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = s.do(t, s.adminRequest(t, http.MethodGet, "/api/submissions?shop=other.myshopify.com", nil))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func multipartRequest(t *testing.T, field, filename string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	if field != "" {
		part, err := writer.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, writer.WriteField("desc", "Finished hat"))
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	req.Header.Set(fiber.HeaderContentType, writer.FormDataContentType())
	return req
}

func TestUpload(t *testing.T) {
	s := newTestServer(t)
	png := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

	resp, body := s.do(t, multipartRequest(t, "img", "hat.png", png))
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	assert.Equal(t, true, body["success"])
	data := body["data"].(map[string]any)
	assert.True(t, strings.HasPrefix(data["imageUrl"].(string), "https://cdn.example.com/uploads/"))
	assert.Equal(t, "Finished hat", data["description"])

	resp, body = s.do(t, multipartRequest(t, "", "", nil))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Missing required field: img", body["error"])

	resp, body = s.do(t, multipartRequest(t, "img", "notes.txt", []byte("plain text notes")))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Only image uploads are allowed", body["error"])
}

func TestProductSearch(t *testing.T) {
	s := newTestServer(t)

	resp, body := s.do(t, s.adminRequest(t, http.MethodGet, "/api/products/search?q=yarn", nil))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	products := body["products"].([]any)
	require.Len(t, products, 1)
	product := products[0].(map[string]any)
	assert.Equal(t, "Merino yarn", product["title"])

	resp, body = s.do(t, s.adminRequest(t, http.MethodGet, "/api/products/search", nil))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Missing required field: q", body["error"])
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	resp, body := s.do(t, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "alive", body["status"])

	resp, body = s.do(t, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	deps := body["dependencies"].(map[string]any)
	assert.Equal(t, "disabled", deps["redis"])
	assert.Equal(t, "not configured", deps["postgres"])
	assert.Equal(t, "local", body["listingCache"])
}

type fakeDatabase struct {
	version uint
	dirty   bool
}

func (fakeDatabase) Ping(context.Context) error { return nil }

func (f fakeDatabase) SchemaVersion(context.Context) (uint, bool, error) {
	return f.version, f.dirty, nil
}

type fakePinger struct{ err error }

func (f fakePinger) Ping(context.Context) error { return f.err }

func TestHealthReadiness(t *testing.T) {
	cases := []struct {
		name       string
		deps       handlers.HealthDependencies
		wantStatus int
		wantCache  string
	}{
		{"migrated local only", handlers.HealthDependencies{Database: fakeDatabase{version: 2}, ExpectedSchema: 2}, http.StatusOK, "local"},
		{"migrated with redis", handlers.HealthDependencies{Database: fakeDatabase{version: 2}, Redis: fakePinger{}, ExpectedSchema: 2}, http.StatusOK, "local+redis"},
		{"schema behind", handlers.HealthDependencies{Database: fakeDatabase{version: 1}, ExpectedSchema: 2}, http.StatusServiceUnavailable, "local"},
		{"dirty schema", handlers.HealthDependencies{Database: fakeDatabase{version: 2, dirty: true}, ExpectedSchema: 2}, http.StatusServiceUnavailable, "local"},
		{"redis down", handlers.HealthDependencies{Database: fakeDatabase{version: 2}, Redis: fakePinger{err: fmt.Errorf("dial tcp: refused")}, ExpectedSchema: 2}, http.StatusServiceUnavailable, "local"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := NewApp("test", 0)
			health := handlers.NewHealthHandler(tc.deps)
			app.Get("/health/ready", health.Ready)

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health/ready", nil), -1)
			require.NoError(t, err)
			body := map[string]any{}
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))

			assert.Equal(t, tc.wantStatus, resp.StatusCode)
			assert.Equal(t, tc.wantCache, body["listingCache"])
			schema := body["dependencies"].(map[string]any)["schema"].(map[string]any)
			assert.EqualValues(t, tc.deps.ExpectedSchema, schema["expected"])
		})
	}
}

func TestUnknownRoute(t *testing.T) {
	s := newTestServer(t)
	resp, body := s.do(t, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Not found", body["error"])
}
