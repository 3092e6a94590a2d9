package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/cmdbreizh/site-backend/internal/mailer"
	"github.com/cmdbreizh/site-backend/internal/review/repository"
	"github.com/cmdbreizh/site-backend/internal/review/service"
	"github.com/cmdbreizh/site-backend/internal/review/submitcache"
)

const baseURL = "https://example.test"

type noopNotifier struct{}

func (noopNotifier) SendAdminModeration(context.Context, mailer.AdminModerationEmail) error { return nil }
func (noopNotifier) SendAuthorConfirmation(context.Context, mailer.AuthorConfirmationEmail) error {
	return nil
}

func newTestRouter(t *testing.T) (*gin.Engine, *repository.MemoryRepo) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := repository.NewMemoryRepo()
	svc := service.New(repo, noopNotifier{}, baseURL)

	m, err := mr.Run()
	require.NoError(t, err)
	t.Cleanup(m.Close)
	cache := submitcache.New(redis.NewClient(&redis.Options{Addr: m.Addr()}), "", time.Hour)

	g := gin.New()
	h := New(svc, cache, baseURL)
	h.RegisterRoutes(g)
	h.RegisterAdminRoutes(g.Group("/api/admin"))
	return g, repo
}

func postJSON(g *gin.Engine, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	g.ServeHTTP(w, req)
	return w
}

func get(g *gin.Engine, path string, headers map[string]string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	g.ServeHTTP(w, req)
	return w
}

func submitReview(t *testing.T, g *gin.Engine) string {
	t.Helper()
	w := postJSON(g, "/api/reviews", `{"name":"Alice Smith","email":"alice@example.com","comment":"Great service, highly recommended to everyone","rating":4.5}`, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Success  bool   `json:"success"`
		ReviewID string `json:"reviewId"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	require.NotEmpty(t, resp.ReviewID)
	return resp.ReviewID
}

func TestSubmit_CreatesPendingReview(t *testing.T) {
	g, repo := newTestRouter(t)

	id := submitReview(t, g)

	rv, err := repo.GetByToken(context.Background(), id)
	require.NoError(t, err)
	require.False(t, rv.Published)
	require.Equal(t, 4.5, rv.Rating)

	// not listed publicly while pending
	w := get(g, "/api/reviews", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "[]", strings.TrimSpace(w.Body.String()))
}

func TestSubmit_BadInput(t *testing.T) {
	g, _ := newTestRouter(t)

	w := postJSON(g, "/api/reviews", `{"name":"","comment":"c","rating":3}`, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = postJSON(g, "/api/reviews", `not json`, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = postJSON(g, "/api/reviews", `{"id":"missing","name":"a","comment":"c","rating":3}`, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestValidate_BadRequests(t *testing.T) {
	g, repo := newTestRouter(t)
	id := submitReview(t, g)

	// missing token -> 400, no redirect
	w := get(g, "/api/reviews/validate?action=approve", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)

	// invalid action -> 400 and no mutation
	w = get(g, "/api/reviews/validate?action=publish&token="+id, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	rv, err := repo.GetByToken(context.Background(), id)
	require.NoError(t, err)
	require.False(t, rv.Published)
}

func TestValidate_UnknownTokenRedirectsNotFound(t *testing.T) {
	g, _ := newTestRouter(t)

	w := get(g, "/api/reviews/validate?action=approve&token=unknown", nil)
	require.Equal(t, http.StatusFound, w.Code)
	require.Equal(t, baseURL+"/?tab=Reviews#status=notfound", w.Header().Get("Location"))
}

func TestValidate_ApproveAndReject(t *testing.T) {
	g, repo := newTestRouter(t)
	id := submitReview(t, g)

	w := get(g, "/api/reviews/validate?action=approve&token="+id, nil)
	require.Equal(t, http.StatusFound, w.Code)
	require.Equal(t, baseURL+"/?tab=Reviews#status=approved", w.Header().Get("Location"))

	rv, err := repo.GetByToken(context.Background(), id)
	require.NoError(t, err)
	require.True(t, rv.Published)

	// published review appears in the public listing
	w = get(g, "/api/reviews", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), id)

	// a second approve is a harmless no-op
	w = get(g, "/api/reviews/validate?action=approve&token="+id, nil)
	require.Equal(t, http.StatusFound, w.Code)
	require.Equal(t, baseURL+"/?tab=Reviews#status=approved", w.Header().Get("Location"))

	w = get(g, "/api/reviews/validate?action=reject&token="+id, nil)
	require.Equal(t, http.StatusFound, w.Code)
	require.Equal(t, baseURL+"/?tab=Reviews#status=rejected", w.Header().Get("Location"))

	_, err = repo.GetByToken(context.Background(), id)
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUpdateDirect(t *testing.T) {
	g, repo := newTestRouter(t)
	id := submitReview(t, g)
	get(g, "/api/reviews/validate?action=approve&token="+id, nil)

	// missing id -> 400
	w := postJSON(g, "/api/reviews/update-direct", `{"name":"x","email":"x@y.z","rating":3}`, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)

	// unknown id -> 404
	w = postJSON(g, "/api/reviews/update-direct", `{"id":"missing","name":"x","email":"x@y.z","rating":3}`, nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	// valid update keeps published state and comment
	w = postJSON(g, "/api/reviews/update-direct", `{"id":"`+id+`","name":"Renamed","email":"alice@example.com","rating":5}`, nil)
	require.Equal(t, http.StatusOK, w.Code)

	rv, err := repo.GetByToken(context.Background(), id)
	require.NoError(t, err)
	require.True(t, rv.Published)
	require.Equal(t, "Renamed", rv.Name)
	require.Equal(t, "Great service, highly recommended to everyone", rv.Comment)
}

func TestModerationLifecycle(t *testing.T) {
	g, _ := newTestRouter(t)
	id := submitReview(t, g)

	// approve -> visible
	get(g, "/api/reviews/validate?action=approve&token="+id, nil)
	w := get(g, "/api/reviews", nil)
	require.Contains(t, w.Body.String(), id)

	// name-only edit -> still visible with new name
	w = postJSON(g, "/api/reviews", `{"id":"`+id+`","name":"New Name","email":"alice@example.com","comment":"Great service, highly recommended to everyone","rating":4.5}`, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = get(g, "/api/reviews", nil)
	require.Contains(t, w.Body.String(), id)
	require.Contains(t, w.Body.String(), "New Name")

	// comment edit -> disappears until re-approved
	w = postJSON(g, "/api/reviews", `{"id":"`+id+`","name":"New Name","email":"alice@example.com","comment":"An entirely different experience this time","rating":4.5}`, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = get(g, "/api/reviews", nil)
	require.NotContains(t, w.Body.String(), id)

	get(g, "/api/reviews/validate?action=approve&token="+id, nil)
	w = get(g, "/api/reviews", nil)
	require.Contains(t, w.Body.String(), id)
}

func TestPending_SubmissionCacheRoundTrip(t *testing.T) {
	g, _ := newTestRouter(t)
	device := map[string]string{DeviceTokenHeader: "device-abc"}

	// no device token -> 400
	w := get(g, "/api/reviews/pending", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)

	// nothing recorded yet
	w = get(g, "/api/reviews/pending", device)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"pending":false`)

	// submit with device token, then the pending review comes back
	w = postJSON(g, "/api/reviews", `{"name":"Alice Smith","email":"alice@example.com","comment":"Great service, highly recommended to everyone","rating":4.5}`, device)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		ReviewID string `json:"reviewId"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	w = get(g, "/api/reviews/pending", device)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"pending":true`)
	require.Contains(t, w.Body.String(), resp.ReviewID)
	require.Contains(t, w.Body.String(), `"cooldownSeconds"`)

	// after the review is rejected the stale entry is dropped
	get(g, "/api/reviews/validate?action=reject&token="+resp.ReviewID, nil)
	w = get(g, "/api/reviews/pending", device)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"pending":false`)
}

func TestAdminListAll(t *testing.T) {
	g, _ := newTestRouter(t)
	id := submitReview(t, g)

	// pending review is invisible publicly but present in the admin listing
	w := get(g, "/api/admin/reviews", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), id)
}
