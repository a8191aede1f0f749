package handler

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"flowblog/internal/domain"
	"flowblog/internal/middleware"
	"flowblog/internal/mocks"
	"flowblog/internal/service/view"
)

func newTestApp() *fiber.App {
	return fiber.New(fiber.Config{ErrorHandler: middleware.NewErrorHandler(nil)})
}

func TestGetPaginationParams(t *testing.T) {
	app := newTestApp()
	var got domain.PaginationParams
	app.Get("/", func(c *fiber.Ctx) error {
		got = getPaginationParams(c)
		return nil
	})

	_, err := app.Test(httptest.NewRequest("GET", "/?page=3&page_size=500", nil))
	require.NoError(t, err)

	assert.Equal(t, 3, got.Page)
	assert.Equal(t, 100, got.PageSize)
}

func TestGetInterval(t *testing.T) {
	app := newTestApp()
	app.Get("/", func(c *fiber.Ctx) error {
		interval, err := getInterval(c)
		if err != nil {
			return err
		}
		return c.SendString(string(interval))
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/?interval=1y", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestViewHandler_Track(t *testing.T) {
	post := &domain.Post{ID: uuid.New(), Status: domain.PostPublished}

	views := new(mocks.ViewRepository)
	posts := new(mocks.PostRepository)
	posts.On("GetByID", mock.Anything, post.ID).Return(post, nil)
	posts.On("IncrementViewCount", mock.Anything, post.ID).Return(nil)
	views.On("Create", mock.Anything, mock.MatchedBy(func(v *domain.ViewEvent) bool {
		return v.SessionID == "sess-1" && v.Country != nil && *v.Country == "NL" && v.UserID == nil
	})).Return(nil).Once()

	svc := view.NewService(views, posts, nil, time.Minute, nil)
	h := NewViewHandler(svc)

	app := newTestApp()
	app.Post("/posts/:postId/views", h.Track)

	req := httptest.NewRequest("POST", "/posts/"+post.ID.String()+"/views", strings.NewReader(`{"session_id":"sess-1","view_time":42,"read_percentage":80}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("CF-IPCountry", "NL")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var body map[string]bool
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.True(t, body["recorded"])
	views.AssertExpectations(t)
}

func TestViewHandler_Track_Validation(t *testing.T) {
	h := NewViewHandler(view.NewService(new(mocks.ViewRepository), new(mocks.PostRepository), nil, time.Minute, nil))

	app := newTestApp()
	app.Post("/posts/:postId/views", h.Track)

	req := httptest.NewRequest("POST", "/posts/"+uuid.NewString()+"/views", strings.NewReader(`{"read_percentage":150}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("POST", "/posts/not-a-uuid/views", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestAuditHandler_List(t *testing.T) {
	auditSvc := new(mocks.AuditService)
	h := NewAuditHandler(auditSvc)
	postID := uuid.New()

	auditSvc.On("ListByEntity", mock.Anything, domain.AuditEntityPost, postID, domain.PaginationParams{Page: 1, PageSize: 20}).
		Return(domain.NewPaginatedResponse([]domain.AuditLog{{Action: domain.AuditPostRemoved}}, 1, 20, 1), nil).Once()

	app := newTestApp()
	app.Get("/audit", h.List)

	resp, err := app.Test(httptest.NewRequest("GET", "/audit?entity_type=post&entity_id="+postID.String(), nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	auditSvc.AssertExpectations(t)

	resp, err = app.Test(httptest.NewRequest("GET", "/audit?entity_type=person&entity_id="+postID.String(), nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
