package handlers

import (
	"context"
	"io"
	"net/http"

	"github.com/returnpoint/backend/internal/auth/middleware"
	"github.com/returnpoint/backend/internal/models"
	"github.com/returnpoint/backend/internal/services"
)

// mockAuthService is a mock implementation of AuthService
type mockAuthService struct {
	user  *models.User
	token string
	err   error
	req   any
}

func (m *mockAuthService) Register(ctx context.Context, req *models.RegisterRequest) (*models.User, string, error) {
	m.req = req
	if m.err != nil {
		return nil, "", m.err
	}
	return m.user, m.token, nil
}

func (m *mockAuthService) Login(ctx context.Context, req *models.LoginRequest) (*models.User, string, error) {
	m.req = req
	if m.err != nil {
		return nil, "", m.err
	}
	return m.user, m.token, nil
}

// mockProfileService is a mock implementation of ProfileService
type mockProfileService struct {
	user   *models.User
	err    error
	userID int
	req    *models.UpdateProfileRequest
}

func (m *mockProfileService) GetProfile(ctx context.Context, userID int) (*models.User, error) {
	m.userID = userID
	if m.err != nil {
		return nil, m.err
	}
	return m.user, nil
}

func (m *mockProfileService) UpdateProfile(ctx context.Context, userID int, req *models.UpdateProfileRequest) (*models.User, error) {
	m.userID = userID
	m.req = req
	if m.err != nil {
		return nil, m.err
	}
	return m.user, nil
}

// mockItemService is a mock implementation of ItemService
type mockItemService struct {
	item        *models.Item
	items       []models.Item
	list        *models.ItemListResponse
	err         error
	lastID      int
	lastStatus  string
	lastReq     *models.ItemRequest
	lastFilter  *models.ItemFilter
	lastActor   *models.User
	photoName   string
	photoBytes  []byte
	deleteCalls int
}

func (m *mockItemService) readPhoto(photo *services.Upload) {
	if photo == nil {
		return
	}
	m.photoName = photo.Filename
	m.photoBytes, _ = io.ReadAll(photo.File)
}

func (m *mockItemService) Create(ctx context.Context, req *models.ItemRequest, photo *services.Upload, actor *models.User) (*models.Item, error) {
	m.lastReq = req
	m.lastActor = actor
	m.readPhoto(photo)
	if m.err != nil {
		return nil, m.err
	}
	return m.item, nil
}

func (m *mockItemService) List(ctx context.Context, filter *models.ItemFilter) (*models.ItemListResponse, error) {
	m.lastFilter = filter
	if m.err != nil {
		return nil, m.err
	}
	return m.list, nil
}

func (m *mockItemService) GetByID(ctx context.Context, id int) (*models.Item, error) {
	m.lastID = id
	if m.err != nil {
		return nil, m.err
	}
	return m.item, nil
}

func (m *mockItemService) UpdateStatus(ctx context.Context, id int, status string, actor *models.User) (*models.Item, error) {
	m.lastID = id
	m.lastStatus = status
	m.lastActor = actor
	if m.err != nil {
		return nil, m.err
	}
	return m.item, nil
}

func (m *mockItemService) Update(ctx context.Context, id int, req *models.ItemRequest, photo *services.Upload, actor *models.User) (*models.Item, error) {
	m.lastID = id
	m.lastReq = req
	m.lastActor = actor
	m.readPhoto(photo)
	if m.err != nil {
		return nil, m.err
	}
	return m.item, nil
}

func (m *mockItemService) Delete(ctx context.Context, id int, actor *models.User) error {
	m.lastID = id
	m.lastActor = actor
	m.deleteCalls++
	return m.err
}

func (m *mockItemService) ListMine(ctx context.Context, actor *models.User, filter *models.ItemFilter) ([]models.Item, error) {
	m.lastActor = actor
	m.lastFilter = filter
	if m.err != nil {
		return nil, m.err
	}
	return m.items, nil
}

// fakeAuth authenticates every request as user, or rejects it when user is nil
func fakeAuth(user *models.User) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if user == nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"error":"no token provided"}`))
				return
			}
			next.ServeHTTP(w, r.WithContext(middleware.WithUser(r.Context(), user)))
		})
	}
}
