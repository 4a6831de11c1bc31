package services

import (
	"context"
	"io"

	"github.com/returnpoint/backend/internal/models"
)

// mockUserRepository is a mock implementation of UserRepository
type mockUserRepository struct {
	users        map[string]*models.User
	nextID       int
	err          error
	createErr    error
	updateErr    error
	existsErr    error
	createCalled bool
	updateCalled bool
	updatedUser  *models.User
}

func newMockUserRepository(users ...*models.User) *mockUserRepository {
	m := &mockUserRepository{users: map[string]*models.User{}, nextID: 1}
	for _, u := range users {
		m.users[u.Email] = u
		if u.ID >= m.nextID {
			m.nextID = u.ID + 1
		}
	}
	return m
}

func (m *mockUserRepository) Create(ctx context.Context, user *models.User) error {
	m.createCalled = true
	if m.createErr != nil {
		return m.createErr
	}
	user.ID = m.nextID
	m.nextID++
	m.users[user.Email] = user
	return nil
}

func (m *mockUserRepository) GetByID(ctx context.Context, userID int) (*models.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, u := range m.users {
		if u.ID == userID {
			copied := *u
			return &copied, nil
		}
	}
	return nil, models.Errorf(models.ErrNotFound, "user not found")
}

func (m *mockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	u, ok := m.users[email]
	if !ok {
		return nil, models.Errorf(models.ErrNotFound, "user not found")
	}
	copied := *u
	return &copied, nil
}

func (m *mockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	if m.existsErr != nil {
		return false, m.existsErr
	}
	_, ok := m.users[email]
	return ok, nil
}

func (m *mockUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	if m.existsErr != nil {
		return false, m.existsErr
	}
	for _, u := range m.users {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockUserRepository) Update(ctx context.Context, user *models.User) error {
	m.updateCalled = true
	if m.updateErr != nil {
		return m.updateErr
	}
	m.updatedUser = user
	return nil
}

// mockItemRepository is a mock implementation of ItemRepository
type mockItemRepository struct {
	item       *models.Item
	items      []models.Item
	total      int
	err        error
	getErr     error
	createErr  error
	updateErr  error
	deleteErr  error
	lastFilter *models.ItemFilter
	lastStatus models.ItemStatus
	created    *models.Item
	updated    *models.Item
	deletedID  int
	reporterID int
}

func (m *mockItemRepository) Create(ctx context.Context, item *models.Item) error {
	if m.createErr != nil {
		return m.createErr
	}
	item.ID = 1
	m.created = item
	return nil
}

func (m *mockItemRepository) GetByID(ctx context.Context, id int) (*models.Item, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if m.item == nil || m.item.ID != id {
		return nil, models.Errorf(models.ErrNotFound, "item not found")
	}
	copied := *m.item
	return &copied, nil
}

func (m *mockItemRepository) List(ctx context.Context, filter *models.ItemFilter) ([]models.Item, int, error) {
	m.lastFilter = filter
	if m.err != nil {
		return nil, 0, m.err
	}
	return m.items, m.total, nil
}

func (m *mockItemRepository) ListByReporter(ctx context.Context, reporterID int, filter *models.ItemFilter) ([]models.Item, error) {
	m.lastFilter = filter
	m.reporterID = reporterID
	if m.err != nil {
		return nil, m.err
	}
	return m.items, nil
}

func (m *mockItemRepository) Update(ctx context.Context, item *models.Item) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.updated = item
	return nil
}

func (m *mockItemRepository) UpdateStatus(ctx context.Context, id int, status models.ItemStatus) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.lastStatus = status
	if m.item != nil {
		m.item.Status = status
	}
	return nil
}

func (m *mockItemRepository) Delete(ctx context.Context, id int) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deletedID = id
	return nil
}

// mockAttachments is a mock implementation of AttachmentManager
type mockAttachments struct {
	reference string
	storeErr  error
	removeOK  bool
	stored    []string
	removed   []string
}

func (m *mockAttachments) Store(ctx context.Context, file io.Reader, filename string) (string, error) {
	if m.storeErr != nil {
		return "", m.storeErr
	}
	m.stored = append(m.stored, filename)
	return m.reference, nil
}

func (m *mockAttachments) Remove(ctx context.Context, reference string) bool {
	m.removed = append(m.removed, reference)
	return m.removeOK
}

// mockStorage is a mock implementation of Storage
type mockStorage struct {
	saveErr      error
	deleteErr    error
	saved        map[string][]byte
	deleteCalled bool
	deletedName  string
}

func (m *mockStorage) Save(name string, r io.Reader) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	if m.saved == nil {
		m.saved = map[string][]byte{}
	}
	m.saved[name] = data
	return nil
}

func (m *mockStorage) Delete(name string) error {
	m.deleteCalled = true
	m.deletedName = name
	return m.deleteErr
}
