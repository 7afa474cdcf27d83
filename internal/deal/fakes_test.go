package deal

import (
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"propdesk-backend/internal/filestore"
	"propdesk-backend/internal/models"
)

// memStore is an in-memory Store.
type memStore struct {
	mu     sync.Mutex
	nextID uint
	deals  map[uint]models.Deal
	writes int
	err    error
}

func newMemStore() *memStore {
	return &memStore{deals: make(map[uint]models.Deal)}
}

func (m *memStore) FindAll(_ context.Context, filter Filter, _ Order) ([]models.Deal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Deal
	for _, d := range m.deals {
		if filter.Variant != "" && d.Variant != filter.Variant {
			continue
		}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *memStore) FindOne(_ context.Context, id uint) (*models.Deal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.deals[id]
	if !ok {
		return nil, ErrNotFound
	}
	d.Expenses = append([]models.DealExpense(nil), d.Expenses...)
	return &d, nil
}

func (m *memStore) CreateWithChildren(ctx context.Context, d *models.Deal, expenses []models.DealExpense) (*models.Deal, error) {
	m.mu.Lock()
	if m.err != nil {
		m.mu.Unlock()
		return nil, m.err
	}
	m.writes++
	m.nextID++
	d.ID = m.nextID
	d.CreatedAt = time.Now()
	d.Expenses = withIDs(d.ID, expenses)
	m.deals[d.ID] = *d
	m.mu.Unlock()
	return m.FindOne(ctx, d.ID)
}

func (m *memStore) ReplaceChildrenAndUpdate(ctx context.Context, id uint, d *models.Deal, expenses []models.DealExpense) (*models.Deal, error) {
	m.mu.Lock()
	if m.err != nil {
		m.mu.Unlock()
		return nil, m.err
	}
	if _, ok := m.deals[id]; !ok {
		m.mu.Unlock()
		return nil, ErrNotFound
	}
	m.writes++
	d.ID = id
	d.Expenses = withIDs(id, expenses)
	m.deals[id] = *d
	m.mu.Unlock()
	return m.FindOne(ctx, id)
}

func (m *memStore) Delete(_ context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if _, ok := m.deals[id]; !ok {
		return ErrNotFound
	}
	m.writes++
	delete(m.deals, id)
	return nil
}

func withIDs(dealID uint, expenses []models.DealExpense) []models.DealExpense {
	out := make([]models.DealExpense, len(expenses))
	for i, e := range expenses {
		e.ID = uint(i + 1)
		e.DealID = dealID
		out[i] = e
	}
	return out
}

// fakeFiles records folder creation and removal.
type fakeFiles struct {
	folders []string
	deleted []string
	err     error
}

func (f *fakeFiles) CreateFolder(_ context.Context, name string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.folders = append(f.folders, name)
	return "folder-" + name, nil
}

func (f *fakeFiles) DeleteFolder(_ context.Context, folderID string) error {
	name := strings.TrimPrefix(folderID, "folder-")
	for i, n := range f.folders {
		if n == name {
			f.folders = append(f.folders[:i], f.folders[i+1:]...)
			f.deleted = append(f.deleted, folderID)
			return nil
		}
	}
	return filestore.ErrFolderNotFound
}

func (f *fakeFiles) ListFiles(context.Context, string) ([]filestore.File, error) {
	return nil, nil
}

func (f *fakeFiles) Upload(_ context.Context, _, name, mimeType string, _ io.Reader) (filestore.File, error) {
	return filestore.File{ID: name, Name: name, MimeType: mimeType}, nil
}

type countingNotifier struct {
	calls []models.DealVariant
	fail  bool
}

func (n *countingNotifier) Changed(_ context.Context, v models.DealVariant) error {
	n.calls = append(n.calls, v)
	if n.fail {
		return errors.New("cache unavailable")
	}
	return nil
}
