package service

import (
	"bytes"
	"context"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/monitorpelanggan/billing-monitor/internal/core/domain"
	"github.com/monitorpelanggan/billing-monitor/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stub repositories
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	users map[string]*domain.User
	seq   int
}

func newStubUserRepo(users ...domain.User) *stubUserRepo {
	r := &stubUserRepo{users: make(map[string]*domain.User)}
	for _, u := range users {
		clone := u
		r.users[u.ID] = &clone
	}
	return r
}

func (r *stubUserRepo) Create(_ context.Context, u *domain.User) (*domain.User, error) {
	for _, existing := range r.users {
		if existing.Username == u.Username || existing.Email == u.Email {
			return nil, domain.ErrUserExists
		}
	}
	r.seq++
	clone := *u
	clone.ID = "u" + strconv.Itoa(r.seq)
	r.users[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			clone := *u
			return &clone, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) ExistsUsernameOrEmail(_ context.Context, username, email, excludeID string) (bool, error) {
	for _, u := range r.users {
		if u.ID != excludeID && (u.Username == username || u.Email == email) {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubUserRepo) List(_ context.Context) ([]domain.User, error) {
	var out []domain.User
	for _, u := range r.users {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *stubUserRepo) ListActiveAMs(ctx context.Context) ([]domain.User, error) {
	all, _ := r.List(ctx)
	var out []domain.User
	for _, u := range all {
		if u.Role == domain.RoleAM && u.IsActive {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *stubUserRepo) Update(_ context.Context, u *domain.User) error {
	if _, ok := r.users[u.ID]; !ok {
		return domain.ErrUserNotFound
	}
	clone := *u
	r.users[u.ID] = &clone
	return nil
}

func (r *stubUserRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *stubUserRepo) Count(_ context.Context) (int64, error) {
	return int64(len(r.users)), nil
}

type stubSessions struct {
	live map[string]string
}

func newStubSessions() *stubSessions {
	return &stubSessions{live: make(map[string]string)}
}

func (s *stubSessions) Save(_ context.Context, sid, userID string, _ time.Duration) error {
	s.live[sid] = userID
	return nil
}

func (s *stubSessions) Exists(_ context.Context, sid string) (bool, error) {
	_, ok := s.live[sid]
	return ok, nil
}

func (s *stubSessions) Delete(_ context.Context, sid string) error {
	delete(s.live, sid)
	return nil
}

type stubCustomerRepo struct {
	items     []domain.Customer
	seq       int
	insertErr error
}

func (r *stubCustomerRepo) Create(_ context.Context, c *domain.Customer) error {
	for _, it := range r.items {
		if it.AccountNumber == c.AccountNumber {
			return domain.ErrDuplicate
		}
	}
	r.seq++
	c.ID = "c" + strconv.Itoa(r.seq)
	c.Derive()
	r.items = append([]domain.Customer{*c}, r.items...)
	return nil
}

func (r *stubCustomerRepo) InsertMany(ctx context.Context, cs []domain.Customer) error {
	if r.insertErr != nil {
		return r.insertErr
	}
	for i := range cs {
		if err := r.Create(ctx, &cs[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *stubCustomerRepo) FindByID(_ context.Context, id string) (*domain.Customer, error) {
	for _, it := range r.items {
		if it.ID == id {
			clone := it
			return &clone, nil
		}
	}
	return nil, domain.ErrCustomerNotFound
}

func (r *stubCustomerRepo) List(_ context.Context, amID string) ([]domain.Customer, error) {
	var out []domain.Customer
	for _, it := range r.items {
		if amID == "" || it.AMID == amID {
			out = append(out, it)
		}
	}
	return out, nil
}

func (r *stubCustomerRepo) UpdatePayment(_ context.Context, id string, invoice domain.InvoiceStatus, progress float64, at time.Time) (*domain.Customer, error) {
	for i := range r.items {
		if r.items[i].ID == id {
			r.items[i].InvoiceStatus = invoice
			r.items[i].PaymentProgress = progress
			r.items[i].UpdatedAt = at
			r.items[i].Derive()
			clone := r.items[i]
			return &clone, nil
		}
	}
	return nil, domain.ErrCustomerNotFound
}

func (r *stubCustomerRepo) Delete(_ context.Context, id string) error {
	for i := range r.items {
		if r.items[i].ID == id {
			r.items = append(r.items[:i], r.items[i+1:]...)
			return nil
		}
	}
	return domain.ErrCustomerNotFound
}

func (r *stubCustomerRepo) ExistingAccountNumbers(_ context.Context, numbers []string) ([]string, error) {
	var out []string
	for _, n := range numbers {
		for _, it := range r.items {
			if it.AccountNumber == n {
				out = append(out, n)
				break
			}
		}
	}
	return out, nil
}

func (r *stubCustomerRepo) MaxUpdatedAt(ctx context.Context, amID string) (time.Time, error) {
	items, _ := r.List(ctx, amID)
	var max time.Time
	for _, it := range items {
		if it.UpdatedAt.After(max) {
			max = it.UpdatedAt
		}
	}
	return max, nil
}

type stubContractRepo struct {
	items []domain.Contract
	seq   int
}

func (r *stubContractRepo) Create(_ context.Context, k *domain.Contract) error {
	for _, it := range r.items {
		if it.Number == k.Number {
			return domain.ErrDuplicate
		}
	}
	r.seq++
	k.ID = "k" + strconv.Itoa(r.seq)
	k.Derive()
	r.items = append(r.items, *k)
	return nil
}

func (r *stubContractRepo) FindByID(_ context.Context, id string) (*domain.Contract, error) {
	for _, it := range r.items {
		if it.ID == id {
			clone := it
			return &clone, nil
		}
	}
	return nil, domain.ErrContractNotFound
}

func (r *stubContractRepo) ExistsNumber(_ context.Context, number string) (bool, error) {
	for _, it := range r.items {
		if it.Number == number {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubContractRepo) List(_ context.Context) ([]domain.Contract, error) {
	return append([]domain.Contract(nil), r.items...), nil
}

func (r *stubContractRepo) ListWithFiles(_ context.Context) ([]domain.Contract, error) {
	var out []domain.Contract
	for _, it := range r.items {
		if it.FileKey != nil && *it.FileKey != "" {
			out = append(out, it)
		}
	}
	return out, nil
}

func (r *stubContractRepo) Update(_ context.Context, k *domain.Contract) error {
	for i := range r.items {
		if r.items[i].ID == k.ID {
			r.items[i] = *k
			return nil
		}
	}
	return domain.ErrContractNotFound
}

func (r *stubContractRepo) SetFile(_ context.Context, id, key string, at time.Time) error {
	for i := range r.items {
		if r.items[i].ID == id {
			r.items[i].FileKey = &key
			r.items[i].UpdatedAt = at
			return nil
		}
	}
	return domain.ErrContractNotFound
}

func (r *stubContractRepo) Delete(_ context.Context, id string) error {
	for i := range r.items {
		if r.items[i].ID == id {
			r.items = append(r.items[:i], r.items[i+1:]...)
			return nil
		}
	}
	return domain.ErrContractNotFound
}

func (r *stubContractRepo) MaxUpdatedAt(_ context.Context) (time.Time, error) {
	var max time.Time
	for _, it := range r.items {
		if it.UpdatedAt.After(max) {
			max = it.UpdatedAt
		}
	}
	return max, nil
}

type stubFileStore struct {
	objects map[string][]byte
}

func newStubFileStore() *stubFileStore {
	return &stubFileStore{objects: make(map[string][]byte)}
}

func (f *stubFileStore) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	f.objects[key] = b
	return nil
}

func (f *stubFileStore) Get(ctx context.Context, key string) (io.ReadCloser, ports.FileInfo, error) {
	info, err := f.Stat(ctx, key)
	if err != nil {
		return nil, ports.FileInfo{}, err
	}
	return io.NopCloser(bytes.NewReader(f.objects[key])), info, nil
}

func (f *stubFileStore) Stat(_ context.Context, key string) (ports.FileInfo, error) {
	b, ok := f.objects[key]
	if !ok {
		return ports.FileInfo{}, domain.ErrFileNotFound
	}
	return ports.FileInfo{Key: key, Size: int64(len(b)), ContentType: pdfContentType}, nil
}

func (f *stubFileStore) Remove(_ context.Context, key string) error {
	delete(f.objects, key)
	return nil
}

type stubCleanup struct {
	keys []string
}

func (c *stubCleanup) Enqueue(key string) { c.keys = append(c.keys, key) }

type stubTracker struct {
	mu      sync.Mutex
	markers map[string]time.Time
}

func newStubTracker() *stubTracker {
	return &stubTracker{markers: make(map[string]time.Time)}
}

func (t *stubTracker) Touch(_ context.Context, at time.Time, scopes ...string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, s := range scopes {
		if at.After(t.markers[s]) {
			t.markers[s] = at
		}
	}
	return nil
}

func (t *stubTracker) Last(_ context.Context, scope string) (time.Time, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.markers[scope], nil
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func csvReader(lines ...string) io.Reader {
	return strings.NewReader(strings.Join(lines, "\n") + "\n")
}
