package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/vagago/internmatch/internal/model"
	"github.com/vagago/internmatch/internal/notification"
)

// fakeLedgerStore is an in-memory stand-in for the internship and
// reservation repositories. WithTx takes a single mutex, which gives the
// same serialization the row lock provides in Postgres.
type fakeLedgerStore struct {
	mu sync.Mutex

	nextReservationID int64
	nextInternshipID  int64
	reservations      map[int64]*model.Reservation
	internships       map[int64]*model.Internship
}

func newFakeLedgerStore() *fakeLedgerStore {
	return &fakeLedgerStore{
		reservations: make(map[int64]*model.Reservation),
		internships:  make(map[int64]*model.Internship),
	}
}

type fakeTxKey struct{}

func (f *fakeLedgerStore) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(fakeTxKey{}) != nil {
		return fn(ctx)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return fn(context.WithValue(ctx, fakeTxKey{}, struct{}{}))
}

// lock guards non-transactional calls; inside WithTx the mutex is already
// held.
func (f *fakeLedgerStore) lock(ctx context.Context) func() {
	if ctx.Value(fakeTxKey{}) != nil {
		return func() {}
	}
	f.mu.Lock()
	return f.mu.Unlock
}

func copyReservation(r *model.Reservation) *model.Reservation {
	cp := *r
	return &cp
}

func copyInternship(i *model.Internship) *model.Internship {
	cp := *i
	return &cp
}

// addInternship seeds an internship directly, bypassing the service.
func (f *fakeLedgerStore) addInternship(in *model.Internship) *model.Internship {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextInternshipID++
	in.ID = f.nextInternshipID
	if in.Status == "" {
		in.Status = model.InternshipActive
	}
	f.internships[in.ID] = copyInternship(in)
	return copyInternship(in)
}

func (f *fakeLedgerStore) getReservation(id int64) *model.Reservation {
	f.mu.Lock()
	defer f.mu.Unlock()
	return copyReservation(f.reservations[id])
}

func (f *fakeLedgerStore) getInternship(id int64) *model.Internship {
	f.mu.Lock()
	defer f.mu.Unlock()
	return copyInternship(f.internships[id])
}

// ReservationStore

func (f *fakeLedgerStore) Create(ctx context.Context, res *model.Reservation) error {
	defer f.lock(ctx)()

	// Mirror the partial unique indexes the real schema enforces.
	for _, existing := range f.reservations {
		if !existing.Status.Active() || existing.StudentID != res.StudentID {
			continue
		}
		if existing.InternshipID == res.InternshipID {
			return model.ErrDuplicateReservation
		}
		return model.ErrReservationLimit
	}

	f.nextReservationID++
	res.ID = f.nextReservationID
	if res.CreatedAt.IsZero() {
		res.CreatedAt = time.Now().UTC()
	}
	f.reservations[res.ID] = copyReservation(res)
	return nil
}

func (f *fakeLedgerStore) GetByID(ctx context.Context, id int64) (*model.Reservation, error) {
	defer f.lock(ctx)()
	res, ok := f.reservations[id]
	if !ok {
		return nil, nil
	}
	return copyReservation(res), nil
}

func (f *fakeLedgerStore) FindActive(ctx context.Context, studentID, internshipID int64) (*model.Reservation, error) {
	defer f.lock(ctx)()
	for _, res := range f.reservations {
		if res.StudentID == studentID && res.InternshipID == internshipID && res.Status.Active() {
			return copyReservation(res), nil
		}
	}
	return nil, nil
}

func (f *fakeLedgerStore) CountActiveByStudent(ctx context.Context, studentID int64) (int, error) {
	defer f.lock(ctx)()
	count := 0
	for _, res := range f.reservations {
		if res.StudentID == studentID && res.Status.Active() {
			count++
		}
	}
	return count, nil
}

func (f *fakeLedgerStore) CountActiveByInternship(ctx context.Context, internshipID int64) (int, error) {
	defer f.lock(ctx)()
	count := 0
	for _, res := range f.reservations {
		if res.InternshipID == internshipID && res.Status.Active() {
			count++
		}
	}
	return count, nil
}

func (f *fakeLedgerStore) UpdateStatus(ctx context.Context, id int64, status model.ReservationStatus, resolvedAt *time.Time) error {
	defer f.lock(ctx)()
	res, ok := f.reservations[id]
	if !ok {
		return model.ErrReservationNotFound
	}
	res.Status = status
	res.ResolvedAt = resolvedAt
	return nil
}

func (f *fakeLedgerStore) ListByStudent(ctx context.Context, studentID int64) ([]*model.Reservation, error) {
	defer f.lock(ctx)()
	var out []*model.Reservation
	for _, res := range f.reservations {
		if res.StudentID == studentID {
			out = append(out, copyReservation(res))
		}
	}
	return out, nil
}

func (f *fakeLedgerStore) ListByInternship(ctx context.Context, internshipID int64) ([]*model.Reservation, error) {
	defer f.lock(ctx)()
	var out []*model.Reservation
	for _, res := range f.reservations {
		if res.InternshipID == internshipID {
			out = append(out, copyReservation(res))
		}
	}
	return out, nil
}

func (f *fakeLedgerStore) ListExpiredPending(ctx context.Context, cutoff time.Time) ([]*model.Reservation, error) {
	defer f.lock(ctx)()
	var out []*model.Reservation
	for _, res := range f.reservations {
		if res.Status == model.ReservationPending && res.CreatedAt.Before(cutoff) {
			out = append(out, copyReservation(res))
		}
	}
	return out, nil
}

// InternshipStore and CapacityStore

func (f *fakeLedgerStore) CreateInternship(ctx context.Context, in *model.Internship) error {
	defer f.lock(ctx)()
	f.nextInternshipID++
	in.ID = f.nextInternshipID
	f.internships[in.ID] = copyInternship(in)
	return nil
}

func (f *fakeLedgerStore) GetInternshipByID(ctx context.Context, id int64) (*model.Internship, error) {
	defer f.lock(ctx)()
	in, ok := f.internships[id]
	if !ok {
		return nil, nil
	}
	return copyInternship(in), nil
}

func (f *fakeLedgerStore) GetForUpdate(ctx context.Context, id int64) (*model.Internship, error) {
	defer f.lock(ctx)()
	in, ok := f.internships[id]
	if !ok {
		return nil, nil
	}
	return copyInternship(in), nil
}

func (f *fakeLedgerStore) UpdateSpots(ctx context.Context, id int64, totalSpots, availableSpots int) error {
	defer f.lock(ctx)()
	in, ok := f.internships[id]
	if !ok {
		return model.ErrInternshipNotFound
	}
	in.TotalSpots = totalSpots
	in.AvailableSpots = availableSpots
	return nil
}

func (f *fakeLedgerStore) ListOpen(ctx context.Context, filter model.InternshipFilter) ([]*model.Internship, error) {
	defer f.lock(ctx)()
	var out []*model.Internship
	for _, in := range f.internships {
		if in.Status != model.InternshipActive || in.AvailableSpots < 1 {
			continue
		}
		if filter.City != "" && in.City != filter.City {
			continue
		}
		if filter.Area != "" && in.Area != filter.Area {
			continue
		}
		out = append(out, copyInternship(in))
	}
	return out, nil
}

func (f *fakeLedgerStore) ListByInstitution(ctx context.Context, institutionID int64) ([]*model.Internship, error) {
	defer f.lock(ctx)()
	var out []*model.Internship
	for _, in := range f.internships {
		if in.InstitutionID == institutionID {
			out = append(out, copyInternship(in))
		}
	}
	return out, nil
}

func (f *fakeLedgerStore) UpdateInternship(ctx context.Context, in *model.Internship) error {
	defer f.lock(ctx)()
	if _, ok := f.internships[in.ID]; !ok {
		return model.ErrInternshipNotFound
	}
	f.internships[in.ID] = copyInternship(in)
	return nil
}

func (f *fakeLedgerStore) DeleteInternship(ctx context.Context, id int64) error {
	defer f.lock(ctx)()
	if _, ok := f.internships[id]; !ok {
		return model.ErrInternshipNotFound
	}
	delete(f.internships, id)
	// The schema cascades reservation rows with their internship.
	for resID, res := range f.reservations {
		if res.InternshipID == id {
			delete(f.reservations, resID)
		}
	}
	return nil
}

// internshipStoreAdapter exposes the fake through the InternshipStore
// method names, which collide with the reservation ones on the fake
// itself.
type internshipStoreAdapter struct {
	*fakeLedgerStore
}

func (a internshipStoreAdapter) Create(ctx context.Context, in *model.Internship) error {
	return a.CreateInternship(ctx, in)
}

func (a internshipStoreAdapter) GetByID(ctx context.Context, id int64) (*model.Internship, error) {
	return a.GetInternshipByID(ctx, id)
}

func (a internshipStoreAdapter) Update(ctx context.Context, in *model.Internship) error {
	return a.UpdateInternship(ctx, in)
}

func (a internshipStoreAdapter) Delete(ctx context.Context, id int64) error {
	return a.DeleteInternship(ctx, id)
}

// fakeNotifier records published events.
type fakeNotifier struct {
	mu     sync.Mutex
	events []notification.Event
}

func (n *fakeNotifier) Publish(event notification.Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}

func (n *fakeNotifier) count(eventType string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	count := 0
	for _, e := range n.events {
		if e.Type == eventType {
			count++
		}
	}
	return count
}

// fakeUserStore backs the identity service tests.
type fakeUserStore struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]*model.User

	institutionCounts map[int64]int
	reservationCounts map[int64]int
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{
		users:             make(map[int64]*model.User),
		institutionCounts: make(map[int64]int),
		reservationCounts: make(map[int64]int),
	}
}

func copyUser(u *model.User) *model.User {
	cp := *u
	return &cp
}

func (f *fakeUserStore) Create(ctx context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.users {
		if existing.Email == user.Email {
			return model.ErrEmailTaken
		}
	}
	f.nextID++
	user.ID = f.nextID
	f.users[user.ID] = copyUser(user)
	return nil
}

func (f *fakeUserStore) GetByID(ctx context.Context, id int64) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	return copyUser(user), nil
}

func (f *fakeUserStore) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.Email == email {
			return copyUser(user), nil
		}
	}
	return nil, nil
}

func (f *fakeUserStore) List(ctx context.Context, role model.Role, search string) ([]*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.User
	for _, user := range f.users {
		if role != "" && user.Role != role {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(user.Name), strings.ToLower(search)) {
			continue
		}
		out = append(out, copyUser(user))
	}
	return out, nil
}

func (f *fakeUserStore) Update(ctx context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[user.ID]; !ok {
		return model.ErrUserNotFound
	}
	f.users[user.ID] = copyUser(user)
	return nil
}

func (f *fakeUserStore) UpdateStatus(ctx context.Context, id int64, status model.AccountStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return model.ErrUserNotFound
	}
	user.Status = status
	return nil
}

func (f *fakeUserStore) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return model.ErrUserNotFound
	}
	user.PasswordHash = passwordHash
	return nil
}

func (f *fakeUserStore) Delete(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[id]; !ok {
		return model.ErrUserNotFound
	}
	delete(f.users, id)
	return nil
}

func (f *fakeUserStore) CountByCNPJ(ctx context.Context, cnpj string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, user := range f.users {
		if user.CNPJ != "" && user.CNPJ == cnpj {
			count++
		}
	}
	return count, nil
}

func (f *fakeUserStore) CountByInstitution(ctx context.Context, institutionID int64) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.institutionCounts[institutionID], nil
}

func (f *fakeUserStore) CountActiveByStudent(ctx context.Context, studentID int64) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reservationCounts[studentID], nil
}

func testLogger() *zap.Logger {
	return zap.NewNop()
}
