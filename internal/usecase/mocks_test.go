package usecase

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/hpol369/gold-ira-platform-sub026/internal/entity"
)

// memLeadRepo is an in-memory repository with the same conditional-write
// semantics as the real stores.
type memLeadRepo struct {
	mu    sync.Mutex
	leads map[string]*entity.Lead

	// beforeSwap runs inside SwapMessageID before the compare, to simulate
	// a concurrent writer.
	beforeSwap func(l *entity.Lead)
	failWrites error
}

func newMemLeadRepo() *memLeadRepo {
	return &memLeadRepo{leads: map[string]*entity.Lead{}}
}

func (r *memLeadRepo) Create(ctx context.Context, lead *entity.Lead) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWrites != nil {
		return r.failWrites
	}
	r.leads[lead.ID] = lead.Clone()
	return nil
}

func (r *memLeadRepo) FindByID(ctx context.Context, id string) (*entity.Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.leads[id]
	if !ok {
		return nil, entity.ErrLeadNotFound
	}
	return l.Clone(), nil
}

func (r *memLeadRepo) UpdateStatus(ctx context.Context, id string, status entity.LeadStatus, extras entity.StatusExtras) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.leads[id]
	if !ok {
		return entity.ErrLeadNotFound
	}
	l.Status = status
	if extras.AugustaSubmittedAt != nil {
		at := *extras.AugustaSubmittedAt
		l.AugustaSubmittedAt = &at
	}
	return nil
}

func (r *memLeadRepo) Enrich(ctx context.Context, id string, e entity.Enrichment) (*entity.Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.leads[id]
	if !ok {
		return nil, entity.ErrLeadNotFound
	}
	l.Enrichment = &e
	return l.Clone(), nil
}

func (r *memLeadRepo) MarkSubmitted(ctx context.Context, id string, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWrites != nil {
		return false, r.failWrites
	}
	l, ok := r.leads[id]
	if !ok {
		return false, entity.ErrLeadNotFound
	}
	if l.Status != entity.StatusNew {
		return false, nil
	}
	l.Status = entity.StatusSentToAugusta
	l.AugustaSubmittedAt = &at
	return true, nil
}

func (r *memLeadRepo) SwapMessageID(ctx context.Context, id string, old, next int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.leads[id]
	if !ok {
		return 0, entity.ErrLeadNotFound
	}
	if r.beforeSwap != nil {
		r.beforeSwap(l)
	}
	if l.TelegramMessageID != old {
		return l.TelegramMessageID, nil
	}
	l.TelegramMessageID = next
	return next, nil
}

func (r *memLeadRepo) ListHighValue(ctx context.Context, min int64) ([]*entity.Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Lead
	for _, l := range r.leads {
		if l.PotentialDealMax() >= min {
			out = append(out, l.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PotentialDealMax() > out[j].PotentialDealMax() })
	return out, nil
}

func (r *memLeadRepo) ListUnnotified(ctx context.Context, since time.Time) ([]*entity.Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Lead
	for _, l := range r.leads {
		if l.TelegramMessageID == 0 && !l.CreatedAt.Before(since) {
			out = append(out, l.Clone())
		}
	}
	return out, nil
}

func (r *memLeadRepo) get(id string) *entity.Lead {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.leads[id].Clone()
}

// fakeChannel records sends and edits and hands out increasing handles.
type fakeChannel struct {
	mu      sync.Mutex
	nextID  int64
	sends   []string
	urgent  []bool
	edits   map[int64][]string
	editErr map[int64]error
	sendErr error
}

func newFakeChannel() *fakeChannel {
	return &fakeChannel{nextID: 100, edits: map[int64][]string{}, editErr: map[int64]error{}}
}

func (c *fakeChannel) Send(ctx context.Context, text string, urgent bool) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sendErr != nil {
		return 0, c.sendErr
	}
	c.nextID++
	c.sends = append(c.sends, text)
	c.urgent = append(c.urgent, urgent)
	return c.nextID, nil
}

func (c *fakeChannel) Edit(ctx context.Context, id int64, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.editErr[id]; err != nil {
		return err
	}
	c.edits[id] = append(c.edits[id], text)
	return nil
}

func (c *fakeChannel) sendCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sends)
}

func (c *fakeChannel) editCount(id int64) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.edits[id])
}

type MockPartner struct {
	mock.Mock
}

func (m *MockPartner) Submit(ctx context.Context, lead *entity.Lead) bool {
	args := m.Called(ctx, lead)
	return args.Bool(0)
}

type MockAlerter struct {
	mock.Mock
	done chan struct{}
}

func (m *MockAlerter) SendPartnerFailureAlert(lead *entity.Lead) error {
	args := m.Called(lead)
	if m.done != nil {
		close(m.done)
	}
	return args.Error(0)
}

type MockDispatcher struct {
	mock.Mock
}

func (m *MockDispatcher) Dispatch(ctx context.Context, event entity.ConversionEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

type MockQuizRepo struct {
	mock.Mock
}

func (m *MockQuizRepo) Create(ctx context.Context, q *entity.QuizLead) error {
	return m.Called(ctx, q).Error(0)
}

func (m *MockQuizRepo) FindByID(ctx context.Context, id string) (*entity.QuizLead, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.QuizLead), args.Error(1)
}

func (m *MockQuizRepo) List(ctx context.Context) ([]*entity.QuizLead, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.QuizLead), args.Error(1)
}

type MockPostbackRepo struct {
	mock.Mock
}

func (m *MockPostbackRepo) Append(ctx context.Context, e *entity.PostbackEvent) error {
	return m.Called(ctx, e).Error(0)
}

func (m *MockPostbackRepo) List(ctx context.Context) ([]*entity.PostbackEvent, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.PostbackEvent), args.Error(1)
}

var errStorageDown = errors.New("storage unavailable")

type countingLocker struct {
	Locker
	mu    sync.Mutex
	calls int
}

func (l *countingLocker) Lock(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	l.calls++
	l.mu.Unlock()
	return l.Locker.Lock(ctx, key)
}
