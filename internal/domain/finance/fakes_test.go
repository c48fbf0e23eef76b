package finance

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"venueledger/internal/core/apperror"
	"venueledger/internal/core/id"
	"venueledger/internal/domain/calendar"
)

type fakeSettings struct {
	rows map[id.ID]calendar.Settings
	err  error
}

func (f *fakeSettings) GetCalendarSettings(_ context.Context, companyID id.ID) (*calendar.Settings, error) {
	if f.err != nil {
		return nil, f.err
	}
	s, ok := f.rows[companyID]
	if !ok {
		return nil, calendar.ErrConfigurationMissing
	}
	return &s, nil
}

func (f *fakeSettings) ListConfiguredCompanies(context.Context) ([]id.ID, error) {
	ids := make([]id.ID, 0, len(f.rows))
	for k := range f.rows {
		ids = append(ids, k)
	}
	return ids, nil
}

// fakeEvents filters by window like the SQL does.
type fakeEvents struct {
	mu          sync.Mutex
	sales       []SaleEvent
	sessions    []TableSessionEvent
	movements   []StockMovementEvent
	maintenance []MaintenanceEvent
	expenses    []ManualExpenseEvent

	failOn  string
	calls   int
	windows map[string]calendar.Window
}

func (f *fakeEvents) record(name string, w calendar.Window) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.windows == nil {
		f.windows = map[string]calendar.Window{}
	}
	f.windows[name] = w
	if f.failOn == name {
		return errors.New("connection refused")
	}
	return nil
}

func (f *fakeEvents) ListSales(_ context.Context, _ id.ID, w calendar.Window) ([]SaleEvent, error) {
	if err := f.record("sales", w); err != nil {
		return nil, err
	}
	var out []SaleEvent
	for _, e := range f.sales {
		if w.Contains(e.CreatedAt) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeEvents) ListTableSessions(_ context.Context, _ id.ID, w calendar.Window) ([]TableSessionEvent, error) {
	if err := f.record("sessions", w); err != nil {
		return nil, err
	}
	var out []TableSessionEvent
	for _, e := range f.sessions {
		if e.EndedAt != nil && w.Contains(*e.EndedAt) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeEvents) ListStockMovements(_ context.Context, _ id.ID, w calendar.Window) ([]StockMovementEvent, error) {
	if err := f.record("movements", w); err != nil {
		return nil, err
	}
	var out []StockMovementEvent
	for _, e := range f.movements {
		if w.Contains(e.CreatedAt) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeEvents) ListMaintenance(_ context.Context, _ id.ID, w calendar.Window) ([]MaintenanceEvent, error) {
	if err := f.record("maintenance", w); err != nil {
		return nil, err
	}
	var out []MaintenanceEvent
	for _, e := range f.maintenance {
		if w.Contains(e.MaintenanceAt) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeEvents) ListExpenses(_ context.Context, _ id.ID, w calendar.Window) ([]ManualExpenseEvent, error) {
	if err := f.record("expenses", w); err != nil {
		return nil, err
	}
	var out []ManualExpenseEvent
	for _, e := range f.expenses {
		if w.Contains(e.ExpenseDate) {
			out = append(out, e)
		}
	}
	return out, nil
}

type memReports struct {
	mu        sync.Mutex
	rows      map[id.ID]FinancialReport
	createErr error
	filter    ReportFilter
}

func newMemReports() *memReports {
	return &memReports{rows: map[id.ID]FinancialReport{}}
}

func (m *memReports) Create(_ context.Context, r *FinancialReport) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[r.ID] = *r
	return nil
}

func (m *memReports) Update(_ context.Context, r *FinancialReport) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[r.ID]; !ok {
		return apperror.NewNotFound("financial report", r.ID)
	}
	m.rows[r.ID] = *r
	return nil
}

func (m *memReports) GetByID(_ context.Context, reportID id.ID) (*FinancialReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rows[reportID]
	if !ok {
		return nil, apperror.NewNotFound("financial report", reportID)
	}
	return &r, nil
}

func (m *memReports) FindDailyForUpdate(_ context.Context, companyID id.ID, day calendar.Window) (*FinancialReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var found *FinancialReport
	for _, r := range m.rows {
		if r.CompanyID != companyID || r.ReportType != ReportDaily || !day.Contains(r.PeriodStart) {
			continue
		}
		if found == nil || r.GeneratedAt.After(found.GeneratedAt) {
			cp := r
			found = &cp
		}
	}
	if found == nil {
		return nil, apperror.NewNotFound("financial report", companyID)
	}
	return found, nil
}

func (m *memReports) ExistsDaily(_ context.Context, companyID id.ID, day calendar.Window, generatedBy string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.CompanyID == companyID && r.ReportType == ReportDaily && r.GeneratedByID == generatedBy && day.Contains(r.PeriodStart) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memReports) List(_ context.Context, filter ReportFilter) ([]FinancialReport, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.filter = filter
	var out []FinancialReport
	for _, r := range m.rows {
		if r.CompanyID == filter.CompanyID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GeneratedAt.After(out[j].GeneratedAt) })
	return out, len(out), nil
}

func (m *memReports) all() []FinancialReport {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]FinancialReport, 0, len(m.rows))
	for _, r := range m.rows {
		out = append(out, r)
	}
	return out
}

// fakeTx runs fn inline and releases keyed locks when fn returns,
// mirroring pg_advisory_xact_lock.
type fakeTx struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
	keys  []string
}

type fakeTxState struct{ held []*sync.Mutex }

type fakeTxKey struct{}

func newFakeTx() *fakeTx {
	return &fakeTx{locks: map[string]*sync.Mutex{}}
}

func (f *fakeTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	st := &fakeTxState{}
	err := fn(context.WithValue(ctx, fakeTxKey{}, st))
	for _, l := range st.held {
		l.Unlock()
	}
	return err
}

func (f *fakeTx) LockKey(ctx context.Context, key string) error {
	st, ok := ctx.Value(fakeTxKey{}).(*fakeTxState)
	if !ok {
		return errors.New("lock outside transaction")
	}
	f.mu.Lock()
	l, ok := f.locks[key]
	if !ok {
		l = &sync.Mutex{}
		f.locks[key] = l
	}
	f.keys = append(f.keys, key)
	f.mu.Unlock()

	l.Lock()
	st.held = append(st.held, l)
	return nil
}

type fakeAudit struct {
	mu      sync.Mutex
	actions []string
}

func (f *fakeAudit) LogChange(_ context.Context, _ string, _ id.ID, action string, _ map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.actions = append(f.actions, action)
	return nil
}

type fixture struct {
	settings *fakeSettings
	events   *fakeEvents
	reports  *memReports
	tx       *fakeTx
	audit    *fakeAudit
	svc      *Service
}

func newFixture(now time.Time) *fixture {
	f := &fixture{
		settings: &fakeSettings{rows: map[id.ID]calendar.Settings{}},
		events:   &fakeEvents{},
		reports:  newMemReports(),
		tx:       newFakeTx(),
		audit:    &fakeAudit{},
	}
	f.svc = NewService(f.settings, f.events, f.reports, f.tx, f.tx, f.audit)
	f.svc.now = func() time.Time { return now }
	return f
}
