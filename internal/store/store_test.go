package store

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"pocketbook/internal/core"
)

type fakePersister struct {
	mu      sync.Mutex
	loaded  core.Snapshot
	loadErr error
	saveErr error
	saves   int
	last    core.Snapshot
}

func (f *fakePersister) Load(context.Context) (core.Snapshot, error) {
	if f.loadErr != nil {
		return core.Snapshot{}, f.loadErr
	}
	return f.loaded, nil
}

func (f *fakePersister) Save(_ context.Context, snap core.Snapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saves++
	f.last = snap
	return f.saveErr
}

func (f *fakePersister) saveCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.saves
}

func newLoaded(t *testing.T, p *fakePersister) *Store {
	t.Helper()
	if p.loaded.Settings.ResetType == "" {
		p.loaded = core.EmptySnapshot()
	}
	s := New(p, nil)
	s.Load(context.Background())
	return s
}

var march10 = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

func TestLoadSeedsDefaultCategoriesOnce(t *testing.T) {
	p := &fakePersister{}
	s := New(p, nil)
	if seeded := s.Load(context.Background()); !seeded {
		t.Fatal("expected first load to seed categories")
	}
	if got := len(s.Categories()); got != 6 {
		t.Fatalf("expected 6 categories, got %d", got)
	}
	if p.saveCount() != 1 {
		t.Fatalf("expected seeding to persist once, got %d saves", p.saveCount())
	}

	p.loaded = p.last
	again := New(p, nil)
	if seeded := again.Load(context.Background()); seeded {
		t.Fatal("second load should not reseed")
	}
}

func TestLoadFailureStartsEmpty(t *testing.T) {
	p := &fakePersister{loadErr: errors.New("disk gone")}
	s := New(p, nil)
	s.Load(context.Background())
	if len(s.Expenses()) != 0 {
		t.Fatal("expected empty expenses")
	}
	if got := s.Settings(); got.ResetType != core.PayDay || got.PayDay != 1 || got.Currency != core.DefaultCurrency {
		t.Fatalf("expected default settings, got %+v", got)
	}
}

func TestAddAssignsIDAndPersists(t *testing.T) {
	p := &fakePersister{}
	s := newLoaded(t, p)
	before := p.saveCount()

	e, err := s.AddExpense(context.Background(), core.Expense{Amount: 12.5, Comment: "Lunch", Date: march10})
	if err != nil {
		t.Fatalf("AddExpense() error = %v", err)
	}
	if e.ID == uuid.Nil {
		t.Fatal("expected id to be assigned")
	}
	if p.saveCount() != before+1 {
		t.Fatalf("expected one save, got %d", p.saveCount()-before)
	}
	got, ok := s.Expense(e.ID)
	if !ok || got.Amount != 12.5 {
		t.Fatalf("Expense() = %+v, %v", got, ok)
	}
}

func TestAddRejectsInvalidRecords(t *testing.T) {
	s := newLoaded(t, &fakePersister{})
	ctx := context.Background()

	if _, err := s.AddExpense(ctx, core.Expense{Amount: 1}); !errors.Is(err, core.ErrZeroDate) {
		t.Fatalf("expected ErrZeroDate, got %v", err)
	}
	if _, err := s.AddCategory(ctx, core.Category{Name: "  "}); !errors.Is(err, core.ErrEmptyName) {
		t.Fatalf("expected ErrEmptyName, got %v", err)
	}
}

func TestUpdateAndDeleteMissingAreNoOps(t *testing.T) {
	p := &fakePersister{}
	s := newLoaded(t, p)
	ctx := context.Background()
	before := p.saveCount()

	if err := s.UpdateIncome(ctx, core.Income{ID: uuid.New(), Amount: 1, Date: march10}); err != nil {
		t.Fatalf("UpdateIncome() error = %v", err)
	}
	if s.DeleteIncome(ctx, uuid.New()) {
		t.Fatal("DeleteIncome() reported a deletion for an unknown id")
	}
	if p.saveCount() != before+1 {
		t.Fatalf("expected only the delete to persist, got %d saves", p.saveCount()-before)
	}
	if len(s.Incomes()) != 0 {
		t.Fatal("no income should have been created")
	}
}

func TestUpdateReplacesRecord(t *testing.T) {
	s := newLoaded(t, &fakePersister{})
	ctx := context.Background()

	in, _ := s.AddIncome(ctx, core.Income{Amount: 100, Date: march10})
	in.Amount = 250
	if err := s.UpdateIncome(ctx, in); err != nil {
		t.Fatal(err)
	}
	got, _ := s.Income(in.ID)
	if got.Amount != 250 {
		t.Fatalf("Amount = %v, want 250", got.Amount)
	}
	if !s.DeleteIncome(ctx, in.ID) {
		t.Fatal("expected deletion")
	}
	if _, ok := s.Income(in.ID); ok {
		t.Fatal("income still present after delete")
	}
}

func TestPersistFailureIsSwallowed(t *testing.T) {
	p := &fakePersister{}
	s := newLoaded(t, p)
	p.saveErr = errors.New("read-only")

	e, err := s.AddExpense(context.Background(), core.Expense{Amount: 3, Date: march10})
	if err != nil {
		t.Fatalf("persist failures must not surface, got %v", err)
	}
	if _, ok := s.Expense(e.ID); !ok {
		t.Fatal("memory should stay authoritative after a failed save")
	}
}

func TestManualPLUpsertByMonth(t *testing.T) {
	s := newLoaded(t, &fakePersister{})
	ctx := context.Background()

	first, err := s.AddManualPL(ctx, core.NewDirectPL(3, 2024, 100, 0, "first"))
	if err != nil {
		t.Fatal(err)
	}
	second, err := s.AddManualPL(ctx, core.NewDerivedPL(3, 2024, 2000, 1500, 0, "second"))
	if err != nil {
		t.Fatal(err)
	}
	all := s.ManualPLs()
	if len(all) != 1 {
		t.Fatalf("expected one override, got %d", len(all))
	}
	if all[0].ID != second.ID || second.ID == first.ID {
		t.Fatalf("upsert should store the new entry under its own id, got %v", all[0].ID)
	}
	if all[0].Mode() != core.DerivedOverride || all[0].EffectiveProfitLoss() != 500 {
		t.Fatalf("override not replaced: %+v", all[0])
	}
	if _, ok := s.ManualPLFor(4, 2024); ok {
		t.Fatal("unexpected override for april")
	}
}

func TestUpdateManualPL_KeepsOnePerMonth(t *testing.T) {
	s := newLoaded(t, &fakePersister{})
	ctx := context.Background()

	march, err := s.AddManualPL(ctx, core.NewDirectPL(3, 2024, 100, 0, "march"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.AddManualPL(ctx, core.NewDirectPL(4, 2024, 200, 0, "april")); err != nil {
		t.Fatal(err)
	}

	march.Month = 4
	if err := s.UpdateManualPL(ctx, march); err != nil {
		t.Fatalf("UpdateManualPL() error = %v", err)
	}

	all := s.ManualPLs()
	if len(all) != 1 {
		t.Fatalf("entries after update = %d, want 1", len(all))
	}
	got, ok := s.ManualPLFor(4, 2024)
	if !ok || got.ID != march.ID || got.EffectiveProfitLoss() != 100 {
		t.Fatalf("ManualPLFor(4, 2024) = %+v, want the updated entry", got)
	}
	if _, ok := s.ManualPLFor(3, 2024); ok {
		t.Fatal("march override should have moved to april")
	}
}

func TestUpdateManualPL_MissingIDIsNoOp(t *testing.T) {
	s := newLoaded(t, &fakePersister{})
	ctx := context.Background()

	if _, err := s.AddManualPL(ctx, core.NewDirectPL(4, 2024, 200, 0, "april")); err != nil {
		t.Fatal(err)
	}
	ghost := core.NewDirectPL(4, 2024, 999, 0, "ghost")
	ghost.ID = uuid.New()
	if err := s.UpdateManualPL(ctx, ghost); err != nil {
		t.Fatalf("UpdateManualPL() error = %v", err)
	}
	got, _ := s.ManualPLFor(4, 2024)
	if got.EffectiveProfitLoss() != 200 {
		t.Fatalf("unknown id must not replace the april override, got %+v", got)
	}
}

func TestDeletedCategoryResolvesToUncategorized(t *testing.T) {
	s := newLoaded(t, &fakePersister{})
	ctx := context.Background()

	cat, _ := s.AddCategory(ctx, core.Category{Name: "Travel"})
	e, _ := s.AddExpense(ctx, core.Expense{Amount: 40, Date: march10, CategoryID: &cat.ID})

	if got := s.CategoryName(e.CategoryID); got != "Travel" {
		t.Fatalf("CategoryName() = %q", got)
	}
	s.DeleteCategory(ctx, cat.ID)

	stored, _ := s.Expense(e.ID)
	if stored.CategoryID == nil || *stored.CategoryID != cat.ID {
		t.Fatal("deleting a category must not rewrite records")
	}
	if got := s.CategoryName(stored.CategoryID); got != UncategorizedName {
		t.Fatalf("CategoryName() = %q, want %q", got, UncategorizedName)
	}
	if got := s.CategoryName(nil); got != UncategorizedName {
		t.Fatalf("CategoryName(nil) = %q", got)
	}
}

func TestConvertExpenseToInvestment(t *testing.T) {
	s := newLoaded(t, &fakePersister{})
	ctx := context.Background()
	cat := s.Categories()[0]

	e, _ := s.AddExpense(ctx, core.Expense{Amount: 500, Comment: "ETF", Date: march10, CategoryID: &cat.ID})
	inv, ok := s.ConvertExpenseToInvestment(ctx, e.ID)
	if !ok {
		t.Fatal("expected conversion")
	}
	if inv.Amount != 500 || inv.Comment != "ETF" || !inv.Date.Equal(march10) || *inv.CategoryID != cat.ID {
		t.Fatalf("investment = %+v", inv)
	}
	if _, ok := s.Expense(e.ID); ok {
		t.Fatal("expense should be removed")
	}
	if _, ok := s.ConvertExpenseToInvestment(ctx, e.ID); ok {
		t.Fatal("converting a missing expense should report false")
	}
}

func TestBatchOperationsPersistOnce(t *testing.T) {
	p := &fakePersister{}
	s := newLoaded(t, p)
	ctx := context.Background()
	before := p.saveCount()

	added, err := s.AddExpenses(ctx, []core.Expense{
		{Amount: 1, Date: march10},
		{Amount: 2, Date: march10},
		{Amount: 3, Date: march10},
	})
	if err != nil {
		t.Fatal(err)
	}
	if p.saveCount() != before+1 {
		t.Fatalf("AddExpenses saved %d times", p.saveCount()-before)
	}

	for i := range added {
		added[i].Amount *= 10
	}
	if err := s.UpdateExpenses(ctx, added); err != nil {
		t.Fatal(err)
	}
	if p.saveCount() != before+2 {
		t.Fatalf("UpdateExpenses saved %d times", p.saveCount()-before-1)
	}
	var total float64
	for _, e := range s.Expenses() {
		total += e.Amount
	}
	if total != 60 {
		t.Fatalf("total = %v, want 60", total)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	s := newLoaded(t, &fakePersister{})
	ctx := context.Background()
	g, _ := s.AddSavingGoal(ctx, core.SavingGoal{Name: "Trip", TargetAmount: 1000, TargetDate: march10})

	snap := s.Snapshot()
	snap.SavingGoals[0].SetProvisional("2024-03", 99)

	stored, _ := s.SavingGoal(g.ID)
	if stored.MonthlyContributions.Provisional("2024-03") != 0 {
		t.Fatal("snapshot mutation leaked into the store")
	}
}

func TestVersionIncreasesOnMutation(t *testing.T) {
	s := newLoaded(t, &fakePersister{})
	v := s.Version()
	s.SetLastPeriodKey(context.Background(), "2024-03")
	if s.Version() <= v {
		t.Fatal("version should increase after a mutation")
	}
	if s.LastPeriodKey() != "2024-03" {
		t.Fatalf("LastPeriodKey() = %q", s.LastPeriodKey())
	}
}

func TestUpdateSettingsValidates(t *testing.T) {
	s := newLoaded(t, &fakePersister{})
	bad := core.DefaultSettings()
	bad.PayDay = 0
	if err := s.UpdateSettings(context.Background(), bad); !errors.Is(err, core.ErrInvalidResetDay) {
		t.Fatalf("expected ErrInvalidResetDay, got %v", err)
	}
	good := core.DefaultSettings()
	good.PayDay = 25
	if err := s.UpdateSettings(context.Background(), good); err != nil {
		t.Fatal(err)
	}
	if s.Settings().PayDay != 25 {
		t.Fatal("settings not applied")
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	src := newLoaded(t, &fakePersister{})
	src.AddExpense(ctx, core.Expense{Amount: 10, Comment: "Coffee", Date: march10})
	src.AddIncome(ctx, core.Income{Amount: 2000, Date: march10, IsMonthly: true})
	g, _ := src.AddSavingGoal(ctx, core.SavingGoal{Name: "Car", TargetAmount: 5000, TargetDate: march10.AddDate(1, 0, 0)})
	g.SetProvisional("2024-03", 120)
	src.UpdateSavingGoal(ctx, g)

	blob, err := src.Export(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(blob), `"version": 1`) {
		t.Fatalf("export missing version: %s", blob)
	}

	dst := newLoaded(t, &fakePersister{})
	if err := dst.Import(ctx, blob); err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if len(dst.Expenses()) != 1 || len(dst.Incomes()) != 1 {
		t.Fatal("collections not imported")
	}
	imported, ok := dst.SavingGoal(g.ID)
	if !ok || imported.MonthlyContributions.Provisional("2024-03") != 120 {
		t.Fatalf("goal contributions not imported: %+v", imported)
	}
}

func TestImportIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	s := newLoaded(t, &fakePersister{})
	existing, _ := s.AddExpense(ctx, core.Expense{Amount: 1, Date: march10})

	bad := []string{
		`not json`,
		`{"version": 99, "data": {}}`,
		`{"version": 1, "data": {"settings": {"resetType": "payDay", "payDay": 0, "monthlyResetDate": 1, "currency": "USD"}}}`,
		`{"version": 1, "data": {"settings": {"resetType": "payDay", "payDay": 1, "monthlyResetDate": 1, "currency": "USD"},
			"expenses": [{"amount": 5, "date": "2024-03-01T00:00:00Z"}, {"amount": 5}]}}`,
	}
	for i, blob := range bad {
		if err := s.Import(ctx, []byte(blob)); !errors.Is(err, ErrImportFailed) {
			t.Fatalf("case %d: expected ErrImportFailed, got %v", i, err)
		}
	}
	all := s.Expenses()
	if len(all) != 1 || all[0].ID != existing.ID {
		t.Fatal("failed imports must leave the store untouched")
	}
}

func TestApplyPersistsOnlyOnChange(t *testing.T) {
	p := &fakePersister{}
	s := newLoaded(t, p)
	before := p.saveCount()

	s.Apply(context.Background(), func(*core.Snapshot) bool { return false })
	if p.saveCount() != before {
		t.Fatal("unchanged Apply must not persist")
	}
	s.Apply(context.Background(), func(snap *core.Snapshot) bool {
		snap.LastPeriodKey = "2024-01"
		return true
	})
	if p.saveCount() != before+1 || s.LastPeriodKey() != "2024-01" {
		t.Fatal("Apply change not persisted")
	}
}

func TestConcurrentMutations(t *testing.T) {
	s := newLoaded(t, &fakePersister{})
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.AddExpense(ctx, core.Expense{Amount: 1, Date: march10})
		}()
	}
	wg.Wait()
	if got := len(s.Expenses()); got != 50 {
		t.Fatalf("expected 50 expenses, got %d", got)
	}
}
