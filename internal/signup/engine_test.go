package signup

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gdg-garage/potluck-signup/internal/database"
	"github.com/gdg-garage/potluck-signup/internal/models"
	"github.com/gdg-garage/potluck-signup/internal/realtime"
	"github.com/gdg-garage/potluck-signup/internal/slots"
	"github.com/gdg-garage/potluck-signup/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeEnricher struct {
	url   string
	calls []string
}

func (f *fakeEnricher) ImageFor(_ context.Context, description string) *string {
	f.calls = append(f.calls, description)
	if f.url == "" {
		return nil
	}
	u := f.url
	return &u
}

type fakeNotifier struct {
	notified []models.Registration
	err      error
}

func (f *fakeNotifier) NotifyRegistration(_ models.Potluck, _ models.Category, r models.Registration) error {
	f.notified = append(f.notified, r)
	return f.err
}

type countingPublisher struct {
	mu    sync.Mutex
	count int
}

func (p *countingPublisher) Publish(context.Context, string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.count++
	return nil
}

func (p *countingPublisher) published() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.count
}

type failingStore struct {
	*store.Store
	err error
}

func (f failingStore) UpsertRegistration(context.Context, *models.Registration) error {
	return f.err
}

func (f failingStore) DeleteRegistration(context.Context, string, string) (*models.Registration, error) {
	return nil, f.err
}

type fixture struct {
	db       *gorm.DB
	store    *store.Store
	engine   *Engine
	enricher *fakeEnricher
	notes    *fakeNotifier
	pub      *countingPublisher
	potluck  models.Potluck
	side     models.Category
	mains    models.Category
	extra    models.Category
}

func setup(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	db, err := database.Open("sqlite", ":memory:")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	f := &fixture{
		db:       db,
		store:    store.New(db, store.WithRetry(store.NewRetryPolicy(1, 0))),
		enricher: &fakeEnricher{url: "https://media.example/food.gif"},
		notes:    &fakeNotifier{},
		pub:      &countingPublisher{},
	}
	f.engine = NewEngine(f.store, WithEnricher(f.enricher), WithNotifier(f.notes), WithPublisher(f.pub))

	f.potluck = models.Potluck{Slug: "summer", TitleEN: "Summer", IsActive: true}
	require.NoError(t, f.store.CreatePotluck(ctx, &f.potluck))

	f.mains = models.Category{Key: "mains", Slots: 2}
	f.side = models.Category{Key: "side", Slots: 3}
	f.extra = models.Category{Key: "extra", Unbounded: true}
	for _, c := range []*models.Category{&f.mains, &f.side, &f.extra} {
		require.NoError(t, f.store.CreateCategory(ctx, c))
		require.NoError(t, f.engine.SetCategoryEnabled(ctx, f.potluck.ID, c.ID, true))
	}
	f.pub.count = 0
	return f
}

func (f *fixture) load(t *testing.T) *Board {
	t.Helper()
	board, err := f.engine.Load(context.Background(), f.potluck)
	require.NoError(t, err)
	return board
}

func (f *fixture) countRegistrations(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&models.Registration{}).Count(&n).Error)
	return n
}

func sectionNames(t *testing.T, b *Board, categoryID string) []string {
	t.Helper()
	sec, err := b.Section(categoryID)
	require.NoError(t, err)
	out := make([]string, len(sec.Slots))
	for i, r := range sec.Slots {
		if r != nil {
			out[i] = r.Name
		}
	}
	return out
}

func fill(t *testing.T, b *Board, categoryID string, index int, name string) *models.Registration {
	t.Helper()
	reg, err := b.FillSlot(context.Background(), categoryID, index, Entry{Name: name, Description: name + "'s dish"})
	require.NoError(t, err)
	return reg
}

func TestLoad_SectionsFollowBindingOrder(t *testing.T) {
	f := setup(t)
	board := f.load(t)

	require.Len(t, board.Sections, 3)
	assert.Equal(t, "mains", board.Sections[0].Category.Key)
	assert.Equal(t, "side", board.Sections[1].Category.Key)
	assert.Equal(t, "extra", board.Sections[2].Category.Key)

	assert.Equal(t, []string{"", "", ""}, sectionNames(t, board, f.side.ID))
	assert.Empty(t, board.Sections[2].Items)
}

func TestFillSlot_GrowsWhenFull(t *testing.T) {
	f := setup(t)
	board := f.load(t)

	fill(t, board, f.side.ID, 0, "A")
	fill(t, board, f.side.ID, 1, "B")
	fill(t, board, f.side.ID, 2, "C")
	assert.Equal(t, []string{"A", "B", "C", ""}, sectionNames(t, board, f.side.ID))
	assert.Equal(t, []string{"A", "B", "C", ""}, sectionNames(t, f.load(t), f.side.ID))

	dana := fill(t, board, f.side.ID, 3, "Dana")
	assert.Equal(t, 4, *dana.SlotNumber)
	assert.Equal(t, []string{"A", "B", "C", "Dana", ""}, sectionNames(t, board, f.side.ID))
	assert.Equal(t, []string{"A", "B", "C", "Dana", ""}, sectionNames(t, f.load(t), f.side.ID))
}

func TestFillSlot_IndexRoundTrip(t *testing.T) {
	f := setup(t)
	board := f.load(t)
	ids := make([]string, 6)
	for index := range ids {
		ids[index] = fill(t, board, f.side.ID, index, "Guest").ID
	}

	sec, err := f.load(t).Section(f.side.ID)
	require.NoError(t, err)
	for index, id := range ids {
		got := sec.Slots.At(index)
		require.NotNil(t, got, "index %d", index)
		assert.Equal(t, id, got.ID)
		assert.Equal(t, index+1, *got.SlotNumber)
	}
	assert.Nil(t, sec.Slots[len(sec.Slots)-1])
}

func TestFillSlot_IndexPastTrailingSlot(t *testing.T) {
	f := setup(t)
	board := f.load(t)
	ctx := context.Background()

	for _, index := range []int{3, 4, 50_000_000} {
		_, err := board.FillSlot(ctx, f.side.ID, index, Entry{Name: "Bob", Description: "Beans"})
		assert.ErrorIs(t, err, slots.ErrIndexOutOfRange, "index %d", index)
		_, err = board.SaveSlot(ctx, f.side.ID, index, Entry{Name: "Bob", Description: "Beans"})
		assert.ErrorIs(t, err, slots.ErrIndexOutOfRange, "index %d", index)
	}
	assert.Zero(t, f.countRegistrations(t))
	assert.Len(t, f.load(t).Sections[1].Slots, 3)

	fill(t, board, f.side.ID, 0, "A")
	fill(t, board, f.side.ID, 1, "B")
	fill(t, board, f.side.ID, 2, "C")
	fill(t, board, f.side.ID, 3, "D")
	_, err := board.FillSlot(ctx, f.side.ID, 5, Entry{Name: "E", Description: "Eggs"})
	assert.ErrorIs(t, err, slots.ErrIndexOutOfRange)
}

func TestFillSlot_ClientIDOnEmptySlot(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	summer := f.load(t)
	alice := fill(t, summer, f.side.ID, 0, "Alice")
	f.notes.notified = nil

	winter := models.Potluck{Slug: "winter", TitleEN: "Winter", IsActive: true}
	require.NoError(t, f.store.CreatePotluck(ctx, &winter))
	require.NoError(t, f.engine.SetCategoryEnabled(ctx, winter.ID, f.mains.ID, true))
	require.NoError(t, f.engine.SetCategoryEnabled(ctx, winter.ID, f.side.ID, true))
	winterBoard, err := f.engine.Load(ctx, winter)
	require.NoError(t, err)

	t.Run("another potluck", func(t *testing.T) {
		_, err := winterBoard.FillSlot(ctx, f.mains.ID, 1, Entry{ID: alice.ID, Name: "Mallory", Description: "Mud"})
		assert.ErrorIs(t, err, ErrSlotTaken)
		_, err = winterBoard.FillSlot(ctx, f.side.ID, 0, Entry{ID: alice.ID, Name: "Mallory", Description: "Mud"})
		assert.ErrorIs(t, err, ErrSlotTaken)
	})

	t.Run("another category", func(t *testing.T) {
		_, err := summer.FillSlot(ctx, f.mains.ID, 0, Entry{ID: alice.ID, Name: "Mallory", Description: "Mud"})
		assert.ErrorIs(t, err, ErrSlotTaken)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := summer.FillSlot(ctx, f.side.ID, 1, Entry{ID: "made-up", Name: "Mallory", Description: "Mud"})
		assert.ErrorIs(t, err, ErrSlotTaken)
	})

	stored, err := f.store.GetRegistration(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, f.potluck.ID, stored.PotluckID)
	assert.Equal(t, f.side.ID, stored.CategoryID)
	assert.Equal(t, "Alice", stored.Name)
	assert.Equal(t, []string{"Alice", "", ""}, sectionNames(t, f.load(t), f.side.ID))
	assert.Equal(t, int64(1), f.countRegistrations(t))

	t.Run("move within the category", func(t *testing.T) {
		moved, err := summer.FillSlot(ctx, f.side.ID, 1, Entry{ID: alice.ID, Name: "Alice", Description: "Salad"})
		require.NoError(t, err)
		assert.Equal(t, 2, *moved.SlotNumber)
		assert.Equal(t, []string{"", "Alice", ""}, sectionNames(t, summer, f.side.ID))
		assert.Equal(t, []string{"", "Alice", ""}, sectionNames(t, f.load(t), f.side.ID))
		assert.Empty(t, f.notes.notified)
	})
}

func TestAppend_ClientID(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	board := f.load(t)
	alice := fill(t, board, f.side.ID, 0, "Alice")
	napkins, err := board.Append(ctx, f.extra.ID, Entry{Name: "Napkins", Description: "Napkins"})
	require.NoError(t, err)

	_, err = board.Append(ctx, f.extra.ID, Entry{ID: alice.ID, Name: "Mallory", Description: "Mud"})
	assert.ErrorIs(t, err, ErrSlotTaken)
	_, err = board.Append(ctx, f.extra.ID, Entry{ID: napkins.ID, Name: "Napkins", Description: "Again"})
	assert.ErrorIs(t, err, ErrSlotTaken)

	winter := models.Potluck{Slug: "winter", TitleEN: "Winter", IsActive: true}
	require.NoError(t, f.store.CreatePotluck(ctx, &winter))
	require.NoError(t, f.engine.SetCategoryEnabled(ctx, winter.ID, f.extra.ID, true))
	winterBoard, err := f.engine.Load(ctx, winter)
	require.NoError(t, err)
	_, err = winterBoard.Append(ctx, f.extra.ID, Entry{ID: napkins.ID, Name: "Mallory", Description: "Mud"})
	assert.ErrorIs(t, err, store.ErrConflict)

	stored, err := f.store.GetRegistration(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, *stored.SlotNumber)
	assert.Equal(t, f.side.ID, stored.CategoryID)
	stored, err = f.store.GetRegistration(ctx, napkins.ID)
	require.NoError(t, err)
	assert.Equal(t, f.potluck.ID, stored.PotluckID)
	assert.Equal(t, "Napkins", stored.Description)
}

func TestClearSlot_ServerClosesInteriorGap(t *testing.T) {
	f := setup(t)
	board := f.load(t)
	fill(t, board, f.side.ID, 0, "A")
	fill(t, board, f.side.ID, 1, "B")
	fill(t, board, f.side.ID, 2, "C")

	require.NoError(t, board.ClearSlot(context.Background(), f.side.ID, 1))
	assert.Equal(t, []string{"A", "", "C", ""}, sectionNames(t, board, f.side.ID))
	assert.Equal(t, []string{"A", "C", ""}, sectionNames(t, f.load(t), f.side.ID))
}

func TestClearSlot_LastOccupiedLeavesOthers(t *testing.T) {
	f := setup(t)
	board := f.load(t)
	a := fill(t, board, f.side.ID, 0, "A")
	b := fill(t, board, f.side.ID, 1, "B")
	fill(t, board, f.side.ID, 2, "C")

	require.NoError(t, board.ClearSlot(context.Background(), f.side.ID, 2))

	sec, err := f.load(t).Section(f.side.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", ""}, sectionNames(t, f.load(t), f.side.ID))
	assert.Equal(t, a.ID, sec.Slots[0].ID)
	assert.Equal(t, b.ID, sec.Slots[1].ID)
}

func TestClearSlot_EmptySlotIsNoop(t *testing.T) {
	f := setup(t)
	board := f.load(t)

	require.NoError(t, board.ClearSlot(context.Background(), f.side.ID, 1))
	require.NoError(t, board.ClearSlot(context.Background(), f.side.ID, 42))
	assert.Zero(t, f.pub.published())
}

func TestFillSlot_RejectsBlankWithoutWriting(t *testing.T) {
	f := setup(t)
	board := f.load(t)

	for _, in := range []Entry{
		{Name: "  ", Description: "Pie"},
		{Name: "Ann", Description: ""},
		{},
	} {
		_, err := board.FillSlot(context.Background(), f.side.ID, 0, in)
		assert.ErrorIs(t, err, ErrEmptyEntry)
	}

	assert.Zero(t, f.countRegistrations(t))
	assert.Empty(t, f.enricher.calls)
	assert.Zero(t, f.pub.published())
}

func TestFillSlot_StoreFailureLeavesBoardUnchanged(t *testing.T) {
	f := setup(t)
	fill(t, f.load(t), f.side.ID, 0, "A")

	broken := NewEngine(failingStore{Store: f.store, err: errors.New("connection refused")})
	board, err := broken.Load(context.Background(), f.potluck)
	require.NoError(t, err)

	_, err = board.FillSlot(context.Background(), f.side.ID, 1, Entry{Name: "B", Description: "Bread"})
	assert.ErrorContains(t, err, "connection refused")
	assert.Equal(t, []string{"A", "", ""}, sectionNames(t, board, f.side.ID))

	err = board.ClearSlot(context.Background(), f.side.ID, 0)
	assert.Error(t, err)
	assert.Equal(t, []string{"A", "", ""}, sectionNames(t, board, f.side.ID))
}

func TestFillSlot_TakenByAnotherGuest(t *testing.T) {
	f := setup(t)
	board := f.load(t)
	a := fill(t, board, f.side.ID, 0, "A")

	_, err := board.FillSlot(context.Background(), f.side.ID, 0, Entry{Name: "B", Description: "Bread"})
	assert.ErrorIs(t, err, ErrSlotTaken)

	edited, err := board.FillSlot(context.Background(), f.side.ID, 0, Entry{ID: a.ID, Name: "A", Description: "Focaccia"})
	require.NoError(t, err)
	assert.Equal(t, a.ID, edited.ID)
	assert.Equal(t, int64(1), f.countRegistrations(t))
}

func TestSaveSlot_BlankClears(t *testing.T) {
	f := setup(t)
	board := f.load(t)
	a := fill(t, board, f.side.ID, 0, "A")

	reg, err := board.SaveSlot(context.Background(), f.side.ID, 0, Entry{ID: a.ID, Name: " ", Description: ""})
	require.NoError(t, err)
	assert.Nil(t, reg)
	assert.Zero(t, f.countRegistrations(t))

	_, err = board.SaveSlot(context.Background(), f.side.ID, 0, Entry{})
	assert.ErrorIs(t, err, ErrEmptyEntry)

	saved, err := board.SaveSlot(context.Background(), f.side.ID, 0, Entry{Name: "Bo", Description: "Beans"})
	require.NoError(t, err)
	assert.Equal(t, 1, *saved.SlotNumber)
}

func TestFillSlot_EnrichesOnlyWithoutImage(t *testing.T) {
	f := setup(t)
	board := f.load(t)

	a := fill(t, board, f.side.ID, 0, "A")
	require.NotNil(t, a.GifURL)
	assert.Equal(t, "https://media.example/food.gif", *a.GifURL)
	assert.Len(t, f.enricher.calls, 1)

	f.enricher.url = "https://media.example/other.gif"
	edited, err := board.FillSlot(context.Background(), f.side.ID, 0, Entry{ID: a.ID, Name: "A", Description: "Soup"})
	require.NoError(t, err)
	assert.Equal(t, "https://media.example/food.gif", *edited.GifURL)
	assert.Len(t, f.enricher.calls, 1)

	f.enricher.url = ""
	b := fill(t, board, f.side.ID, 1, "B")
	assert.Nil(t, b.GifURL)
	assert.Equal(t, int64(2), f.countRegistrations(t))
}

func TestFillSlot_NotifiesOnCreateOnly(t *testing.T) {
	f := setup(t)
	f.notes.err = errors.New("discord down")
	board := f.load(t)

	a := fill(t, board, f.side.ID, 0, "A")
	_, err := board.FillSlot(context.Background(), f.side.ID, 0, Entry{ID: a.ID, Name: "A", Description: "Stew"})
	require.NoError(t, err)

	require.Len(t, f.notes.notified, 1)
	assert.Equal(t, a.ID, f.notes.notified[0].ID)
	assert.Equal(t, 2, f.pub.published())
}

func TestSlotOperations_WrongKindOrCategory(t *testing.T) {
	f := setup(t)
	board := f.load(t)
	ctx := context.Background()

	_, err := board.FillSlot(ctx, f.extra.ID, 0, Entry{Name: "A", Description: "B"})
	assert.ErrorIs(t, err, ErrWrongKind)
	_, err = board.Append(ctx, f.side.ID, Entry{Name: "A", Description: "B"})
	assert.ErrorIs(t, err, ErrWrongKind)
	_, err = board.FillSlot(ctx, "missing", 0, Entry{Name: "A", Description: "B"})
	assert.ErrorIs(t, err, ErrUnknownCategory)
	_, err = board.FillSlot(ctx, f.side.ID, -1, Entry{Name: "A", Description: "B"})
	assert.ErrorIs(t, err, slots.ErrIndexOutOfRange)
}

func TestLoad_DuplicateSlotKeepsEarliest(t *testing.T) {
	f := setup(t)
	slot := 1
	for i, name := range []string{"late", "early"} {
		r := models.Registration{PotluckID: f.potluck.ID}
		r.Name = name
		r.Description = "x"
		r.CategoryID = f.side.ID
		r.SlotNumber = &slot
		r.CreatedAt = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC).Add(time.Duration(1-i) * time.Hour)
		require.NoError(t, f.db.Create(&r).Error)
	}

	assert.Equal(t, []string{"early", "", ""}, sectionNames(t, f.load(t), f.side.ID))
}

func TestHasIncomplete(t *testing.T) {
	f := setup(t)
	board := f.load(t)
	assert.False(t, board.HasIncomplete())

	slot := 2
	r := models.Registration{PotluckID: f.potluck.ID}
	r.Name = "Ann"
	r.CategoryID = f.side.ID
	r.SlotNumber = &slot
	require.NoError(t, f.db.Create(&r).Error)

	assert.True(t, f.load(t).HasIncomplete())
}

func TestUnboundedItems(t *testing.T) {
	f := setup(t)
	board := f.load(t)
	ctx := context.Background()

	for _, name := range []string{"Napkins", "Ice", "Candles"} {
		reg, err := board.Append(ctx, f.extra.ID, Entry{Name: name, Description: name})
		require.NoError(t, err)
		assert.Nil(t, reg.SlotNumber)
	}

	itemNames := func(b *Board) []string {
		sec, err := b.Section(f.extra.ID)
		require.NoError(t, err)
		var out []string
		for _, r := range sec.Items {
			out = append(out, r.Name)
		}
		return out
	}
	assert.Equal(t, []string{"Napkins", "Ice", "Candles"}, itemNames(board))
	assert.Equal(t, []string{"Napkins", "Ice", "Candles"}, itemNames(f.load(t)))

	require.NoError(t, board.RemoveAt(ctx, f.extra.ID, 0))
	assert.Equal(t, []string{"Ice", "Candles"}, itemNames(board))
	assert.Equal(t, []string{"Ice", "Candles"}, itemNames(f.load(t)))

	updated, err := board.UpdateAt(ctx, f.extra.ID, 1, Entry{Name: "Candles", Description: "Tea lights"})
	require.NoError(t, err)
	assert.Equal(t, "Tea lights", updated.Description)

	_, err = board.UpdateAt(ctx, f.extra.ID, 0, Entry{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Candles"}, itemNames(board))

	assert.ErrorIs(t, board.RemoveAt(ctx, f.extra.ID, 5), slots.ErrIndexOutOfRange)
	_, err = board.UpdateAt(ctx, f.extra.ID, 3, Entry{Name: "x", Description: "y"})
	assert.ErrorIs(t, err, slots.ErrIndexOutOfRange)
	_, err = board.Append(ctx, f.extra.ID, Entry{Name: "x"})
	assert.ErrorIs(t, err, ErrEmptyEntry)
}

func categoryOrder(t *testing.T, f *fixture) []string {
	t.Helper()
	var out []string
	for _, s := range f.load(t).Sections {
		out = append(out, s.Category.Key)
	}
	return out
}

func TestMoveCategory(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	moved, err := f.engine.MoveCategory(ctx, f.potluck.ID, f.side.ID, slots.Up)
	require.NoError(t, err)
	assert.True(t, moved)
	assert.Equal(t, []string{"side", "mains", "extra"}, categoryOrder(t, f))

	moved, err = f.engine.MoveCategory(ctx, f.potluck.ID, f.mains.ID, slots.Down)
	require.NoError(t, err)
	assert.True(t, moved)
	assert.Equal(t, []string{"side", "extra", "mains"}, categoryOrder(t, f))
	assert.Equal(t, 2, f.pub.published())
}

func TestMoveCategory_BoundariesAreNoops(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	moved, err := f.engine.MoveCategory(ctx, f.potluck.ID, f.mains.ID, slots.Up)
	require.NoError(t, err)
	assert.False(t, moved)

	moved, err = f.engine.MoveCategory(ctx, f.potluck.ID, f.extra.ID, slots.Down)
	require.NoError(t, err)
	assert.False(t, moved)

	assert.Equal(t, []string{"mains", "side", "extra"}, categoryOrder(t, f))
	assert.Zero(t, f.pub.published())
}

func TestMoveCategory_EqualSortOrders(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	require.NoError(t, f.db.Model(&models.PotluckCategory{}).Where("1 = 1").Update("sort_order", 0).Error)

	moved, err := f.engine.MoveCategory(ctx, f.potluck.ID, f.side.ID, slots.Up)
	require.NoError(t, err)
	assert.True(t, moved)
	assert.Equal(t, "side", categoryOrder(t, f)[0])
}

func TestSetCategoryEnabled(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	require.NoError(t, f.engine.SetCategoryEnabled(ctx, f.potluck.ID, f.mains.ID, false))
	assert.Equal(t, []string{"side", "extra"}, categoryOrder(t, f))

	require.NoError(t, f.engine.SetCategoryEnabled(ctx, f.potluck.ID, f.mains.ID, true))
	require.NoError(t, f.engine.SetCategoryEnabled(ctx, f.potluck.ID, f.mains.ID, true))
	assert.Equal(t, []string{"side", "extra", "mains"}, categoryOrder(t, f))

	var bindings int64
	f.db.Model(&models.PotluckCategory{}).Where("potluck_id = ?", f.potluck.ID).Count(&bindings)
	assert.Equal(t, int64(3), bindings)
}

func TestReorderRegistrations(t *testing.T) {
	f := setup(t)
	board := f.load(t)
	a := fill(t, board, f.side.ID, 0, "A")
	b := fill(t, board, f.side.ID, 1, "B")

	require.NoError(t, f.engine.ReorderRegistrations(context.Background(), f.potluck.ID, f.side.ID, []string{b.ID, a.ID}))
	assert.Equal(t, []string{"B", "A", ""}, sectionNames(t, f.load(t), f.side.ID))

	err := f.engine.ReorderRegistrations(context.Background(), f.potluck.ID, f.side.ID, []string{a.ID})
	assert.ErrorIs(t, err, store.ErrInvalid)
}

func TestWatch_ReloadsOnChange(t *testing.T) {
	f := setup(t)
	hub := realtime.NewHub()
	engine := NewEngine(f.store, WithPublisher(hub))

	ctx, cancel := context.WithCancel(context.Background())
	boards := make(chan *Board, 4)
	done := make(chan struct{})
	go func() {
		engine.Watch(ctx, hub, f.potluck, func(b *Board) { boards <- b })
		close(done)
	}()

	select {
	case initial := <-boards:
		assert.Equal(t, []string{"", "", ""}, sectionNames(t, initial, f.side.ID))
	case <-time.After(2 * time.Second):
		t.Fatal("no initial board")
	}
	require.Equal(t, 1, hub.Subscribers(f.potluck.ID))

	board, err := engine.Load(ctx, f.potluck)
	require.NoError(t, err)
	fill(t, board, f.side.ID, 0, "A")

	select {
	case reloaded := <-boards:
		assert.Equal(t, []string{"A", "", ""}, sectionNames(t, reloaded, f.side.ID))
	case <-time.After(2 * time.Second):
		t.Fatal("no board after change")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not stop")
	}
	assert.Zero(t, hub.Subscribers(f.potluck.ID))
}

// writeOnSubscribe saves a registration just before the subscription is
// registered, as a concurrent guest might.
type writeOnSubscribe struct {
	hub   *realtime.Hub
	write func()
}

func (w writeOnSubscribe) Subscribe(potluckID string, onChange func()) func() {
	w.write()
	return w.hub.Subscribe(potluckID, onChange)
}

func TestWatch_FirstBoardFollowsSubscription(t *testing.T) {
	f := setup(t)
	hub := realtime.NewHub()
	engine := NewEngine(f.store, WithPublisher(hub))
	feed := writeOnSubscribe{hub: hub, write: func() {
		board, err := f.engine.Load(context.Background(), f.potluck)
		if assert.NoError(t, err) {
			_, err = board.FillSlot(context.Background(), f.side.ID, 0, Entry{Name: "A", Description: "Apples"})
			assert.NoError(t, err)
		}
	}}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	boards := make(chan *Board, 4)
	go engine.Watch(ctx, feed, f.potluck, func(b *Board) { boards <- b })

	select {
	case first := <-boards:
		assert.Equal(t, []string{"A", "", ""}, sectionNames(t, first, f.side.ID))
	case <-time.After(2 * time.Second):
		t.Fatal("no board after subscribing")
	}
}
