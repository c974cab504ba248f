// Package signup applies guest and admin actions to a potluck's sign-up
// board and keeps the store, notifications and change feed in step.
package signup

import (
	"context"
	"errors"
	"fmt"

	"github.com/gdg-garage/potluck-signup/internal/models"
	"github.com/gdg-garage/potluck-signup/internal/notifier"
	"github.com/gdg-garage/potluck-signup/internal/slots"
	"github.com/gdg-garage/potluck-signup/internal/store"
	"github.com/sirupsen/logrus"
)

var (
	ErrEmptyEntry      = errors.New("name and description are required")
	ErrUnknownCategory = errors.New("category is not enabled for this potluck")
	ErrWrongKind       = errors.New("operation does not match the category kind")
	ErrSlotTaken       = errors.New("slot is held by another registration")
)

type Store interface {
	ListRegistrations(ctx context.Context, potluckID string) ([]models.Registration, error)
	UpsertRegistration(ctx context.Context, reg *models.Registration) error
	DeleteRegistration(ctx context.Context, potluckID, id string) (*models.Registration, error)
	ReorderSlots(ctx context.Context, potluckID, categoryID string, orderedIDs []string) error
	ListBindings(ctx context.Context, potluckID string, enabledOnly bool) ([]models.PotluckCategory, error)
	UpsertBinding(ctx context.Context, binding *models.PotluckCategory) error
	DeleteBinding(ctx context.Context, potluckID, categoryID string) error
	SetSortOrders(ctx context.Context, changes ...store.SortChange) error
}

// Enricher looks up an image for a description. nil means no image.
type Enricher interface {
	ImageFor(ctx context.Context, description string) *string
}

type Publisher interface {
	Publish(ctx context.Context, potluckID string) error
}

type Subscriber interface {
	Subscribe(potluckID string, onChange func()) (unsubscribe func())
}

type Engine struct {
	store    Store
	enricher Enricher
	notifier notifier.Notifier
	feed     Publisher
}

type Option func(*Engine)

func WithEnricher(e Enricher) Option {
	return func(engine *Engine) { engine.enricher = e }
}

func WithNotifier(n notifier.Notifier) Option {
	return func(engine *Engine) { engine.notifier = n }
}

func WithPublisher(p Publisher) Option {
	return func(engine *Engine) { engine.feed = p }
}

func NewEngine(s Store, opts ...Option) *Engine {
	e := &Engine{store: s}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Load reads the potluck's enabled categories and registrations and builds
// its board from scratch.
func (e *Engine) Load(ctx context.Context, potluck models.Potluck) (*Board, error) {
	bindings, err := e.store.ListBindings(ctx, potluck.ID, true)
	if err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}
	regs, err := e.store.ListRegistrations(ctx, potluck.ID)
	if err != nil {
		return nil, fmt.Errorf("load registrations: %w", err)
	}
	return e.build(potluck, bindings, regs), nil
}

func (e *Engine) build(potluck models.Potluck, bindings []models.PotluckCategory, regs []models.Registration) *Board {
	byCategory := make(map[string][]models.Registration)
	for _, r := range regs {
		byCategory[r.CategoryID] = append(byCategory[r.CategoryID], r)
	}

	board := &Board{Potluck: potluck, engine: e}
	for _, b := range slots.Enabled(bindings) {
		sec := &Section{Binding: b, Category: b.Category}
		categoryRegs := byCategory[b.CategoryID]

		if b.Category.Unbounded {
			for _, r := range categoryRegs {
				if r.Slotted() {
					logrus.WithFields(logrus.Fields{"registration_id": r.ID, "category": b.Category.Key}).
						Warn("slotted registration in an unbounded category")
					continue
				}
				sec.Items = sec.Items.Append(r)
			}
		} else {
			list, conflicts := slots.BuildWithConflicts(b.Category.Slots, categoryRegs)
			for _, c := range conflicts {
				logrus.WithFields(logrus.Fields{
					"potluck_id":  potluck.ID,
					"category":    b.Category.Key,
					"slot_number": c.SlotNumber,
					"kept":        c.Kept.ID,
					"dropped":     c.Dropped.ID,
				}).Error("duplicate slot number, keeping the earliest registration")
			}
			sec.Slots = list
		}

		board.Sections = append(board.Sections, sec)
	}
	return board
}

// save enriches reg when it has no image yet and stores it.
func (e *Engine) save(ctx context.Context, potluck models.Potluck, category models.Category, reg *models.Registration, created bool) error {
	if reg.GifURL == nil && e.enricher != nil {
		reg.GifURL = e.enricher.ImageFor(ctx, reg.Description)
	}

	if err := e.store.UpsertRegistration(ctx, reg); err != nil {
		logrus.WithFields(logrus.Fields{
			"potluck_id":      potluck.ID,
			"registration_id": reg.ID,
		}).Errorf("Failed to save registration: %v", err)
		return fmt.Errorf("save registration: %w", err)
	}

	if created && e.notifier != nil {
		if err := e.notifier.NotifyRegistration(potluck, category, *reg); err != nil {
			logrus.WithError(err).Warn("registration notification failed")
		}
	}
	e.changed(ctx, potluck.ID)
	return nil
}

func (e *Engine) remove(ctx context.Context, potluckID, registrationID string) error {
	if _, err := e.store.DeleteRegistration(ctx, potluckID, registrationID); err != nil {
		logrus.WithFields(logrus.Fields{
			"potluck_id":      potluckID,
			"registration_id": registrationID,
		}).Errorf("Failed to delete registration: %v", err)
		return fmt.Errorf("delete registration: %w", err)
	}
	e.changed(ctx, potluckID)
	return nil
}

func (e *Engine) changed(ctx context.Context, potluckID string) {
	if e.feed == nil {
		return
	}
	if err := e.feed.Publish(ctx, potluckID); err != nil {
		logrus.WithError(err).WithField("potluck_id", potluckID).Warn("failed to publish change")
	}
}

// Watch subscribes to the potluck's change signals, hands the current board
// to onBoard and then a rebuilt board after every signal, until ctx is done.
// The first board is loaded only once the subscription is in place, so no
// change is missed between the two. Signals arriving during a rebuild are
// folded into one more rebuild.
func (e *Engine) Watch(ctx context.Context, feed Subscriber, potluck models.Potluck, onBoard func(*Board)) {
	signals := make(chan struct{}, 1)
	notify := func() {
		select {
		case signals <- struct{}{}:
		default:
		}
	}
	unsubscribe := feed.Subscribe(potluck.ID, notify)
	defer unsubscribe()
	notify()

	for {
		select {
		case <-ctx.Done():
			return
		case <-signals:
			board, err := e.Load(ctx, potluck)
			if err != nil {
				logrus.WithError(err).WithField("potluck_id", potluck.ID).Warn("reload after change failed")
				continue
			}
			onBoard(board)
		}
	}
}
