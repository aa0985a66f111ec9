package reports

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/fsrkeeper/internal/common"
	"github.com/dmitrijs2005/fsrkeeper/internal/idgen"
	"github.com/dmitrijs2005/fsrkeeper/internal/report"
	"github.com/dmitrijs2005/fsrkeeper/internal/storage"
)

// StoreRepository keeps reports in a key/value store.
type StoreRepository struct {
	store  storage.Backend
	engine *report.Engine
	now    func() time.Time
	newID  idgen.Generator
}

type Option func(*StoreRepository)

func WithClock(now func() time.Time) Option {
	return func(r *StoreRepository) { r.now = now }
}

// WithEngine sets the engine used to normalize document data.
func WithEngine(en *report.Engine) Option {
	return func(r *StoreRepository) { r.engine = en }
}

func WithIDGenerator(g idgen.Generator) Option {
	return func(r *StoreRepository) { r.newID = g }
}

func NewRepository(store storage.Backend, opts ...Option) *StoreRepository {
	r := &StoreRepository{
		store:  store,
		engine: report.NewEngine(),
		now:    time.Now,
		newID:  idgen.NewID,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

func (r *StoreRepository) load(ctx context.Context) ([]Report, error) {
	var list []Report
	if _, err := storage.GetJSON(ctx, r.store, storage.KeyReports, &list); err != nil {
		return nil, fmt.Errorf("failed to load reports: %w", err)
	}
	for i := range list {
		list[i].Data = r.engine.Clone(list[i].Data)
	}
	if list == nil {
		list = []Report{}
	}
	return list, nil
}

func (r *StoreRepository) save(ctx context.Context, list []Report) error {
	if err := storage.SetJSON(ctx, r.store, storage.KeyReports, list); err != nil {
		return fmt.Errorf("failed to store reports: %w", err)
	}
	return nil
}

func (r *StoreRepository) List(ctx context.Context) ([]Report, error) {
	return r.load(ctx)
}

func (r *StoreRepository) Get(ctx context.Context, id string) (Report, error) {
	list, err := r.load(ctx)
	if err != nil {
		return Report{}, err
	}
	for _, rep := range list {
		if rep.ID == id {
			return rep, nil
		}
	}
	return Report{}, common.ErrorNotFound
}

func (r *StoreRepository) Save(ctx context.Context, rep Report) (Report, error) {
	list, err := r.load(ctx)
	if err != nil {
		return Report{}, err
	}

	now := r.now().UTC().Truncate(time.Millisecond)
	if rep.ID == "" {
		rep.ID = r.newID()
	}
	if rep.CreatedAt.IsZero() {
		rep.CreatedAt = now
	}
	rep.Title = strings.TrimSpace(rep.Title)
	rep.Customer = strings.TrimSpace(rep.Customer)
	rep.UpdatedAt = now
	rep.Data = r.engine.Clone(rep.Data)

	replaced := false
	for i := range list {
		if list[i].ID == rep.ID {
			rep.CreatedAt = list[i].CreatedAt
			list[i] = rep
			replaced = true
			break
		}
	}
	if !replaced {
		list = append(list, rep)
	}

	if err := r.save(ctx, list); err != nil {
		return Report{}, err
	}
	return rep, nil
}

func (r *StoreRepository) Delete(ctx context.Context, id string) error {
	list, err := r.load(ctx)
	if err != nil {
		return err
	}
	for i := range list {
		if list[i].ID == id {
			list = append(list[:i], list[i+1:]...)
			return r.save(ctx, list)
		}
	}
	return common.ErrorNotFound
}

// TripTypes returns the account's trip types, empty when none were saved.
func (r *StoreRepository) TripTypes(ctx context.Context) ([]string, error) {
	var types []string
	if _, err := storage.GetJSON(ctx, r.store, storage.KeyTripTypes, &types); err != nil {
		return nil, fmt.Errorf("failed to load trip types: %w", err)
	}
	if types == nil {
		types = []string{}
	}
	return types, nil
}

// SetTripTypes stores types trimmed, without blanks or repeats, in the order
// given.
func (r *StoreRepository) SetTripTypes(ctx context.Context, types []string) error {
	seen := make(map[string]struct{}, len(types))
	clean := make([]string, 0, len(types))
	for _, t := range types {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		clean = append(clean, t)
	}
	if err := storage.SetJSON(ctx, r.store, storage.KeyTripTypes, clean); err != nil {
		return fmt.Errorf("failed to store trip types: %w", err)
	}
	return nil
}

var _ Repository = (*StoreRepository)(nil)
