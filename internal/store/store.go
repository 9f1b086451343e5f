package store

import (
	"context"
	"encoding/json"
	"fmt"
)

// Entity is a persisted record addressed by kind and id.
type Entity interface {
	EntityKind() string
	EntityID() string
}

// Backend persists encoded entities and named progress markers.
// Load reports false when the id is absent.
type Backend interface {
	Load(ctx context.Context, kind, id string) ([]byte, bool, error)
	Save(ctx context.Context, kind, id string, data []byte) error
	Remove(ctx context.Context, kind, id string) error
	List(ctx context.Context, kind string) ([][]byte, error)
	LoadState(ctx context.Context, name string) (uint64, bool, error)
	SaveState(ctx context.Context, name string, value uint64) error
	Close() error
}

// Repository is a typed view over a Backend for one entity kind.
type Repository[T Entity] struct {
	backend Backend
	kind    string
}

// NewRepository binds a repository to the kind reported by T's zero value.
func NewRepository[T Entity](backend Backend) *Repository[T] {
	var zero T
	return &Repository[T]{backend: backend, kind: zero.EntityKind()}
}

// Kind returns the entity kind handled by the repository.
func (r *Repository[T]) Kind() string {
	return r.kind
}

// Load returns the entity or nil when it does not exist.
func (r *Repository[T]) Load(ctx context.Context, id string) (*T, error) {
	data, ok, err := r.backend.Load(ctx, r.kind, id)
	if err != nil {
		return nil, fmt.Errorf("load %s %s: %w", r.kind, id, err)
	}
	if !ok {
		return nil, nil
	}
	var entity T
	if err := json.Unmarshal(data, &entity); err != nil {
		return nil, fmt.Errorf("decode %s %s: %w", r.kind, id, err)
	}
	return &entity, nil
}

// GetOrCreate loads the entity or builds it with create. A created entity is not saved.
func (r *Repository[T]) GetOrCreate(ctx context.Context, id string, create func() T) (*T, bool, error) {
	entity, err := r.Load(ctx, id)
	if err != nil {
		return nil, false, err
	}
	if entity != nil {
		return entity, false, nil
	}
	fresh := create()
	return &fresh, true, nil
}

// Save writes the entity under its own id.
func (r *Repository[T]) Save(ctx context.Context, entity *T) error {
	if entity == nil {
		return fmt.Errorf("save %s: nil entity", r.kind)
	}
	id := (*entity).EntityID()
	if id == "" {
		return fmt.Errorf("save %s: empty id", r.kind)
	}
	data, err := json.Marshal(entity)
	if err != nil {
		return fmt.Errorf("encode %s %s: %w", r.kind, id, err)
	}
	if err := r.backend.Save(ctx, r.kind, id, data); err != nil {
		return fmt.Errorf("save %s %s: %w", r.kind, id, err)
	}
	return nil
}

// Remove deletes the entity. Removing a missing id is not an error.
func (r *Repository[T]) Remove(ctx context.Context, id string) error {
	if err := r.backend.Remove(ctx, r.kind, id); err != nil {
		return fmt.Errorf("remove %s %s: %w", r.kind, id, err)
	}
	return nil
}

// List returns every stored entity of the kind, ordered by id.
func (r *Repository[T]) List(ctx context.Context) ([]*T, error) {
	rows, err := r.backend.List(ctx, r.kind)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", r.kind, err)
	}
	out := make([]*T, 0, len(rows))
	for _, data := range rows {
		var entity T
		if err := json.Unmarshal(data, &entity); err != nil {
			return nil, fmt.Errorf("decode %s: %w", r.kind, err)
		}
		out = append(out, &entity)
	}
	return out, nil
}
