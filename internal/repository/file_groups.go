package repository

import (
	"context"
	"log/slog"
	"path/filepath"
	"sort"

	"github.com/chanport/channels-bot/internal/domain"
)

const groupsFile = "groups.json"

// fileGroupRepository stores groups as a single JSON object mapping
// name to link, matching the on-disk layout the bot has always used.
type fileGroupRepository struct {
	doc *document
}

// NewFileGroupRepository creates a file-backed group repository rooted at dir.
func NewFileGroupRepository(dir string, log *slog.Logger) GroupRepository {
	return &fileGroupRepository{
		doc: newDocument(filepath.Join(dir, groupsFile), log),
	}
}

func (r *fileGroupRepository) List(ctx context.Context) ([]domain.Group, error) {
	r.doc.mu.Lock()
	defer r.doc.mu.Unlock()

	mapping := map[string]string{}
	r.doc.load(&mapping)

	names := make([]string, 0, len(mapping))
	for name := range mapping {
		names = append(names, name)
	}
	sort.Strings(names)

	groups := make([]domain.Group, 0, len(names))
	for _, name := range names {
		groups = append(groups, domain.Group{Name: name, Link: mapping[name]})
	}

	return groups, nil
}

func (r *fileGroupRepository) Upsert(ctx context.Context, group domain.Group) error {
	r.doc.mu.Lock()
	defer r.doc.mu.Unlock()

	mapping := map[string]string{}
	r.doc.load(&mapping)

	mapping[group.Name] = group.Link

	return r.doc.save(mapping)
}

func (r *fileGroupRepository) Remove(ctx context.Context, name string) error {
	r.doc.mu.Lock()
	defer r.doc.mu.Unlock()

	mapping := map[string]string{}
	r.doc.load(&mapping)

	if _, ok := mapping[name]; !ok {
		return ErrNotFound
	}

	delete(mapping, name)

	return r.doc.save(mapping)
}
