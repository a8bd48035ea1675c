package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/agenda/internal/codec"
	"github.com/mesh-intelligence/agenda/internal/kvstore"
	"github.com/mesh-intelligence/agenda/internal/logging"
	"github.com/mesh-intelligence/agenda/internal/metrics"
	"github.com/mesh-intelligence/agenda/internal/sqlite"
	"github.com/mesh-intelligence/agenda/pkg/types"
)

// Fallback adapts the key-value store to Backend. Each collection is a list
// of codec records; writes rewrite the whole collection.
type Fallback struct {
	kv      *kvstore.Store
	log     *zap.Logger
	metrics *metrics.Metrics
}

// NewFallback wraps kv. log and m may be nil.
func NewFallback(kv *kvstore.Store, log *zap.Logger, m *metrics.Metrics) *Fallback {
	return &Fallback{kv: kv, log: logging.OrNop(log).Named("fallback"), metrics: m}
}

// KV returns the underlying key-value store.
func (f *Fallback) KV() *kvstore.Store { return f.kv }

// Init prepares the underlying store.
func (f *Fallback) Init() error { return f.kv.Init() }

func readCollection[E any](f *Fallback, collection string, decode func(json.RawMessage) (E, bool)) ([]E, error) {
	raws, err := f.kv.GetCollection(collection)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", collection, err)
	}
	out := make([]E, 0, len(raws))
	for _, raw := range raws {
		e, ok := decode(raw)
		if !ok {
			f.log.Debug("dropping undecodable record",
				zap.String("collection", collection), zap.String("id", codec.RecordID(raw)))
			f.metrics.Drop(collection, metrics.BackendFallback)
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

// Categories returns every decodable category sorted by name.
func (f *Fallback) Categories(ctx context.Context) ([]types.Category, error) {
	cs, err := readCollection(f, types.CollectionCategories, codec.CategoryFromRecord)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(cs, func(i, j int) bool {
		if cs[i].Name != cs[j].Name {
			return cs[i].Name < cs[j].Name
		}
		return cs[i].CreatedAt.Before(cs[j].CreatedAt)
	})
	return cs, nil
}

// Projects returns every decodable project sorted by name.
func (f *Fallback) Projects(ctx context.Context) ([]types.Project, error) {
	ps, err := readCollection(f, types.CollectionProjects, codec.ProjectFromRecord)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(ps, func(i, j int) bool {
		if ps[i].Name != ps[j].Name {
			return ps[i].Name < ps[j].Name
		}
		return ps[i].CreatedAt.Before(ps[j].CreatedAt)
	})
	return ps, nil
}

// Tasks returns every decodable task sorted by order.
func (f *Fallback) Tasks(ctx context.Context) ([]types.Task, error) {
	ts, err := readCollection(f, types.CollectionTasks, codec.TaskFromRecord)
	if err != nil {
		return nil, err
	}
	sortTasks(ts)
	return ts, nil
}

// TasksByProject returns the tasks of one project sorted by order.
func (f *Fallback) TasksByProject(ctx context.Context, projectID string) ([]types.Task, error) {
	ts, err := f.Tasks(ctx)
	if err != nil {
		return nil, err
	}
	out := ts[:0]
	for _, t := range ts {
		if t.ProjectID == projectID {
			out = append(out, t)
		}
	}
	return out, nil
}

func sortTasks(ts []types.Task) {
	sort.SliceStable(ts, func(i, j int) bool {
		if ts[i].Order != ts[j].Order {
			return ts[i].Order < ts[j].Order
		}
		return ts[i].CreatedAt.Before(ts[j].CreatedAt)
	})
}

// Notes returns every decodable note, most recently modified first.
func (f *Fallback) Notes(ctx context.Context) ([]types.Note, error) {
	ns, err := readCollection(f, types.CollectionNotes, codec.NoteFromRecord)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(ns, func(i, j int) bool {
		return ns[i].ModifiedAt.After(ns[j].ModifiedAt)
	})
	return ns, nil
}

// Put upserts entities: an existing record with the same id is replaced in
// place, otherwise the record is appended.
func (f *Fallback) Put(ctx context.Context, entities ...any) error {
	if err := f.write(entities, true); err != nil {
		return err
	}
	f.metrics.Write(metrics.BackendFallback, metrics.OpPut, len(entities))
	return nil
}

// Insert appends entities, skipping any whose id is already stored.
func (f *Fallback) Insert(ctx context.Context, entities ...any) error {
	if err := f.write(entities, false); err != nil {
		return err
	}
	f.metrics.Write(metrics.BackendFallback, metrics.OpInsert, len(entities))
	return nil
}

func (f *Fallback) write(entities []any, replace bool) error {
	byCollection := map[string][]json.RawMessage{}
	var order []string
	for _, e := range entities {
		collection, raw, err := encode(e)
		if err != nil {
			return err
		}
		if _, seen := byCollection[collection]; !seen {
			order = append(order, collection)
		}
		byCollection[collection] = append(byCollection[collection], raw)
	}
	for _, collection := range order {
		incoming := byCollection[collection]
		err := f.kv.UpdateCollection(collection, func(records []json.RawMessage) ([]json.RawMessage, error) {
			return mergeRecords(records, incoming, replace), nil
		})
		if err != nil {
			return fmt.Errorf("writing %s: %w", collection, err)
		}
	}
	return nil
}

// mergeRecords applies incoming to records by id. With replace false,
// records whose id is already present are skipped.
func mergeRecords(records, incoming []json.RawMessage, replace bool) []json.RawMessage {
	index := make(map[string]int, len(records))
	for i, raw := range records {
		if id := codec.RecordID(raw); id != "" {
			if _, dup := index[id]; !dup {
				index[id] = i
			}
		}
	}
	for _, raw := range incoming {
		id := codec.RecordID(raw)
		if i, ok := index[id]; ok {
			if replace {
				records[i] = raw
			}
			continue
		}
		index[id] = len(records)
		records = append(records, raw)
	}
	return records
}

func encode(entity any) (string, json.RawMessage, error) {
	var (
		collection string
		record     any
	)
	switch e := entity.(type) {
	case types.Category:
		collection, record = types.CollectionCategories, codec.CategoryToRecord(e)
	case types.Project:
		collection, record = types.CollectionProjects, codec.ProjectToRecord(e)
	case types.Task:
		collection, record = types.CollectionTasks, codec.TaskToRecord(e)
	case types.Note:
		collection, record = types.CollectionNotes, codec.NoteToRecord(e)
	default:
		return "", nil, fmt.Errorf("%w: unsupported entity %T", types.ErrInvalidData, entity)
	}
	raw, err := codec.Marshal(record)
	if err != nil {
		return "", nil, fmt.Errorf("%w: encoding %T: %v", types.ErrInvalidData, entity, err)
	}
	return collection, raw, nil
}

// Delete removes every record with id from collection. Deleting a project
// also removes the tasks that reference it.
func (f *Fallback) Delete(ctx context.Context, collection, id string) error {
	switch collection {
	case types.CollectionCategories, types.CollectionProjects, types.CollectionTasks, types.CollectionNotes:
	default:
		return fmt.Errorf("%w: unknown collection %q", types.ErrInvalidData, collection)
	}
	err := f.kv.UpdateCollection(collection, func(records []json.RawMessage) ([]json.RawMessage, error) {
		return filterRecords(records, func(raw json.RawMessage) bool {
			return codec.RecordID(raw) != id
		}), nil
	})
	if err != nil {
		return fmt.Errorf("deleting from %s: %w", collection, err)
	}
	if collection == types.CollectionProjects {
		err := f.kv.UpdateCollection(types.CollectionTasks, func(records []json.RawMessage) ([]json.RawMessage, error) {
			return filterRecords(records, func(raw json.RawMessage) bool {
				return taskProjectID(raw) != id
			}), nil
		})
		if err != nil {
			return fmt.Errorf("deleting project tasks: %w", err)
		}
	}
	f.metrics.Write(metrics.BackendFallback, metrics.OpDelete, 1)
	return nil
}

func filterRecords(records []json.RawMessage, keep func(json.RawMessage) bool) []json.RawMessage {
	out := records[:0]
	for _, raw := range records {
		if keep(raw) {
			out = append(out, raw)
		}
	}
	return out
}

// taskProjectID reads projectId from a raw task record, including records
// that fail full decoding.
func taskProjectID(raw json.RawMessage) string {
	var probe struct {
		ProjectID string `json:"projectId"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return ""
	}
	return probe.ProjectID
}

// Snapshot reads all four collections.
func (f *Fallback) Snapshot(ctx context.Context) (sqlite.Snapshot, error) {
	var (
		s   sqlite.Snapshot
		err error
	)
	if s.Categories, err = f.Categories(ctx); err != nil {
		return s, err
	}
	if s.Projects, err = f.Projects(ctx); err != nil {
		return s, err
	}
	if s.Tasks, err = f.Tasks(ctx); err != nil {
		return s, err
	}
	if s.Notes, err = f.Notes(ctx); err != nil {
		return s, err
	}
	return s, nil
}

// Clear removes every collection and key from the fallback store.
func (f *Fallback) Clear() error { return f.kv.Clear() }
