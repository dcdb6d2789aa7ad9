package store

import (
	"bytes"
	"context"
	"encoding/json"
	"sort"
	"sync"
)

type memoryDoc struct {
	data    []byte
	version int64
}

// Memory is an in-process Store used by tests and local development. It
// serializes updates per store, which gives the same single-document
// atomicity the Postgres adapter provides through version CAS.
type Memory struct {
	mu   sync.RWMutex
	docs map[Kind]map[string]memoryDoc
}

func NewMemory() *Memory {
	return &Memory{docs: map[Kind]map[string]memoryDoc{}}
}

func (m *Memory) Get(ctx context.Context, kind Kind, id string, out any) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	doc, ok := m.docs[kind][id]
	if !ok {
		return ErrNotFound
	}
	return json.Unmarshal(doc.data, out)
}

func (m *Memory) Put(ctx context.Context, kind Kind, id string, doc any) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.docs[kind] == nil {
		m.docs[kind] = map[string]memoryDoc{}
	}
	prev := m.docs[kind][id]
	m.docs[kind][id] = memoryDoc{data: raw, version: prev.version + 1}
	return nil
}

func (m *Memory) Update(ctx context.Context, kind Kind, id string, fn func(raw []byte) (any, error)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	doc, ok := m.docs[kind][id]
	if !ok {
		return ErrNotFound
	}
	next, err := fn(doc.data)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(next)
	if err != nil {
		return err
	}
	m.docs[kind][id] = memoryDoc{data: raw, version: doc.version + 1}
	return nil
}

func (m *Memory) Query(ctx context.Context, kind Kind, filter Filter, out any) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	type keyed struct {
		id  string
		raw []byte
	}
	var matched []keyed
	for id, doc := range m.docs[kind] {
		ok, err := rawMatches(doc.data, filter)
		if err != nil {
			return err
		}
		if ok {
			matched = append(matched, keyed{id, doc.data})
		}
	}
	// Stable order for deterministic tests
	sort.Slice(matched, func(i, j int) bool { return matched[i].id < matched[j].id })

	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, d := range matched {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.Write(d.raw)
	}
	buf.WriteByte(']')
	return json.Unmarshal(buf.Bytes(), out)
}

func (m *Memory) Count(ctx context.Context, kind Kind, filter Filter) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := 0
	for _, doc := range m.docs[kind] {
		ok, err := rawMatches(doc.data, filter)
		if err != nil {
			return 0, err
		}
		if ok {
			n++
		}
	}
	return n, nil
}

func (m *Memory) Ping(ctx context.Context) error { return nil }

// rawMatches applies equality filtering on top-level fields, normalizing both
// sides through JSON so int/float and struct/map comparisons line up.
func rawMatches(raw []byte, filter Filter) (bool, error) {
	if len(filter) == 0 {
		return true, nil
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		return false, err
	}
	for field, want := range filter {
		got, ok := doc[field]
		if !ok {
			return false, nil
		}
		wantRaw, err := json.Marshal(want)
		if err != nil {
			return false, err
		}
		if !bytes.Equal(bytes.TrimSpace(got), bytes.TrimSpace(wantRaw)) {
			return false, nil
		}
	}
	return true, nil
}
