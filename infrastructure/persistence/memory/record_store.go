package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"sync"

	"crud-microservices/application/ports"
	apperrors "crud-microservices/pkg/errors"
)

type document = map[string]interface{}

// RecordStore keeps records as JSON documents in process memory. A single
// mutex makes every operation, including conditional updates, atomic.
type RecordStore struct {
	mu     sync.Mutex
	tables map[string]map[string]document
}

var _ ports.RecordStore = (*RecordStore)(nil)

// NewRecordStore creates an empty store.
func NewRecordStore() *RecordStore {
	return &RecordStore{tables: make(map[string]map[string]document)}
}

func (s *RecordStore) table(name string) map[string]document {
	t, ok := s.tables[name]
	if !ok {
		t = make(map[string]document)
		s.tables[name] = t
	}
	return t
}

// toDocument round-trips v through JSON so stored values never alias caller memory.
func toDocument(v interface{}) (document, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func normalize(v interface{}) (interface{}, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out interface{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// decode writes src into out. out is zeroed first so it mirrors the stored
// record exactly, including fields the record no longer has.
func decode(src interface{}, out interface{}) error {
	if out == nil {
		return nil
	}
	raw, err := json.Marshal(src)
	if err != nil {
		return err
	}
	if rv := reflect.ValueOf(out); rv.Kind() == reflect.Ptr && !rv.IsNil() {
		rv.Elem().Set(reflect.Zero(rv.Elem().Type()))
	}
	return json.Unmarshal(raw, out)
}

// Get loads one record.
func (s *RecordStore) Get(_ context.Context, table, id string, out interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.table(table)[id]
	if !ok {
		return apperrors.NewNotFoundError(ports.RecordName(table))
	}
	if err := decode(doc, out); err != nil {
		return apperrors.NewInternalError("failed to decode record").WithCause(err)
	}
	return nil
}

// Put writes a whole record.
func (s *RecordStore) Put(_ context.Context, table string, record interface{}) error {
	doc, err := toDocument(record)
	if err != nil {
		return apperrors.NewInternalError("failed to encode record").WithCause(err)
	}
	id, _ := doc["id"].(string)
	if id == "" {
		return apperrors.NewInternalError("record has no id")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.table(table)[id] = doc
	return nil
}

// Update applies upd when every condition holds.
func (s *RecordStore) Update(_ context.Context, table, id string, upd ports.Update, out interface{}, conds ...ports.Condition) error {
	if upd.IsEmpty() {
		return apperrors.NewValidationError("no fields to update")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.table(table)[id]
	if !ok {
		return apperrors.NewNotFoundError(ports.RecordName(table))
	}
	if err := check(current, conds); err != nil {
		return fmt.Errorf("%s: %w", table, err)
	}

	next := make(document, len(current))
	for k, v := range current {
		next[k] = v
	}
	for field, v := range upd.Set {
		nv, err := normalize(v)
		if err != nil {
			return apperrors.NewInternalError("failed to encode update").WithCause(err)
		}
		next[field] = nv
	}
	for _, field := range upd.Remove {
		delete(next, field)
	}
	for field, delta := range upd.Increment {
		n, _ := next[field].(float64)
		next[field] = n + float64(delta)
	}

	s.table(table)[id] = next
	if err := decode(next, out); err != nil {
		return apperrors.NewInternalError("failed to decode record").WithCause(err)
	}
	return nil
}

// Delete removes a record when every condition holds.
func (s *RecordStore) Delete(_ context.Context, table, id string, conds ...ports.Condition) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.table(table)[id]
	if !ok {
		return apperrors.NewNotFoundError(ports.RecordName(table))
	}
	if err := check(current, conds); err != nil {
		return fmt.Errorf("%s: %w", table, err)
	}
	delete(s.table(table), id)
	return nil
}

// Scan returns every record ordered by id.
func (s *RecordStore) Scan(_ context.Context, table string, out interface{}) error {
	s.mu.Lock()
	t := s.table(table)
	ids := make([]string, 0, len(t))
	for id := range t {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	docs := make([]document, 0, len(ids))
	for _, id := range ids {
		docs = append(docs, t[id])
	}
	s.mu.Unlock()

	if err := decode(docs, out); err != nil {
		return apperrors.NewInternalError("failed to decode records").WithCause(err)
	}
	return nil
}

// Count returns the number of records in table.
func (s *RecordStore) Count(_ context.Context, table string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.table(table)), nil
}

// Ping always succeeds.
func (s *RecordStore) Ping(context.Context) error { return nil }

func check(doc document, conds []ports.Condition) error {
	for _, c := range conds {
		actual, present := doc[c.Field]
		switch c.Op {
		case ports.OpEquals:
			want, err := normalize(c.Value)
			if err != nil || !present || !reflect.DeepEqual(actual, want) {
				return ports.ErrConditionFailed
			}
		case ports.OpAtLeast:
			n, isNum := actual.(float64)
			floor, err := normalize(c.Value)
			floorNum, ok := floor.(float64)
			if err != nil || !ok || !present || !isNum || n < floorNum {
				return ports.ErrConditionFailed
			}
		default:
			return fmt.Errorf("unsupported condition %q", c.Op)
		}
	}
	return nil
}
