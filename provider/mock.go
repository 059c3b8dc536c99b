package provider

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rulemailer/dnscheck/dns"
)

// Mock is an in-memory Provider used for testing. It does not implement
// RecordUpdater; wrap it in UpdatableMock when update capability is
// needed.
//
// Calls against names never seeded or mutated are counted in
// RecordsCalls, so tests can assert which names were actually queried.
type Mock struct {
	mu      sync.Mutex
	records []Record
	nextID  int

	// RecordsCalls counts Records invocations per queried name.
	RecordsCalls map[string]int

	// FailRecords, FailCreate, FailDelete and FailUpdate make the
	// corresponding call return the configured error.
	FailRecords error
	FailCreate  error
	FailDelete  error
	FailUpdate  error
}

var _ Provider = (*Mock)(nil)

// NewMock creates a Mock seeded with the given records. Records without
// an ID are assigned sequential ones ("mock-1", "mock-2", ...).
func NewMock(records ...Record) *Mock {
	m := &Mock{RecordsCalls: map[string]int{}}
	for _, r := range records {
		if r.ID == "" {
			m.nextID++
			r.ID = fmt.Sprintf("mock-%d", m.nextID)
		}
		m.records = append(m.records, r)
	}
	return m
}

// Records returns the records at the given name.
func (m *Mock) Records(ctx context.Context, name string) ([]Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.RecordsCalls[dns.CanonicalName(name)]++
	if m.FailRecords != nil {
		return nil, m.FailRecords
	}

	var out []Record
	for _, r := range m.records {
		if dns.EqualName(r.Name, name) {
			out = append(out, r)
		}
	}
	return out, nil
}

// CreateRecord stores a copy of r with a fresh ID.
func (m *Mock) CreateRecord(ctx context.Context, r Record) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailCreate != nil {
		return Record{}, m.FailCreate
	}

	m.nextID++
	r.ID = fmt.Sprintf("mock-%d", m.nextID)
	m.records = append(m.records, r)
	return r, nil
}

// DeleteRecord removes the record with the given ID.
func (m *Mock) DeleteRecord(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailDelete != nil {
		return m.FailDelete
	}

	for i, r := range m.records {
		if r.ID == id {
			m.records = append(m.records[:i], m.records[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("mock: no record with id %q", id)
}

// All returns a copy of the stored records, for assertions.
func (m *Mock) All() []Record {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Record, len(m.records))
	copy(out, m.records)
	return out
}

// Find returns the stored records whose name and type match, for
// assertions.
func (m *Mock) Find(name, typ string) []Record {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []Record
	for _, r := range m.records {
		if dns.EqualName(r.Name, name) && strings.EqualFold(r.Type, typ) {
			out = append(out, r)
		}
	}
	return out
}

// UpdatableMock is a Mock that also implements RecordUpdater.
type UpdatableMock struct {
	*Mock
}

var _ RecordUpdater = UpdatableMock{}

// UpdateRecord applies the non-nil fields of u to the stored record.
func (m UpdatableMock) UpdateRecord(ctx context.Context, id string, u Update) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailUpdate != nil {
		return Record{}, m.FailUpdate
	}

	for i, r := range m.records {
		if r.ID == id {
			if u.Proxied != nil {
				r.Proxied = *u.Proxied
			}
			m.records[i] = r
			return r, nil
		}
	}
	return Record{}, fmt.Errorf("mock: no record with id %q", id)
}
