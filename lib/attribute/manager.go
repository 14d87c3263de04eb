package attribute

import (
	"fmt"
	"reflect"
	"sync"

	gometrics "github.com/rcrowley/go-metrics"
	"github.com/vkolb/gocomb/stm"
)

// registration pairs a type-erased Storage with the typed value it was
// registered with, so Of[T] can hand back the concrete generic type
// without the Manager itself needing a type parameter.
type registration struct {
	storage Storage
	typed   any // one of *SparseVec[T], *HashMapStorage[T], *PersistentStorage[T]
}

// Manager owns one Storage per registered attribute type and dispatches
// merge/split across all of them for a sew/unsew at a given dimension.
//
// Grounded on the source's AttributeManager together with the
// teacher's Feature/SupportsFeature capability-negotiation pattern
// (lib/db/db.go): each registered storage advertises its Capabilities,
// and Stats()/Capabilities queries mirror DatabaseInfo/SupportsFeature.
type Manager struct {
	mu    sync.RWMutex
	byTyp map[reflect.Type]registration

	sizeHist gometrics.Registry
}

// NewManager creates an empty manager.
func NewManager() *Manager {
	return &Manager{
		byTyp:    make(map[reflect.Type]registration),
		sizeHist: gometrics.NewRegistry(),
	}
}

func typeKey[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// Register installs a dense, sparse-vector-shaped column for T.
func Register[T any](m *Manager, policy BindPolicy, laws UpdateLaws[T]) *SparseVec[T] {
	sv := NewSparseVec[T](policy, laws)
	m.install(typeKey[T](), erasedSparseVec[T]{sv}, sv)
	return sv
}

// RegisterHashMap installs a hash-map-shaped column for T.
func RegisterHashMap[T any](m *Manager, policy BindPolicy, laws UpdateLaws[T]) *HashMapStorage[T] {
	hm := NewHashMapStorage[T](policy, laws)
	m.install(typeKey[T](), erasedHashMap[T]{hm}, hm)
	return hm
}

// RegisterPersistent installs a pebble-backed column for T.
func RegisterPersistent[T any](m *Manager, ps *PersistentStorage[T]) *PersistentStorage[T] {
	m.install(typeKey[T](), erasedPersistent[T]{ps}, ps)
	return ps
}

func (m *Manager) install(typ reflect.Type, storage Storage, typed any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byTyp[typ] = registration{storage: storage, typed: typed}
}

// Of returns the concrete, typed storage previously registered for T
// with Register, for callers that need the generic Read/Write/Remove
// API rather than the type-erased one. It panics if T was never
// registered, or was registered with RegisterHashMap or
// RegisterPersistent: this is a programmer error, the same way a type
// assertion on an unexpected dynamic type is.
func Of[T any](m *Manager) *SparseVec[T] {
	m.mu.RLock()
	defer m.mu.RUnlock()
	reg, ok := m.byTyp[typeKey[T]()]
	if !ok {
		panic(fmt.Sprintf("attribute: type %s was never registered", typeKey[T]()))
	}
	return reg.typed.(*SparseVec[T])
}

// IsRegistered reports whether T has a storage registered, letting
// callers that only optionally consume an attribute type (e.g. the
// geometric alignment check a 3-sew performs only when vertex
// coordinates happen to be present) probe without risking Of's panic.
func IsRegistered[T any](m *Manager) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.byTyp[typeKey[T]()]
	return ok
}

// Extend grows every registered storage so key n is addressable.
func (m *Manager) Extend(n int) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, reg := range m.byTyp {
		reg.storage.Extend(n)
	}
}

// MergeAllAtDim dispatches MergeAt(newKey, k1, k2) to every storage
// whose BindPolicy is affected by a sew at dim, per the affect table.
// The first error aborts the whole dispatch (and, transitively, the
// enclosing STM transaction): no partial attribute state should ever
// commit.
func (m *Manager) MergeAllAtDim(dim uint8, tx *stm.Transaction, newKey, k1, k2 Key) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, reg := range m.byTyp {
		if !reg.storage.Kind().AffectedBySew(dim) {
			continue
		}
		if err := reg.storage.MergeAt(tx, newKey, k1, k2); err != nil {
			return err
		}
	}
	return nil
}

// SplitAllAtDim is the inverse dispatch used by unsew.
func (m *Manager) SplitAllAtDim(dim uint8, tx *stm.Transaction, newK1, newK2, srcKey Key) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, reg := range m.byTyp {
		if !reg.storage.Kind().AffectedBySew(dim) {
			continue
		}
		if err := reg.storage.SplitAt(tx, newK1, newK2, srcKey); err != nil {
			return err
		}
	}
	return nil
}

// sewAffectedPolicies enumerates the BindPolicy kinds the affect table
// ever assigns to a sew dimension; Custom storages are never
// auto-dispatched and so never appear here.
var sewAffectedPolicies = [...]BindPolicy{Vertex, Edge, Face}

// AffectedPolicies returns the BindPolicy kinds a sew at dim must
// merge, per the affect table in spec.md §4.5.
func AffectedPolicies(dim uint8) []BindPolicy {
	var out []BindPolicy
	for _, p := range sewAffectedPolicies {
		if p.AffectedBySew(dim) {
			out = append(out, p)
		}
	}
	return out
}

// MergeByPolicy dispatches MergeAt to every storage of exactly the
// given BindPolicy. Unlike MergeAllAtDim, the caller supplies a key
// triple specific to that one policy's own orbit dimension: a dim-2
// sew, for instance, must merge Vertex storages using 0-cell ids and
// Edge storages using 1-cell ids, which are generally different darts.
func (m *Manager) MergeByPolicy(policy BindPolicy, tx *stm.Transaction, newKey, k1, k2 Key) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, reg := range m.byTyp {
		if reg.storage.Kind() != policy {
			continue
		}
		if err := reg.storage.MergeAt(tx, newKey, k1, k2); err != nil {
			return err
		}
	}
	return nil
}

// SplitByPolicy is the unsew-side counterpart of MergeByPolicy.
func (m *Manager) SplitByPolicy(policy BindPolicy, tx *stm.Transaction, newK1, newK2, srcKey Key) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, reg := range m.byTyp {
		if reg.storage.Kind() != policy {
			continue
		}
		if err := reg.storage.SplitAt(tx, newK1, newK2, srcKey); err != nil {
			return err
		}
	}
	return nil
}

// RemoveAllAt clears key from every registered storage, regardless of
// BindPolicy. Used when a dart that is free in every dimension (so its
// own i-cell id, for every i, is itself) is removed from the map.
func (m *Manager) RemoveAllAt(tx *stm.Transaction, key Key) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, reg := range m.byTyp {
		reg.storage.RemoveAt(tx, key)
	}
}

// ColumnStats reports the live population of every registered column,
// keyed by its Go type name, and records each sample into a go-metrics
// histogram so callers can track population drift over time.
func (m *Manager) ColumnStats() map[string]int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]int, len(m.byTyp))
	for typ, reg := range m.byTyp {
		n := reg.storage.NAttributes()
		out[typ.String()] = n
		gometrics.GetOrRegisterHistogram(typ.String(), m.sizeHist, gometrics.NewUniformSample(1024)).Update(int64(n))
	}
	return out
}
