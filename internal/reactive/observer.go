package reactive

import (
	"sort"
	"sync"
)

// shouldObserve gates observation during framework phases that populate
// containers without wanting them tracked (prop setup, for instance). The
// code that flips it must restore it.
var shouldObserve = true

// ToggleObserving switches observation on or off process-wide.
func ToggleObserving(value bool) {
	shouldObserve = value
}

// Unobservable marks values that must never be wrapped, such as virtual
// node representations owned by the render layer.
type Unobservable interface {
	Unobservable()
}

// Component marks framework instances. Their containers are not observed
// here (the instance machinery does its own wiring) and Set/Del refuse to
// touch their roots.
type Component interface {
	ComponentMarker()
}

// Observer is attached to each observed container. It owns the shape dep,
// fired when properties are added or removed or a sequence is mutated
// through its intercepted methods.
type Observer struct {
	value any // *Map or *Slice
	dep   *Dep

	// vmCount counts the roots this container backs. Non-zero forbids
	// adding or deleting reactive properties through Set/Del.
	vmCount int
}

// Dep returns the shape dep.
func (ob *Observer) Dep() *Dep {
	return ob.dep
}

// Value returns the wrapped container.
func (ob *Observer) Value() any {
	return ob.value
}

// VMCount reports how many roots this container backs.
func (ob *Observer) VMCount() int {
	return ob.vmCount
}

func newObserver(value any) *Observer {
	ob := &Observer{value: value, dep: newDep()}
	switch v := value.(type) {
	case *Map:
		// Install the back-reference first so self-referencing graphs
		// short-circuit instead of recursing.
		v.ob = ob
		v.walk()
	case *Slice:
		v.ob = ob
		v.observeItems()
	}
	return ob
}

// Observe wraps a container, returning its observer. Re-observation is a
// no-op that returns the existing observer. Primitives, sealed containers,
// marked values and server renders are never observed and yield nil.
func Observe(value any, asRootData bool) *Observer {
	if value == nil {
		return nil
	}
	if _, ok := value.(Unobservable); ok {
		return nil
	}
	if _, ok := value.(Component); ok {
		return nil
	}

	var ob *Observer
	switch v := value.(type) {
	case *Map:
		if v.ob != nil {
			ob = v.ob
		} else if observable() && !v.sealed {
			ob = newObserver(v)
		}
	case *Slice:
		if v.ob != nil {
			ob = v.ob
		} else if observable() && !v.sealed {
			ob = newObserver(v)
		}
	}
	if ob != nil && asRootData {
		ob.vmCount++
	}
	return ob
}

func observable() bool {
	return shouldObserve && !Config.ServerRendering
}

// ObserverOf returns the observer attached to a container, or nil.
func ObserverOf(value any) *Observer {
	switch v := value.(type) {
	case *Map:
		return v.ob
	case *Slice:
		return v.ob
	}
	return nil
}

// property is one keyed slot of a Map. A nil dep means the slot is plain:
// the map was never observed, so reads and writes skip tracking.
type property struct {
	dep     *Dep
	value   any
	childOb *Observer
	shallow bool

	// Composed user accessors, preserved by defineReactive rather than
	// bypassed.
	userGet func() any
	userSet func(any)

	// customSetter runs on every reactive write; collaborators use it for
	// development-time warnings on derived slots.
	customSetter func()
}

// Map is the keyed reactive container. Keys iterate in insertion order.
type Map struct {
	mu     sync.RWMutex
	keys   []string
	props  map[string]*property
	ob     *Observer
	sealed bool
}

// NewMap returns an empty keyed container.
func NewMap() *Map {
	return &Map{props: make(map[string]*property)}
}

// NewMapFrom deep-converts plain Go data into reactive containers. Source
// keys are inserted in sorted order so construction is deterministic.
func NewMapFrom(src map[string]any) *Map {
	m := NewMap()
	keys := make([]string, 0, len(src))
	for k := range src {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		m.setRaw(k, convert(src[k]))
	}
	return m
}

func convert(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return NewMapFrom(t)
	case []any:
		return NewSliceOf(t...)
	}
	return v
}

// Seal marks the container non-extensible: it will never be observed, and
// an already observed map stops converting new keys.
func (m *Map) Seal() {
	m.mu.Lock()
	m.sealed = true
	m.mu.Unlock()
}

// Sealed reports whether the container was sealed.
func (m *Map) Sealed() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sealed
}

// walk converts every existing key into a reactive slot.
func (m *Map) walk() {
	m.mu.RLock()
	keys := make([]string, len(m.keys))
	copy(keys, m.keys)
	m.mu.RUnlock()
	for _, k := range keys {
		DefineReactive(m, k, nil, nil, false)
	}
}

// setRaw stores a plain slot without conversion or notification.
func (m *Map) setRaw(key string, val any) {
	m.mu.Lock()
	prop, ok := m.props[key]
	if !ok {
		prop = &property{}
		m.props[key] = prop
		m.keys = append(m.keys, key)
	}
	prop.value = val
	m.mu.Unlock()
}

// hasOwn reports key presence without recording a dependency.
func (m *Map) hasOwn(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.props[key]
	return ok
}

// deleteKey removes a slot without notification.
func (m *Map) deleteKey(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.props[key]; !ok {
		return
	}
	delete(m.props, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
}

// DefineAccessor installs user get/set functions for a key. A later
// DefineReactive for the same key composes with them instead of replacing
// them.
func (m *Map) DefineAccessor(key string, get func() any, set func(any)) {
	m.mu.Lock()
	prop, ok := m.props[key]
	if !ok {
		prop = &property{}
		m.props[key] = prop
		m.keys = append(m.keys, key)
	}
	prop.userGet = get
	prop.userSet = set
	m.mu.Unlock()
}

// DefineReactive installs a reactive slot for key. A nil val adopts the
// slot's current value (read through a composed user getter when one is
// present); a slot with a user getter but no setter adopts nothing, so
// its held value stays nil. shallow disables recursive observation of the held value; the
// slot's dep still fires on writes.
func DefineReactive(m *Map, key string, val any, customSetter func(), shallow bool) {
	m.mu.Lock()
	prop, ok := m.props[key]
	if !ok {
		prop = &property{}
		m.props[key] = prop
		m.keys = append(m.keys, key)
	}
	if prop.dep == nil {
		prop.dep = newDep()
	}
	prop.shallow = shallow
	prop.customSetter = customSetter
	userGet, userSet := prop.userGet, prop.userSet
	m.mu.Unlock()

	if val == nil && (userGet == nil || userSet != nil) {
		if userGet != nil {
			val = userGet()
		} else {
			m.mu.RLock()
			val = prop.value
			m.mu.RUnlock()
		}
	}

	var childOb *Observer
	if !shallow {
		childOb = Observe(val, false)
	}

	m.mu.Lock()
	if prop.userGet == nil {
		prop.value = val
	}
	prop.childOb = childOb
	m.mu.Unlock()
}

// Get reads a key, recording the slot dep against the current target. A
// read also records the held container's shape dep, so later additions to
// the child notify this reader, and descends through sequences, since
// element access alone is not enough to capture their deps.
func (m *Map) Get(key string) any {
	m.mu.RLock()
	prop, ok := m.props[key]
	m.mu.RUnlock()
	if !ok {
		return nil
	}

	var value any
	if prop.userGet != nil {
		value = prop.userGet()
	} else {
		m.mu.RLock()
		value = prop.value
		m.mu.RUnlock()
	}

	if prop.dep != nil && currentTarget() != nil {
		prop.dep.Depend()
		if prop.childOb != nil {
			prop.childOb.dep.Depend()
			if s, ok := value.(*Slice); ok {
				dependSlice(s)
			}
		}
	}
	return value
}

// Set writes a key. Writing an equal value (NaN included) is a no-op. On
// an observed map a new key becomes a reactive slot and fires the shape
// dep; on a plain map it is stored raw.
func (m *Map) Set(key string, newVal any) {
	m.mu.RLock()
	prop, ok := m.props[key]
	sealed := m.sealed
	ob := m.ob
	m.mu.RUnlock()

	if !ok {
		if ob == nil || sealed {
			m.setRaw(key, newVal)
			return
		}
		DefineReactive(m, key, newVal, nil, false)
		ob.dep.Notify()
		return
	}

	// Accessor without a setter: read-only slot.
	if prop.userGet != nil && prop.userSet == nil {
		return
	}

	var oldVal any
	if prop.userGet != nil {
		oldVal = prop.userGet()
	} else {
		m.mu.RLock()
		oldVal = prop.value
		m.mu.RUnlock()
	}
	if sameValue(oldVal, newVal) {
		return
	}
	if prop.customSetter != nil {
		prop.customSetter()
	}

	if prop.userSet != nil {
		prop.userSet(newVal)
	} else {
		m.mu.Lock()
		prop.value = newVal
		m.mu.Unlock()
	}

	var childOb *Observer
	if !prop.shallow {
		childOb = Observe(newVal, false)
	}
	m.mu.Lock()
	prop.childOb = childOb
	m.mu.Unlock()

	if prop.dep != nil {
		prop.dep.Notify()
	}
}

// Keys returns the key list in insertion order. Enumeration reads the
// container's shape, so the shape dep is recorded.
func (m *Map) Keys() []string {
	if m.ob != nil {
		m.ob.dep.Depend()
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, len(m.keys))
	copy(keys, m.keys)
	return keys
}

// Len returns the number of keys, recording the shape dep.
func (m *Map) Len() int {
	if m.ob != nil {
		m.ob.dep.Depend()
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.keys)
}

// Has reports key presence. Existence is a shape question, so the shape
// dep is recorded.
func (m *Map) Has(key string) bool {
	if m.ob != nil {
		m.ob.dep.Depend()
	}
	return m.hasOwn(key)
}
