package reactive

import (
	"fmt"

	"github.com/spf13/cast"
)

// Set adds or replaces a property on a container, preserving reactivity
// for keys that did not exist. Accessor-based observation cannot see
// property creation, so additions must come through here (or through
// Map.Set on an observed map, which also makes new keys reactive but
// skips the root-data guard).
func Set(target any, key any, val any) any {
	if _, ok := target.(Component); ok {
		warn("avoid adding reactive properties to a framework instance at runtime", target)
		return val
	}

	switch t := target.(type) {
	case *Slice:
		idx, err := cast.ToIntE(key)
		if err != nil || idx < 0 {
			warn(fmt.Sprintf("invalid sequence index: %v", key), target)
			return val
		}
		if idx >= t.rawLen() {
			t.extend(idx)
		}
		t.Splice(idx, 1, val)
		return val

	case *Map:
		k, err := cast.ToStringE(key)
		if err != nil {
			warn(fmt.Sprintf("invalid property key: %v", key), target)
			return val
		}
		if t.hasOwn(k) {
			t.Set(k, val)
			return val
		}
		ob := t.ob
		if ob != nil && ob.vmCount > 0 {
			warn("avoid adding reactive properties to root data at runtime; declare it upfront instead", target)
			return val
		}
		if ob == nil || t.Sealed() {
			t.setRaw(k, val)
			return val
		}
		DefineReactive(t, k, val, nil, false)
		ob.dep.Notify()
		return val
	}

	warn(fmt.Sprintf("cannot set reactive property on undefined, nil, or primitive value: %v", target), nil)
	return val
}

// Del removes a property from a container, firing the shape dep when the
// container is observed. Removal, like creation, is invisible to
// accessors and must come through here.
func Del(target any, key any) {
	if _, ok := target.(Component); ok {
		warn("avoid deleting properties on a framework instance", target)
		return
	}

	switch t := target.(type) {
	case *Slice:
		idx, err := cast.ToIntE(key)
		if err != nil || idx < 0 || idx >= t.rawLen() {
			return
		}
		t.Splice(idx, 1)
		return

	case *Map:
		k, err := cast.ToStringE(key)
		if err != nil {
			return
		}
		ob := t.ob
		if ob != nil && ob.vmCount > 0 {
			warn("avoid deleting properties on root data; set it to nil instead", target)
			return
		}
		if !t.hasOwn(k) {
			return
		}
		t.deleteKey(k)
		if ob != nil {
			ob.dep.Notify()
		}
		return
	}

	warn(fmt.Sprintf("cannot delete reactive property on undefined, nil, or primitive value: %v", target), nil)
}
