package reactive

// traverse touches every property reachable from val so a deep watcher
// subscribes to the whole graph. Observed containers are visited at most
// once per traversal, keyed by their shape dep id, which makes cyclic
// graphs safe.
func traverse(val any) {
	seen := make(map[uint64]struct{})
	traverseValue(val, seen)
}

func traverseValue(val any, seen map[uint64]struct{}) {
	m, isMap := val.(*Map)
	s, isSlice := val.(*Slice)
	if !isMap && !isSlice {
		return
	}
	if ob := ObserverOf(val); ob != nil {
		if _, ok := seen[ob.dep.id]; ok {
			return
		}
		seen[ob.dep.id] = struct{}{}
	}
	if isSlice {
		if s.Sealed() {
			return
		}
		n := s.Len()
		for i := 0; i < n; i++ {
			traverseValue(s.Index(i), seen)
		}
		return
	}
	if m.Sealed() {
		return
	}
	for _, k := range m.Keys() {
		traverseValue(m.Get(k), seen)
	}
}
