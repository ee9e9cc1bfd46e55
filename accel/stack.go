package accel

// An entry of the traversal stack: a node that still needs to be visited and
// the distance at which the ray enters its bounds.
type StackEntry struct {
	Ref  NodeRef
	Dist float32
}

// Stack is the bounded LIFO used by a single ray traversal. The zero value is
// an empty stack. It lives inside the traversal frame so queries do not
// allocate.
type Stack struct {
	entries   [StackSize]StackEntry
	top       int
	highWater int
}

// Push a node to the stack. Overflowing the stack is an invariant violation.
func (s *Stack) Push(ref NodeRef, dist float32) {
	if s.top == StackSize {
		invariantf("traversal stack overflow (%d entries)", StackSize)
	}
	s.entries[s.top] = StackEntry{Ref: ref, Dist: dist}
	s.top++
	if s.top > s.highWater {
		s.highWater = s.top
	}
}

// Pop the most recently pushed entry.
func (s *Stack) Pop() (StackEntry, bool) {
	if s.top == 0 {
		return StackEntry{}, false
	}
	s.top--
	return s.entries[s.top], true
}

// Get the most recently pushed entry without removing it.
func (s *Stack) Peek() (StackEntry, bool) {
	if s.top == 0 {
		return StackEntry{}, false
	}
	return s.entries[s.top-1], true
}

// Pop entries until one whose distance does not exceed tfar is found. It
// returns that entry and the number of discarded entries.
func (s *Stack) PopReachable(tfar float32) (entry StackEntry, discarded int, ok bool) {
	for s.top > 0 {
		s.top--
		entry = s.entries[s.top]
		if entry.Dist <= tfar {
			return entry, discarded, true
		}
		discarded++
	}
	return StackEntry{}, discarded, false
}

// Remove all entries whose distance exceeds tfar, keeping the relative order
// of the remaining ones. Returns the number of removed entries.
func (s *Stack) Prune(tfar float32) int {
	kept := 0
	for i := 0; i < s.top; i++ {
		if s.entries[i].Dist <= tfar {
			s.entries[kept] = s.entries[i]
			kept++
		}
	}
	removed := s.top - kept
	s.top = kept
	return removed
}

// Number of live entries.
func (s *Stack) Len() int {
	return s.top
}

// The max number of live entries since the last Reset.
func (s *Stack) HighWater() int {
	return s.highWater
}

// Empty the stack and clear its high water mark.
func (s *Stack) Reset() {
	s.top = 0
	s.highWater = 0
}
