// list.go: intrusive doubly linked list maintaining eviction order
//
// Copyright (c) 2026 usorama
// SPDX-License-Identifier: MPL-2.0

package vtcache

// evictionList is a doubly linked list threaded through the entries
// themselves. Head is the most recently used position, tail the least
// recently used. All operations are O(1). The list holds no lock; callers
// synchronize through the owning store's mutex.
type evictionList struct {
	head, tail *entry
}

// pushFront links e at the head. e must not currently be in the list.
func (l *evictionList) pushFront(e *entry) {
	e.prev = nil
	e.next = l.head

	if l.head != nil {
		l.head.prev = e
	} else {
		l.tail = e
	}

	l.head = e
}

// remove unlinks e from the list. e must currently be in the list.
func (l *evictionList) remove(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		l.head = e.next
	}

	if e.next != nil {
		e.next.prev = e.prev
	} else {
		l.tail = e.prev
	}

	e.prev = nil
	e.next = nil
}

// moveToFront detaches e and relinks it at the head.
func (l *evictionList) moveToFront(e *entry) {
	if l.head == e {
		return
	}
	l.remove(e)
	l.pushFront(e)
}

// back returns the least recently used entry, or nil if the list is empty.
func (l *evictionList) back() *entry {
	return l.tail
}

// reset drops all links.
func (l *evictionList) reset() {
	l.head = nil
	l.tail = nil
}
