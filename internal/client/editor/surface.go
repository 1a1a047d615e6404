// Package editor provides the editing surfaces that own drawing content.
//
// Changes made by the user are reported to OnChange listeners. Content put
// in place by the program itself (Restore, Empty) is not reported.
package editor

import (
	"bytes"
	"sync"
)

type Surface interface {
	Serialize() []byte
	Restore(data []byte) error
	Empty() error
	IsEmpty() bool
	OnChange(fn func())
	// Edit replaces the content on behalf of the user and notifies
	// listeners.
	Edit(data []byte) error
}

type listeners struct {
	mu  sync.Mutex
	fns []func()
}

func (l *listeners) add(fn func()) {
	l.mu.Lock()
	l.fns = append(l.fns, fn)
	l.mu.Unlock()
}

func (l *listeners) fire() {
	l.mu.Lock()
	fns := append([]func(){}, l.fns...)
	l.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

func blank(data []byte) bool {
	return len(bytes.TrimSpace(data)) == 0
}

// MemorySurface keeps the drawing in memory.
type MemorySurface struct {
	listeners
	mu      sync.RWMutex
	content []byte
}

func NewMemorySurface() *MemorySurface {
	return &MemorySurface{}
}

func (s *MemorySurface) Serialize() []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return bytes.Clone(s.content)
}

func (s *MemorySurface) Restore(data []byte) error {
	s.mu.Lock()
	s.content = bytes.Clone(data)
	s.mu.Unlock()
	return nil
}

func (s *MemorySurface) Empty() error {
	return s.Restore(nil)
}

func (s *MemorySurface) IsEmpty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return blank(s.content)
}

func (s *MemorySurface) OnChange(fn func()) {
	s.add(fn)
}

func (s *MemorySurface) Edit(data []byte) error {
	if err := s.Restore(data); err != nil {
		return err
	}
	s.fire()
	return nil
}
