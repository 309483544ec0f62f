package core

import (
	"fmt"
	"sync"
)

// Translation tags understood by the backend.
const (
	TagZh2En = "zh2En"
	TagEn2Zh = "en2Zh"
)

// TranslationTags lists the selectable translation tags in display order.
var TranslationTags = []string{TagZh2En, TagEn2Zh}

// TagProvider supplies the translation tag read at the start of each turn.
// Nil means no translation.
type TagProvider interface {
	Translation() *string
}

// TagSelector is a TagProvider the user can change.
type TagSelector interface {
	TagProvider
	Toggle(tag string) (string, error)
	Clear()
}

// TagState is the shared translation selection.
type TagState struct {
	mu          sync.RWMutex
	translation string
}

// NewTagState creates a state with an initial tag, or none when empty.
func NewTagState(initial string) (*TagState, error) {
	if initial != "" && !ValidTag(initial) {
		return nil, fmt.Errorf("unknown translation tag %q", initial)
	}
	return &TagState{translation: initial}, nil
}

// ValidTag reports whether tag is a known translation tag.
func ValidTag(tag string) bool {
	for _, t := range TranslationTags {
		if t == tag {
			return true
		}
	}
	return false
}

// Translation returns a copy of the current tag, or nil.
func (s *TagState) Translation() *string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.translation == "" {
		return nil
	}
	tag := s.translation
	return &tag
}

// Current returns the current tag, or "".
func (s *TagState) Current() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.translation
}

// Toggle selects tag, or clears the selection when tag is already selected.
// It returns the tag in effect afterwards.
func (s *TagState) Toggle(tag string) (string, error) {
	if !ValidTag(tag) {
		return "", fmt.Errorf("unknown translation tag %q", tag)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.translation == tag {
		s.translation = ""
	} else {
		s.translation = tag
	}
	return s.translation, nil
}

// Clear removes the selection.
func (s *TagState) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.translation = ""
}
