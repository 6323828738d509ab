// Package chunker splits document text into overlapping word-bounded windows.
package chunker

import "strings"

// Default chunking parameters, matching the corpus defaults.
const (
	// DefaultTargetWords is the default window size in words.
	DefaultTargetWords = 200

	// DefaultOverlapWords is the default number of words shared between
	// consecutive windows.
	DefaultOverlapWords = 30

	// DefaultMinWords is the smallest window worth emitting on its own.
	DefaultMinWords = 15
)

// Splitter builds fixed-size overlapping word windows from text.
// Splitting is deterministic: identical input and parameters always yield
// an identical sequence of chunks.
type Splitter struct {
	targetWords  int
	overlapWords int
	minWords     int
}

// Option configures a Splitter.
type Option func(*Splitter)

// WithTargetWords sets the window size in words.
func WithTargetWords(n int) Option {
	return func(s *Splitter) {
		if n > 0 {
			s.targetWords = n
		}
	}
}

// WithOverlapWords sets the overlap between consecutive windows in words.
func WithOverlapWords(n int) Option {
	return func(s *Splitter) {
		if n >= 0 {
			s.overlapWords = n
		}
	}
}

// WithMinWords sets the minimum word count for a trailing window.
func WithMinWords(n int) Option {
	return func(s *Splitter) {
		if n > 0 {
			s.minWords = n
		}
	}
}

// New creates a Splitter with the given options.
func New(opts ...Option) *Splitter {
	s := &Splitter{
		targetWords:  DefaultTargetWords,
		overlapWords: DefaultOverlapWords,
		minWords:     DefaultMinWords,
	}

	for _, opt := range opts {
		opt(s)
	}

	// Overlap must leave the step positive
	if s.overlapWords >= s.targetWords {
		s.overlapWords = s.targetWords / 4
	}

	return s
}

// Split divides text into word windows of targetWords words, each window
// starting targetWords-overlapWords words after the previous one. Words are
// never split: boundaries always fall on whitespace.
//
// A trailing window shorter than minWords is not emitted on its own; its
// uncovered words are folded into the previous chunk so no text is lost.
// Text shorter than minWords in total yields a single chunk containing the
// whole text. Empty or all-whitespace text yields no chunks.
func (s *Splitter) Split(text string) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	if len(words) < s.minWords {
		return []string{strings.Join(words, " ")}
	}

	step := s.targetWords - s.overlapWords
	var chunks []string

	for start := 0; start < len(words); start += step {
		end := start + s.targetWords
		if end > len(words) {
			end = len(words)
		}

		if end-start < s.minWords && len(chunks) > 0 {
			// Trailing fragment: fold the words not yet covered by the
			// previous window into the last chunk.
			prevEnd := start + s.overlapWords
			if prevEnd < len(words) {
				chunks[len(chunks)-1] += " " + strings.Join(words[prevEnd:], " ")
			}
			break
		}

		chunks = append(chunks, strings.Join(words[start:end], " "))

		if end == len(words) {
			break
		}
	}

	return chunks
}

// TargetWords returns the configured window size.
func (s *Splitter) TargetWords() int { return s.targetWords }

// OverlapWords returns the configured overlap.
func (s *Splitter) OverlapWords() int { return s.overlapWords }

// MinWords returns the configured minimum trailing window size.
func (s *Splitter) MinWords() int { return s.minWords }
