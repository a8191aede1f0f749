package moderation

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"strings"
	"sync"
	"unicode"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"flowblog/internal/domain"
	"flowblog/internal/pkg/logger"
)

//go:embed wordlist.yaml
var defaultWordlist []byte

type Service interface {
	// Initialize loads the word list. It is safe to call more than once;
	// later calls replace the list.
	Initialize(ctx context.Context) error
	Ready() bool
	// Check reports whether text is free of listed words.
	Check(text string) (bool, error)
	// Matches returns the listed words found in text, in order of appearance.
	Matches(text string) ([]string, error)
}

type wordlist struct {
	Words []string `yaml:"words"`
}

type service struct {
	path   string
	logger *zap.Logger

	mu    sync.RWMutex
	list  *compiledList
	ready bool
}

// compiledList keeps single words for lookup and multi-word entries as
// token sequences that must appear contiguously.
type compiledList struct {
	words   map[string]struct{}
	phrases [][]string
}

func (l *compiledList) size() int {
	return len(l.words) + len(l.phrases)
}

// NewService returns an uninitialized filter. An empty path selects the
// built-in list.
func NewService(path string, log *zap.Logger) Service {
	return &service{path: path, logger: logger.OrNop(log)}
}

func (s *service) Initialize(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data := defaultWordlist
	source := "embedded"
	if s.path != "" {
		b, err := os.ReadFile(s.path)
		if err != nil {
			return fmt.Errorf("failed to read word list: %w", err)
		}
		data = b
		source = s.path
	}

	list, err := parseWordlist(data)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.list = list
	s.ready = true
	s.mu.Unlock()

	s.logger.Info("moderation filter ready", zap.String("source", source), zap.Int("entries", list.size()))
	return nil
}

func (s *service) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

func (s *service) Check(text string) (bool, error) {
	found, err := s.Matches(text)
	if err != nil {
		return false, err
	}
	return len(found) == 0, nil
}

func (s *service) Matches(text string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.ready {
		return nil, domain.ErrFilterNotReady
	}

	tokens := tokenize(text)
	var found []string
	for i, token := range tokens {
		if _, ok := s.list.words[token]; ok {
			found = append(found, token)
		}
		for _, phrase := range s.list.phrases {
			if hasRunAt(tokens, i, phrase) {
				found = append(found, strings.Join(phrase, " "))
			}
		}
	}
	return found, nil
}

func hasRunAt(tokens []string, at int, phrase []string) bool {
	if at+len(phrase) > len(tokens) {
		return false
	}
	for j, p := range phrase {
		if tokens[at+j] != p {
			return false
		}
	}
	return true
}

func parseWordlist(data []byte) (*compiledList, error) {
	var raw wordlist
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse word list: %w", err)
	}

	list := &compiledList{words: make(map[string]struct{}, len(raw.Words))}
	seen := make(map[string]struct{})
	for _, w := range raw.Words {
		tokens := tokenize(w)
		switch len(tokens) {
		case 0:
			continue
		case 1:
			list.words[tokens[0]] = struct{}{}
		default:
			key := strings.Join(tokens, " ")
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			list.phrases = append(list.phrases, tokens)
		}
	}
	return list, nil
}

var leet = map[rune]rune{
	'0': 'o',
	'1': 'i',
	'3': 'e',
	'4': 'a',
	'5': 's',
	'7': 't',
	'@': 'a',
	'$': 's',
}

// tokenize lowercases text, folds leetspeak and splits it into words.
func tokenize(text string) []string {
	folded := strings.Map(func(r rune) rune {
		if f, ok := leet[r]; ok {
			return f
		}
		return unicode.ToLower(r)
	}, text)

	return strings.FieldsFunc(folded, func(r rune) bool {
		return !unicode.IsLetter(r)
	})
}
