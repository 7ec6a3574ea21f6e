package worker

import (
	"sync"
	"unicode/utf8"

	"github.com/optifeed/optifeed/internal/models"
)

const (
	MIN_MESSAGES_TO_KEEP = 4
	MAX_CONTEXT_LENGTH   = 8000
	MAX_MESSAGES         = 50
)

// ContextStore keeps per-user conversation turns between ask tasks. The
// worker gets one injected so the in-memory default can be swapped for a
// distributed backend without touching call sites.
type ContextStore interface {
	Get(userID int64) []models.ConversationTurn
	Append(userID int64, turn models.ConversationTurn)
	Clear(userID int64)
}

// TrimContext bounds a context without ever reordering or dropping from the
// middle: only the oldest turns go. Small contexts are untouched; oversized
// ones keep the longest suffix fitting the character budget, with a floor of
// MIN_MESSAGES_TO_KEEP turns and a hard cap of MAX_MESSAGES turns.
func TrimContext(turns []models.ConversationTurn) []models.ConversationTurn {
	if len(turns) <= MIN_MESSAGES_TO_KEEP {
		return turns
	}

	total := 0
	for _, turn := range turns {
		total += utf8.RuneCountInString(turn.Content)
	}

	trimmed := turns
	if total > MAX_CONTEXT_LENGTH {
		running := 0
		start := len(turns)
		for i := len(turns) - 1; i >= 0; i-- {
			length := utf8.RuneCountInString(turns[i].Content)
			if running+length > MAX_CONTEXT_LENGTH {
				break
			}
			running += length
			start = i
		}
		trimmed = turns[start:]

		// Only enormous individual turns can leave us short; force-keep
		// the most recent MIN_MESSAGES_TO_KEEP regardless of length.
		if len(trimmed) < MIN_MESSAGES_TO_KEEP {
			trimmed = turns[len(turns)-MIN_MESSAGES_TO_KEEP:]
		}
	}

	if len(trimmed) > MAX_MESSAGES {
		trimmed = trimmed[len(trimmed)-MAX_MESSAGES:]
	}

	return trimmed
}

// InMemoryContextStore is the default backend: process-lifetime only, gone on
// restart by design.
type InMemoryContextStore struct {
	mu       sync.Mutex
	contexts map[int64][]models.ConversationTurn
}

func NewInMemoryContextStore() *InMemoryContextStore {
	return &InMemoryContextStore{
		contexts: make(map[int64][]models.ConversationTurn),
	}
}

func (s *InMemoryContextStore) Get(userID int64) []models.ConversationTurn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.ConversationTurn(nil), s.contexts[userID]...)
}

func (s *InMemoryContextStore) Append(userID int64, turn models.ConversationTurn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contexts[userID] = TrimContext(append(s.contexts[userID], turn))
}

func (s *InMemoryContextStore) Clear(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.contexts, userID)
}
