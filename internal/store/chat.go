package store

import "flytz/internal/types"

// Assistant messages seeded into new and cleared conversations.
const (
	ChatGreeting = "Hello! I am your Trip Assistant. Ask me anything about your flight options or travel logistics."
	ChatCleared  = "History cleared. How can I help you with your current trip?"
)

func chatKey(strategyID string) string {
	return KeyChatHistory + ":" + strategyID
}

// ChatHistory returns the conversation for a saved strategy. An empty history
// starts with the assistant greeting.
func (s *Store) ChatHistory(strategyID string) ([]types.ChatMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var msgs []types.ChatMessage
	ok, err := s.readDoc(chatKey(strategyID), &msgs)
	if err != nil {
		return nil, err
	}
	if !ok || len(msgs) == 0 {
		return []types.ChatMessage{{Role: types.RoleModel, Text: ChatGreeting}}, nil
	}
	return msgs, nil
}

// AppendChat adds messages to a conversation, seeding the greeting first when
// the conversation is new.
func (s *Store) AppendChat(strategyID string, msgs ...types.ChatMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var history []types.ChatMessage
	ok, err := s.readDoc(chatKey(strategyID), &history)
	if err != nil {
		return err
	}
	if !ok || len(history) == 0 {
		history = []types.ChatMessage{{Role: types.RoleModel, Text: ChatGreeting}}
	}
	return s.writeDoc(chatKey(strategyID), append(history, msgs...))
}

// ClearChat resets a conversation to the cleared notice.
func (s *Store) ClearChat(strategyID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeDoc(chatKey(strategyID), []types.ChatMessage{{Role: types.RoleModel, Text: ChatCleared}})
}
