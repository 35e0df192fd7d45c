package ai

import "context"

// Message - реплика диалога арены
type Message struct {
	Role    string `json:"role"` // system / user / assistant
	Content string `json:"content"`
}

// ChatOptions - параметры генерации ответа интервьюера
type ChatOptions struct {
	System      string // системный промпт (профиль фирмы)
	Language    string
	Temperature float64
}

// ChatProvider генерирует ответ интервьюера по истории диалога.
// Реализации не хранят состояние между вызовами.
type ChatProvider interface {
	Name() string
	Reply(ctx context.Context, messages []Message, opts ChatOptions) (string, error)
}

// SpeechProvider синтезирует речь; возвращает аудио (mpeg)
type SpeechProvider interface {
	Name() string
	Synthesize(ctx context.Context, text, language string) ([]byte, error)
}
