package questions

import (
	"crypto/rand"
	"errors"
	"math/big"
)

type Category string

const (
	CategoryBrainteaser Category = "brainteaser"
	CategoryMentalMath  Category = "mental_math"
	CategoryFit         Category = "fit"
)

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

var ErrNoMatch = errors.New("нет вопросов под фильтр")

// Question - один вопрос банка; Answer показывается после ответа игрока
type Question struct {
	ID         string     `json:"id"`
	Category   Category   `json:"category"`
	Difficulty Difficulty `json:"difficulty"`
	Prompt     string     `json:"prompt"`
	Answer     string     `json:"answer,omitempty"`
}

// Firm - профиль фирмы для арены: задает тон интервьюера
type Firm struct {
	Slug        string `json:"slug"`
	Name        string `json:"name"`
	Style       string `json:"style"`
	Description string `json:"description"`
}

type Filter struct {
	Category   Category
	Difficulty Difficulty
}

// Bank - инжектируемый read-only источник вопросов и профилей фирм.
// Не синглтон: реализацию можно заменить на постоянное хранилище.
type Bank interface {
	Query(f Filter) []Question
	Random(f Filter) (Question, error)
	Firms() []Firm
	FirmBySlug(slug string) (Firm, bool)
}

// StaticBank держит банк в памяти; данные неизменяемы после создания
type StaticBank struct {
	questions []Question
	firms     []Firm
}

func NewStaticBank() *StaticBank {
	return &StaticBank{questions: defaultQuestions, firms: defaultFirms}
}

func (b *StaticBank) Query(f Filter) []Question {
	out := make([]Question, 0, len(b.questions))
	for _, q := range b.questions {
		if f.Category != "" && q.Category != f.Category {
			continue
		}
		if f.Difficulty != "" && q.Difficulty != f.Difficulty {
			continue
		}
		out = append(out, q)
	}
	return out
}

func (b *StaticBank) Random(f Filter) (Question, error) {
	matched := b.Query(f)
	if len(matched) == 0 {
		return Question{}, ErrNoMatch
	}
	return matched[randInt(len(matched))], nil
}

func (b *StaticBank) Firms() []Firm {
	out := make([]Firm, len(b.firms))
	copy(out, b.firms)
	return out
}

func (b *StaticBank) FirmBySlug(slug string) (Firm, bool) {
	for _, f := range b.firms {
		if f.Slug == slug {
			return f, true
		}
	}
	return Firm{}, false
}

func randInt(n int) int {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0
	}
	return int(v.Int64())
}
