package game

// CardTrading - оценка суммы карт: K карт открыты, одна скрыта,
// игрок называет ожидаемую сумму
type CardTrading struct {
	RoundSeconds int
}

const (
	CardMaxValue = 13 // туз..король
)

func cardCount(d Difficulty) int {
	switch d {
	case DifficultyMedium:
		return 5
	case DifficultyHard:
		return 7
	default:
		return 3
	}
}

func NewCardTrading(roundSeconds int) *CardTrading {
	return &CardTrading{RoundSeconds: roundSeconds}
}

func (g *CardTrading) Type() Type { return TypeCardTrading }

func (g *CardTrading) Generate(d Difficulty, index int, _ Progress) *Round {
	n := cardCount(d) + 1 // плюс скрытая карта
	cards := make([]int, n)
	sum := 0
	for i := range cards {
		cards[i] = int(secureRandInt(CardMaxValue)) + 1
		sum += cards[i]
	}

	hidden := int(secureRandInt(int64(n)))

	visible := make([]int, 0, n-1)
	for i, c := range cards {
		if i != hidden {
			visible = append(visible, c)
		}
	}

	return &Round{
		Index:       index,
		Values:      visible,
		HiddenIndex: hidden,
		HiddenValue: cards[hidden],
		GroundTruth: float64(sum),
		Deadline:    g.RoundSeconds,
		Meta:        map[string]any{"cards": n},
	}
}

func (g *CardTrading) Evaluate(r *Round, s *Submission) *Outcome {
	return evaluateGuess(r, s)
}

func (g *CardTrading) MaxPoints(_ *Round) int { return 10 }
