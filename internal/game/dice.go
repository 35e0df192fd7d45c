package game

// DiceTrading - маркет-мейкинг на кубиках: игрок котирует сумму всех кубиков,
// один из которых скрыт. Контрагент всегда информирован.
type DiceTrading struct {
	RoundSeconds int
}

const (
	DiceFaces = 6
)

// количество кубиков по сложности
func diceCount(d Difficulty) int {
	switch d {
	case DifficultyMedium:
		return 4
	case DifficultyHard:
		return 5
	default:
		return 3
	}
}

func NewDiceTrading(roundSeconds int) *DiceTrading {
	return &DiceTrading{RoundSeconds: roundSeconds}
}

func (g *DiceTrading) Type() Type { return TypeDiceTrading }

// бросает N кубиков и скрывает один равновероятно; правильный ответ -
// сумма всех, включая скрытый
func (g *DiceTrading) Generate(d Difficulty, index int, _ Progress) *Round {
	n := diceCount(d)
	faces := make([]int, n)
	sum := 0
	for i := range faces {
		faces[i] = int(secureRandInt(DiceFaces)) + 1
		sum += faces[i]
	}

	hidden := int(secureRandInt(int64(n)))

	visible := make([]int, 0, n-1)
	for i, f := range faces {
		if i != hidden {
			visible = append(visible, f)
		}
	}

	return &Round{
		Index:       index,
		Values:      visible,
		HiddenIndex: hidden,
		HiddenValue: faces[hidden],
		GroundTruth: float64(sum),
		Deadline:    g.RoundSeconds,
		Meta:        map[string]any{"dice": n},
	}
}

func (g *DiceTrading) Evaluate(r *Round, s *Submission) *Outcome {
	return evaluateQuote(r, s)
}

// в котировочном режиме очки не начисляются, счет ведется по P&L
func (g *DiceTrading) MaxPoints(_ *Round) int { return 0 }
