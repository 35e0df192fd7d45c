package game

// SequenceTest - продолжение числовых последовательностей.
// Семейство паттернов выбирается равновероятно среди доступных на сложности.
type SequenceTest struct {
	RoundSeconds int
}

type patternFamily string

const (
	patternArithmetic patternFamily = "arithmetic"
	patternGeometric  patternFamily = "geometric"
	patternFibonacci  patternFamily = "fibonacci"
	patternSquares    patternFamily = "squares"

	sequenceShownTerms = 5
)

func sequenceFamilies(d Difficulty) []patternFamily {
	switch d {
	case DifficultyMedium:
		return []patternFamily{patternArithmetic, patternGeometric}
	case DifficultyHard:
		return []patternFamily{patternArithmetic, patternGeometric, patternFibonacci, patternSquares}
	default:
		return []patternFamily{patternArithmetic}
	}
}

func NewSequenceTest(roundSeconds int) *SequenceTest {
	return &SequenceTest{RoundSeconds: roundSeconds}
}

func (g *SequenceTest) Type() Type { return TypeSequence }

// генерирует sequenceShownTerms членов и правильное продолжение.
// Вырожденные случаи (например, постоянная последовательность при diff=0)
// валидны.
func (g *SequenceTest) Generate(d Difficulty, index int, _ Progress) *Round {
	families := sequenceFamilies(d)
	family := families[secureRandInt(int64(len(families)))]

	terms, next := buildSequence(family)

	return &Round{
		Index:       index,
		Values:      terms,
		HiddenIndex: -1,
		GroundTruth: float64(next),
		Deadline:    g.RoundSeconds,
		Meta:        map[string]any{"family": string(family)},
	}
}

func buildSequence(family patternFamily) (terms []int, next int) {
	terms = make([]int, sequenceShownTerms)

	switch family {
	case patternGeometric:
		start := int(secureRandInt(5)) + 1
		ratio := int(secureRandInt(2)) + 2 // 2 или 3
		v := start
		for i := range terms {
			terms[i] = v
			v *= ratio
		}
		next = v
	case patternFibonacci:
		a := int(secureRandInt(5)) + 1
		b := int(secureRandInt(5)) + 1
		for i := range terms {
			terms[i] = a
			a, b = b, a+b
		}
		next = a
	case patternSquares:
		start := int(secureRandInt(4)) + 1
		for i := range terms {
			n := start + i
			terms[i] = n * n
		}
		n := start + sequenceShownTerms
		next = n * n
	default: // арифметическая
		start := int(secureRandInt(20)) + 1
		diff := int(secureRandInt(9)) + 1
		v := start
		for i := range terms {
			terms[i] = v
			v += diff
		}
		next = v
	}
	return terms, next
}

// только точное продолжение засчитывается; близких ответов нет
func (g *SequenceTest) Evaluate(r *Round, s *Submission) *Outcome {
	out := evaluateGuess(r, s)
	if out.Class == ClassClose {
		out.Class = ClassIncorrect
		out.Points = 0
	}
	if out.Class == ClassPerfect {
		out.Points = 10
	} else if out.Final {
		out.Points = 0
	}
	return out
}

func (g *SequenceTest) MaxPoints(_ *Round) int { return 10 }
