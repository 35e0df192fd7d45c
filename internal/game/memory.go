package game

import "strconv"

// MemoryTest - запоминание последовательности цифр. Длина последовательности
// равна уровню; ошибка стоит жизнь и раунд повторяется на том же уровне.
type MemoryTest struct {
	RoundSeconds int
}

const (
	MemoryStartLevel = 1
	MemoryMaxLevel   = 10
	MemoryLives      = 3
)

func NewMemoryTest(roundSeconds int) *MemoryTest {
	return &MemoryTest{RoundSeconds: roundSeconds}
}

func (g *MemoryTest) Type() Type { return TypeMemory }

// генерирует последовательность цифр длиной prog.Level
func (g *MemoryTest) Generate(d Difficulty, index int, prog Progress) *Round {
	level := prog.Level
	if level < MemoryStartLevel {
		level = MemoryStartLevel
	}

	// на высокой сложности последовательность растет быстрее
	length := level
	if d == DifficultyHard {
		length = level + 2
	}

	seq := make([]int, length)
	for i := range seq {
		seq[i] = int(secureRandInt(10))
	}

	return &Round{
		Index:       index,
		Values:      seq,
		HiddenIndex: -1,
		GroundTruth: float64(len(seq)), // длина; сам ответ - вся последовательность
		Deadline:    g.RoundSeconds,
		Meta:        map[string]any{"level": level, "length": length},
	}
}

// сравнивает ввод поэлементно; первая ошибка завершает раунд
func (g *MemoryTest) Evaluate(r *Round, s *Submission) *Outcome {
	if s.TimedOut {
		return &Outcome{RoundIndex: r.Index, Class: ClassTimeout, Final: true}
	}

	if len(s.Inputs) == 0 {
		return &Outcome{
			RoundIndex: r.Index,
			Class:      ClassRejected,
			Final:      false,
			Detail:     "нужна последовательность цифр",
		}
	}

	for i, v := range s.Inputs {
		if i >= len(r.Values) || v != r.Values[i] {
			return &Outcome{
				RoundIndex: r.Index,
				Class:      ClassIncorrect,
				Final:      true,
				Detail:     "ошибка на позиции " + strconv.Itoa(i+1),
			}
		}
	}
	if len(s.Inputs) < len(r.Values) {
		return &Outcome{
			RoundIndex: r.Index,
			Class:      ClassIncorrect,
			Final:      true,
			Detail:     "последовательность короче загаданной",
		}
	}

	return &Outcome{
		RoundIndex: r.Index,
		Class:      ClassPerfect,
		Points:     g.MaxPoints(r),
		Final:      true,
	}
}

// очки растут с уровнем
func (g *MemoryTest) MaxPoints(r *Round) int {
	return len(r.Values) * 2
}
