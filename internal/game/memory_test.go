package game

import "testing"

// сценарий: уровень 3, загадано [2,7,1], введено [2,7,0] =>
// ошибка на третьей позиции, раунд завершен неуспехом
func TestMemoryEvaluate_MismatchAtThird(t *testing.T) {
	g := NewMemoryTest(30)
	r := &Round{
		Index:       1,
		Values:      []int{2, 7, 1},
		HiddenIndex: -1,
		Meta:        map[string]any{"level": 3},
	}

	out := g.Evaluate(r, &Submission{Inputs: []int{2, 7, 0}})
	if out.Class != ClassIncorrect {
		t.Fatalf("ожидался incorrect, получено %s", out.Class)
	}
	if !out.Final {
		t.Fatalf("ошибка должна завершать раунд")
	}
	if out.Detail != "ошибка на позиции 3" {
		t.Fatalf("неожиданная деталь: %q", out.Detail)
	}
}

func TestMemoryEvaluate_ExactMatch(t *testing.T) {
	g := NewMemoryTest(30)
	r := &Round{Index: 1, Values: []int{4, 0, 9, 3}}

	out := g.Evaluate(r, &Submission{Inputs: []int{4, 0, 9, 3}})
	if out.Class != ClassPerfect {
		t.Fatalf("полное совпадение должно давать perfect, получено %s", out.Class)
	}
	if out.Points != g.MaxPoints(r) {
		t.Fatalf("perfect должен давать максимум очков")
	}
}

func TestMemoryEvaluate_ShortInput(t *testing.T) {
	g := NewMemoryTest(30)
	r := &Round{Index: 1, Values: []int{4, 0, 9}}

	out := g.Evaluate(r, &Submission{Inputs: []int{4, 0}})
	if out.Class != ClassIncorrect || !out.Final {
		t.Fatalf("короткий ввод - проигрыш раунда, получено %s final=%v", out.Class, out.Final)
	}
}

func TestMemoryEvaluate_EmptyInputRejected(t *testing.T) {
	g := NewMemoryTest(30)
	r := &Round{Index: 1, Values: []int{4, 0, 9}}

	out := g.Evaluate(r, &Submission{})
	if out.Class != ClassRejected || out.Final {
		t.Fatalf("пустой ввод должен отклоняться без расхода раунда")
	}
}

func TestMemoryGenerate_LengthByLevel(t *testing.T) {
	g := NewMemoryTest(30)

	r := g.Generate(DifficultyEasy, 1, Progress{Level: 3})
	if len(r.Values) != 3 {
		t.Fatalf("уровень 3: ожидалась длина 3, получено %d", len(r.Values))
	}

	r = g.Generate(DifficultyHard, 1, Progress{Level: 3})
	if len(r.Values) != 5 {
		t.Fatalf("hard уровень 3: ожидалась длина 5, получено %d", len(r.Values))
	}

	for _, v := range r.Values {
		if v < 0 || v > 9 {
			t.Fatalf("цифра вне диапазона: %d", v)
		}
	}
}
