package questions

import "testing"

func TestBankQuery_FilterByCategory(t *testing.T) {
	b := NewStaticBank()

	qs := b.Query(Filter{Category: CategoryMentalMath})
	if len(qs) == 0 {
		t.Fatalf("банк устного счета пуст")
	}
	for _, q := range qs {
		if q.Category != CategoryMentalMath {
			t.Fatalf("чужая категория в выборке: %s", q.Category)
		}
	}
}

func TestBankQuery_FilterByDifficulty(t *testing.T) {
	b := NewStaticBank()

	qs := b.Query(Filter{Category: CategoryBrainteaser, Difficulty: DifficultyHard})
	for _, q := range qs {
		if q.Difficulty != DifficultyHard {
			t.Fatalf("чужая сложность в выборке: %s", q.Difficulty)
		}
	}
}

func TestBankQuery_EmptyFilterReturnsAll(t *testing.T) {
	b := NewStaticBank()
	if len(b.Query(Filter{})) != len(defaultQuestions) {
		t.Fatalf("пустой фильтр должен возвращать весь банк")
	}
}

func TestBankRandom(t *testing.T) {
	b := NewStaticBank()

	q, err := b.Random(Filter{Category: CategoryFit})
	if err != nil {
		t.Fatalf("Random: %v", err)
	}
	if q.Category != CategoryFit {
		t.Fatalf("Random вернул чужую категорию: %s", q.Category)
	}

	if _, err := b.Random(Filter{Category: "nonexistent"}); err != ErrNoMatch {
		t.Fatalf("под пустой фильтр ожидался ErrNoMatch, получено %v", err)
	}
}

func TestBankFirms(t *testing.T) {
	b := NewStaticBank()

	firms := b.Firms()
	if len(firms) == 0 {
		t.Fatalf("профили фирм пусты")
	}

	f, ok := b.FirmBySlug(firms[0].Slug)
	if !ok || f.Name != firms[0].Name {
		t.Fatalf("FirmBySlug не нашел %q", firms[0].Slug)
	}
	if _, ok := b.FirmBySlug("nope"); ok {
		t.Fatalf("несуществующий slug не должен находиться")
	}
}
