package game

import "testing"

func TestMarketSim_NoQuoteNoFills(t *testing.T) {
	m := NewMarketSim(100, 1.0, 1.0)

	for i := 0; i < 20; i++ {
		if fill := m.Tick(); fill != nil {
			t.Fatalf("без котировки сделок быть не должно")
		}
	}
	if m.PnL() != 0 {
		t.Fatalf("без сделок P&L должен быть 0, получено %v", m.PnL())
	}
}

// при fillProb=1 и широком рынке каждая сделка внутри спреда
func TestMarketSim_FillsUpdateInventoryAndCash(t *testing.T) {
	m := NewMarketSim(100, 0.0, 1.0) // нулевая волатильность: цена стоит на 100
	m.SetQuote(99, 101)

	fill := m.Tick()
	if fill == nil {
		t.Fatalf("при fillProb=1 сделка обязана произойти")
	}

	switch fill.Side {
	case "buy":
		if fill.Price != 99 {
			t.Fatalf("покупка должна идти по биду 99, получено %v", fill.Price)
		}
	case "sell":
		if fill.Price != 101 {
			t.Fatalf("продажа должна идти по аску 101, получено %v", fill.Price)
		}
	default:
		t.Fatalf("неизвестная сторона %q", fill.Side)
	}

	// при цене 100 любая сделка по нашей котировке дает +1 к P&L
	if pnl := m.PnL(); pnl != 1 {
		t.Fatalf("ожидался P&L +1, получено %v", pnl)
	}
}

// информированный контрагент бьет выгодную ему сторону при цене вне спреда
func TestMarketSim_InformedSideSelection(t *testing.T) {
	m := NewMarketSim(100, 0.0, 1.0)
	// котировка заведомо ниже рынка: цена 100 > ask 91
	m.SetQuote(90, 91)

	fill := m.Tick()
	if fill == nil {
		t.Fatalf("сделка обязана произойти")
	}
	if fill.Side != "sell" || fill.Price != 91 {
		t.Fatalf("контрагент должен купить у игрока по 91, получено %s по %v", fill.Side, fill.Price)
	}
}

func TestMarketSim_FinalOutcome(t *testing.T) {
	m := NewMarketSim(100, 0.0, 1.0)
	m.SetQuote(99, 101)

	for i := 0; i < 10; i++ {
		m.Tick()
	}

	out := m.FinalOutcome(1)
	if !out.Final {
		t.Fatalf("финальный исход должен быть final")
	}
	if out.Class != ClassCorrect {
		t.Fatalf("симметричная котировка на стоячем рынке прибыльна, получено %s", out.Class)
	}
	if out.PnL != 10 {
		t.Fatalf("10 сделок по +1: ожидался P&L 10, получено %v", out.PnL)
	}
}

func TestMarketSim_NoFillsIsTimeout(t *testing.T) {
	m := NewMarketSim(100, 0.0, 1.0)

	out := m.FinalOutcome(1)
	if out.Class != ClassTimeout {
		t.Fatalf("раунд без сделок - timeout, получено %s", out.Class)
	}
}

func TestMarketMakingEvaluate_QuoteValidation(t *testing.T) {
	g := NewMarketMaking(30)
	r := g.Generate(DifficultyEasy, 1, Progress{})

	out := g.Evaluate(r, &Submission{Bid: f(101), Ask: f(100)})
	if out.Class != ClassRejected || out.Final {
		t.Fatalf("перевернутая котировка должна отклоняться")
	}

	out = g.Evaluate(r, &Submission{Bid: f(99), Ask: f(101)})
	if out.Final {
		t.Fatalf("валидная котировка симулятора не завершает раунд")
	}

	out = g.Evaluate(r, &Submission{TimedOut: true})
	if out.Class != ClassTimeout || !out.Final {
		t.Fatalf("таймаут завершает раунд")
	}
}

func TestMarketSim_PriceStaysPositive(t *testing.T) {
	m := NewMarketSim(2, 5.0, 0)
	for i := 0; i < 100; i++ {
		m.Tick()
		if m.Price() < 1 {
			t.Fatalf("цена ушла ниже пола: %v", m.Price())
		}
	}
}
