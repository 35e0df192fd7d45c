package game

import (
	"math"
	"strconv"
	"sync"
)

// MarketMaking - симулятор маркет-мейкинга: цена идет случайным блужданием,
// игрок держит двустороннюю котировку, контрагент вероятностно исполняет
// отлежавшуюся котировку. Это НЕ матчинг-движок: заливка по вероятности,
// без очереди и размеров.
type MarketMaking struct {
	RoundSeconds int
}

const (
	mmStartPrice = 100.0
	mmFillProb   = 0.35 // вероятность сделки на тик при установленной котировке
)

func mmVolatility(d Difficulty) float64 {
	switch d {
	case DifficultyMedium:
		return 1.0
	case DifficultyHard:
		return 2.0
	default:
		return 0.5
	}
}

func NewMarketMaking(roundSeconds int) *MarketMaking {
	return &MarketMaking{RoundSeconds: roundSeconds}
}

func (g *MarketMaking) Type() Type { return TypeMarketMaking }

// раунд симулятора: prompt - стартовая цена, ответ складывается из сделок
func (g *MarketMaking) Generate(d Difficulty, index int, _ Progress) *Round {
	return &Round{
		Index:       index,
		Values:      []int{int(mmStartPrice)},
		HiddenIndex: -1,
		GroundTruth: mmStartPrice,
		Deadline:    g.RoundSeconds,
		Meta: map[string]any{
			"start_price": mmStartPrice,
			"volatility":  mmVolatility(d),
			"ticks":       g.RoundSeconds,
		},
	}
}

// для симулятора Evaluate проверяет только валидность котировки и таймаут;
// финальный P&L считает MarketSim по окончании раунда
func (g *MarketMaking) Evaluate(r *Round, s *Submission) *Outcome {
	if s.TimedOut {
		return &Outcome{RoundIndex: r.Index, Class: ClassTimeout, Final: true}
	}
	if s.Bid == nil || s.Ask == nil ||
		math.IsNaN(*s.Bid) || math.IsNaN(*s.Ask) ||
		math.IsInf(*s.Bid, 0) || math.IsInf(*s.Ask, 0) ||
		*s.Bid >= *s.Ask {
		return &Outcome{
			RoundIndex: r.Index,
			Class:      ClassRejected,
			Final:      false,
			Detail:     "bid должен быть строго меньше ask",
		}
	}
	// валидная котировка принята как resting quote, раунд продолжается
	return &Outcome{RoundIndex: r.Index, Class: ClassCorrect, Final: false, Detail: "котировка обновлена"}
}

func (g *MarketMaking) MaxPoints(_ *Round) int { return 0 }

// NewSim создает симуляцию для раунда
func (g *MarketMaking) NewSim(d Difficulty) *MarketSim {
	return NewMarketSim(mmStartPrice, mmVolatility(d), mmFillProb)
}

// одна сделка против котировки игрока
type Fill struct {
	Tick  int     `json:"tick"`
	Side  string  `json:"side"` // buy/sell со стороны игрока
	Price float64 `json:"price"`
	Fair  float64 `json:"fair"`
}

// MarketSim держит состояние цены, позиции и кэша в течение раунда
type MarketSim struct {
	mu        sync.Mutex
	price     float64
	vol       float64
	fillProb  float64
	tick      int
	inventory int
	cash      float64
	fills     []Fill
	bid, ask  *float64
}

func NewMarketSim(start, vol, fillProb float64) *MarketSim {
	return &MarketSim{price: start, vol: vol, fillProb: fillProb}
}

// SetQuote обновляет resting quote игрока; валидность проверяет Evaluate
func (m *MarketSim) SetQuote(bid, ask float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, a := bid, ask
	m.bid, m.ask = &b, &a
}

// Tick продвигает цену на один шаг и, если котировка стоит, с вероятностью
// fillProb исполняет ее. Информированная сторона: при цене вне спреда
// контрагент торгует в свою пользу, внутри спреда - шумовой трейдер.
func (m *MarketSim) Tick() *Fill {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.tick++
	// симметричный случайный шаг
	step := (secureRandFloat()*2 - 1) * m.vol
	m.price += step
	if m.price < 1 {
		m.price = 1
	}

	if m.bid == nil || m.ask == nil {
		return nil
	}
	if secureRandFloat() >= m.fillProb {
		return nil
	}

	var side string
	var px float64
	switch {
	case m.price > *m.ask:
		// справедливая цена выше аска - информированный покупает у игрока
		side, px = "sell", *m.ask
	case m.price < *m.bid:
		// справедливая цена ниже бида - информированный продает игроку
		side, px = "buy", *m.bid
	default:
		// внутри спреда: шумовой трейдер, сторона случайна
		if secureRandInt(2) == 0 {
			side, px = "sell", *m.ask
		} else {
			side, px = "buy", *m.bid
		}
	}

	if side == "buy" {
		m.inventory++
		m.cash -= px
	} else {
		m.inventory--
		m.cash += px
	}

	f := Fill{Tick: m.tick, Side: side, Price: px, Fair: m.price}
	m.fills = append(m.fills, f)
	return &f
}

// PnL - реализованный кэш плюс позиция по последней цене
func (m *MarketSim) PnL() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cash + float64(m.inventory)*m.price
}

func (m *MarketSim) Price() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.price
}

func (m *MarketSim) Fills() []Fill {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Fill, len(m.fills))
	copy(out, m.fills)
	return out
}

// FinalOutcome строит финальный исход раунда по состоянию симуляции
func (m *MarketSim) FinalOutcome(roundIndex int) *Outcome {
	m.mu.Lock()
	defer m.mu.Unlock()

	pnl := m.cash + float64(m.inventory)*m.price
	class := ClassCorrect
	if len(m.fills) == 0 {
		// ни одной сделки за раунд - считаем таймаутом без результата
		class = ClassTimeout
	} else if pnl < 0 {
		class = ClassIncorrect
	}

	return &Outcome{
		RoundIndex: roundIndex,
		Class:      class,
		PnL:        pnl,
		Final:      true,
		Detail:     "сделок: " + strconv.Itoa(len(m.fills)),
	}
}
