package game

import (
	"crypto/rand"
	"math"
	"math/big"
)

type Type string

const (
	TypeDiceTrading  Type = "dice_trading"
	TypeCardTrading  Type = "card_trading"
	TypeSequence     Type = "sequence"
	TypeMemory       Type = "memory"
	TypeMarketMaking Type = "market_making"
)

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// классификация результата раунда
type Classification string

const (
	ClassPerfect   Classification = "perfect"   // точное совпадение
	ClassCorrect   Classification = "correct"   // положительный исход
	ClassClose     Classification = "close"     // рядом с ответом
	ClassIncorrect Classification = "incorrect"
	ClassTimeout   Classification = "timeout"
	ClassRejected  Classification = "rejected" // невалидный ввод, раунд продолжается
)

// действие контрагента по выставленной котировке
type CounterpartyAction string

const (
	ActionAuto    CounterpartyAction = ""         // информированный контрагент выбирает сторону сам
	ActionHitBid  CounterpartyAction = "hit_bid"  // контрагент продает игроку по биду
	ActionLiftAsk CounterpartyAction = "lift_ask" // контрагент покупает у игрока по аску
)

// Round представляет один раунд: показанные значения, скрытый элемент и правильный ответ.
// Неизменяем после создания.
type Round struct {
	Index       int            `json:"index"`
	Values      []int          `json:"values"`                 // видимые элементы подсказки
	HiddenIndex int            `json:"hidden_index"`           // позиция скрытого элемента, -1 если нет
	HiddenValue int            `json:"-"`                      // скрыто от клиента до конца раунда
	GroundTruth float64        `json:"-"`                      // всегда выводим из prompt детерминированно
	Deadline    int            `json:"deadline"`               // секунд на раунд
	Meta        map[string]any `json:"meta,omitempty"`
}

// Submission - ввод игрока для раунда: котировка, число или последовательность
type Submission struct {
	Bid      *float64           `json:"bid,omitempty"`
	Ask      *float64           `json:"ask,omitempty"`
	Action   CounterpartyAction `json:"action,omitempty"`
	Guess    *float64           `json:"guess,omitempty"`
	Inputs   []int              `json:"inputs,omitempty"`
	TimedOut bool               `json:"timed_out,omitempty"`
}

// Outcome - результат оценки Submission против GroundTruth раунда.
// Не мутируется после создания.
type Outcome struct {
	RoundIndex int            `json:"round_index"`
	Class      Classification `json:"class"`
	PnL        float64        `json:"pnl"`
	Points     int            `json:"points"`
	Side       string         `json:"side,omitempty"`  // buy/sell со стороны игрока
	Price      float64        `json:"price,omitempty"` // цена исполнения
	Final      bool           `json:"final"`           // false => раунд не израсходован
	Detail     string         `json:"detail,omitempty"`
}

// правильный ли ответ (perfect или correct)
func (o *Outcome) IsCorrect() bool {
	return o.Class == ClassPerfect || o.Class == ClassCorrect
}

// прогресс сессии, который нужен генераторам с уровнями (память)
type Progress struct {
	Level  int
	Lives  int
	Streak int
}

// Generator производит раунды и оценивает ответы. Генерация не может
// завершиться ошибкой - только выродиться в валидный тривиальный контент.
type Generator interface {
	Type() Type
	Generate(d Difficulty, index int, prog Progress) *Round
	Evaluate(r *Round, s *Submission) *Outcome
	MaxPoints(r *Round) int
}

// secureRandInt возвращает криптографически безопасное случайное число в [0, max)
func secureRandInt(max int64) int64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(max))
	return n.Int64()
}

// secureRandFloat возвращает криптографически безопасное число в [0.0, 1.0)
func secureRandFloat() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(1<<53))
	return float64(n.Int64()) / float64(1 << 53)
}

// оценивает котировку против справедливой цены. Невалидная котировка
// (bid >= ask, NaN, отсутствует) дает rejected исход, НЕ завершающий раунд.
// Иначе контрагент сделкой выбирает сторону котировки ближе к правде,
// если сторона не задана явно.
func evaluateQuote(r *Round, s *Submission) *Outcome {
	if s.TimedOut {
		// таймаут для котировок - нулевой P&L
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

	truth := r.GroundTruth
	action := s.Action
	if action == ActionAuto {
		// информированный контрагент: торгует по стороне ближе к правде
		if math.Abs(truth-*s.Ask) <= math.Abs(truth-*s.Bid) {
			action = ActionLiftAsk
		} else {
			action = ActionHitBid
		}
	}

	out := &Outcome{RoundIndex: r.Index, Final: true}
	switch action {
	case ActionHitBid:
		// контрагент продает по биду => игрок покупает
		out.Side = "buy"
		out.Price = *s.Bid
		out.PnL = truth - out.Price
	case ActionLiftAsk:
		// контрагент покупает по аску => игрок продает
		out.Side = "sell"
		out.Price = *s.Ask
		out.PnL = out.Price - truth
	}

	if out.PnL >= 0 {
		out.Class = ClassCorrect
	} else {
		out.Class = ClassIncorrect
	}
	return out
}

// оценивает числовой ответ: очки монотонно убывают с |guess - truth|,
// точное совпадение - единственный случай perfect и максимума очков
func evaluateGuess(r *Round, s *Submission) *Outcome {
	if s.TimedOut {
		return &Outcome{RoundIndex: r.Index, Class: ClassTimeout, Final: true}
	}

	if s.Guess == nil || math.IsNaN(*s.Guess) || math.IsInf(*s.Guess, 0) {
		return &Outcome{
			RoundIndex: r.Index,
			Class:      ClassRejected,
			Final:      false,
			Detail:     "нужен числовой ответ",
		}
	}

	diff := math.Abs(*s.Guess - r.GroundTruth)
	points := 10 - int(math.Round(diff))
	if points < 0 {
		points = 0
	}

	out := &Outcome{
		RoundIndex: r.Index,
		Points:     points,
		Final:      true,
	}
	switch {
	case diff == 0:
		out.Class = ClassPerfect
	case diff <= 2:
		out.Class = ClassClose
	default:
		out.Class = ClassIncorrect
	}
	return out
}
