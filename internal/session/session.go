package session

import (
	"errors"
	"sync"
	"time"

	"quant_trainer/internal/game"
)

type Phase string

const (
	PhaseIntro   Phase = "intro"
	PhasePlaying Phase = "playing"
	PhaseResults Phase = "results"
)

type SubPhase string

const (
	SubPhaseAwaitingInput   SubPhase = "awaiting_input"
	SubPhaseAwaitingAdvance SubPhase = "awaiting_advance"
)

var (
	ErrInvalidPhase  = errors.New("действие недопустимо в текущей фазе")
	ErrNoActiveRound = errors.New("нет активного раунда")
)

// конфигурация одной сессии; при рестарте переносится без изменений
type Config struct {
	Game         game.Type
	Difficulty   game.Difficulty
	TotalRounds  int
	RoundSeconds int
	AdvanceDelay time.Duration // пауза показа результата перед следующим раундом
}

// событие сессии для live-стрима (таймер, фазы, исходы)
type Event struct {
	SessionID string         `json:"session_id"`
	Type      string         `json:"type"`
	Payload   map[string]any `json:"payload,omitempty"`
}

// Sink получает события сессии. Не должен блокировать.
type Sink func(Event)

// Session - конечный автомат одной тренировки: intro -> playing -> results.
// Владеет своими раундами, ответами и исходами; ровно один активный раунд
// пока phase = playing. Все таймеры - явные отменяемые хендлы,
// освобождаемые при любом выходе из playing.
type Session struct {
	ID     string
	UserID int64
	Config Config

	mu           sync.Mutex
	phase        Phase
	subPhase     SubPhase
	gen          game.Generator
	current      *game.Round
	rounds       []*game.Round
	subs         []*game.Submission
	outcomes     []*game.Outcome
	totalPoints  int
	totalPnL     float64
	streak       int
	bestStreak   int
	prog         game.Progress
	sim          *game.MarketSim
	timer        *RoundTimer
	timerRound   int // защита от устаревших таймеров
	advanceTimer *time.Timer
	tickInterval time.Duration
	sink         Sink
	onFinish     func(*Session)
	startedAt    time.Time
}

// генераторы, раунд которых ведет тиковая симуляция
type simFactory interface {
	NewSim(d game.Difficulty) *game.MarketSim
}

func New(id string, userID int64, cfg Config, gen game.Generator, sink Sink) *Session {
	if sink == nil {
		sink = func(Event) {}
	}
	return &Session{
		ID:           id,
		UserID:       userID,
		Config:       cfg,
		phase:        PhaseIntro,
		gen:          gen,
		prog:         game.Progress{Level: game.MemoryStartLevel, Lives: game.MemoryLives},
		tickInterval: time.Second,
		sink:         sink,
	}
}

// SetOnFinish задает колбэк завершения (персистентность, рейтинг)
func (s *Session) SetOnFinish(fn func(*Session)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onFinish = fn
}

// Start переводит intro -> playing и запускает первый раунд
func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseIntro {
		return ErrInvalidPhase
	}
	s.phase = PhasePlaying
	s.startedAt = time.Now()
	s.emit("phase", map[string]any{"phase": string(PhasePlaying)})
	s.startRoundLocked()
	return nil
}

// Submit оценивает ввод игрока для активного раунда. Невалидный ввод
// возвращает rejected исход и НЕ расходует раунд - игрок может
// переотправить до истечения таймера.
func (s *Session) Submit(sub *game.Submission) (*game.Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhasePlaying {
		return nil, ErrInvalidPhase
	}
	if s.subPhase != SubPhaseAwaitingInput || s.current == nil {
		return nil, ErrNoActiveRound
	}

	out := s.gen.Evaluate(s.current, sub)
	if !out.Final {
		// для симулятора валидная котировка обновляет resting quote
		if s.sim != nil && out.Class != game.ClassRejected {
			s.sim.SetQuote(*sub.Bid, *sub.Ask)
		}
		return out, nil
	}

	s.finalizeLocked(sub, out)
	return out, nil
}

// Stop отменяет все владение таймерами; вызывается при любом выходе из
// playing извне (рестарт, очистка заброшенной сессии)
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.releaseTimersLocked()
}

func (s *Session) startRoundLocked() {
	idx := len(s.outcomes) + 1
	s.current = s.gen.Generate(s.Config.Difficulty, idx, s.prog)
	s.subPhase = SubPhaseAwaitingInput

	s.sim = nil
	if sf, ok := s.gen.(simFactory); ok {
		s.sim = sf.NewSim(s.Config.Difficulty)
	}

	s.timerRound++
	tr := s.timerRound
	s.timer = NewRoundTimer(s.current.Deadline,
		func(remaining int) { s.handleTick(tr, remaining) },
		func() { s.handleExpire(tr) },
	)
	s.timer.interval = s.tickInterval
	s.timer.Start()

	payload := map[string]any{
		"index":    idx,
		"values":   s.current.Values,
		"deadline": s.current.Deadline,
	}
	if s.Config.Game == game.TypeMemory {
		payload["level"] = s.prog.Level
		payload["lives"] = s.prog.Lives
	}
	s.emit("round_start", payload)
}

func (s *Session) handleTick(forRound, remaining int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// защита от тиков устаревшего таймера
	if forRound != s.timerRound || s.phase != PhasePlaying {
		return
	}

	payload := map[string]any{"remaining": remaining}
	if s.sim != nil {
		if fill := s.sim.Tick(); fill != nil {
			s.emit("fill", map[string]any{
				"side": fill.Side, "price": fill.Price, "fair": fill.Fair, "tick": fill.Tick,
			})
		}
		payload["price"] = s.sim.Price()
		payload["pnl"] = s.sim.PnL()
	}
	s.emit("tick", payload)
}

func (s *Session) handleExpire(forRound int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if forRound != s.timerRound || s.phase != PhasePlaying || s.subPhase != SubPhaseAwaitingInput {
		return
	}

	sub := &game.Submission{TimedOut: true}
	var out *game.Outcome
	if s.sim != nil {
		// для симулятора истечение таймера - штатный конец раунда
		out = s.sim.FinalOutcome(s.current.Index)
	} else {
		out = s.gen.Evaluate(s.current, sub)
	}
	s.finalizeLocked(sub, out)
}

// завершает активный раунд: фиксирует тройку (раунд, ответ, исход),
// обновляет агрегаты и планирует авто-переход
func (s *Session) finalizeLocked(sub *game.Submission, out *game.Outcome) {
	if s.timer != nil {
		s.timer.Cancel()
		s.timer = nil
	}
	// тик, успевший встать в очередь до Cancel, отсекаем по номеру раунда
	s.timerRound++
	s.sim = nil

	s.rounds = append(s.rounds, s.current)
	s.subs = append(s.subs, sub)
	s.outcomes = append(s.outcomes, out)

	// серия точных ответов с бонусом
	bonus := 0
	if out.Class == game.ClassPerfect {
		s.streak++
		if s.streak > s.bestStreak {
			s.bestStreak = s.streak
		}
		if s.streak > 1 {
			bonus = s.streak - 1
		}
	} else if out.Final && out.Class != game.ClassTimeout {
		s.streak = 0
	}
	s.prog.Streak = s.streak

	s.totalPoints += out.Points + bonus
	s.totalPnL += out.PnL

	s.subPhase = SubPhaseAwaitingAdvance

	payload := map[string]any{
		"index":        out.RoundIndex,
		"class":        string(out.Class),
		"points":       out.Points,
		"bonus":        bonus,
		"pnl":          out.PnL,
		"ground_truth": s.current.GroundTruth,
		"total_points": s.totalPoints,
		"total_pnl":    s.totalPnL,
	}
	if s.current.HiddenIndex >= 0 {
		payload["hidden_value"] = s.current.HiddenValue
	}
	if s.Config.Game == game.TypeMemory && !out.IsCorrect() {
		// показываем загаданную последовательность при ошибке
		payload["sequence"] = s.current.Values
	}
	s.emit("outcome", payload)

	s.current = nil

	// пауза показа результата, затем авто-переход; хендл явно владеем
	s.advanceTimer = time.AfterFunc(s.Config.AdvanceDelay, s.advance)
}

func (s *Session) advance() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhasePlaying || s.subPhase != SubPhaseAwaitingAdvance {
		return
	}

	if s.Config.Game == game.TypeMemory {
		last := s.outcomes[len(s.outcomes)-1]
		if last.Class == game.ClassPerfect {
			s.prog.Level++
		} else {
			s.prog.Lives--
		}
		if s.prog.Lives <= 0 || s.prog.Level > game.MemoryMaxLevel {
			s.finishLocked()
			return
		}
	}

	if len(s.outcomes) >= s.Config.TotalRounds {
		s.finishLocked()
		return
	}
	s.startRoundLocked()
}

func (s *Session) finishLocked() {
	s.releaseTimersLocked()
	s.phase = PhaseResults
	s.subPhase = ""

	s.emit("finished", map[string]any{
		"rounds":       len(s.outcomes),
		"total_points": s.totalPoints,
		"total_pnl":    s.totalPnL,
		"best_streak":  s.bestStreak,
	})

	if s.onFinish != nil {
		// колбэк читает состояние через State() - зовем вне блокировки
		go s.onFinish(s)
	}
}

func (s *Session) releaseTimersLocked() {
	if s.timer != nil {
		s.timer.Cancel()
		s.timer = nil
	}
	if s.advanceTimer != nil {
		s.advanceTimer.Stop()
		s.advanceTimer = nil
	}
	// устаревшие колбэки отсекаются по номеру раунда
	s.timerRound++
}

func (s *Session) emit(typ string, payload map[string]any) {
	s.sink(Event{SessionID: s.ID, Type: typ, Payload: payload})
}

// Phase возвращает текущую фазу
func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// CurrentRoundIndex - номер активного раунда (len(outcomes)+1 в playing)
func (s *Session) CurrentRoundIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.outcomes) + 1
}

// Outcomes возвращает копию исходов в порядке раундов
func (s *Session) Outcomes() []*game.Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*game.Outcome, len(s.outcomes))
	copy(out, s.outcomes)
	return out
}

// Totals возвращает агрегаты сессии
func (s *Session) Totals() (points int, pnl float64, bestStreak int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totalPoints, s.totalPnL, s.bestStreak
}

// State - снапшот сессии для клиента (без скрытых значений активного раунда)
func (s *Session) State() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := map[string]any{
		"id":           s.ID,
		"game":         string(s.Config.Game),
		"difficulty":   string(s.Config.Difficulty),
		"phase":        string(s.phase),
		"total_rounds": s.Config.TotalRounds,
		"round_index":  len(s.outcomes) + 1,
		"total_points": s.totalPoints,
		"total_pnl":    s.totalPnL,
		"streak":       s.streak,
		"best_streak":  s.bestStreak,
	}

	if s.phase == PhasePlaying {
		state["sub_phase"] = string(s.subPhase)
		if s.current != nil {
			state["values"] = s.current.Values
			state["deadline"] = s.current.Deadline
			if s.timer != nil {
				state["remaining"] = s.timer.Remaining()
			}
		}
	}

	if s.Config.Game == game.TypeMemory {
		state["level"] = s.prog.Level
		state["lives"] = s.prog.Lives
	}
	if s.sim != nil {
		state["price"] = s.sim.Price()
		state["fills"] = s.sim.Fills()
		state["pnl"] = s.sim.PnL()
	}

	if s.phase == PhaseResults {
		classes := make([]string, len(s.outcomes))
		for i, o := range s.outcomes {
			classes[i] = string(o.Class)
		}
		state["classes"] = classes
	}

	return state
}

// Details - по-раундовая раскладка для записи в историю
func (s *Session) Details() map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	rounds := make([]map[string]any, len(s.outcomes))
	for i, o := range s.outcomes {
		rounds[i] = map[string]any{
			"index":  o.RoundIndex,
			"class":  string(o.Class),
			"points": o.Points,
			"pnl":    o.PnL,
		}
	}
	return map[string]interface{}{
		"difficulty":  string(s.Config.Difficulty),
		"rounds":      rounds,
		"best_streak": s.bestStreak,
	}
}
