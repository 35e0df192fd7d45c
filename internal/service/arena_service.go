package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"quant_trainer/internal/ai"
	"quant_trainer/internal/domain"
	"quant_trainer/internal/logger"
	"quant_trainer/internal/questions"
	"quant_trainer/internal/repository"

	"github.com/google/uuid"
)

var (
	ErrNoArenaSession = errors.New("нет активного собеседования")
	ErrArenaBusy      = errors.New("предыдущий запрос еще обрабатывается")
	ErrUnknownFirm    = errors.New("неизвестная фирма")
	ErrSpeechFailed   = errors.New("синтез речи недоступен")
)

// метка пустого или слишком короткого распознанного ввода
const SilenceSentinel = "[silence]"

const arenaTTL = 20 * time.Minute

// состояние орба: единовременно либо захват, либо запрос, либо озвучка
type OrbState string

const (
	OrbIdle       OrbState = "idle"
	OrbListening  OrbState = "listening"
	OrbProcessing OrbState = "processing"
	OrbSpeaking   OrbState = "speaking"
)

// фиксированная реплика при отказе всех чат-провайдеров; сессия продолжается
var fallbackUtterance = map[string]string{
	"ru": "Извините, я отвлекся. Повторите, пожалуйста, ваш ответ.",
	"en": "Sorry, I got distracted. Could you repeat your answer?",
}

// маркеры, которые модель ставит в конце реплики
var (
	scoreMarker = regexp.MustCompile(`(?i)SCORE:\s*(\d{1,3})`)
	endMarker   = regexp.MustCompile(`(?i)\[(END|КОНЕЦ)\]`)
)

// одно голосовое собеседование
type ArenaSession struct {
	ID       string
	UserID   int64
	Firm     string
	Language string

	mu         sync.Mutex
	state      OrbState
	transcript []ai.Message // append-only
	score      *int
	ended      bool
	lastSeen   time.Time
}

// ответ интервьюера с отметкой источника
type ChatResult struct {
	Reply    string `json:"reply"`
	Score    *int   `json:"score,omitempty"`
	IsEnding bool   `json:"isEnding"`
	Fallback bool   `json:"fallback,omitempty"`
}

// ArenaService ведет голосовые собеседования: упорядоченные цепочки
// провайдеров чата и озвучки, отказ провайдера не роняет сессию
type ArenaService struct {
	chatChain   []ai.ChatProvider
	speechChain []ai.SpeechProvider
	transcripts *repository.TranscriptRepository
	audit       *AuditService
	bank        questions.Bank

	active map[int64]*ArenaSession
	mu     sync.RWMutex
}

func NewArenaService(chatChain []ai.ChatProvider, speechChain []ai.SpeechProvider,
	transcripts *repository.TranscriptRepository, audit *AuditService, bank questions.Bank) *ArenaService {
	s := &ArenaService{
		chatChain:   chatChain,
		speechChain: speechChain,
		transcripts: transcripts,
		audit:       audit,
		bank:        bank,
		active:      make(map[int64]*ArenaSession),
	}

	go s.cleanupExpired()

	return s
}

// Start открывает собеседование и возвращает вступительную реплику
func (s *ArenaService) Start(ctx context.Context, userID int64, firmSlug, language, userName string) (*ArenaSession, *ChatResult, error) {
	firm, ok := s.bank.FirmBySlug(firmSlug)
	if !ok {
		return nil, nil, ErrUnknownFirm
	}
	if language == "" {
		language = "ru"
	}

	s.mu.Lock()
	if old, exists := s.active[userID]; exists {
		// незаконченное собеседование сохраняем перед заменой
		go s.persist(old)
	}

	sess := &ArenaSession{
		ID:       uuid.New().String()[:8],
		UserID:   userID,
		Firm:     firm.Slug,
		Language: language,
		state:    OrbIdle,
		lastSeen: time.Now(),
	}
	s.active[userID] = sess
	s.mu.Unlock()

	if s.audit != nil {
		s.audit.Log(ctx, userID, domain.AuditActionArenaStart, domain.AuditCategoryArena, map[string]interface{}{
			"firm":     firm.Slug,
			"language": language,
		})
	}

	opening := "Начнем собеседование. Поприветствуй кандидата и задай первый вопрос."
	if language == "en" {
		opening = "Begin the interview. Greet the candidate and ask the first question."
	}
	result := s.chat(ctx, sess, firm, userName, opening, true)
	return sess, result, nil
}

// BeginListening переводит орб в захват речи; отклоняется, если идет
// обработка или озвучка
func (s *ArenaService) BeginListening(userID int64) error {
	sess, err := s.get(userID)
	if err != nil {
		return err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.state == OrbProcessing || sess.state == OrbSpeaking {
		return ErrArenaBusy
	}
	sess.state = OrbListening
	return nil
}

// Chat принимает распознанную реплику кандидата и возвращает ответ
// интервьюера. Пустой ввод заменяется меткой тишины.
func (s *ArenaService) Chat(ctx context.Context, userID int64, message, userName string) (*ChatResult, error) {
	sess, err := s.get(userID)
	if err != nil {
		return nil, err
	}

	firm, ok := s.bank.FirmBySlug(sess.Firm)
	if !ok {
		return nil, ErrUnknownFirm
	}

	sess.mu.Lock()
	if sess.state == OrbProcessing {
		sess.mu.Unlock()
		return nil, ErrArenaBusy
	}
	sess.state = OrbProcessing
	sess.lastSeen = time.Now()
	sess.mu.Unlock()

	if len(strings.TrimSpace(message)) < 2 {
		message = SilenceSentinel
	}

	result := s.chat(ctx, sess, firm, userName, message, false)

	if result.IsEnding {
		s.finish(ctx, sess)
	}
	return result, nil
}

// FinishSpeaking сообщает, что клиент закончил проигрывание озвучки
func (s *ArenaService) FinishSpeaking(userID int64) {
	sess, err := s.get(userID)
	if err != nil {
		return
	}
	sess.mu.Lock()
	if sess.state == OrbSpeaking {
		sess.state = OrbIdle
	}
	sess.mu.Unlock()
}

// Synthesize прогоняет текст по цепочке TTS-провайдеров по порядку;
// если все отказали, клиент переходит на встроенный синтез
func (s *ArenaService) Synthesize(ctx context.Context, userID int64, text, language string) ([]byte, error) {
	for _, p := range s.speechChain {
		audio, err := p.Synthesize(ctx, text, language)
		if err == nil && len(audio) > 0 {
			return audio, nil
		}
		logger.Warn("tts-провайдер отказал, пробуем следующий", "provider", p.Name(), "error", err)
		if s.audit != nil {
			s.audit.LogArenaFallback(ctx, userID, p.Name(), fmt.Sprint(err))
		}
	}
	return nil, ErrSpeechFailed
}

// State возвращает состояние орба и длину стенограммы
func (s *ArenaService) State(userID int64) (map[string]any, error) {
	sess, err := s.get(userID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	state := map[string]any{
		"id":       sess.ID,
		"firm":     sess.Firm,
		"language": sess.Language,
		"state":    string(sess.state),
		"messages": len(sess.transcript),
		"ended":    sess.ended,
	}
	if sess.score != nil {
		state["score"] = *sess.score
	}
	return state, nil
}

// Finish завершает собеседование досрочно и сохраняет стенограмму
func (s *ArenaService) Finish(ctx context.Context, userID int64) error {
	sess, err := s.get(userID)
	if err != nil {
		return err
	}
	s.finish(ctx, sess)
	return nil
}

// Stop сохраняет все незаконченные собеседования; вызывается при остановке
func (s *ArenaService) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for userID, sess := range s.active {
		s.persist(sess)
		delete(s.active, userID)
	}
}

func (s *ArenaService) get(userID int64) (*ArenaSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.active[userID]
	if !ok {
		return nil, ErrNoArenaSession
	}
	return sess, nil
}

// chat прогоняет реплику по цепочке чат-провайдеров; отказ всей цепочки
// дает фиксированную реплику, собеседование продолжается
func (s *ArenaService) chat(ctx context.Context, sess *ArenaSession, firm questions.Firm, userName, message string, isStart bool) *ChatResult {
	system := s.systemPrompt(firm, sess.Language, userName)

	sess.mu.Lock()
	if !isStart {
		sess.transcript = append(sess.transcript, ai.Message{Role: "user", Content: message})
	}
	history := make([]ai.Message, len(sess.transcript))
	copy(history, sess.transcript)
	sess.mu.Unlock()

	if isStart {
		history = append(history, ai.Message{Role: "user", Content: message})
	}

	var reply string
	var replied bool
	for _, p := range s.chatChain {
		r, err := p.Reply(ctx, history, ai.ChatOptions{System: system, Language: sess.Language})
		if err == nil && r != "" {
			reply, replied = r, true
			break
		}
		logger.Warn("чат-провайдер отказал, пробуем следующий", "provider", p.Name(), "error", err)
		if s.audit != nil {
			s.audit.LogArenaFallback(ctx, sess.UserID, p.Name(), fmt.Sprint(err))
		}
	}

	result := &ChatResult{}
	if !replied {
		result.Reply = fallbackUtterance[sess.Language]
		if result.Reply == "" {
			result.Reply = fallbackUtterance["ru"]
		}
		result.Fallback = true
	} else {
		result.Reply, result.Score, result.IsEnding = parseReply(reply)
	}

	sess.mu.Lock()
	sess.transcript = append(sess.transcript, ai.Message{Role: "assistant", Content: result.Reply})
	if result.Score != nil {
		sess.score = result.Score
	}
	sess.state = OrbSpeaking
	sess.lastSeen = time.Now()
	sess.mu.Unlock()

	return result
}

func (s *ArenaService) systemPrompt(firm questions.Firm, language, userName string) string {
	lang := "русском"
	if language == "en" {
		lang = "английском"
	}
	q, err := s.bank.Random(questions.Filter{Category: questions.CategoryBrainteaser})
	hint := ""
	if err == nil {
		hint = "Один из вопросов: " + q.Prompt
	}

	return fmt.Sprintf(
		"Ты интервьюер фирмы %s (%s), стиль: %s. Кандидата зовут %s. "+
			"Веди собеседование на %s языке, по одному вопросу за реплику, кратко. %s "+
			"Если кандидат ответил меткой %s - мягко попроси повторить. "+
			"Когда собеседование закончено, добавь в конец реплики [END] и оценку в формате SCORE: N (0-100).",
		firm.Name, firm.Description, firm.Style, userName, lang, hint, SilenceSentinel)
}

// parseReply снимает служебные маркеры оценки и окончания с реплики модели
func parseReply(raw string) (reply string, score *int, isEnding bool) {
	if m := scoreMarker.FindStringSubmatch(raw); m != nil {
		if v, err := strconv.Atoi(m[1]); err == nil && v >= 0 && v <= 100 {
			score = &v
		}
		raw = scoreMarker.ReplaceAllString(raw, "")
	}
	if endMarker.MatchString(raw) {
		isEnding = true
		raw = endMarker.ReplaceAllString(raw, "")
	}
	return strings.TrimSpace(raw), score, isEnding
}

func (s *ArenaService) finish(ctx context.Context, sess *ArenaSession) {
	sess.mu.Lock()
	if sess.ended {
		sess.mu.Unlock()
		return
	}
	sess.ended = true
	sess.state = OrbIdle
	score := sess.score
	sess.mu.Unlock()

	s.persist(sess)

	s.mu.Lock()
	delete(s.active, sess.UserID)
	s.mu.Unlock()

	details := map[string]interface{}{"firm": sess.Firm}
	if score != nil {
		details["score"] = *score
	}
	if s.audit != nil {
		s.audit.Log(ctx, sess.UserID, domain.AuditActionArenaFinish, domain.AuditCategoryArena, details)
	}
}

func (s *ArenaService) persist(sess *ArenaSession) {
	if s.transcripts == nil {
		return
	}

	sess.mu.Lock()
	messages := make([]map[string]interface{}, len(sess.transcript))
	for i, m := range sess.transcript {
		messages[i] = map[string]interface{}{"role": m.Role, "content": m.Content}
	}
	t := &domain.ArenaTranscript{
		UserID:   sess.UserID,
		Firm:     sess.Firm,
		Language: sess.Language,
		Messages: messages,
		Score:    sess.score,
	}
	sess.mu.Unlock()

	if len(messages) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.transcripts.Create(ctx, t); err != nil {
		logger.Error("не удалось сохранить стенограмму", "error", err, "user_id", sess.UserID)
	}
}

func (s *ArenaService) cleanupExpired() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		now := time.Now()
		s.mu.Lock()
		for userID, sess := range s.active {
			sess.mu.Lock()
			stale := now.Sub(sess.lastSeen) > arenaTTL
			sess.mu.Unlock()
			if stale {
				go s.persist(sess)
				delete(s.active, userID)
			}
		}
		s.mu.Unlock()
	}
}
