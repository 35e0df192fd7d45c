package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"quant_trainer/internal/ai"
	"quant_trainer/internal/questions"
)

type fakeChat struct {
	name  string
	reply string
	err   error

	mu       sync.Mutex
	calls    int
	lastMsgs []ai.Message
}

func (f *fakeChat) Name() string { return f.name }

func (f *fakeChat) Reply(_ context.Context, msgs []ai.Message, _ ai.ChatOptions) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.lastMsgs = make([]ai.Message, len(msgs))
	copy(f.lastMsgs, msgs)
	return f.reply, f.err
}

type fakeSpeech struct {
	name  string
	audio []byte
	err   error
	calls int
}

func (f *fakeSpeech) Name() string { return f.name }

func (f *fakeSpeech) Synthesize(_ context.Context, _, _ string) ([]byte, error) {
	f.calls++
	return f.audio, f.err
}

func newArena(chat []ai.ChatProvider, speech []ai.SpeechProvider) *ArenaService {
	return NewArenaService(chat, speech, nil, nil, questions.NewStaticBank())
}

func firmSlug(t *testing.T) string {
	t.Helper()
	firms := questions.NewStaticBank().Firms()
	if len(firms) == 0 {
		t.Fatalf("банк фирм пуст")
	}
	return firms[0].Slug
}

func TestArenaStart_UnknownFirm(t *testing.T) {
	s := newArena([]ai.ChatProvider{&fakeChat{name: "a", reply: "ok"}}, nil)

	if _, _, err := s.Start(context.Background(), 1, "no-such-firm", "ru", "Иван"); err != ErrUnknownFirm {
		t.Fatalf("ожидался ErrUnknownFirm, получено %v", err)
	}
}

// цепочка провайдеров пробуется по порядку до первого успеха
func TestArenaChat_FallbackChainOrder(t *testing.T) {
	first := &fakeChat{name: "first", err: errors.New("недоступен")}
	second := &fakeChat{name: "second", reply: "Расскажите о себе."}
	s := newArena([]ai.ChatProvider{first, second}, nil)

	_, result, err := s.Start(context.Background(), 1, firmSlug(t), "ru", "Иван")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	if first.calls != 1 || second.calls != 1 {
		t.Fatalf("ожидался порядок first->second, вызовы %d/%d", first.calls, second.calls)
	}
	if result.Reply != "Расскажите о себе." || result.Fallback {
		t.Fatalf("ответ должен прийти от второго провайдера: %+v", result)
	}
}

// отказ всей цепочки дает фиксированную реплику, сессия живет
func TestArenaChat_AllProvidersFail(t *testing.T) {
	broken := &fakeChat{name: "broken", err: errors.New("таймаут")}
	s := newArena([]ai.ChatProvider{broken}, nil)

	_, result, err := s.Start(context.Background(), 1, firmSlug(t), "ru", "Иван")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !result.Fallback || result.Reply != fallbackUtterance["ru"] {
		t.Fatalf("ожидалась фиксированная реплика, получено %+v", result)
	}

	// следующий обмен репликами по-прежнему работает
	result, err = s.Chat(context.Background(), 1, "мой ответ", "Иван")
	if err != nil {
		t.Fatalf("Chat после отказа: %v", err)
	}
	if !result.Fallback {
		t.Fatalf("цепочка все еще лежит, ожидался фолбэк")
	}
}

// короткий ввод заменяется меткой тишины
func TestArenaChat_SilenceSentinel(t *testing.T) {
	chat := &fakeChat{name: "a", reply: "Повторите, пожалуйста."}
	s := newArena([]ai.ChatProvider{chat}, nil)

	if _, _, err := s.Start(context.Background(), 1, firmSlug(t), "ru", "Иван"); err != nil {
		t.Fatalf("Start: %v", err)
	}

	if _, err := s.Chat(context.Background(), 1, " ", "Иван"); err != nil {
		t.Fatalf("Chat: %v", err)
	}

	chat.mu.Lock()
	defer chat.mu.Unlock()
	var userMsgs []string
	for _, m := range chat.lastMsgs {
		if m.Role == "user" {
			userMsgs = append(userMsgs, m.Content)
		}
	}
	if len(userMsgs) == 0 || userMsgs[len(userMsgs)-1] != SilenceSentinel {
		t.Fatalf("пустой ввод должен уйти как %s: %v", SilenceSentinel, userMsgs)
	}
}

// стенограмма только растет и хранит обе роли
func TestArenaChat_TranscriptAppendOnly(t *testing.T) {
	chat := &fakeChat{name: "a", reply: "Следующий вопрос."}
	s := newArena([]ai.ChatProvider{chat}, nil)

	sess, _, err := s.Start(context.Background(), 1, firmSlug(t), "ru", "Иван")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	if _, err := s.Chat(context.Background(), 1, "ответ один", "Иван"); err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if _, err := s.Chat(context.Background(), 1, "ответ два", "Иван"); err != nil {
		t.Fatalf("Chat: %v", err)
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	// вступление + 2 обмена: 1 assistant + (user+assistant)*2
	if len(sess.transcript) != 5 {
		t.Fatalf("ожидалось 5 реплик, получено %d", len(sess.transcript))
	}
	if sess.transcript[1].Role != "user" || sess.transcript[1].Content != "ответ один" {
		t.Fatalf("порядок стенограммы нарушен: %+v", sess.transcript)
	}
}

func TestParseReply_ScoreAndEnding(t *testing.T) {
	reply, score, ending := parseReply("Спасибо, мы закончили. [END] SCORE: 85")
	if !ending {
		t.Fatalf("маркер окончания не распознан")
	}
	if score == nil || *score != 85 {
		t.Fatalf("оценка не распознана: %v", score)
	}
	if strings.Contains(reply, "END") || strings.Contains(reply, "SCORE") {
		t.Fatalf("служебные маркеры должны сниматься: %q", reply)
	}

	reply, score, ending = parseReply("Обычный вопрос без маркеров?")
	if ending || score != nil {
		t.Fatalf("ложное срабатывание маркеров")
	}
	if reply != "Обычный вопрос без маркеров?" {
		t.Fatalf("реплика не должна меняться: %q", reply)
	}
}

// завершающая реплика закрывает собеседование
func TestArenaChat_EndingClosesSession(t *testing.T) {
	chat := &fakeChat{name: "a", reply: "Мы закончили. [КОНЕЦ] SCORE: 70"}
	s := newArena([]ai.ChatProvider{chat}, nil)

	if _, _, err := s.Start(context.Background(), 1, firmSlug(t), "ru", "Иван"); err != nil {
		t.Fatalf("Start: %v", err)
	}

	result, err := s.Chat(context.Background(), 1, "мой финальный ответ", "Иван")
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if !result.IsEnding || result.Score == nil || *result.Score != 70 {
		t.Fatalf("ожидалось окончание с оценкой 70: %+v", result)
	}

	if _, err := s.Chat(context.Background(), 1, "еще", "Иван"); err != ErrNoArenaSession {
		t.Fatalf("после окончания ожидался ErrNoArenaSession, получено %v", err)
	}
}

// орб не принимает новый захват, пока идет обработка или озвучка
func TestArenaOrb_BusyWhileSpeaking(t *testing.T) {
	chat := &fakeChat{name: "a", reply: "Вопрос."}
	s := newArena([]ai.ChatProvider{chat}, nil)

	sess, _, err := s.Start(context.Background(), 1, firmSlug(t), "ru", "Иван")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	// после ответа орб в состоянии speaking
	sess.mu.Lock()
	st := sess.state
	sess.mu.Unlock()
	if st != OrbSpeaking {
		t.Fatalf("после ответа ожидался speaking, получено %s", st)
	}

	if err := s.BeginListening(1); err != ErrArenaBusy {
		t.Fatalf("захват во время озвучки должен отклоняться, получено %v", err)
	}

	s.FinishSpeaking(1)
	if err := s.BeginListening(1); err != nil {
		t.Fatalf("после окончания озвучки захват разрешен: %v", err)
	}
}

// цепочка озвучки: отказ первого провайдера уводит ко второму
func TestArenaSynthesize_FallbackChain(t *testing.T) {
	first := &fakeSpeech{name: "first", err: errors.New("квота")}
	second := &fakeSpeech{name: "second", audio: []byte("mpeg-данные")}
	s := newArena([]ai.ChatProvider{&fakeChat{name: "a", reply: "ok"}},
		[]ai.SpeechProvider{first, second})

	audio, err := s.Synthesize(context.Background(), 1, "текст", "ru")
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if string(audio) != "mpeg-данные" {
		t.Fatalf("аудио должно прийти от второго провайдера")
	}
	if first.calls != 1 || second.calls != 1 {
		t.Fatalf("порядок цепочки нарушен: %d/%d", first.calls, second.calls)
	}
}

func TestArenaSynthesize_AllFail(t *testing.T) {
	broken := &fakeSpeech{name: "broken", err: errors.New("недоступен")}
	s := newArena(nil, []ai.SpeechProvider{broken})

	if _, err := s.Synthesize(context.Background(), 1, "текст", "ru"); err != ErrSpeechFailed {
		t.Fatalf("ожидался ErrSpeechFailed, получено %v", err)
	}
}
