package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"quant_trainer/internal/logger"
	"quant_trainer/internal/repository"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AdminBot обрабатывает команды администраторов через Telegram
type AdminBot struct {
	bot      *tgbotapi.BotAPI
	users    *repository.UserRepository
	history  *repository.GameHistoryRepository
	adminIDs []int64 // Telegram ID пользователей с правами админа
	stopCh   chan struct{}
	wg       sync.WaitGroup
	log      *slog.Logger
}

// NewAdminBot создаёт нового админ бота
func NewAdminBot(token string, db *pgxpool.Pool, adminIDs []int64) (*AdminBot, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	log := logger.With("component", "admin_bot")
	log.Info("admin bot authorized", "username", bot.Self.UserName)

	return &AdminBot{
		bot:      bot,
		users:    repository.NewUserRepository(db),
		history:  repository.NewGameHistoryRepository(db),
		adminIDs: adminIDs,
		stopCh:   make(chan struct{}),
		log:      log,
	}, nil
}

// Start запускает прослушивание команд
func (b *AdminBot) Start() {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.bot.GetUpdatesChan(u)
	b.log.Info("starting bot update loop")

	for {
		select {
		case <-b.stopCh:
			b.log.Info("stopping bot update loop")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}

			if update.Message == nil || !update.Message.IsCommand() {
				continue
			}
			if !b.isAdmin(update.Message.From.ID) {
				continue
			}

			b.wg.Add(1)
			go func(msg *tgbotapi.Message) {
				defer b.wg.Done()
				b.handleCommand(msg)
			}(update.Message)
		}
	}
}

// Stop плавно останавливает бота
func (b *AdminBot) Stop() {
	b.log.Info("stopping admin bot...")
	close(b.stopCh)
	b.bot.StopReceivingUpdates()

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		b.log.Info("admin bot stopped gracefully")
	case <-time.After(10 * time.Second):
		b.log.Warn("admin bot shutdown timeout, some handlers may not have completed")
	}
}

func (b *AdminBot) isAdmin(userID int64) bool {
	for _, id := range b.adminIDs {
		if id == userID {
			return true
		}
	}
	return false
}

func (b *AdminBot) handleCommand(msg *tgbotapi.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	switch msg.Command() {
	case "stats":
		b.handleStats(ctx, msg.Chat.ID)
	case "top":
		b.handleTop(ctx, msg.Chat.ID)
	case "help", "start":
		b.reply(msg.Chat.ID, "Команды:\n/stats - показатели за сегодня\n/top - топ месяца")
	default:
		b.reply(msg.Chat.ID, "Неизвестная команда, /help")
	}
}

// показатели за сегодня
func (b *AdminBot) handleStats(ctx context.Context, chatID int64) {
	sessions, score, err := b.history.GetDailyTotals(ctx)
	if err != nil {
		b.log.Error("stats command failed", "error", err)
		b.reply(chatID, "Ошибка получения статистики")
		return
	}

	b.reply(chatID, fmt.Sprintf("За сегодня:\nсессий: %d\nнабрано очков: %d", sessions, score))
}

// топ месяца
func (b *AdminBot) handleTop(ctx context.Context, chatID int64) {
	users, err := b.users.GetMonthlyTop(ctx, 10)
	if err != nil {
		b.log.Error("top command failed", "error", err)
		b.reply(chatID, "Ошибка получения топа")
		return
	}
	if len(users) == 0 {
		b.reply(chatID, "За этот месяц еще никто не играл")
		return
	}

	var sb strings.Builder
	sb.WriteString("Топ месяца:\n")
	for i, u := range users {
		fmt.Fprintf(&sb, "%d. %s - %d\n", i+1, u.DisplayName, u.Rating)
	}
	b.reply(chatID, sb.String())
}

// NotifyHighScore шлет всем админам уведомление о высоком результате
func (b *AdminBot) NotifyHighScore(userID, score int64) {
	text := fmt.Sprintf("Высокий результат: пользователь %d набрал %d очков", userID, score)
	for _, adminID := range b.adminIDs {
		b.reply(adminID, text)
	}
}

func (b *AdminBot) reply(chatID int64, text string) {
	if _, err := b.bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		b.log.Warn("failed to send message", "error", err, "chat_id", chatID)
	}
}
