package bot

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/example/lexibot/internal/database"
	"github.com/example/lexibot/internal/excel"
	"github.com/example/lexibot/internal/review"
	"github.com/example/lexibot/pkg/models"
)

// chatSession tracks a user's in-flight review session. The queue order
// is the curator's priority order; the bot walks it front to back.
type chatSession struct {
	queue    *models.SessionQueue
	index    int
	askedAt  time.Time // when the current prompt was shown, for the fast-answer bonus
	reviewed int
	correct  int
}

// Bot represents the Telegram bot application
type Bot struct {
	api      *tgbotapi.BotAPI
	svc      *review.Service
	users    *database.UserRepository
	decks    *database.DeckRepository
	words    *database.WordRepository
	cards    *database.CardRepository
	stats    *database.StatisticsRepository
	streaks  *database.StreakRepository
	items    *database.ItemRepository
	events   *database.ReviewEventRepository
	log      *database.SessionRepository
	importer *excel.Importer
	config   *Config

	mu       sync.Mutex
	sessions map[int64]*chatSession
}

// New creates a new bot instance
func New(token string, svc *review.Service) (*Bot, error) {
	if token == "" {
		return nil, fmt.Errorf("telegram bot token is not set")
	}
	if database.DB == nil {
		return nil, fmt.Errorf("database connection is not established")
	}

	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot API: %v", err)
	}

	return &Bot{
		api:      api,
		svc:      svc,
		users:    database.NewUserRepository(),
		decks:    database.NewDeckRepository(),
		words:    database.NewWordRepository(),
		cards:    database.NewCardRepository(),
		stats:    database.NewStatisticsRepository(),
		streaks:  database.NewStreakRepository(),
		items:    database.NewItemRepository(),
		events:   database.NewReviewEventRepository(),
		log:      database.NewSessionRepository(),
		importer: excel.NewImporter(),
		config:   DefaultConfig(),
		sessions: make(map[int64]*chatSession),
	}, nil
}

// Start begins processing incoming updates until the context is cancelled
func (b *Bot) Start(ctx context.Context) error {
	log.Printf("Authorized as @%s", b.api.Self.UserName)

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 30
	updates := b.api.GetUpdatesChan(updateConfig)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.handleUpdate(ctx, update)
		}
	}
}

// Stop shuts down the update loop
func (b *Bot) Stop() {
	b.api.StopReceivingUpdates()
}

// SendReminders notifies a user about due items; implements the
// scheduler's Notifier interface
func (b *Bot) SendReminders(userID int64, dueCount int) error {
	text := fmt.Sprintf("You have %d items due for review. Send /review to start a session.", dueCount)
	_, err := b.api.Send(tgbotapi.NewMessage(userID, text))
	return err
}

func (b *Bot) send(chatID int64, text string) {
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		log.Printf("Error sending message to %d: %v", chatID, err)
	}
}

func (b *Bot) session(chatID int64) *chatSession {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sessions[chatID]
}

func (b *Bot) setSession(chatID int64, s *chatSession) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if s == nil {
		delete(b.sessions, chatID)
		return
	}
	b.sessions[chatID] = s
}
