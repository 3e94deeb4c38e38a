package scheduler

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/example/lexibot/internal/database"
	"github.com/example/lexibot/internal/spaced_repetition"
)

// Default window for sending reminder notifications
const (
	DefaultNotificationStartHour = 8
	DefaultNotificationEndHour   = 22
)

// Notifier interface for sending reminders
type Notifier interface {
	SendReminders(userID int64, dueCount int) error
}

// Scheduler runs the periodic reminder job. "Due" is always computed by
// comparing stored next_review_at against the clock at query time; there
// is no per-item timer.
type Scheduler struct {
	scheduler *gocron.Scheduler
	notifier  Notifier
	users     *database.UserRepository
	items     *database.ItemRepository
}

// New creates a new scheduler instance
func New(notifier Notifier) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		notifier:  notifier,
		users:     database.NewUserRepository(),
		items:     database.NewItemRepository(),
	}
}

// Start begins running all scheduled tasks
func (s *Scheduler) Start() {
	s.scheduler.Every(1).Hour().Do(s.checkAndSendReminders)
	s.scheduler.StartAsync()
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

func notificationWindow() (int, int) {
	startHour := DefaultNotificationStartHour
	endHour := DefaultNotificationEndHour

	if v := os.Getenv("NOTIFICATION_START_HOUR"); v != "" {
		if h, err := strconv.Atoi(v); err == nil && h >= 0 && h <= 23 {
			startHour = h
		}
	}
	if v := os.Getenv("NOTIFICATION_END_HOUR"); v != "" {
		if h, err := strconv.Atoi(v); err == nil && h >= 0 && h <= 23 {
			endHour = h
		}
	}
	return startHour, endHour
}

// checkAndSendReminders notifies users who have due items and want a
// reminder at the current hour
func (s *Scheduler) checkAndSendReminders() {
	now := time.Now().UTC()
	currentHour := now.Hour()

	startHour, endHour := notificationWindow()
	if currentHour < startHour || currentHour > endHour {
		log.Printf("Current hour %d is outside notification hours (%d-%d), skipping reminders",
			currentHour, startHour, endHour)
		return
	}

	ctx := context.Background()
	users, err := s.users.GetUsersForNotification(ctx, currentHour)
	if err != nil {
		log.Printf("Error getting users for notification: %v", err)
		return
	}

	for _, user := range users {
		due, err := s.items.QueryDue(ctx, spaced_repetition.Scope{UserID: user.ID}, now, user.ItemsPerSession)
		if err != nil {
			log.Printf("Error getting due items for user %d: %v", user.ID, err)
			continue
		}
		if len(due) == 0 {
			continue
		}
		if err := s.notifier.SendReminders(user.ID, len(due)); err != nil {
			log.Printf("Error sending reminder to user %d: %v", user.ID, err)
		}
	}
}
