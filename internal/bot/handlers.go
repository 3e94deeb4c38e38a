package bot

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/example/lexibot/internal/spaced_repetition"
	"github.com/example/lexibot/pkg/models"
)

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil && update.Message.Document != nil:
		b.handleDocument(ctx, update.Message)
	case update.Message != nil && update.Message.IsCommand():
		b.handleCommand(ctx, update.Message)
	}
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	user, err := b.users.GetOrCreate(ctx, &models.User{
		ID:        msg.From.ID,
		Username:  msg.From.UserName,
		FirstName: msg.From.FirstName,
		LastName:  msg.From.LastName,
	})
	if err != nil {
		log.Printf("Error registering user %d: %v", msg.From.ID, err)
		b.send(msg.Chat.ID, "Something went wrong, please try again.")
		return
	}

	switch msg.Command() {
	case "start":
		b.send(msg.Chat.ID, "Welcome! Upload an .xlsx file with term/translation columns to build a deck, "+
			"then send /review to practice.\n\n"+
			"Commands:\n"+
			"/review [deck] - start a review session\n"+
			"/decks - list your decks\n"+
			"/leeches - show your most difficult items\n"+
			"/resetleech <id> - clear an item's leech flag\n"+
			"/stats - learning statistics\n"+
			"/streak - your daily streak\n"+
			"/freeze - spend points to protect your streak for one missed day\n"+
			"/addcard <front> | <back> - add a custom flashcard\n"+
			"/leaderboard - top learners by points")
	case "review":
		b.handleReview(ctx, msg, user)
	case "decks":
		b.handleDecks(ctx, msg, user)
	case "leeches":
		b.handleLeeches(ctx, msg, user)
	case "resetleech":
		b.handleResetLeech(ctx, msg)
	case "stats":
		b.handleStats(ctx, msg, user)
	case "streak":
		b.handleStreak(ctx, msg, user)
	case "freeze":
		b.handleFreeze(ctx, msg, user)
	case "leaderboard":
		b.handleLeaderboard(ctx, msg)
	case "addcard":
		b.handleAddCard(ctx, msg, user)
	default:
		b.send(msg.Chat.ID, "Unknown command. Send /start for help.")
	}
}

func (b *Bot) handleReview(ctx context.Context, msg *tgbotapi.Message, user *models.User) {
	scope := spaced_repetition.Scope{UserID: user.ID}

	if deckName := strings.TrimSpace(msg.CommandArguments()); deckName != "" {
		deck, err := b.decks.GetByName(ctx, user.ID, deckName)
		if err != nil {
			b.send(msg.Chat.ID, fmt.Sprintf("No deck named %q. Upload an .xlsx file to create one.", deckName))
			return
		}
		scope.DeckID = deck.ID
	}

	limit := user.ItemsPerSession
	if limit <= 0 {
		limit = b.config.DefaultSessionSize
	}

	queue, err := b.svc.StartSession(ctx, scope, limit, time.Now().UTC())
	if err != nil {
		log.Printf("Error starting session for user %d: %v", user.ID, err)
		b.send(msg.Chat.ID, "Could not start a session, please try again.")
		return
	}
	if len(queue.Items) == 0 {
		b.send(msg.Chat.ID, "Nothing to review right now. Well done!")
		return
	}

	b.setSession(msg.Chat.ID, &chatSession{queue: queue})
	b.presentCurrent(ctx, msg.Chat.ID)
}

func (b *Bot) handleDecks(ctx context.Context, msg *tgbotapi.Message, user *models.User) {
	decks, err := b.decks.GetByUser(ctx, user.ID)
	if err != nil {
		log.Printf("Error listing decks for user %d: %v", user.ID, err)
		b.send(msg.Chat.ID, "Could not fetch your decks.")
		return
	}
	if len(decks) == 0 {
		b.send(msg.Chat.ID, "No decks yet. Upload an .xlsx file to create one.")
		return
	}

	var sb strings.Builder
	sb.WriteString("Your decks:\n")
	for _, deck := range decks {
		words, err := b.words.GetByDeck(ctx, deck.ID)
		if err != nil {
			log.Printf("Error listing words for deck %d: %v", deck.ID, err)
			continue
		}
		sb.WriteString(fmt.Sprintf("\n%s - %d words", deck.Name, len(words)))
	}
	b.send(msg.Chat.ID, sb.String())
}

func (b *Bot) handleLeeches(ctx context.Context, msg *tgbotapi.Message, user *models.User) {
	leeches, err := b.svc.Leeches(ctx, user.ID)
	if err != nil {
		log.Printf("Error listing leeches for user %d: %v", user.ID, err)
		b.send(msg.Chat.ID, "Could not fetch your difficult items.")
		return
	}
	if len(leeches) == 0 {
		b.send(msg.Chat.ID, "No leeches - nothing is giving you repeated trouble.")
		return
	}

	var sb strings.Builder
	sb.WriteString("Items you keep failing:\n")
	for _, item := range leeches {
		sb.WriteString(fmt.Sprintf("\n#%d %s (%d lapses)", item.ID, b.itemLabel(ctx, &item), item.Lapses))
	}
	sb.WriteString("\n\nAfter relearning one, clear it with /resetleech <id>.")
	b.send(msg.Chat.ID, sb.String())
}

func (b *Bot) handleResetLeech(ctx context.Context, msg *tgbotapi.Message) {
	arg := strings.TrimSpace(msg.CommandArguments())
	itemID, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		b.send(msg.Chat.ID, "Usage: /resetleech <id> (see /leeches for ids)")
		return
	}

	item, err := b.svc.ResetLeech(ctx, itemID)
	if err != nil {
		b.send(msg.Chat.ID, "Could not reset that item. Check the id with /leeches.")
		return
	}
	b.send(msg.Chat.ID, fmt.Sprintf("Cleared. %s starts fresh.", b.itemLabel(ctx, item)))
}

func (b *Bot) handleStats(ctx context.Context, msg *tgbotapi.Message, user *models.User) {
	now := time.Now().UTC()
	stats, err := b.stats.ForUser(ctx, user.ID, now)
	if err != nil {
		log.Printf("Error getting stats for user %d: %v", user.ID, err)
		b.send(msg.Chat.ID, "Could not fetch your statistics.")
		return
	}

	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	reviewsToday, err := b.events.CountForUserOn(ctx, user.ID, dayStart, dayStart.AddDate(0, 0, 1))
	if err != nil {
		log.Printf("Error counting today's reviews for user %d: %v", user.ID, err)
	}
	sessionsThisWeek, err := b.log.CountForUserSince(ctx, user.ID, now.AddDate(0, 0, -7))
	if err != nil {
		log.Printf("Error counting sessions for user %d: %v", user.ID, err)
	}

	b.send(msg.Chat.ID, fmt.Sprintf(
		"Your progress:\n"+
			"Items tracked: %d\n"+
			"Due today: %d\n"+
			"Mastered: %d\n"+
			"Leeches: %d\n"+
			"Average easiness: %.2f\n"+
			"Reviews today: %d\n"+
			"Sessions this week: %d\n"+
			"Points: %d",
		stats.TotalItems, stats.DueToday, stats.Mastered, stats.Leeches, stats.AvgEasinessFactor,
		reviewsToday, sessionsThisWeek, user.Points))
}

func (b *Bot) handleStreak(ctx context.Context, msg *tgbotapi.Message, user *models.User) {
	// hadActivity=false reads the state without advancing it
	state, err := b.svc.ProjectStreak(ctx, user.ID, time.Now().UTC(), false)
	if err != nil {
		log.Printf("Error getting streak for user %d: %v", user.ID, err)
		b.send(msg.Chat.ID, "Could not fetch your streak.")
		return
	}
	b.send(msg.Chat.ID, fmt.Sprintf("Current streak: %d days\nLongest streak: %d days\nFreezes available: %d",
		state.CurrentStreak, state.LongestStreak, state.FreezesAvailable))
}

// handleAddCard creates a custom flashcard with an immediately-due review
// item
func (b *Bot) handleAddCard(ctx context.Context, msg *tgbotapi.Message, user *models.User) {
	parts := strings.SplitN(msg.CommandArguments(), "|", 2)
	if len(parts) != 2 || strings.TrimSpace(parts[0]) == "" || strings.TrimSpace(parts[1]) == "" {
		b.send(msg.Chat.ID, "Usage: /addcard <front> | <back>")
		return
	}

	deck, err := b.decks.GetOrCreate(ctx, user.ID, "Cards", "")
	if err != nil {
		log.Printf("Error getting card deck for user %d: %v", user.ID, err)
		b.send(msg.Chat.ID, "Could not add the card, please try again.")
		return
	}

	card := &models.Card{
		DeckID: deck.ID,
		Front:  strings.TrimSpace(parts[0]),
		Back:   strings.TrimSpace(parts[1]),
	}
	if err := b.cards.Create(ctx, card); err != nil {
		log.Printf("Error creating card for user %d: %v", user.ID, err)
		b.send(msg.Chat.ID, "Could not add the card, please try again.")
		return
	}

	item := models.NewReviewableItem(deck.ID, models.ItemKindCard, card.ID, time.Now().UTC())
	if err := b.items.Create(ctx, &item); err != nil {
		log.Printf("Error creating review item for card %d: %v", card.ID, err)
		b.send(msg.Chat.ID, "Could not schedule the card, please try again.")
		return
	}

	b.send(msg.Chat.ID, fmt.Sprintf("Added %q to deck %q; it is due right away.", card.Front, deck.Name))
}

func (b *Bot) handleLeaderboard(ctx context.Context, msg *tgbotapi.Message) {
	top, err := b.users.TopByPoints(ctx, b.config.LeaderboardSize)
	if err != nil {
		log.Printf("Error getting leaderboard: %v", err)
		b.send(msg.Chat.ID, "Could not fetch the leaderboard.")
		return
	}
	if len(top) == 0 {
		b.send(msg.Chat.ID, "Nobody has any points yet.")
		return
	}

	var sb strings.Builder
	sb.WriteString("Top learners:\n")
	for i, u := range top {
		name := u.Username
		if name == "" {
			name = u.FirstName
		}
		sb.WriteString(fmt.Sprintf("\n%d. %s - %d points", i+1, name, u.Points))
	}
	b.send(msg.Chat.ID, sb.String())
}

// handleFreeze trades points for a streak freeze
func (b *Bot) handleFreeze(ctx context.Context, msg *tgbotapi.Message, user *models.User) {
	if user.Points < b.config.FreezeCost {
		b.send(msg.Chat.ID, fmt.Sprintf("A streak freeze costs %d points; you have %d. Keep reviewing!",
			b.config.FreezeCost, user.Points))
		return
	}
	if err := b.users.AddPoints(ctx, user.ID, -b.config.FreezeCost); err != nil {
		log.Printf("Error charging freeze for user %d: %v", user.ID, err)
		b.send(msg.Chat.ID, "Could not buy a freeze, please try again.")
		return
	}
	if err := b.streaks.AddFreeze(ctx, user.ID); err != nil {
		log.Printf("Error adding freeze for user %d: %v", user.ID, err)
		b.send(msg.Chat.ID, "Could not buy a freeze, please try again.")
		return
	}
	b.send(msg.Chat.ID, "Freeze banked. One missed day won't break your streak.")
}

// handleDocument imports an uploaded .xlsx file as a deck named after the
// file
func (b *Bot) handleDocument(ctx context.Context, msg *tgbotapi.Message) {
	doc := msg.Document
	if !strings.HasSuffix(strings.ToLower(doc.FileName), ".xlsx") {
		b.send(msg.Chat.ID, "Please upload an .xlsx spreadsheet.")
		return
	}

	url, err := b.api.GetFileDirectURL(doc.FileID)
	if err != nil {
		log.Printf("Error resolving file %s: %v", doc.FileID, err)
		b.send(msg.Chat.ID, "Could not download your file, please try again.")
		return
	}
	resp, err := http.Get(url)
	if err != nil {
		log.Printf("Error downloading file %s: %v", doc.FileID, err)
		b.send(msg.Chat.ID, "Could not download your file, please try again.")
		return
	}
	defer resp.Body.Close()

	deckName := strings.TrimSuffix(doc.FileName, ".xlsx")
	result, err := b.importer.ImportReader(ctx, msg.From.ID, deckName, resp.Body)
	if err != nil {
		log.Printf("Error importing file %s: %v", doc.FileName, err)
		b.send(msg.Chat.ID, "Import failed. Expected columns: term, translation, context.")
		return
	}

	text := fmt.Sprintf("Imported %d words into deck %q (%d skipped as duplicates).",
		result.Created, deckName, result.Skipped)
	if len(result.Errors) > 0 {
		text += fmt.Sprintf("\n%d rows had problems.", len(result.Errors))
	}
	b.send(msg.Chat.ID, text)
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	// Always answer to stop the client spinner
	if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		log.Printf("Error answering callback: %v", err)
	}

	chatID := cb.Message.Chat.ID
	session := b.session(chatID)
	if session == nil {
		b.send(chatID, "No active session. Send /review to start one.")
		return
	}

	switch {
	case cb.Data == "reveal":
		b.revealCurrent(ctx, chatID, cb.Message.MessageID)
	case strings.HasPrefix(cb.Data, "quality:"):
		quality, err := strconv.Atoi(strings.TrimPrefix(cb.Data, "quality:"))
		if err != nil {
			return
		}
		b.submitCurrent(ctx, chatID, cb.From.ID, session, quality)
	}
}

func (b *Bot) presentCurrent(ctx context.Context, chatID int64) {
	session := b.session(chatID)
	item := &session.queue.Items[session.index]

	session.askedAt = time.Now()

	text := fmt.Sprintf("(%d/%d) %s", session.index+1, len(session.queue.Items), b.itemPrompt(ctx, item))
	if item.IsLeech {
		text += "\n(this one keeps tripping you up)"
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Show answer", "reveal"),
		),
	)
	if _, err := b.api.Send(msg); err != nil {
		log.Printf("Error presenting item %d: %v", item.ID, err)
	}
}

func (b *Bot) revealCurrent(ctx context.Context, chatID int64, messageID int) {
	session := b.session(chatID)
	item := &session.queue.Items[session.index]

	text := fmt.Sprintf("(%d/%d) %s\n\n%s\n\nHow well did you recall it?",
		session.index+1, len(session.queue.Items), b.itemPrompt(ctx, item), b.itemAnswer(ctx, item))

	edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, text, qualityKeyboard())
	if _, err := b.api.Send(edit); err != nil {
		log.Printf("Error revealing item %d: %v", item.ID, err)
	}
}

func (b *Bot) submitCurrent(ctx context.Context, chatID, userID int64, session *chatSession, quality int) {
	item := &session.queue.Items[session.index]

	now := time.Now().UTC()
	latency := int(time.Since(session.askedAt).Milliseconds())

	result, err := b.svc.SubmitReview(ctx, item.ID, quality, &latency, now)
	if err != nil {
		log.Printf("Error submitting review for item %d: %v", item.ID, err)
		b.send(chatID, "Could not record that review, please try again.")
		return
	}

	if _, err := b.svc.ProjectStreak(ctx, userID, now, true); err != nil {
		log.Printf("Error projecting streak for user %d: %v", userID, err)
	}

	session.reviewed++
	if quality >= int(spaced_repetition.QualityCorrectDifficult) {
		session.correct++
	}
	if result.IsLeech && !item.IsLeech {
		b.send(chatID, fmt.Sprintf("%s has been flagged as a leech after %d lapses. "+
			"Consider relearning it, then /resetleech %d.", b.itemLabel(ctx, item), result.Lapses, item.ID))
	}

	session.index++
	if session.index >= len(session.queue.Items) {
		b.finishSession(ctx, chatID, userID, session)
		return
	}
	b.presentCurrent(ctx, chatID)
}

func (b *Bot) finishSession(ctx context.Context, chatID, userID int64, session *chatSession) {
	b.setSession(chatID, nil)

	text := fmt.Sprintf("Session complete: %d/%d correct.", session.correct, session.reviewed)
	if state, err := b.svc.ProjectStreak(ctx, userID, time.Now().UTC(), false); err == nil && state.CurrentStreak > 1 {
		text += fmt.Sprintf(" Streak: %d days.", state.CurrentStreak)
	}
	b.send(chatID, text)
}

// itemPrompt returns the question side of an item
func (b *Bot) itemPrompt(ctx context.Context, item *models.ReviewableItem) string {
	switch item.Kind {
	case models.ItemKindCard:
		if card, err := b.cards.GetByID(ctx, item.SourceID); err == nil {
			return card.Front
		}
	case models.ItemKindWord:
		if word, err := b.words.GetByID(ctx, item.SourceID); err == nil {
			return word.Term
		}
	}
	return fmt.Sprintf("item #%d", item.ID)
}

// itemAnswer returns the answer side of an item
func (b *Bot) itemAnswer(ctx context.Context, item *models.ReviewableItem) string {
	switch item.Kind {
	case models.ItemKindCard:
		if card, err := b.cards.GetByID(ctx, item.SourceID); err == nil {
			return card.Back
		}
	case models.ItemKindWord:
		if word, err := b.words.GetByID(ctx, item.SourceID); err == nil {
			if word.Context != "" {
				return fmt.Sprintf("%s\n%s", word.Translation, word.Context)
			}
			return word.Translation
		}
	}
	return "(missing)"
}

func (b *Bot) itemLabel(ctx context.Context, item *models.ReviewableItem) string {
	return b.itemPrompt(ctx, item)
}

func qualityKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("0", "quality:0"),
			tgbotapi.NewInlineKeyboardButtonData("1", "quality:1"),
			tgbotapi.NewInlineKeyboardButtonData("2", "quality:2"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("3", "quality:3"),
			tgbotapi.NewInlineKeyboardButtonData("4", "quality:4"),
			tgbotapi.NewInlineKeyboardButtonData("5", "quality:5"),
		),
	)
}
