package excel

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/example/lexibot/internal/database"
	"github.com/example/lexibot/pkg/models"
)

// ImportResult holds the result of an import operation
type ImportResult struct {
	TotalProcessed int
	Created        int
	Skipped        int
	Errors         []string
}

// Importer loads vocabulary from spreadsheets into a user's deck. Every
// imported word gets a review item that is immediately due.
type Importer struct {
	decks *database.DeckRepository
	words *database.WordRepository
	items *database.ItemRepository
}

// NewImporter creates a new importer instance
func NewImporter() *Importer {
	return &Importer{
		decks: database.NewDeckRepository(),
		words: database.NewWordRepository(),
		items: database.NewItemRepository(),
	}
}

// ImportReader reads an .xlsx stream with term/translation/context columns
// and imports its rows into the named deck, creating the deck on first
// use. A header row is skipped when the first cell says "term" or "word".
func (imp *Importer) ImportReader(ctx context.Context, userID int64, deckName string, r io.Reader) (*ImportResult, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open spreadsheet: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("spreadsheet has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %v", err)
	}

	deck, err := imp.decks.GetOrCreate(ctx, userID, deckName, "")
	if err != nil {
		return nil, err
	}

	result := &ImportResult{}
	for i, row := range rows {
		if len(row) == 0 || strings.TrimSpace(row[0]) == "" {
			continue
		}
		if i == 0 && isHeaderRow(row) {
			continue
		}

		result.TotalProcessed++
		if err := imp.importRow(ctx, deck, row, result); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", i+1, err))
		}
	}
	return result, nil
}

func (imp *Importer) importRow(ctx context.Context, deck *models.Deck, row []string, result *ImportResult) error {
	word := models.Word{
		DeckID: deck.ID,
		Term:   strings.TrimSpace(row[0]),
	}
	if len(row) > 1 {
		word.Translation = strings.TrimSpace(row[1])
	}
	if len(row) > 2 {
		word.Context = strings.TrimSpace(row[2])
	}
	if word.Translation == "" {
		return fmt.Errorf("missing translation for %q", word.Term)
	}

	// Skip words already in the deck, repairing a missing review item so
	// re-importing a sheet backfills anything that never got scheduled
	existing, err := imp.words.GetByTerm(ctx, deck.ID, word.Term)
	if err == nil {
		result.Skipped++
		if _, err := imp.items.GetBySource(ctx, models.ItemKindWord, existing.ID); errors.Is(err, database.ErrNotFound) {
			item := models.NewReviewableItem(deck.ID, models.ItemKindWord, existing.ID, time.Now().UTC())
			return imp.items.Create(ctx, &item)
		}
		return nil
	}
	if !errors.Is(err, database.ErrNotFound) {
		return err
	}

	if err := imp.words.Create(ctx, &word); err != nil {
		return err
	}

	item := models.NewReviewableItem(deck.ID, models.ItemKindWord, word.ID, time.Now().UTC())
	if err := imp.items.Create(ctx, &item); err != nil {
		return err
	}

	result.Created++
	return nil
}

func isHeaderRow(row []string) bool {
	first := strings.ToLower(strings.TrimSpace(row[0]))
	return first == "term" || first == "word"
}
