// Package importexport moves deck data across the application boundary:
// a versioned JSON envelope for full deck transfer and a CSV rendering for
// spreadsheets. Import goes through structural validation and conflict
// resolution before anything is handed to storage.
package importexport

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/hakusan/kioku/internal/domain"
)

// ExportVersion is the current export envelope version.
const ExportVersion = "1.0.0"

// ExportData is the envelope for one deck's full transfer: the deck, its
// cards, and optionally its review history.
type ExportData struct {
	Version    string              `json:"version"`
	ExportedAt time.Time           `json:"exported_at"`
	Deck       *domain.Deck        `json:"deck"`
	Cards      []*domain.Flashcard `json:"cards"`
	Reviews    []*domain.ReviewLog `json:"reviews,omitempty"`
}

// ExportDeck assembles the export envelope for a deck. Pass nil reviews to
// omit history.
func ExportDeck(
	deck *domain.Deck,
	cards []*domain.Flashcard,
	reviews []*domain.ReviewLog,
	exportedAt time.Time,
) *ExportData {
	if cards == nil {
		// An empty deck still exports "cards": [], which reimports cleanly.
		cards = []*domain.Flashcard{}
	}
	return &ExportData{
		Version:    ExportVersion,
		ExportedAt: exportedAt,
		Deck:       deck,
		Cards:      cards,
		Reviews:    reviews,
	}
}

// ToJSON serializes the envelope, indented when pretty is set.
func ToJSON(data *ExportData, pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(data, "", "  ")
	}
	return json.Marshal(data)
}

// ExportCSV renders cards as spreadsheet rows with columns
// front,back,notes,tags; tags are joined with ", ". Fields are quoted per
// RFC 4180 when they contain a comma, quote or newline.
func ExportCSV(cards []*domain.Flashcard) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"front", "back", "notes", "tags"}); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, card := range cards {
		row := []string{card.Front, card.Back, card.Notes, strings.Join(card.Tags, ", ")}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush CSV: %w", err)
	}

	return buf.Bytes(), nil
}
