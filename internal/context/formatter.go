package context

import (
	"fmt"
	"time"

	"github.com/redlens/redlens/internal/activity"
)

// DateLayout is the calendar date format used in context lines.
const DateLayout = "2006-01-02"

const preamble = "Below is a summary of a Reddit user's recent activity (comments and posts), " +
	"ordered from newest to oldest. Each item includes a citation ID [SRCXXX] " +
	"that links to the original content.\n\n"

// Formatter renders processed activity into prompt-ready lines.
type Formatter struct{}

// NewFormatter creates a Formatter.
func NewFormatter() *Formatter { return &Formatter{} }

// Preamble describes the context layout to the model.
func (f *Formatter) Preamble() string { return preamble }

// FormatItem renders one item as a single newline-terminated line.
func (f *Formatter) FormatItem(it activity.ProcessedItem) string {
	date := FormatDate(it.CreatedAt)
	switch it.Kind {
	case activity.KindPost:
		return fmt.Sprintf("[%s] POST (%s): Title: %s. Content: %s\n", it.CitationID, date, it.Title, it.Content)
	default:
		return fmt.Sprintf("[%s] COMMENT (%s): %s\n", it.CitationID, date, it.Content)
	}
}

// FormatDate renders t the way context lines do.
func FormatDate(t time.Time) string { return t.UTC().Format(DateLayout) }
