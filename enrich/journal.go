package enrich

import (
	"log/slog"

	"github.com/hazyhaar/walletscan/enrich/internal/journal"

	_ "modernc.org/sqlite"
)

// Journal is the SQLite run journal. Re-exported from internal.
type Journal = journal.Journal

// JournalRun is one row of the runs table.
type JournalRun = journal.Run

// JournalOutcome is one recorded wallet outcome.
type JournalOutcome = journal.Outcome

// JournalTotals are the per-run counters.
type JournalTotals = journal.Totals

// OpenJournal opens or creates the journal database at path.
func OpenJournal(path string, logger *slog.Logger) (*Journal, error) {
	return journal.Open(path, logger)
}
