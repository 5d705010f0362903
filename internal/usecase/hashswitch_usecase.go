package usecase

import (
	"context"

	"biblio/internal/domain/entity"

	"github.com/google/uuid"
)

// Table names reported in per-record migration failures.
const (
	TableUsers = "users"
	TableCards = "user_cards"
)

// SwitchInput describes the target catalog password protection scheme.
type SwitchInput struct {
	// Disable turns catalog password encryption off: stored secrets are
	// decrypted back into the legacy plaintext column.
	Disable bool

	// Algorithm names the new cipher. Ignored when Disable is set.
	Algorithm string

	// Key is the new key material. When empty, the currently configured key
	// is kept. A target scheme that ends up enabled with no key at all is a
	// fatal error; nothing is written.
	Key string
}

// RecordFailure describes one credential row that could not be migrated.
// The batch carries on past these; the caller decides how to report them.
type RecordFailure struct {
	Table    string
	ID       uuid.UUID
	Username string
	Err      error
}

// ResultCount tallies one table's migration outcome.
type ResultCount struct {
	Migrated int
	Failed   int
}

// SwitchResult summarizes a re-encryption run.
type SwitchResult struct {
	// NoOp is set when the target scheme equals the current one. Nothing
	// was written, neither configuration nor rows.
	NoOp bool

	Old entity.EncryptionSetting
	New entity.EncryptionSetting

	Users    ResultCount
	Cards    ResultCount
	Failures []RecordFailure
}

// HashSwitchUsecase re-encrypts every stored catalog credential under a new
// protection scheme, updating the durable configuration first so the system
// always knows how to read what the database holds.
type HashSwitchUsecase interface {
	Switch(ctx context.Context, input *SwitchInput) (*SwitchResult, error)
}
