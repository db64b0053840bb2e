package reconciler

import "time"

const (
	defaultProgressEvery uint64 = 1000

	sleepDuration       = 5 * time.Second
	defaultPollInterval = 15 * time.Second

	phaseBackfill = "backfill"
	phaseStream   = "stream"

	outcomeInserted    = "inserted"
	outcomePlaceholder = "placeholder"
	outcomeDuplicate   = "duplicate"
	outcomeError       = "error"
)
