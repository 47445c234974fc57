package domain

import "errors"

var (
	// Ledger errors
	ErrEmptyLedger    = errors.New("ledger contains no data rows")
	ErrMissingColumn  = errors.New("ledger is missing a required column")
	ErrInvalidLedgers = errors.New("ledger validation failed")
	ErrNoArtists      = errors.New("no artists found in revenue ledger")

	// Per-artist errors
	ErrNoRevenueData       = errors.New("no revenue rows for artist")
	ErrMissingCostRecord   = errors.New("no cost record for artist")
	ErrAmbiguousCostRecord = errors.New("more than one cost record for artist")

	// Batch errors
	ErrRunNotFound        = errors.New("batch run not found")
	ErrSettlementNotFound = errors.New("settlement not found")
	ErrInvalidShareRate   = errors.New("share rate must be between 0 and 1")
)
