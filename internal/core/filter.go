package core

import "time"

// EntryFilter narrows entry listings. Zero values mean "no constraint";
// From/To are inclusive date bounds.
type EntryFilter struct {
	LedgerID    int64
	InstituteID int64
	CategoryID  int64
	Source      Source
	From        time.Time
	To          time.Time
}

// LedgerFilter narrows ledger listings.
type LedgerFilter struct {
	InstituteID int64
	Type        LedgerType
}
