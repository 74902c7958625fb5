// Package domain models the FAA Releasable Aircraft registry extract and the
// normalized relations built from it.
//
// # Data Source
//
// The FAA publishes the registry as a single archive
// (https://registry.faa.gov/database/ReleasableAircraft.zip). The fetch
// collaborator extracts three comma-delimited files into a dated snapshot
// directory alongside a manifest.json:
//
//	MASTER.txt   one row per registered N-number, owner and address inline
//	ACFTREF.txt  aircraft make/model reference keyed by MFR MDL CODE
//	ENGINE.txt   engine reference keyed by ENG MFR MDL
//
// # FAA Data Conventions
//
// Header and cell padding:
//
//	Every cell is space padded to a fixed width and every line ends with a
//	trailing comma, which produces an unnamed final column. Header names are
//	trimmed; blank header names are ignored.
//
// Dates:
//
//	YYYYMMDD, e.g. "20230115". The extract contains garbage such as
//	"00000000" and impossible calendar dates; those become null.
//
// N-numbers:
//
//	Stored without the leading "N", e.g. "221LA" for N221LA.
//
// Blank vs null:
//
//	Text columns use the empty string for blank. Only numeric and date
//	columns are nullable (pointer fields), matching the published schema.
//
// # Owner Identity
//
// Owner rows carry a synthetic owner_id: XXH64 (seed 0) of the N-number and
// the five standardized owner fields joined by "|". The id is stable across
// runs without a persisted sequence. It is NOT unique: identical owner facts
// hash to the same id on purpose, and unrelated owners may collide. See
// [OwnerID].
//
// # Deregistration
//
// The snapshot carries no deregistration signal, so Aircraft.IsDeregistered
// is always false.
package domain
