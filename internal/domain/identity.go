package domain

import (
	"strings"

	"github.com/cespare/xxhash/v2"
)

// ownerIDSeparator joins the identity fields. It does not occur in
// standardized owner fields.
const ownerIDSeparator = "|"

// OwnerID derives the synthetic owner identity: XXH64 with seed 0 over the
// UTF-8 bytes of the six fields joined by "|".
//
// The hash is non-cryptographic and collision tolerant. It is a stable join
// and dedup key, not a uniqueness guarantee: two records with the same
// N-number and standardized owner fields share an id by design, and distinct
// owners may collide. The same inputs always produce the same value across
// runs and platforms.
func OwnerID(nNumber, ownerNameStd, addressAllStd, cityStd, stateStd, zip5 string) uint64 {
	key := strings.Join([]string{nNumber, ownerNameStd, addressAllStd, cityStd, stateStd, zip5}, ownerIDSeparator)
	return xxhash.Sum64String(key)
}

// OwnerIDOf recomputes the identity of an already standardized owner row.
func OwnerIDOf(o Owner) uint64 {
	return OwnerID(o.NNumber, o.OwnerNameStd, o.AddressAllStd, o.CityStd, o.StateStd, o.Zip5)
}
