package audit

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
)

// fingerprintMode is a deterministic CBOR encoder: map keys are sorted so the
// same value always serializes to the same bytes, which keeps fingerprints
// stable across processes.
var fingerprintMode cbor.EncMode

func init() {
	opts := cbor.CanonicalEncOptions()
	mode, err := opts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("audit: cbor encoder options invalid: %v", err))
	}
	fingerprintMode = mode
}

// Fingerprint returns a short, collision-tolerant digest of v for audit
// traceability. It is a content fingerprint, not a security primitive: do not
// use it for integrity or authentication. A nil value fingerprints to "0".
//
// Values that cannot be CBOR-encoded fall back to fingerprinting their Go
// string rendering so Fingerprint is total.
func Fingerprint(v any) string {
	if v == nil {
		return "0"
	}
	data, err := fingerprintMode.Marshal(v)
	if err != nil {
		data = []byte(fmt.Sprintf("%+v", v))
	}
	return fmt.Sprintf("%016x", xxhash.Sum64(data))
}

// newRecordID generates the unique identifier for a new audit record.
func newRecordID() string {
	return uuid.New().String()
}
