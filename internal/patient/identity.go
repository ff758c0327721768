package patient

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/carelake/patientload/internal/normalize"
)

// GenerateID derives the stable surrogate key for a patient record.
//
// The key is the SHA-256 hex digest of "name|isoDate", where name is
// lowercased with all whitespace collapsed to single spaces (the same
// collapsed form normalize.NormalizeName stores) and isoDate is the
// normalized admission date or the empty string when the date is missing
// or unparsable. Identical logical inputs always produce the same digest
// across runs, which is what makes re-running the whole pipeline
// idempotent: no other field influences the key.
//
// Known limitation: two genuinely different patients sharing a name and an
// admission date collapse into a single document.
func GenerateID(name any, admissionDate any) string {
	n := strings.ToLower(strings.Join(strings.Fields(stringify(name)), " "))

	d := ""
	if iso := normalize.ToISODate(admissionDate); iso != nil {
		d = *iso
	}

	sum := sha256.Sum256([]byte(n + "|" + d))
	return hex.EncodeToString(sum[:])
}

// stringify renders a raw cell value for hashing: missing values become
// the empty string, everything else its default textual form.
func stringify(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
