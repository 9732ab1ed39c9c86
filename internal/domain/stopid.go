package domain

import (
	"regexp"
	"strings"
)

// StopIDWidth is the fixed width of an ARS stop id.
const StopIDWidth = 5

var (
	nonDigitRe = regexp.MustCompile(`\D`)

	// lookupStopIDRe is the coarse shape of stop ids the route-lookup service
	// accepts: "01xxx" or "01-xxx".
	lookupStopIDRe = regexp.MustCompile(`^(01\d{3}|01-\d{3})$`)
)

// NormalizeStopID strips every non-digit and left-pads the residue with zeros
// to StopIDWidth. An empty residue or one wider than StopIDWidth is not a stop
// id and yields "".
func NormalizeStopID(raw string) string {
	digits := nonDigitRe.ReplaceAllString(raw, "")
	if digits == "" || len(digits) > StopIDWidth {
		return ""
	}
	return strings.Repeat("0", StopIDWidth-len(digits)) + digits
}

// NormalizeLookupStopID applies the lookup shape check before normalizing.
// Inputs that do not look like a lookup-family stop id yield "".
func NormalizeLookupStopID(raw string) string {
	s := strings.TrimSpace(raw)
	if !lookupStopIDRe.MatchString(s) {
		return ""
	}
	return NormalizeStopID(s)
}
