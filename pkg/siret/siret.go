package siret

import "errors"

// Validation errors. Format errors are reported before checksum errors so
// callers can distinguish "not even a candidate" from "well-formed but wrong".
var (
	ErrFormat      = errors.New("identifier must contain only digits and have the expected length")
	ErrChecksum    = errors.New("identifier checksum is invalid")
	ErrConsistency = errors.New("establishment identifier does not start with a valid organization identifier")
)

const (
	sirenLength = 9
	siretLength = 14
)

// ValidateSIREN checks a 9-digit organization identifier (format first, then
// Luhn mod-10 checksum).
func ValidateSIREN(siren string) error {
	if !isDigits(siren, sirenLength) {
		return ErrFormat
	}
	if !luhnValid(siren) {
		return ErrChecksum
	}
	return nil
}

// ValidateSIRET checks a 14-digit establishment identifier. The first 9 digits
// must themselves form a valid SIREN.
func ValidateSIRET(siret string) error {
	if !isDigits(siret, siretLength) {
		return ErrFormat
	}
	if !luhnValid(siret) {
		return ErrChecksum
	}
	if err := ValidateSIREN(siret[:sirenLength]); err != nil {
		return ErrConsistency
	}
	return nil
}

// ValidateIdentifiers validates whichever of siren/siret are present (empty
// strings are skipped) and, when both are given, checks that the SIRET belongs
// to the SIREN.
func ValidateIdentifiers(siren, siret string) error {
	if siren != "" {
		if err := ValidateSIREN(siren); err != nil {
			return err
		}
	}
	if siret != "" {
		if err := ValidateSIRET(siret); err != nil {
			return err
		}
		if siren != "" && siret[:sirenLength] != siren {
			return ErrConsistency
		}
	}
	return nil
}

func isDigits(s string, length int) bool {
	if len(s) != length {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// luhnValid implements the mod-10 check: weight 2 on every second digit from
// the right, folding two-digit products by summing their digits.
func luhnValid(s string) bool {
	sum := 0
	double := false
	for i := len(s) - 1; i >= 0; i-- {
		d := int(s[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}
