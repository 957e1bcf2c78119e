package validators

import (
	"fmt"
	"regexp"
	"time"
	"unicode"

	pkgerrors "github.com/tollnet/interop-backoffice/pkg/errors"
)

var (
	dateParamRe   = regexp.MustCompile(`^\d{8}$`)
	operatorIDRe  = regexp.MustCompile(`^[A-Z]+$`)
	stationIDRe   = regexp.MustCompile(`^[A-Z0-9]+$`)
	roadNameRe    = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9 .-]*$`)
	dateParamForm = "20060102"
)

// Date parses an 8-digit YYYYMMDD path parameter into a UTC midnight day.
func Date(name, value string) (time.Time, error) {
	if !dateParamRe.MatchString(value) {
		return time.Time{}, badParam(name, "must be an 8-digit YYYYMMDD date")
	}
	day, err := time.ParseInLocation(dateParamForm, value, time.UTC)
	if err != nil {
		return time.Time{}, badParam(name, "is not a valid calendar date")
	}
	return day, nil
}

// DateRange parses an inclusive [from, to] day pair and rejects inverted
// ranges.
func DateRange(fromValue, toValue string) (from, to time.Time, err error) {
	from, err = Date("date_from", fromValue)
	if err != nil {
		return
	}
	to, err = Date("date_to", toValue)
	if err != nil {
		return
	}
	if to.Before(from) {
		err = badParam("date_to", "must not precede date_from")
	}
	return
}

// OperatorID validates an operator code: one or more uppercase letters.
func OperatorID(name, value string) (string, error) {
	if !operatorIDRe.MatchString(value) {
		return "", badParam(name, "must be one or more uppercase letters")
	}
	return value, nil
}

// StationID validates a station code: uppercase alphanumeric with at least
// one letter and at least one digit.
func StationID(value string) (string, error) {
	if !stationIDRe.MatchString(value) {
		return "", badParam("stationID", "must be uppercase letters and digits")
	}
	var hasLetter, hasDigit bool
	for _, r := range value {
		switch {
		case unicode.IsUpper(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLetter || !hasDigit {
		return "", badParam("stationID", "must contain at least one letter and one digit")
	}
	return value, nil
}

// RoadName validates a road path parameter.
func RoadName(value string) (string, error) {
	if !roadNameRe.MatchString(value) {
		return "", badParam("road", "is not a valid road name")
	}
	return value, nil
}

func badParam(name, reason string) error {
	return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("%s %s", name, reason))
}
