package domain

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Keys are identifiers, codes, bill numbers and sessions. They are passed to
// Cypher as parameters, but are still restricted so a malformed request fails
// before any traversal runs.
var keyRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9 ._:/-]{0,127}$`)

const (
	maxTextLength = 200
	minFiscalYear = 1867
	maxFiscalYear = 9999
)

// ValidateKey checks a required root-entity key.
func ValidateKey(field, key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return NewValidationError(field, key, ErrMissingKey)
	}
	if !keyRegex.MatchString(key) {
		return NewValidationError(field, key, ErrInvalidKey)
	}
	return nil
}

// ValidatePage rejects negative pagination values.
func ValidatePage(p Page) error {
	if p.Limit < 0 {
		return NewValidationError("limit", strconv.Itoa(p.Limit), ErrInvalidLimit)
	}
	if p.Offset < 0 {
		return NewValidationError("offset", strconv.Itoa(p.Offset), ErrInvalidOffset)
	}
	return nil
}

// ValidateDateRange rejects a range whose start is after its end.
func ValidateDateRange(field string, r DateRange) error {
	if !r.From.IsZero() && !r.To.IsZero() && r.From.After(r.To) {
		return NewValidationError(field, r.From.Format("2006-01-02")+".."+r.To.Format("2006-01-02"), ErrInvalidDateRange)
	}
	return nil
}

func validateText(text string) error {
	if utf8.RuneCountInString(text) > maxTextLength {
		return NewValidationError("text", string([]rune(text)[:32])+"...", ErrInvalidFilter)
	}
	return nil
}

func validateOptionalKey(field, key string) error {
	if key == "" {
		return nil
	}
	return ValidateKey(field, key)
}

// ValidateLegislatorFilter validates a legislator search.
func ValidateLegislatorFilter(f LegislatorFilter) error {
	if err := ValidatePage(f.Page); err != nil {
		return err
	}
	if err := validateText(f.Text); err != nil {
		return err
	}
	return validateOptionalKey("party", f.Party)
}

// ValidateBillFilter validates a bill search.
func ValidateBillFilter(f BillFilter) error {
	if err := ValidatePage(f.Page); err != nil {
		return err
	}
	if err := validateText(f.Text); err != nil {
		return err
	}
	if err := validateOptionalKey("session", f.Session); err != nil {
		return err
	}
	switch f.Type {
	case "", BillTypeGovernment, BillTypePrivate:
	default:
		return NewValidationError("type", f.Type, ErrInvalidBillType)
	}
	return ValidateDateRange("introduced", f.Introduced)
}

// ValidateStatementFilter validates a statement search. Text is required.
func ValidateStatementFilter(f StatementFilter) error {
	if err := ValidatePage(f.Page); err != nil {
		return err
	}
	if strings.TrimSpace(f.Text) == "" {
		return NewValidationError("text", f.Text, ErrMissingKey)
	}
	if err := validateText(f.Text); err != nil {
		return err
	}
	switch f.Mode {
	case "", SearchFullText, SearchSemantic:
	default:
		return NewValidationError("mode", f.Mode, ErrInvalidMode)
	}
	return ValidateDateRange("date", f.Date)
}

// ValidateFiscalYear validates an optional fiscal-year filter.
func ValidateFiscalYear(year *int) error {
	if year == nil {
		return nil
	}
	if *year < minFiscalYear || *year > maxFiscalYear {
		return NewValidationError("fiscal_year", strconv.Itoa(*year), ErrInvalidYear)
	}
	return nil
}
