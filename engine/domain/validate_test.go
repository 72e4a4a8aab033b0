package domain

import (
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"
)

func TestValidateKey(t *testing.T) {
	valid := []string{"C-11", "44-1", "ETHI", "leg-123", "44th Parliament/1"}
	for _, k := range valid {
		if err := ValidateKey("id", k); err != nil {
			t.Errorf("ValidateKey(%q) = %v, want nil", k, err)
		}
	}

	if err := ValidateKey("id", "  "); !errors.Is(err, ErrMissingKey) {
		t.Errorf("expected ErrMissingKey, got %v", err)
	}
	if err := ValidateKey("id", "x}) DETACH DELETE n //"); !errors.Is(err, ErrInvalidKey) {
		t.Errorf("expected ErrInvalidKey, got %v", err)
	}
}

func TestValidationError_IsInvalidFilter(t *testing.T) {
	err := ValidatePage(Page{Limit: -1})
	if !errors.Is(err, ErrInvalidLimit) {
		t.Fatalf("expected ErrInvalidLimit, got %v", err)
	}
	if !errors.Is(err, ErrInvalidFilter) {
		t.Fatal("validation errors must also match ErrInvalidFilter")
	}
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Field != "limit" {
		t.Fatalf("expected ValidationError on limit, got %#v", err)
	}
}

func TestValidateText_TruncatesOnRuneBoundary(t *testing.T) {
	err := ValidateBillFilter(BillFilter{Text: strings.Repeat("議会", 150)})
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if !utf8.ValidString(ve.Value) {
		t.Fatalf("value is not valid UTF-8: %q", ve.Value)
	}
	if want := strings.Repeat("議会", 16) + "..."; ve.Value != want {
		t.Fatalf("value = %q, want %q", ve.Value, want)
	}
}

func TestValidatePage_NegativeOffset(t *testing.T) {
	if err := ValidatePage(Page{Offset: -5}); !errors.Is(err, ErrInvalidOffset) {
		t.Errorf("expected ErrInvalidOffset, got %v", err)
	}
}

func TestPageNormalize(t *testing.T) {
	tests := []struct {
		in, want Page
	}{
		{Page{}, Page{Limit: DefaultLimit}},
		{Page{Limit: 10, Offset: 5}, Page{Limit: 10, Offset: 5}},
		{Page{Limit: 5000}, Page{Limit: MaxLimit}},
	}
	for _, tt := range tests {
		if got := tt.in.Normalize(); got != tt.want {
			t.Errorf("Normalize(%+v) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestValidateBillFilter(t *testing.T) {
	from := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	err := ValidateBillFilter(BillFilter{Introduced: DateRange{From: from, To: to}})
	if !errors.Is(err, ErrInvalidDateRange) {
		t.Errorf("expected ErrInvalidDateRange, got %v", err)
	}

	err = ValidateBillFilter(BillFilter{Type: "omnibus"})
	if !errors.Is(err, ErrInvalidBillType) {
		t.Errorf("expected ErrInvalidBillType, got %v", err)
	}

	if err := ValidateBillFilter(BillFilter{Status: StatusPassed, Type: BillTypeGovernment}); err != nil {
		t.Errorf("expected valid, got %v", err)
	}
	if err := ValidateBillFilter(BillFilter{}); err != nil {
		t.Errorf("empty filter must be valid, got %v", err)
	}
}

func TestValidateStatementFilter(t *testing.T) {
	if err := ValidateStatementFilter(StatementFilter{}); !errors.Is(err, ErrMissingKey) {
		t.Errorf("expected ErrMissingKey, got %v", err)
	}
	if err := ValidateStatementFilter(StatementFilter{Text: "carbon tax", Mode: "fuzzy"}); !errors.Is(err, ErrInvalidMode) {
		t.Errorf("expected ErrInvalidMode, got %v", err)
	}
	if err := ValidateStatementFilter(StatementFilter{Text: strings.Repeat("a", 500)}); !errors.Is(err, ErrInvalidFilter) {
		t.Errorf("expected ErrInvalidFilter for long text, got %v", err)
	}
	if err := ValidateStatementFilter(StatementFilter{Text: "carbon tax", Mode: SearchSemantic}); err != nil {
		t.Errorf("expected valid, got %v", err)
	}
}

func TestValidateFiscalYear(t *testing.T) {
	if err := ValidateFiscalYear(nil); err != nil {
		t.Errorf("nil year must be valid, got %v", err)
	}
	y := 2025
	if err := ValidateFiscalYear(&y); err != nil {
		t.Errorf("expected valid, got %v", err)
	}
	bad := 12
	if err := ValidateFiscalYear(&bad); !errors.Is(err, ErrInvalidYear) {
		t.Errorf("expected ErrInvalidYear, got %v", err)
	}
}

func TestParsePosition(t *testing.T) {
	tests := []struct {
		in   string
		want Position
		ok   bool
	}{
		{"Yea", PositionYea, true},
		{" aye ", PositionYea, true},
		{"NAY", PositionNay, true},
		{"Paired", PositionPaired, true},
		{"Yes", PositionYea, true},
		{"no", PositionNay, true},
		{"abstain", "", false},
	}
	for _, tt := range tests {
		got, ok := ParsePosition(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParsePosition(%q) = (%q, %v), want (%q, %v)", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestErrorTaxonomy(t *testing.T) {
	nf := NotFound("legislator", "L1")
	if !errors.Is(nf, ErrNotFound) || IsRetryable(nf) {
		t.Fatalf("not-found must match ErrNotFound and not be retryable: %v", nf)
	}

	se := &StoreError{Op: "scorecard", Err: errors.New("connection refused")}
	if !errors.Is(se, ErrStoreUnavailable) || !IsRetryable(se) {
		t.Fatalf("store errors must be retryable: %v", se)
	}
	if errors.Is(se, ErrNotFound) {
		t.Fatal("store error must not look like not-found")
	}
}
