package core

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// MainCategory is the closed set of top-level expense categories.
type MainCategory string

const (
	CategoryFood          MainCategory = "food"
	CategoryTransport     MainCategory = "transportation"
	CategoryShopping      MainCategory = "shopping"
	CategoryBills         MainCategory = "bills"
	CategoryEntertainment MainCategory = "entertainment"
	CategoryHealth        MainCategory = "health"
	CategoryEducation     MainCategory = "education"
	CategoryTravel        MainCategory = "travel"
	CategorySubscriptions MainCategory = "subscriptions"
	CategoryOther         MainCategory = "other"
)

// MainCategories lists every valid category in a stable order.
var MainCategories = []MainCategory{
	CategoryFood,
	CategoryTransport,
	CategoryShopping,
	CategoryBills,
	CategoryEntertainment,
	CategoryHealth,
	CategoryEducation,
	CategoryTravel,
	CategorySubscriptions,
	CategoryOther,
}

// Source records how an expense entered the system.
type Source string

const (
	SourceManual Source = "manual"
	SourceCSV    Source = "csv"
	SourcePDF    Source = "pdf"
)

var (
	ErrInvalidAmount   = errors.New("amount must be a positive decimal")
	ErrInvalidCategory = errors.New("unknown main category")
	ErrInvalidSource   = errors.New("unknown source")
	ErrInvalidMonthKey = errors.New("month must be in YYYY-MM format")
	ErrInvalidDate     = errors.New("date is required")
)

// ParseMainCategory validates a category string against the closed set.
func ParseMainCategory(s string) (MainCategory, error) {
	c := MainCategory(strings.ToLower(strings.TrimSpace(s)))
	for _, valid := range MainCategories {
		if c == valid {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidCategory, s)
}

// ParseSource validates a source string. Empty defaults to manual.
func ParseSource(s string) (Source, error) {
	src := Source(strings.ToLower(strings.TrimSpace(s)))
	switch src {
	case "":
		return SourceManual, nil
	case SourceManual, SourceCSV, SourcePDF:
		return src, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidSource, s)
}

// ParseAmount parses a positive decimal amount from its string form.
func ParseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if !d.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

var monthKeyPattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// MonthKey identifies a calendar month as "YYYY-MM".
type MonthKey string

// ParseMonthKey validates the YYYY-MM pattern.
func ParseMonthKey(s string) (MonthKey, error) {
	s = strings.TrimSpace(s)
	if !monthKeyPattern.MatchString(s) {
		return "", fmt.Errorf("%w: %q", ErrInvalidMonthKey, s)
	}
	return MonthKey(s), nil
}

// MonthKeyFor returns the month key of the given time.
func MonthKeyFor(t time.Time) MonthKey {
	return MonthKey(t.Format("2006-01"))
}

// Year returns the calendar year of the key.
func (k MonthKey) Year() int {
	t, _ := time.Parse("2006-01", string(k))
	return t.Year()
}

// Month returns the 1-12 month number of the key.
func (k MonthKey) Month() int {
	t, _ := time.Parse("2006-01", string(k))
	return int(t.Month())
}

// Name renders the key as "January 2006".
func (k MonthKey) Name() string {
	t, err := time.Parse("2006-01", string(k))
	if err != nil {
		return string(k)
	}
	return t.Format("January 2006")
}

// Date is a calendar date. It marshals as "2006-01-02" in JSON.
type Date struct {
	time.Time
}

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a "2006-01-02" date string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte(`""`), nil
	}
	return []byte(`"` + d.Format("2006-01-02") + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		d.Time = time.Time{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	d.Time = parsed.Time
	return nil
}

// MonthKey returns the period key derived from the date.
func (d Date) MonthKey() MonthKey {
	return MonthKeyFor(d.Time)
}

// Expense is a single ledger entry owned by one user. Year and Month are
// derived from Date at write time and must always match it.
type Expense struct {
	ID           string          `json:"id"`
	UserID       string          `json:"userId"`
	Amount       decimal.Decimal `json:"amount"`
	MainCategory MainCategory    `json:"mainCategory"`
	SubCategory  string          `json:"subCategory"`
	Date         Date            `json:"date"`
	Year         int             `json:"year"`
	Month        int             `json:"month"`
	Note         string          `json:"note"`
	Source       Source          `json:"source"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// SetPeriod derives Year and Month from the expense date.
func (e *Expense) SetPeriod() {
	e.Year = e.Date.Year()
	e.Month = int(e.Date.Time.Month())
}

func (e Expense) Validate() error {
	if !e.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if _, err := ParseMainCategory(string(e.MainCategory)); err != nil {
		return err
	}
	if _, err := ParseSource(string(e.Source)); err != nil {
		return err
	}
	if e.Date.IsZero() {
		return ErrInvalidDate
	}
	if e.Year != e.Date.Year() || e.Month != int(e.Date.Time.Month()) {
		return errors.New("period key does not match date")
	}
	return nil
}

// Income is the single budget record for one (user, month).
type Income struct {
	ID        string          `json:"id"`
	UserID    string          `json:"userId"`
	Amount    decimal.Decimal `json:"amount"`
	Month     MonthKey        `json:"month"`
	Note      string          `json:"note"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

func (in Income) Validate() error {
	if !in.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if _, err := ParseMonthKey(string(in.Month)); err != nil {
		return err
	}
	return nil
}

// User identifies an account holder.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
