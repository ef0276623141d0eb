// Package payment validates card payments and simulates their processing.
// No card data leaves the process; the backend has no payment endpoint.
package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultDelay is how long a simulated payment takes.
const DefaultDelay = 3 * time.Second

// Validation errors.
var (
	ErrProductRequired    = errors.New("product name is required")
	ErrAmountRequired     = errors.New("amount is required")
	ErrInvalidAmount      = errors.New("amount must be a positive number")
	ErrCardholderRequired = errors.New("cardholder name is required")
	ErrCardNumber         = errors.New("card number must be 16 digits")
	ErrExpiryFormat       = errors.New("invalid expiry date format (MM/YY)")
	ErrCVV                = errors.New("CVV must be at least 3 digits")
)

var (
	nonDigit    = regexp.MustCompile(`\D`)
	expiryShape = regexp.MustCompile(`^\d{2}/\d{2}$`)
)

// Details is the payment form.
type Details struct {
	ProductName string
	Amount      string
	Cardholder  string
	CardNumber  string
	Expiry      string
	CVV         string
	Quantity    int
}

// FormatCardNumber keeps at most 16 digits and groups them by four.
func FormatCardNumber(s string) string {
	digits := nonDigit.ReplaceAllString(s, "")
	if len(digits) > 16 {
		digits = digits[:16]
	}

	var groups []string
	for len(digits) > 4 {
		groups = append(groups, digits[:4])
		digits = digits[4:]
	}
	if digits != "" {
		groups = append(groups, digits)
	}
	return strings.Join(groups, " ")
}

// FormatExpiry keeps at most four digits and inserts the slash after the month.
func FormatExpiry(s string) string {
	digits := nonDigit.ReplaceAllString(s, "")
	if len(digits) > 4 {
		digits = digits[:4]
	}
	if len(digits) > 2 {
		return digits[:2] + "/" + digits[2:]
	}
	return digits
}

// FormatCVV keeps at most four digits.
func FormatCVV(s string) string {
	digits := nonDigit.ReplaceAllString(s, "")
	if len(digits) > 4 {
		digits = digits[:4]
	}
	return digits
}

// Normalize applies the input formatters to every card field.
func (d Details) Normalize() Details {
	d.CardNumber = FormatCardNumber(d.CardNumber)
	d.Expiry = FormatExpiry(d.Expiry)
	d.CVV = FormatCVV(d.CVV)
	d.ProductName = strings.TrimSpace(d.ProductName)
	d.Cardholder = strings.TrimSpace(d.Cardholder)
	d.Amount = strings.TrimSpace(d.Amount)
	return d
}

// ParsedAmount returns the amount as a decimal.
func (d Details) ParsedAmount() (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(d.Amount))
	if err != nil || !amount.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, d.Amount)
	}
	return amount, nil
}

// Last4 returns the last four card digits.
func (d Details) Last4() string {
	digits := nonDigit.ReplaceAllString(d.CardNumber, "")
	if len(digits) < 4 {
		return digits
	}
	return digits[len(digits)-4:]
}

// Validate returns every field error, joined.
func (d Details) Validate() error {
	var errs []error

	if strings.TrimSpace(d.ProductName) == "" {
		errs = append(errs, ErrProductRequired)
	}
	if strings.TrimSpace(d.Amount) == "" {
		errs = append(errs, ErrAmountRequired)
	} else if _, err := d.ParsedAmount(); err != nil {
		errs = append(errs, err)
	}
	if strings.TrimSpace(d.Cardholder) == "" {
		errs = append(errs, ErrCardholderRequired)
	}
	if len(nonDigit.ReplaceAllString(d.CardNumber, "")) != 16 {
		errs = append(errs, ErrCardNumber)
	}
	if !expiryShape.MatchString(d.Expiry) {
		errs = append(errs, ErrExpiryFormat)
	}
	if len(d.CVV) < 3 {
		errs = append(errs, ErrCVV)
	}

	return errors.Join(errs...)
}

// Receipt confirms a processed payment.
type Receipt struct {
	ProcessedAt time.Time
	Reference   string
	ProductName string
	Last4       string
	Amount      decimal.Decimal
}

// Processor simulates a payment gateway.
type Processor struct {
	Now   func() time.Time
	Delay time.Duration
}

// NewProcessor creates a processor with the default delay.
func NewProcessor() *Processor {
	return &Processor{Delay: DefaultDelay, Now: time.Now}
}

// Process validates d, waits for the simulated gateway and returns a receipt.
// It returns ctx.Err() if the context ends first.
func (p *Processor) Process(ctx context.Context, d Details) (Receipt, error) {
	d = d.Normalize()
	if err := d.Validate(); err != nil {
		return Receipt{}, err
	}
	amount, _ := d.ParsedAmount()

	if p.Delay > 0 {
		timer := time.NewTimer(p.Delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return Receipt{}, ctx.Err()
		case <-timer.C:
		}
	}

	now := time.Now
	if p.Now != nil {
		now = p.Now
	}

	receipt := Receipt{
		Reference:   uuid.NewString(),
		ProductName: d.ProductName,
		Last4:       d.Last4(),
		Amount:      amount,
		ProcessedAt: now(),
	}
	slog.Info("Payment processed",
		"reference", receipt.Reference,
		"amount", amount.StringFixed(2),
		"last4", receipt.Last4)

	return receipt, nil
}
