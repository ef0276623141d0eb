package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/mahmoud-slama/creditapp/internal/cart"
	"github.com/mahmoud-slama/creditapp/internal/common"
	"github.com/mahmoud-slama/creditapp/internal/payment"
)

// ErrAborted is returned when the user abandons a prompt.
var ErrAborted = errors.New("aborted")

// Prompter asks questions on a terminal.
type Prompter struct {
	reader *LineReader
	writer io.Writer
}

// NewPrompter creates a prompter; nil arguments mean stdin and stdout.
func NewPrompter(r io.Reader, w io.Writer) *Prompter {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	return &Prompter{reader: NewLineReader(r), writer: w}
}

func (p *Prompter) printf(format string, args ...any) {
	if _, err := fmt.Fprintf(p.writer, format, args...); err != nil {
		slog.Debug("Failed to write prompt", "error", err)
	}
}

// Ask reads one answer. An empty answer returns def.
func (p *Prompter) Ask(ctx context.Context, label, def string) (string, error) {
	if def != "" {
		p.printf("%s", FormatPrompt(fmt.Sprintf("%s [%s]", label, def)))
	} else {
		p.printf("%s", FormatPrompt(label))
	}

	answer, err := p.reader.ReadLine(ctx)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return "", ErrAborted
		}
		return "", err
	}
	if answer == "" {
		return def, nil
	}
	return answer, nil
}

// Confirm asks a yes/no question; anything but y or yes is no.
func (p *Prompter) Confirm(ctx context.Context, question string) (bool, error) {
	answer, err := p.Ask(ctx, question+" (y/N)", "")
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// ParseItem parses "name=qty" or "name". A missing quantity is 1.
func ParseItem(s string) (string, int, error) {
	s = strings.TrimSpace(s)
	name, qtyText, hasQty := s, "", false
	if i := strings.LastIndex(s, "="); i >= 0 {
		name, qtyText, hasQty = strings.TrimSpace(s[:i]), strings.TrimSpace(s[i+1:]), true
	}
	if name == "" {
		return "", 0, fmt.Errorf("%w: product name is required in %q", common.ErrInvalidInput, s)
	}
	if !hasQty {
		return name, 1, nil
	}
	qty, err := strconv.Atoi(qtyText)
	if err != nil || qty < 1 {
		return "", 0, fmt.Errorf("%w: quantity %q must be a positive integer", common.ErrInvalidInput, qtyText)
	}
	return name, qty, nil
}

const cartHelp = `Enter items as "name" or "name=qty".
Commands: /rm <n>  /qty <n> <qty>  /clear  /done (or an empty line)`

// FillCart lets the user add, edit and remove line items until /done.
// Resolution errors are shown and the loop continues.
func (p *Prompter) FillCart(ctx context.Context, c *cart.Cart) error {
	p.printf("%s\n\n", SubtleStyle.Render(cartHelp))

	for {
		line, err := p.Ask(ctx, "Item", "")
		if err != nil {
			return err
		}

		switch fields := strings.Fields(line); {
		case line == "" || line == "/done":
			return nil
		case line == "/clear":
			c.Clear()
		case fields[0] == "/rm" && len(fields) == 2:
			n, convErr := strconv.Atoi(fields[1])
			if convErr == nil {
				convErr = c.Remove(n - 1)
			}
			if convErr != nil {
				p.printf("%s\n", FormatError(fmt.Sprintf("cannot remove %q: %v", fields[1], convErr)))
				continue
			}
		case fields[0] == "/qty" && len(fields) == 3:
			n, errN := strconv.Atoi(fields[1])
			qty, errQ := strconv.Atoi(fields[2])
			if updErr := errors.Join(errN, errQ); updErr != nil {
				p.printf("%s\n", FormatError("usage: /qty <n> <qty>"))
				continue
			}
			if updErr := c.UpdateQuantity(n-1, qty); updErr != nil {
				p.printf("%s\n", FormatError(updErr.Error()))
				continue
			}
		case strings.HasPrefix(line, "/"):
			p.printf("%s\n", FormatWarning("unknown command "+fields[0]))
			continue
		default:
			name, qty, parseErr := ParseItem(line)
			if parseErr != nil {
				p.printf("%s\n", FormatError(common.UserMessage(parseErr)))
				continue
			}
			item, addErr := c.Add(ctx, name, qty)
			if addErr != nil {
				p.printf("%s\n", FormatError(fmt.Sprintf("cannot add %q: %s", name, common.UserMessage(addErr))))
				continue
			}
			p.printf("%s\n", FormatSuccess(fmt.Sprintf("added %d × %s at %s", item.Quantity, item.Name, item.Price.StringFixed(2))))
		}

		p.printf("%s\n", RenderCart(c))
	}
}

// RenderCart draws the cart as a table with its total.
func RenderCart(c *cart.Cart) string {
	if c.Len() == 0 {
		return SubtleStyle.Render("Cart is empty")
	}
	t := NewTable("#", "Product", "Qty", "Price", "Total").AlignRight(0, 2, 3, 4)
	for i, item := range c.Items() {
		t.Add(strconv.Itoa(i+1), item.Name, strconv.Itoa(item.Quantity), item.Price.StringFixed(2), item.Total.StringFixed(2))
	}
	return t.Render() + "\n" + BoldStyle.Render("Total: "+c.TotalString())
}

// PromptPayment fills the payment form, starting from d. Card fields are
// reformatted as typed; the caller validates.
func (p *Prompter) PromptPayment(ctx context.Context, d payment.Details) (payment.Details, error) {
	steps := []struct {
		label  string
		field  *string
		format func(string) string
	}{
		{"Product", &d.ProductName, strings.TrimSpace},
		{"Amount", &d.Amount, strings.TrimSpace},
		{"Cardholder name", &d.Cardholder, strings.TrimSpace},
		{"Card number", &d.CardNumber, payment.FormatCardNumber},
		{"Expiry (MM/YY)", &d.Expiry, payment.FormatExpiry},
		{"CVV", &d.CVV, payment.FormatCVV},
	}

	for _, step := range steps {
		def := *step.field
		if step.field == &d.CardNumber || step.field == &d.CVV {
			def = ""
		}
		answer, err := p.Ask(ctx, step.label, def)
		if err != nil {
			return payment.Details{}, err
		}
		*step.field = step.format(answer)
	}
	return d, nil
}
