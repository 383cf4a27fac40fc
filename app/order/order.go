package order

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopbot/miniapp-shop/models"
	"github.com/shopspring/decimal"
)

// Buyer identifies the chat user who submitted a cart.
type Buyer struct {
	ChatID    int64
	Username  string
	FirstName string
}

// DisplayName is the @handle when known, then the first name, then the id.
func (b Buyer) DisplayName() string {
	switch {
	case b.Username != "":
		return "@" + b.Username
	case b.FirstName != "":
		return b.FirstName
	default:
		return fmt.Sprintf("id %d", b.ChatID)
	}
}

type Order struct {
	Lines     []Line
	Total     decimal.Decimal
	Buyer     Buyer
	CreatedAt time.Time
}

// NewOrder prices the lines server side.
func NewOrder(lines []Line, buyer Buyer, now time.Time) Order {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Total())
	}
	return Order{
		Lines:     lines,
		Total:     total,
		Buyer:     buyer,
		CreatedAt: now,
	}
}

// Record converts the order into its ledger row.
func (o Order) Record() *models.Order {
	rec := &models.Order{
		BuyerChatID:   o.Buyer.ChatID,
		BuyerUsername: o.Buyer.Username,
		BuyerName:     o.Buyer.FirstName,
		Total:         o.Total,
		Lines:         make([]models.OrderLine, len(o.Lines)),
		CreatedAt:     o.CreatedAt,
	}
	for i, l := range o.Lines {
		rec.Lines[i] = models.OrderLine{
			Position:  i,
			Name:      l.Name,
			Price:     l.Price,
			Quantity:  l.Quantity,
			LineTotal: l.Total(),
		}
	}
	return rec
}

// Receipt is the human readable summary of an order.
type Receipt struct {
	Lines    []string
	Total    decimal.Decimal
	Currency string
}

func NewReceipt(o Order, currency string) Receipt {
	lines := make([]string, len(o.Lines))
	for i, l := range o.Lines {
		lines[i] = fmt.Sprintf("%s x%d = %s %s", l.Name, l.Quantity, l.Total().String(), currency)
	}
	return Receipt{Lines: lines, Total: o.Total, Currency: currency}
}

// TotalLine is the closing line of the receipt.
func (r Receipt) TotalLine() string {
	return fmt.Sprintf("Total: %s %s", r.Total.String(), r.Currency)
}

func (r Receipt) String() string {
	var b strings.Builder
	for _, l := range r.Lines {
		b.WriteString(l)
		b.WriteByte('\n')
	}
	b.WriteString(r.TotalLine())
	return b.String()
}

func buyerMessage(r Receipt) string {
	return "Thank you for your order!\n\n" + r.String()
}

func adminMessage(r Receipt, b Buyer) string {
	return fmt.Sprintf("New order from %s (chat id %d)\n\n%s", b.DisplayName(), b.ChatID, r.String())
}
