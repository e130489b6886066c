package whatsapp

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/gabrielmoneiro/mariadoce/pkg/enums"
)

// OrderLine is one cart item rendered into the message.
type OrderLine struct {
	Name      string
	Quantity  int
	Size      string
	Addons    []string
	UnitPrice decimal.Decimal
	Subtotal  decimal.Decimal
}

// OrderMessage carries everything needed to render the storefront
// confirmation message in Portuguese.
type OrderMessage struct {
	CustomerName   string
	CustomerPhone  string
	AddressDisplay string
	Pickup         bool
	Lines          []OrderLine
	ItemsSubtotal  decimal.Decimal
	DeliveryFee    decimal.Decimal
	Total          decimal.Decimal
	PaymentMethod  enums.PaymentMethod
	ChangeDue      *decimal.Decimal
	Notes          string
	ScheduleDate   string // DD/MM/YYYY, empty for immediate orders
	ScheduleWindow string // "HH:MM - HH:MM"
}

var paymentLabels = map[enums.PaymentMethod]string{
	enums.PaymentMethodCash:       "Dinheiro",
	enums.PaymentMethodCreditCard: "Cartão de Crédito",
	enums.PaymentMethodDebitCard:  "Cartão de Débito",
	enums.PaymentMethodPix:        "Pix",
}

func formatBRL(v decimal.Decimal) string {
	return "R$ " + v.StringFixed(2)
}

// Format renders the order as the WhatsApp text body.
func Format(msg OrderMessage) string {
	var b strings.Builder

	b.WriteString("*Novo Pedido Recebido*\n\n")
	fmt.Fprintf(&b, "*Cliente:* %s\n", msg.CustomerName)
	fmt.Fprintf(&b, "*Telefone:* %s\n", msg.CustomerPhone)
	fmt.Fprintf(&b, "*Endereço:* %s\n", msg.AddressDisplay)

	if msg.ScheduleDate != "" && msg.ScheduleWindow != "" {
		kind := "ENTREGA AGENDADA"
		if msg.Pickup {
			kind = "RETIRADA AGENDADA"
		}
		window := strings.ReplaceAll(msg.ScheduleWindow, "-", " - ")
		window = strings.Join(strings.Fields(window), " ")
		fmt.Fprintf(&b, "\n📅 *%s* para %s, entre %s\n", kind, msg.ScheduleDate, window)
	}

	b.WriteString("\n*Itens:*\n")
	for _, line := range msg.Lines {
		fmt.Fprintf(&b, "- %dx %s (%s c/u) = %s", line.Quantity, line.Name, formatBRL(line.UnitPrice), formatBRL(line.Subtotal))
		if line.Size != "" {
			fmt.Fprintf(&b, "\n   Tamanho: %s", line.Size)
		}
		if len(line.Addons) > 0 {
			fmt.Fprintf(&b, "\n   Adicionais: %s", strings.Join(line.Addons, ", "))
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "\n*Subtotal dos Produtos:* %s", formatBRL(msg.ItemsSubtotal))
	if msg.DeliveryFee.IsPositive() {
		label := "Taxa de Entrega"
		if msg.Pickup {
			label = "Taxa de Retirada"
		}
		fmt.Fprintf(&b, "\n*%s:* %s", label, formatBRL(msg.DeliveryFee))
	}
	fmt.Fprintf(&b, "\n*Total do Pedido:* %s", formatBRL(msg.Total))

	label, ok := paymentLabels[msg.PaymentMethod]
	if !ok {
		label = string(msg.PaymentMethod)
	}
	fmt.Fprintf(&b, "\n\n*Forma de Pagamento:* %s", label)

	if msg.PaymentMethod == enums.PaymentMethodCash && msg.ChangeDue != nil {
		fmt.Fprintf(&b, "\n*Troco para:* %s", formatBRL(*msg.ChangeDue))
	}

	if notes := strings.TrimSpace(msg.Notes); notes != "" {
		fmt.Fprintf(&b, "\n\n*Observações:*\n%s", notes)
	}

	b.WriteString("\n\n---\nPedido gerado via site.")
	return b.String()
}

// DeepLink builds the wa.me URL that opens a chat with the store preloaded
// with the rendered message.
func DeepLink(storePhone string, msg OrderMessage) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, storePhone)
	return fmt.Sprintf("https://wa.me/%s?text=%s", digits, url.QueryEscape(Format(msg)))
}
