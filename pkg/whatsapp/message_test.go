package whatsapp

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/gabrielmoneiro/mariadoce/pkg/enums"
)

func sampleMessage() OrderMessage {
	change := decimal.NewFromInt(100)
	return OrderMessage{
		CustomerName:   "Ana Souza",
		CustomerPhone:  "11988887777",
		AddressDisplay: "Rua das Flores, 123 - Centro, São Paulo",
		Lines: []OrderLine{
			{
				Name:      "Bolo de Pote",
				Quantity:  2,
				Size:      "Grande",
				Addons:    []string{"Granulado", "Morango"},
				UnitPrice: decimal.RequireFromString("15.50"),
				Subtotal:  decimal.RequireFromString("31.00"),
			},
		},
		ItemsSubtotal: decimal.RequireFromString("31.00"),
		DeliveryFee:   decimal.RequireFromString("7.50"),
		Total:         decimal.RequireFromString("38.50"),
		PaymentMethod: enums.PaymentMethodCash,
		ChangeDue:     &change,
		Notes:         "Sem lactose, por favor",
	}
}

func TestFormatIncludesAllSections(t *testing.T) {
	body := Format(sampleMessage())

	for _, want := range []string{
		"*Novo Pedido Recebido*",
		"*Cliente:* Ana Souza",
		"*Telefone:* 11988887777",
		"- 2x Bolo de Pote (R$ 15.50 c/u) = R$ 31.00",
		"Tamanho: Grande",
		"Adicionais: Granulado, Morango",
		"*Subtotal dos Produtos:* R$ 31.00",
		"*Taxa de Entrega:* R$ 7.50",
		"*Total do Pedido:* R$ 38.50",
		"*Forma de Pagamento:* Dinheiro",
		"*Troco para:* R$ 100.00",
		"*Observações:*\nSem lactose, por favor",
		"Pedido gerado via site.",
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("message missing %q:\n%s", want, body)
		}
	}
}

func TestFormatScheduledPickup(t *testing.T) {
	msg := sampleMessage()
	msg.Pickup = true
	msg.ScheduleDate = "25/12/2026"
	msg.ScheduleWindow = "14:00-15:00"

	body := Format(msg)
	if !strings.Contains(body, "*RETIRADA AGENDADA* para 25/12/2026, entre 14:00 - 15:00") {
		t.Fatalf("missing schedule banner:\n%s", body)
	}
	if !strings.Contains(body, "*Taxa de Retirada:*") {
		t.Fatalf("expected pickup fee label:\n%s", body)
	}
}

func TestFormatOmitsZeroFeeAndChangeForPix(t *testing.T) {
	msg := sampleMessage()
	msg.DeliveryFee = decimal.Zero
	msg.PaymentMethod = enums.PaymentMethodPix
	msg.Total = msg.ItemsSubtotal

	body := Format(msg)
	if strings.Contains(body, "Taxa de Entrega") {
		t.Fatalf("zero fee should be omitted:\n%s", body)
	}
	if strings.Contains(body, "Troco para") {
		t.Fatalf("change only applies to cash:\n%s", body)
	}
	if !strings.Contains(body, "*Forma de Pagamento:* Pix") {
		t.Fatalf("missing pix label:\n%s", body)
	}
}

func TestDeepLinkEncodesMessage(t *testing.T) {
	link := DeepLink("+55 (11) 98888-7777", sampleMessage())

	if !strings.HasPrefix(link, "https://wa.me/5511988887777?text=") {
		t.Fatalf("unexpected link prefix: %s", link)
	}
	if strings.ContainsAny(strings.TrimPrefix(link, "https://wa.me/5511988887777?text="), " \n*") {
		t.Fatalf("message body not encoded: %s", link)
	}
}
