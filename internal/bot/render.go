package bot

import (
	"fmt"
	"strings"

	"pricecompare-bot/internal/compare"
)

var unitTitles = map[compare.UnitKind]string{
	compare.Weight: "⚖️ Peso",
	compare.Volume: "🧪 Volume",
}

// FormatSheet renders an evaluated sheet as the text of the sheet message.
func FormatSheet(res compare.Result, currency string) string {
	s := res.Sheet
	amountUnit := s.Scale.AmountLabel(s.Unit)
	priceUnit := s.Scale.PriceLabel(s.Unit)

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s · quantidades em %s\n\n", unitTitles[s.Unit], amountUnit)

	for _, rr := range res.Rows {
		sb.WriteString(formatRow(rr, currency, amountUnit, priceUnit))
		sb.WriteByte('\n')
	}
	sb.WriteByte('\n')

	if !res.HasCheapest() {
		sb.WriteString("Preencha preço e quantidade para comparar.")
		return sb.String()
	}

	winners := make([]string, 0, res.CheapestRows)
	for _, rr := range res.Rows {
		if rr.Cheapest {
			winners = append(winners, fmt.Sprint(rr.Index+1))
		}
	}
	label := "linha"
	if len(winners) > 1 {
		label = "linhas"
	}
	fmt.Fprintf(&sb, "🏆 Mais barato: %s %s/%s (%s %s)",
		currency, compare.FormatPrice(res.Cheapest), priceUnit,
		label, strings.Join(winners, ", "))

	return sb.String()
}

func formatRow(rr compare.RowResult, currency, amountUnit, priceUnit string) string {
	amount := "—"
	if rr.Row.Amount != "" {
		amount = rr.Row.Amount + " " + amountUnit
	}
	price := "—"
	if rr.Row.Price != "" {
		price = currency + " " + rr.Row.Price
	}

	line := fmt.Sprintf("%d) %s · %s → %s %s/%s",
		rr.Index+1, amount, price,
		currency, compare.FormatPrice(rr.UnitPrice), priceUnit)
	if rr.Cheapest {
		line += " ✅"
	}
	return line
}
