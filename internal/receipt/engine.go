package receipt

import "regexp"

var dateRe = regexp.MustCompile(`\b(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})\b`)

func extractDate(lines []workLine) string {
	for _, l := range lines {
		if m := dateRe.FindString(l.text); m != "" {
			return m
		}
	}
	return ""
}

// parse runs the full eight-step OCR pipeline over raw text and
// returns a best-effort result. It never returns an error: malformed
// input degrades confidence and accumulates warnings instead.
func parse(raw string) Result {
	lines := buildWorkLines(raw)

	merchant := extractMerchant(lines)
	date := extractDate(lines)
	totals := extractTotals(lines)
	items, itemWarnings := extractItems(lines, totals.subtotal, totals.haveSubtotal)

	res := Result{
		MerchantName:    merchant,
		TransactionDate: date,
		Items:           items,
		Subtotal:        totals.subtotal,
		Tax:             totals.tax,
		Tip:             totals.tip,
		Total:           totals.total,
		Source:          sourceRules,
	}
	res.Warnings = append(res.Warnings, itemWarnings...)

	var itemSum int64
	for _, it := range items {
		itemSum += int64(it.Price)
	}
	if totals.haveSubtotal && len(items) > 0 {
		diff := int64(totals.subtotal) - itemSum
		if diff < 0 {
			diff = -diff
		}
		if diff > 5 {
			res.Warnings = append(res.Warnings, "subtotal and item sum disagree by more than 5 cents")
		}
	}

	res.Confidence = scoreConfidence(res, totals, itemSum)
	return res
}

// scoreConfidence implements the confidence step: a weighted presence
// sum normalized to [0,1].
func scoreConfidence(res Result, totals totalsResult, itemSum int64) float64 {
	var score float64
	if res.MerchantName != "" {
		score += 0.15
	}
	if res.TransactionDate != "" {
		score += 0.1
	}
	if totals.haveTotal {
		score += 0.2
	}
	if totals.haveSubtotal {
		score += 0.15
	}
	if totals.haveTax {
		score += 0.1
	}
	if len(res.Items) > 0 {
		score += 0.15
	}
	if totals.haveSubtotal && len(res.Items) > 0 {
		diff := int64(totals.subtotal) - itemSum
		if diff < 0 {
			diff = -diff
		}
		if diff <= 5 {
			score += 0.15
		}
	}
	return score
}
