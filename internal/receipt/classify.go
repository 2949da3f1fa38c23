package receipt

import "regexp"

var (
	addressRe     = regexp.MustCompile(`(?i)\b(st|street|ave|avenue|rd|road|blvd|boulevard|dr|drive|ln|lane|suite|ste)\b|\b\d{5}(-\d{4})?\b`)
	phoneRe       = regexp.MustCompile(`\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`)
	terminalRe    = regexp.MustCompile(`(?i)\b(terminal|merchant id|auth code|approval|visa|mastercard|debit|credit card|chip read|xxxx\d{4}|server:|cashier:)\b`)
	promoRe       = regexp.MustCompile(`(?i)\b(survey|feedback|thank you|coupon|rewards|www\.|http)\b`)
	longNumericRe = regexp.MustCompile(`^\d{8,}$`)
	qtyOnlyRe     = regexp.MustCompile(`^(x\s*)?\d{1,2}$`)
)

type lineRole int

const (
	roleText lineRole = iota
	roleJunk
	roleQuantity
)

// classify buckets a normalized line for the junk-drop and
// quantity-merge steps. Money-only lines are never junk; totals and
// items extraction consume those directly.
func classify(line string) lineRole {
	switch {
	case addressRe.MatchString(line), phoneRe.MatchString(line), terminalRe.MatchString(line), promoRe.MatchString(line), longNumericRe.MatchString(line):
		return roleJunk
	case qtyOnlyRe.MatchString(line):
		return roleQuantity
	default:
		return roleText
	}
}

// mergeQuantityLines folds a bare quantity line ("1", "x2") into the
// item-name line that immediately follows it, per the quantity-merge
// step. The quantity line itself is dropped from the working set.
func mergeQuantityLines(lines []string) []string {
	out := make([]string, 0, len(lines))
	for i := 0; i < len(lines); i++ {
		if classify(lines[i]) == roleQuantity && i+1 < len(lines) {
			next := lines[i+1]
			if _, isMoney := parseMoney(next); !isMoney && classify(next) == roleText {
				continue
			}
		}
		out = append(out, lines[i])
	}
	return out
}
