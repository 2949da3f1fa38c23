package receipt

import (
	"regexp"
	"strings"

	"tripledger/internal/money"
)

var (
	subtotalLabelRe = regexp.MustCompile(`(?i)\bsub[\s-]?total\b`)
	taxLabelRe      = regexp.MustCompile(`(?i)\btax\b`)
	tipLabelRe      = regexp.MustCompile(`(?i)\btip\b|\bgratuity\b`)
	totalLabelRe    = regexp.MustCompile(`(?i)\btotal\b`)
)

type workLine struct {
	text     string
	role     lineRole
	consumed bool
}

func buildWorkLines(raw string) []workLine {
	var lines []string
	for _, l := range strings.Split(raw, "\n") {
		n := normalizeLine(l)
		if n != "" {
			lines = append(lines, n)
		}
	}
	lines = mergeQuantityLines(lines)

	out := make([]workLine, len(lines))
	for i, l := range lines {
		out[i] = workLine{text: l, role: classify(l)}
	}
	return out
}

// extractMerchant implements the merchant-extraction step: prefer the
// nearest readable line above a detected address; otherwise the first
// readable, non-junk, non-money line within the top window.
func extractMerchant(lines []workLine) string {
	for i, l := range lines {
		if addressRe.MatchString(l.text) {
			for j := i - 1; j >= 0; j-- {
				if lines[j].role == roleText && !isMoneyOnly(lines[j].text) {
					return lines[j].text
				}
			}
		}
	}
	window := len(lines)
	if window > 6 {
		window = 6
	}
	for i := 0; i < window; i++ {
		if lines[i].role == roleText && !isMoneyOnly(lines[i].text) {
			return lines[i].text
		}
	}
	return ""
}

type totalsResult struct {
	subtotal      money.Cents
	tax           money.Cents
	tip           money.Cents
	total         money.Cents
	haveSubtotal  bool
	haveTax       bool
	haveTip       bool
	haveTotal     bool
}

// findLabeledAmount locates label on a line and resolves its amount:
// same line first, else the nearest following money-only line within
// 8 lines. Matched lines are marked consumed so the items step never
// reuses them as candidate prices.
func findLabeledAmount(lines []workLine, label *regexp.Regexp, excludeTotalFalsePositive bool) (money.Cents, bool) {
	for i := range lines {
		if !label.MatchString(lines[i].text) {
			continue
		}
		if excludeTotalFalsePositive && subtotalLabelRe.MatchString(lines[i].text) {
			continue
		}
		if c, ok := parseMoney(lines[i].text); ok {
			lines[i].consumed = true
			return c, true
		}
		for j := i + 1; j < len(lines) && j <= i+8; j++ {
			if lines[j].consumed {
				continue
			}
			if isMoneyOnly(lines[j].text) {
				c, _ := parseMoney(lines[j].text)
				lines[j].consumed = true
				return c, true
			}
		}
	}
	return 0, false
}

// extractTotals implements the totals-extraction step.
func extractTotals(lines []workLine) totalsResult {
	var res totalsResult
	res.subtotal, res.haveSubtotal = findLabeledAmount(lines, subtotalLabelRe, false)
	res.tax, res.haveTax = findLabeledAmount(lines, taxLabelRe, false)
	res.tip, res.haveTip = findLabeledAmount(lines, tipLabelRe, false)
	res.total, res.haveTotal = findLabeledAmount(lines, totalLabelRe, true)

	if !res.haveSubtotal && res.haveTotal && (res.haveTax || res.haveTip) {
		derived := res.total - res.tax - res.tip
		if derived > 0 {
			res.subtotal = derived
			res.haveSubtotal = true
		}
	}

	if !res.haveTotal {
		var max money.Cents
		maxIdx := -1
		for i := len(lines) - 1; i >= 0 && i >= len(lines)-10; i-- {
			if lines[i].consumed {
				continue
			}
			if c, ok := parseMoney(lines[i].text); ok && isMoneyOnly(lines[i].text) {
				if maxIdx == -1 || c > max {
					max = c
					maxIdx = i
				}
			}
		}
		if maxIdx != -1 {
			res.total = max
			res.haveTotal = true
			lines[maxIdx].consumed = true
		}
	}
	return res
}

type priceCandidate struct {
	idx   int
	price money.Cents
	name  string
}

// splitLabelAndAmount recognizes a combined "name  price" item line
// (e.g. "Pizza  $10.99"): exactly one money token plus a non-empty
// leading label that isn't itself a totals label. Returns the trimmed
// label and the parsed amount.
func splitLabelAndAmount(line string) (string, money.Cents, bool) {
	if subtotalLabelRe.MatchString(line) || taxLabelRe.MatchString(line) || tipLabelRe.MatchString(line) || totalLabelRe.MatchString(line) {
		return "", 0, false
	}
	c, ok := parseMoney(line)
	if !ok {
		return "", 0, false
	}
	stripped := decimalMoney.ReplaceAllString(line, "")
	stripped = bareDigitsMoney.ReplaceAllString(stripped, "")
	stripped = strings.TrimFunc(stripped, func(r rune) bool {
		return strings.ContainsRune(" $.,-:", r)
	})
	if stripped == "" {
		return "", 0, false
	}
	return stripped, c, true
}

// extractItems implements the items-extraction step: a bounded
// subset-sum search over unclaimed money candidates, followed by
// back/forward-scan name resolution for each chosen price that didn't
// already carry its own label on the same line.
func extractItems(lines []workLine, subtotal money.Cents, haveSubtotal bool) ([]Item, []string) {
	var warnings []string
	var candidates []priceCandidate
	for i, l := range lines {
		if l.consumed || l.role == roleJunk {
			continue
		}
		if isMoneyOnly(l.text) {
			c, _ := parseMoney(l.text)
			candidates = append(candidates, priceCandidate{idx: i, price: c})
			continue
		}
		if name, c, ok := splitLabelAndAmount(l.text); ok {
			candidates = append(candidates, priceCandidate{idx: i, price: c, name: name})
		}
	}

	var chosen []priceCandidate
	if len(candidates) == 0 {
		return nil, append(warnings, "no items detected")
	}
	if len(candidates) > candidateCeiling {
		warnings = append(warnings, "too many money tokens for subset-sum matching; took all candidates in order")
		chosen = candidates
	} else if !haveSubtotal {
		chosen = candidates
	} else {
		idxs := subsetSumMatch(candidates, subtotal)
		if idxs == nil {
			warnings = append(warnings, "no item subset matched subtotal; took all candidates in order")
			chosen = candidates
		} else {
			for _, k := range idxs {
				chosen = append(chosen, candidates[k])
			}
		}
	}

	used := make([]bool, len(lines))
	items := make([]Item, 0, len(chosen))
	for _, c := range chosen {
		if c.name != "" {
			items = append(items, Item{Name: c.name, Price: c.price})
			continue
		}
		name := "Item"
		for j := c.idx - 1; j >= 0 && j >= c.idx-6; j-- {
			if used[j] || lines[j].role != roleText || isMoneyOnly(lines[j].text) {
				continue
			}
			name = lines[j].text
			used[j] = true
			break
		}
		if name == "Item" {
			for j := c.idx + 1; j < len(lines) && j <= c.idx+2; j++ {
				if used[j] || lines[j].role != roleText || isMoneyOnly(lines[j].text) {
					continue
				}
				name = lines[j].text
				used[j] = true
				break
			}
		}
		items = append(items, Item{Name: name, Price: c.price})
	}
	if len(items) == 0 {
		warnings = append(warnings, "no items detected")
	}
	return items, warnings
}

// subsetSumMatch returns the indices (into candidates) of a subset
// whose prices sum to target within ±1 cent, or nil if none exists.
// Exhaustive over at most candidateCeiling items, so 2^18 worst case.
func subsetSumMatch(candidates []priceCandidate, target money.Cents) []int {
	n := len(candidates)
	var bestMask int
	found := false
	for mask := 1; mask < (1 << n); mask++ {
		var sum money.Cents
		for i := 0; i < n; i++ {
			if mask&(1<<i) != 0 {
				sum += candidates[i].price
			}
		}
		diff := sum - target
		if diff < 0 {
			diff = -diff
		}
		if diff <= money.EqualTolerance {
			if !found || bitCount(mask) > bitCount(bestMask) {
				found = true
				bestMask = mask
			}
		}
	}
	if !found {
		return nil
	}
	var out []int
	for i := 0; i < n; i++ {
		if bestMask&(1<<i) != 0 {
			out = append(out, i)
		}
	}
	return out
}

func bitCount(mask int) int {
	n := 0
	for mask != 0 {
		n += mask & 1
		mask >>= 1
	}
	return n
}
