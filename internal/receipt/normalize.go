package receipt

import (
	"regexp"
	"strconv"
	"strings"

	"tripledger/internal/money"
)

var (
	leadingDollarS  = regexp.MustCompile(`\bS(\d)`)
	zeroGlyphO      = regexp.MustCompile(`\$([\dO]+)\.([\dO]{2})\b`)
	spaceCents      = regexp.MustCompile(`(\$?\d+) (\d{2})\b`)
	commaThousands  = regexp.MustCompile(`(\d),(\d{3})`)
	salesTaxGarble  = regexp.MustCompile(`(?i)sales\s+(iiax|1ax|lax)`)
	decimalMoney    = regexp.MustCompile(`\$?(\d[\d,]*\.\d{2})`)
	bareDigitsMoney = regexp.MustCompile(`\$?\b(\d{3,6})\b`)
	percentSign     = regexp.MustCompile(`%`)
)

// normalizeLine applies the line-normalization heuristics of the OCR
// pipeline: whitespace collapse, known glyph confusions, label garble
// repair, and comma stripping. It does not parse money; it only makes
// later money parsing reliable.
func normalizeLine(raw string) string {
	line := strings.Join(strings.Fields(raw), " ")
	line = leadingDollarS.ReplaceAllString(line, "$$$1")
	line = zeroGlyphO.ReplaceAllStringFunc(line, func(m string) string {
		return strings.ReplaceAll(m, "O", "0")
	})
	line = spaceCents.ReplaceAllString(line, "$1.$2")
	line = commaThousands.ReplaceAllString(line, "$1$2")
	line = salesTaxGarble.ReplaceAllString(line, "Sales Tax")
	return line
}

// parseMoney extracts a single money amount from a normalized line, if
// one is present. Lines carrying a percent sign are never treated as
// money (they are discount/tax-rate annotations, not amounts).
func parseMoney(line string) (money.Cents, bool) {
	if percentSign.MatchString(line) {
		return 0, false
	}
	if m := decimalMoney.FindStringSubmatch(line); m != nil {
		cleaned := strings.ReplaceAll(m[1], ",", "")
		f, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return 0, false
		}
		return money.ToCents(f), true
	}
	if m := bareDigitsMoney.FindStringSubmatch(line); m != nil {
		n, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			return 0, false
		}
		c := money.Cents(n)
		if c >= 50 && c < 100000 {
			return c, true
		}
	}
	return 0, false
}

// isMoneyOnly reports whether line, once its money token is removed,
// carries no other meaningful text — i.e. it is a bare amount line
// rather than a label-plus-amount line.
func isMoneyOnly(line string) bool {
	_, ok := parseMoney(line)
	if !ok {
		return false
	}
	stripped := decimalMoney.ReplaceAllString(line, "")
	stripped = bareDigitsMoney.ReplaceAllString(stripped, "")
	stripped = strings.TrimFunc(stripped, func(r rune) bool {
		return strings.ContainsRune(" $.,-:", r)
	})
	return stripped == ""
}
