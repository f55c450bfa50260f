package ui

import (
	"fmt"
	"strconv"
	"strings"
)

// formatNumber formats an integer with thousands separators.
func formatNumber(n int) string {
	if n < 0 {
		return "-" + formatNumber(-n)
	}
	str := strconv.Itoa(n)
	if n < 1000 {
		return str
	}
	var out []rune
	for i, r := range str {
		if i > 0 && (len(str)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, r)
	}
	return string(out)
}

// formatFloat prints v with at most prec decimals and no trailing zeros.
func formatFloat(v float64, prec int) string {
	s := strconv.FormatFloat(v, 'f', prec, 64)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	}
	return s
}

// formatParams renders a parameter count given in billions.
func formatParams(billions float64) string {
	if billions >= 1000 {
		return formatFloat(billions/1000, 2) + "T"
	}
	return formatFloat(billions, 2) + "B"
}

// formatKg renders a CO2 mass, switching to tonnes above 10 t.
func formatKg(kg float64) string {
	if kg >= 10000 {
		return formatFloat(kg/1000, 1) + " t"
	}
	if kg >= 1000 {
		return formatNumber(int(kg+0.5)) + " kg"
	}
	return formatFloat(kg, 3) + " kg"
}

func formatOptional(v *float64, prec int) string {
	if v == nil {
		return "-"
	}
	return formatFloat(*v, prec)
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
