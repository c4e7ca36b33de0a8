package identity

import (
	"fmt"
	"math/rand"
	"strings"
	"time"
)

const (
	idLetters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	idDigits  = "0123456789"
)

// IDGenerator produces national-ID-like strings per country code. The formats
// follow each country's civil registry layout closely enough for roleplay;
// check digits are real where the original computed them (CL, AR).
type IDGenerator struct {
	r *rand.Rand
}

func NewIDGenerator() *IDGenerator {
	return &IDGenerator{r: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// NewSeededIDGenerator returns a deterministic generator for tests.
func NewSeededIDGenerator(seed int64) *IDGenerator {
	return &IDGenerator{r: rand.New(rand.NewSource(seed))}
}

func (g *IDGenerator) intn(min, max int) int {
	return min + g.r.Intn(max-min+1)
}

func (g *IDGenerator) digitsN(max, width int) string {
	return fmt.Sprintf("%0*d", width, g.r.Intn(max+1))
}

// Generate returns a fresh identification number for the country code, or a
// generic number for unknown codes.
func (g *IDGenerator) Generate(countryCode string) string {
	switch countryCode {
	case "CL": // RUT / RUN with mod-11 check digit
		base := fmt.Sprintf("%d", g.intn(4000000, 25999999))
		dv := rutCheckDigit(base)
		n := len(base)
		return fmt.Sprintf("%s.%s.%s-%s", base[:n-6], base[n-6:n-3], base[n-3:], dv)

	case "AR": // CUIT / CUIL
		prefixes := []string{"20", "23", "24", "27", "30", "33", "34"}
		prefix := prefixes[g.r.Intn(len(prefixes))]
		mid := g.digitsN(99999999, 8)
		return fmt.Sprintf("%s-%s-%d", prefix, mid, cuitCheckDigit(prefix+mid))

	case "BR": // CPF
		num := fmt.Sprintf("%09d", g.intn(1, 999999999))
		dv := g.digitsN(99, 2)
		return fmt.Sprintf("%s.%s.%s-%s", num[:3], num[3:6], num[6:9], dv)

	case "BO": // NIT
		return fmt.Sprintf("%d", g.intn(1000000, 99999999))

	case "PE": // RUC
		prefix := "10"
		if g.r.Intn(2) == 1 {
			prefix = "20"
		}
		return fmt.Sprintf("%s%s%d", prefix, g.digitsN(999999999, 9), g.r.Intn(10))

	case "CO": // NIT
		base := fmt.Sprintf("%d", g.r.Int63n(9000000000)+1000000000)
		return fmt.Sprintf("%s.%s.%s.%s-%d", base[:1], base[1:4], base[4:7], base[7:10], g.r.Intn(10))

	case "MX": // RFC (persona física)
		var b strings.Builder
		for i := 0; i < 4; i++ {
			b.WriteByte(idLetters[g.r.Intn(len(idLetters))])
		}
		fmt.Fprintf(&b, "%02d%02d%02d", g.r.Intn(100), g.intn(1, 12), g.intn(1, 28))
		for i := 0; i < 3; i++ {
			pool := idLetters
			if g.r.Intn(2) == 0 {
				pool = idDigits
			}
			b.WriteByte(pool[g.r.Intn(len(pool))])
		}
		return b.String()

	case "UY": // RUT
		return fmt.Sprintf("%08d-%d", g.intn(1000000, 99999999), g.r.Intn(10))

	case "PY": // RUC
		num := fmt.Sprintf("%07d", g.intn(1000000, 9999999))
		return fmt.Sprintf("%s.%s.%s-%d", num[:1], num[1:4], num[4:7], g.r.Intn(10))

	case "EC": // RUC (cédula + 001)
		return fmt.Sprintf("%09d001", g.intn(100000000, 999999999))

	case "VE": // RIF
		prefixes := []string{"V", "E", "J", "G", "C", "P"}
		return fmt.Sprintf("%s-%08d-%d", prefixes[g.r.Intn(len(prefixes))], g.intn(1, 99999999), g.r.Intn(10))

	case "GT": // NIT
		width := g.intn(7, 8)
		return fmt.Sprintf("%0*d-%d", width, g.intn(1000000, 99999999)%pow10(width), g.r.Intn(10))

	case "SV": // NIT
		return fmt.Sprintf("%s-%s-%s-%d",
			g.digitsN(9999, 4), g.digitsN(999996, 6), g.digitsN(999, 3), g.r.Intn(10))

	case "HN": // RTN
		return fmt.Sprintf("%s-%s-%s", g.digitsN(9999, 4), g.digitsN(99, 2), g.digitsN(99999, 5))

	case "NI": // RUC
		return fmt.Sprintf("%03d-%s-%s", g.intn(1, 999), g.digitsN(999996, 6), g.digitsN(99999, 5))

	case "CR": // cédula
		return fmt.Sprintf("%d-%s-%s", g.intn(1, 9), g.digitsN(999, 3), g.digitsN(999999, 6))

	case "PA": // RUC
		return fmt.Sprintf("%d-%s-%s-%s",
			g.intn(1, 8), g.digitsN(999, 3), g.digitsN(9999, 4), g.digitsN(99, 2))

	case "DO": // RNC
		return fmt.Sprintf("%d", g.r.Int63n(9000000000)+1000000000)

	case "CU": // NIF
		return fmt.Sprintf("%011d", g.r.Int63n(100000000000))

	default:
		return fmt.Sprintf("GENERICO-%d", g.intn(100000000, 999999999))
	}
}

// rutCheckDigit computes the Chilean mod-11 digit: weights 2..7 cycling from
// the rightmost digit; 11→"0", 10→"K".
func rutCheckDigit(base string) string {
	sum := 0
	mult := 2
	for i := len(base) - 1; i >= 0; i-- {
		sum += int(base[i]-'0') * mult
		mult++
		if mult > 7 {
			mult = 2
		}
	}
	dv := 11 - sum%11
	switch dv {
	case 11:
		return "0"
	case 10:
		return "K"
	default:
		return fmt.Sprintf("%d", dv)
	}
}

// cuitCheckDigit computes the Argentine verifier over the 10 leading digits.
func cuitCheckDigit(num string) int {
	factors := []int{5, 4, 3, 2, 7, 6, 5, 4, 3, 2}
	sum := 0
	for i := 0; i < 10; i++ {
		sum += int(num[i]-'0') * factors[i]
	}
	switch r := sum % 11; r {
	case 0:
		return 0
	case 1:
		return 9
	default:
		return 11 - r
	}
}

func pow10(n int) int {
	out := 1
	for i := 0; i < n; i++ {
		out *= 10
	}
	return out
}
