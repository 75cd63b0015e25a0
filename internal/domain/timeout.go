package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// ErrBadDuration: el string no cumple la gramática (recuperable, el
// caller puede re-preguntar o usar un default).
var ErrBadDuration = errors.New("invalid timeout duration")

// Discord no permite timeouts de más de 28 días; los 4000s de margen
// absorben la diferencia de reloj entre el request y su aplicación.
const MaxTimeoutSeconds = 28*86400 - 4000

// TimeoutDuration: duración normalizada (seconds<60, minutes<60, hours<24).
type TimeoutDuration struct {
	Days    int
	Hours   int
	Minutes int
	Seconds int

	total int64
}

var reDurComponent = regexp.MustCompile(`^([0-9]{1,6})([dhms])`)

// ParseTimeoutDuration parsea un string compacto tipo "3d 10h 5m 29s".
// Cada unidad (d/h/m/s, case-insensitive) como máximo una vez, 1–6
// dígitos por componente, whitespace permitido entre componentes.
func ParseTimeoutDuration(input string, capToLimit bool) (TimeoutDuration, error) {
	rest := strings.TrimSpace(strings.ToLower(input))
	vals := map[byte]int{}
	for {
		m := reDurComponent.FindStringSubmatch(rest)
		if m == nil {
			return TimeoutDuration{}, fmt.Errorf("%w: %q", ErrBadDuration, input)
		}
		unit := m[2][0]
		if _, dup := vals[unit]; dup {
			return TimeoutDuration{}, fmt.Errorf("%w: unit %q repeated in %q", ErrBadDuration, string(unit), input)
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return TimeoutDuration{}, fmt.Errorf("%w: %q", ErrBadDuration, input)
		}
		vals[unit] = n
		rest = strings.TrimLeftFunc(rest[len(m[0]):], unicode.IsSpace)
		if rest == "" {
			break
		}
	}

	d, h, mi, s := vals['d'], vals['h'], vals['m'], vals['s']
	// carry estándar: s→m→h→d
	mi += s / 60
	s %= 60
	h += mi / 60
	mi %= 60
	d += h / 24
	h %= 24

	total := int64(d)*86400 + int64(h)*3600 + int64(mi)*60 + int64(s)
	if capToLimit && total > MaxTimeoutSeconds {
		total = MaxTimeoutSeconds
		d, h, mi, s = 28, 0, 0, 0
	}
	return TimeoutDuration{Days: d, Hours: h, Minutes: mi, Seconds: s, total: total}, nil
}

func (t TimeoutDuration) TotalSeconds() int64 { return t.total }

// ExpiresAt: momento de expiración para pasarle a Discord.
func (t TimeoutDuration) ExpiresAt(now time.Time) time.Time {
	return now.Add(time.Duration(t.total) * time.Second)
}

// String: sólo los campos != 0, singular/plural exacto, en alemán.
func (t TimeoutDuration) String() string {
	var parts []string
	appendUnit := func(v int, singular, plural string) {
		if v == 1 {
			parts = append(parts, fmt.Sprintf("%d %s", v, singular))
		} else if v > 1 {
			parts = append(parts, fmt.Sprintf("%d %s", v, plural))
		}
	}
	appendUnit(t.Days, "Tag", "Tage")
	appendUnit(t.Hours, "Stunde", "Stunden")
	appendUnit(t.Minutes, "Minute", "Minuten")
	appendUnit(t.Seconds, "Sekunde", "Sekunden")
	return strings.Join(parts, " ")
}
