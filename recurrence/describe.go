package recurrence

import (
	"fmt"
	"strconv"
	"strings"
)

// DefaultLocale is used when RuleToString receives an empty or unknown locale.
const DefaultLocale = "en"

type localeText struct {
	single     map[Frequency]string
	units      map[Frequency]string
	every      string // format: interval, unit
	weekdays   map[Weekday]string
	onWeekdays string
	onSetPos   string
	onDays     string
	and        string
	forCount   func(n int) string
	until      string
	dateLayout string
	ordinal    func(pos int) string
	custom     string
}

var locales = map[string]localeText{
	"en": {
		single: map[Frequency]string{Daily: "Daily", Weekly: "Weekly", Monthly: "Monthly", Yearly: "Yearly"},
		units:  map[Frequency]string{Daily: "days", Weekly: "weeks", Monthly: "months", Yearly: "years"},
		every:  "Every %d %s",
		weekdays: map[Weekday]string{
			MO: "Monday", TU: "Tuesday", WE: "Wednesday", TH: "Thursday",
			FR: "Friday", SA: "Saturday", SU: "Sunday",
		},
		onWeekdays: " on %s",
		onSetPos:   " on the %s %s",
		onDays:     " on day %s",
		and:        " and ",
		forCount: func(n int) string {
			if n == 1 {
				return ", for 1 occurrence"
			}
			return fmt.Sprintf(", for %d occurrences", n)
		},
		until:      ", until %s",
		dateLayout: "January 2, 2006",
		ordinal:    englishOrdinal,
		custom:     "Custom recurrence",
	},
	"pt-BR": {
		single: map[Frequency]string{Daily: "Diariamente", Weekly: "Semanalmente", Monthly: "Mensalmente", Yearly: "Anualmente"},
		units:  map[Frequency]string{Daily: "dias", Weekly: "semanas", Monthly: "meses", Yearly: "anos"},
		every:  "A cada %d %s",
		weekdays: map[Weekday]string{
			MO: "segunda-feira", TU: "terça-feira", WE: "quarta-feira", TH: "quinta-feira",
			FR: "sexta-feira", SA: "sábado", SU: "domingo",
		},
		onWeekdays: " às %s",
		onSetPos:   " na %s %s",
		onDays:     " no dia %s",
		and:        " e ",
		forCount: func(n int) string {
			if n == 1 {
				return ", por 1 ocorrência"
			}
			return fmt.Sprintf(", por %d ocorrências", n)
		},
		until:      ", até %s",
		dateLayout: "02/01/2006",
		ordinal:    portugueseOrdinal,
		custom:     "Recorrência personalizada",
	},
}

func init() {
	locales["pt"] = locales["pt-BR"]
}

// SupportsLocale reports whether RuleToString has wording for locale.
func SupportsLocale(locale string) bool {
	_, ok := locales[locale]
	return ok
}

// RuleToString renders a human-readable description of r, e.g.
// "Weekly on Monday, Wednesday, for 10 occurrences". The locale changes
// wording only. Supported locales are "en" (default) and "pt-BR".
func RuleToString(r RecurrenceRule, locale string) string {
	text, ok := locales[locale]
	if !ok {
		text = locales[DefaultLocale]
	}

	if !r.Frequency.IsSupported() {
		return text.custom
	}

	var b strings.Builder
	if interval := r.EffectiveInterval(); interval > 1 {
		fmt.Fprintf(&b, text.every, interval, text.units[r.Frequency])
	} else {
		b.WriteString(text.single[r.Frequency])
	}

	if len(r.ByWeekDay) > 0 {
		days := make([]string, 0, len(r.ByWeekDay))
		for _, wd := range r.ByWeekDay {
			name, ok := text.weekdays[wd]
			if !ok {
				name = string(wd)
			}
			days = append(days, name)
		}
		if len(r.BySetPos) > 0 {
			positions := make([]string, 0, len(r.BySetPos))
			for _, p := range r.BySetPos {
				positions = append(positions, text.ordinal(p))
			}
			fmt.Fprintf(&b, text.onSetPos, strings.Join(positions, text.and), strings.Join(days, ", "))
		} else {
			fmt.Fprintf(&b, text.onWeekdays, strings.Join(days, ", "))
		}
	}

	if len(r.ByMonthDay) > 0 {
		days := make([]string, 0, len(r.ByMonthDay))
		for _, d := range r.ByMonthDay {
			days = append(days, strconv.Itoa(d))
		}
		fmt.Fprintf(&b, text.onDays, strings.Join(days, ", "))
	}

	switch {
	case r.Count != nil:
		b.WriteString(text.forCount(*r.Count))
	case r.Until != nil:
		fmt.Fprintf(&b, text.until, r.Until.Format(text.dateLayout))
	}

	return b.String()
}

func englishOrdinal(pos int) string {
	switch pos {
	case 1:
		return "first"
	case 2:
		return "second"
	case 3:
		return "third"
	case 4:
		return "fourth"
	case 5:
		return "fifth"
	case -1:
		return "last"
	case -2:
		return "second to last"
	}
	if pos < 0 {
		return suffixed(-pos) + " to last"
	}
	return suffixed(pos)
}

func suffixed(n int) string {
	suffix := "th"
	switch {
	case n%100 >= 11 && n%100 <= 13:
	case n%10 == 1:
		suffix = "st"
	case n%10 == 2:
		suffix = "nd"
	case n%10 == 3:
		suffix = "rd"
	}
	return strconv.Itoa(n) + suffix
}

func portugueseOrdinal(pos int) string {
	switch pos {
	case 1:
		return "primeira"
	case 2:
		return "segunda"
	case 3:
		return "terceira"
	case 4:
		return "quarta"
	case 5:
		return "quinta"
	case -1:
		return "última"
	case -2:
		return "penúltima"
	}
	if pos < 0 {
		return strconv.Itoa(-pos) + "ª a partir do fim"
	}
	return strconv.Itoa(pos) + "ª"
}
