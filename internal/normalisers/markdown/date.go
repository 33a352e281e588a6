package markdown

import (
	"fmt"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

const isoDate = "2006-01-02"

// dateLayouts are tried in order on string dates before the ISO date-time forms.
var dateLayouts = []string{"2006-1-2", "2006/1/2", "2006.1.2"}

// isoLayouts are the date-time forms accepted after dateLayouts.
var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15",
	"20060102",
}

// NormalizeDate renders a front matter date as YYYY-MM-DD.
//
// Native date values are formatted directly. Strings are parsed with the
// known layouts and kept verbatim (trimmed) when none match. Missing values
// give "".
func NormalizeDate(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case time.Time:
		return v.Format(isoDate)
	case toml.LocalDate:
		return v.String()
	case toml.LocalDateTime:
		return v.LocalDate.String()
	case string:
		return normalizeDateString(v)
	default:
		return fmt.Sprint(v)
	}
}

func normalizeDateString(s string) string {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return ""
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format(isoDate)
		}
	}
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format(isoDate)
		}
	}
	return raw
}
