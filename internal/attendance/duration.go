package attendance

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseDuration converts an "H:MM" cell to minutes. The sign applies to the
// whole value ("-1:30" is -90). A blank cell is zero and ok. Any other shape
// yields zero and ok=false.
func ParseDuration(cell string) (minutes int, ok bool) {
	s := strings.TrimSpace(cell)
	if s == "" {
		return 0, true
	}

	sign := 1
	switch s[0] {
	case '-':
		sign = -1
		s = s[1:]
	case '+':
		s = s[1:]
	}

	h, m, found := strings.Cut(s, ":")
	if !found || h == "" || len(m) < 2 {
		return 0, false
	}
	// "7:30:00" carries seconds; only the minutes part is significant
	if rest, _, hasSeconds := strings.Cut(m, ":"); hasSeconds {
		m = rest
	}
	if len(m) != 2 {
		return 0, false
	}

	hv, err := strconv.Atoi(h)
	if err != nil || hv < 0 {
		return 0, false
	}
	mv, err := strconv.Atoi(m)
	if err != nil || mv < 0 || mv > 59 {
		return 0, false
	}

	return sign * (hv*minutesPerHour + mv), true
}

// FormatDuration renders minutes back to "H:MM"
func FormatDuration(minutes int) string {
	sign := ""
	if minutes < 0 {
		sign = "-"
		minutes = -minutes
	}
	return fmt.Sprintf("%s%d:%02d", sign, minutes/minutesPerHour, minutes%minutesPerHour)
}
