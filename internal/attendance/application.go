package attendance

import (
	"regexp"
	"strconv"
	"strings"

	"kintaicli/pkg/contracts/domain"
)

// applicationNames maps application-name fragments to kinds. Order is
// significant: the first fragment contained in the name wins, so compound
// names ("時間有休", "早出残業") must precede their shorter forms.
var applicationNames = []struct {
	fragment string
	kind     domain.ApplicationKind
}{
	{"深夜休憩", domain.ApplicationNightBreakFix},
	{"時間有休", domain.ApplicationHourlyLeave},
	{"時間単位有休", domain.ApplicationHourlyLeave},
	{"時間有給", domain.ApplicationHourlyLeave},
	{"時間休", domain.ApplicationHourlyLeave},
	{"私用外出", domain.ApplicationPrivateOuting},
	{"外出", domain.ApplicationPrivateOuting},
	{"半休", domain.ApplicationHalfDayLeave},
	{"午前休", domain.ApplicationHalfDayLeave},
	{"午後休", domain.ApplicationHalfDayLeave},
	{"有休", domain.ApplicationFullDayLeave},
	{"有給", domain.ApplicationFullDayLeave},
	{"年休", domain.ApplicationFullDayLeave},
	{"特別休暇", domain.ApplicationFullDayLeave},
	{"慶弔", domain.ApplicationFullDayLeave},
	{"振休", domain.ApplicationSubstituteHoliday},
	{"代休", domain.ApplicationSubstituteHoliday},
	{"欠勤", domain.ApplicationAbsence},
	{"遅刻", domain.ApplicationLateArrival},
	{"早退", domain.ApplicationEarlyLeave},
	{"早出", domain.ApplicationEarlyStart},
	{"直行", domain.ApplicationDirectToSite},
	{"直帰", domain.ApplicationDirectFromSite},
	{"電車遅延", domain.ApplicationTrainDelay},
	{"遅延", domain.ApplicationTrainDelay},
	{"打刻修正", domain.ApplicationClockCorrection},
	{"打刻忘れ", domain.ApplicationClockCorrection},
	{"特別残業", domain.ApplicationSpecialOvertime},
	{"残業", domain.ApplicationOvertimeEnd},
}

var (
	entrySeparators = regexp.MustCompile(`[\r\n;；、|]+`)
	timeRangeRe     = regexp.MustCompile(`(\d{3,4})\s*[-~〜]\s*(\d{3,4})`)
)

// ParseApplications splits raw application content into classified entries.
// Entries are separated by newlines, ';', '、' or '|'; each entry is
// "name[,detail]".
func ParseApplications(content string) []domain.Application {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil
	}

	var apps []domain.Application
	for _, raw := range entrySeparators.Split(content, -1) {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		name, detail := splitEntry(raw)
		apps = append(apps, domain.Application{
			Kind:   classifyApplication(name),
			Name:   name,
			Detail: detail,
		})
	}
	return apps
}

func splitEntry(raw string) (name, detail string) {
	idx := strings.IndexAny(raw, ",，")
	if idx < 0 {
		return raw, ""
	}
	sepLen := len(",")
	if strings.HasPrefix(raw[idx:], "，") {
		sepLen = len("，")
	}
	return strings.TrimSpace(raw[:idx]), strings.TrimSpace(raw[idx+sepLen:])
}

func classifyApplication(name string) domain.ApplicationKind {
	for _, entry := range applicationNames {
		if strings.Contains(name, entry.fragment) {
			return entry.kind
		}
	}
	return domain.ApplicationUnknown
}

// clockRange is a span of minutes since midnight; end may exceed 24h
type clockRange struct {
	start int
	end   int
}

func (r clockRange) minutes() int {
	return r.end - r.start
}

// parseClockRange reads the first "HMM-HMM" range in s ("900-1730")
func parseClockRange(s string) (clockRange, bool) {
	m := timeRangeRe.FindStringSubmatch(s)
	if m == nil {
		return clockRange{}, false
	}
	start, ok := parseCompactClock(m[1])
	if !ok {
		return clockRange{}, false
	}
	end, ok := parseCompactClock(m[2])
	if !ok {
		return clockRange{}, false
	}
	if end <= start {
		end += hours(24)
	}
	return clockRange{start: start, end: end}, true
}

// parseCompactClock reads "900" or "1730" as minutes since midnight
func parseCompactClock(s string) (int, bool) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	h, m := v/100, v%100
	if h > 47 || m > 59 {
		return 0, false
	}
	return h*minutesPerHour + m, true
}

// defaultShift is the company standard working time, 09:00-17:30
var defaultShift = clockRange{start: 9 * minutesPerHour, end: 17*minutesPerHour + 30}

// shiftFromApplications finds the scheduled shift declared by the day's
// applications, e.g. "残業終了,900-1730/1200-1300/7.75/5". Ranges belonging
// to breaks, outings and hourly leave are not shifts.
func shiftFromApplications(apps []domain.Application) (clockRange, bool) {
	for _, app := range apps {
		switch app.Kind {
		case domain.ApplicationNightBreakFix, domain.ApplicationPrivateOuting, domain.ApplicationHourlyLeave:
			continue
		}
		if app.Detail == "" {
			continue
		}
		// the shift is the first slash-separated field
		first, _, _ := strings.Cut(app.Detail, "/")
		if r, ok := parseClockRange(first); ok {
			return r, true
		}
	}
	return clockRange{}, false
}

// nightBreakCorrectionMinutes sums the durations declared by night-break
// correction applications. The detail is a range ("2200-2230"), an "H:MM"
// duration or a bare number of minutes.
func nightBreakCorrectionMinutes(apps []domain.Application) int {
	total := 0
	for _, app := range apps {
		if app.Kind != domain.ApplicationNightBreakFix {
			continue
		}
		if r, ok := parseClockRange(app.Detail); ok {
			total += r.minutes()
			continue
		}
		if m, ok := ParseDuration(app.Detail); ok && m > 0 {
			total += m
			continue
		}
		if v, err := strconv.Atoi(strings.TrimSpace(app.Detail)); err == nil && v > 0 {
			total += v
		}
	}
	return total
}

// hasOutingPunchPair reports whether a private outing with both leave and
// return times was recorded
func hasOutingPunchPair(apps []domain.Application) bool {
	for _, app := range apps {
		if app.Kind != domain.ApplicationPrivateOuting {
			continue
		}
		if r, ok := parseClockRange(app.Detail); ok && r.minutes() > 0 {
			return true
		}
	}
	return false
}
