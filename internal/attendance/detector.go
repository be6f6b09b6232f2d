package attendance

import (
	"fmt"
	"strings"
	"time"

	"kintaicli/pkg/contracts/domain"
)

// Break requirements by actual work time
const (
	longDayMinutes   = 8 * minutesPerHour
	longDayBreak     = 60
	mediumDayMinutes = 6 * minutesPerHour
	mediumDayBreak   = 45
)

// Night work window, 22:00 to 05:00
const (
	nightStart          = 22 * minutesPerHour
	nightEnd            = 29 * minutesPerHour
	minNightWorkMinutes = minutesPerHour
)

// Kinds that excuse a day without punches
var approvedLeaveKinds = []domain.ApplicationKind{
	domain.ApplicationFullDayLeave,
	domain.ApplicationSubstituteHoliday,
	domain.ApplicationAbsence,
}

var (
	lateExcuses       = []domain.ApplicationKind{domain.ApplicationLateArrival, domain.ApplicationTrainDelay, domain.ApplicationHourlyLeave, domain.ApplicationHalfDayLeave}
	earlyLeaveExcuses = []domain.ApplicationKind{domain.ApplicationEarlyLeave, domain.ApplicationHourlyLeave, domain.ApplicationHalfDayLeave}
	earlyStartExcuses = []domain.ApplicationKind{domain.ApplicationEarlyStart}
)

// Kinds whose applications must be explained in the remarks
var remarksRequiredKinds = []domain.ApplicationKind{
	domain.ApplicationDirectToSite,
	domain.ApplicationDirectFromSite,
	domain.ApplicationTrainDelay,
	domain.ApplicationClockCorrection,
	domain.ApplicationSpecialOvertime,
}

// Detector evaluates the labor rules against single records
type Detector struct {
	cfg Config
}

// NewDetector creates a detector
func NewDetector(cfg Config) *Detector {
	return &Detector{cfg: cfg.withDefaults()}
}

// Evaluates reports whether the record's date is inside the evaluation
// window: never in the future, and today only with IncludeToday
func (d *Detector) Evaluates(rec domain.AttendanceRecord) bool {
	return evaluatesDate(d.cfg, rec.Date)
}

func evaluatesDate(cfg Config, date time.Time) bool {
	today := cfg.today()
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, cfg.Location)
	if day.After(today) {
		return false
	}
	if day.Equal(today) {
		return cfg.IncludeToday
	}
	return true
}

// Detect returns every violation the record triggers, in rule order
func (d *Detector) Detect(rec domain.AttendanceRecord) []domain.Violation {
	if !d.Evaluates(rec) {
		return nil
	}

	var out []domain.Violation
	emit := func(t domain.ViolationType, details string) {
		out = append(out, domain.Violation{
			EmployeeID:   rec.EmployeeID,
			EmployeeName: rec.EmployeeName,
			Date:         rec.Date,
			Type:         t,
			Urgency:      UrgencyOf(t),
			Details:      details,
		})
	}

	if details, ok := missingClock(rec); ok {
		emit(domain.ViolationMissingClock, details)
	}
	if details, ok := breakShortfall(rec); ok {
		emit(domain.ViolationBreak, details)
	}
	if rec.LateFlag && !hasAny(rec, lateExcuses) {
		emit(domain.ViolationLateApplicationMissing, "出勤"+clockText(effectiveStart(rec))+" 遅刻申請なし")
	}
	if rec.EarlyLeaveFlag && !hasAny(rec, earlyLeaveExcuses) {
		emit(domain.ViolationEarlyLeaveApplicationMissing, "退勤"+clockText(effectiveEnd(rec))+" 早退申請なし")
	}
	if rec.EarlyStartFlag && !hasAny(rec, earlyStartExcuses) {
		emit(domain.ViolationEarlyStartApplicationMissing, "出勤"+clockText(effectiveStart(rec))+" 早出申請なし")
	}
	if rec.HasApplication(domain.ApplicationHourlyLeave) && !hasOutingPunchPair(rec.Applications) {
		emit(domain.ViolationTimeLeavePunchMissing, "時間有休に対応する私用外出・戻りの打刻なし")
	}
	if night := nightWorkMinutes(rec); night >= minNightWorkMinutes && rec.ActualWorkMinutes > mediumDayMinutes &&
		!rec.HasApplication(domain.ApplicationNightBreakFix) {
		emit(domain.ViolationNightBreakApplicationMissing, "深夜勤務"+FormatDuration(night)+" 深夜休憩修正申請なし")
	}
	if rec.Remarks == "" {
		if names := namesOf(rec, remarksRequiredKinds); len(names) > 0 {
			emit(domain.ViolationRemarksMissing, strings.Join(names, "・")+"の備考なし")
		}
	} else if !d.cfg.RemarksValidator.Valid(rec.Remarks) {
		emit(domain.ViolationRemarksFormatWarning, fmt.Sprintf("備考「%s」が【理由】詳細の形式ではありません", rec.Remarks))
	}

	return out
}

// DetectAll runs Detect over records in order
func (d *Detector) DetectAll(records []domain.AttendanceRecord) []domain.Violation {
	var out []domain.Violation
	for _, rec := range records {
		out = append(out, d.Detect(rec)...)
	}
	return out
}

func missingClock(rec domain.AttendanceRecord) (string, bool) {
	if !rec.CalendarType.IsWeekday() || hasAny(rec, approvedLeaveKinds) {
		return "", false
	}
	switch {
	case rec.ClockIn == nil && rec.ClockOut == nil:
		return "出勤・退勤の打刻なし", true
	case rec.ClockIn == nil:
		return "出勤の打刻なし", true
	case rec.ClockOut == nil:
		return "退勤の打刻なし", true
	}
	return "", false
}

func breakShortfall(rec domain.AttendanceRecord) (string, bool) {
	required := 0
	switch {
	case rec.ActualWorkMinutes >= longDayMinutes:
		required = longDayBreak
	case rec.ActualWorkMinutes >= mediumDayMinutes:
		required = mediumDayBreak
	default:
		return "", false
	}
	if rec.BreakMinutes >= required {
		return "", false
	}
	return fmt.Sprintf("実働%s 休憩%s (必要%s)",
		FormatDuration(rec.ActualWorkMinutes), FormatDuration(rec.BreakMinutes), FormatDuration(required)), true
}

// nightWorkMinutes is the overlap of the worked span with 22:00-05:00,
// counting both the night after the record date and the early morning of it
func nightWorkMinutes(rec domain.AttendanceRecord) int {
	start, end := effectiveStart(rec), effectiveEnd(rec)
	if start == nil || end == nil {
		return 0
	}
	s := minutesSinceMidnight(rec.Date, *start)
	e := minutesSinceMidnight(rec.Date, *end)
	if e <= s {
		return 0
	}
	return overlap(s, e, nightStart, nightEnd) + overlap(s, e, nightStart-hours(24), nightEnd-hours(24))
}

func overlap(s1, e1, s2, e2 int) int {
	lo, hi := max(s1, s2), min(e1, e2)
	if hi <= lo {
		return 0
	}
	return hi - lo
}

func hasAny(rec domain.AttendanceRecord, kinds []domain.ApplicationKind) bool {
	for _, k := range kinds {
		if rec.HasApplication(k) {
			return true
		}
	}
	return false
}

func namesOf(rec domain.AttendanceRecord, kinds []domain.ApplicationKind) []string {
	var names []string
	for _, app := range rec.Applications {
		for _, k := range kinds {
			if app.Kind == k {
				names = append(names, app.Name)
				break
			}
		}
	}
	return names
}

func clockText(t *time.Time) string {
	if t == nil {
		return "--:--"
	}
	return t.Format("15:04")
}
