package attendance

import (
	"time"

	"kintaicli/pkg/contracts/domain"
)

var jst = time.FixedZone("JST", 9*60*60)

// testConfig pins the clock and run id so results are reproducible
func testConfig(now time.Time) Config {
	cfg := DefaultConfig()
	cfg.Location = jst
	cfg.Now = func() time.Time { return now }
	cfg.NewRunID = func() string { return "run-test" }
	return cfg
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, jst)
}

func at(date time.Time, hh, mm int) *time.Time {
	t := date.Add(time.Duration(hh)*time.Hour + time.Duration(mm)*time.Minute)
	return &t
}

// weekdayRecord is a compliant 09:00-17:30 day for E001
func weekdayRecord(date time.Time) domain.AttendanceRecord {
	return domain.AttendanceRecord{
		EmployeeID:           "E001",
		EmployeeName:         "山田太郎",
		Department:           "営業部",
		Date:                 date,
		CalendarType:         domain.CalendarWeekday,
		ClockIn:              at(date, 9, 0),
		ClockOut:             at(date, 17, 30),
		ComputedStart:        at(date, 9, 0),
		ComputedEnd:          at(date, 17, 30),
		BreakMinutes:         60,
		ActualWorkMinutes:    450,
		ScheduledWorkMinutes: 450,
	}
}

func withApplications(rec domain.AttendanceRecord, content string) domain.AttendanceRecord {
	rec.ApplicationContent = content
	rec.Applications = ParseApplications(content)
	return rec
}

func violationTypes(vs []domain.Violation) []domain.ViolationType {
	out := make([]domain.ViolationType, 0, len(vs))
	for _, v := range vs {
		out = append(out, v.Type)
	}
	return out
}
