package attendance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kintaicli/pkg/contracts/domain"
)

var detectorNow = time.Date(2024, 5, 31, 12, 0, 0, 0, jst)

func TestDetector_Rules(t *testing.T) {
	date := day(2024, 5, 13)

	tests := []struct {
		name   string
		record func() domain.AttendanceRecord
		want   []domain.ViolationType
	}{
		{
			name:   "compliant day",
			record: func() domain.AttendanceRecord { return weekdayRecord(date) },
			want:   []domain.ViolationType{},
		},
		{
			name: "missing clock out",
			record: func() domain.AttendanceRecord {
				r := weekdayRecord(date)
				r.ClockOut = nil
				return r
			},
			want: []domain.ViolationType{domain.ViolationMissingClock},
		},
		{
			name: "missing punches on approved leave",
			record: func() domain.AttendanceRecord {
				r := withApplications(weekdayRecord(date), "有休")
				r.ClockIn, r.ClockOut = nil, nil
				return r
			},
			want: []domain.ViolationType{},
		},
		{
			name: "missing punches on substitute holiday",
			record: func() domain.AttendanceRecord {
				r := withApplications(weekdayRecord(date), "振休")
				r.ClockIn, r.ClockOut = nil, nil
				return r
			},
			want: []domain.ViolationType{},
		},
		{
			name: "missing punches on a holiday",
			record: func() domain.AttendanceRecord {
				r := weekdayRecord(day(2024, 5, 12))
				r.CalendarType = domain.CalendarStatutoryHoliday
				r.ClockIn, r.ClockOut = nil, nil
				return r
			},
			want: []domain.ViolationType{},
		},
		{
			name: "late without application",
			record: func() domain.AttendanceRecord {
				r := weekdayRecord(date)
				r.LateFlag = true
				return r
			},
			want: []domain.ViolationType{domain.ViolationLateApplicationMissing},
		},
		{
			name: "late with application",
			record: func() domain.AttendanceRecord {
				r := withApplications(weekdayRecord(date), "遅刻")
				r.LateFlag = true
				return r
			},
			want: []domain.ViolationType{},
		},
		{
			name: "late explained by documented train delay",
			record: func() domain.AttendanceRecord {
				r := withApplications(weekdayRecord(date), "電車遅延")
				r.LateFlag = true
				r.Remarks = "【電車遅延】JR線 遅延証明書提出済"
				return r
			},
			want: []domain.ViolationType{},
		},
		{
			name: "early leave without application",
			record: func() domain.AttendanceRecord {
				r := weekdayRecord(date)
				r.EarlyLeaveFlag = true
				return r
			},
			want: []domain.ViolationType{domain.ViolationEarlyLeaveApplicationMissing},
		},
		{
			name: "early leave on half day leave",
			record: func() domain.AttendanceRecord {
				r := withApplications(weekdayRecord(date), "午後半休")
				r.EarlyLeaveFlag = true
				return r
			},
			want: []domain.ViolationType{},
		},
		{
			name: "early start without application",
			record: func() domain.AttendanceRecord {
				r := weekdayRecord(date)
				r.EarlyStartFlag = true
				return r
			},
			want: []domain.ViolationType{domain.ViolationEarlyStartApplicationMissing},
		},
		{
			name: "early start with application",
			record: func() domain.AttendanceRecord {
				r := withApplications(weekdayRecord(date), "早出,0800-1730")
				r.EarlyStartFlag = true
				return r
			},
			want: []domain.ViolationType{},
		},
		{
			name: "hourly leave without outing punches",
			record: func() domain.AttendanceRecord {
				return withApplications(weekdayRecord(date), "時間有休,2h")
			},
			want: []domain.ViolationType{domain.ViolationTimeLeavePunchMissing},
		},
		{
			name: "hourly leave with outing punches",
			record: func() domain.AttendanceRecord {
				return withApplications(weekdayRecord(date), "時間有休,2h\n私用外出,1300-1500")
			},
			want: []domain.ViolationType{},
		},
		{
			name: "night work without break correction",
			record: func() domain.AttendanceRecord {
				r := weekdayRecord(date)
				r.ComputedStart, r.ComputedEnd = at(date, 13, 0), at(date, 23, 30)
				r.ActualWorkMinutes = 570
				return r
			},
			want: []domain.ViolationType{domain.ViolationNightBreakApplicationMissing},
		},
		{
			name: "night work with break correction",
			record: func() domain.AttendanceRecord {
				r := withApplications(weekdayRecord(date), "深夜休憩修正,2200-2230")
				r.ComputedStart, r.ComputedEnd = at(date, 13, 0), at(date, 23, 30)
				r.ActualWorkMinutes = 570
				return r
			},
			want: []domain.ViolationType{},
		},
		{
			name: "short night span",
			record: func() domain.AttendanceRecord {
				r := weekdayRecord(date)
				r.ComputedStart, r.ComputedEnd = at(date, 14, 0), at(date, 22, 30)
				r.ActualWorkMinutes = 450
				return r
			},
			want: []domain.ViolationType{},
		},
		{
			name: "late shift ending past midnight",
			record: func() domain.AttendanceRecord {
				r := withApplications(weekdayRecord(date), "残業終了,1500-2330")
				r.ClockIn, r.ClockOut = at(date, 15, 0), at(date, 25, 0)
				r.ComputedStart, r.ComputedEnd = at(date, 15, 0), at(date, 25, 0)
				r.ActualWorkMinutes = 540
				return r
			},
			want: []domain.ViolationType{domain.ViolationNightBreakApplicationMissing},
		},
		{
			name: "early morning work counts as night",
			record: func() domain.AttendanceRecord {
				r := weekdayRecord(date)
				r.ComputedStart, r.ComputedEnd = at(date, 3, 0), at(date, 11, 0)
				r.ActualWorkMinutes = 420
				return r
			},
			want: []domain.ViolationType{domain.ViolationNightBreakApplicationMissing},
		},
		{
			name: "direct to site without remarks",
			record: func() domain.AttendanceRecord {
				return withApplications(weekdayRecord(date), "直行,A社")
			},
			want: []domain.ViolationType{domain.ViolationRemarksMissing},
		},
		{
			name: "clock correction with well formed remarks",
			record: func() domain.AttendanceRecord {
				r := withApplications(weekdayRecord(date), "打刻修正")
				r.Remarks = "【打刻修正】カード忘れ"
				return r
			},
			want: []domain.ViolationType{},
		},
		{
			name: "special overtime with free text remarks",
			record: func() domain.AttendanceRecord {
				r := withApplications(weekdayRecord(date), "特別残業")
				r.Remarks = "月末処理のため"
				return r
			},
			want: []domain.ViolationType{domain.ViolationRemarksFormatWarning},
		},
		{
			name: "several rules at once",
			record: func() domain.AttendanceRecord {
				r := withApplications(weekdayRecord(date), "直帰")
				r.ClockOut = nil
				r.ActualWorkMinutes, r.BreakMinutes = 540, 30
				r.LateFlag = true
				return r
			},
			want: []domain.ViolationType{
				domain.ViolationMissingClock,
				domain.ViolationBreak,
				domain.ViolationLateApplicationMissing,
				domain.ViolationRemarksMissing,
			},
		},
	}

	d := NewDetector(testConfig(detectorNow))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := d.Detect(tt.record())
			assert.Equal(t, tt.want, violationTypes(got))
		})
	}
}

func TestDetector_MissingBothPunches(t *testing.T) {
	date := day(2024, 5, 14)
	r := weekdayRecord(date)
	r.ClockIn, r.ClockOut, r.ComputedStart, r.ComputedEnd = nil, nil, nil, nil
	r.ActualWorkMinutes, r.BreakMinutes = 0, 0

	got := NewDetector(testConfig(detectorNow)).Detect(r)

	require.Len(t, got, 1)
	v := got[0]
	assert.Equal(t, domain.ViolationMissingClock, v.Type)
	assert.Equal(t, domain.UrgencyHigh, v.Urgency)
	assert.Equal(t, "E001", v.EmployeeID)
	assert.Equal(t, "山田太郎", v.EmployeeName)
	assert.True(t, v.Date.Equal(date))
	assert.Equal(t, "出勤・退勤の打刻なし", v.Details)
}

func TestDetector_BreakBoundaries(t *testing.T) {
	tests := []struct {
		name   string
		actual int
		brk    int
		want   bool
	}{
		{"8h with 59 minutes", 480, 59, true},
		{"8h with 60 minutes", 480, 60, false},
		{"6h with 44 minutes", 360, 44, true},
		{"6h with 45 minutes", 360, 45, false},
		{"7h59 with 45 minutes", 479, 45, false},
		{"10h with 45 minutes", 600, 45, true},
		{"5h59 without break", 359, 0, false},
	}

	d := NewDetector(testConfig(detectorNow))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := weekdayRecord(day(2024, 5, 13))
			r.ActualWorkMinutes, r.BreakMinutes = tt.actual, tt.brk

			got := d.Detect(r)
			if tt.want {
				require.Len(t, got, 1)
				assert.Equal(t, domain.ViolationBreak, got[0].Type)
				assert.Equal(t, domain.UrgencyHigh, got[0].Urgency)
			} else {
				assert.Empty(t, got)
			}
		})
	}
}

func TestDetector_EvaluationWindow(t *testing.T) {
	missing := func(date time.Time) domain.AttendanceRecord {
		r := weekdayRecord(date)
		r.ClockOut = nil
		return r
	}

	tests := []struct {
		name         string
		date         time.Time
		includeToday bool
		wantCount    int
	}{
		{"yesterday", day(2024, 5, 30), false, 1},
		{"today excluded by default", day(2024, 5, 31), false, 0},
		{"today included", day(2024, 5, 31), true, 1},
		{"future never evaluated", day(2024, 6, 3), true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(detectorNow)
			cfg.IncludeToday = tt.includeToday

			assert.Len(t, NewDetector(cfg).Detect(missing(tt.date)), tt.wantCount)
		})
	}
}

func TestDefaultRemarksValidator(t *testing.T) {
	tests := []struct {
		remarks string
		want    bool
	}{
		{"【電車遅延】JR線 遅延証明書提出済", true},
		{"【直行】【A社訪問】", true},
		{"【打刻修正】カード忘れ\n上長承認済", true},
		{"電車遅延のため", false},
		{"【】詳細", false},
		{"【直行】", false},
		{"【直行】【】", false},
		{"理由【直行】A社", false},
	}

	v := DefaultRemarksValidator()
	for _, tt := range tests {
		t.Run(tt.remarks, func(t *testing.T) {
			assert.Equal(t, tt.want, v.Valid(tt.remarks))
		})
	}
}

func TestDetector_CustomRemarksValidator(t *testing.T) {
	cfg := testConfig(detectorNow)
	cfg.RemarksValidator = RemarksValidatorFunc(func(string) bool { return true })

	r := weekdayRecord(day(2024, 5, 13))
	r.Remarks = "自由記述"

	assert.Empty(t, NewDetector(cfg).Detect(r))
	assert.Len(t, NewDetector(testConfig(detectorNow)).Detect(r), 1)
}

func TestViolationRules(t *testing.T) {
	rules := ViolationRules()
	require.Len(t, rules, 9)

	for _, meta := range rules {
		assert.NotEmpty(t, meta.Label, meta.Type)
		assert.NotEmpty(t, meta.Description, meta.Type)
	}

	assert.Equal(t, domain.UrgencyHigh, UrgencyOf(domain.ViolationMissingClock))
	assert.Equal(t, domain.UrgencyHigh, UrgencyOf(domain.ViolationBreak))
	assert.Equal(t, domain.UrgencyMedium, UrgencyOf(domain.ViolationRemarksMissing))
	assert.Equal(t, domain.UrgencyLow, UrgencyOf(domain.ViolationRemarksFormatWarning))

	meta, ok := MetaFor(domain.ViolationRemarksFormatWarning)
	require.True(t, ok)
	valid := DefaultRemarksValidator()
	for _, example := range meta.ExampleRemarks {
		assert.True(t, valid.Valid(example), example)
	}

	_, ok = MetaFor("unknown_rule")
	assert.False(t, ok)
}
