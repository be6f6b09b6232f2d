package domain

import (
	"time"
)

// ViolationType identifies a labor-rule check
type ViolationType string

const (
	ViolationMissingClock                 ViolationType = "missing_clock"
	ViolationBreak                        ViolationType = "break_violation"
	ViolationLateApplicationMissing       ViolationType = "late_application_missing"
	ViolationEarlyLeaveApplicationMissing ViolationType = "early_leave_application_missing"
	ViolationEarlyStartApplicationMissing ViolationType = "early_start_application_missing"
	ViolationTimeLeavePunchMissing        ViolationType = "time_leave_punch_missing"
	ViolationNightBreakApplicationMissing ViolationType = "night_break_application_missing"
	ViolationRemarksMissing               ViolationType = "remarks_missing"
	ViolationRemarksFormatWarning         ViolationType = "remarks_format_warning"
)

// Urgency is the triage tag attached to a violation type
type Urgency string

const (
	UrgencyHigh   Urgency = "high"
	UrgencyMedium Urgency = "medium"
	UrgencyLow    Urgency = "low"
)

// Violation is a derived fact about one employee-day
type Violation struct {
	EmployeeID   string        `json:"employee_id"`
	EmployeeName string        `json:"employee_name"`
	Date         time.Time     `json:"date"`
	Type         ViolationType `json:"type"`
	Urgency      Urgency       `json:"urgency"`
	Details      string        `json:"details"`
}

// OvertimeAlertLevel is a tier of the 36 Agreement overtime ladder
type OvertimeAlertLevel string

const (
	OvertimeNormal   OvertimeAlertLevel = "normal"
	OvertimeWarning  OvertimeAlertLevel = "warning"
	OvertimeExceeded OvertimeAlertLevel = "exceeded"
	OvertimeCaution  OvertimeAlertLevel = "caution"
	OvertimeSerious  OvertimeAlertLevel = "serious"
	OvertimeSevere   OvertimeAlertLevel = "severe"
	OvertimeCritical OvertimeAlertLevel = "critical"
	OvertimeIllegal  OvertimeAlertLevel = "illegal"
)

// Rank orders tiers from normal (0) to illegal (7); unknown levels rank -1
func (l OvertimeAlertLevel) Rank() int {
	switch l {
	case OvertimeNormal:
		return 0
	case OvertimeWarning:
		return 1
	case OvertimeExceeded:
		return 2
	case OvertimeCaution:
		return 3
	case OvertimeSerious:
		return 4
	case OvertimeSevere:
		return 5
	case OvertimeCritical:
		return 6
	case OvertimeIllegal:
		return 7
	default:
		return -1
	}
}

// PaceForecast is a month-end overtime projection for one employee
type PaceForecast struct {
	EmployeeID               string             `json:"employee_id"`
	EmployeeName             string             `json:"employee_name"`
	Department               string             `json:"department"`
	CurrentOvertimeMinutes   int                `json:"current_overtime_minutes"`
	PassedWeekdays           int                `json:"passed_weekdays"`
	TotalWeekdaysInMonth     int                `json:"total_weekdays_in_month"`
	PredictedOvertimeMinutes int                `json:"predicted_overtime_minutes"`
	PredictedLevel           OvertimeAlertLevel `json:"predicted_level"`
}

// OvertimeAlert surfaces an employee whose actual overtime reached a tier
type OvertimeAlert struct {
	EmployeeID      string             `json:"employee_id"`
	EmployeeName    string             `json:"employee_name"`
	Department      string             `json:"department"`
	OvertimeMinutes int                `json:"overtime_minutes"`
	Level           OvertimeAlertLevel `json:"level"`
	Label           string             `json:"label"`
	Action          string             `json:"action"`
}
