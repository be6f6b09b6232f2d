package attendance

import (
	"math"

	"kintaicli/pkg/contracts/domain"
)

// Pace alert gates
const (
	// PaceAlertCurrentCeiling suppresses forecasts for employees whose
	// actual overtime already triggers the severe tier
	PaceAlertCurrentCeiling = 70 * minutesPerHour

	// PaceAlertPredictedFloor is the month-end value worth warning about
	PaceAlertPredictedFloor = 45 * minutesPerHour
)

// Forecast extrapolates month-end overtime from the elapsed share of
// weekdays. It is undefined when no weekday has passed.
func Forecast(currentMinutes, passedWeekdays, totalWeekdays int) (int, bool) {
	if passedWeekdays <= 0 {
		return 0, false
	}
	predicted := math.Round(float64(currentMinutes) / float64(passedWeekdays) * float64(totalWeekdays))
	return int(predicted), true
}

// ForecastEmployee builds the classified forecast of a summary, nil when
// undefined
func ForecastEmployee(s domain.EmployeeMonthlySummary) *domain.PaceForecast {
	predicted, ok := Forecast(s.TotalOvertimeMinutes, s.PassedWeekdays, s.TotalWeekdaysInMonth)
	if !ok {
		return nil
	}
	return &domain.PaceForecast{
		EmployeeID:               s.EmployeeID,
		EmployeeName:             s.EmployeeName,
		Department:               s.Department,
		CurrentOvertimeMinutes:   s.TotalOvertimeMinutes,
		PassedWeekdays:           s.PassedWeekdays,
		TotalWeekdaysInMonth:     s.TotalWeekdaysInMonth,
		PredictedOvertimeMinutes: predicted,
		PredictedLevel:           Classify(predicted),
	}
}

// IsPaceAlert reports whether a forecast should be surfaced
func IsPaceAlert(f domain.PaceForecast) bool {
	return f.CurrentOvertimeMinutes < PaceAlertCurrentCeiling &&
		f.PredictedOvertimeMinutes > PaceAlertPredictedFloor
}
