package attendance

import (
	"kintaicli/pkg/contracts/domain"
)

// ViolationMeta is the static display and triage data of a rule
type ViolationMeta struct {
	Type           domain.ViolationType `json:"type"`
	Urgency        domain.Urgency       `json:"urgency"`
	Label          string               `json:"label"`
	Description    string               `json:"description"`
	ExampleRemarks []string             `json:"example_remarks,omitempty"`
}

// violationRules lists the rules in evaluation order, which is also the
// tie-break order of violations on the same employee-day
var violationRules = []ViolationMeta{
	{
		Type:        domain.ViolationMissingClock,
		Urgency:     domain.UrgencyHigh,
		Label:       "打刻漏れ",
		Description: "平日に出勤または退勤の打刻がありません",
	},
	{
		Type:        domain.ViolationBreak,
		Urgency:     domain.UrgencyHigh,
		Label:       "休憩時間不足",
		Description: "実働6時間以上は45分、8時間以上は60分の休憩が必要です",
	},
	{
		Type:           domain.ViolationLateApplicationMissing,
		Urgency:        domain.UrgencyMedium,
		Label:          "遅刻申請漏れ",
		Description:    "始業時刻より遅い出勤に遅刻申請がありません",
		ExampleRemarks: []string{"【電車遅延】JR線 遅延証明書提出済"},
	},
	{
		Type:        domain.ViolationEarlyLeaveApplicationMissing,
		Urgency:     domain.UrgencyMedium,
		Label:       "早退申請漏れ",
		Description: "終業時刻より早い退勤に早退申請がありません",
	},
	{
		Type:        domain.ViolationEarlyStartApplicationMissing,
		Urgency:     domain.UrgencyMedium,
		Label:       "早出申請漏れ",
		Description: "始業時刻より早い出勤に早出申請がありません",
	},
	{
		Type:        domain.ViolationTimeLeavePunchMissing,
		Urgency:     domain.UrgencyMedium,
		Label:       "時間有休の外出打刻漏れ",
		Description: "時間単位有休に対応する私用外出・戻りの打刻がありません",
	},
	{
		Type:        domain.ViolationNightBreakApplicationMissing,
		Urgency:     domain.UrgencyMedium,
		Label:       "深夜休憩申請漏れ",
		Description: "深夜帯の勤務に深夜休憩修正の申請がありません",
	},
	{
		Type:           domain.ViolationRemarksMissing,
		Urgency:        domain.UrgencyMedium,
		Label:          "備考未入力",
		Description:    "直行・直帰・電車遅延・打刻修正・特別残業の申請には備考が必要です",
		ExampleRemarks: []string{"【直行】【A社訪問】", "【打刻修正】カード忘れ"},
	},
	{
		Type:           domain.ViolationRemarksFormatWarning,
		Urgency:        domain.UrgencyLow,
		Label:          "備考形式不備",
		Description:    "備考は「【理由】詳細」の形式で入力してください",
		ExampleRemarks: []string{"【電車遅延】JR線 遅延証明書提出済", "【直行】【A社訪問】"},
	},
}

var violationIndex = func() map[domain.ViolationType]int {
	idx := make(map[domain.ViolationType]int, len(violationRules))
	for i, meta := range violationRules {
		idx[meta.Type] = i
	}
	return idx
}()

// ViolationRules returns the metadata of every rule in evaluation order
func ViolationRules() []ViolationMeta {
	out := make([]ViolationMeta, len(violationRules))
	copy(out, violationRules)
	return out
}

// MetaFor returns the metadata of a rule
func MetaFor(t domain.ViolationType) (ViolationMeta, bool) {
	i, ok := violationIndex[t]
	if !ok {
		return ViolationMeta{}, false
	}
	return violationRules[i], true
}

// UrgencyOf returns the static urgency of a rule, low for unknown types
func UrgencyOf(t domain.ViolationType) domain.Urgency {
	if meta, ok := MetaFor(t); ok {
		return meta.Urgency
	}
	return domain.UrgencyLow
}

func ruleOrder(t domain.ViolationType) int {
	if i, ok := violationIndex[t]; ok {
		return i
	}
	return len(violationRules)
}
