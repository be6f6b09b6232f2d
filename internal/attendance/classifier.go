package attendance

import (
	"kintaicli/pkg/contracts/domain"
)

// LevelMeta describes one tier of the overtime ladder
type LevelMeta struct {
	Level            domain.OvertimeAlertLevel `json:"level"`
	ThresholdMinutes int                       `json:"threshold_minutes"`
	Label            string                    `json:"label"`
	Description      string                    `json:"description"`
	Action           string                    `json:"action"`
}

// overtimeLevels is ordered by ascending threshold
var overtimeLevels = []LevelMeta{
	{domain.OvertimeNormal, 0, "正常", "36協定の原則の範囲内", "対応不要"},
	{domain.OvertimeWarning, hours(35), "注意", "月45時間の原則上限に接近", "業務量の調整を検討"},
	{domain.OvertimeExceeded, hours(45), "超過", "原則上限の月45時間を超過", "特別条項の適用確認"},
	{domain.OvertimeCaution, hours(55), "警戒", "特別条項の適用範囲で増加中", "上長への報告と業務の見直し"},
	{domain.OvertimeSerious, hours(65), "深刻", "健康障害のリスクが高まる水準", "産業医面談推奨"},
	{domain.OvertimeSevere, hours(70), "重大", "過重労働が懸念される水準", "残業禁止措置の検討"},
	{domain.OvertimeCritical, hours(80), "危険", "過労死ラインの月80時間を超過", "産業医による面接指導の実施"},
	{domain.OvertimeIllegal, hours(100), "違法", "法定上限の月100時間未満に違反", "即時是正"},
}

// Classify returns the highest tier whose threshold minutes has reached
func Classify(minutes int) domain.OvertimeAlertLevel {
	level := overtimeLevels[0].Level
	for _, meta := range overtimeLevels[1:] {
		if minutes < meta.ThresholdMinutes {
			break
		}
		level = meta.Level
	}
	return level
}

// LevelInfo returns the metadata of a tier
func LevelInfo(level domain.OvertimeAlertLevel) (LevelMeta, bool) {
	for _, meta := range overtimeLevels {
		if meta.Level == level {
			return meta, true
		}
	}
	return LevelMeta{}, false
}

// OvertimeLevels returns the ladder in ascending order
func OvertimeLevels() []LevelMeta {
	out := make([]LevelMeta, len(overtimeLevels))
	copy(out, overtimeLevels)
	return out
}
