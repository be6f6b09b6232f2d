// Package config loads the application configuration.
//
// # Configuration Sources
//
// Values are applied in order, later sources winning:
//
//	1. Default()
//	2. config.yaml (or configs/config.yaml), when present
//	3. KINTAI_* environment variables
//
// Environment variables follow the struct nesting, for example:
//
//	KINTAI_SERVER_PORT=8080
//	KINTAI_ANALYSIS_INCLUDE_TODAY=true
//	KINTAI_ANALYSIS_TIMEZONE=Asia/Tokyo
//	KINTAI_SECURITY_ALLOWED_ORIGINS=http://localhost:3000,https://hr.example.com
//
// The result is validated with go-playground/validator struct tags plus a
// time zone lookup.
//
// # Path Management
//
// ResolvePaths turns the configured directories into absolute paths under
// the executable directory, or under Paths.BaseDir when set:
//
//	paths, err := config.ResolvePaths(cfg.Paths)
//	reportPath := paths.GetReportPath("attendance_2024_05.csv")
package config
