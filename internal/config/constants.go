// internal/config/constants.go
package config

// アプリケーション情報
const (
	AppName    = "CourseKeep"
	AppVersion = "0.3.1"
)

// デフォルト設定値
const (
	DefaultServerPort          = ":8080"
	DefaultBaseDomain          = "coursekeep.local"
	DefaultLogLevel            = "info"
	DefaultJWTExpiryHours      = 24
	DefaultJudgeTimeoutSeconds = 15
)
