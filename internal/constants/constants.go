package constants

const (
	AppName           = "habitkit"
	DefaultConfigPath = "~/.config/habitkit/habitkit.db"
	Version           = "v0.3.0"

	// ExportFormatVersion tags the export document format, not the app release.
	ExportFormatVersion = "1.0.0"

	// DateFormat is the standard calendar-day format used throughout the
	// application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// TimeFormat is the 24-hour clock format used by notification times (HH:MM)
	TimeFormat = "15:04"

	// Habit field limits
	MaxNameLen        = 50
	MaxDescriptionLen = 200
	MaxCategoryLen    = 30
	MaxTagLen         = 20
	MaxTags           = 5
	MinGoal           = 1
	MaxGoal           = 7

	// Completion field limits
	MaxNotesLen        = 500
	MaxCompletionValue = 100

	// Backup constants
	MaxBackups            = 14
	BackupDirName         = "backups"
	BackupFilePrefix      = "habitkit-"
	BackupFileSuffix      = ".db"
	BackupTimestampFormat = "20060102-150405"

	// DefaultColor is used when a habit is created without an explicit color
	DefaultColor = "#4F46E5"
	// DefaultIcon is used when a habit is created without an explicit icon
	DefaultIcon = "*"
)
