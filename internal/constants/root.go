package constants

// SessionState represents the current state of the TUI application
type SessionState int

const (
	AppName            = "skinlog"
	DefaultKeyringUser = "database-connection"
	// CredentialsKeyringUser is the keyring account holding sync credentials
	CredentialsKeyringUser = "sync-credentials"
	DefaultConfigDir       = "~/.config/skinlog"
	DefaultDBName          = "skinlog.db"
	DefaultConfigFile      = "config.yaml"
	DefaultCredentialsFile = "credentials.json"
	EnvPrefix              = "SKINLOG_"
	Version                = "v0.3.0"

	// KeyringDatabase as the database setting reads the connection string from the OS keyring
	KeyringDatabase = "keyring"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// TimeFormat is the standard time format used throughout the application (HH:MM)
	TimeFormat = "15:04"

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "skinlog-"
	BackupFileSuffix = ".db"

	// ChangeChannel is the PostgreSQL NOTIFY channel fed by the change triggers
	ChangeChannel = "skinlog_changes"
)

// Session States
const (
	StateLog SessionState = iota
	StateStash
	StateWishList
	StateRoutines
	StateAddProduct
	StateAddApplication
	StateStartRoutineLog
	StateAddRoutine
	StateConfirmDelete
	StateProductDetail
	StateEditProduct
)
