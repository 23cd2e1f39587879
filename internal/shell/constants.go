package shell

// Activation and backup markers
const (
	// CommandName is the binary the activation line invokes.
	CommandName = "rustboot"

	// ActivationMarker is the string that must appear in activation commands
	ActivationMarker = CommandName + " env"

	// BackupSuffix is appended to an rc file's name for its backup
	BackupSuffix = ".rustboot-backup"

	// sectionComment precedes the activation line in rc files
	sectionComment = "# rustboot - Rust toolchain on PATH"
)
