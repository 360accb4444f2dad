package tui

import (
	"os"
	"path/filepath"
)

// GetLogFilePath returns the path to the log file.
// If HISTEDIT_LOG_FILE is set, uses that path.
// Otherwise, uses ~/.histedit/logs/histedit.log
func GetLogFilePath() string {
	if customPath := os.Getenv("HISTEDIT_LOG_FILE"); customPath != "" {
		return customPath
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if we can't get home dir
		return "histedit.log"
	}

	return filepath.Join(homeDir, ".histedit", "logs", "histedit.log")
}
