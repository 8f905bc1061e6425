package constants

import (
	"io/fs"
	"time"
)

const (
	// DefaultDirPerm is the default permission used when creating directories.
	DefaultDirPerm fs.FileMode = 0o755
	// DefaultFilePerm is the default permission used when creating files.
	DefaultFilePerm fs.FileMode = 0o644
)

const (
	// DefaultProviderTimeout bounds each provider call during a scan.
	DefaultProviderTimeout = 15 * time.Second
	// DefaultHistoryLimit caps how many stored scans list operations return
	// when the caller does not ask for a specific window.
	DefaultHistoryLimit = 20
	// MaxRequestBodyBytes caps the accepted size of an API scan request.
	MaxRequestBodyBytes = 64 * 1024
)

const (
	// HistoryFileName is the sqlite database holding past scans.
	HistoryFileName = "history.db"
	// ReportsDirName is the data subdirectory report files are written to.
	ReportsDirName = "reports"
)
