package output

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/cedricrupb/dataviewer/core/cache"
	"github.com/cedricrupb/dataviewer/core/viewer"
)

// Formatter handles output formatting
type Formatter struct {
	colorEnabled bool
	verbose      bool
	successColor *color.Color
	errorColor   *color.Color
	warningColor *color.Color
	infoColor    *color.Color
	dimColor     *color.Color
}

// NewFormatter creates a new output formatter
func NewFormatter(colorEnabled, verbose bool) *Formatter {
	if !colorEnabled {
		color.NoColor = true
	}

	return &Formatter{
		colorEnabled: colorEnabled,
		verbose:      verbose,
		successColor: color.New(color.FgGreen, color.Bold),
		errorColor:   color.New(color.FgRed, color.Bold),
		warningColor: color.New(color.FgYellow, color.Bold),
		infoColor:    color.New(color.FgCyan),
		dimColor:     color.New(color.FgHiBlack),
	}
}

// Success prints a success message
func (f *Formatter) Success(message string) {
	f.successColor.Println("✓ " + message)
}

// Error prints an error message
func (f *Formatter) Error(message string) {
	f.errorColor.Println("✗ " + message)
}

// Warning prints a warning message
func (f *Formatter) Warning(message string) {
	f.warningColor.Println("⚠ " + message)
}

// Info prints an info message
func (f *Formatter) Info(message string) {
	f.infoColor.Println("ℹ " + message)
}

// Debug prints a debug message (only in verbose mode)
func (f *Formatter) Debug(message string) {
	if f.verbose {
		f.dimColor.Println("» " + message)
	}
}

// ShowViewerInfo displays where a resolved viewer script came from
func (f *Formatter) ShowViewerInfo(info *viewer.Info) {
	if info.Cached {
		f.Success("Using cached viewer")
		f.Debug("Cache key: " + info.Key)
	} else {
		f.Success("Viewer generated via " + info.Provider)
		f.Debug("Cache key: " + info.Key)
		f.Debug("Request id: " + info.RequestID)
	}
	f.dimColor.Println("  " + info.Path)
}

// ShowStageError renders a pipeline failure with its originating stage
func (f *Formatter) ShowStageError(err error) {
	if stageErr, ok := err.(*viewer.StageError); ok {
		f.Error(fmt.Sprintf("[%s] %v", stageErr.Stage, stageErr.Err))
		return
	}
	f.Error(err.Error())
}

// ShowCacheEntries displays the cached viewer scripts
func (f *Formatter) ShowCacheEntries(entries []cache.Entry) {
	if len(entries) == 0 {
		f.Info("Cache is empty")
		return
	}

	f.infoColor.Printf("Cached viewers (%d):\n", len(entries))
	for _, e := range entries {
		fmt.Printf("  %s  %s\n", e.Created.Format("2006-01-02 15:04"), shortKey(e.Key))
	}
}

// shortKey abbreviates a cache key for display
func shortKey(key string) string {
	if len(key) <= 16 {
		return key
	}
	return key[:16] + "..."
}

// Stage renders a stage banner while verbose
func (f *Formatter) Stage(stage viewer.Stage) {
	if !f.verbose {
		return
	}
	f.dimColor.Println("» stage: " + strings.ReplaceAll(string(stage), "-", " "))
}
