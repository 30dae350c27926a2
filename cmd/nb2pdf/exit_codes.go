package main

import (
	"errors"
	"os"

	nb2pdf "github.com/alnah/go-nb2pdf"
	"github.com/alnah/go-nb2pdf/internal/config"
)

// Exit codes for the nb2pdf CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Successful conversion
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, or input validation
	ExitIO      = 3 // File not found, permission denied
	ExitBrowser = 4 // Browser/render engine errors
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must wrap with %w.
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Render engine errors (exit 4)
	if errors.Is(err, nb2pdf.ErrBrowserConnect) ||
		errors.Is(err, nb2pdf.ErrPageCreate) ||
		errors.Is(err, nb2pdf.ErrPageLoad) ||
		errors.Is(err, nb2pdf.ErrPDFGeneration) {
		return ExitBrowser
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, ErrReadNotebook) ||
		errors.Is(err, ErrWriteOutput) ||
		errors.Is(err, ErrNoInput) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, nb2pdf.ErrEmptyNotebook) ||
		errors.Is(err, nb2pdf.ErrMalformedNotebook) ||
		errors.Is(err, nb2pdf.ErrInvalidPageSize) ||
		errors.Is(err, nb2pdf.ErrInvalidMargin) ||
		errors.Is(err, nb2pdf.ErrInvalidAccentColor) ||
		errors.Is(err, nb2pdf.ErrInvalidTOCDepth) ||
		errors.Is(err, nb2pdf.ErrStyleNotFound) ||
		errors.Is(err, nb2pdf.ErrInvalidAssetName) ||
		errors.Is(err, ErrInvalidExtension) ||
		errors.Is(err, ErrInvalidWorkerCount) ||
		errors.Is(err, ErrAmbiguousOutput) {
		return ExitUsage
	}

	return ExitGeneral
}
