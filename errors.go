package nb2pdf

import (
	"errors"

	"github.com/alnah/go-nb2pdf/internal/assets"
	"github.com/alnah/go-nb2pdf/internal/notebook"
	"github.com/alnah/go-nb2pdf/internal/pipeline"
)

// Sentinel errors for library operations.
var (
	ErrEmptyNotebook = errors.New("notebook content cannot be empty")

	// ErrMalformedNotebook indicates the input could not be parsed as
	// structured notebook data. Fatal; no artifact is produced.
	ErrMalformedNotebook = notebook.ErrMalformed

	// ErrComposition indicates an internal invariant violation during
	// document assembly (e.g. a dangling outline anchor).
	ErrComposition = pipeline.ErrComposition

	// ErrRenderTimeout marks the typesetting-wait expiry. It is surfaced
	// as a warning on the result, never as a Convert error: a document
	// with partially rendered math beats no document.
	ErrRenderTimeout = errors.New("math typesetting did not signal completion in time")

	// Render engine errors.
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrPageLoad       = errors.New("failed to load page")
	ErrPDFGeneration  = errors.New("PDF generation failed")

	// Validation errors.
	ErrInvalidPageSize    = errors.New("invalid page size")
	ErrInvalidMargin      = errors.New("invalid margin")
	ErrInvalidAccentColor = errors.New("invalid accent color")
	ErrInvalidTOCDepth    = errors.New("invalid TOC depth")

	// Asset loading errors.
	ErrStyleNotFound    = assets.ErrStyleNotFound
	ErrInvalidAssetName = assets.ErrInvalidAssetName
)
