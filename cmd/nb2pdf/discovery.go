package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	nb2pdf "github.com/alnah/go-nb2pdf"
)

// Sentinel errors for file discovery.
var (
	ErrInvalidExtension   = errors.New("file must have .ipynb extension")
	ErrInvalidWorkerCount = errors.New("invalid worker count")
	ErrAmbiguousOutput    = errors.New("output file target requires a single input notebook")
)

// FileToConvert represents a single notebook to process.
type FileToConvert struct {
	InputPath  string
	OutputPath string
}

// discoverFiles expands the input paths into notebooks to convert.
// A directory is walked recursively for .ipynb files; checkpoint
// directories are skipped.
func discoverFiles(inputPaths []string, outputDir string) ([]FileToConvert, error) {
	var files []FileToConvert

	for _, inputPath := range inputPaths {
		info, err := os.Stat(inputPath)
		if err != nil {
			return nil, err
		}

		if !info.IsDir() {
			if err := validateNotebookExtension(inputPath); err != nil {
				return nil, err
			}
			files = append(files, FileToConvert{
				InputPath:  inputPath,
				OutputPath: resolveOutputPath(inputPath, outputDir, ""),
			})
			continue
		}

		err = filepath.WalkDir(inputPath, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return fmt.Errorf("scanning %s: %w", path, err)
			}
			if d.IsDir() {
				if d.Name() == ".ipynb_checkpoints" {
					return filepath.SkipDir
				}
				return nil
			}
			if filepath.Ext(path) != ".ipynb" {
				return nil
			}
			files = append(files, FileToConvert{
				InputPath:  path,
				OutputPath: resolveOutputPath(path, outputDir, inputPath),
			})
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	// A .pdf output target names one file; with several notebooks every
	// conversion would overwrite the previous one.
	if strings.HasSuffix(outputDir, ".pdf") && len(files) > 1 {
		return nil, fmt.Errorf("%w: %q would be written by %d notebooks", ErrAmbiguousOutput, outputDir, len(files))
	}

	return files, nil
}

// resolveOutputPath determines the PDF output path for a notebook.
func resolveOutputPath(inputPath, outputDir, baseInputDir string) string {
	base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))

	if outputDir == "" {
		return filepath.Join(filepath.Dir(inputPath), base+".pdf")
	}

	if strings.HasSuffix(outputDir, ".pdf") {
		return outputDir
	}

	if baseInputDir != "" {
		if relPath, err := filepath.Rel(baseInputDir, inputPath); err == nil {
			return filepath.Join(outputDir, filepath.Dir(relPath), base+".pdf")
		}
	}

	return filepath.Join(outputDir, base+".pdf")
}

// validateNotebookExtension checks that the file has a .ipynb extension.
func validateNotebookExtension(path string) error {
	if ext := filepath.Ext(path); ext != ".ipynb" {
		return fmt.Errorf("%w: got %q", ErrInvalidExtension, ext)
	}
	return nil
}

// validateWorkers checks that the worker count is within bounds.
func validateWorkers(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: %d (must be >= 0, 0 means auto)", ErrInvalidWorkerCount, n)
	}
	if n > nb2pdf.MaxPoolSize {
		return fmt.Errorf("%w: %d (maximum is %d)", ErrInvalidWorkerCount, n, nb2pdf.MaxPoolSize)
	}
	return nil
}

// htmlOutputPath returns the HTML path corresponding to a PDF path.
func htmlOutputPath(pdfPath string) string {
	return strings.TrimSuffix(pdfPath, ".pdf") + ".html"
}
