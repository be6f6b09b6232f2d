package validation

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultMaxTimesheetBytes bounds a single timesheet workbook
const DefaultMaxTimesheetBytes int64 = 10 << 20

var (
	ErrFileNotFound         = errors.New("file does not exist")
	ErrNotAFile             = errors.New("path is a directory, not a file")
	ErrUnsupportedExtension = errors.New("unsupported file extension")
	ErrTemporaryFile        = errors.New("file is a temporary Excel lock file")
	ErrEmptyFile            = errors.New("file is empty")
	ErrFileTooLarge         = errors.New("file exceeds the size limit")
)

// timesheetExtensions are the workbook formats excelize can open
var timesheetExtensions = map[string]bool{
	".xlsx": true,
	".xlsm": true,
}

// FileValidator checks timesheet inputs before they reach the reader
type FileValidator struct {
	maxBytes int64
	logger   *slog.Logger
}

// NewFileValidator creates a validator. A non-positive maxBytes uses
// DefaultMaxTimesheetBytes; a nil logger falls back to slog.Default.
func NewFileValidator(maxBytes int64, logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxTimesheetBytes
	}
	return &FileValidator{
		maxBytes: maxBytes,
		logger:   logger,
	}
}

// MaxBytes returns the size limit in bytes
func (v *FileValidator) MaxBytes() int64 {
	return v.maxBytes
}

// ValidateTimesheet checks that path is a readable workbook within the
// size limit
func (v *FileValidator) ValidateTimesheet(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		v.logger.Error("File does not exist", slog.String("file", path))
		return fmt.Errorf("%w: %s", ErrFileNotFound, path)
	}
	if err != nil {
		return fmt.Errorf("failed to stat file %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s", ErrNotAFile, path)
	}
	if err := v.ValidateUpload(filepath.Base(path), info.Size()); err != nil {
		return err
	}

	file, err := os.Open(path)
	if err != nil {
		v.logger.Error("File is not readable",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return fmt.Errorf("file %s is not readable: %w", path, err)
	}
	file.Close()

	v.logger.Debug("Timesheet validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// ValidateUpload checks a file name and declared size, e.g. of a
// multipart upload
func (v *FileValidator) ValidateUpload(name string, size int64) error {
	base := filepath.Base(name)
	if strings.HasPrefix(base, "~$") {
		v.logger.Warn("Skipping temporary Excel file", slog.String("file", name))
		return fmt.Errorf("%w: %s", ErrTemporaryFile, name)
	}

	ext := strings.ToLower(filepath.Ext(base))
	if !timesheetExtensions[ext] {
		v.logger.Error("File is not an Excel workbook",
			slog.String("file", name),
			slog.String("extension", ext))
		return fmt.Errorf("%w: %q", ErrUnsupportedExtension, ext)
	}

	if size == 0 {
		return fmt.Errorf("%w: %s", ErrEmptyFile, name)
	}
	if size > v.maxBytes {
		v.logger.Error("File exceeds size limit",
			slog.String("file", name),
			slog.Int64("size", size),
			slog.Int64("max_bytes", v.maxBytes))
		return fmt.Errorf("%w: %d bytes (limit %d)", ErrFileTooLarge, size, v.maxBytes)
	}
	return nil
}

// ValidateOutputDirectory ensures the directory exists and is writable
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	testFile := filepath.Join(dir, ".write_test")
	file, err := os.Create(testFile)
	if err != nil {
		v.logger.Error("Output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("output directory %s is not writable: %w", dir, err)
	}
	file.Close()
	os.Remove(testFile)

	v.logger.Debug("Output directory validated", slog.String("directory", dir))
	return nil
}

// ExpandInputs resolves comma-separated file lists and directories into
// sorted, de-duplicated workbook paths. Directories contribute their
// workbooks, skipping Excel lock files; explicit files are validated.
func (v *FileValidator) ExpandInputs(inputs ...string) ([]string, error) {
	seen := make(map[string]bool)
	var paths []string
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			paths = append(paths, p)
		}
	}

	for _, input := range inputs {
		for _, p := range strings.Split(input, ",") {
			p = strings.TrimSpace(p)
			if p == "" {
				continue
			}

			info, err := os.Stat(p)
			if err == nil && info.IsDir() {
				found, err := v.workbooksIn(p)
				if err != nil {
					return nil, err
				}
				for _, f := range found {
					add(f)
				}
				continue
			}

			if err := v.ValidateTimesheet(p); err != nil {
				return nil, err
			}
			add(p)
		}
	}

	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: no timesheet workbooks in %s", ErrFileNotFound, strings.Join(inputs, ","))
	}
	sort.Strings(paths)
	return paths, nil
}

func (v *FileValidator) workbooksIn(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), "~$") {
			continue
		}
		if !timesheetExtensions[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}

	v.logger.Debug("Workbooks found",
		slog.String("directory", dir),
		slog.Int("count", len(paths)))
	return paths, nil
}
