package excel

import "errors"

var (
	// ErrMissingDir is returned when the workbook directory is not specified
	ErrMissingDir = errors.New("directory is required")

	// ErrDocumentNotFound is returned when no workbook exists for an id
	ErrDocumentNotFound = errors.New("workbook not found")

	// ErrSheetNotFound is returned when the specified sheet doesn't exist
	ErrSheetNotFound = errors.New("sheet not found")

	// ErrSheetExists is returned when adding a sheet whose title is taken
	ErrSheetExists = errors.New("sheet already exists")

	// ErrLastSheet is returned when deleting the only sheet of a workbook
	ErrLastSheet = errors.New("cannot delete the last sheet")

	// ErrUnsupportedMutation is returned for field masks the workbook cannot apply
	ErrUnsupportedMutation = errors.New("unsupported mutation")
)
