package sheetview

import "errors"

var (
	ErrKeyNotFound            = errors.New("key not found")
	ErrNotFound               = errors.New("value not found")
	ErrIndexOutOfRange        = errors.New("index out of range")
	ErrLengthMismatch         = errors.New("length mismatch")
	ErrEncoding               = errors.New("value is not ASCII")
	ErrInvalidDimension       = errors.New("invalid dimension")
	ErrSizeChangeNotSupported = errors.New("size change not supported")
	ErrStepNotSupported       = errors.New("slicing with step is not supported")
	ErrSheetRemoved           = errors.New("worksheet has been removed")

	// ErrUnrecognizedCredentialFormat is returned by credential providers for
	// credential blobs that are neither user tokens nor service account keys.
	ErrUnrecognizedCredentialFormat = errors.New("unrecognized credential format")

	// ErrRemoteOperationFailed wraps every error returned by an Adapter.
	ErrRemoteOperationFailed = errors.New("remote operation failed")
)
