package transfer

import (
	"errors"
	"fmt"
)

var (
	ErrAckTimeout        = errors.New("chunk acknowledgement timeout")
	ErrMetadataTimeout   = errors.New("metadata acknowledgement timeout")
	ErrTransferCancelled = errors.New("transfer cancelled")
	ErrFileTooLarge      = errors.New("file exceeds size limit")
	ErrChunkOutOfBounds  = errors.New("chunk exceeds declared size")
	ErrUnknownTransfer   = errors.New("unknown transfer")
	ErrNotConnected      = errors.New("not connected to a room")
)

// TransferError wraps a failure with the operation and file it
// occurred on.
type TransferError struct {
	Op      string
	File    string
	Err     error
	Details string
}

func (e *TransferError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.File, e.Err)
	}
	if e.Details != "" {
		return fmt.Sprintf("%s: %v (%s)", e.Op, e.Err, e.Details)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransferError) Unwrap() error {
	return e.Err
}

func NewError(op string, err error) *TransferError {
	return &TransferError{Op: op, Err: err}
}

func NewFileError(op, file string, err error) *TransferError {
	return &TransferError{Op: op, File: file, Err: err}
}

func WrapError(op string, err error, details string) *TransferError {
	return &TransferError{Op: op, Err: err, Details: details}
}
