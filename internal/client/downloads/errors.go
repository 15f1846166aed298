package downloads

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/shardfetch/internal/client/config"
)

var (
	ErrConfig     = config.ErrConfig
	ErrValidation = errors.New("invalid file request")
	ErrResolution = errors.New("container id resolution failed")
	ErrToken      = errors.New("token request failed")
	ErrPointer    = errors.New("pointer request failed")
	ErrTransfer   = errors.New("transfer failed")
	ErrDestroyed  = errors.New("client destroyed")
	ErrRemoved    = errors.New("file removed")
)

// Stage names the pipeline step that failed.
type Stage string

const (
	StageResolution Stage = "resolution"
	StageToken      Stage = "token"
	StagePointers   Stage = "pointers"
	StageTransfer   Stage = "transfer"
)

func (s Stage) sentinel() error {
	switch s {
	case StageResolution:
		return ErrResolution
	case StageToken:
		return ErrToken
	case StagePointers:
		return ErrPointer
	default:
		return ErrTransfer
	}
}

// StageError is the error reported for a failed pipeline. It matches both
// the stage sentinel and the underlying cause with errors.Is.
type StageError struct {
	Stage  Stage
	FileID string
	Err    error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("file %s: %v: %v", e.FileID, e.Stage.sentinel(), e.Err)
}

func (e *StageError) Unwrap() []error {
	return []error{e.Stage.sentinel(), e.Err}
}
