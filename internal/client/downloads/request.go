package downloads

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/shardfetch/internal/sink"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// FileRequest references one file on the network. Either ContainerID or
// both OwnerID and ContainerName must be set.
type FileRequest struct {
	ContainerID   string
	OwnerID       string `validate:"required_without=ContainerID"`
	ContainerName string `validate:"required_without=ContainerID"`
	FileName      string `validate:"required"`
	// MimeType is detected from the content when empty.
	MimeType string
	// Sink overrides the client's store for this file.
	Sink sink.Store
}

func validateRequest(req *FileRequest) error {
	if req == nil {
		return fmt.Errorf("%w: request is nil", ErrValidation)
	}
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field())
	}
	return fmt.Errorf("%w: missing %s", ErrValidation, strings.Join(fields, ", "))
}
