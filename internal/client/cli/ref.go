package cli

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/shardfetch/internal/client/downloads"
)

// parseRef turns "owner/container" or a bare container id plus a file
// name into a request.
func parseRef(ref, fileName string) (*downloads.FileRequest, error) {
	if ref == "" {
		return nil, fmt.Errorf("empty container reference")
	}
	req := &downloads.FileRequest{FileName: fileName}
	if owner, name, ok := strings.Cut(ref, "/"); ok {
		if owner == "" || name == "" {
			return nil, fmt.Errorf("container reference %q must be owner/container", ref)
		}
		req.OwnerID = owner
		req.ContainerName = name
		return req, nil
	}
	req.ContainerID = ref
	return req, nil
}
