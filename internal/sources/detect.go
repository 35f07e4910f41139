package sources

import (
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

const octetStream = "application/octet-stream"

// DetectMediaType returns the declared type when it is meaningful and
// otherwise sniffs the content.
func DetectMediaType(declared string, data []byte) string {
	declared = strings.TrimSpace(declared)
	if declared != "" && !strings.HasPrefix(strings.ToLower(declared), octetStream) {
		return declared
	}
	return mimetype.Detect(data).String()
}
