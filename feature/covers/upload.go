package covers

import (
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// MaxCoverSize is the exclusive upper bound of an uploaded cover in bytes.
const MaxCoverSize = 1 << 20

// UploadType is the identifier type uploads are attached to.
const UploadType = "mmsid"

// Upload is a cover image provided by the caller.
type Upload struct {
	Filename string
	Data     []byte
	// Confirm allows replacing an existing primary source cover.
	Confirm bool
}

// DetectImage checks size and content of an upload and returns its media type.
func DetectImage(data []byte) (string, error) {
	if len(data) >= MaxCoverSize {
		return "", ErrCoverTooLarge
	}
	mtype := mimetype.Detect(data)
	if !strings.HasPrefix(mtype.String(), "image/") {
		return "", ErrNotImage
	}
	return mtype.String(), nil
}
