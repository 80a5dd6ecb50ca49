package covers

import "errors"

var (
	// ErrSuperseded is returned when a newer operation replaced the session state.
	ErrSuperseded = errors.New("superseded by a newer request")
	// ErrNoRecord is returned when the session holds no matching record.
	ErrNoRecord = errors.New("no record loaded in session")
	// ErrOverwriteNotConfirmed is returned when an upload would replace a
	// primary source cover without confirmation.
	ErrOverwriteNotConfirmed = errors.New("record already has a cover, overwrite not confirmed")
	// ErrNotImage is returned for uploads that do not sniff as an image.
	ErrNotImage = errors.New("file is not an image")
	// ErrCoverTooLarge is returned for uploads of MaxCoverSize bytes or more.
	ErrCoverTooLarge = errors.New("cover must be smaller than 1 MiB")
	// ErrStagingDisabled is returned when no staging store is configured.
	ErrStagingDisabled = errors.New("staging store is not configured")
)
