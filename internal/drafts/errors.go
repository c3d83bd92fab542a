package drafts

import "errors"

var (
	// ErrNoDraft is returned when the user has no draft in progress.
	ErrNoDraft = errors.New("no resume draft in progress")
	// ErrNoSource is returned when a draft has no uploaded file to convert.
	ErrNoSource = errors.New("draft has no source file to convert")
)
