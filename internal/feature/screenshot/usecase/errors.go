// Package usecase はscreenshotフィーチャーのビジネスロジックを実装します。
package usecase

import "errors"

var (
	// ErrAnalysisNotFound is returned when no analysis exists for an image URI.
	ErrAnalysisNotFound = errors.New("analysis not found")

	// ErrDuplicateAnalysis is returned by the store when an analysis for the image URI already exists.
	ErrDuplicateAnalysis = errors.New("analysis already exists")

	// ErrImageURIRequired is returned when an analysis has no image URI.
	ErrImageURIRequired = errors.New("imageUri is required")

	// ErrTagRequired is returned when a tag search has an empty tag.
	ErrTagRequired = errors.New("tag is required")

	// ErrImageEmpty is returned when an uploaded image has no bytes.
	ErrImageEmpty = errors.New("image data is empty")

	// ErrImageTooLarge is returned when an uploaded image exceeds MaxImageSize.
	ErrImageTooLarge = errors.New("image exceeds maximum size")

	// ErrCaptionUnavailable wraps failures of the labeling or language model backends.
	ErrCaptionUnavailable = errors.New("caption backend unavailable")
)

// ErrUnsupportedImage is returned when the uploaded bytes are not an image.
var ErrUnsupportedImage = errors.New("unsupported image type")
