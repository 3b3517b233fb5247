package common

const (
	// MaxReviewRequestBody limits JSON request bodies for review endpoints.
	MaxReviewRequestBody = 1 << 20
	// ReviewDateLayout is the wire format of review timestamps (UTC, milliseconds).
	ReviewDateLayout = "2006-01-02T15:04:05.000Z"
)
