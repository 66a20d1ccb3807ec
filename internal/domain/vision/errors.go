package vision

import "errors"

// Sentinel kinds for scoring rejections. A rejection means the submission
// was unusable and nothing was scored; callers must not confuse it with a
// zero score or with storage failures further down the pipeline.
var (
	ErrDecodeFailed = errors.New("image decode failed")
	ErrNoShapeFound = errors.New("no shape found")
)
