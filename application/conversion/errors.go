package conversion

import "fmt"

// Stage names the pipeline step that failed
type Stage string

const (
	StageResolve   Stage = "resolve"
	StageTranscode Stage = "transcode"
	StageRead      Stage = "read"
	StageUpload    Stage = "upload"
	StagePublish   Stage = "publish"
)

// StageError reports a failure after validation, tagged with the failing stage
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

func stageErr(stage Stage, err error) error {
	return &StageError{Stage: stage, Err: err}
}
