package template

import "errors"

var (
	ErrConfigInvalid    = errors.New("template configuration invalid")
	ErrTemplateNotFound = errors.New("appraisal template not found")
	ErrUnknownCategory  = errors.New("unknown job category")
)
