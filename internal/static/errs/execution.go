package errs

import "errors"

var (
	InternalError       = errors.New("internal error")
	UnsupportedLanguage = errors.New("unsupported language")
	Busy                = errors.New("execution queue is full")
	MissingLanguage     = errors.New("language is required")
	MissingCode         = errors.New("code is required")
	InvalidLanguageSpec = errors.New("invalid language spec")
	ArchiveDisabled     = errors.New("grade archive is not configured")
	GradeRunNotFound    = errors.New("grade run not found")
)
