package service

import "errors"

var (
	ErrDocumentNotFound = errors.New("document not found")
	ErrAuditNotFound    = errors.New("audit not found")
	ErrGapNotFound      = errors.New("compliance gap not found")
	ErrShareNotFound    = errors.New("share not found")
	ErrForbidden        = errors.New("access denied")

	ErrQuotaExceeded = errors.New("free audit limit reached, upgrade to continue")

	ErrInvalidFileType     = errors.New("only PDF files are accepted")
	ErrFileTooLarge        = errors.New("file exceeds the 10MB limit")
	ErrInvalidDocumentType = errors.New("document type must be standard or subject")
	ErrMissingStandard     = errors.New("a standard document or preset is required")
	ErrUnknownStandard     = errors.New("unknown standard preset")
	ErrStandardEmpty       = errors.New("standard document has no extracted text")
	ErrSubjectTooShort     = errors.New("subject document text is too short to audit")
	ErrSameAudit           = errors.New("cannot compare an audit with itself")
	ErrAuditNotCompleted   = errors.New("audit has not completed")

	ErrEmptyQuestion = errors.New("question must not be empty")

	ErrInvalidEmail      = errors.New("invalid email address")
	ErrInvalidPermission = errors.New("permission must be view or edit")
	ErrAlreadyShared     = errors.New("audit is already shared with this email")
	ErrSelfShare         = errors.New("cannot share an audit with yourself")

	ErrInvalidPlan          = errors.New("plan must be professional or enterprise")
	ErrInvalidBillingPeriod = errors.New("billing period must be monthly or annual")
)

// validationErrors are caller mistakes rather than missing or forbidden resources
var validationErrors = []error{
	ErrInvalidFileType, ErrFileTooLarge, ErrInvalidDocumentType, ErrMissingStandard,
	ErrUnknownStandard, ErrStandardEmpty, ErrSubjectTooShort, ErrSameAudit, ErrAuditNotCompleted,
	ErrEmptyQuestion, ErrInvalidEmail, ErrInvalidPermission, ErrSelfShare,
	ErrInvalidPlan, ErrInvalidBillingPeriod, ErrOrganizationNameTooLong,
}

// IsValidation reports whether err is a request validation failure
func IsValidation(err error) bool {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
