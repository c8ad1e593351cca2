package db

import "errors"

// Domain-level database error sentinels.
var (
	// User errors
	ErrUserNotFound = errors.New("user not found")

	// Domain errors
	ErrDomainNotFound = errors.New("domain not found")

	// Wizard errors
	ErrProgressNotFound = errors.New("wizard progress not found")

	// Keyword errors
	ErrKeywordNotFound  = errors.New("keyword not found")
	ErrDuplicateKeyword = errors.New("keyword already exists for this domain")

	// Phrase errors
	ErrPhraseNotFound = errors.New("intent phrase not found")

	// Credential errors
	ErrCredentialNotFound = errors.New("credential not found")
)
