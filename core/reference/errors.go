package reference

import (
	"fmt"

	"github.com/FocuswithJustin/JuniperStudy/core/errors"
)

// BookNameErrorKind classifies book-name resolution failures.
type BookNameErrorKind int

const (
	// InvalidInput means the text does not look like a book name.
	InvalidInput BookNameErrorKind = iota + 1
	// PrefixInvalid means the numeric prefix is zero or out of range.
	PrefixInvalid
	// BookDoesNotExist means no book in the canon matches.
	BookDoesNotExist
)

// BookNameError is returned by ResolveBookName.
type BookNameError struct {
	Kind  BookNameErrorKind
	Input string
}

func (e *BookNameError) Error() string {
	switch e.Kind {
	case InvalidInput:
		return fmt.Sprintf("invalid book name %q", e.Input)
	case PrefixInvalid:
		return fmt.Sprintf("invalid book number in %q", e.Input)
	default:
		return fmt.Sprintf("book %q does not exist", e.Input)
	}
}

func (e *BookNameError) Unwrap() error { return errors.ErrInvalidInput }

// RefErrorKind classifies citation failures.
type RefErrorKind int

const (
	// InvalidRefID means no citation grammar matched.
	InvalidRefID RefErrorKind = iota + 1
	// ChapterCannotBeZero means a chapter number was 0.
	ChapterCannotBeZero
	// VerseCannotBeZero means a verse number was 0.
	VerseCannotBeZero
	// UnknownBible means the "(name)" suffix matched no bible module.
	UnknownBible
	// RefIDDoesNotExist means the reference fails the canon existence check.
	RefIDDoesNotExist
	// InvalidBook wraps a BookNameError.
	InvalidBook
)

// RefParseError is returned by ParseReferences. Raw is the citation text
// that failed, not the whole input.
type RefParseError struct {
	Kind  RefErrorKind
	Raw   string
	Bible string // bible display name or the unresolved suffix
	Err   error
}

func (e *RefParseError) Error() string {
	switch e.Kind {
	case ChapterCannotBeZero:
		return fmt.Sprintf("invalid reference %q: chapter cannot be zero", e.Raw)
	case VerseCannotBeZero:
		return fmt.Sprintf("invalid reference %q: verse cannot be zero", e.Raw)
	case UnknownBible:
		return fmt.Sprintf("unknown bible %q in reference %q", e.Bible, e.Raw)
	case RefIDDoesNotExist:
		return fmt.Sprintf("reference %q does not exist in %s", e.Raw, e.Bible)
	case InvalidBook:
		return fmt.Sprintf("invalid reference %q: %v", e.Raw, e.Err)
	default:
		return fmt.Sprintf("invalid reference %q", e.Raw)
	}
}

func (e *RefParseError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return errors.ErrInvalidInput
}
