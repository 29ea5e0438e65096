package section

import "github.com/cockroachdb/errors"

var (
	ErrInvalidInfo    = errors.New("section: invalid info record")
	ErrInvalidFields  = errors.New("section: invalid field list")
	ErrTooManyFields  = errors.New("section: too many fields")
	ErrInvalidLexicon = errors.New("section: invalid lexicon")
	ErrInvalidOffsets = errors.New("section: invalid trail offsets")
	ErrInvalidCookies = errors.New("section: invalid identifier table")
)
