package httpx

import "regexp"

// SensitiveDataMasker rewrites a dump before it reaches the log.
type SensitiveDataMasker interface {
	Mask(input []byte) []byte
}

// MaskerFunc adapts a function to SensitiveDataMasker.
type MaskerFunc func([]byte) []byte

// Mask calls f.
func (f MaskerFunc) Mask(input []byte) []byte { return f(input) }

// NopMasker logs dumps unchanged.
type NopMasker struct{}

// Mask returns input as is.
func (NopMasker) Mask(input []byte) []byte { return input }

//nolint:gochecknoglobals // compiled once
var sensitiveHeaderPatterns = []*regexp.Regexp{
	regexp.MustCompile("(?i)(Authorization: )[^\r\n]+"),
	regexp.MustCompile("(?i)(X-Api-Key: )[^\r\n]+"),
	regexp.MustCompile("(?i)(Cookie: )[^\r\n]+"),
}

// HeaderMasker hides credentials carried in request headers.
type HeaderMasker struct{}

// Mask replaces sensitive header values with [MASKED].
func (HeaderMasker) Mask(input []byte) []byte {
	for _, p := range sensitiveHeaderPatterns {
		input = p.ReplaceAll(input, []byte("${1}[MASKED]"))
	}
	return input
}
