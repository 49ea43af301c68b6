package httpx

import "github.com/questline/pricing-planner/pkg/logger"

// Option configures a LoggingRoundTripper.
type Option func(*LoggingRoundTripper)

// WithLogFieldMaxLen truncates dumped requests and responses to n bytes.
// Zero disables truncation.
func WithLogFieldMaxLen(n int) Option {
	return func(rt *LoggingRoundTripper) {
		rt.logFieldMaxLen = n
	}
}

// WithSensitiveDataMasker masks dumps before they are logged.
func WithSensitiveDataMasker(m SensitiveDataMasker) Option {
	return func(rt *LoggingRoundTripper) {
		if m != nil {
			rt.masker = m
		}
	}
}

// WithLogger overrides the logger. The default is logger.Named("httpx"),
// which requires logger.Init to have run.
func WithLogger(l logger.Logger) Option {
	return func(rt *LoggingRoundTripper) {
		rt.log = l
	}
}
