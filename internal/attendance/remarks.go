package attendance

import (
	"regexp"
	"strings"
)

// RemarksValidator decides whether a non-blank remarks cell is well formed
type RemarksValidator interface {
	Valid(remarks string) bool
}

// RemarksValidatorFunc adapts a function to RemarksValidator
type RemarksValidatorFunc func(remarks string) bool

// Valid implements RemarksValidator
func (f RemarksValidatorFunc) Valid(remarks string) bool {
	return f(remarks)
}

// bracketedReason matches "【reason】detail". The detail may itself be a
// bracketed segment, as in "【直行】【A社訪問】".
var bracketedReason = regexp.MustCompile(`(?s)^【([^【】]+)】(.+)$`)

// DefaultRemarksValidator accepts remarks that open with a non-empty
// bracketed reason followed by a non-empty detail
func DefaultRemarksValidator() RemarksValidator {
	return RemarksValidatorFunc(func(remarks string) bool {
		m := bracketedReason.FindStringSubmatch(strings.TrimSpace(remarks))
		if m == nil {
			return false
		}
		detail := strings.TrimSpace(m[2])
		if detail == "" {
			return false
		}
		// a bracketed detail must not be empty either
		if strings.HasPrefix(detail, "【") {
			inner := strings.TrimSuffix(strings.TrimPrefix(detail, "【"), "】")
			return strings.TrimSpace(inner) != ""
		}
		return true
	})
}

// PatternRemarksValidator accepts remarks matching any of the patterns
func PatternRemarksValidator(patterns ...*regexp.Regexp) RemarksValidator {
	return RemarksValidatorFunc(func(remarks string) bool {
		for _, p := range patterns {
			if p.MatchString(remarks) {
				return true
			}
		}
		return false
	})
}
