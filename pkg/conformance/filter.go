package conformance

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	log "github.com/sirupsen/logrus"
)

// Pattern selects cases by ID ("file/name"). A leading ! turns it into an
// exclusion.
type Pattern struct {
	Pattern  string
	Negative bool
	Regex    *regexp.Regexp
}

// CompilePattern parses a glob where * stops at a slash, ** does not, ?
// matches one character and [a-z] is a class.
func CompilePattern(raw string) (*Pattern, error) {
	negative := strings.HasPrefix(raw, "!")
	pattern := strings.TrimPrefix(raw, "!")
	expr, err := globToRegex(pattern)
	if err != nil {
		return nil, err
	}
	regex, err := regexp.Compile(expr)
	if err != nil {
		return nil, err
	}
	return &Pattern{Pattern: pattern, Negative: negative, Regex: regex}, nil
}

type patternError struct {
	pos int
	msg string
}

//nolint:gocyclo
func globToRegex(pattern string) (string, error) {
	var b strings.Builder
	var errs []patternError
	b.WriteString("^")

	inRange := func(lo, hi, c byte) bool { return c >= lo && c <= hi }
	classChar := func(c byte) bool { return inRange('A', 'z', c) || inRange('0', '9', c) || c == '-' || c == '_' }

	pos := 0
	for pos < len(pattern) {
		switch c := pattern[pos]; c {
		case '*':
			if pos+1 < len(pattern) && pattern[pos+1] == '*' {
				b.WriteString(".*")
				pos += 2
			} else {
				b.WriteString("[^/]*")
				pos++
			}
		case '?':
			b.WriteString("[^/]")
			pos++
		case '[':
			pos++
			if pos < len(pattern) && pattern[pos] == ']' {
				errs = append(errs, patternError{pos, "unexpected empty brackets '[]'"})
				pos++
				break
			}
			b.WriteByte('[')
			if pos < len(pattern) && pattern[pos] == '!' {
				b.WriteByte('^')
				pos++
			}
			for pos < len(pattern) && pattern[pos] != ']' {
				if !classChar(pattern[pos]) {
					errs = append(errs, patternError{pos, "classes can only hold letters, digits, '-' and '_'"})
				} else {
					b.WriteString(regexp.QuoteMeta(pattern[pos : pos+1]))
				}
				pos++
			}
			if pos >= len(pattern) {
				errs = append(errs, patternError{pos, "missing closing bracket ']' after '['"})
			}
			b.WriteByte(']')
			pos++
		case '\\':
			if pos+1 >= len(pattern) {
				errs = append(errs, patternError{pos, "missing symbol after \\"})
				pos++
				break
			}
			b.WriteString(regexp.QuoteMeta(pattern[pos+1 : pos+2]))
			pos += 2
		default:
			b.WriteString(regexp.QuoteMeta(pattern[pos : pos+1]))
			pos++
		}
	}
	if len(errs) > 0 {
		sort.Slice(errs, func(i, j int) bool { return errs[i].pos < errs[j].pos })
		msgs := make([]string, 0, len(errs))
		for _, e := range errs {
			msgs = append(msgs, fmt.Sprintf("position %d: %s", e.pos, e.msg))
		}
		return "", fmt.Errorf("invalid pattern '%s': %s", pattern, strings.Join(msgs, ", "))
	}
	b.WriteString("$")
	return b.String(), nil
}

// Filter is an ordered list of patterns. The last pattern matching an ID
// decides; an ID no pattern matches is selected only when every pattern is
// an exclusion.
type Filter struct {
	patterns []*Pattern
	logger   log.FieldLogger
}

func NewFilter(logger log.FieldLogger, patterns ...string) (*Filter, error) {
	f := &Filter{logger: logger}
	if f.logger == nil {
		f.logger = log.StandardLogger()
	}
	for _, raw := range patterns {
		p, err := CompilePattern(raw)
		if err != nil {
			return nil, err
		}
		f.patterns = append(f.patterns, p)
	}
	return f, nil
}

func (f *Filter) Match(id string) bool {
	if f == nil || len(f.patterns) == 0 {
		return true
	}
	selected := true
	for _, p := range f.patterns {
		if !p.Negative {
			selected = false
			break
		}
	}
	for _, p := range f.patterns {
		if p.Regex.MatchString(id) {
			selected = !p.Negative
			if p.Negative {
				f.logger.Debugf("%s excluded by pattern %s", id, p.Pattern)
			} else {
				f.logger.Debugf("%s included by pattern %s", id, p.Pattern)
			}
		}
	}
	return selected
}

// Select keeps the tests f matches, in order
func (f *Filter) Select(tests []LoadedTest) []LoadedTest {
	selected := make([]LoadedTest, 0, len(tests))
	for _, t := range tests {
		if f.Match(t.ID()) {
			selected = append(selected, t)
		}
	}
	return selected
}
