package processors

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/leftmike/gcodeproc/gcode"
)

// PatternRemover removes the text matching a regular expression from each command. A pattern
// of the form s/<pattern>/<replacement> replaces the text instead; a replacement of the form
// %Name% is the contents of the macro Name. Without a replacement, s/<pattern> removes.
type PatternRemover struct {
	pattern     string
	re          *regexp.Regexp
	replacement string
	literal     bool
}

func NewPatternRemover(pattern string, macros map[string]string) (*PatternRemover, error) {
	pr := &PatternRemover{pattern: pattern}

	expr := pattern
	if rest, ok := strings.CutPrefix(pattern, "s/"); ok {
		expr = rest
		if i := strings.LastIndexByte(rest, '/'); i >= 0 {
			expr = rest[:i]
			pr.replacement = rest[i+1:]
		}
	}

	if len(pr.replacement) > 1 && pr.replacement[0] == '%' &&
		pr.replacement[len(pr.replacement)-1] == '%' {

		name := pr.replacement[1 : len(pr.replacement)-1]
		macro, ok := macros[name]
		if !ok {
			return nil, invalidArgument("unknown macro: %s", name)
		}
		pr.replacement = macro
		pr.literal = true
	}

	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, invalidArgument("pattern %q: %s", expr, err)
	}
	pr.re = re
	return pr, nil
}

func (pr *PatternRemover) Process(command string, state gcode.State) ([]string, error) {
	if pr.literal {
		return single(pr.re.ReplaceAllLiteralString(command, pr.replacement)), nil
	}
	return single(pr.re.ReplaceAllString(command, pr.replacement)), nil
}

func (pr *PatternRemover) Help() string {
	return fmt.Sprintf("Removes or replaces text matching %q.", pr.pattern)
}
