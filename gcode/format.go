package gcode

import (
	"math"
	"strconv"
	"strings"
)

// DefaultDecimals is the number of fraction digits used when generating commands.
const DefaultDecimals = 4

// FormatNumber rounds v to decimals fraction digits and drops trailing zeros.
func FormatNumber(v float64, decimals int) string {
	if decimals < 0 {
		decimals = -1
	}
	s := strconv.FormatFloat(v, 'f', decimals, 64)
	if strings.IndexByte(s, '.') >= 0 {
		s = strings.TrimRight(s, "0")
		s = strings.TrimSuffix(s, ".")
	}
	if s == "-0" {
		s = "0"
	}
	return s
}

// GenerateLineFromPoints returns a code moving from start to end: the absolute end point, or
// the distance from start when absolute is false. Unspecified axes are left out.
func GenerateLineFromPoints(code Code, start, end Position, absolute bool, decimals int) string {
	end = end.In(start.Units)

	axes := [...]struct {
		letter   byte
		from, to float64
	}{
		{'X', start.X, end.X},
		{'Y', start.Y, end.Y},
		{'Z', start.Z, end.Z},
		{'A', start.A, end.A},
		{'B', start.B, end.B},
		{'C', start.C, end.C},
	}

	var sb strings.Builder
	sb.WriteString(string(code))
	for _, axis := range axes {
		v := axis.to
		if !absolute {
			v -= axis.from
		}
		if math.IsNaN(v) {
			continue
		}
		sb.WriteByte(axis.letter)
		sb.WriteString(FormatNumber(v, decimals))
	}
	return sb.String()
}

// IsMotionWord reports whether w is a motion code or one of the axis and arc words used by it.
func IsMotionWord(w Word) bool {
	switch w.Letter {
	case 'X', 'Y', 'Z', 'A', 'B', 'C', 'I', 'J', 'K', 'R':
		return true
	case 'G':
		return LookupCode('G', strings.TrimPrefix(w.Number, "+")).Group() == MotionGroup
	}
	return false
}

// SplitMotion separates the motion code and its words from the rest of a line.
func SplitMotion(words []Word) (motion, rest []Word) {
	for _, w := range words {
		if IsMotionWord(w) {
			motion = append(motion, w)
		} else {
			rest = append(rest, w)
		}
	}
	return motion, rest
}

// ExtractMotion returns the motion words of command and the rest of the command, both without
// whitespace or comments.
func ExtractMotion(command string) (string, string, error) {
	words, err := ParseWords(command)
	if err != nil {
		return "", "", err
	}
	motion, rest := SplitMotion(words)
	return JoinWords(motion), JoinWords(rest), nil
}

// RemoveLetters returns the words which do not start with any of letters.
func RemoveLetters(words []Word, letters string) []Word {
	var ret []Word
	for _, w := range words {
		if strings.IndexByte(letters, w.Letter) < 0 {
			ret = append(ret, w)
		}
	}
	return ret
}

// FindWord returns the first word starting with letter.
func FindWord(words []Word, letter byte) (Word, bool) {
	for _, w := range words {
		if w.Letter == letter {
			return w, true
		}
	}
	return Word{}, false
}

// OverrideAxis replaces the value of an axis word in command, or appends the word if command
// does not have one.
func OverrideAxis(command string, letter byte, value float64, decimals int) (string, error) {
	words, err := ParseWords(command)
	if err != nil {
		return "", err
	}

	num := FormatNumber(value, decimals)
	var found bool
	for i := range words {
		if words[i].Letter == letter {
			words[i].Number = num
			words[i].Value = value
			found = true
		}
	}
	if !found {
		words = append(words, Word{Letter: letter, Number: num, Value: value})
	}
	return JoinWords(words), nil
}

// SplitCommand splits a line holding several commands into one line per command. A command
// starts at each G or M word, and at each S or T word which does not directly follow an M word.
func SplitCommand(command string) ([]string, error) {
	words, err := ParseWords(command)
	if err != nil {
		return nil, err
	}
	if len(words) == 0 {
		return []string{command}, nil
	}

	var ret []string
	var cur []Word
	for i, w := range words {
		split := w.Letter == 'G' || w.Letter == 'M'
		if (w.Letter == 'S' || w.Letter == 'T') && (i == 0 || words[i-1].Letter != 'M') {
			split = true
		}
		if split && len(cur) > 0 {
			ret = append(ret, JoinWords(cur))
			cur = nil
		}
		cur = append(cur, w)
	}
	return append(ret, JoinWords(cur)), nil
}

// NormalizeCommand returns command with the feed and spindle speed first, taken from state when
// command does not have them, then the motion with an explicit motion code, and then everything
// else.
func NormalizeCommand(command string, state State, decimals int) (string, error) {
	words, err := ParseWords(command)
	if err != nil {
		return "", err
	}

	feed := state.Feed
	if w, ok := FindWord(words, 'F'); ok {
		feed = w.Value
	}
	speed := state.SpindleSpeed
	if w, ok := FindWord(words, 'S'); ok {
		speed = w.Value
	}

	motion, rest := SplitMotion(words)
	if len(motion) > 0 && state.MotionMode != Unknown {
		if _, ok := FindWord(motion, 'G'); !ok {
			motion = append([]Word{{Letter: 'G', Number: string(state.MotionMode)[1:]}},
				motion...)
		}
	}

	return "F" + FormatNumber(feed, decimals) + "S" + FormatNumber(speed, decimals) +
		JoinWords(motion) + JoinWords(RemoveLetters(rest, "FS")), nil
}

// RemoveComment strips parenthesized comments, which may be nested, and anything following
// ; or %. Whitespace before a comment goes with it.
func RemoveComment(command string) string {
	out := make([]byte, 0, len(command))
	depth := 0
	for i := 0; i < len(command); i++ {
		b := command[i]
		if depth > 0 {
			if b == '(' {
				depth += 1
			} else if b == ')' {
				depth -= 1
			}
			continue
		}

		if b == '(' {
			out = trimRightSpace(out)
			depth = 1
		} else if b == ';' || b == '%' {
			out = trimRightSpace(out)
			break
		} else {
			out = append(out, b)
		}
	}
	return strings.TrimSpace(string(out))
}

// ParseComment returns the text of the comments in command.
func ParseComment(command string) string {
	var comments []string
	var cur []byte
	depth := 0
	for i := 0; i < len(command); i++ {
		b := command[i]
		if depth > 0 {
			if b == '(' {
				depth += 1
			} else if b == ')' {
				depth -= 1
				if depth == 0 {
					comments = append(comments, strings.TrimSpace(string(cur)))
					cur = cur[:0]
					continue
				}
			}
			cur = append(cur, b)
			continue
		}

		if b == '(' {
			depth = 1
		} else if b == ';' || b == '%' {
			comments = append(comments, strings.TrimSpace(command[i+1:]))
			break
		}
	}
	if depth > 0 {
		comments = append(comments, strings.TrimSpace(string(cur)))
	}
	return strings.Join(comments, " ")
}

func trimRightSpace(b []byte) []byte {
	for len(b) > 0 && (b[len(b)-1] == ' ' || b[len(b)-1] == '\t') {
		b = b[:len(b)-1]
	}
	return b
}
