package gcode

import (
	"fmt"
	"runtime"
	"strconv"
	"strings"
)

// Word is a letter followed by a number, such as G1 or X-1.5.
type Word struct {
	Letter byte
	Number string // as written, without whitespace
	Value  float64
}

func (w Word) String() string {
	return string(w.Letter) + w.Number
}

type lineParser struct {
	line  string
	pos   int
	words []Word
}

// ParseWords splits a line into words. Comments, whitespace, and a trailing checksum (*nnn)
// are skipped; letters are upcased. A line starting with $ is a controller command and has no
// words.
func ParseWords(line string) (words []Word, err error) {
	p := lineParser{line: line}

	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(runtime.Error); ok {
				panic(r)
			}
			err = r.(error)
			words = nil
		}
	}()

	p.parse()
	return p.words, nil
}

// JoinWords formats words without any whitespace between them.
func JoinWords(words []Word) string {
	var sb strings.Builder
	for _, w := range words {
		sb.WriteByte(w.Letter)
		sb.WriteString(w.Number)
	}
	return sb.String()
}

func (p *lineParser) error(msg string) {
	panic(&ParseError{Command: p.line, Reason: fmt.Sprintf("column %d: %s", p.pos, msg)})
}

// readByte returns 0 at the end of the line.
func (p *lineParser) readByte() byte {
	if p.pos >= len(p.line) {
		p.pos += 1
		return 0
	}
	b := p.line[p.pos]
	p.pos += 1
	return b
}

func (p *lineParser) unreadByte() {
	p.pos -= 1
}

func (p *lineParser) skipWhitespace() {
	for {
		b := p.readByte()
		if b != ' ' && b != '\t' && b != '\r' && b != '\n' {
			break
		}
	}
	p.unreadByte()
}

func (p *lineParser) parseNumber() (string, float64) {
	start := p.pos

	b := p.readByte()
	if b != '-' && b != '+' {
		p.unreadByte()
	}

	var cnt int
	for {
		b := p.readByte()
		if b >= '0' && b <= '9' {
			cnt += 1
		} else if b == '.' {
			for {
				b := p.readByte()
				if b >= '0' && b <= '9' {
					cnt += 1
				} else {
					break
				}
			}
			break
		} else {
			break
		}
	}
	p.unreadByte()

	if cnt == 0 {
		p.error("expected a number")
	}

	s := p.line[start:p.pos]
	val, err := strconv.ParseFloat(s, 64)
	if err != nil {
		p.error(err.Error())
	}
	return s, val
}

func (p *lineParser) skipComment() {
	depth := 1
	for depth > 0 {
		switch p.readByte() {
		case 0:
			p.error("unterminated comment")
		case '(':
			depth += 1
		case ')':
			depth -= 1
		}
	}
}

func (p *lineParser) wantInteger() {
	var cnt int
	for {
		b := p.readByte()
		if b < '0' || b > '9' {
			break
		}
		cnt += 1
	}
	p.unreadByte()

	if cnt == 0 {
		p.error("expected a number")
	}
}

func (p *lineParser) parse() {
	var sawChecksum bool
	for {
		p.skipWhitespace()
		b := upcaseByte(p.readByte())

		if b == 0 || b == ';' || b == '%' {
			return
		} else if b == '(' {
			p.skipComment()
		} else if b == '$' && len(p.words) == 0 && !sawChecksum {
			p.words = nil
			return
		} else if b == '*' {
			// Parse and ignore *nnn; check it is the last word on the line.

			p.wantInteger()
			sawChecksum = true
		} else if b < 'A' || b > 'Z' {
			p.unreadByte()
			p.error(fmt.Sprintf("unexpected character: %q", p.line[p.pos]))
		} else {
			if sawChecksum {
				p.error("checksum (*nnn) must be at end of line")
			}

			p.skipWhitespace()
			s, val := p.parseNumber()
			p.words = append(p.words, Word{Letter: b, Number: s, Value: val})
		}
	}
}

func upcaseByte(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return (b - 'a') + 'A'
	}
	return b
}
