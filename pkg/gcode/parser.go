package gcode

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
)

// Parse errors. A *ParseError wraps one of these.
var (
	ErrArcMissingParams = errors.New("arc requires center offsets (I/J/K) or radius (R)")
	ErrBadNumber        = errors.New("malformed number")
	ErrDegenerateArc    = errors.New("radius arc with coincident endpoints")
)

// ParseError identifies the source line a parse failed on.
type ParseError struct {
	Line int    // 0-based line index
	Text string // Raw line text
	Err  error
}

// Error reports the 1-based line number, the cause and the line text.
func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %v: %q", e.Line+1, e.Err, e.Text)
}

// Unwrap returns the underlying sentinel error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// auxAxes are the auxiliary single-letter axes carried as data.
const auxAxes = "ABCUVW"

// word is one letter/number pair of a block.
type word struct {
	letter byte
	value  float64
}

// group is a motion mode token and the axis/arc words it owns.
type group struct {
	mode    Mode
	hasMode bool
	words   []word
}

// parser holds modal state across lines.
type parser struct {
	mode        Mode
	plane       Plane
	incremental bool
	units       Units

	pos        mgl64.Vec3
	feed       float64
	hasFeed    bool
	spindle    float64
	hasSpindle bool
	aux        map[byte]float64

	tp *Toolpath
}

// Parse converts toolpath text into a Toolpath. Processing is single pass and
// line oriented. On failure no Toolpath is returned.
func Parse(text string) (*Toolpath, error) {
	p := &parser{
		mode: Rapid,
		tp:   &Toolpath{},
	}

	lineIdx := 0
	for rest := text; len(rest) > 0; lineIdx++ {
		line := rest
		if i := strings.IndexByte(rest, '\n'); i >= 0 {
			line, rest = rest[:i], rest[i+1:]
		} else {
			rest = ""
		}
		if err := p.parseLine(lineIdx, strings.TrimSuffix(line, "\r")); err != nil {
			return nil, err
		}
	}

	p.tp.LineCount = lineIdx
	p.tp.Units = p.units
	return p.tp, nil
}

// parseLine processes one block of the program.
func (p *parser) parseLine(idx int, raw string) error {
	line := strings.TrimSpace(stripComments(raw))
	if line == "" || line[0] == '%' {
		return nil
	}

	words, err := scanWords(line)
	if err != nil {
		return &ParseError{Line: idx, Text: raw, Err: err}
	}
	if len(words) > 0 && words[0].letter == 'N' {
		words = words[1:]
	}

	// Modal settings apply to every motion on the line.
	var groups []group
	var leading []word
	for _, w := range words {
		switch w.letter {
		case 'G':
			if m, ok := motionMode(w.value); ok {
				groups = append(groups, group{mode: m, hasMode: true})
				continue
			}
			p.applyGCode(w.value)
		case 'F':
			p.feed, p.hasFeed = w.value, true
		case 'S':
			p.spindle, p.hasSpindle = w.value, true
		case 'X', 'Y', 'Z', 'I', 'J', 'K', 'R', 'A', 'B', 'C', 'U', 'V', 'W':
			if len(groups) == 0 {
				leading = append(leading, w)
			} else {
				g := &groups[len(groups)-1]
				g.words = append(g.words, w)
			}
		}
	}

	if len(groups) == 0 {
		groups = append(groups, group{mode: p.mode})
	}
	groups[0].words = append(leading, groups[0].words...)

	for _, g := range groups {
		if g.hasMode {
			p.mode = g.mode
		}
		if err := p.emit(idx, p.mode, g.words); err != nil {
			return &ParseError{Line: idx, Text: raw, Err: err}
		}
	}
	return nil
}

// applyGCode updates modal state for non-motion G codes that affect geometry.
func (p *parser) applyGCode(v float64) {
	switch v {
	case 17:
		p.plane = PlaneXY
	case 18:
		p.plane = PlaneXZ
	case 19:
		p.plane = PlaneYZ
	case 20:
		p.units = Inches
	case 21:
		p.units = Millimeters
	case 90:
		p.incremental = false
	case 91:
		p.incremental = true
	}
}

// emit appends the segment described by a motion group, if it moves.
func (p *parser) emit(idx int, mode Mode, words []word) error {
	target := p.pos
	var offset [3]float64
	var hasOffset [3]bool
	var radius float64
	var hasRadius, hasAxis bool
	var auxChanged map[byte]float64

	for _, w := range words {
		switch w.letter {
		case 'X', 'Y', 'Z':
			axis := int(w.letter - 'X')
			if p.incremental {
				target[axis] += w.value
			} else {
				target[axis] = w.value
			}
			hasAxis = true
		case 'I', 'J', 'K':
			axis := int(w.letter - 'I')
			offset[axis], hasOffset[axis] = w.value, true
		case 'R':
			radius, hasRadius = w.value, true
		default:
			if auxChanged == nil {
				auxChanged = make(map[byte]float64, len(p.aux)+1)
			}
			auxChanged[w.letter] = w.value
			hasAxis = true
		}
	}

	var arc *ArcParams
	if mode.IsArc() {
		alpha, beta, _ := p.plane.Axes()
		arc = &ArcParams{Plane: p.plane}
		// One in-plane offset is enough; the missing one is zero.
		if hasOffset[alpha] || hasOffset[beta] {
			arc.Offset = [2]float64{offset[alpha], offset[beta]}
			arc.HasOffset = true
		} else if hasRadius {
			arc.Radius = radius
			arc.HasRadius = true
		}

		if !hasAxis && !arc.HasOffset && !hasRadius {
			// Bare G2/G3 only changes the modal mode.
			return nil
		}
		if !arc.HasOffset && !arc.HasRadius {
			return ErrArcMissingParams
		}
		if arc.HasRadius && target == p.pos {
			return ErrDegenerateArc
		}
	} else if !hasAxis {
		return nil
	}

	if auxChanged != nil {
		for k, v := range p.aux {
			if _, ok := auxChanged[k]; !ok {
				auxChanged[k] = v
			}
		}
		if p.incremental {
			for k := range auxChanged {
				if prev, ok := p.aux[k]; ok && hasWord(words, k) {
					auxChanged[k] = prev + auxChanged[k]
				}
			}
		}
		p.aux = auxChanged
	}

	seg := Segment{
		Start:      p.pos,
		End:        target,
		Mode:       mode,
		Arc:        arc,
		Line:       idx,
		Feed:       p.feed,
		HasFeed:    p.hasFeed,
		Spindle:    p.spindle,
		HasSpindle: p.hasSpindle,
		Aux:        p.aux,
	}

	tp := p.tp
	if len(tp.Segments) == 0 {
		tp.Bounds.extend(seg.Start)
	}
	tp.Bounds.extend(seg.End)
	tp.Segments = append(tp.Segments, seg)
	tp.LineMap = append(tp.LineMap, idx)
	tp.Counts[mode]++

	p.pos = target
	return nil
}

func hasWord(words []word, letter byte) bool {
	for _, w := range words {
		if w.letter == letter {
			return true
		}
	}
	return false
}

// motionMode maps a G value to a motion mode.
func motionMode(v float64) (Mode, bool) {
	switch v {
	case 0:
		return Rapid, true
	case 1:
		return Linear, true
	case 2:
		return ArcCW, true
	case 3:
		return ArcCCW, true
	}
	return 0, false
}

// stripComments removes parenthesized and semicolon comments.
func stripComments(s string) string {
	if strings.IndexAny(s, "(;") < 0 {
		return s
	}
	var b strings.Builder
	depth := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == ';' && depth == 0:
			return b.String()
		case c == '(':
			depth++
		case c == ')' && depth > 0:
			depth--
		case depth == 0:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// scanWords splits a block into letter/number words. Words with letters that
// carry no motion meaning are skipped when their value does not parse.
func scanWords(line string) ([]word, error) {
	words := make([]word, 0, 8)
	i := 0
	for i < len(line) {
		c := line[i]
		if c == ' ' || c == '\t' {
			i++
			continue
		}
		if !isLetter(c) {
			i = skipToken(line, i)
			continue
		}
		letter := upper(c)
		i++
		for i < len(line) && (line[i] == ' ' || line[i] == '\t') {
			i++
		}
		start := i
		for i < len(line) && isNumberChar(line[i]) {
			i++
		}
		num := line[start:i]
		v, err := strconv.ParseFloat(num, 64)
		if err != nil {
			if isMotionLetter(letter) {
				return nil, fmt.Errorf("%w %q for %c", ErrBadNumber, num, letter)
			}
			i = skipToken(line, i)
			continue
		}
		words = append(words, word{letter: letter, value: v})
	}
	return words, nil
}

func skipToken(line string, i int) int {
	for i < len(line) && line[i] != ' ' && line[i] != '\t' {
		i++
	}
	return i
}

func isLetter(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}

func upper(c byte) byte {
	if c >= 'a' && c <= 'z' {
		return c - 'a' + 'A'
	}
	return c
}

func isNumberChar(c byte) bool {
	return (c >= '0' && c <= '9') || c == '.' || c == '-' || c == '+'
}

func isMotionLetter(c byte) bool {
	return strings.IndexByte("GXYZIJKRFS", c) >= 0 || strings.IndexByte(auxAxes, c) >= 0
}
