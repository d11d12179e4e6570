// Package input decodes terminal input into field events.
package input

import (
	"bufio"
	"strconv"
)

// maxPending bounds how many bytes of an unfinished escape sequence are kept
// between reads. Anything longer is garbage and dropped.
const maxPending = 32

// EventType identifies a decoded input event.
type EventType int

const (
	EventPointerMove   EventType = iota // Mouse report with a cell position
	EventPointerLeave                   // Terminal lost focus
	EventQuit                           // q, Q or Ctrl-C
	EventToggleTheme                    // t or T
	EventToggleMotion                   // m or M
)

// Event is a decoded input event. Col and Row are 1-based terminal cells and
// only set for EventPointerMove.
type Event struct {
	Type     EventType
	Col, Row int
}

// Stream delivers input bytes via a channel.
type Stream struct {
	ch     chan byte
	parser Parser
	closed bool
}

// StartStream spawns a goroutine that reads from r and sends bytes to the stream.
func StartStream(r *bufio.Reader) *Stream {
	s := &Stream{
		ch: make(chan byte, 256),
	}
	go func() {
		for {
			b, err := r.ReadByte()
			if err != nil {
				close(s.ch)
				return
			}
			s.ch <- b
		}
	}()
	return s
}

// Closed reports whether the underlying reader hit EOF or an error.
func (s *Stream) Closed() bool {
	return s.closed
}

// ReadEvents drains all available bytes from the stream (non-blocking) and
// decodes them. Escape sequences split across reads are completed on a
// later call.
func ReadEvents(s *Stream) []Event {
	var buf []byte

	// Drain all available bytes
drain:
	for {
		select {
		case b, ok := <-s.ch:
			if !ok {
				s.closed = true
				break drain
			}
			buf = append(buf, b)
		default:
			break drain
		}
	}

	return s.parser.Feed(buf)
}

// Parser decodes a byte stream into events, keeping incomplete escape
// sequences until more bytes arrive.
type Parser struct {
	pending []byte
}

// Feed decodes b, prefixed with whatever was left over from the last call.
func (p *Parser) Feed(b []byte) []Event {
	buf := append(p.pending, b...)
	p.pending = nil

	var events []Event
	for i := 0; i < len(buf); {
		ev, n, ok := decode(buf[i:])
		if n == 0 {
			// Incomplete sequence: keep it for the next call
			if rest := buf[i:]; len(rest) <= maxPending {
				p.pending = append([]byte(nil), rest...)
			}
			break
		}
		if ok {
			events = append(events, ev)
		}
		i += n
	}
	return events
}

// decode reads one token from buf. It returns the number of bytes consumed,
// 0 when buf holds an unfinished escape sequence, and ok when the token maps
// to an event.
func decode(buf []byte) (ev Event, n int, ok bool) {
	b := buf[0]
	if b != '\x1b' {
		return decodeKey(b)
	}

	if len(buf) < 2 {
		return Event{}, 0, false
	}
	if buf[1] != '[' {
		// Alt-modified key or stray escape
		return Event{}, 1, false
	}
	if len(buf) < 3 {
		return Event{}, 0, false
	}

	switch buf[2] {
	case 'O': // Focus out
		return Event{Type: EventPointerLeave}, 3, true
	case 'I': // Focus in
		return Event{}, 3, false
	case '<':
		return decodeSGRMouse(buf)
	}

	// Other CSI sequences (arrows etc.): skip to the final byte
	for i := 2; i < len(buf); i++ {
		if buf[i] >= 0x40 && buf[i] <= 0x7e {
			return Event{}, i + 1, false
		}
	}
	return Event{}, 0, false
}

func decodeKey(b byte) (Event, int, bool) {
	switch b {
	case 'q', 'Q', '\x03':
		return Event{Type: EventQuit}, 1, true
	case 't', 'T':
		return Event{Type: EventToggleTheme}, 1, true
	case 'm', 'M':
		return Event{Type: EventToggleMotion}, 1, true
	}
	return Event{}, 1, false
}

// decodeSGRMouse decodes ESC [ < button ; col ; row (M|m). Every report,
// whether motion, press, release or wheel, carries the pointer position.
func decodeSGRMouse(buf []byte) (Event, int, bool) {
	end := -1
	for i := 3; i < len(buf); i++ {
		if buf[i] == 'M' || buf[i] == 'm' {
			end = i
			break
		}
		if (buf[i] < '0' || buf[i] > '9') && buf[i] != ';' {
			// Malformed: drop the introducer and resync
			return Event{}, 3, false
		}
	}
	if end < 0 {
		return Event{}, 0, false
	}

	fields := splitParams(buf[3:end])
	if len(fields) != 3 {
		return Event{}, end + 1, false
	}
	col, err1 := strconv.Atoi(fields[1])
	row, err2 := strconv.Atoi(fields[2])
	if err1 != nil || err2 != nil {
		return Event{}, end + 1, false
	}
	return Event{Type: EventPointerMove, Col: col, Row: row}, end + 1, true
}

func splitParams(b []byte) []string {
	var out []string
	start := 0
	for i := 0; i <= len(b); i++ {
		if i == len(b) || b[i] == ';' {
			out = append(out, string(b[start:i]))
			start = i + 1
		}
	}
	return out
}
