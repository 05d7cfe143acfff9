package runner

import (
	"bytes"
	"io"
)

// lineCapture is an io.Writer that splits whatever is written to it into
// complete lines, appending each to Lines as it completes, while also
// passing every byte straight through to Live (the caller's terminal) —
// the same capture-and-stream shape as an io.MultiWriter(buffer, stream)
// pair, with the buffer peeled into complete lines as they arrive instead
// of held as one blob.
type lineCapture struct {
	Live  io.Writer
	Lines []string
	buf   bytes.Buffer
}

func newLineCapture(live io.Writer) *lineCapture {
	return &lineCapture{Live: live}
}

func (l *lineCapture) Write(p []byte) (int, error) {
	if l.Live != nil {
		if _, err := l.Live.Write(p); err != nil {
			return 0, err
		}
	}
	n, err := l.buf.Write(p)
	if err != nil {
		return n, err
	}
	l.drainCompleteLines()
	return n, nil
}

func (l *lineCapture) drainCompleteLines() {
	for {
		line, err := l.buf.ReadString('\n')
		if len(line) == 0 {
			return
		}
		if err == io.EOF {
			// incomplete trailing line: put it back for the next Write/Close
			l.buf.WriteString(line)
			return
		}
		l.Lines = append(l.Lines, line[:len(line)-1])
	}
}

// Close flushes any trailing line that never ended in a newline.
func (l *lineCapture) Close() {
	if l.buf.Len() > 0 {
		l.Lines = append(l.Lines, l.buf.String())
		l.buf.Reset()
	}
}
