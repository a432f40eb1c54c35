package logging

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"sync"
	"time"
)

var (
	Stream  io.Writer = os.Stderr
	Verbose bool

	mu   sync.Mutex
	prev io.Writer // value of Stream in the previous write
)

var lineRE = regexp.MustCompile("(?m)^")

func write(line string) {
	var timestamp string
	if prev != Stream {
		// first message on a stream carries the time zone
		timestamp = time.Now().Format("2006-01-02T15:04:05.000Z07:00")
		prev = Stream
	} else {
		timestamp = time.Now().Format("2006-01-02T15:04:05.000")
	}
	if len(line) > 0 && line[len(line)-1] == '\n' {
		line = line[:len(line)-1]
	}
	fmt.Fprintln(Stream, timestamp+" "+line)
}

func emit(prefix, msg string) {
	if len(msg) > 0 && msg[len(msg)-1] == '\n' {
		msg = msg[:len(msg)-1]
	}
	mu.Lock()
	defer mu.Unlock()
	for _, line := range lineRE.Split(msg, -1) {
		write(prefix + line)
	}
}

type LogContext struct {
	Prefix string
}

func (l LogContext) Println(args ...interface{}) {
	emit(l.Prefix, fmt.Sprintln(args...))
}

func (l LogContext) Printf(format string, args ...interface{}) {
	emit(l.Prefix, fmt.Sprintf(format, args...))
}

// Debugf only writes when Verbose is set.
func (l LogContext) Debugf(format string, args ...interface{}) {
	if !Verbose {
		return
	}
	emit(l.Prefix, fmt.Sprintf(format, args...))
}

var Layout = LogContext{"LAYOUT "}
var Export = LogContext{"EXPORT "}
var MIDI = LogContext{"  MIDI "}
var HTTP = LogContext{"  HTTP "}
var Files = LogContext{" FILES "}

func Printf(format string, args ...interface{}) {
	LogContext{}.Printf(format, args...)
}

func Println(args ...interface{}) {
	LogContext{}.Println(args...)
}
