package common

import (
	"io"
	"os"
	"path/filepath"

	"github.com/inconshreveable/log15"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

// LogHandler writes logfmt records at lvl and above to a rotating file.
func LogHandler(path, filename, lvl string) log15.Handler {
	logLevel, err := log15.LvlFromString(lvl)
	if err != nil {
		logLevel = log15.LvlInfo
	}
	out := MakeDefaultLogger(filepath.Join(path, filename))
	return log15.LvlFilterHandler(logLevel, log15.StreamHandler(out, log15.LogfmtFormat()))
}

// TerminalHandler writes to stderr, colored when stderr is a terminal.
func TerminalHandler(stderr *os.File, lvl string) log15.Handler {
	logLevel, err := log15.LvlFromString(lvl)
	if err != nil {
		logLevel = log15.LvlInfo
	}
	var out io.Writer = stderr
	format := log15.LogfmtFormat()
	if isatty.IsTerminal(stderr.Fd()) {
		out = colorable.NewColorable(stderr)
		format = log15.TerminalFormat()
	}
	return log15.LvlFilterHandler(logLevel, log15.StreamHandler(out, format))
}
