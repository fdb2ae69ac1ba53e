package verbose

import (
	"io"
	"os"

	"golang.org/x/term"
)

// terminalWidth reports the column count of out when it is a terminal
func terminalWidth(out io.Writer) (int, bool) {
	f, ok := out.(*os.File)
	if !ok {
		return 0, false
	}
	fd := int(f.Fd())
	if !term.IsTerminal(fd) {
		return 0, false
	}
	w, _, err := term.GetSize(fd)
	if err != nil {
		return 0, false
	}
	return w, true
}
