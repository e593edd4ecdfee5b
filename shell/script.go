package shell

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/PapiCZ/kiv_tfs/vfs"
	"github.com/kballard/go-shellquote"
)

// Execute runs one command line that has already been split into
// words.
func Execute(fs *vfs.Filesystem, out io.Writer, words []string) error {
	if len(words) == 0 {
		return nil
	}

	for _, cmd := range Commands {
		if cmd.Name == words[0] {
			cmd.invoke(fs, out, words[1:])
			return nil
		}
	}
	return fmt.Errorf("unknown command %q", words[0])
}

// RunScript executes a command per line of r. Empty lines and lines
// starting with # are skipped. Each command is echoed before its
// output. The script stops at the first line that cannot be parsed or
// names an unknown command.
func RunScript(fs *vfs.Filesystem, out io.Writer, r io.Reader) error {
	scanner := bufio.NewScanner(r)
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := strings.TrimSpace(scanner.Text())
		if len(line) == 0 || strings.HasPrefix(line, "#") {
			continue
		}

		words, err := shellquote.Split(line)
		if err != nil {
			return fmt.Errorf("line %d: %w", lineNumber, err)
		}
		fmt.Fprintln(out, line)
		if err := Execute(fs, out, words); err != nil {
			return fmt.Errorf("line %d: %w", lineNumber, err)
		}
	}
	return scanner.Err()
}
