package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// confirm prints the prompt and reads one line. Only the exact answer "yes"
// proceeds; anything else, including EOF, declines.
func confirm(in io.Reader, out io.Writer, prompt string) bool {
	fmt.Fprintf(out, "%s\nType 'yes' to continue: ", prompt)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	return strings.TrimSpace(line) == "yes"
}
