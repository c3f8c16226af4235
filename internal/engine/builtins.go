package engine

import (
	"fmt"
	"os"
)

// builtinCd changes the working directory. With no argument it targets
// the home directory; a failed chdir there stays silent. An explicit
// target that cannot be entered is reported and recorded as a failure.
func (s *Shell) builtinCd(tokens []string) {
	if len(tokens) < 2 {
		home, err := os.UserHomeDir()
		if err != nil {
			return
		}
		_ = os.Chdir(home)
		return
	}

	path := tokens[1]
	if err := os.Chdir(path); err != nil {
		fmt.Fprintf(s.out, "cd: %s: No such file or directory\n", path)
		s.status.RecordFailure()
	}
}

// builtinStatus reports how the last foreground command ended.
func (s *Shell) builtinStatus() {
	fmt.Fprintln(s.out, s.status.Outcome().String())
}

// builtinExit kills all background jobs and ends the interpreter loop.
func (s *Shell) builtinExit() {
	s.shutdown()
	s.exited = true
}
