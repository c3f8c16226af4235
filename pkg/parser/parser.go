// Package parser turns raw input lines into launch directives
package parser

import (
	"fmt"
	"strings"

	"github.com/babysh/babysh/pkg/types"
	"github.com/google/uuid"
)

// Reserved control tokens. They are metadata for the shell and are never
// forwarded to the executed program.
const (
	tokenInput      = "<"
	tokenOutput     = ">"
	tokenBackground = "&"

	commentPrefix = "#"
)

// redirectTargetIndex is the fixed argument position the redirection target
// is read from. The grammar supports exactly one leading command name plus
// at most one argument before the operator; commands with more leading
// words before `<` or `>` are outside the supported grammar.
const redirectTargetIndex = 2

// ErrMissingRedirectTarget is returned when a redirection operator appears
// without a token at the target position.
var ErrMissingRedirectTarget = fmt.Errorf("missing redirection target")

// ErrMissingCommand is returned when the line holds only control tokens,
// leaving no program to run.
var ErrMissingCommand = fmt.Errorf("missing command")

// Tokenize splits a line into whitespace-delimited tokens. There is no
// quoting or escaping grammar.
func Tokenize(line string) []string {
	return strings.Fields(line)
}

// IsNoOp reports whether tokens represent a blank line or a comment.
// Neither runs anything nor touches any shell state.
func IsNoOp(tokens []string) bool {
	return len(tokens) == 0 || strings.HasPrefix(tokens[0], commentPrefix)
}

// Resolve scans the token vector once, classifies it, and produces an
// immutable launch directive. It has no side effects and opens no files.
// Blank lines and comments resolve to a nil directive.
func Resolve(tokens []string) (*types.LaunchDirective, error) {
	if IsNoOp(tokens) {
		return nil, nil
	}

	// A line of nothing but control tokens has no program to run. This
	// must fail here: an empty argv cannot be handed to the launcher.
	words := stripBackground(tokens)
	if len(words) == 0 {
		return nil, ErrMissingCommand
	}

	redirection := types.Redirection{Kind: types.RedirectionNone}
	background := false

	for _, tok := range tokens {
		switch tok {
		case tokenBackground:
			background = true
		case tokenInput:
			redirection.Kind = types.RedirectionInput
		case tokenOutput:
			redirection.Kind = types.RedirectionOutput
		}
	}

	if redirection.Kind != types.RedirectionNone {
		// The target occupies the fixed position in the raw vector, not
		// necessarily the token after the operator.
		if len(tokens) <= redirectTargetIndex {
			return nil, ErrMissingRedirectTarget
		}
		redirection.Path = tokens[redirectTargetIndex]
	}

	directive := &types.LaunchDirective{
		ID:          uuid.New().String(),
		Program:     tokens[0],
		Redirection: redirection,
		Background:  background,
	}

	if redirection.Kind != types.RedirectionNone {
		// With a redirection in play the program receives no arguments
		// beyond its own name.
		directive.Argv = []string{tokens[0]}
	} else {
		directive.Argv = words
	}

	return directive, nil
}

func stripBackground(tokens []string) []string {
	argv := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if tok == tokenBackground {
			continue
		}
		argv = append(argv, tok)
	}
	return argv
}
