// Package args tokenizes command line arguments for the run surface and
// derives the initial variables of a command from leading flags.
package args

import (
	"strings"

	"github.com/specialistvlad/projectmanager/internal/node"
)

// Kind classifies a Token.
type Kind int

const (
	// Flag is a short or long flag without a value, e.g. --verbose.
	Flag Kind = iota + 1
	// Param is a flag with an attached value, e.g. --env=prod.
	Param
	// Constant is a value not attached to a flag.
	Constant
	// Terminator is "--": everything after it is a Constant.
	Terminator
)

const terminator = "--"

// Token is one classified argument.
type Token struct {
	Kind  Kind
	Name  string
	Value string
}

// Tokenize classifies args.
func Tokenize(args []string) []Token {
	tokens := make([]Token, 0, len(args))
	for i, arg := range args {
		if arg == terminator {
			tokens = append(tokens, Token{Kind: Terminator})
			for _, rest := range args[i+1:] {
				tokens = append(tokens, Token{Kind: Constant, Value: rest})
			}
			return tokens
		}
		tokens = append(tokens, classify(arg))
	}
	return tokens
}

func classify(arg string) Token {
	name, ok := strings.CutPrefix(arg, "--")
	if !ok {
		name, ok = strings.CutPrefix(arg, "-")
	}
	if !ok || name == "" || strings.HasPrefix(name, "=") {
		return Token{Kind: Constant, Value: arg}
	}
	if n, v, hasValue := strings.Cut(name, "="); hasValue {
		return Token{Kind: Param, Name: n, Value: v}
	}
	return Token{Kind: Flag, Name: name}
}

// InitialScope consumes the leading flags and params of tokens into initial
// variable values: a flag becomes true, a param its string value. It returns
// the values and the remaining tokens.
func InitialScope(tokens []Token) (*node.Mapping, []Token) {
	initial := node.NewMapping()
	for i, t := range tokens {
		switch t.Kind {
		case Flag:
			initial.Set(t.Name, node.Bool(true))
		case Param:
			initial.Set(t.Name, node.Str(t.Value))
		default:
			return initial, tokens[i:]
		}
	}
	return initial, nil
}
