package easyinstall

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Prompter asks the operator yes/no questions.
type Prompter interface {
	Confirm(question string, defaultYes bool) bool
}

// linePrompter reads answers line by line.
type linePrompter struct {
	in  *bufio.Reader
	out io.Writer
}

// NewPrompter returns a Prompter reading answers from in and printing
// questions to out. A *bufio.Reader is used as is, so it can be shared.
func NewPrompter(in io.Reader, out io.Writer) Prompter {
	br, ok := in.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(in)
	}
	return &linePrompter{in: br, out: out}
}

// Confirm returns exactly what the operator answered: y/yes is true, n/no is
// false, an empty line is defaultYes. Anything else asks again. A read error
// (Ctrl+D) is taken as no.
func (p *linePrompter) Confirm(question string, defaultYes bool) bool {
	hint := "[y/N]"
	if defaultYes {
		hint = "[Y/n]"
	}
	for {
		fmt.Fprint(p.out, colNote.Sprint(fmt.Sprintf("%s %s ", question, hint)))
		response, err := p.in.ReadString('\n')
		answer := strings.ToLower(strings.TrimSpace(response))
		switch answer {
		case "y", "yes":
			return true
		case "n", "no":
			return false
		case "":
			if err != nil {
				return false
			}
			return defaultYes
		}
		if err != nil {
			return false
		}
		fmt.Fprintln(p.out, colWarn.Sprint("Invalid input."))
	}
}

// assumeYes answers every question with yes (--yes).
type assumeYes struct{}

func (assumeYes) Confirm(string, bool) bool { return true }
