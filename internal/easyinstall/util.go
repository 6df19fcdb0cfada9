package easyinstall

import (
	"fmt"
	"io"
	"os/exec"
	"strings"
)

// colorPrinter is satisfied by gookit's *color.Style and *color.Theme.
type colorPrinter interface {
	Printf(format string, a ...any)
	Println(a ...any)
}

// sprinter colours text for writers other than stdout.
type sprinter interface {
	Sprint(a ...any) string
}

// plainPrinter writes uncoloured text to stdout.
type plainPrinter struct{}

func (plainPrinter) Printf(format string, a ...any) { fmt.Printf(format, a...) }
func (plainPrinter) Println(a ...any)               { fmt.Println(a...) }

func printerOrPlain(p colorPrinter) colorPrinter {
	if p == nil {
		return plainPrinter{}
	}
	return p
}

func cPrintf(p colorPrinter, format string, a ...any) {
	printerOrPlain(p).Printf(format, a...)
}

func cPrintln(p colorPrinter, a ...any) {
	printerOrPlain(p).Println(a...)
}

// fprintStyled writes one coloured line to w. A nil style writes the text unchanged.
func fprintStyled(w io.Writer, s sprinter, text string) {
	if s == nil {
		fmt.Fprintln(w, text)
		return
	}
	fmt.Fprintln(w, s.Sprint(text))
}

// arrow prints a "-> message" progress line.
func arrow(format string, a ...any) {
	colArrow.Print("-> ")
	colSuccess.Printf(format+"\n", a...)
}

// debugf is a no-op unless --debug or EASYINSTALL_DEBUG=1.
func debugf(format string, args ...any) {
	if !Debug {
		return
	}
	fmt.Printf(format, args...)
}

// LookPathFunc resolves a program on PATH. exec.LookPath satisfies it.
type LookPathFunc func(file string) (string, error)

func (f LookPathFunc) has(name string) bool {
	if f == nil {
		f = exec.LookPath
	}
	_, err := f(name)
	return err == nil
}

// firstFound returns the first of names present on PATH, or "".
func (f LookPathFunc) firstFound(names ...string) string {
	for _, n := range names {
		if f.has(n) {
			return n
		}
	}
	return ""
}

// shellQuote wraps s in single quotes for sh -c.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
