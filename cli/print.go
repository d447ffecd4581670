package cli

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/fatih/color"
)

// printf prints a message with no prefix.
func printf(w io.Writer, format string, a ...interface{}) {
	fmt.Fprintf(w, format+"\n", a...)
}

// infof prints a message prefixed with a bold cyan "Info: ".
func infof(w io.Writer, format string, a ...interface{}) {
	if _, err := color.New(color.Bold, color.FgCyan).Fprint(w, "Info: "); err != nil {
		log.Fatal(err)
	}
	fmt.Fprintf(w, format+"\n", a...)
}

// warningf prints a message prefixed with a bold yellow "Warning: ".
func warningf(w io.Writer, format string, a ...interface{}) {
	if _, err := color.New(color.Bold, color.FgYellow).Fprint(w, "Warning: "); err != nil {
		log.Fatal(err)
	}
	fmt.Fprintf(w, format+"\n", a...)
}

// Errorf prints a message prefixed with a bold red "Error: " prefix and exits with 1.
func Errorf(w io.Writer, format string, a ...interface{}) {
	if _, err := color.New(color.Bold, color.FgRed).Fprint(w, "Error: "); err != nil {
		log.Fatal(err)
	}
	fmt.Fprintf(w, format+"\n", a...)
	os.Exit(1)
}
