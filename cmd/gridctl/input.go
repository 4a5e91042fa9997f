package main

import (
	"errors"
	"io"
	"os"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"
)

// textFlags picks the pasted text: --text, --file, --clipboard, or stdin
// when none is given.
type textFlags struct {
	text      string
	file      string
	clipboard bool

	// readClipboard is swapped in tests.
	readClipboard func() (string, error)
}

func (f *textFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.text, "text", "", "text to paste")
	cmd.Flags().StringVar(&f.file, "file", "", "read text from file")
	cmd.Flags().BoolVar(&f.clipboard, "clipboard", false, "read text from the system clipboard")
	cmd.MarkFlagsMutuallyExclusive("text", "file", "clipboard")
}

func (f *textFlags) read(stdin io.Reader) (string, error) {
	switch {
	case f.text != "":
		return f.text, nil
	case f.file != "":
		b, err := os.ReadFile(f.file)
		return string(b), err
	case f.clipboard:
		read := f.readClipboard
		if read == nil {
			read = clipboard.ReadAll
		}
		if clipboard.Unsupported && f.readClipboard == nil {
			return "", errors.New("clipboard is not available on this system")
		}
		return read()
	}
	b, err := io.ReadAll(stdin)
	return string(b), err
}
