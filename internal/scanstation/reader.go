package scanstation

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
)

// Keyboard is the part of the assembler the station feeds.
type Keyboard interface {
	Keystroke(r rune)
	Submit()
}

// Feed forwards runes from r to keyboard until EOF or ctx is done. Whatever
// is still buffered at EOF is submitted.
func Feed(ctx context.Context, r io.Reader, keyboard Keyboard) error {
	reader := bufio.NewReader(r)
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		ch, _, err := reader.ReadRune()
		if err != nil {
			if errors.Is(err, io.EOF) {
				keyboard.Submit()
				return nil
			}
			return fmt.Errorf("failed to read input: %w", err)
		}
		keyboard.Keystroke(ch)
	}
}
