package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

const (
	readyBanner = "Financial Agent ready. Type 'quit' to exit."
	userPrompt  = "You: "
)

// Asker answers one question within a conversation.
type Asker interface {
	Ask(ctx context.Context, question string) (string, error)
}

// RunChatLoop reads questions line by line until "quit"/"exit", EOF or ctx
// is cancelled. Errors from a single question are printed and the loop
// continues.
func RunChatLoop(ctx context.Context, asker Asker, in io.Reader, out io.Writer) error {
	fmt.Fprintln(out, titleStyle.Render(readyBanner))
	fmt.Fprintln(out)

	// a blocked read cannot observe ctx, so lines arrive from a reader goroutine
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	lines := make(chan string)
	var scanErr error
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr = scanner.Err()
	}()

	for {
		if ctx.Err() != nil {
			return nil
		}
		fmt.Fprint(out, promptStyle.Render(userPrompt))

		var text string
		select {
		case <-ctx.Done():
			fmt.Fprintln(out)
			return nil
		case l, ok := <-lines:
			if !ok {
				fmt.Fprintln(out)
				return scanErr
			}
			text = l
		}

		line := strings.TrimSpace(text)
		if line == "" {
			continue
		}
		if strings.EqualFold(line, "quit") || strings.EqualFold(line, "exit") {
			return nil
		}

		answer, err := asker.Ask(ctx, line)
		if err != nil {
			if ctx.Err() != nil {
				fmt.Fprintln(out)
				return nil
			}
			printError(out, err)
			fmt.Fprintln(out)
			continue
		}
		fmt.Fprintln(out, agentStyle.Render("Agent: "+answer))
		fmt.Fprintln(out)
	}
}
