package runner

import (
	"bufio"
	"context"
	"strings"
)

// startPump reads input lines on a dedicated goroutine so reveals can watch for
// Enter while the driver is busy. The channel is closed at end of input.
func (r *Runner) startPump() {
	r.startOnce.Do(func() {
		r.lines = make(chan string)
		go func() {
			defer close(r.lines)
			scanner := bufio.NewScanner(r.input)
			for scanner.Scan() {
				r.lines <- scanner.Text()
			}
			if err := scanner.Err(); err != nil {
				r.logger.Warn("input closed", "err", err)
			}
		}()
	})
}

// read waits for the next sanitized line. It reports false at end of input or
// when ctx is done.
func (r *Runner) read(ctx context.Context) (string, bool) {
	for {
		select {
		case <-ctx.Done():
			return "", false
		case line, ok := <-r.lines:
			if !ok {
				return "", false
			}
			clean, err := SanitizeInput(strings.TrimSpace(line))
			if err != nil {
				r.printf("%v\n", err)
				continue
			}
			return clean, true
		}
	}
}
