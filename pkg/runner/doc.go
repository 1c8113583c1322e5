/*
Package runner plays a dialogue in a terminal.

Lines are printed as "speaker: text", optionally revealed character by
character. Enter while a line is revealing shows it at once; Enter after it
continues. Choices are listed as numbered options and answered by number.
Typing "q" or closing the input ends the run.

	r := runner.New(runner.WithSpeed(40))
	code, err := r.Run(ctx, eng, chain)
*/
package runner
