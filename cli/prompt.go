package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Shailesh0209/whole-youtube-channel-transcription/config"
)

// prompter asks the operator for values the configuration left empty.
type prompter struct {
	in  *bufio.Scanner
	out io.Writer
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{in: bufio.NewScanner(in), out: out}
}

// readLine returns the next trimmed line and false at end of input.
func (p *prompter) readLine(prompt string) (string, bool) {
	fmt.Fprint(p.out, prompt)
	if !p.in.Scan() {
		fmt.Fprintln(p.out)
		return "", false
	}
	return strings.TrimSpace(p.in.Text()), true
}

// inputFile asks for the video IDs file until a non-empty answer arrives.
func (p *prompter) inputFile() (string, error) {
	for {
		line, ok := p.readLine("Enter path to video IDs .txt file: ")
		if !ok {
			return "", &config.Error{Key: "video_ids_file", Err: config.ErrMissingInput}
		}
		if line != "" {
			return line, nil
		}
	}
}

// language prints the numbered choices and returns the chosen display name.
// Empty or invalid input selects the default.
func (p *prompter) language() (string, error) {
	fmt.Fprintln(p.out, "Select transcription language:")
	for i, opt := range config.Languages {
		fmt.Fprintf(p.out, "%d. %s\n", i+1, opt.Name)
	}

	line, _ := p.readLine(fmt.Sprintf("Enter the number for language [%d]: ", config.DefaultLanguageIndex))
	if line == "" {
		return config.DefaultLanguage, nil
	}
	n, err := strconv.Atoi(line)
	if err != nil {
		fmt.Fprintf(p.out, "Invalid input. Defaulting to %s.\n", config.DefaultLanguage)
		return config.DefaultLanguage, nil
	}
	if n < 1 || n > len(config.Languages) {
		fmt.Fprintf(p.out, "Invalid selection. Defaulting to %s.\n", config.DefaultLanguage)
		return config.DefaultLanguage, nil
	}
	return config.Languages[n-1].Name, nil
}
