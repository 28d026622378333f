package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mcncl/vizpath/internal/errors"
	"github.com/mcncl/vizpath/internal/models"
	"github.com/mcncl/vizpath/internal/parser"
)

// parseInput reads JSON from the -i file or stdin
func (c *Context) parseInput() (models.Document, error) {
	if c.Globals.Input != "" {
		return parser.ParseFile(c.Globals.Input)
	}

	if f, ok := c.Stdin.(*os.File); ok {
		stdinInfo, err := f.Stat()
		if err != nil {
			return models.Document{}, errors.NewInputError("failed to access stdin", err)
		}

		if (stdinInfo.Mode() & os.ModeCharDevice) != 0 {
			// Terminal is interactive (not piped)
			if c.Globals.Interactive {
				return c.readInteractiveInput()
			}
			return models.Document{}, errors.NewInputError("no input provided", errors.ErrNoInput)
		}
	}

	// Read from stdin (piped input)
	jsonData, err := io.ReadAll(c.Stdin)
	if err != nil {
		return models.Document{}, errors.NewInputError("failed to read from stdin", err)
	}

	if len(jsonData) == 0 {
		return models.Document{}, errors.NewInputError("empty input received from stdin", errors.ErrEmptyInput)
	}

	return parser.ParseBytes(jsonData)
}

// readInteractiveInput lets users paste JSON and signal completion with
// Ctrl+D (EOF)
func (c *Context) readInteractiveInput() (models.Document, error) {
	fmt.Fprintln(c.Stderr, "vizpath interactive mode")
	fmt.Fprintln(c.Stderr, "Paste your JSON below and press Ctrl+D (or Ctrl+Z on Windows) when done:")

	reader := bufio.NewReader(c.Stdin)
	var jsonBuilder strings.Builder

	for {
		line, err := reader.ReadString('\n')
		jsonBuilder.WriteString(line)
		if err == io.EOF {
			break
		}
		if err != nil {
			return models.Document{}, errors.NewInputError("error reading input", err)
		}
	}

	jsonData := jsonBuilder.String()
	if strings.TrimSpace(jsonData) == "" {
		return models.Document{}, errors.NewInputError("empty input received", errors.ErrEmptyInput)
	}

	fmt.Fprintln(c.Stderr, "\nProcessing JSON...")
	return parser.ParseString(jsonData)
}
