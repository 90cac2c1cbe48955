package project

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"strings"
)

// Description holds the fields of an R package DESCRIPTION file.
type Description struct {
	Fields map[string]string
}

func (d *Description) Package() string {
	return d.Fields["Package"]
}

func (d *Description) Encoding() string {
	return d.Fields["Encoding"]
}

// ReadDescription parses a DESCRIPTION file in Debian control format.
// Continuation lines start with whitespace.
func ReadDescription(path string) (*Description, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseDescription(data)
}

func ParseDescription(data []byte) (*Description, error) {
	desc := &Description{Fields: make(map[string]string)}
	var last string
	scanner := bufio.NewScanner(bytes.NewReader(data))
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(text) == "" {
			continue
		}
		if text[0] == ' ' || text[0] == '\t' {
			if last == "" {
				return nil, fmt.Errorf("DESCRIPTION:%d: continuation line without a field", line)
			}
			desc.Fields[last] += "\n" + strings.TrimSpace(text)
			continue
		}
		name, value, ok := strings.Cut(text, ":")
		if !ok {
			return nil, fmt.Errorf("DESCRIPTION:%d: expected 'Field: value'", line)
		}
		last = strings.TrimSpace(name)
		desc.Fields[last] = strings.TrimSpace(value)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read DESCRIPTION: %w", err)
	}
	return desc, nil
}
