package project

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// Decoder returns the encoding for a name as written in R DESCRIPTION
// files. UTF-8 sources need no conversion and yield a nil encoding.
func Decoder(name string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		return nil, nil
	case "latin1", "latin-1", "iso-8859-1", "iso8859-1":
		return charmap.ISO8859_1, nil
	case "latin9", "latin-9", "iso-8859-15", "iso8859-15":
		return charmap.ISO8859_15, nil
	case "latin2", "iso-8859-2", "iso8859-2":
		return charmap.ISO8859_2, nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252, nil
	case "windows-1250", "cp1250":
		return charmap.Windows1250, nil
	}
	return nil, fmt.Errorf("unsupported encoding %q", name)
}

// Transcode converts data in the named encoding to UTF-8.
func Transcode(data []byte, name string) ([]byte, error) {
	enc, err := Decoder(name)
	if err != nil {
		return nil, err
	}
	if enc == nil {
		return data, nil
	}
	return enc.NewDecoder().Bytes(data)
}
