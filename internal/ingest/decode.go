package ingest

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
)

// Encoding names reported by Decode.
const (
	EncodingUTF8        = "utf-8"
	EncodingUTF8BOM     = "utf-8-sig"
	EncodingGB18030     = "gb18030"
	EncodingBig5        = "big5"
	EncodingWindows1252 = "windows-1252"
	EncodingReplaced    = "utf-8-replace"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

type candidate struct {
	name string
	enc  encoding.Encoding
}

// GB18030 is a superset of GBK and GB2312, so one decoder covers all three.
var candidates = []candidate{
	{EncodingGB18030, simplifiedchinese.GB18030},
	{EncodingBig5, traditionalchinese.Big5},
	{EncodingWindows1252, charmap.Windows1252},
}

// Decode converts data to text and reports the encoding that produced it.
func Decode(data []byte) (string, string) {
	text, name := decode(data)
	return NormalizeNewlines(text), name
}

func decode(data []byte) (string, string) {
	if bytes.HasPrefix(data, utf8BOM) {
		if rest := data[len(utf8BOM):]; utf8.Valid(rest) {
			return string(rest), EncodingUTF8BOM
		}
	}
	if utf8.Valid(data) {
		return string(data), EncodingUTF8
	}
	for _, c := range candidates {
		out, err := c.enc.NewDecoder().Bytes(data)
		if err != nil || bytes.ContainsRune(out, utf8.RuneError) {
			continue
		}
		return string(out), c.name
	}
	return strings.ToValidUTF8(string(data), string(utf8.RuneError)), EncodingReplaced
}

// NormalizeNewlines rewrites CRLF and bare CR line endings to LF.
func NormalizeNewlines(text string) string {
	if !strings.ContainsRune(text, '\r') {
		return text
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(text, "\r", "\n")
}

// ReadFile reads and decodes the document at path.
func ReadFile(path string) (string, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", fmt.Errorf("read document: %w", err)
	}
	text, name := Decode(data)
	return text, name, nil
}
