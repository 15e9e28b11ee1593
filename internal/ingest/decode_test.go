package ingest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
)

func TestDecodeUTF8(t *testing.T) {
	text, enc := Decode([]byte("第一章 开始\n内容"))
	if enc != EncodingUTF8 {
		t.Fatalf("encoding = %q, want %q", enc, EncodingUTF8)
	}
	if text != "第一章 开始\n内容" {
		t.Fatalf("text = %q", text)
	}
}

func TestDecodeStripsBOM(t *testing.T) {
	data := append([]byte{0xEF, 0xBB, 0xBF}, []byte("hello")...)
	text, enc := Decode(data)
	if enc != EncodingUTF8BOM || text != "hello" {
		t.Fatalf("Decode = %q, %q", text, enc)
	}
}

func TestDecodeGB18030(t *testing.T) {
	data, err := simplifiedchinese.GBK.NewEncoder().Bytes([]byte("第三章 风雪"))
	if err != nil {
		t.Fatalf("encode gbk: %v", err)
	}
	text, enc := Decode(data)
	if enc != EncodingGB18030 {
		t.Fatalf("encoding = %q, want %q", enc, EncodingGB18030)
	}
	if text != "第三章 风雪" {
		t.Fatalf("text = %q", text)
	}
}

func TestDecodeBig5Payload(t *testing.T) {
	data, err := traditionalchinese.Big5.NewEncoder().Bytes([]byte("第一章 風雪"))
	if err != nil {
		t.Fatalf("encode big5: %v", err)
	}
	text, _ := Decode(data)
	if strings.ContainsRune(text, '�') {
		t.Fatalf("unexpected replacement characters in %q", text)
	}
}

func TestDecodeWindows1252(t *testing.T) {
	data, err := charmap.Windows1252.NewEncoder().Bytes([]byte("café – naïve"))
	if err != nil {
		t.Fatalf("encode cp1252: %v", err)
	}
	text, _ := Decode(data)
	if strings.ContainsRune(text, '�') {
		t.Fatalf("unexpected replacement characters in %q", text)
	}
}

func TestNormalizeNewlines(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"a\r\nb", "a\nb"},
		{"a\rb", "a\nb"},
		{"a\r\n\r\nb", "a\n\nb"},
		{"plain", "plain"},
	}
	for _, tt := range tests {
		if got := NormalizeNewlines(tt.in); got != tt.want {
			t.Fatalf("NormalizeNewlines(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "book.txt")
	if err := os.WriteFile(path, []byte("Chapter 1\r\n\r\nText"), 0o644); err != nil {
		t.Fatal(err)
	}
	text, enc, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if enc != EncodingUTF8 || text != "Chapter 1\n\nText" {
		t.Fatalf("ReadFile = %q, %q", text, enc)
	}
	if _, _, err := ReadFile(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
