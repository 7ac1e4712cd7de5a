package pagetext

import (
	"strings"
	"testing"
)

func TestConvertBasic(t *testing.T) {
	md, ok := Convert(`<h1>Title</h1><p>Some body text.</p>`)
	if !ok {
		t.Fatal("expected usable content")
	}
	if !strings.Contains(md, "# Title") {
		t.Errorf("expected ATX heading, got %q", md)
	}
	if !strings.Contains(md, "Some body text.") {
		t.Errorf("expected paragraph text, got %q", md)
	}
}

func TestConvertScriptStyleOnlyIsEmpty(t *testing.T) {
	input := `
		<script>var x = 1;</script>
		<style>body { color: red; }</style>
	`
	if md, ok := Convert(input); ok {
		t.Errorf("expected no usable content, got %q", md)
	}
}

func TestConvertEmptyInput(t *testing.T) {
	if _, ok := Convert(""); ok {
		t.Error("empty input should yield no content")
	}
	if _, ok := Convert("   \n\t "); ok {
		t.Error("whitespace input should yield no content")
	}
}

func TestConvertWhitespaceNormalization(t *testing.T) {
	md, ok := Convert("<h1>A</h1><p>B   \n\n\n\nC</p>")
	if !ok {
		t.Fatal("expected usable content")
	}
	if strings.Contains(md, "\n\n\n") {
		t.Errorf("runs of 3+ newlines must collapse to 2, got %q", md)
	}
	blocks := strings.Split(md, "\n\n")
	if len(blocks) != 2 {
		t.Fatalf("expected heading and paragraph separated by one blank line, got %d blocks: %q", len(blocks), md)
	}
	if !strings.HasPrefix(blocks[0], "# A") {
		t.Errorf("first block should be the heading, got %q", blocks[0])
	}
	for _, line := range strings.Split(md, "\n") {
		if line != strings.TrimRight(line, " \t") {
			t.Errorf("line not right-trimmed: %q", line)
		}
	}
}

func TestConvertStripsMedia(t *testing.T) {
	input := `<p>keep</p>
		<img src="x.png" alt="drop">
		<video><source src="v.mp4"></video>
		<iframe src="https://ads.example.com"></iframe>
		<canvas></canvas>
		<form><input name="q"><button>submit-me</button></form>`
	md, ok := Convert(input)
	if !ok {
		t.Fatal("expected usable content")
	}
	if !strings.Contains(md, "keep") {
		t.Errorf("paragraph text missing: %q", md)
	}
	for _, banned := range []string{"x.png", "v.mp4", "ads.example.com", "submit-me"} {
		if strings.Contains(md, banned) {
			t.Errorf("stripped element leaked %q into %q", banned, md)
		}
	}
}

func TestConvertStripsBase64Images(t *testing.T) {
	input := `<p>text</p><img src="data:image/png;base64,iVBORw0KGgo=" alt="inline">`
	md, ok := Convert(input)
	if !ok {
		t.Fatal("expected usable content")
	}
	if strings.Contains(md, "base64") || strings.Contains(md, "iVBOR") {
		t.Errorf("base64 image leaked into %q", md)
	}
}

func TestConvertBulletList(t *testing.T) {
	md, ok := Convert(`<ul><li>first</li><li>second</li></ul>`)
	if !ok {
		t.Fatal("expected usable content")
	}
	if !strings.Contains(md, "- first") || !strings.Contains(md, "- second") {
		t.Errorf("expected '-' bullets, got %q", md)
	}
}

func TestConvertEscapesEmphasisCharacters(t *testing.T) {
	md, ok := Convert(`<p>a *literal* star and _underscore_</p>`)
	if !ok {
		t.Fatal("expected usable content")
	}
	if strings.Contains(md, " *literal* ") {
		t.Errorf("literal asterisks should be escaped, got %q", md)
	}
}
