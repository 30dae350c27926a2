package pipeline

import (
	"strings"
	"testing"
)

func TestMathGuard_ProtectRestore(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string // restored content embedded in fake HTML
	}{
		{
			name:  "inline dollar math",
			input: `The square is $x^2$ here.`,
			want:  `$x^2$`,
		},
		{
			name:  "display math",
			input: "Before\n$$\\sum_{i=0}^n i$$\nAfter",
			want:  `$$\sum_{i=0}^n i$$`,
		},
		{
			name:  "multiline display math",
			input: "$$\na = b\n+ c\n$$",
			want:  "$$\na = b\n+ c\n$$",
		},
		{
			name:  "paren delimiters",
			input: `Inline \(a_i\) form.`,
			want:  `\(a_i\)`,
		},
		{
			name:  "bracket delimiters",
			input: `Display \[e^{i\pi} = -1\] form.`,
			want:  `\[e^{i\pi} = -1\]`,
		},
		{
			name:  "html special chars escaped",
			input: `$a < b$`,
			want:  `$a &lt; b$`,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			guard := &mathGuard{}
			protected := guard.Protect(tt.input)

			if strings.Contains(protected, "$") {
				t.Errorf("Protect left a dollar sign in %q", protected)
			}

			restored := guard.Restore(protected)
			if !strings.Contains(restored, tt.want) {
				t.Errorf("Restore = %q, want it to contain %q", restored, tt.want)
			}
		})
	}
}

func TestMathGuard_ProtectHidesUnderscoresFromMarkdown(t *testing.T) {
	t.Parallel()

	guard := &mathGuard{}
	protected := guard.Protect(`$a_i + b_j$`)

	if strings.ContainsAny(protected, "_$") {
		t.Errorf("math source leaked into markdown input: %q", protected)
	}
}

func TestMathGuard_SkipsFencedCode(t *testing.T) {
	t.Parallel()

	input := "Text with $math$\n```sh\necho $HOME and $PATH\n```\nMore $math$"

	guard := &mathGuard{}
	protected := guard.Protect(input)

	if !strings.Contains(protected, "echo $HOME and $PATH") {
		t.Errorf("fenced code was modified: %q", protected)
	}
	if got := len(guard.segments); got != 2 {
		t.Errorf("protected %d segments, want 2", got)
	}
}

func TestMathGuard_NoMath(t *testing.T) {
	t.Parallel()

	guard := &mathGuard{}
	input := "Plain paragraph with no formulas."

	if got := guard.Protect(input); got != input {
		t.Errorf("Protect changed math-free input: %q", got)
	}
	if got := guard.Restore(input); got != input {
		t.Errorf("Restore changed math-free input: %q", got)
	}
}

func TestMathGuard_IgnoresUnknownPlaceholderIndex(t *testing.T) {
	t.Parallel()

	guard := &mathGuard{segments: []string{"$x$"}}
	input := "a" + mathStartPlaceholder + "99" + mathEndPlaceholder + "b"

	// Out-of-range indexes are dropped rather than panicking.
	if got := guard.Restore(input); got != "ab" {
		t.Errorf("Restore = %q, want %q", got, "ab")
	}
}
