package nb2pdf

import (
	"errors"
	"testing"
)

func TestPageSettings_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		settings *PageSettings
		wantErr  error
	}{
		{"nil is valid", nil, nil},
		{"a4", &PageSettings{Size: "a4", Margin: 1}, nil},
		{"letter uppercase", &PageSettings{Size: "Letter", Margin: 1}, nil},
		{"legal", &PageSettings{Size: "legal", Margin: MinMargin}, nil},
		{"max margin", &PageSettings{Size: "a4", Margin: MaxMargin}, nil},
		{"unknown size", &PageSettings{Size: "tabloid", Margin: 1}, ErrInvalidPageSize},
		{"margin below min", &PageSettings{Size: "a4", Margin: 0.1}, ErrInvalidMargin},
		{"margin above max", &PageSettings{Size: "a4", Margin: 3.5}, ErrInvalidMargin},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.settings.Validate()
			if tt.wantErr == nil && err != nil {
				t.Errorf("Validate() error = %v, want nil", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestTOC_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		toc     *TOC
		wantErr error
	}{
		{"nil is valid", nil, nil},
		{"zero depth means default", &TOC{}, nil},
		{"min depth", &TOC{MaxDepth: 1}, nil},
		{"max depth", &TOC{MaxDepth: 4}, nil},
		{"too deep", &TOC{MaxDepth: 5}, ErrInvalidTOCDepth},
		{"negative", &TOC{MaxDepth: -1}, ErrInvalidTOCDepth},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.toc.Validate()
			if tt.wantErr == nil && err != nil {
				t.Errorf("Validate() error = %v, want nil", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateAccentColor(t *testing.T) {
	t.Parallel()

	valid := []string{"", "#fff", "#41395f", "#ABCDEF"}
	for _, color := range valid {
		if err := validateAccentColor(color); err != nil {
			t.Errorf("validateAccentColor(%q) = %v, want nil", color, err)
		}
	}

	invalid := []string{"purple", "#12", "#12345", "41395f", "#gggggg"}
	for _, color := range invalid {
		if err := validateAccentColor(color); !errors.Is(err, ErrInvalidAccentColor) {
			t.Errorf("validateAccentColor(%q) = %v, want ErrInvalidAccentColor", color, err)
		}
	}
}

func TestDefaultPageSettings(t *testing.T) {
	t.Parallel()

	settings := DefaultPageSettings()
	if settings.Size != PageSizeA4 {
		t.Errorf("default size = %q, want a4", settings.Size)
	}
	if settings.Margin != DefaultMargin {
		t.Errorf("default margin = %v, want %v", settings.Margin, DefaultMargin)
	}
	if err := settings.Validate(); err != nil {
		t.Errorf("defaults do not validate: %v", err)
	}
}
