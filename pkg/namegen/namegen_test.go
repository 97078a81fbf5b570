// Test Type: Unit Test
// Description: Tests for the namegen package - name generation, validation, and slugs

package namegen_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vary-sh/vary/pkg/namegen"
)

func TestGenerate(t *testing.T) {
	name := namegen.Generate("-")

	assert.NoError(t, namegen.ValidateName(name))
	parts := strings.Split(name, "-")
	assert.Len(t, parts, 2)
	assert.NotEmpty(t, parts[0])
	assert.NotEmpty(t, parts[1])
}

func TestGenerateCustomSeparator(t *testing.T) {
	name := namegen.Generate("_")
	assert.Contains(t, name, "_")
}

func TestGenerateUniqueReturnsFreeName(t *testing.T) {
	name := namegen.GenerateUnique("-", func(string) bool { return false })
	assert.NoError(t, namegen.ValidateName(name))
}

func TestGenerateUniqueFallsBackToSuffix(t *testing.T) {
	// Every generated name is taken, only the numeric fallback is free.
	taken := func(name string) bool {
		return !strings.HasSuffix(name, "-2")
	}

	name := namegen.GenerateUnique("-", taken)
	assert.True(t, strings.HasSuffix(name, "-2"), "got %q", name)
	assert.NoError(t, namegen.ValidateName(name))
}

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{
			name:  "simple_name",
			input: "swift-otter",
		},
		{
			name:  "single_letter",
			input: "x",
		},
		{
			name:  "digits_allowed",
			input: "run2",
		},
		{
			name:  "numeric_suffix",
			input: "swift-otter-2",
		},
		{
			name:    "empty",
			input:   "",
			wantErr: true,
		},
		{
			name:    "uppercase",
			input:   "Swift",
			wantErr: true,
		},
		{
			name:    "leading_hyphen",
			input:   "-otter",
			wantErr: true,
		},
		{
			name:    "spaces",
			input:   "swift otter",
			wantErr: true,
		},
		{
			name:    "underscore",
			input:   "swift_otter",
			wantErr: true,
		},
		{
			name:    "path_separator",
			input:   "swift/otter",
			wantErr: true,
		},
		{
			name:    "too_long",
			input:   strings.Repeat("a", 65),
			wantErr: true,
		},
		{
			name:  "max_length",
			input: strings.Repeat("a", 64),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := namegen.ValidateName(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "already_clean",
			input:    "myapp",
			expected: "myapp",
		},
		{
			name:     "uppercase_lowered",
			input:    "MyApp",
			expected: "myapp",
		},
		{
			name:     "spaces_to_hyphens",
			input:    "My Project",
			expected: "my-project",
		},
		{
			name:     "runs_collapse",
			input:    "weird__  chars",
			expected: "weird-chars",
		},
		{
			name:     "dots_to_hyphens",
			input:    "v2.0",
			expected: "v2-0",
		},
		{
			name:     "leading_trailing_trimmed",
			input:    "  padded  ",
			expected: "padded",
		},
		{
			name:     "only_junk",
			input:    "---",
			expected: "",
		},
		{
			name:     "empty",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, namegen.Slugify(tt.input))
		})
	}
}
