package scanner

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatch(t *testing.T) {
	tests := []struct {
		pattern string
		relPath string
		want    bool
	}{
		{"*.tmp", "draft.tmp", true},
		{"*.tmp", "notes/draft.tmp", true},
		{"*.tmp", "notes/draft.txt", false},

		{"css/", "css/style.css", true},
		{"css/", "css", true},
		{"css/", "cssx/style.css", false},

		{"css/*.css", "css/style.css", true},
		{"css/*.css", "css/deep/style.css", false},

		{"css/**", "css/style.css", true},
		{"css/**", "css/deep/style.css", true},
		{"css/**", "img/logo.png", false},

		{"**/*.log", "a.log", true},
		{"**/*.log", "deep/down/a.log", true},
		{"**/*.log", "deep/down/a.txt", false},

		{"", "anything", false},
	}

	for _, tt := range tests {
		t.Run(tt.pattern+" vs "+tt.relPath, func(t *testing.T) {
			assert.Equal(t, tt.want, Match(tt.pattern, tt.relPath))
		})
	}
}

func TestInclude(t *testing.T) {
	t.Run("empty include admits everything", func(t *testing.T) {
		assert.True(t, Include("any/path.txt", nil, nil))
	})

	t.Run("exclude wins over include", func(t *testing.T) {
		assert.False(t, Include("css/style.tmp", []string{"css/**"}, []string{"*.tmp"}))
	})

	t.Run("include narrows", func(t *testing.T) {
		assert.True(t, Include("css/style.css", []string{"css/**"}, nil))
		assert.False(t, Include("img/logo.png", []string{"css/**"}, nil))
	})
}

func TestValidatePatterns(t *testing.T) {
	assert.NoError(t, ValidatePatterns([]string{"*.tmp", "css/**", "logs/"}))
	assert.Error(t, ValidatePatterns([]string{"[unclosed"}))
}
