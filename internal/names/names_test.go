package names

import (
	"regexp"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var wordPattern = regexp.MustCompile(`^[\p{Ll}\p{N}]+(-[\p{Ll}\p{N}]+)*$`)

func TestGenerate_Shape(t *testing.T) {
	g := NewGenerator()
	for i := 0; i < 200; i++ {
		name := g.Generate()
		parts := strings.Split(name, Separator)
		require.Len(t, parts, 3, name)
		for _, p := range parts {
			assert.Regexp(t, wordPattern, p, name)
		}
	}
}

func TestGenerate_Seeded(t *testing.T) {
	a := NewSeededGenerator(42)
	b := NewSeededGenerator(42)
	for i := 0; i < 10; i++ {
		assert.Equal(t, a.Generate(), b.Generate())
	}
}

func TestGenerate_Varies(t *testing.T) {
	g := NewSeededGenerator(7)
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		seen[g.Generate()] = true
	}
	assert.Greater(t, len(seen), 1)
}

func TestWord(t *testing.T) {
	tests := map[string]string{
		"Red":              "red",
		"MediumAquaMarine": "mediumaquamarine",
		"sea lion":         "sea-lion",
		"  good-natured ":  "good-natured",
		"snake_case":       "snake-case",
		"trailing!":        "trailing",
	}
	for in, want := range tests {
		assert.Equal(t, want, word(in), in)
	}
}

func TestGenerate_Concurrent(t *testing.T) {
	g := NewGenerator()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				assert.NotEmpty(t, g.Generate())
			}
		}()
	}
	wg.Wait()
}
