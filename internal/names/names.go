// Package names generates random adjective_color_animal display names for runs.
package names

import (
	"strings"
	"sync"
	"unicode"

	"github.com/brianvoe/gofakeit/v7"
)

// Separator joins the dictionary words.
const Separator = "_"

// Generator produces random names. It is safe for concurrent use.
type Generator struct {
	mu    sync.Mutex
	faker *gofakeit.Faker
}

// NewGenerator creates a randomly seeded generator.
func NewGenerator() *Generator {
	return &Generator{faker: gofakeit.New(0)}
}

// NewSeededGenerator creates a generator with a fixed seed, for reproducible
// names. A zero seed is random.
func NewSeededGenerator(seed uint64) *Generator {
	return &Generator{faker: gofakeit.New(seed)}
}

// Generate returns a name such as "brave_red_donkey".
func (g *Generator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	return strings.Join([]string{
		word(g.faker.AdjectiveDescriptive()),
		word(g.faker.Color()),
		word(g.faker.Animal()),
	}, Separator)
}

// word lowercases w and folds anything but letters and digits into "-", so
// a dictionary entry never introduces a Separator.
func word(w string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.TrimSpace(w) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
