package diff

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestHasChanges(t *testing.T) {
	cases := []struct {
		name string
		old  string
		new  string
		want bool
	}{
		{"identical", "hello world", "hello world", false},
		{"both empty", "", "", false},
		{"append", "hello", "hello world", true},
		{"delete", "hello world", "hello", true},
		{"replace", "hello world", "hello earth", true},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := HasChanges(c.old, c.new); got != c.want {
				t.Errorf("HasChanges(%q, %q) = %v, want %v", c.old, c.new, got, c.want)
			}
		})
	}
}

func TestHasChangesProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("identical texts never differ", prop.ForAll(
		func(s string) bool {
			return !HasChanges(s, s)
		},
		gen.AnyString(),
	))

	properties.Property("non-empty append always differs", prop.ForAll(
		func(s, suffix string) bool {
			if suffix == "" {
				return true
			}
			return HasChanges(s, s+suffix)
		},
		gen.AnyString(),
		gen.AlphaString(),
	))

	properties.Property("symmetric", prop.ForAll(
		func(a, b string) bool {
			return HasChanges(a, b) == HasChanges(b, a)
		},
		gen.AnyString(),
		gen.AnyString(),
	))

	properties.TestingRun(t)
}
