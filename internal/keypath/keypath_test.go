package keypath

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"/", ""},
		{"people", "people"},
		{"/people/", "people"},
		{"people.a.age", "people/a/age"},
		{"people//a/", "people/a"},
		{".people/a.age/", "people/a/age"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalize_EqualPathsCanonicaliseIdentically(t *testing.T) {
	assert.Equal(t, Normalize("/a/b/c"), Normalize("a.b.c"))
	assert.Equal(t, Normalize("a/b.c/"), Normalize("/a.b/c"))
}

func TestJoin(t *testing.T) {
	assert.Equal(t, "a/b/c", Join("/a/", "b.c"))
	assert.Equal(t, "x", Join("", "x", ""))
	assert.Equal(t, "", Join())
}

func TestParentAndKey(t *testing.T) {
	assert.Equal(t, "people", Parent("people/a"))
	assert.Equal(t, "", Parent("people"))
	assert.Equal(t, "", Parent(""))
	assert.Equal(t, "a", Key("/people/a/"))
	assert.Equal(t, "", Key("/"))
}

func TestRelative(t *testing.T) {
	rel, ok := Relative("people", "people/a/age")
	assert.True(t, ok)
	assert.Equal(t, []string{"a", "age"}, rel)

	rel, ok = Relative("people", "people")
	assert.True(t, ok)
	assert.Empty(t, rel)

	_, ok = Relative("people", "peoplex/a")
	assert.False(t, ok)

	_, ok = Relative("people/a", "people")
	assert.False(t, ok)

	rel, ok = Relative("", "x/y")
	assert.True(t, ok)
	assert.Equal(t, []string{"x", "y"}, rel)
}

func TestIsRoot(t *testing.T) {
	assert.True(t, IsRoot("/"))
	assert.False(t, IsRoot("a"))
}
