package patch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFieldStates(t *testing.T) {
	var zero Field[string]
	assert.True(t, zero.IsUnchanged(), "the zero value means unchanged")
	assert.False(t, zero.IsClear())

	u := Unchanged[string]()
	assert.True(t, u.IsUnchanged())
	_, ok := u.Value()
	assert.False(t, ok)

	c := Clear[string]()
	assert.False(t, c.IsUnchanged())
	assert.True(t, c.IsClear())

	s := Set("hello")
	assert.False(t, s.IsUnchanged())
	assert.False(t, s.IsClear())
	v, ok := s.Value()
	assert.True(t, ok)
	assert.Equal(t, "hello", v)
}

func TestApplyPtr(t *testing.T) {
	current := 42

	tests := []struct {
		name    string
		field   Field[int]
		current *int
		want    *int
	}{
		{name: "unchanged keeps current", field: Unchanged[int](), current: &current, want: &current},
		{name: "unchanged keeps nil", field: Unchanged[int](), current: nil, want: nil},
		{name: "clear removes current", field: Clear[int](), current: &current, want: nil},
		{name: "clear of nil stays nil", field: Clear[int](), current: nil, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ApplyPtr(tt.field, tt.current))
		})
	}

	got := ApplyPtr(Set(7), &current)
	assert.Equal(t, 7, *got)
	assert.NotSame(t, &current, got, "set returns a fresh pointer")
	assert.Equal(t, 42, current)
}

func TestApply(t *testing.T) {
	assert.Equal(t, "old", Apply(Unchanged[string](), "old"))
	assert.Equal(t, "new", Apply(Set("new"), "old"))
	assert.Equal(t, "old", Apply(Clear[string](), "old"), "a required value cannot be cleared")
}
