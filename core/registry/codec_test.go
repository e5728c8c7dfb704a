package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestEncode(t *testing.T) {
	tests := []struct {
		name  string
		entry *Entry[string]
		want  string
	}{
		{
			name:  "all fields",
			entry: &Entry[string]{Filename: "hero.png", Reference: "guid-1", Labels: []string{"Portraits", "Icons"}},
			want:  "hero.png|guid-1|Portraits,Icons",
		},
		{
			name:  "no labels",
			entry: &Entry[string]{Filename: "hero.png", Reference: "guid-1"},
			want:  "hero.png|guid-1|",
		},
		{
			name:  "duplicate labels written once",
			entry: &Entry[string]{Filename: "a", Reference: "r", Labels: []string{"x", "y", "x"}},
			want:  "a|r|x,y",
		},
		{
			name:  "empty entry",
			entry: &Entry[string]{},
			want:  "||",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Encode(tt.entry)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEncode_RejectsSeparators(t *testing.T) {
	tests := []struct {
		name  string
		entry *Entry[string]
	}{
		{name: "pipe in filename", entry: &Entry[string]{Filename: "bad|name.png", Reference: "g"}},
		{name: "pipe in reference", entry: &Entry[string]{Filename: "a.png", Reference: "g|1"}},
		{name: "comma in label", entry: &Entry[string]{Labels: []string{"a,b"}}},
		{name: "pipe in label", entry: &Entry[string]{Labels: []string{"a|b"}}},
		{name: "empty label", entry: &Entry[string]{Labels: []string{"A", ""}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Encode(tt.entry)
			assert.ErrorIs(t, err, ErrUnencodable)
			assert.Empty(t, got)
		})
	}
}

func TestValidateLabel(t *testing.T) {
	assert.NoError(t, ValidateLabel("Portraits"))
	assert.NoError(t, ValidateLabel("UI Icons"))
	for _, name := range []string{"", "a,b", "a|b"} {
		assert.ErrorIs(t, ValidateLabel(name), ErrInvalidLabel, name)
	}
}

func TestDecode(t *testing.T) {
	t.Run("valid record", func(t *testing.T) {
		e, err := Decode[string]("hero.png|guid-1|Portraits,Icons")
		require.NoError(t, err)
		assert.Equal(t, "hero.png", e.Filename)
		assert.Equal(t, Reference("guid-1"), e.Reference)
		assert.Equal(t, []string{"Portraits", "Icons"}, e.Labels)
		assert.False(t, e.Resolved)
	})

	t.Run("empty label field", func(t *testing.T) {
		e, err := Decode[string]("hero.png|guid-1|")
		require.NoError(t, err)
		assert.Nil(t, e.Labels)
	})

	malformed := []string{"onlyonefield", "", "a|b", "a|b|c|d"}
	for _, record := range malformed {
		t.Run("malformed "+record, func(t *testing.T) {
			e, err := Decode[string](record)
			assert.Nil(t, e)
			assert.ErrorIs(t, err, ErrMalformedRecord)

			var de *DecodeError
			require.ErrorAs(t, err, &de)
		})
	}
}

func TestCodec_RoundTrip(t *testing.T) {
	rapid.Check(t, func(r *rapid.T) {
		e := &Entry[string]{
			Filename:  rapid.StringMatching(`[A-Za-z0-9_. /-]{0,24}`).Draw(r, "filename"),
			Reference: Reference(rapid.StringMatching(`[a-f0-9-]{0,36}`).Draw(r, "reference")),
			Labels:    rapid.SliceOf(rapid.StringMatching(`[A-Za-z]{1,10}`)).Draw(r, "labels"),
		}

		record, err := Encode(e)
		if err != nil {
			r.Fatalf("encode failed: %v", err)
		}
		got, err := Decode[string](record)
		if err != nil {
			r.Fatalf("decode failed: %v", err)
		}
		if got.Filename != e.Filename {
			r.Fatalf("filename %q != %q", got.Filename, e.Filename)
		}
		if got.Reference != e.Reference {
			r.Fatalf("reference %q != %q", got.Reference, e.Reference)
		}

		want := make(map[string]bool)
		for _, l := range e.Labels {
			want[l] = true
		}
		if len(got.Labels) != len(want) {
			r.Fatalf("labels %v do not match set of %v", got.Labels, e.Labels)
		}
		for _, l := range got.Labels {
			if !want[l] {
				r.Fatalf("unexpected label %q", l)
			}
		}
	})
}
