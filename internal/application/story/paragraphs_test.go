package story

import (
	"reflect"
	"testing"
)

func TestParagraphs(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want []string
	}{
		{
			name: "blank lines between paragraphs",
			in:   "Once upon a time...\n\nThe dragon learned kindness.\n\nThe end.",
			want: []string{"Once upon a time...", "The dragon learned kindness.", "The end."},
		},
		{
			name: "single newlines",
			in:   "a\nb\nc",
			want: []string{"a", "b", "c"},
		},
		{
			name: "windows line endings",
			in:   "first\r\n\r\nsecond\r\n",
			want: []string{"first", "second"},
		},
		{
			name: "inner whitespace preserved",
			in:   "  \"Hello,\" said the owl.  \n   \n",
			want: []string{"  \"Hello,\" said the owl.  "},
		},
		{
			name: "empty",
			in:   "",
			want: []string{},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Paragraphs(tc.in)
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("Paragraphs(%q) = %#v, want %#v", tc.in, got, tc.want)
			}
		})
	}
}
