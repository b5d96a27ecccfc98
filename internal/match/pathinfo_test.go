package match

import "testing"

func TestParsePathHint(t *testing.T) {
	cases := []struct {
		name string
		path string
		want PathHint
	}{
		{
			name: "dated layout",
			path: "2024-05/003.some-library.md",
			want: PathHint{Year: 2024, Month: 5, Sequence: 3, Name: "some-library"},
		},
		{
			name: "nested under content root",
			path: "weekly/2023-11/012.release-notes.md",
			want: PathHint{Year: 2023, Month: 11, Sequence: 12, Name: "release-notes"},
		},
		{
			name: "no sequence prefix",
			path: "2024-05/some-library.md",
			want: PathHint{Year: 2024, Month: 5, Name: "some-library"},
		},
		{
			name: "flat file without date directory",
			path: "drafts/notes.md",
			want: PathHint{Name: "notes"},
		},
		{
			name: "windows separators",
			path: `2024-05\003.some-library.md`,
			want: PathHint{Year: 2024, Month: 5, Sequence: 3, Name: "some-library"},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ParsePathHint(tc.path); got != tc.want {
				t.Fatalf("ParsePathHint(%q) = %+v, want %+v", tc.path, got, tc.want)
			}
		})
	}
}
