package gitrepo

import "testing"

func fakeDatabase() RemoteBranchDatabase {
	return RemoteBranchDatabase{
		"origin": {
			"main":       true,
			"release/12": true,
		},
		"fork": {
			"experiment": true,
		},
	}
}

func TestUpstreamRevspec(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "single_ref", in: "main", want: "origin/main"},
		{name: "unknown_ref", in: "feature", want: "feature"},
		{name: "two_dot_range", in: "main..experiment", want: "origin/main..fork/experiment"},
		{name: "exclusion", in: "main ^experiment", want: "origin/main ^fork/experiment"},
		{name: "caret_suffix", in: "main^", want: "origin/main^"},
		{name: "tilde_suffix", in: "main~3", want: "origin/main~3"},
		{name: "reflog_selector", in: "main@{1}", want: "origin/main@{1}"},
		{name: "slash_branch", in: "release/12", want: "origin/release/12"},
		{name: "empty", in: "", want: ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := UpstreamRevspec(fakeDatabase(), tt.in); got != tt.want {
				t.Fatalf("UpstreamRevspec(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSplitRevspec(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		in           string
		wantIncludes []string
		wantExcludes []string
		wantErr      bool
	}{
		{name: "plain", in: "main", wantIncludes: []string{"main"}},
		{name: "exclusion", in: "main ^release", wantIncludes: []string{"main"}, wantExcludes: []string{"release"}},
		{name: "two_dot", in: "a..b", wantIncludes: []string{"b"}, wantExcludes: []string{"a"}},
		{name: "quoted", in: `"main" ^"release"`, wantIncludes: []string{"main"}, wantExcludes: []string{"release"}},
		{name: "quoted_range", in: `"a".."b"`, wantIncludes: []string{"b"}, wantExcludes: []string{"a"}},
		{name: "quoted_slash_branch", in: `^"release/1.0" main`, wantIncludes: []string{"main"}, wantExcludes: []string{"release/1.0"}},
		{name: "three_dot", in: "a...b", wantErr: true},
		{name: "open_range", in: "..b", wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			includes, excludes, err := splitRevspec(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("splitRevspec(%q) expected error, got none", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("splitRevspec(%q) error = %v", tt.in, err)
			}
			if !equalStrings(includes, tt.wantIncludes) {
				t.Fatalf("splitRevspec(%q) includes = %v, want %v", tt.in, includes, tt.wantIncludes)
			}
			if !equalStrings(excludes, tt.wantExcludes) {
				t.Fatalf("splitRevspec(%q) excludes = %v, want %v", tt.in, excludes, tt.wantExcludes)
			}
		})
	}
}

func equalStrings(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}
