package gitctx

import "testing"

func TestParseOrgFromURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
		org  string
		ok   bool
	}{
		{"github ssh", "git@github.com:acme/widgets.git", "acme", true},
		{"github https", "https://github.com/acme/widgets.git", "acme", true},
		{"gitlab https", "https://gitlab.com/team/infra", "team", true},
		{"generic ssh scheme", "ssh://git@bitbucket.org/team/repo.git", "team", true},
		{"bare host", "https://github.com", "", false},
		{"trailing slash only", "https://github.com/", "", false},
		{"scp no path", "git@github.com:", "", false},
		{"not a url", "/srv/git/repo.git", "", false},
		{"empty", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			org, ok := ParseOrgFromURL(tt.url)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if org != tt.org {
				t.Errorf("org = %q, want %q", org, tt.org)
			}
		})
	}
}

func TestKey(t *testing.T) {
	c := Context{Org: "acme", Repo: "widgets", Branch: "feature/undo"}
	if got := c.Key(); got != "acme:widgets:feature/undo" {
		t.Errorf("Key() = %q", got)
	}
}

func TestDetachedName(t *testing.T) {
	if got := DetachedName("0123456789abcdef"); got != "detached-01234567" {
		t.Errorf("DetachedName = %q", got)
	}
	// Short input passes through untruncated.
	if got := DetachedName("abc"); got != "detached-abc" {
		t.Errorf("DetachedName = %q", got)
	}
}
