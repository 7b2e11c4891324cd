// Package gitctx derives the task-list context key from the enclosing git
// repository: org from the remote URL, repo from the worktree directory name,
// branch from HEAD. The store itself treats the key as opaque.
package gitctx

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

// Context identifies a repository working state.
type Context struct {
	Org    string
	Repo   string
	Branch string
}

// Key returns the context key in org:repo:branch form.
func (c Context) Key() string {
	return fmt.Sprintf("%s:%s:%s", c.Org, c.Repo, c.Branch)
}

// FromDir derives the context for the repository enclosing dir.
// Returns an error if dir is not inside a git worktree.
func FromDir(dir string) (Context, error) {
	toplevel, err := runGit(dir, "rev-parse", "--show-toplevel")
	if err != nil {
		return Context{}, fmt.Errorf("not in a git repository: %w", err)
	}

	branch, err := currentBranch(dir)
	if err != nil {
		return Context{}, err
	}

	return Context{
		Org:    orgName(dir),
		Repo:   filepath.Base(toplevel),
		Branch: branch,
	}, nil
}

func currentBranch(dir string) (string, error) {
	name, err := runGit(dir, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", fmt.Errorf("could not resolve HEAD: %w", err)
	}
	if name != "HEAD" {
		return name, nil
	}

	// Detached HEAD: name the state after the commit.
	sha, err := runGit(dir, "rev-parse", "HEAD")
	if err != nil {
		return "", fmt.Errorf("could not resolve HEAD: %w", err)
	}
	return DetachedName(sha), nil
}

// DetachedName returns the branch placeholder used for a detached HEAD.
func DetachedName(sha string) string {
	if len(sha) > 8 {
		sha = sha[:8]
	}
	return "detached-" + sha
}

// orgName resolves the organization from the origin remote, falling back to
// the first configured remote and finally to "local".
func orgName(dir string) string {
	url, err := runGit(dir, "config", "--get", "remote.origin.url")
	if err != nil {
		remotes, rerr := runGit(dir, "remote")
		if rerr != nil || remotes == "" {
			return "local"
		}
		first := strings.SplitN(remotes, "\n", 2)[0]
		url, err = runGit(dir, "config", "--get", "remote."+first+".url")
		if err != nil {
			return "local"
		}
	}

	if org, ok := ParseOrgFromURL(url); ok {
		return org
	}
	return "local"
}

// ParseOrgFromURL extracts the organization segment from a remote URL.
// Handles scp-style SSH URLs (git@host:org/repo.git) and any scheme://host/org/…
// form.
func ParseOrgFromURL(url string) (string, bool) {
	// scp-style: git@host:org/repo.git
	if at := strings.Index(url, "@"); at >= 0 && !strings.Contains(url, "://") {
		if colon := strings.Index(url[at:], ":"); colon >= 0 {
			path := url[at+colon+1:]
			org := strings.SplitN(path, "/", 2)[0]
			if org != "" {
				return org, true
			}
		}
		return "", false
	}

	// scheme://host/org/repo
	if i := strings.Index(url, "://"); i >= 0 {
		rest := url[i+3:]
		if slash := strings.Index(rest, "/"); slash >= 0 {
			org := strings.SplitN(rest[slash+1:], "/", 2)[0]
			if org != "" {
				return org, true
			}
		}
	}
	return "", false
}

func runGit(dir string, args ...string) (string, error) {
	cmd := exec.Command("git", append([]string{"-C", dir}, args...)...)
	out, err := cmd.Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}
