package gitrepo

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/go-git/go-git/v5/plumbing/transport/ssh"

	"github.com/protodoc/protodoc/internal/config"
	"github.com/protodoc/protodoc/internal/logfields"
)

// Client handles Git operations for the API-definition repository.
type Client struct {
	workspaceDir string
	buildCfg     *config.BuildConfig // optional build config for strategy flags
	inRetry      bool                // internal guard to avoid nested retry wrapping
}

// Checkout describes a synced repository on disk.
type Checkout struct {
	Path   string
	Commit string
}

// NewClient creates a new Git client with the specified workspace directory
func NewClient(workspaceDir string) *Client { return &Client{workspaceDir: workspaceDir} }

// WithBuildConfig attaches build configuration to the client (fluent helper).
func (c *Client) WithBuildConfig(cfg *config.BuildConfig) *Client { c.buildCfg = cfg; return c }

// Clone clones the repository to the workspace (with retry wrapper if enabled).
func (c *Client) Clone(repo config.Repository) (Checkout, error) {
	if c.inRetry {
		return c.cloneOnce(repo)
	}
	return c.withRetry("clone", repo.Name, func() (Checkout, error) { return c.cloneOnce(repo) })
}

func (c *Client) cloneOnce(repo config.Repository) (Checkout, error) {
	repoPath := filepath.Join(c.workspaceDir, repo.Name)
	slog.Debug("Cloning repository", logfields.URL(repo.URL), logfields.Repository(repo.Name), slog.String("branch", repo.Branch), logfields.Path(repoPath))
	if err := os.RemoveAll(repoPath); err != nil {
		return Checkout{}, fmt.Errorf("failed to remove existing directory: %w", err)
	}

	cloneOptions := &git.CloneOptions{URL: repo.URL, Progress: os.Stdout}
	if repo.Branch != "" {
		cloneOptions.ReferenceName = plumbing.ReferenceName("refs/heads/" + repo.Branch)
		cloneOptions.SingleBranch = true
	}
	if c.buildCfg != nil && c.buildCfg.ShallowDepth > 0 {
		cloneOptions.Depth = c.buildCfg.ShallowDepth
	}
	if repo.Auth != nil {
		auth, err := c.getAuthentication(repo.Auth)
		if err != nil {
			return Checkout{}, fmt.Errorf("failed to setup authentication: %w", err)
		}
		cloneOptions.Auth = auth
	}

	repository, err := git.PlainClone(repoPath, false, cloneOptions)
	if err != nil {
		return Checkout{}, classifyCloneError(repo.URL, err)
	}

	result := Checkout{Path: repoPath}
	if ref, herr := repository.Head(); herr == nil {
		result.Commit = ref.Hash().String()
		slog.Info("Repository cloned successfully", logfields.Repository(repo.Name), logfields.URL(repo.URL), logfields.Commit(shortHash(result.Commit)), logfields.Path(repoPath))
	} else {
		slog.Info("Repository cloned successfully", logfields.Repository(repo.Name), logfields.URL(repo.URL), logfields.Path(repoPath))
	}
	return result, nil
}

// Update updates an existing repository or clones if missing.
func (c *Client) Update(repo config.Repository) (Checkout, error) {
	if c.inRetry {
		return c.updateOnce(repo)
	}
	return c.withRetry("update", repo.Name, func() (Checkout, error) { return c.updateOnce(repo) })
}

func (c *Client) updateOnce(repo config.Repository) (Checkout, error) {
	repoPath := filepath.Join(c.workspaceDir, repo.Name)
	if _, err := os.Stat(filepath.Join(repoPath, ".git")); err != nil { // missing => clone
		slog.Debug("Repository missing, cloning", logfields.Repository(repo.Name))
		return c.cloneOnce(repo)
	}
	return c.updateExisting(repoPath, repo)
}

func (c *Client) updateExisting(repoPath string, repo config.Repository) (Checkout, error) {
	repository, err := git.PlainOpen(repoPath)
	if err != nil {
		return Checkout{}, fmt.Errorf("failed to open repository: %w", err)
	}

	worktree, err := repository.Worktree()
	if err != nil {
		return Checkout{}, fmt.Errorf("failed to get worktree: %w", err)
	}

	pullOptions := &git.PullOptions{RemoteName: "origin"}
	if repo.Auth != nil {
		auth, aerr := c.getAuthentication(repo.Auth)
		if aerr != nil {
			return Checkout{}, fmt.Errorf("failed to setup authentication: %w", aerr)
		}
		pullOptions.Auth = auth
	}

	err = worktree.Pull(pullOptions)
	if err != nil && err != git.NoErrAlreadyUpToDate {
		return Checkout{}, classifyFetchError(repo.URL, err)
	}

	result := Checkout{Path: repoPath}
	if ref, herr := repository.Head(); herr == nil {
		result.Commit = ref.Hash().String()
	}

	if err == git.NoErrAlreadyUpToDate {
		slog.Info("Repository already up to date", logfields.Repository(repo.Name), logfields.Commit(shortHash(result.Commit)))
	} else {
		slog.Info("Repository updated successfully", logfields.Repository(repo.Name), logfields.Commit(shortHash(result.Commit)))
	}
	return result, nil
}

// getAuthentication creates authentication based on config
func (c *Client) getAuthentication(auth *config.AuthConfig) (transport.AuthMethod, error) {
	switch auth.Type {
	case "none", "":
		return nil, nil // No authentication needed for public repositories

	case "ssh":
		keyPath := auth.KeyPath
		if keyPath == "" {
			keyPath = filepath.Join(os.Getenv("HOME"), ".ssh", "id_rsa")
		}
		publicKeys, err := ssh.NewPublicKeysFromFile("git", keyPath, "")
		if err != nil {
			return nil, fmt.Errorf("failed to load SSH key from %s: %w", keyPath, err)
		}
		return publicKeys, nil

	case "token":
		if auth.Token == "" {
			return nil, fmt.Errorf("token authentication requires a token")
		}
		return &http.BasicAuth{
			Username: "token", // GitHub/GitLab use "token" as username
			Password: auth.Token,
		}, nil

	case "basic":
		if auth.Username == "" || auth.Password == "" {
			return nil, fmt.Errorf("basic authentication requires username and password")
		}
		return &http.BasicAuth{
			Username: auth.Username,
			Password: auth.Password,
		}, nil

	default:
		return nil, fmt.Errorf("unsupported authentication type: %s", auth.Type)
	}
}

// EnsureWorkspace creates the workspace directory if it doesn't exist
func (c *Client) EnsureWorkspace() error {
	if err := os.MkdirAll(c.workspaceDir, 0o750); err != nil {
		return fmt.Errorf("failed to create workspace directory: %w", err)
	}
	return nil
}

func shortHash(hash string) string {
	if len(hash) > 8 {
		return hash[:8]
	}
	return hash
}
