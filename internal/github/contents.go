package github

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/cli/go-gh/v2/pkg/api"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const defaultAPIBase = "https://api.github.com"

// maxFileSize bounds puzzle downloads; real puzzle files are a few
// hundred bytes.
const maxFileSize = 64 << 10

// Ref names a file in a GitHub repository.
type Ref struct {
	Owner string
	Repo  string
	Path  string
	// Ref is a branch, tag or commit; empty means the default branch.
	Ref string
}

func (r Ref) String() string {
	s := r.Owner + "/" + r.Repo + ":" + r.Path
	if r.Ref != "" {
		s += "@" + r.Ref
	}
	return s
}

// ParseRef builds a Ref from "owner/name", a path inside the repository
// and an optional git ref.
func ParseRef(repo, path, ref string) (Ref, error) {
	owner, name, ok := strings.Cut(repo, "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return Ref{}, fmt.Errorf("repository must be owner/name, got %q", repo)
	}
	path = strings.Trim(path, "/")
	if path == "" {
		return Ref{}, fmt.Errorf("path must not be empty")
	}
	if strings.Contains(path, "..") {
		return Ref{}, fmt.Errorf("path must not contain '..': %q", path)
	}
	return Ref{Owner: owner, Repo: name, Path: path, Ref: ref}, nil
}

func (r Ref) apiPath() string {
	segments := strings.Split(r.Path, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	p := fmt.Sprintf("repos/%s/%s/contents/%s", url.PathEscape(r.Owner), url.PathEscape(r.Repo), strings.Join(segments, "/"))
	if r.Ref != "" {
		p += "?ref=" + url.QueryEscape(r.Ref)
	}
	return p
}

type contentResponse struct {
	Type     string `json:"type"`
	Encoding string `json:"encoding"`
	Size     int    `json:"size"`
	Content  string `json:"content"`
}

func (c contentResponse) decode(r Ref) ([]byte, error) {
	if c.Type != "file" {
		return nil, fmt.Errorf("%s is a %s, not a file", r, c.Type)
	}
	if c.Size > maxFileSize {
		return nil, fmt.Errorf("%s is %d bytes, larger than %d", r, c.Size, maxFileSize)
	}
	if c.Encoding != "base64" {
		return nil, fmt.Errorf("%s: unsupported content encoding %q", r, c.Encoding)
	}
	data, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(c.Content, "\n", ""))
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", r, err)
	}
	return data, nil
}

func tokenFromEnv() string {
	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		return token
	}
	return os.Getenv("GH_TOKEN")
}

// fetchWithToken reads a file from the REST contents API with a bearer
// token.
func fetchWithToken(ctx context.Context, client *http.Client, base, token string, r Ref) ([]byte, error) {
	if token == "" {
		return nil, &AuthError{Message: "GITHUB_TOKEN or GH_TOKEN environment variable is not set"}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(base, "/")+"/"+r.apiPath(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4*maxFileSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, &NotFoundError{Ref: r}
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, &AuthError{Message: fmt.Sprintf("GitHub API refused the token (status %d)", resp.StatusCode)}
	default:
		return nil, fmt.Errorf("GitHub API error (status %d): %s", resp.StatusCode, string(body))
	}

	var content contentResponse
	if err := json.Unmarshal(body, &content); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return content.decode(r)
}

// fetchWithGh reads a file through the gh CLI's stored credentials.
func fetchWithGh(ctx context.Context, r Ref) ([]byte, error) {
	client, err := api.DefaultRESTClient()
	if err != nil {
		return nil, &AuthError{Message: err.Error()}
	}

	var content contentResponse
	if err := client.DoWithContext(ctx, http.MethodGet, r.apiPath(), nil, &content); err != nil {
		var httpErr *api.HTTPError
		if errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusNotFound {
			return nil, &NotFoundError{Ref: r, cause: err}
		}
		return nil, err
	}
	return content.decode(r)
}

// FetchFile downloads one file from a GitHub repository. A GITHUB_TOKEN
// or GH_TOKEN in the environment is used directly; otherwise the gh CLI
// login is.
func FetchFile(ctx context.Context, r Ref) ([]byte, error) {
	if token := tokenFromEnv(); token != "" {
		return fetchWithToken(ctx, http.DefaultClient, defaultAPIBase, token, r)
	}
	return fetchWithGh(ctx, r)
}
