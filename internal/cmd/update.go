package cmd

import (
	"encoding/json"
	"fmt"
	"net/http"
	"runtime"
	"strings"
	"time"

	"github.com/rkirkendall/nano-canvas/internal/version"
)

const repoOwner = "rkirkendall"
const repoName = "nano-canvas"

// releasesURL is a var so tests can point it at a local server.
var releasesURL = fmt.Sprintf("https://api.github.com/repos/%s/%s/releases/latest", repoOwner, repoName)

func latestVersionTag() (string, error) {
	client := &http.Client{Timeout: 5 * time.Second}
	req, err := http.NewRequest(http.MethodGet, releasesURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "nano-canvas-updater")
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("release lookup failed: %s", resp.Status)
	}
	var o struct {
		Tag string `json:"tag_name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&o); err != nil {
		return "", err
	}
	return strings.TrimSpace(o.Tag), nil
}

// updateHint returns install instructions when tag is newer than the running
// build, or "" when there is nothing to suggest. Dev builds never update.
func updateHint(current, tag, goos string) string {
	if current == "dev" || tag == "" || tag == current {
		return ""
	}
	switch goos {
	case "darwin", "linux":
		return fmt.Sprintf("curl -fsSL https://raw.githubusercontent.com/%s/%s/main/scripts/install.sh | bash", repoOwner, repoName)
	case "windows":
		return fmt.Sprintf("powershell -ExecutionPolicy Bypass -c \"iwr https://raw.githubusercontent.com/%s/%s/main/scripts/install.ps1 -UseB | iex\"", repoOwner, repoName)
	}
	return ""
}

// maybeSelfUpdate checks GitHub for a newer release and prints an inline hint.
// The binary is never replaced.
func maybeSelfUpdate(out interface{ Println(a ...any) }) {
	if version.Version == "dev" {
		return
	}
	tag, err := latestVersionTag()
	if err != nil {
		return
	}
	if hint := updateHint(version.Version, tag, runtime.GOOS); hint != "" {
		out.Println("A newer nano-canvas is available (", tag, ") - update with:")
		out.Println("  ", hint)
	}
}
