package predictor

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/kstonekuan/splatter-mcp-app/internal/types"
)

// OutputNotFoundError means every resolution strategy was exhausted. It
// carries listings of both scanned roots and the full process output so an
// unexpected output convention can be diagnosed from the error alone.
type OutputNotFoundError struct {
	OutputDirListing string
	WorkDirListing   string
	Stdout           string
	Stderr           string
}

func (e *OutputNotFoundError) Error() string {
	return fmt.Sprintf(
		"sharp prediction did not produce a .ply output file\noutput directory contents:\n%s\nworking directory contents:\n%s\nstdout:\n%s\nstderr:\n%s",
		e.OutputDirListing, e.WorkDirListing, e.Stdout, e.Stderr,
	)
}

var plyPathPattern = regexp.MustCompile(`(?i)(/[^\s"']+\.ply)\b`)

// ResolveArtifact locates the produced .ply file after a successful
// invocation. The sharp CLI's output naming is not contractually reliable,
// so resolution walks an ordered fallback chain of decreasing confidence:
//
//  1. the declared path <outputDir>/<expectedStem>.ply
//  2. a case-insensitive .ply scan of outputDir, preferring a stem match
//     over recency
//  3. the same scan over the whole working tree, for tools that write
//     beside rather than into the declared output directory
//  4. a path extracted from the process logs that exists on disk
func ResolveArtifact(outputDir, workDir, expectedStem string, inv *Invocation) (string, error) {
	exactPath := filepath.Join(outputDir, expectedStem+".ply")
	if _, err := os.Stat(exactPath); err == nil {
		return exactPath, nil
	}

	if candidates := collectPLYPaths(outputDir); len(candidates) > 0 {
		return selectPreferredPath(candidates, expectedStem), nil
	}

	if candidates := collectPLYPaths(workDir); len(candidates) > 0 {
		return selectPreferredPath(candidates, expectedStem), nil
	}

	if path := extractPLYPathFromLogs(inv.Stdout, inv.Stderr); path != "" {
		return path, nil
	}

	return "", &OutputNotFoundError{
		OutputDirListing: formatDirectoryTree(outputDir),
		WorkDirListing:   formatDirectoryTree(workDir),
		Stdout:           inv.Stdout,
		Stderr:           inv.Stderr,
	}
}

// collectPLYPaths gathers every regular file under root whose suffix is
// .ply ignoring case, in deterministic path order.
func collectPLYPaths(root string) []string {
	var paths []string
	filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), ".ply") {
			paths = append(paths, path)
		}

		return nil
	})
	sort.Strings(paths)

	return paths
}

// selectPreferredPath prefers a candidate whose stem equals the expected
// input stem; that keeps a stale file from a previous invocation sharing
// the same temporary root from shadowing the fresh output. Only when no
// stem matches does recency win.
func selectPreferredPath(candidates []string, expectedStem string) string {
	for _, candidate := range candidates {
		if types.Stem(filepath.Base(candidate)) == expectedStem {
			return candidate
		}
	}

	newest := candidates[0]
	var newestModTime int64
	for _, candidate := range candidates {
		info, err := os.Stat(candidate)
		if err != nil {
			continue
		}
		if modTime := info.ModTime().UnixNano(); modTime > newestModTime {
			newest = candidate
			newestModTime = modTime
		}
	}

	return newest
}

// extractPLYPathFromLogs is the last-resort heuristic: scan the combined
// process output for a line that is, or contains, a path ending in .ply
// and accept the first one that exists on disk.
func extractPLYPathFromLogs(stdout, stderr string) string {
	for _, line := range strings.Split(stdout+"\n"+stderr, "\n") {
		normalized := strings.Trim(strings.TrimSpace(line), `"'`)

		if strings.HasSuffix(strings.ToLower(normalized), ".ply") {
			if _, err := os.Stat(normalized); err == nil {
				return normalized
			}
		}

		if match := plyPathPattern.FindStringSubmatch(normalized); match != nil {
			if _, err := os.Stat(match[1]); err == nil {
				return match[1]
			}
		}
	}

	return ""
}

func formatDirectoryTree(root string) string {
	if _, err := os.Stat(root); err != nil {
		return fmt.Sprintf("(missing directory: %s)", root)
	}

	var listed []string
	filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || path == root {
			return nil
		}
		if rel, relErr := filepath.Rel(root, path); relErr == nil {
			listed = append(listed, rel)
		} else {
			listed = append(listed, path)
		}

		return nil
	})
	sort.Strings(listed)

	if len(listed) == 0 {
		return "(empty)"
	}

	return strings.Join(listed, "\n")
}
