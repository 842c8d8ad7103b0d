package config

import (
	"os"
	"strings"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"
)

// loadKDL parses a .cide.kdl file into a Config, starting from Default and
// overriding only the fields the document sets, matching the teacher's
// kdl_config.go node-by-node traversal.
func loadKDL(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errConfig("read_kdl", err, path)
	}

	cfg := Default()
	doc, err := kdl.Parse(strings.NewReader(string(data)))
	if err != nil {
		return nil, errConfig("parse_kdl", err, path)
	}

	for _, n := range doc.Nodes {
		switch nodeName(n) {
		case "project":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "root":
					if s, ok := firstStringArg(cn); ok {
						cfg.Root = s
					}
				case "respect_gitignore":
					if b, ok := firstBoolArg(cn); ok {
						cfg.RespectGitignore = b
					}
				}
			}
		case "ingest":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "max_concurrent_tasks":
					if v, ok := firstIntArg(cn); ok {
						cfg.MaxConcurrentTasks = v
					}
				case "batch_size":
					if v, ok := firstIntArg(cn); ok {
						cfg.BatchSize = v
					}
				}
			}
		case "persistence":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "storage_path":
					if s, ok := firstStringArg(cn); ok {
						cfg.StoragePath = s
					}
				case "include_cached_ids":
					if b, ok := firstBoolArg(cn); ok {
						cfg.IncludeCachedIDs = b
					}
				case "watch_mode":
					if b, ok := firstBoolArg(cn); ok {
						cfg.WatchMode = b
					}
				case "watch_debounce_ms":
					if v, ok := firstIntArg(cn); ok {
						cfg.WatchDebounceMs = v
					}
				}
			}
		case "include":
			cfg.IncludeLanguages = collectStringArgs(n)
		case "exclude":
			cfg.ExcludeLanguages = collectStringArgs(n)
		case "extra_excludes":
			cfg.ExtraExcludes = collectStringArgs(n)
		}
	}

	return cfg, nil
}

func nodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	return n.Name.NodeNameString()
}

func firstStringArg(n *document.Node) (string, bool) {
	if len(n.Arguments) == 0 {
		return "", false
	}
	s, ok := n.Arguments[0].Value.(string)
	return s, ok
}

func firstIntArg(n *document.Node) (int, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func firstBoolArg(n *document.Node) (bool, bool) {
	if len(n.Arguments) == 0 {
		return false, false
	}
	b, ok := n.Arguments[0].Value.(bool)
	return b, ok
}

// collectStringArgs reads a node's inline string arguments, or, if there
// are none, treats each child node's name as a string value — the same
// two KDL shapes the teacher's config loader accepts for list-valued
// blocks like exclude { "pattern" }.
func collectStringArgs(n *document.Node) []string {
	if n == nil {
		return nil
	}
	out := make([]string, 0, len(n.Arguments))
	for _, a := range n.Arguments {
		if s, ok := a.Value.(string); ok {
			out = append(out, s)
		}
	}
	if len(out) == 0 && len(n.Children) > 0 {
		for _, child := range n.Children {
			if s, ok := firstStringArg(child); ok {
				out = append(out, s)
			} else if child.Name != nil {
				if s, ok := child.Name.Value.(string); ok {
					out = append(out, s)
				}
			}
		}
	}
	return out
}
