package host

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// ShowPanel2Path locates the secondary panel flag in the UI configuration.
const ShowPanel2Path = "componentProps.AgentDesktopView.showPanel2"

// ConfigPatch is a partial UI configuration. Nested maps merge key by key;
// any other value replaces what is stored at its path.
type ConfigPatch map[string]any

// UIConfig is the runtime's UI configuration, kept as a JSON document
type UIConfig struct {
	mu  sync.RWMutex
	doc []byte
}

// NewUIConfig returns an empty configuration document
func NewUIConfig() *UIConfig {
	return &UIConfig{doc: []byte("{}")}
}

// UpdateConfig merges patch into the document. Reapplying the same patch
// leaves the document unchanged.
func (c *UIConfig) UpdateConfig(patch ConfigPatch) error {
	var leaves []leaf
	flatten("", map[string]any(patch), &leaves)

	c.mu.Lock()
	defer c.mu.Unlock()

	doc := c.doc
	for _, l := range leaves {
		next, err := sjson.SetBytes(doc, l.path, l.value)
		if err != nil {
			return fmt.Errorf("setting %s: %w", l.path, err)
		}
		doc = next
	}
	c.doc = doc
	return nil
}

// Get reads the value at a gjson path
func (c *UIConfig) Get(path string) gjson.Result {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return gjson.GetBytes(c.doc, path)
}

// Bool reads a boolean flag; missing values read as false
func (c *UIConfig) Bool(path string) bool {
	return c.Get(path).Bool()
}

// JSON returns a copy of the document
func (c *UIConfig) JSON() []byte {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]byte, len(c.doc))
	copy(out, c.doc)
	return out
}

type leaf struct {
	path  string
	value any
}

func flatten(prefix string, m map[string]any, out *[]leaf) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		path := escapeKey(k)
		if prefix != "" {
			path = prefix + "." + path
		}
		switch v := m[k].(type) {
		case ConfigPatch:
			flatten(path, map[string]any(v), out)
		case map[string]any:
			flatten(path, v, out)
		default:
			*out = append(*out, leaf{path: path, value: v})
		}
	}
}

var keyEscaper = strings.NewReplacer(".", `\.`, "*", `\*`, "?", `\?`)

func escapeKey(k string) string {
	return keyEscaper.Replace(k)
}
