package icon

import (
	"bufio"
	"bytes"
	"fmt"
	"path"
	"regexp"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// ParseManifest reads an icon manifest. Three layouts are accepted: a JSON
// array of path strings, a repository tree listing with "tree[].path", and
// newline-separated plain text.
//
// Postcondition: an empty payload yields no paths and no error.
func ParseManifest(data []byte) ([]string, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}

	if trimmed[0] == '[' || trimmed[0] == '{' {
		if !gjson.ValidBytes(trimmed) {
			return nil, fmt.Errorf("icon manifest: invalid JSON")
		}
		root := gjson.ParseBytes(trimmed)
		var list gjson.Result
		if root.IsArray() {
			list = root
		} else if tree := root.Get("tree"); tree.IsArray() {
			list = tree
		} else {
			return nil, fmt.Errorf("icon manifest: object without a tree array")
		}
		var paths []string
		list.ForEach(func(_, v gjson.Result) bool {
			p := v.String()
			if v.IsObject() {
				p = v.Get("path").String()
			}
			if p != "" {
				paths = append(paths, p)
			}
			return true
		})
		return paths, nil
	}

	var paths []string
	scanner := bufio.NewScanner(bytes.NewReader(trimmed))
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			paths = append(paths, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("icon manifest: %w", err)
	}
	return paths, nil
}

// costumeFile matches costume icons. Shiny icons carry a further "_shiny"
// token before the extension and never match.
var costumeFile = regexp.MustCompile(`^pokemon_icon_(\d{3})_(\d{2})_(\d{2})\.png$`)

// CostumeAsset is one costume icon found in a manifest.
type CostumeAsset struct {
	Dex int
	// Form is the two-digit form token of the file name.
	Form    string
	Costume int
	Path    string
}

// BaseAsset returns the asset key of the costume-less icon the costume
// belongs to, e.g. "pokemon_icon_025_00".
func (a CostumeAsset) BaseAsset() string {
	return fmt.Sprintf("pokemon_icon_%03d_%s", a.Dex, a.Form)
}

// CostumeAssets extracts costume icons from manifest paths. Each
// (dex, form, costume) triple is reported once, in manifest order.
func CostumeAssets(paths []string) []CostumeAsset {
	type triple struct {
		dex     int
		form    string
		costume int
	}
	seen := make(map[triple]bool)
	var out []CostumeAsset
	for _, p := range paths {
		m := costumeFile.FindStringSubmatch(path.Base(p))
		if m == nil {
			continue
		}
		dex, _ := strconv.Atoi(m[1])
		costume, _ := strconv.Atoi(m[3])
		key := triple{dex: dex, form: m[2], costume: costume}
		if seen[key] || costume == 0 {
			continue
		}
		seen[key] = true
		out = append(out, CostumeAsset{Dex: dex, Form: m[2], Costume: costume, Path: p})
	}
	return out
}
