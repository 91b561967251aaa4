package config

import (
	"fmt"
	"os"
	"regexp"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

var bracedVar = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// ExpandEnv substitutes ${VAR} in s. A reference to an unset variable is an
// error listing every missing name. $$ yields a literal $, and any other $
// is kept as written.
func ExpandEnv(s string) (string, error) {
	out, missing := expand(s)
	if err := missingEnv(missing); err != nil {
		return "", err
	}
	return out, nil
}

func expand(s string) (string, []string) {
	const dollar = "\x00HEALTHD_DOLLAR\x00"
	s = strings.ReplaceAll(s, "$$", dollar)

	var missing []string
	s = bracedVar.ReplaceAllStringFunc(s, func(ref string) string {
		name := ref[2 : len(ref)-1]
		v, ok := os.LookupEnv(name)
		if !ok {
			missing = append(missing, name)
		}
		return v
	})
	return strings.ReplaceAll(s, dollar, "$"), missing
}

func missingEnv(names []string) error {
	if len(names) == 0 {
		return nil
	}
	slices.Sort(names)
	return fmt.Errorf("%w: %s", ErrMissingEnv, strings.Join(slices.Compact(names), ", "))
}

// expandNode expands every scalar value under n in place. Mapping keys and
// comments are left alone. A plain scalar whose text changed drops its
// resolved tag so that re-encoding types it by the substituted value.
func expandNode(n *yaml.Node) error {
	var missing []string
	var walk func(*yaml.Node)
	walk = func(n *yaml.Node) {
		switch n.Kind {
		case yaml.DocumentNode, yaml.SequenceNode:
			for _, c := range n.Content {
				walk(c)
			}
		case yaml.MappingNode:
			for i := 1; i < len(n.Content); i += 2 {
				walk(n.Content[i])
			}
		case yaml.ScalarNode:
			v, m := expand(n.Value)
			missing = append(missing, m...)
			if v != n.Value {
				n.Value = v
				if n.Style == 0 {
					n.Tag = ""
				}
			}
		}
	}
	walk(n)
	return missingEnv(missing)
}
