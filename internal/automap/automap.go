// Package automap proposes an initial header -> field mapping for an import.
// The proposal is a heuristic; operators are expected to correct it.
package automap

import (
	"strings"

	"github.com/BartekS5/assetimport/internal/schema"
	"github.com/BartekS5/assetimport/pkg/logger"
	"github.com/BartekS5/assetimport/pkg/models"
)

// Collision records headers that competed for the same field. Headers[0] won.
type Collision struct {
	Path    string
	Headers []string
}

type Proposal struct {
	Mapping    models.ColumnMapping
	Collisions []Collision
}

type tier int

const (
	byPath tier = iota
	byLabel
	byLastSegment
)

// Propose maps each header to the first field whose normalized path, label or
// last path segment equals the normalized header, in that order of preference.
// A header whose candidate field is already taken stays unmapped and is
// reported as a collision.
func Propose(headers []string, fields []schema.FieldDescriptor) Proposal {
	index := [3]map[string]string{{}, {}, {}}
	for _, f := range fields {
		keys := [3]string{Normalize(f.Path), Normalize(f.Label), Normalize(lastSegment(f.Path))}
		for t, k := range keys {
			if k == "" {
				continue
			}
			if _, seen := index[t][k]; !seen {
				index[t][k] = f.Path
			}
		}
	}

	p := Proposal{Mapping: models.ColumnMapping{}}
	claimedBy := map[string]string{}
	collisions := map[string]*Collision{}
	var order []string

	for _, h := range headers {
		key := Normalize(h)
		if key == "" {
			continue
		}

		path, ok := match(index, key)
		if !ok {
			continue
		}

		if owner, taken := claimedBy[path]; taken {
			c, exists := collisions[path]
			if !exists {
				c = &Collision{Path: path, Headers: []string{owner}}
				collisions[path] = c
				order = append(order, path)
			}
			c.Headers = append(c.Headers, h)
			continue
		}

		claimedBy[path] = h
		p.Mapping[h] = path
	}

	for _, path := range order {
		c := collisions[path]
		logger.Warnf("auto-map collision on %s: headers %s all match, kept %q",
			path, strings.Join(quoteAll(c.Headers), ", "), c.Headers[0])
		p.Collisions = append(p.Collisions, *c)
	}
	return p
}

func match(index [3]map[string]string, key string) (string, bool) {
	for _, t := range []tier{byPath, byLabel, byLastSegment} {
		if path, ok := index[t][key]; ok {
			return path, true
		}
	}
	return "", false
}

func quoteAll(ss []string) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = `"` + s + `"`
	}
	return out
}
