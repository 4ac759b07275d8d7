package script

import (
	"embed"
	"encoding/json"
	"fmt"
)

//go:embed data/*.json
var dataFS embed.FS

// DefaultScriptID is used when a room is created without a script
const DefaultScriptID = "sample_trouble"

type scriptFile struct {
	ID               string             `json:"id"`
	Name             string             `json:"name"`
	Version          string             `json:"version"`
	Roles            []string           `json:"roles"`
	TeamDistribution map[int]TeamCounts `json:"team_distribution"`
	Rules            Rules              `json:"rules"`
}

// Catalog is the read-only set of known scripts
type Catalog struct {
	scripts   map[string]*Script
	order     []string
	defaultID string
}

// NewCatalog builds a catalog from already-constructed scripts. The first script is the default.
func NewCatalog(scripts ...*Script) *Catalog {
	c := &Catalog{scripts: make(map[string]*Script)}
	for _, s := range scripts {
		if s.byID == nil {
			s.byID = make(map[string]*Role, len(s.Roles))
			for _, r := range s.Roles {
				s.byID[r.ID] = r
			}
		}
		if _, dup := c.scripts[s.ID]; !dup {
			c.order = append(c.order, s.ID)
		}
		c.scripts[s.ID] = s
	}
	if len(c.order) > 0 {
		c.defaultID = c.order[0]
	}
	return c
}

// LoadBuiltin loads the embedded role and script tables
func LoadBuiltin() (*Catalog, error) {
	roleData, err := dataFS.ReadFile("data/roles.json")
	if err != nil {
		return nil, fmt.Errorf("reading roles.json: %w", err)
	}
	var roles []*Role
	if err := json.Unmarshal(roleData, &roles); err != nil {
		return nil, fmt.Errorf("parsing roles.json: %w", err)
	}
	roleByID := make(map[string]*Role, len(roles))
	for _, r := range roles {
		roleByID[r.ID] = r
	}

	scriptData, err := dataFS.ReadFile("data/scripts.json")
	if err != nil {
		return nil, fmt.Errorf("reading scripts.json: %w", err)
	}
	var files []scriptFile
	if err := json.Unmarshal(scriptData, &files); err != nil {
		return nil, fmt.Errorf("parsing scripts.json: %w", err)
	}

	scripts := make([]*Script, 0, len(files))
	for _, f := range files {
		s := &Script{
			ID:               f.ID,
			Name:             f.Name,
			Version:          f.Version,
			TeamDistribution: f.TeamDistribution,
			Rules:            f.Rules,
		}
		for _, id := range f.Roles {
			r, ok := roleByID[id]
			if !ok {
				return nil, fmt.Errorf("script %s: unknown role %q", f.ID, id)
			}
			s.Roles = append(s.Roles, r)
		}
		scripts = append(scripts, s)
	}
	c := NewCatalog(scripts...)
	if _, ok := c.scripts[DefaultScriptID]; ok {
		c.defaultID = DefaultScriptID
	}
	return c, nil
}

// MustLoadBuiltin is LoadBuiltin for static data that is known to be valid
func MustLoadBuiltin() *Catalog {
	c, err := LoadBuiltin()
	if err != nil {
		panic(err)
	}
	return c
}

// SetDefault changes the script returned for an empty id
func (c *Catalog) SetDefault(id string) bool {
	if _, ok := c.scripts[id]; !ok {
		return false
	}
	c.defaultID = id
	return true
}

// Get returns the script for id; an empty id yields the default script
func (c *Catalog) Get(id string) (*Script, bool) {
	if id == "" {
		id = c.defaultID
	}
	s, ok := c.scripts[id]
	return s, ok
}

// List returns summaries of every script in catalog order
func (c *Catalog) List() []Summary {
	out := make([]Summary, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.scripts[id].Summary())
	}
	return out
}
