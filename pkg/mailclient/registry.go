package mailclient

import (
	_ "embed"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultID is the descriptor used when no valid preference exists.
const DefaultID = "default"

const (
	placeholderRecipient = "{recipient}"
	placeholderSubject   = "{subject}"
)

//go:embed clients.yaml
var defaultClients []byte

// Descriptor describes one external mail client.
type Descriptor struct {
	ID          string `yaml:"id" json:"id"`
	Label       string `yaml:"label" json:"label"`
	URLTemplate string `yaml:"url_template" json:"url_template"`
}

// Compose substitutes the escaped recipient and subject into the template.
func (d Descriptor) Compose(recipient, subject string) string {
	return strings.NewReplacer(
		placeholderRecipient, Escape(recipient),
		placeholderSubject, Escape(subject),
	).Replace(d.URLTemplate)
}

// Escape percent-encodes s for a deep link query. Spaces become %20 and
// "@" stays literal, which every supported composer accepts.
func Escape(s string) string {
	e := url.QueryEscape(s)
	e = strings.ReplaceAll(e, "+", "%20")
	return strings.ReplaceAll(e, "%40", "@")
}

// Registry is the static, ordered set of supported mail clients.
type Registry struct {
	clients []Descriptor
	byID    map[string]int
}

type registryFile struct {
	Clients []Descriptor `yaml:"clients"`
}

// ParseRegistry reads a registry from YAML.
func ParseRegistry(data []byte) (*Registry, error) {
	var f registryFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.Join(ErrInvalidRegistry, err)
	}
	return NewRegistry(f.Clients...)
}

// LoadRegistry reads a registry file. An empty path returns the built-in
// registry.
func LoadRegistry(path string) (*Registry, error) {
	if path == "" {
		return DefaultRegistry(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Join(ErrInvalidRegistry, err)
	}
	return ParseRegistry(data)
}

// DefaultRegistry returns the built-in registry.
func DefaultRegistry() *Registry {
	r, err := ParseRegistry(defaultClients)
	if err != nil {
		panic(err)
	}
	return r
}

// NewRegistry validates the descriptors. IDs must be unique, every template
// must carry the subject placeholder and a "default" entry must exist.
func NewRegistry(clients ...Descriptor) (*Registry, error) {
	r := &Registry{byID: make(map[string]int, len(clients))}
	for _, c := range clients {
		c.ID = strings.TrimSpace(c.ID)
		switch {
		case c.ID == "":
			return nil, fmt.Errorf("%w: client without id", ErrInvalidRegistry)
		case !strings.Contains(c.URLTemplate, placeholderSubject):
			return nil, fmt.Errorf("%w: client %q has no %s placeholder", ErrInvalidRegistry, c.ID, placeholderSubject)
		}
		if _, dup := r.byID[c.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate client %q", ErrInvalidRegistry, c.ID)
		}
		if c.Label == "" {
			c.Label = c.ID
		}
		r.byID[c.ID] = len(r.clients)
		r.clients = append(r.clients, c)
	}
	if _, ok := r.byID[DefaultID]; !ok {
		return nil, fmt.Errorf("%w: no %q client", ErrInvalidRegistry, DefaultID)
	}
	return r, nil
}

// Lookup returns the descriptor with id.
func (r *Registry) Lookup(id string) (Descriptor, bool) {
	i, ok := r.byID[id]
	if !ok {
		return Descriptor{}, false
	}
	return r.clients[i], true
}

// Default returns the fallback descriptor.
func (r *Registry) Default() Descriptor {
	return r.clients[r.byID[DefaultID]]
}

// Clients returns the descriptors in configuration order.
func (r *Registry) Clients() []Descriptor {
	out := make([]Descriptor, len(r.clients))
	copy(out, r.clients)
	return out
}
