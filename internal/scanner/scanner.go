package scanner

import (
	"fmt"
	"sort"
)

// Layout names the CSS selectors that locate content on a news site.
type Layout struct {
	Name          string
	LinkSelector  string
	NextSelector  string
	TitleSelector string
	DateSelector  string
	BodySelector  string
}

// Bleeping is the layout of bleepingcomputer.com news listings.
var Bleeping = Layout{
	Name:          "bleepingcomputer",
	LinkSelector:  "ul#bc-home-news-main-wrap li h4 a",
	NextSelector:  `a[aria-label="Next Page"]`,
	TitleSelector: "h1",
	DateSelector:  "li.cz-news-date",
	BodySelector:  "div.articleBody p",
}

// Override replaces every non-empty selector in o.
func (l Layout) Override(o Layout) Layout {
	if o.LinkSelector != "" {
		l.LinkSelector = o.LinkSelector
	}
	if o.NextSelector != "" {
		l.NextSelector = o.NextSelector
	}
	if o.TitleSelector != "" {
		l.TitleSelector = o.TitleSelector
	}
	if o.DateSelector != "" {
		l.DateSelector = o.DateSelector
	}
	if o.BodySelector != "" {
		l.BodySelector = o.BodySelector
	}
	return l
}

// Validate checks that every selector is set.
func (l Layout) Validate() error {
	switch {
	case l.LinkSelector == "":
		return fmt.Errorf("layout %s: link selector is empty", l.Name)
	case l.NextSelector == "":
		return fmt.Errorf("layout %s: next selector is empty", l.Name)
	case l.TitleSelector == "":
		return fmt.Errorf("layout %s: title selector is empty", l.Name)
	case l.DateSelector == "":
		return fmt.Errorf("layout %s: date selector is empty", l.Name)
	case l.BodySelector == "":
		return fmt.Errorf("layout %s: body selector is empty", l.Name)
	}
	return nil
}

// Registry keeps a mapping from layout names to their selectors.
type Registry struct {
	layouts map[string]Layout
}

// NewRegistry builds a registry preloaded with the built-in layouts.
func NewRegistry() *Registry {
	r := &Registry{layouts: map[string]Layout{}}
	r.Register(Bleeping)
	return r
}

// Register adds or replaces a layout.
func (r *Registry) Register(layout Layout) {
	if r.layouts == nil {
		r.layouts = map[string]Layout{}
	}
	r.layouts[layout.Name] = layout
}

// Resolve returns a layout by name or an error if it is absent.
func (r *Registry) Resolve(name string) (Layout, error) {
	if layout, ok := r.layouts[name]; ok {
		return layout, nil
	}
	return Layout{}, fmt.Errorf("layout %s is not registered (known: %v)", name, r.Names())
}

// Names lists registered layouts alphabetically.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.layouts))
	for name := range r.layouts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
