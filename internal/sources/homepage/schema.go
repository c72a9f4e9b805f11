package homepage

// Homepage (gethomepage.dev) keeps its dashboard in YAML files whose
// group and entry names are map keys, hence the nested map shapes.

// ServicesConfig is services.yaml:
//
//	- Group:
//	    - Service Name:
//	        href: https://service.domain.ext
type ServicesConfig []map[string][]map[string]ServiceProps

// ServiceProps holds the service fields newtab reads. Widgets, pings and
// the like are ignored.
type ServiceProps struct {
	Href        string `yaml:"href"`
	Icon        string `yaml:"icon,omitempty"`
	Description string `yaml:"description,omitempty"`
}

// BookmarksConfig is bookmarks.yaml:
//
//	- Category:
//	    - Bookmark Name:
//	        - abbr: BN
//	          href: https://example.com
type BookmarksConfig []map[string][]map[string][]BookmarkEntry

// BookmarkEntry is the single property block under a bookmark name.
type BookmarkEntry struct {
	Icon string `yaml:"icon,omitempty"`
	Abbr string `yaml:"abbr,omitempty"`
	Href string `yaml:"href"`
}
