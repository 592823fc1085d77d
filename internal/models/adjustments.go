// Package models holds the serialized shapes of operator-facing files.
package models

// MCPAdjustments is the YAML adjustments file: which routes to expose and
// which descriptions to rewrite. Both sections are optional.
type MCPAdjustments struct {
	Descriptions []RouteDescription `yaml:"descriptions,omitempty"`
	Routes       []RouteSelection   `yaml:"routes,omitempty"`
}

// RouteSelection allow-lists the methods of one path. Any route absent from
// a non-empty selection is not exposed.
type RouteSelection struct {
	Path    string   `yaml:"path"`
	Methods []string `yaml:"methods"`
}

// RouteDescription groups description overrides for one path.
type RouteDescription struct {
	Path    string             `yaml:"path"`
	Updates []RouteFieldUpdate `yaml:"updates"`
}

// RouteFieldUpdate replaces the description of one method on the route.
type RouteFieldUpdate struct {
	Method         string `yaml:"method"`
	NewDescription string `yaml:"new_description"`
}
