// Package config provides configuration structures and utilities for tagtree.
// It defines the crawl options populated from CLI flags, the optional YAML
// configuration file with per-site settings, and the XDG paths used for the
// tag database.
package config
