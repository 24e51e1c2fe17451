package robots

import "net/url"

// Authority returns the scheme and host (including any port) of u as a URL
// with path "/". It is the base for robots.txt lookups and for resolving
// relative links found on a page.
func Authority(u *url.URL) *url.URL {
	return &url.URL{
		Scheme: u.Scheme,
		Host:   u.Host,
		Path:   "/",
	}
}

// robotsURL returns the location of the robots.txt file for u.
func robotsURL(u *url.URL) *url.URL {
	return &url.URL{
		Scheme: u.Scheme,
		Host:   u.Host,
		Path:   "/robots.txt",
	}
}
