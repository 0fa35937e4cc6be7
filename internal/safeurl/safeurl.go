package safeurl

import (
	"fmt"
	"net/url"
)

// Check explains why u is not a usable http(s) source URL, or returns nil.
// Used to reject file://, ftp://, and other schemes that could read local files.
func Check(u string) error {
	parsed, err := url.Parse(u)
	if err != nil {
		return err
	}
	if s := parsed.Scheme; s != "http" && s != "https" {
		return fmt.Errorf("%q: scheme must be http or https", u)
	}
	if parsed.Host == "" {
		return fmt.Errorf("%q: missing host", u)
	}
	return nil
}
