package metadata

import (
	"net/url"
	"regexp"
	"strings"
)

var cidPattern = regexp.MustCompile("(Qm[1-9A-HJ-NP-Za-km-z]{44}.*$)")

func IsUrl(uri string) bool {
	u, err := url.Parse(uri)
	return err == nil && u.Scheme != "" && u.Host != ""
}

func IsIpfs(uri string) bool {
	if GetIpfsPath(uri) != "" {
		return true
	}

	u, err := url.Parse(uri)
	return err == nil && u.Scheme == "ipfs"
}

// GetIpfsPath returns the content path ("<cid>/<file>") of an ipfs uri, or an
// empty string when uri does not point into ipfs.
func GetIpfsPath(uri string) string {
	if parts := cidPattern.FindStringSubmatch(uri); len(parts) == 2 {
		return parts[1]
	}

	if strings.HasPrefix(uri, "ipfs://") {
		return strings.TrimPrefix(strings.TrimPrefix(uri, "ipfs://"), "ipfs/")
	}

	return ""
}

// GatewayUrls expands an ipfs uri into one url per gateway host, in order.
func GatewayUrls(uri string, hosts []string) []string {
	path := GetIpfsPath(uri)
	if path == "" {
		return nil
	}

	urls := make([]string, 0, len(hosts))
	for _, host := range hosts {
		urls = append(urls, strings.TrimSuffix(host, "/")+"/ipfs/"+path)
	}

	return urls
}
