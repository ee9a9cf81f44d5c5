package download

import (
	"crypto/md5"
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strings"
)

var (
	unsafeChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f\s]`)
	underscores = regexp.MustCompile(`_+`)
)

// FormatSize converts bytes to human-readable format
func FormatSize(bytes int64) string {
	if bytes < 1024 {
		return fmt.Sprintf("%dB", bytes)
	} else if bytes < 1024*1024 {
		return fmt.Sprintf("%.1fKB", float64(bytes)/1024)
	} else {
		return fmt.Sprintf("%.1fMB", float64(bytes)/(1024*1024))
	}
}

// ScratchPattern builds an os.CreateTemp pattern for an asset URL, e.g.
// "jshunt-example_com-app-*.js". The random part is supplied by CreateTemp.
func ScratchPattern(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		hash := md5.Sum([]byte(rawURL))
		return fmt.Sprintf("jshunt-%x-*.js", hash[:6])
	}

	host := strings.ReplaceAll(u.Hostname(), ".", "_")
	base := strings.TrimSuffix(path.Base(u.Path), path.Ext(u.Path))
	if base == "" || base == "/" || base == "." {
		base = "index"
	}

	name := sanitizeFilename(host + "-" + base)
	if len(name) > 80 {
		hash := md5.Sum([]byte(rawURL))
		name = name[:64] + fmt.Sprintf("_%x", hash[:4])
	}
	return "jshunt-" + name + "-*.js"
}

// sanitizeFilename removes or replaces unsafe filename characters
func sanitizeFilename(name string) string {
	name = unsafeChars.ReplaceAllString(name, "_")
	name = underscores.ReplaceAllString(name, "_")
	return strings.Trim(name, ". _")
}
