// Package dashboard embeds the request log dashboard served under /__ui.
package dashboard

import "embed"

// DistFS holds the dashboard assets under "dist".
//
//go:embed dist
var DistFS embed.FS
