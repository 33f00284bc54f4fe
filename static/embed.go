// Package static embeds the editor page assets.
package static

import "embed"

//go:generate sh vendor.sh

//go:embed dist
var FS embed.FS

// DatastarCDN serves the datastar bundle when dist/datastar.js has not been
// vendored.
const DatastarCDN = "https://cdn.jsdelivr.net/gh/starfederation/datastar@1.0.0/bundles/datastar.js"
