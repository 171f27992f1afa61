package miniapp

import "embed"

// ContentFS holds the bundled course files, used when CONTENT_PATH does not exist.
//
//go:embed content
var ContentFS embed.FS
