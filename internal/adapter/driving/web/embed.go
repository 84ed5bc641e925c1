package web

import _ "embed"

// usageMarkdown is the help text shown on the landing page.
//
//go:embed content/usage.md
var usageMarkdown string
