package site

import (
	_ "embed"
)

//go:embed static/index.md
var indexMarkdown []byte
