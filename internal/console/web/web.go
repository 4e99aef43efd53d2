// Package web holds the dashboard page served at the console root.
package web

import _ "embed"

//go:embed index.html
var Index []byte
