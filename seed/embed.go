// Package seed holds the default demo data loaded by "movieweb seed".
package seed

import _ "embed"

//go:embed seed.yaml
var Default []byte
