// Package stdlib embeds the language primers shown by the REPL.
package stdlib

import _ "embed"

//go:generate cp ../../PRIMER.md .
//go:generate cp ../../PRIMER_COMPACT.md .

//go:embed PRIMER.md
var Primer string

//go:embed PRIMER_COMPACT.md
var PrimerCompact string
