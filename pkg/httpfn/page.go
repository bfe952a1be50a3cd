package httpfn

import _ "embed"

// errorPage is the static failure document served to HTML-typed handlers.
//
//go:embed error.html
var errorPage []byte
