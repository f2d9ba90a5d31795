package prompt

import (
	_ "embed"
	"strings"
)

//go:embed template/emily.txt
var emilyRaw string

// Acknowledgement is the primed assistant reply that completes the persona
// preamble pair. It is fixed across sessions.
const Acknowledgement = "Understood. I am Emily, ready to assist with IDURAR ERP/CRM tasks."

// Persona returns the trimmed system prompt establishing the assistant's
// identity and capabilities. Safe to call concurrently; the embed is
// compile-time and trimming is cheap.
func Persona() string {
	return strings.TrimSpace(emilyRaw)
}
