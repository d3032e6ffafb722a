package convert

// languageAbbrevs maps common shorthand fence tags to the canonical names
// the remote platform accepts.
var languageAbbrevs = map[string]string{
	"":    "plain text",
	"js":  "javascript",
	"py":  "python",
	"ts":  "typescript",
	"cs":  "c#",
	"sh":  "shell",
	"rb":  "ruby",
	"yml": "yaml",
}

// acceptedLanguages is the fixed set of code block language tags the
// remote platform accepts.
var acceptedLanguages = map[string]bool{
	"abap":          true,
	"arduino":       true,
	"bash":          true,
	"basic":         true,
	"c":             true,
	"clojure":       true,
	"coffeescript":  true,
	"c++":           true,
	"c#":            true,
	"css":           true,
	"dart":          true,
	"diff":          true,
	"docker":        true,
	"elixir":        true,
	"elm":           true,
	"erlang":        true,
	"flow":          true,
	"fortran":       true,
	"f#":            true,
	"gherkin":       true,
	"glsl":          true,
	"go":            true,
	"graphql":       true,
	"groovy":        true,
	"haskell":       true,
	"html":          true,
	"java":          true,
	"javascript":    true,
	"json":          true,
	"julia":         true,
	"kotlin":        true,
	"latex":         true,
	"less":          true,
	"lisp":          true,
	"livescript":    true,
	"lua":           true,
	"makefile":      true,
	"markdown":      true,
	"markup":        true,
	"matlab":        true,
	"mermaid":       true,
	"nix":           true,
	"objective-c":   true,
	"ocaml":         true,
	"pascal":        true,
	"perl":          true,
	"php":           true,
	"plain text":    true,
	"powershell":    true,
	"prolog":        true,
	"protobuf":      true,
	"python":        true,
	"r":             true,
	"reason":        true,
	"ruby":          true,
	"rust":          true,
	"sass":          true,
	"scala":         true,
	"scheme":        true,
	"scss":          true,
	"shell":         true,
	"sql":           true,
	"swift":         true,
	"typescript":    true,
	"vb.net":        true,
	"verilog":       true,
	"vhdl":          true,
	"visual basic":  true,
	"webassembly":   true,
	"xml":           true,
	"yaml":          true,
	"java/c/c++/c#": true,
}

// NormalizeLanguage maps a free-form code fence tag to a canonical
// language accepted by the remote platform. Abbreviations expand first,
// then exact membership; anything unrecognized falls back to "plain
// text". Pure and total.
func NormalizeLanguage(tag string) string {
	if canonical, ok := languageAbbrevs[tag]; ok {
		return canonical
	}
	if acceptedLanguages[tag] {
		return tag
	}
	return "plain text"
}
