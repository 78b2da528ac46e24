package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category   Category
	Message    string
	Detail     string
	Suggestion string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Runtime Errors (E001-E019)
	// ============================================

	"E001": {
		Category:   CategoryRuntime,
		Message:    "Declaration outside a frame",
		Detail:     "Nodes can only be declared between BeginTree and FinishTree.",
		Suggestion: "Call tree.BeginTree() before declaring and tree.FinishTree() after",
	},
	"E002": {
		Category:   CategoryRuntime,
		Message:    "Frame already in progress",
		Detail:     "BeginTree was called before the previous frame was finished.",
		Suggestion: "Pair every BeginTree with exactly one FinishTree",
	},
	"E003": {
		Category: CategoryRuntime,
		Message:  "Frame finished with open scopes",
		Detail:   "FinishTree was called from inside a Nest closure.",
	},
	"E004": {
		Category:   CategoryRuntime,
		Message:    "Key not declared this frame",
		Detail:     "Place can only attach a node that was declared earlier in the same frame.",
		Suggestion: "Declare the node with tree.Declare(key) before placing it",
	},
	"E005": {
		Category: CategoryRuntime,
		Message:  "Node already placed",
		Detail:   "The node already has a parent in this frame.",
	},
	"E006": {
		Category: CategoryRuntime,
		Message:  "Node already nested",
		Detail:   "Nest was called twice for the same node in one frame; the second call would discard the first set of children.",
	},
	"E010": {
		Category: CategoryRuntime,
		Message:  "Stale node handle",
		Detail:   "A handle was used after its node was pruned. Keep the node's Id across frames and resolve it with tree.LookupID.",
	},
	"E011": {
		Category: CategoryRuntime,
		Message:  "Node table corrupted",
		Detail:   "The id index and the slot arena disagree. This is a bug in retree.",
	},
	"E012": {
		Category: CategoryRuntime,
		Message:  "Scope stack corrupted",
		Detail:   "A nest, subtree or reactive scope was closed out of order. This is a bug in retree.",
	},

	// ============================================
	// Config Errors (E120-E129)
	// ============================================

	"E120": {
		Category:   CategoryConfig,
		Message:    "Invalid configuration",
		Detail:     "retree.json could not be read or parsed.",
		Suggestion: "Check that retree.json is valid JSON",
	},
	"E121": {
		Category: CategoryConfig,
		Message:  "Invalid configuration value",
		Detail:   "A configuration value is out of range.",
	},
	"E122": {
		Category: CategoryConfig,
		Message:  "Invalid port",
		Detail:   "The inspector port must be between 0 and 65535.",
	},
	"E123": {
		Category:   CategoryConfig,
		Message:    "Configuration not found",
		Detail:     "No retree.json was found.",
		Suggestion: "Run without --config to use defaults, or create retree.json with 'retree init'",
	},
	"E124": {
		Category:   CategoryConfig,
		Message:    "Configuration already exists",
		Detail:     "retree.json is already present in the target directory.",
		Suggestion: "Pass --force to overwrite it",
	},

	// ============================================
	// CLI Errors (E140-E149)
	// ============================================

	"E140": {
		Category: CategoryCLI,
		Message:  "Invalid flag value",
		Detail:   "A command-line flag has an invalid value.",
	},
	"E141": {
		Category: CategoryCLI,
		Message:  "Inspector failed",
		Detail:   "The inspector HTTP server stopped with an error.",
	},
	"E142": {
		Category: CategoryCLI,
		Message:  "Workload failed",
		Detail:   "The demo workload reported an error while declaring a frame.",
	},
}

// GetAllCodes returns all registered error codes.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}

// Register adds a new error template to the registry.
func Register(code string, template ErrorTemplate) {
	registry[code] = template
}
