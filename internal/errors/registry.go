package errors

import "sort"

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
	DocURL   string
}

const docBase = "https://vango.dev/docs/splice/errors/"

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Template & Reconcile Errors (E100-E109)
	// ============================================

	"E100": {
		Category: CategoryTemplate,
		Message:  "No template for an owned location",
		Detail:   "The instance was created inside the owned root but the template table has no entry for its location. The table is out of sync with the source.",
		DocURL:   docBase + "E100",
	},
	"E101": {
		Category: CategoryReconcile,
		Message:  "Instance is missing an ExprIdx the template expects",
		Detail:   "The template has a dynamic position that the instance did not provide. The template and the instance were generated from different source.",
		DocURL:   docBase + "E101",
	},
	"E102": {
		Category: CategoryReconcile,
		Message:  "Template is missing an ExprIdx the instance provides",
		Detail:   "The instance provided a dynamic value for a position the template does not have. The template and the instance were generated from different source.",
		DocURL:   docBase + "E102",
	},
	"E103": {
		Category: CategoryReconcile,
		Message:  "ExprIdx kind mismatch",
		Detail:   "The same ExprIdx is a node position in one tree and an attribute position in the other.",
		DocURL:   docBase + "E103",
	},
	"E104": {
		Category: CategoryTemplate,
		Message:  "Stale template",
		Detail:   "The tracker fingerprint of the template differs from the instance. The code at this location changed since the table was generated.",
		DocURL:   docBase + "E104",
	},
	"E105": {
		Category: CategoryReconcile,
		Message:  "Duplicate ExprIdx in instance",
		Detail:   "Two dynamic positions of the instance carry the same ExprIdx.",
		DocURL:   docBase + "E105",
	},

	// ============================================
	// Slot Errors (E110-E119)
	// ============================================

	"E110": {
		Category: CategorySlots,
		Message:  "Unconsumed slot content",
		Detail:   "Content was supplied for a slot the component never declares.",
		DocURL:   docBase + "E110",
	},

	// ============================================
	// Config Errors (E120-E129)
	// ============================================

	"E120": {
		Category: CategoryConfig,
		Message:  "Invalid configuration file",
		Detail:   "splice.json or splice.yaml could not be parsed.",
		DocURL:   docBase + "E120",
	},
	"E121": {
		Category: CategoryConfig,
		Message:  "Invalid configuration value",
		Detail:   "A configuration value is out of range or has the wrong form.",
		DocURL:   docBase + "E121",
	},
	"E122": {
		Category: CategoryConfig,
		Message:  "Configuration file not found",
		Detail:   "No splice.json or splice.yaml was found in the project directory.",
		DocURL:   docBase + "E122",
	},
	"E123": {
		Category: CategoryConfig,
		Message:  "Configuration write failed",
		Detail:   "The configuration could not be written to disk.",
		DocURL:   docBase + "E123",
	},

	// ============================================
	// Artifact Errors (E130-E139)
	// ============================================

	"E130": {
		Category: CategoryArtifact,
		Message:  "Unknown artifact format",
		Detail:   "The template table extension does not name a supported codec (.json, .cbor, .msgpack) or compression (.zst, .lz4).",
		DocURL:   docBase + "E130",
	},
	"E131": {
		Category: CategoryArtifact,
		Message:  "Artifact decode failed",
		Detail:   "The template table could not be decompressed or decoded.",
		DocURL:   docBase + "E131",
	},
	"E132": {
		Category: CategoryArtifact,
		Message:  "Artifact encode failed",
		Detail:   "The template table could not be encoded or compressed.",
		DocURL:   docBase + "E132",
	},
	"E133": {
		Category: CategoryArtifact,
		Message:  "Artifact fetch failed",
		Detail:   "The template table could not be read from its source.",
		DocURL:   docBase + "E133",
	},
	"E134": {
		Category: CategoryArtifact,
		Message:  "Unsupported artifact version",
		Detail:   "The template table was written by an incompatible version.",
		DocURL:   docBase + "E134",
	},

	// ============================================
	// CLI Errors (E150-E159)
	// ============================================

	"E150": {
		Category: CategoryCLI,
		Message:  "Invalid arguments",
		Detail:   "The command was invoked with missing or malformed arguments.",
		DocURL:   docBase + "E150",
	},
	"E151": {
		Category: CategoryCLI,
		Message:  "Server failed",
		Detail:   "The preview server stopped with an error.",
		DocURL:   docBase + "E151",
	},
}

// GetAllCodes returns all registered error codes, sorted.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
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
