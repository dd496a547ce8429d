package errors

// Template defines a registered error type.
type Template struct {
	Category   Category
	Message    string
	Detail     string
	Suggestion string
}

// registry maps error codes to their templates.
var registry = map[string]Template{
	// Configuration (E100-E199)

	"E100": {
		Category:   CategoryConfig,
		Message:    "Configuration file not found",
		Detail:     "No ssg.json was found in the current directory or any parent directory.",
		Suggestion: "Create an ssg.json at the project root or pass --config.",
	},
	"E101": {
		Category: CategoryConfig,
		Message:  "Invalid configuration",
		Detail:   "A configuration value is outside its allowed set.",
	},
	"E102": {
		Category: CategoryConfig,
		Message:  "Failed to parse configuration",
		Detail:   "ssg.json is not valid JSON.",
	},

	// Route enumeration (E200-E299)

	"E200": {
		Category:   CategoryRoutes,
		Message:    "Static path provider failed",
		Detail:     "A dynamic route's getStaticPaths returned an error. The build cannot know which pages to produce.",
		Suggestion: "Check the static paths function of the route shown above.",
	},
	"E201": {
		Category: CategoryRoutes,
		Message:  "Lazy route resolution failed",
		Detail:   "A lazy route's resolver returned an error while its fields were being loaded.",
	},
	"E202": {
		Category: CategoryRoutes,
		Message:  "Route filter failed",
		Detail:   "The includedRoutes hook returned an error.",
	},

	// Rendering (E300-E499)

	"E300": {
		Category: CategoryRender,
		Message:  "Failed to render page",
	},
	"E301": {
		Category:   CategoryRender,
		Message:    "Loader returned a response while rendering",
		Detail:     "A loader produced a redirect or raw response during static rendering. Static pages can only be built from data.",
		Suggestion: "Exclude this path with includedRoutes or return data from the loader.",
	},
	"E302": {
		Category: CategoryRender,
		Message:  "No route matched path",
	},
	"E400": {
		Category:   CategoryRender,
		Message:    "Root container not found in HTML template",
		Suggestion: "Add an element with the configured rootContainerId to index.html.",
	},
	"E401": {
		Category: CategoryRender,
		Message:  "HTML post-processing failed",
	},

	// I/O (E500-E699)

	"E500": {
		Category:   CategoryIO,
		Message:    "Failed to read bundler manifest",
		Suggestion: "Build the client bundle with manifest output enabled before running ssg build.",
	},
	"E501": {
		Category: CategoryIO,
		Message:  "Failed to read HTML template",
	},
	"E600": {
		Category: CategoryIO,
		Message:  "Failed to write output file",
	},

	// Dev server (E700-E799)

	"E700": {
		Category: CategoryDev,
		Message:  "Development request failed",
	},
	"E701": {
		Category:   CategoryDev,
		Message:    "Failed to start the bundler dev server",
		Suggestion: "Check dev.command in ssg.json, or start the bundler yourself and set dev.bundler.",
	},

	// Publish (E800-E899)

	"E800": {
		Category:   CategoryPublish,
		Message:    "Failed to publish output",
		Suggestion: "Check the bucket name and that AWS credentials are set in the environment.",
	},
}

// Lookup returns the template for a code.
func Lookup(code string) (Template, bool) {
	t, ok := registry[code]
	return t, ok
}
