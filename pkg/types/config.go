package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "billwatch/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// CollectConfig holds settings for the collection stage.
type CollectConfig struct {
	HTTPConfig `yaml:",inline"`

	// BaseURL is the legislature site root, prepended to relative links.
	BaseURL string `json:"base_url" yaml:"base_url"`

	// ListingURL is the paginated bill listing endpoint.
	ListingURL string `json:"listing_url" yaml:"listing_url"`

	// RequestDelay is the cool-down between consecutive requests (default 1s).
	RequestDelay time.Duration `json:"request_delay" yaml:"request_delay"`

	// MaxPages bounds listing pagination as a safety stop (default 50).
	MaxPages int `json:"max_pages" yaml:"max_pages"`

	// DataDir is the base directory for run artifacts (default "data").
	DataDir string `json:"data_dir" yaml:"data_dir"`
}

// ConversionBackend identifies the PDF-to-DOCX conversion tool.
type ConversionBackend string

const (
	BackendConvertAPI ConversionBackend = "convertapi"
	BackendSoffice    ConversionBackend = "soffice"
)

// ConvertConfig holds settings for the conversion stage.
type ConvertConfig struct {
	// Backend selects the PDF-to-DOCX tool: convertapi or soffice.
	Backend ConversionBackend `json:"backend" yaml:"backend"`

	// APISecret authenticates the convertapi backend. Unused by soffice.
	APISecret string `json:"api_secret,omitempty" yaml:"api_secret,omitempty"`

	// DataDir is the base directory for run artifacts.
	DataDir string `json:"data_dir" yaml:"data_dir"`
}

// AIConfig holds shared settings for stages that call a Generative AI API.
type AIConfig struct {
	// Model is the AI model identifier.
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the AI API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxRetries is the number of retry attempts for failed API calls (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// AnalyzeConfig holds settings for the analysis stage.
type AnalyzeConfig struct {
	AIConfig `yaml:",inline"`

	// RequestDelay is the cool-down between consecutive API calls (default 1s).
	RequestDelay time.Duration `json:"request_delay" yaml:"request_delay"`

	// DataDir is the base directory for run artifacts.
	DataDir string `json:"data_dir" yaml:"data_dir"`
}

// DashboardConfig holds settings for the dashboard server.
type DashboardConfig struct {
	// Port is the HTTP listen port (default 8090).
	Port int `json:"port" yaml:"port"`

	// DataDir is the base directory for run artifacts.
	DataDir string `json:"data_dir" yaml:"data_dir"`
}

// IndexConfig holds settings for the cross-run archive.
type IndexConfig struct {
	// DataDir is the base directory for run artifacts (contains index/).
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// MaxResults is the default maximum number of query results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// PipelineConfig groups all stage configurations. The run identifier is
// resolved once at process start and threaded to each stage explicitly.
type PipelineConfig struct {
	Run       string          `json:"run" yaml:"run"`
	Collect   CollectConfig   `json:"collect" yaml:"collect"`
	Convert   ConvertConfig   `json:"convert" yaml:"convert"`
	Analyze   AnalyzeConfig   `json:"analyze" yaml:"analyze"`
	Dashboard DashboardConfig `json:"dashboard" yaml:"dashboard"`
	Index     IndexConfig     `json:"index" yaml:"index"`
}
