package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests and by the browser.
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// BrowserConfig holds settings for the headless browser used to discover annex links.
type BrowserConfig struct {
	// Enabled selects the browser link finder. When false, the page is fetched
	// over plain HTTP and parsed as HTML.
	Enabled bool `json:"enabled" yaml:"enabled"`

	// ChromePath is the Chrome or Chromium executable. Empty means resolve one
	// automatically.
	ChromePath string `json:"chrome_path,omitempty" yaml:"chrome_path,omitempty"`

	// NoSandbox disables the Chrome sandbox (required when running as root).
	NoSandbox bool `json:"no_sandbox" yaml:"no_sandbox"`

	// Headless runs the browser without a window (default true).
	Headless bool `json:"headless" yaml:"headless"`

	// WaitTimeout bounds page navigation and the wait for the document body (default 20s).
	WaitTimeout time.Duration `json:"wait_timeout" yaml:"wait_timeout"`
}

// FetchConfig holds settings for the fetch stage.
type FetchConfig struct {
	HTTPConfig `yaml:",inline"`

	// PageURL is the page that links to the annex PDFs.
	PageURL string `json:"page_url" yaml:"page_url"`

	// DownloadsDir receives the downloaded PDFs and their metadata sidecars.
	DownloadsDir string `json:"downloads_dir" yaml:"downloads_dir"`

	// ZipPath is the archive that bundles the downloaded PDFs.
	ZipPath string `json:"zip_path" yaml:"zip_path"`

	// DownloadDelay is the minimum interval between consecutive downloads (default 1s).
	DownloadDelay time.Duration `json:"download_delay" yaml:"download_delay"`

	Browser BrowserConfig `json:"browser" yaml:"browser"`
}

// ExtractionConfig holds settings for the extract stage. The three paths are
// the only inputs the extraction needs; everything else is optional.
type ExtractionConfig struct {
	// InputPath is the annex PDF to read.
	InputPath string `json:"input_path" yaml:"input_path"`

	// OutputCSVPath is where the procedure table is written.
	OutputCSVPath string `json:"output_csv_path" yaml:"output_csv_path"`

	// OutputZipPath is the archive that bundles the CSV.
	OutputZipPath string `json:"output_zip_path" yaml:"output_zip_path"`

	// Force re-runs the extraction even when the input is unchanged since the
	// last recorded run.
	Force bool `json:"force" yaml:"force"`

	// Markers delimit the procedure table. Empty fields use the annex defaults.
	Markers TableMarkers `json:"markers" yaml:"markers"`

	// RowPattern is the regular expression for one table line, with named
	// groups. Empty uses the annex default.
	RowPattern string `json:"row_pattern,omitempty" yaml:"row_pattern,omitempty"`

	// Abbreviations replace the default segment detail expansions when set.
	Abbreviations []Abbreviation `json:"abbreviations,omitempty" yaml:"abbreviations,omitempty"`
}

// TableMarkers are the literal phrases that delimit the table region.
type TableMarkers struct {
	// Title opens the region.
	Title string `json:"title" yaml:"title" mapstructure:"title"`

	// Header is the concatenation of the column names in order.
	Header string `json:"header" yaml:"header" mapstructure:"header"`

	// Terminators close the region from any state.
	Terminators []string `json:"terminators" yaml:"terminators" mapstructure:"terminators"`
}

// Abbreviation is one literal expansion applied to the segment detail.
type Abbreviation struct {
	From string `json:"from" yaml:"from" mapstructure:"from"`
	To   string `json:"to" yaml:"to" mapstructure:"to"`
}

// HistoryConfig holds settings for the run ledger.
type HistoryConfig struct {
	// StateDir holds history.db. Empty disables the ledger.
	StateDir string `json:"state_dir" yaml:"state_dir"`

	// MaxResults is the default number of rows returned by listings (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Fetch      FetchConfig      `json:"fetch" yaml:"fetch"`
	Extraction ExtractionConfig `json:"extraction" yaml:"extraction"`
	History    HistoryConfig    `json:"history" yaml:"history"`
}
