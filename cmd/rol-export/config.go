// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/rol-export/internal/table"
	"github.com/pdiddy/rol-export/pkg/types"
)

const (
	defaultPageURL   = "https://www.gov.br/ans/pt-br/acesso-a-informacao/participacao-da-sociedade/atualizacao-do-rol-de-procedimentos"
	defaultInput     = "downloads/Anexo_I_Rol_2021RN_465.2021_RN627L.2024.pdf"
	defaultUserAgent = "rol-export/0.1"
)

// Configuration keys. Each maps to a YAML path in rol-export.yaml and to an
// environment variable with the ROL_EXPORT_ prefix (dots become underscores).
const (
	keyPageURL      = "fetch.page_url"
	keyDownloadsDir = "fetch.downloads_dir"
	keyFetchZip     = "fetch.zip"
	keyDelay        = "fetch.delay"
	keyTimeout      = "fetch.timeout"
	keyUserAgent    = "fetch.user_agent"
	keyBrowser      = "fetch.browser.enabled"
	keyChromePath   = "fetch.browser.chrome_path"
	keyNoSandbox    = "fetch.browser.no_sandbox"
	keyHeadless     = "fetch.browser.headless"
	keyWaitTimeout  = "fetch.browser.wait_timeout"

	keyInput = "extract.input"
	keyCSV   = "extract.csv"
	keyZip   = "extract.zip"
	keyForce = "extract.force"

	keyTitle         = "extract.markers.title"
	keyHeader        = "extract.markers.header"
	keyTerminators   = "extract.markers.terminators"
	keyRowPattern    = "extract.row_pattern"
	keyAbbreviations = "extract.abbreviations"

	keyStateDir   = "history.state_dir"
	keyMaxResults = "history.max_results"
)

func setDefaults() {
	viper.SetDefault(keyPageURL, defaultPageURL)
	viper.SetDefault(keyDownloadsDir, "downloads")
	viper.SetDefault(keyFetchZip, "anexos.zip")
	viper.SetDefault(keyDelay, time.Second)
	viper.SetDefault(keyTimeout, 60*time.Second)
	viper.SetDefault(keyUserAgent, defaultUserAgent)
	viper.SetDefault(keyBrowser, true)
	viper.SetDefault(keyHeadless, true)
	viper.SetDefault(keyWaitTimeout, 20*time.Second)

	viper.SetDefault(keyInput, defaultInput)
	viper.SetDefault(keyCSV, "Rol_Procedimentos.csv")
	viper.SetDefault(keyZip, "Rol_Procedimentos.zip")

	markers := table.DefaultMarkers()
	viper.SetDefault(keyTitle, markers.Title)
	viper.SetDefault(keyHeader, markers.Header)
	viper.SetDefault(keyTerminators, markers.Terminators)
	viper.SetDefault(keyRowPattern, table.DefaultRowExpr)

	viper.SetDefault(keyStateDir, stateDirDefault())
	viper.SetDefault(keyMaxResults, 20)
}

func stateDirDefault() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "rol-export")
	}
	return ".rol-export"
}

// bindFlags binds each flag name to its configuration key so a flag set on
// the command line overrides the config file and environment.
func bindFlags(fs *pflag.FlagSet, keys map[string]string) {
	for flag, key := range keys {
		if f := fs.Lookup(flag); f != nil {
			_ = viper.BindPFlag(key, f)
		}
	}
}

// bindCommandFlags binds flags in a command's PreRun so commands sharing a
// key do not overwrite each other's binding.
func bindCommandFlags(keys map[string]string) func(*cobra.Command, []string) {
	return func(cmd *cobra.Command, _ []string) {
		bindFlags(cmd.Flags(), keys)
	}
}

func fetchConfig() types.FetchConfig {
	return types.FetchConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   viper.GetDuration(keyTimeout),
			UserAgent: viper.GetString(keyUserAgent),
		},
		PageURL:       viper.GetString(keyPageURL),
		DownloadsDir:  viper.GetString(keyDownloadsDir),
		ZipPath:       viper.GetString(keyFetchZip),
		DownloadDelay: viper.GetDuration(keyDelay),
		Browser: types.BrowserConfig{
			Enabled:     viper.GetBool(keyBrowser),
			ChromePath:  viper.GetString(keyChromePath),
			NoSandbox:   viper.GetBool(keyNoSandbox),
			Headless:    viper.GetBool(keyHeadless),
			WaitTimeout: viper.GetDuration(keyWaitTimeout),
		},
	}
}

// extractionConfig reads the extract settings. Abbreviations are a list of
// from/to pairs and are only available from the config file; when absent
// the annex defaults apply.
func extractionConfig() (types.ExtractionConfig, error) {
	cfg := types.ExtractionConfig{
		InputPath:     viper.GetString(keyInput),
		OutputCSVPath: viper.GetString(keyCSV),
		OutputZipPath: viper.GetString(keyZip),
		Force:         viper.GetBool(keyForce),
		Markers: types.TableMarkers{
			Title:       viper.GetString(keyTitle),
			Header:      viper.GetString(keyHeader),
			Terminators: viper.GetStringSlice(keyTerminators),
		},
		RowPattern: viper.GetString(keyRowPattern),
	}
	if viper.IsSet(keyAbbreviations) {
		if err := viper.UnmarshalKey(keyAbbreviations, &cfg.Abbreviations); err != nil {
			return types.ExtractionConfig{}, fmt.Errorf("reading %s: %w", keyAbbreviations, err)
		}
	}
	return cfg, nil
}

func historyConfig() types.HistoryConfig {
	return types.HistoryConfig{
		StateDir:   viper.GetString(keyStateDir),
		MaxResults: viper.GetInt(keyMaxResults),
	}
}

func pipelineConfig() (types.PipelineConfig, error) {
	ecfg, err := extractionConfig()
	if err != nil {
		return types.PipelineConfig{}, err
	}
	return types.PipelineConfig{
		Fetch:      fetchConfig(),
		Extraction: ecfg,
		History:    historyConfig(),
	}, nil
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration as YAML",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := pipelineConfig()
		if err != nil {
			return err
		}
		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return err
		}
		return enc.Close()
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}
