package common

import (
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/banner"
)

// PrintBanner displays the application startup banner.
func PrintBanner(config *Config, logger arbor.ILogger) {
	version := GetVersion()
	build := GetBuild()

	b := banner.New().
		SetStyle(banner.StyleDouble).
		SetBorderColor(banner.ColorGreen).
		SetTextColor(banner.ColorWhite).
		SetBold(true).
		SetWidth(80)

	fmt.Printf("\n")
	b.PrintTopLine()
	b.PrintCenteredText("WORDSCTL")
	b.PrintCenteredText("Lexicographic Corpus Store and Search")
	b.PrintSeparatorLine()
	b.PrintKeyValue("Version", version, 20)
	b.PrintKeyValue("Build", build, 20)
	b.PrintKeyValue("Environment", config.Environment, 20)
	b.PrintKeyValue("Store Path", config.Storage.Path, 20)
	b.PrintKeyValue("Cache Path", config.Cache.DiskPath, 20)
	b.PrintBottomLine()
	fmt.Printf("\n")

	logger.Info().
		Str("version", version).
		Str("build", build).
		Str("environment", config.Environment).
		Str("storage_path", config.Storage.Path).
		Str("cache_path", config.Cache.DiskPath).
		Msg("wordsctl started")

	printCapabilities(config, logger)
}

func printCapabilities(config *Config, logger arbor.ILogger) {
	fmt.Printf("Enabled features:\n")
	fmt.Printf("   - Badger-backed versioned metadata store\n")
	fmt.Printf("   - Two-tier (memory + disk) content cache\n")

	if config.Semantic.Enabled {
		fmt.Printf("   - Semantic index (%s provider, model %s)\n", config.Semantic.Provider, config.Semantic.ModelName)
	} else {
		fmt.Printf("   - Semantic index disabled (config.semantic.enabled=false)\n")
	}
	if config.Janitor.Enabled {
		fmt.Printf("   - Disk cache janitor on schedule %q\n", config.Janitor.Schedule)
	}

	logger.Info().
		Bool("semantic_enabled", config.Semantic.Enabled).
		Str("semantic_provider", config.Semantic.Provider).
		Bool("janitor_enabled", config.Janitor.Enabled).
		Msg("capabilities configured")
}

// PrintShutdownBanner displays the application shutdown banner.
func PrintShutdownBanner(logger arbor.ILogger) {
	b := banner.New().
		SetStyle(banner.StyleDouble).
		SetBorderColor(banner.ColorGreen).
		SetTextColor(banner.ColorWhite).
		SetBold(true).
		SetWidth(42)

	b.PrintTopLine()
	b.PrintCenteredText("SHUTTING DOWN")
	b.PrintCenteredText("WORDSCTL")
	b.PrintBottomLine()
	fmt.Println()

	logger.Info().Msg("wordsctl shutting down")
}

// PrintColorizedMessage prints a message with specified color to stdout; it
// does not log (the logger argument is unused).
func PrintColorizedMessage(color, message string, logger arbor.ILogger) {
	fmt.Printf("%s%s%s\n", color, message, banner.ColorReset)
}

// PrintSuccess prints a success message in green and logs it.
func PrintSuccess(message string) {
	logger := GetLogger()
	PrintColorizedMessage(banner.ColorGreen, fmt.Sprintf("[ok] %s", message), logger)
	logger.Info().Str("type", "success").Msg(message)
}

// PrintError prints an error message in red and logs it.
func PrintError(message string) {
	logger := GetLogger()
	PrintColorizedMessage(banner.ColorRed, fmt.Sprintf("[error] %s", message), logger)
	logger.Error().Str("type", "error").Msg(message)
}

// PrintWarning prints a warning message in yellow and logs it.
func PrintWarning(message string) {
	logger := GetLogger()
	PrintColorizedMessage(banner.ColorYellow, fmt.Sprintf("[warn] %s", message), logger)
	logger.Warn().Str("type", "warning").Msg(message)
}

// PrintInfo prints an info message in cyan and logs it.
func PrintInfo(message string) {
	logger := GetLogger()
	PrintColorizedMessage(banner.ColorCyan, fmt.Sprintf("[info] %s", message), logger)
	logger.Info().Str("type", "info").Msg(message)
}
