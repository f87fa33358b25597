package config

// Setting paths read by kbdconv.
const (
	SettingOutputDir           = "output.dir"
	SettingOutputPlatformFiles = "output.platformFiles"
	SettingLoggingLevel        = "logging.level"
	SettingConvertFailFast     = "convert.failFast"
	SettingOSXLocaleMap        = "osx.localeMap"
	SettingOSXKeycodeMap       = "osx.keycodeMap"
	SettingOSXPlatformVersion  = "osx.platformVersion"
	SettingWinLocaleMap        = "windows.localeMap"
	SettingWinKeycodeMap       = "windows.keycodeMap"
	SettingWinPlatformVersion  = "windows.platformVersion"
	SettingWatchDebounce       = "watch.debounce"
)

// defaultConfig returns the default configuration values. An empty locale
// or keycode map selects the table embedded in the parser.
func defaultConfig() map[string]any {
	return map[string]any{
		"output": map[string]any{
			"dir":           "ldml",
			"platformFiles": false,
		},
		"logging": map[string]any{
			"level": "info",
		},
		"convert": map[string]any{
			"failFast": false,
		},
		"osx": map[string]any{
			"localeMap":       "",
			"keycodeMap":      "",
			"platformVersion": "10.9",
		},
		"windows": map[string]any{
			"localeMap":       "",
			"keycodeMap":      "",
			"platformVersion": "10.0",
		},
		"watch": map[string]any{
			"debounce": "200ms",
		},
	}
}
