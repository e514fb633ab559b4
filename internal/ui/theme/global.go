package theme

// global is the process-wide theme manager. It starts with the default
// theme and is replaced when the configured theme is loaded.
var global = NewManager(Default)

// SetGlobal switches the global theme by name. Unknown names select the
// default theme.
func SetGlobal(name string) {
	global.SetTheme(ByName(name))
}

// Global returns the global theme manager.
func Global() *Manager {
	return global
}

// Current returns the styles of the global theme.
func Current() *Styles {
	return global.Styles()
}
