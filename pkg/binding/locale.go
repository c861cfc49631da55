package binding

import (
	"reflect"
	"sync"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	localeMu sync.RWMutex
	locale   = language.English
	printer  = message.NewPrinter(language.English)
)

// SetLanguage configures the locale used when formatting bound values in
// Strf templates, e.g. digit grouping for large numbers. The default is
// English. Call this once at startup, before bindings deliver.
func SetLanguage(tag language.Tag) {
	localeMu.Lock()
	defer localeMu.Unlock()
	locale = tag
	printer = message.NewPrinter(tag)
}

// Language returns the currently configured formatting locale.
func Language() language.Tag {
	localeMu.RLock()
	defer localeMu.RUnlock()
	return locale
}

// formatValue renders a single bound value for interpolation. Undefined
// values render as the empty string so unresolved arms produce an empty
// UI state rather than the literal "<nil>". Integers and floats go
// through the locale printer, so large counts pick up digit grouping.
func formatValue(v any) string {
	switch value := v.(type) {
	case nil:
		return ""
	case string:
		return value
	}
	localeMu.RLock()
	p := printer
	localeMu.RUnlock()
	switch reflect.ValueOf(v).Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return p.Sprintf("%d", v)
	case reflect.Float32, reflect.Float64:
		return p.Sprintf("%g", v)
	}
	return p.Sprintf("%v", v)
}
