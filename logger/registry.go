package logger

import (
	"sort"
	"sync"
)

// components holds loggers registered per component name. Packages that are
// not handed a logger resolve theirs here, so a binary can configure every
// component once after Init.
var components sync.Map // name -> *Logger

// Register stores the logger used by the named component.
func Register(name string, l *Logger) {
	components.Store(name, l)
}

// Get returns the logger registered for name. Unregistered names get the
// global logger tagged with the component name.
func Get(name string) *Logger {
	if l, ok := components.Load(name); ok {
		return l.(*Logger)
	}
	return GetGlobalLogger().WithComponent(name)
}

// RegisterDefaults registers a component-tagged child of the global logger
// for each name. Call it after Init.
func RegisterDefaults(names ...string) {
	global := GetGlobalLogger()
	for _, name := range names {
		Register(name, global.WithComponent(name))
	}
}

// Registered returns the sorted names of the registered components.
func Registered() []string {
	var names []string
	components.Range(func(k, _ any) bool {
		names = append(names, k.(string))
		return true
	})
	sort.Strings(names)
	return names
}
