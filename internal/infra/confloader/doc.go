// Package confloader provides the configuration loading mechanism.
//
// It uses Koanf to merge configuration from multiple sources with the
// priority Env > File > Default, and fsnotify to watch the
// configuration file for changes so the server can hot-reload the
// matrix without a restart.
package confloader
