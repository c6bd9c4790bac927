// Copyright © 2024 The ELPS authors

package lsp

import (
	"fmt"

	"github.com/spf13/viper"
)

// ConfigSection is the section of client settings read by the server.
const ConfigSection = "luau-lsp"

// Configuration keys.
const (
	KeySignatureHelpEnabled = "signatureHelp.enabled"
	KeyShowTableKinds       = "hover.showTableKinds"
)

// SetDefaults registers the default value of every key read by the server.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeySignatureHelpEnabled, true)
	v.SetDefault(KeyShowTableKinds, false)
}

// Settings is a snapshot of the configuration used by one request.
type Settings struct {
	SignatureHelpEnabled bool
	ShowTableKinds       bool
}

func (s *Server) settings() Settings {
	s.configMu.RLock()
	defer s.configMu.RUnlock()
	return Settings{
		SignatureHelpEnabled: s.config.GetBool(KeySignatureHelpEnabled),
		ShowTableKinds:       s.config.GetBool(KeyShowTableKinds),
	}
}

// updateSettings merges client settings into the configuration.  Settings
// may be wrapped in a ConfigSection object.
func (s *Server) updateSettings(settings any) error {
	m, ok := settings.(map[string]any)
	if !ok {
		return fmt.Errorf("settings: expected an object, got %T", settings)
	}
	if section, ok := m[ConfigSection]; ok {
		if m, ok = section.(map[string]any); !ok {
			return fmt.Errorf("settings: expected %q to be an object, got %T", ConfigSection, section)
		}
	}
	s.configMu.Lock()
	defer s.configMu.Unlock()
	return s.config.MergeConfigMap(m)
}
