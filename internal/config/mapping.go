package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BartekS5/assetimport/pkg/models"
)

func profileFormat(filePath string) string {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".yaml", ".yml":
		return "yaml"
	}
	return "json"
}

// LoadProfile reads a saved mapping profile. The format follows the file
// extension: .yaml/.yml for YAML, anything else JSON.
func LoadProfile(filePath string) (*models.MappingProfile, error) {
	bytes, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read mapping file '%s': %w", filePath, err)
	}

	profile, err := models.LoadProfile(bytes, profileFormat(filePath))
	if err != nil {
		return nil, fmt.Errorf("failed to parse mapping file '%s': %w", filePath, err)
	}
	return profile, nil
}

// SaveProfile writes profile to filePath, picking the format from the extension.
func SaveProfile(filePath string, profile *models.MappingProfile) error {
	data, err := profile.Marshal(profileFormat(filePath))
	if err != nil {
		return err
	}
	if err := os.WriteFile(filePath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write mapping file '%s': %w", filePath, err)
	}
	return nil
}
