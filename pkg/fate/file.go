package fate

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileCampaign is a MemoryCampaign persisted to a YAML file. Every mutation
// rewrites the file.
type FileCampaign struct {
	*MemoryCampaign
	path string
}

// OpenFileCampaign loads path. A missing file starts an empty campaign that
// is created on the first mutation.
func OpenFileCampaign(path string) (*FileCampaign, error) {
	var data CampaignData
	raw, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("fate: read campaign %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(raw, &data); err != nil {
			return nil, fmt.Errorf("fate: decode campaign %s: %w", path, err)
		}
	}
	fc := &FileCampaign{MemoryCampaign: NewMemoryCampaign(data), path: path}
	fc.commit = fc.write
	return fc, nil
}

// Path returns the backing file.
func (f *FileCampaign) Path() string {
	return f.path
}

func (f *FileCampaign) write(data CampaignData) error {
	raw, err := yaml.Marshal(data)
	if err != nil {
		return fmt.Errorf("fate: encode campaign: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".campaign-*.yaml")
	if err != nil {
		return fmt.Errorf("fate: write campaign: %w", err)
	}
	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("fate: write campaign: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("fate: write campaign: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("fate: write campaign: %w", err)
	}
	return nil
}
