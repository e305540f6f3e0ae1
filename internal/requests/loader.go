// Package requests loads flash request lists from YAML or JSON documents.
package requests

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hydrolabs/olicloud-go/internal/oli"
)

// Load reads an ordered list of flash requests from path. The format is
// chosen by extension: .json uses JSON, everything else is parsed as YAML.
// Every entry must carry a flash method; file IDs may be left empty when
// the caller fills them in later (e.g. after uploading a DBS file).
func Load(path string) ([]oli.FlashRequest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read requests file: %w", err)
	}

	var reqs []oli.FlashRequest
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(raw, &reqs); err != nil {
			return nil, fmt.Errorf("parse requests file: %w", err)
		}
	default:
		if err := yaml.Unmarshal(raw, &reqs); err != nil {
			return nil, fmt.Errorf("parse requests file: %w", err)
		}
	}

	if len(reqs) == 0 {
		return nil, fmt.Errorf("requests file %s contains no requests", path)
	}
	for i, r := range reqs {
		if r.FlashMethod == "" {
			return nil, fmt.Errorf("request %d: flash method not set", i)
		}
	}
	return reqs, nil
}

// FillFileID sets the DBS file ID on every request that has none.
func FillFileID(reqs []oli.FlashRequest, fileID string) {
	for i := range reqs {
		if reqs[i].FileID == "" {
			reqs[i].FileID = fileID
		}
	}
}
