package requests

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hydrolabs/olicloud-go/internal/oli"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "requests.yaml", `
- flash_method: isothermal
  dbs_file_id: f1
  input_params:
    params:
      temperature: 298.15
- flash_method: wateranalysis
  burst_tag: run7
`)
	reqs, err := Load(path)
	require.NoError(t, err)
	require.Len(t, reqs, 2)
	assert.Equal(t, "isothermal", reqs[0].FlashMethod)
	assert.Equal(t, "f1", reqs[0].FileID)
	assert.NotNil(t, reqs[0].InputParams)
	assert.Equal(t, "run7", reqs[1].BurstTag)
	assert.Empty(t, reqs[1].FileID)
}

func TestLoadJSON(t *testing.T) {
	path := writeFile(t, "requests.json", `[
  {"flash_method": "corrosion-rates", "dbs_file_id": "f2"},
  {"flash_method": "chemistry-info", "dbs_file_id": "f2"}
]`)
	reqs, err := Load(path)
	require.NoError(t, err)
	require.Len(t, reqs, 2)
	assert.Equal(t, "corrosion-rates", reqs[0].FlashMethod)
	assert.Equal(t, "chemistry-info", reqs[1].FlashMethod)
}

func TestLoadEmptyList(t *testing.T) {
	path := writeFile(t, "requests.yaml", `[]`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no requests")
}

func TestLoadMissingFlashMethod(t *testing.T) {
	path := writeFile(t, "requests.yaml", `
- flash_method: isothermal
  dbs_file_id: f1
- dbs_file_id: f2
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "request 1")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadMalformed(t *testing.T) {
	path := writeFile(t, "requests.json", `{not json`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestFillFileID(t *testing.T) {
	reqs := []oli.FlashRequest{
		{FlashMethod: "isothermal"},
		{FlashMethod: "isothermal", FileID: "explicit"},
		{FlashMethod: "wateranalysis"},
	}
	FillFileID(reqs, "uploaded")
	assert.Equal(t, "uploaded", reqs[0].FileID)
	assert.Equal(t, "explicit", reqs[1].FileID)
	assert.Equal(t, "uploaded", reqs[2].FileID)
}
