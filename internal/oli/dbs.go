package oli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// Chemistry model allow-lists enforced by the service.
var (
	validThermoFrameworks = []string{"MSE (H3O+ ion)", "Aqueous (H+ ion)"}
	validPhases           = []string{"liquid1", "vapor", "solid", "liquid2"}
	validDatabanks        = []string{"XSC"}
)

// Defaults applied by GenerateDBSFile when options are unset.
const (
	defaultThermoFramework = "MSE (H3O+ ion)"
	defaultModelName       = "OLI_analysis"
)

var defaultPhases = []string{"liquid1", "solid"}

// GenerateOptions describes a chemistry model to build server-side.
type GenerateOptions struct {
	// Inflows maps solute names to optional custom parameters. Required.
	Inflows map[string]any

	ThermoFramework string
	ModelName       string
	Phases          []string
	Databanks       []string

	// KeepFile excludes the generated file from session cleanup.
	KeepFile bool
}

// UploadDBSFile uploads a DBS file from disk and returns its server-side ID.
// The file is tracked for session cleanup unless keepFile is set.
func (s *Session) UploadDBSFile(ctx context.Context, path string, keepFile bool) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open DBS file: %w", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("files", filepath.Base(path))
	if err != nil {
		return "", fmt.Errorf("create multipart form: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return "", fmt.Errorf("copy DBS file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("close multipart form: %w", err)
	}

	c := s.client
	headers := c.creds.UpdateHeaders(map[string]string{"Content-Type": writer.FormDataContentType()})
	body, err := c.do(ctx, "upload-dbs", "POST", c.creds.UploadDBSURL(), headers, &buf, []Status{StatusUploaded})
	if err != nil {
		return "", err
	}

	fileID := uploadedFileID(body)
	if fileID == "" {
		return "", fmt.Errorf("upload-dbs: %w: missing file ID", ErrUnexpectedResponse)
	}
	s.track(fileID, keepFile)
	c.logger.Info("DBS file uploaded", "file_id", fileID)
	return fileID, nil
}

// uploadedFileID extracts file[0].id from an upload response.
func uploadedFileID(body map[string]any) string {
	files, ok := body["file"].([]any)
	if !ok || len(files) == 0 {
		return ""
	}
	entry, ok := files[0].(map[string]any)
	if !ok {
		return ""
	}
	id, _ := entry["id"].(string)
	return id
}

// GenerateDBSFile builds a chemistry model server-side and returns its file
// ID. Options outside the service allow-lists fail before any network call.
func (s *Session) GenerateDBSFile(ctx context.Context, opts GenerateOptions) (string, error) {
	if len(opts.Inflows) == 0 {
		return "", fmt.Errorf("%w: inflows must be defined", ErrConfiguration)
	}

	params := map[string]any{
		"modelName":              defaultModelName,
		"thermodynamicFramework": defaultThermoFramework,
		"phases":                 defaultPhases,
	}
	if opts.ModelName != "" {
		params["modelName"] = opts.ModelName
	}
	if opts.ThermoFramework != "" {
		if !slices.Contains(validThermoFrameworks, opts.ThermoFramework) {
			return "", fmt.Errorf("%w: thermo framework %q (valid: %s)",
				ErrUnsupportedOption, opts.ThermoFramework, strings.Join(validThermoFrameworks, ", "))
		}
		params["thermodynamicFramework"] = opts.ThermoFramework
	}
	if opts.Phases != nil {
		for _, p := range opts.Phases {
			if !slices.Contains(validPhases, p) {
				return "", fmt.Errorf("%w: phase %q (valid: %s)",
					ErrUnsupportedOption, p, strings.Join(validPhases, ", "))
			}
		}
		params["phases"] = opts.Phases
	}
	if opts.Databanks != nil {
		for _, db := range opts.Databanks {
			if !slices.Contains(validDatabanks, db) {
				return "", fmt.Errorf("%w: databank %q (valid: %s)",
					ErrUnsupportedOption, db, strings.Join(validDatabanks, ", "))
			}
		}
		params["privateDatabanks"] = opts.Databanks
	}

	inflows := make([]map[string]any, 0, len(opts.Inflows))
	for name := range opts.Inflows {
		inflows = append(inflows, map[string]any{"name": name})
	}
	params["inflows"] = inflows

	payload, err := json.Marshal(map[string]any{
		"method": "chemistrybuilder.generateDBS",
		"params": params,
	})
	if err != nil {
		return "", fmt.Errorf("marshal generate request: %w", err)
	}

	c := s.client
	headers := c.creds.UpdateHeaders(map[string]string{"Content-Type": "application/json"})
	body, err := c.do(ctx, "generate-dbs", "POST", c.creds.DBSURL(), headers, bytes.NewReader(payload), []Status{StatusSuccess})
	if err != nil {
		return "", err
	}

	data, _ := body["data"].(map[string]any)
	fileID, _ := data["id"].(string)
	if fileID == "" {
		return "", fmt.Errorf("generate-dbs: %w: missing file ID", ErrUnexpectedResponse)
	}
	s.track(fileID, opts.KeepFile)
	c.logger.Info("DBS file generated", "file_id", fileID)
	return fileID, nil
}

// DBSFileSummary holds chemistry info and flash history for one DBS file.
type DBSFileSummary struct {
	ChemistryInfo map[string]any `json:"chemistry_info"`
	FlashHistory  []any          `json:"flash_history"`
}

// GetDBSFileSummary fetches chemistry info and flash history for a file.
func (c *Client) GetDBSFileSummary(ctx context.Context, fileID string) (*DBSFileSummary, error) {
	if fileID == "" {
		return nil, fmt.Errorf("%w: DBS file ID not set", ErrConfiguration)
	}
	c.logger.Info("summarizing DBS file", "file_id", fileID)

	info, err := c.Call(ctx, FlashRequest{FlashMethod: FlashChemistryInfo, FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("chemistry info: %w", err)
	}

	url := fmt.Sprintf("%s/flash/history/%s", c.creds.EngineURL(), fileID)
	body, err := c.do(ctx, "flash-history", "GET", url, c.creds.Headers(), nil, nil)
	if err != nil {
		return nil, fmt.Errorf("flash history: %w", err)
	}
	history, _ := body["data"].([]any)

	if len(info) == 0 || len(history) == 0 {
		return nil, fmt.Errorf("dbs-summary: %w: incomplete summary", ErrUnexpectedResponse)
	}
	return &DBSFileSummary{ChemistryInfo: info, FlashHistory: history}, nil
}

// GetUserDBSFileIDs lists all DBS files stored for the authenticated user.
func (c *Client) GetUserDBSFileIDs(ctx context.Context) ([]string, error) {
	c.logger.Info("listing user DBS files")
	body, err := c.do(ctx, "list-dbs", "GET", c.creds.DBSURL(), c.creds.Headers(), nil, nil)
	if err != nil {
		return nil, err
	}

	entries, ok := body["data"].([]any)
	if !ok {
		return nil, fmt.Errorf("list-dbs: %w: missing data", ErrUnexpectedResponse)
	}
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		entry, ok := e.(map[string]any)
		if !ok {
			continue
		}
		if id, ok := entry["fileId"].(string); ok {
			ids = append(ids, id)
		}
	}
	c.logger.Info("found user DBS files", "count", len(ids))
	return ids, nil
}

// DeleteDBSFile removes one DBS file from the user's cloud storage.
func (c *Client) DeleteDBSFile(ctx context.Context, fileID string) error {
	if fileID == "" {
		return fmt.Errorf("%w: DBS file ID not set", ErrConfiguration)
	}
	url := fmt.Sprintf("%s/%s", c.creds.DBSURL(), fileID)
	_, err := c.do(ctx, "delete-dbs", "DELETE", url, c.creds.Headers(), nil, []Status{StatusSuccess})
	return err
}
