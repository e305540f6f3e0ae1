// Package credentials manages authentication and resource URLs for the OLI
// Cloud API.
package credentials

// Manager supplies authenticated headers and per-resource URLs to the client.
type Manager interface {
	// Headers returns the base request headers, including authentication.
	// The returned map is a copy; callers may modify it freely.
	Headers() map[string]string

	// UpdateHeaders layers extra headers onto the base set without
	// discarding authentication headers. The base set is not mutated.
	UpdateHeaders(extra map[string]string) map[string]string

	// EngineURL is the base URL for flash submission and result endpoints.
	EngineURL() string

	// DBSURL is the base URL for chemistry (DBS) file CRUD.
	DBSURL() string

	// UploadDBSURL is the endpoint for multipart DBS file uploads.
	UploadDBSURL() string
}

// Static is a Manager with fixed headers and URLs, for pre-issued tokens
// and tests.
type Static struct {
	BaseHeaders map[string]string
	Engine      string
	DBS         string
	UploadDBS   string
}

var _ Manager = (*Static)(nil)

func (s *Static) Headers() map[string]string {
	out := make(map[string]string, len(s.BaseHeaders))
	for k, v := range s.BaseHeaders {
		out[k] = v
	}
	return out
}

func (s *Static) UpdateHeaders(extra map[string]string) map[string]string {
	out := s.Headers()
	for k, v := range extra {
		out[k] = v
	}
	return out
}

func (s *Static) EngineURL() string    { return s.Engine }
func (s *Static) DBSURL() string       { return s.DBS }
func (s *Static) UploadDBSURL() string { return s.UploadDBS }
