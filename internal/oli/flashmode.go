package oli

import (
	"fmt"
	"slices"
	"strings"
)

// burstPrefix is the routing hint prefix the service expects on burst-lane
// request URLs.
const burstPrefix = "watertap_burst"

// Method classification: read-style methods fetch stored file information,
// compute-style methods submit a flash calculation.
var (
	readFlashMethods    = []string{FlashCorrosionContactSurface, FlashChemistryInfo}
	computeFlashMethods = []string{FlashIsothermal, FlashCorrosionRates, FlashWaterAnalysis}
)

// flashMode resolves the HTTP verb, URL, and headers for a flash method
// against a DBS file. A non-empty burstTag appends the burst routing query
// parameter to compute-style URLs.
func (c *Client) flashMode(fileID, method, burstTag string) (verb, url string, headers map[string]string, err error) {
	if method == "" {
		return "", "", nil, fmt.Errorf("%w: flash method not set", ErrConfiguration)
	}
	if fileID == "" {
		return "", "", nil, fmt.Errorf("%w: DBS file ID not set", ErrConfiguration)
	}

	base := c.creds.EngineURL()
	switch {
	case slices.Contains(readFlashMethods, method):
		verb = "GET"
		url = fmt.Sprintf("%s/file/%s/%s", base, fileID, method)
		headers = c.creds.Headers()

	case slices.Contains(computeFlashMethods, method):
		verb = "POST"
		url = fmt.Sprintf("%s/flash/%s/%s", base, fileID, method)
		headers = c.creds.UpdateHeaders(map[string]string{"Content-Type": "application/json"})
		if burstTag != "" {
			url = fmt.Sprintf("%s?burst=%s_%s", url, burstPrefix, burstTag)
		}

	default:
		valid := append(append([]string{}, readFlashMethods...), computeFlashMethods...)
		return "", "", nil, fmt.Errorf("%w: %q (valid: %s)",
			ErrUnsupportedFlashMethod, method, strings.Join(valid, ", "))
	}

	return verb, url, headers, nil
}
