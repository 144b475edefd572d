package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"
)

const idsBase = "https://api.ids.moe/ids"

// IDs translates identifiers between catalog namespaces via the IDs.moe
// API. Providers disagree on ids, so cross-catalog asset lookups (MAL id
// to Shikimori id for screenshots) go through here. A missing mapping is
// a normal condition, reported as found=false.
type IDs struct {
	Client  *http.Client
	BaseURL string
	APIKey  string
}

func NewIDs() *IDs {
	return &IDs{
		Client:  &http.Client{Timeout: 10 * time.Second},
		BaseURL: idsBase,
		APIKey:  os.Getenv("ANIGUESS_IDS_MOE_KEY"),
	}
}

func (i *IDs) Name() string { return "ids.moe" }

// Configured reports whether an API key is present. Without one the
// screenshot game cannot resolve assets and start requests fail early.
func (i *IDs) Configured() bool { return i.APIKey != "" }

// ShikimoriID maps a MAL id into Shikimori's namespace.
func (i *IDs) ShikimoriID(ctx context.Context, malID int) (id int, found bool, err error) {
	if i.APIKey == "" {
		return 0, false, fmt.Errorf("ids.moe: api key not configured")
	}

	u := fmt.Sprintf("%s/%d?platform=mal", i.BaseURL, malID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return 0, false, fmt.Errorf("ids.moe: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+i.APIKey)

	resp, err := i.Client.Do(req)
	if err != nil {
		return 0, false, fmt.Errorf("ids.moe: request: %w", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return 0, false, nil
	}
	if resp.StatusCode != http.StatusOK {
		return 0, false, fmt.Errorf("ids.moe: status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	// The endpoint returns each platform's id; shikimori is either a
	// number or a numeric string depending on API version.
	var res struct {
		Shikimori json.Number `json:"shikimori"`
	}
	if err := json.Unmarshal(body, &res); err != nil {
		return 0, false, fmt.Errorf("ids.moe: decode: %w", err)
	}
	if res.Shikimori.String() == "" {
		return 0, false, nil
	}
	n, err := strconv.Atoi(res.Shikimori.String())
	if err != nil || n == 0 {
		return 0, false, nil
	}
	return n, true, nil
}
