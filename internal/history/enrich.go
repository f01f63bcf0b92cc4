package history

import (
	"context"
	"fmt"
	"html"
	"io"
	"net/http"
	"regexp"
	"strings"
)

// maxTitleBody bounds how much of a page is read looking for <title>.
const maxTitleBody = 256 << 10

var titleRegex = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)

// FetchURLTitle fetches a page and extracts its <title> text. Runs
// out-of-band from the serialized owner; the caller writes the result
// back through Store.SetURLTitle. One attempt per content hash per
// session, success or not.
func FetchURLTitle(ctx context.Context, client *http.Client, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "text/html")

	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("title fetch: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxTitleBody))
	if err != nil {
		return "", err
	}

	m := titleRegex.FindSubmatch(body)
	if m == nil {
		return "", fmt.Errorf("title fetch: no <title> in %s", rawURL)
	}

	title := html.UnescapeString(string(m[1]))
	title = strings.Join(strings.Fields(title), " ")
	if title == "" {
		return "", fmt.Errorf("title fetch: empty <title> in %s", rawURL)
	}
	return title, nil
}
