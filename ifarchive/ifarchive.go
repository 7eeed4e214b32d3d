// Package ifarchive scrapes the IF-archive's Z-code index and downloads
// story files from it. It is the one place the goquery scrape lives;
// cmd/zif's interactive picker and cmd/zifetch's batch downloader both
// build on it instead of each scraping the index their own way.
package ifarchive

import (
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const IndexURL = "https://www.ifarchive.org/indexes/if-archive/games/zcode/"

// Game is one entry in the zcode index.
type Game struct {
	Name        string
	URL         string
	ReleaseDate time.Time
	Description string
}

var (
	zcodeLinkRe   = regexp.MustCompile(`\.z[12345678]$`)
	releaseDateRe = regexp.MustCompile(`\d{2}-\w{3}-\d{4}`)
)

// FetchIndex downloads and parses the zcode index page into a Game list.
func FetchIndex(c *http.Client) ([]Game, error) {
	return fetchIndexFrom(c, IndexURL)
}

func fetchIndexFrom(c *http.Client, url string) ([]Game, error) {
	res, err := c.Get(url)
	if err != nil {
		return nil, fmt.Errorf("fetch index: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode != 200 {
		return nil, fmt.Errorf("fetch index: bad status %d", res.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(res.Body)
	if err != nil {
		return nil, fmt.Errorf("parse index: %w", err)
	}

	var games []Game
	doc.Find("dl dt").Each(func(_ int, s *goquery.Selection) {
		href, exists := s.Find("a").Attr("href")
		if !exists || !zcodeLinkRe.MatchString(href) {
			return
		}
		title := strings.Replace(s.Find("a").Text(), "◆", "", 1)

		releaseDate, _ := time.Parse("02-Jan-2006", releaseDateRe.FindString(s.Find("span").Text()))
		var description string
		s.NextUntil("dt").Each(func(_ int, s2 *goquery.Selection) {
			if len(s2.ChildrenFiltered("p").Nodes) == 1 {
				description = s2.Find("p").Text()
			}
		})

		games = append(games, Game{
			Name:        title,
			URL:         "https://www.ifarchive.org" + href,
			ReleaseDate: releaseDate,
			Description: description,
		})
	})
	return games, nil
}

// Download fetches a single story file's bytes.
func Download(c *http.Client, url string) ([]byte, error) {
	res, err := c.Get(url)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", url, err)
	}
	defer res.Body.Close()
	if res.StatusCode != 200 {
		return nil, fmt.Errorf("download %s: bad status %d", url, res.StatusCode)
	}
	data, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", url, err)
	}
	return data, nil
}
