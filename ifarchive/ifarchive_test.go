package ifarchive

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

const sampleIndexHTML = `<html><body><dl>
<dt><a href="/if-archive/games/zcode/advent.z5">advent.z5</a> <span>(01-Jan-1977)</span></dt>
<dd><p>A classic adventure.</p></dd>
<dt><a href="/if-archive/games/zcode/readme.txt">readme.txt</a></dt>
<dd><p>Not a game.</p></dd>
</dl></body></html>`

func TestFetchIndexParsesGamesAndSkipsNonStoryLinks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sampleIndexHTML))
	}))
	defer srv.Close()

	games, err := fetchIndexFrom(srv.Client(), srv.URL)
	if err != nil {
		t.Fatalf("FetchIndex: %v", err)
	}
	if len(games) != 1 {
		t.Fatalf("expected 1 game, got %d: %+v", len(games), games)
	}
	if games[0].Name != "advent.z5" {
		t.Errorf("Name = %q, want advent.z5", games[0].Name)
	}
	if games[0].Description != "A classic adventure." {
		t.Errorf("Description = %q", games[0].Description)
	}
	if games[0].ReleaseDate.Year() != 1977 {
		t.Errorf("ReleaseDate = %v, want year 1977", games[0].ReleaseDate)
	}
}

func TestFetchIndexRejectsBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	if _, err := fetchIndexFrom(srv.Client(), srv.URL); err == nil {
		t.Fatal("expected an error for a 500 response, got nil")
	}
}
