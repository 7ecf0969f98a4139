package testutil

import (
	"fmt"
	"strings"

	"github.com/Belphemur/MovieLinks/internal/models"
)

// MovieLensHeader is the header row of links.csv as distributed by MovieLens.
const MovieLensHeader = "movieId,imdbId,tmdbId"

// SampleLinks are the first rows of the MovieLens links.csv file.
var SampleLinks = []models.Link{
	{MovieID: 1, IMDBID: 114709, TMDBID: 862},
	{MovieID: 2, IMDBID: 113497, TMDBID: 8844},
	{MovieID: 3, IMDBID: 113228, TMDBID: 15602},
	{MovieID: 4, IMDBID: 114885, TMDBID: 31357},
	{MovieID: 5, IMDBID: 113041, TMDBID: 11862},
}

// GenerateLinksCSV renders links in MovieLens column order (movieId,imdbId,tmdbId)
// with IMDB ids zero-padded to seven digits as in the published dataset.
func GenerateLinksCSV(links []models.Link) string {
	var sb strings.Builder
	sb.WriteString(MovieLensHeader)
	sb.WriteString("\n")
	for _, l := range links {
		fmt.Fprintf(&sb, "%d,%07d,%d\n", l.MovieID, l.IMDBID, l.TMDBID)
	}
	return sb.String()
}

// GenerateSequentialLinks returns n links with ids starting at 1 and derived
// TMDB/IMDB ids, useful for batch and ratio tests.
func GenerateSequentialLinks(n int) []models.Link {
	links := make([]models.Link, n)
	for i := range links {
		id := int64(i + 1)
		links[i] = models.Link{MovieID: id, TMDBID: 1000 + id, IMDBID: 100000 + id}
	}
	return links
}
