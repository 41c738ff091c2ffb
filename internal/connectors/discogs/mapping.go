package discogs

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/artisnova/aria/internal/core/domain"
)

// Wire shapes for the Discogs API.

type searchResponse struct {
	Results []searchResult `json:"results"`
}

type searchResult struct {
	ID         int64    `json:"id"`
	Title      string   `json:"title"`
	CoverImage string   `json:"cover_image"`
	Genres     []string `json:"genre"`
	Styles     []string `json:"style"`
	Year       string   `json:"year"`
	Country    string   `json:"country"`
}

type artistDetail struct {
	Name    string        `json:"name"`
	Profile string        `json:"profile"`
	Images  []imageObject `json:"images"`
}

type releaseDetail struct {
	Title        string        `json:"title"`
	Artists      []artistRef   `json:"artists"`
	Year         int           `json:"year"`
	Country      string        `json:"country"`
	Genres       []string      `json:"genres"`
	Styles       []string      `json:"styles"`
	Images       []imageObject `json:"images"`
	Tracklist    []trackEntry  `json:"tracklist"`
	ExtraArtists []creditRef   `json:"extraartists"`
}

type artistRef struct {
	Name string `json:"name"`
}

type creditRef struct {
	Name string `json:"name"`
	Role string `json:"role"`
}

type imageObject struct {
	URI string `json:"uri"`
}

type trackEntry struct {
	Position string `json:"position"`
	Title    string `json:"title"`
	Duration string `json:"duration"`
}

func mapSearchResults(entityType domain.EntityType, results []searchResult) []domain.CanonicalRecord {
	var records []domain.CanonicalRecord
	for _, result := range results {
		record := domain.CanonicalRecord{
			Type:        entityType,
			ExternalIDs: externalID(result.ID),
			Genres:      append(result.Genres, result.Styles...),
			Country:     result.Country,
			Date:        result.Year,
		}
		if result.CoverImage != "" {
			record.Images = []string{result.CoverImage}
		}

		// Release search titles come as "Artist - Title".
		if entityType == domain.EntityAlbum {
			record.Artist, record.Name = splitReleaseTitle(result.Title)
		} else {
			record.Name = result.Title
		}
		records = append(records, record)
	}
	return records
}

func mapArtistDetail(id string, a artistDetail) domain.CanonicalRecord {
	return domain.CanonicalRecord{
		Type:        domain.EntityArtist,
		Name:        a.Name,
		Biography:   strings.TrimSpace(a.Profile),
		Images:      imageURLs(a.Images),
		ExternalIDs: map[string]string{"discogs": id},
	}
}

func mapReleaseDetail(id string, r releaseDetail) domain.CanonicalRecord {
	record := domain.CanonicalRecord{
		Type:        domain.EntityAlbum,
		Name:        r.Title,
		Country:     r.Country,
		Genres:      append(r.Genres, r.Styles...),
		Images:      imageURLs(r.Images),
		ExternalIDs: map[string]string{"discogs": id},
	}
	if r.Year > 0 {
		record.Date = fmt.Sprintf("%d", r.Year)
	}
	if len(r.Artists) > 0 {
		record.Artist = r.Artists[0].Name
	}
	for i, t := range r.Tracklist {
		record.Tracks = append(record.Tracks, domain.Track{
			Position:    trackPosition(t.Position, i),
			Title:       t.Title,
			DurationSec: parseDuration(t.Duration),
		})
	}
	for _, credit := range r.ExtraArtists {
		record.Credits = append(record.Credits, domain.Credit{
			Name: credit.Name,
			Role: credit.Role,
		})
	}
	return record
}

// splitReleaseTitle splits the "Artist - Title" form Discogs uses in
// release search results.
func splitReleaseTitle(combined string) (artist, title string) {
	parts := strings.SplitN(combined, " - ", 2)
	if len(parts) == 2 {
		return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
	}
	return "", combined
}

// trackPosition parses a Discogs position ("1", "A1") into an ordinal,
// falling back to the list index when the side notation doesn't parse.
func trackPosition(pos string, index int) int {
	if n, err := strconv.Atoi(pos); err == nil {
		return n
	}
	return index + 1
}

// parseDuration converts "3:45" to seconds. Unknown forms yield 0.
func parseDuration(d string) int {
	parts := strings.Split(strings.TrimSpace(d), ":")
	if len(parts) != 2 {
		return 0
	}
	minutes, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0
	}
	seconds, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0
	}
	return minutes*60 + seconds
}

func externalID(id int64) map[string]string {
	if id == 0 {
		return nil
	}
	return map[string]string{"discogs": strconv.FormatInt(id, 10)}
}

func imageURLs(images []imageObject) []string {
	var urls []string
	for _, img := range images {
		if img.URI != "" {
			urls = append(urls, img.URI)
		}
	}
	return urls
}
