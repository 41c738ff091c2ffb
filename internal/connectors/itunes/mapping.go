package itunes

import (
	"strconv"
	"strings"

	"github.com/artisnova/aria/internal/core/domain"
)

// Wire shapes for the iTunes Search API. Search and lookup share one
// response envelope.

type lookupResponse struct {
	ResultCount int            `json:"resultCount"`
	Results     []resultObject `json:"results"`
}

type resultObject struct {
	WrapperType      string `json:"wrapperType"`
	ArtistID         int64  `json:"artistId"`
	ArtistName       string `json:"artistName"`
	CollectionID     int64  `json:"collectionId"`
	CollectionName   string `json:"collectionName"`
	TrackID          int64  `json:"trackId"`
	TrackName        string `json:"trackName"`
	TrackNumber      int    `json:"trackNumber"`
	TrackTimeMillis  int    `json:"trackTimeMillis"`
	PrimaryGenreName string `json:"primaryGenreName"`
	ArtworkURL100    string `json:"artworkUrl100"`
	ReleaseDate      string `json:"releaseDate"`
	Country          string `json:"country"`
}

// wrapperTypes by entity, used to drop mismatched lookup results.
var wrapperTypes = map[domain.EntityType]string{
	domain.EntityArtist: "artist",
	domain.EntityAlbum:  "collection",
	domain.EntityTrack:  "track",
}

func mapResults(entityType domain.EntityType, results []resultObject) []domain.CanonicalRecord {
	wantWrapper := wrapperTypes[entityType]

	var records []domain.CanonicalRecord
	for _, result := range results {
		if result.WrapperType != "" && result.WrapperType != wantWrapper {
			continue
		}
		records = append(records, mapResult(entityType, result))
	}
	return records
}

func mapResult(entityType domain.EntityType, r resultObject) domain.CanonicalRecord {
	record := domain.CanonicalRecord{
		Type: entityType,
	}
	if r.PrimaryGenreName != "" {
		record.Genres = []string{r.PrimaryGenreName}
	}
	if r.ArtworkURL100 != "" {
		record.Images = []string{r.ArtworkURL100}
	}

	switch entityType {
	case domain.EntityArtist:
		record.Name = r.ArtistName
		record.ExternalIDs = externalID(r.ArtistID)
	case domain.EntityAlbum:
		record.Name = r.CollectionName
		record.Artist = r.ArtistName
		record.Date = releaseDate(r.ReleaseDate)
		record.Country = r.Country
		record.ExternalIDs = externalID(r.CollectionID)
	case domain.EntityTrack:
		record.Name = r.TrackName
		record.Artist = r.ArtistName
		record.Date = releaseDate(r.ReleaseDate)
		record.Country = r.Country
		record.ExternalIDs = externalID(r.TrackID)
	}
	return record
}

// releaseDate trims iTunes' timestamp form ("1991-09-24T07:00:00Z") to
// the date part.
func releaseDate(ts string) string {
	if idx := strings.Index(ts, "T"); idx > 0 {
		return ts[:idx]
	}
	return ts
}

func externalID(id int64) map[string]string {
	if id == 0 {
		return nil
	}
	return map[string]string{"itunes": strconv.FormatInt(id, 10)}
}
