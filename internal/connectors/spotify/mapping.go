package spotify

import (
	"github.com/artisnova/aria/internal/core/domain"
)

// Wire shapes for the Spotify Web API responses the connector consumes.

type searchResponse struct {
	Artists *pagedArtists `json:"artists"`
	Albums  *pagedAlbums  `json:"albums"`
	Tracks  *pagedTracks  `json:"tracks"`
}

type pagedArtists struct {
	Items []artistObject `json:"items"`
}

type pagedAlbums struct {
	Items []albumObject `json:"items"`
}

type pagedTracks struct {
	Items []trackObject `json:"items"`
}

type artistObject struct {
	ID     string        `json:"id"`
	Name   string        `json:"name"`
	Genres []string      `json:"genres"`
	Images []imageObject `json:"images"`
}

type albumObject struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	ReleaseDate string        `json:"release_date"`
	Images      []imageObject `json:"images"`
	Genres      []string      `json:"genres"`
	Artists     []artistRef   `json:"artists"`
	Tracks      *pagedItems   `json:"tracks"`
}

type trackObject struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	DurationMS  int          `json:"duration_ms"`
	TrackNumber int          `json:"track_number"`
	Artists     []artistRef  `json:"artists"`
	Album       *albumObject `json:"album"`
}

type pagedItems struct {
	Items []trackObject `json:"items"`
}

type artistRef struct {
	Name string `json:"name"`
}

type imageObject struct {
	URL string `json:"url"`
}

// mapSearchResponse converts one search page to candidate records,
// preserving Spotify's own ranking.
func mapSearchResponse(entityType domain.EntityType, resp searchResponse) []domain.CanonicalRecord {
	var records []domain.CanonicalRecord
	switch entityType {
	case domain.EntityArtist:
		if resp.Artists == nil {
			return nil
		}
		for _, item := range resp.Artists.Items {
			records = append(records, mapArtist(item))
		}
	case domain.EntityAlbum:
		if resp.Albums == nil {
			return nil
		}
		for _, item := range resp.Albums.Items {
			records = append(records, mapAlbum(item))
		}
	case domain.EntityTrack:
		if resp.Tracks == nil {
			return nil
		}
		for _, item := range resp.Tracks.Items {
			records = append(records, mapTrack(item))
		}
	}
	return records
}

func mapArtist(a artistObject) domain.CanonicalRecord {
	return domain.CanonicalRecord{
		Type:        domain.EntityArtist,
		Name:        a.Name,
		ExternalIDs: externalID(a.ID),
		Genres:      a.Genres,
		Images:      imageURLs(a.Images),
	}
}

func mapAlbum(a albumObject) domain.CanonicalRecord {
	record := domain.CanonicalRecord{
		Type:        domain.EntityAlbum,
		Name:        a.Name,
		ExternalIDs: externalID(a.ID),
		Date:        a.ReleaseDate,
		Genres:      a.Genres,
		Images:      imageURLs(a.Images),
	}
	if len(a.Artists) > 0 {
		record.Artist = a.Artists[0].Name
	}
	if a.Tracks != nil {
		for _, t := range a.Tracks.Items {
			record.Tracks = append(record.Tracks, domain.Track{
				Position:    t.TrackNumber,
				Title:       t.Name,
				DurationSec: t.DurationMS / 1000,
			})
		}
	}
	return record
}

func mapTrack(t trackObject) domain.CanonicalRecord {
	record := domain.CanonicalRecord{
		Type:        domain.EntityTrack,
		Name:        t.Name,
		ExternalIDs: externalID(t.ID),
	}
	if len(t.Artists) > 0 {
		record.Artist = t.Artists[0].Name
	}
	if t.Album != nil {
		record.Date = t.Album.ReleaseDate
		record.Images = imageURLs(t.Album.Images)
	}
	return record
}

func externalID(id string) map[string]string {
	if id == "" {
		return nil
	}
	return map[string]string{"spotify": id}
}

func imageURLs(images []imageObject) []string {
	var urls []string
	for _, img := range images {
		if img.URL != "" {
			urls = append(urls, img.URL)
		}
	}
	return urls
}
