package musicbrainz

import (
	"github.com/artisnova/aria/internal/core/domain"
)

// Wire shapes for the MusicBrainz JSON web service.

type searchResponse struct {
	Artists       []artistResult       `json:"artists"`
	ReleaseGroups []releaseGroupResult `json:"release-groups"`
	Recordings    []recordingResult    `json:"recordings"`
}

type artistResult struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	Country  string     `json:"country"`
	LifeSpan *lifeSpan  `json:"life-span"`
	Area     *areaRef   `json:"area"`
	Tags     []tagEntry `json:"tags"`
}

type releaseGroupResult struct {
	ID               string        `json:"id"`
	Title            string        `json:"title"`
	FirstReleaseDate string        `json:"first-release-date"`
	ArtistCredit     []creditEntry `json:"artist-credit"`
	Tags             []tagEntry    `json:"tags"`
}

type recordingResult struct {
	ID               string        `json:"id"`
	Title            string        `json:"title"`
	LengthMS         int           `json:"length"`
	FirstReleaseDate string        `json:"first-release-date"`
	ArtistCredit     []creditEntry `json:"artist-credit"`
	Tags             []tagEntry    `json:"tags"`
}

type lifeSpan struct {
	Begin string `json:"begin"`
}

type areaRef struct {
	Name string `json:"name"`
}

type creditEntry struct {
	Name string `json:"name"`
}

type tagEntry struct {
	Name string `json:"name"`
}

func mapSearchResponse(entityType domain.EntityType, resp searchResponse) []domain.CanonicalRecord {
	var records []domain.CanonicalRecord
	switch entityType {
	case domain.EntityArtist:
		for _, a := range resp.Artists {
			records = append(records, mapArtist(a))
		}
	case domain.EntityAlbum:
		for _, rg := range resp.ReleaseGroups {
			records = append(records, mapReleaseGroup(rg))
		}
	case domain.EntityTrack:
		for _, rec := range resp.Recordings {
			records = append(records, mapRecording(rec))
		}
	}
	return records
}

func mapArtist(a artistResult) domain.CanonicalRecord {
	record := domain.CanonicalRecord{
		Type:        domain.EntityArtist,
		Name:        a.Name,
		Country:     a.Country,
		ExternalIDs: externalID(a.ID),
		Tags:        tagNames(a.Tags),
	}
	if a.LifeSpan != nil {
		record.Date = a.LifeSpan.Begin
	}
	// Some artists carry an area but no country code.
	if record.Country == "" && a.Area != nil {
		record.Country = a.Area.Name
	}
	return record
}

func mapReleaseGroup(rg releaseGroupResult) domain.CanonicalRecord {
	record := domain.CanonicalRecord{
		Type:        domain.EntityAlbum,
		Name:        rg.Title,
		Date:        rg.FirstReleaseDate,
		ExternalIDs: externalID(rg.ID),
		Tags:        tagNames(rg.Tags),
	}
	if len(rg.ArtistCredit) > 0 {
		record.Artist = rg.ArtistCredit[0].Name
	}
	return record
}

func mapRecording(rec recordingResult) domain.CanonicalRecord {
	record := domain.CanonicalRecord{
		Type:        domain.EntityTrack,
		Name:        rec.Title,
		Date:        rec.FirstReleaseDate,
		ExternalIDs: externalID(rec.ID),
		Tags:        tagNames(rec.Tags),
	}
	if len(rec.ArtistCredit) > 0 {
		record.Artist = rec.ArtistCredit[0].Name
	}
	return record
}

func externalID(mbid string) map[string]string {
	if mbid == "" {
		return nil
	}
	return map[string]string{"musicbrainz": mbid}
}

func tagNames(tags []tagEntry) []string {
	var names []string
	for _, tag := range tags {
		if tag.Name != "" {
			names = append(names, tag.Name)
		}
	}
	return names
}
